package rk

import (
	"runtime"
	"sync"
)

// Kernel is the single mutable-state singleton described in the design
// notes: every public API is a method on it, and every mutation of its
// internal lists/bitmap/counters happens inside enterCS, which plays
// the role of the source's CPU_SR_ALLOC + CPU_CRITICAL_ENTER/EXIT pair —
// except that here, with no real interrupt line to disable, the guard is a
// plain mutex. No kernel state lives in package-level globals.
type Kernel struct {
	cfg   Config
	hooks Hooks
	disp  Dispatcher

	mu sync.Mutex

	ready *readyList
	tick  tickList

	current *TCB
	idle    *TCB

	tickCtr     uint64
	intNesting  int
	schedLock   int
	running     bool

	tasks []*TCB
}

// csGuard acquires the kernel's critical section. Every public API opens
// exactly one such guard and never calls back into a blocking kernel
// operation while holding it — mirroring the "no function may block while
// interrupts are disabled" invariant of §5.
type csGuard struct {
	k *Kernel
}

func (k *Kernel) enterCS() csGuard {
	k.mu.Lock()
	return csGuard{k: k}
}

func (g csGuard) exit() {
	g.k.mu.Unlock()
}

// New constructs a Kernel from cfg and hooks, wiring it to disp for actual
// task dispatch. Call Init, then create tasks, then Start.
func New(cfg Config, hooks Hooks, disp Dispatcher) (*Kernel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	k := &Kernel{
		cfg:   cfg,
		hooks: hooks,
		disp:  disp,
		ready: newReadyList(cfg.PrioMax),
	}

	return k, nil
}

// Init prepares the idle task. It must run before any other task is
// created, matching OSInit's role of seeding OS_IdleTask.
func (k *Kernel) Init() error {
	g := k.enterCS()
	defer g.exit()

	idle := &TCB{
		Name:     "idle",
		Prio:     k.cfg.IdlePrio(),
		BasePrio: k.cfg.IdlePrio(),
		State: StateRDY,
		k:     k,
		entry: func(any) {
			// Chosen only when nothing else is ready; a Dispatcher may
			// still signal its readiness any number of times, so this
			// never returns the way any other task's entry is allowed to.
			for {
				runtime.Gosched()
			}
		},
	}

	k.idle = idle
	k.tasks = append(k.tasks, idle)
	k.ready.insertTail(idle)

	return nil
}

// Idle returns the idle TCB created by Init, so a Dispatcher can spawn
// whatever execution context it needs for it just like any other task.
func (k *Kernel) Idle() *TCB {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.idle
}

// Running reports whether Start has been called.
func (k *Kernel) Running() bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.running
}

// Start performs the one-shot transfer from "not running" to the highest
// ready task (always the task with the lowest Prio value among those
// created before Start, or idle if none were).
func (k *Kernel) Start() error {
	g := k.enterCS()

	if k.running {
		g.exit()
		return newErr("Start", ErrIllegalCreateRunTime)
	}

	highest := k.ready.head(k.ready.highest())
	k.current = highest
	k.running = true
	g.exit()

	k.disp.StartHighest(highest)

	return nil
}

// Current returns the currently running TCB. Safe to call from any
// context; returns nil before Start.
func (k *Kernel) Current() *TCB {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.current
}

// TickCtr returns the monotonically non-decreasing tick counter.
func (k *Kernel) TickCtr() uint64 {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.tickCtr
}

// SchedLock disables task-level rescheduling until a matching number of
// SchedUnlock calls. Balanced lock/unlock pairs restore prior scheduling
// behavior and the outermost unlock triggers a reschedule (§8).
func (k *Kernel) SchedLock() error {
	g := k.enterCS()
	defer g.exit()

	if k.intNesting > 0 {
		return newErr("SchedLock", ErrFromISR)
	}

	if k.schedLock == 255 {
		return newErr("SchedLock", ErrLockNestingOvf)
	}

	k.schedLock++

	return nil
}

// SchedUnlock reverses one SchedLock call.
func (k *Kernel) SchedUnlock() error {
	g := k.enterCS()

	if k.intNesting > 0 {
		g.exit()
		return newErr("SchedUnlock", ErrFromISR)
	}

	if k.schedLock == 0 {
		g.exit()
		return newErr("SchedUnlock", ErrStatusInvalid)
	}

	k.schedLock--
	outermost := k.schedLock == 0
	g.exit()

	if outermost {
		k.sched()
	}

	return nil
}

// IsISR reports whether the caller is executing inside an ISR (IntNesting
// > 0). Exported so peripheral adapters that straddle the ISR boundary can
// check before calling a task-context-only API.
func (k *Kernel) IsISR() bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.intNesting > 0
}
