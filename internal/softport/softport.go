// Package softport is a CPU port with no CPU: it backs rk.Dispatcher with
// one goroutine per task and a per-task rendezvous gate instead of real
// context-switch assembly, so the kernel can be exercised and tested on
// any machine the Go toolchain runs on. Exactly one task's goroutine ever
// holds its gate open at a time — the same single-owner-at-a-time
// discipline the teacher's transmit queue gets from a sync.Cond pair per
// channel, just inverted into a baton pass between goroutines instead of
// a producer/consumer queue.
package softport

import (
	"sync"

	"github.com/openrk/kernel/pkg/rk"
)

// gate is a size-1 rendezvous: closed (empty) means "not your turn",
// receiving from it means "your turn has started".
type gate chan struct{}

func newGate() gate { return make(gate, 1) }

// Port implements rk.Dispatcher by parking every task in its own
// goroutine, blocked on its gate, and only ever running the goroutine
// whose gate was just signaled.
type Port struct {
	mu    sync.Mutex
	gates map[*rk.TCB]gate

	started chan struct{}
}

// New returns an unstarted Port. Register every TCB with Spawn before
// calling Kernel.Start.
func New() *Port {
	return &Port{
		gates:   make(map[*rk.TCB]gate),
		started: make(chan struct{}),
	}
}

func (p *Port) gateFor(t *rk.TCB) gate {
	p.mu.Lock()
	defer p.mu.Unlock()

	g, ok := p.gates[t]
	if !ok {
		g = newGate()
		p.gates[t] = g
	}

	return g
}

// Spawn launches t's goroutine, which blocks immediately on its own gate
// until the dispatcher signals it to run entry(arg).
func (p *Port) Spawn(t *rk.TCB, entry func(arg any), arg any) {
	g := p.gateFor(t)

	go func() {
		<-g
		entry(arg)
	}()
}

func (p *Port) signal(t *rk.TCB) {
	g := p.gateFor(t)

	select {
	case g <- struct{}{}:
	default:
		// Already signaled and not yet consumed; at most one pending
		// signal is ever meaningful since a task can't be dispatched
		// onto twice before running.
	}
}

// Dispatch hands control to next and parks cur's own goroutine on its
// gate until it is signaled again — the baton pass. cur is the goroutine
// calling Dispatch (it called into the kernel synchronously to pend,
// delay, or yield), so blocking here is exactly "this task stops
// running" with no stack to save: the Go runtime already did that for us
// in cur's goroutine stack.
func (p *Port) Dispatch(cur, next *rk.TCB) {
	curGate := p.gateFor(cur)
	p.signal(next)
	<-curGate
}

// DispatchFromISR only signals next and returns; it does not block the
// caller the way Dispatch does. Real hardware ISRs always run on the
// interrupted task's own stack, so OSIntExit's switch can suspend that
// exact stack and resume it later. Board/peripheral interrupt sources in
// this port run on their own dedicated goroutine rather than borrowing
// whatever task goroutine happened to be current, so there is no stack
// to suspend on their behalf — the best this port can do is make next
// runnable promptly and let the two goroutines' own gate discipline
// settle which one actually proceeds.
func (p *Port) DispatchFromISR(cur, next *rk.TCB) {
	p.signal(next)
}

// StartHighest makes the first task runnable and blocks the calling
// goroutine forever, mirroring OSStartHighRdy never returning.
func (p *Port) StartHighest(highest *rk.TCB) {
	p.signal(highest)
	<-p.started
}
