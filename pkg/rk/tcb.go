package rk

// Prio is a scheduling priority. Lower numeric value means higher priority.
// PrioMax-1 is reserved for the idle task.
type Prio int

// PendOn names what kind of object a task is blocked on. An enum-of-variants
// in place of the source's void-pointer-plus-discriminator pair.
type PendOn int

const (
	PendOnNothing PendOn = iota
	PendOnFlag
	PendOnQueue
	PendOnSem
	PendOnMutex
	PendOnTaskQ
	PendOnTaskSem
)

// PendStatus is the outcome marker a waker sets on a TCB before readying it.
type PendStatus int

const (
	PendStatusOK PendStatus = iota
	PendStatusTimeout
	PendStatusAbort
	PendStatusObjectDeleted
)

// pendListLink is the intrusive doubly-linked-list link used by a task's
// membership in an object's pend list. Kept as a plain struct field rather
// than raw pointers aliased into user code.
type pendListLink struct {
	next *TCB
	prev *TCB
}

// readyListLink is the intrusive link used by a task's membership in its
// priority bucket of the ready list.
type readyListLink struct {
	next *TCB
	prev *TCB
}

// tickListLink is the intrusive link used by a task's membership in the
// sorted tick list. The deadline bookkeeping lives in separate TCB fields.
type tickListLink struct {
	next *TCB
	prev *TCB
}

// TCB is the Task Control Block: one per task, created and owned by
// whoever calls TaskCreate, alive for as long as the task exists.
type TCB struct {
	Name string

	// Port-owned. Never touched by the core beyond being carried through
	// a context switch.
	StkBase  uintptr
	StkSize  uint32
	StkLimit uintptr

	Prio     Prio
	BasePrio Prio

	State TaskState

	PendOn     PendOn
	PendObj    PendObj
	PendStatus PendStatus

	pend  pendListLink
	ready readyListLink
	tick  tickListLink

	// Tick-list bookkeeping.
	tickDeadline uint64
	tickPeriodic bool
	tickPrev     uint64
	onTickList   bool
	onPendList   bool
	onReadyList  bool

	// Task-private signal and mailbox (C12).
	semCtr uint16
	taskQ  taskMailbox

	mutexGrpHead *Mutex

	SuspendCtr uint8

	TimeQuanta    uint16
	TimeQuantaCtr uint16

	// Received-message staging, populated by the poster, read by the
	// waking task.
	MsgPtr  any
	MsgSize uint32
	TS      uint64

	Regs [4]uintptr

	// Event-flag wait parameters (C10). Only meaningful while
	// PendOn == PendOnFlag.
	FlagWanted  uint32
	FlagMode    FlagMode
	FlagConsume bool
	FlagMatched uint32

	// dbgName mirrors OS_CFG_DBG_EN's debug-name tracking: the name of
	// whatever this task is currently pending on, for kernel-aware
	// tooling. Left empty when Config.DbgEn is false.
	dbgName string

	entry func(arg any)
	arg   any

	k *Kernel
}

// Entry and Arg expose the task function and its argument to a
// Dispatcher implementation, which needs them to set up whatever
// execution context it backs tasks with (e.g. internal/softport spawning
// a goroutine per task). The core itself never calls either.
func (t *TCB) Entry() func(arg any) { return t.entry }
func (t *TCB) Arg() any             { return t.arg }

// PendObj is implemented by every waitable object that carries a pend list
// (Semaphore, Mutex, FlagGroup, Queue). Task-private waits (PendOnTaskQ,
// PendOnTaskSem) have no PendObj; the TCB itself is the rendezvous.
type PendObj interface {
	pendListHead() *pendList
	objName() string
}

// taskMailbox is the lightweight message queue embedded in every TCB for
// C12's task-private mailbox.
type taskMailbox struct {
	msgs []queueEntry
	max  int
}
