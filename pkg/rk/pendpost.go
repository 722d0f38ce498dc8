package rk

// PendOpt selects blocking behavior for a pend call.
type PendOpt int

const (
	// PendBlocking is the default: wait (optionally with timeout) if the
	// resource isn't immediately available.
	PendBlocking PendOpt = 0
	// PendNonBlocking returns ErrWouldBlock instead of waiting.
	PendNonBlocking PendOpt = 1 << 0
)

func (o PendOpt) nonBlocking() bool { return o&PendNonBlocking != 0 }

// PostOpt selects how a post is delivered.
type PostOpt int

const (
	PostFIFO      PostOpt = 0
	PostLIFO      PostOpt = 1 << 0
	PostBroadcast PostOpt = 1 << 1
	PostNoSched   PostOpt = 1 << 2
)

func (o PostOpt) lifo() bool      { return o&PostLIFO != 0 }
func (o PostOpt) broadcast() bool { return o&PostBroadcast != 0 }
func (o PostOpt) noSched() bool   { return o&PostNoSched != 0 }

// AbortOpt selects which waiters pend_abort affects; uC/OS-III supports
// aborting only the highest-priority waiter or all of them.
type AbortOpt int

const (
	AbortOne AbortOpt = iota
	AbortAll
)

// checkCanBlockLocked validates the preconditions for a blocking pend:
// illegal from an ISR, illegal under a scheduler lock. Must be called with
// the critical section held.
func (k *Kernel) checkCanBlockLocked(op string) error {
	if k.intNesting > 0 {
		return newErr(op, ErrFromISR)
	}

	if k.schedLock > 0 {
		return newErr(op, ErrSchedLocked)
	}

	return nil
}

// blockCurrentLocked removes the running task from the ready list, files
// it on pobj's pend list (if any — task-private waits pass nil) and, if
// timeout != 0, on the tick list, and sets its state accordingly. Must be
// called with the critical section held; the caller releases the section
// and calls k.sched() itself immediately after.
func (k *Kernel) blockCurrentLocked(cur *TCB, pobj PendObj, pendOn PendOn, timeout uint64) {
	cur.PendOn = pendOn
	cur.PendStatus = PendStatusOK

	k.ready.remove(cur)

	if pobj != nil {
		cur.PendObj = pobj
		pobj.pendListHead().insertPrio(cur)
	} else {
		cur.PendObj = nil
	}

	if timeout != 0 {
		cur.State = StatePendTimeout
		k.tick.insert(cur, k.tickCtr+timeout)
	} else {
		cur.State = StatePEND
	}

	if k.cfg.DbgEn {
		if pobj != nil {
			cur.dbgName = pobj.objName()
		}
	}
}

// wakeTaskLocked transitions a pending task to ready (or back to suspended,
// if it carries the suspended dimension), staging msg/msgSize for it to
// read and recording status as the reason it woke. This is the shared tail
// of post, pend_abort and object deletion (OS_Post / OS_PendAbort).
func (k *Kernel) wakeTaskLocked(t *TCB, status PendStatus, msg any, msgSize uint32) {
	t.MsgPtr = msg
	t.MsgSize = msgSize
	t.TS = k.tickCtr

	if t.PendObj != nil {
		t.PendObj.pendListHead().remove(t)
	}

	if t.State.hasTimeout() {
		k.tick.remove(t)
	}

	suspended := t.State.hasSuspend()

	t.PendStatus = status
	t.PendOn = PendOnNothing
	t.PendObj = nil
	t.dbgName = ""

	if suspended {
		t.State = StateSuspended
		return
	}

	t.State = StateRDY
	k.readyInsertForWakeLocked(t)
}

// postOneLocked wakes the highest-priority waiter on pl, if any, returning
// it (nil if pl was empty).
func (k *Kernel) postOneLocked(pl *pendList, msg any, msgSize uint32) *TCB {
	t := pl.head
	if t == nil {
		return nil
	}

	k.wakeTaskLocked(t, PendStatusOK, msg, msgSize)

	return t
}

// postAllLocked wakes every waiter on pl with the same message, in
// pend-list (priority) order, and returns them.
func (k *Kernel) postAllLocked(pl *pendList, msg any, msgSize uint32) []*TCB {
	var woken []*TCB

	for pl.head != nil {
		t := pl.head
		k.wakeTaskLocked(t, PendStatusOK, msg, msgSize)
		woken = append(woken, t)
	}

	return woken
}

// abortLocked cancels t's pend, per OS_PendAbort: only effective while t is
// in one of the four PEND* states.
func (k *Kernel) abortLocked(t *TCB) bool {
	if !t.State.isPending() {
		return false
	}

	k.wakeTaskLocked(t, PendStatusAbort, nil, 0)

	return true
}

// pendAbortPLocked aborts either the single highest-priority waiter on pl
// or every waiter, per AbortOpt, returning how many were aborted.
func (k *Kernel) pendAbortPLocked(pl *pendList, opt AbortOpt) int {
	n := 0

	if opt == AbortAll {
		for pl.head != nil {
			if k.abortLocked(pl.head) {
				n++
			}
		}

		return n
	}

	if pl.head != nil && k.abortLocked(pl.head) {
		n = 1
	}

	return n
}

// deleteWaitersLocked wakes every waiter on pl with ObjectDeleted, as
// OS_PendAbort-with-OBJECT_DELETED does for each registered waiter at
// object-delete time, returning how many were woken.
func (k *Kernel) deleteWaitersLocked(pl *pendList) int {
	n := 0

	for pl.head != nil {
		k.wakeTaskLocked(pl.head, PendStatusObjectDeleted, nil, 0)
		n++
	}

	return n
}

// resultFromStatus maps a woken task's PendStatus to the public error the
// pend call should return.
func resultFromStatus(op string, status PendStatus) error {
	switch status {
	case PendStatusOK:
		return nil
	case PendStatusTimeout:
		return newErr(op, ErrTimeout)
	case PendStatusAbort:
		return newErr(op, ErrPendAbort)
	case PendStatusObjectDeleted:
		return newErr(op, ErrObjectDeleted)
	default:
		return newErr(op, ErrStatusInvalid)
	}
}
