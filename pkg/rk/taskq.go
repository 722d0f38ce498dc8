package rk

// Task-private mailbox and signal (C12). Unlike Sem/Queue/Mutex/FlagGroup,
// these don't have their own pend list: at most one task can ever be
// waiting (on its own TCB), so the TCB itself is the rendezvous and
// PendObj stays nil while PendOn is PendOnTaskQ or PendOnTaskSem.

// TaskQPost delivers msg directly to t's mailbox, waking t if it is
// pending on its own queue. BROADCAST has no meaning here (there is only
// ever one reader); NO_SCHED still suppresses the immediate reschedule.
func (k *Kernel) TaskQPost(t *TCB, msg any, size uint32, opt PostOpt) error {
	g := k.enterCS()

	if t.State.isPending() && t.PendOn == PendOnTaskQ {
		k.wakeTaskLocked(t, PendStatusOK, msg, size)
		g.exit()

		if !opt.noSched() {
			k.sched()
		}

		return nil
	}

	if len(t.taskQ.msgs) >= t.taskQ.max && t.taskQ.max > 0 {
		g.exit()
		return newErr("TaskQPost", ErrQMax)
	}

	entry := queueEntry{msg: msg, size: size, ts: k.tickCtr}

	if opt.lifo() {
		t.taskQ.msgs = append([]queueEntry{entry}, t.taskQ.msgs...)
	} else {
		t.taskQ.msgs = append(t.taskQ.msgs, entry)
	}

	g.exit()

	return nil
}

// TaskQPend waits for (or immediately returns) the next message posted to
// the calling task's own mailbox.
func (k *Kernel) TaskQPend(timeout uint64, opt PendOpt) (any, uint32, error) {
	g := k.enterCS()

	cur := k.current

	if len(cur.taskQ.msgs) > 0 {
		entry := cur.taskQ.msgs[0]
		cur.taskQ.msgs = cur.taskQ.msgs[1:]
		g.exit()

		return entry.msg, entry.size, nil
	}

	if opt.nonBlocking() {
		g.exit()
		return nil, 0, newErr("TaskQPend", ErrWouldBlock)
	}

	if timeout != 0 && !k.cfg.TickEn {
		g.exit()
		return nil, 0, newErr("TaskQPend", ErrTickDisabled)
	}

	if err := k.checkCanBlockLocked("TaskQPend"); err != nil {
		g.exit()
		return nil, 0, err
	}

	k.blockCurrentLocked(cur, nil, PendOnTaskQ, timeout)
	g.exit()

	k.sched()

	if cur.PendStatus != PendStatusOK {
		return nil, 0, resultFromStatus("TaskQPend", cur.PendStatus)
	}

	return cur.MsgPtr, cur.MsgSize, nil
}

// TaskQFlush discards everything buffered in t's mailbox, returning how
// many messages were dropped.
func (k *Kernel) TaskQFlush(t *TCB) int {
	g := k.enterCS()
	defer g.exit()

	n := len(t.taskQ.msgs)
	t.taskQ.msgs = nil

	return n
}

// TaskQPendAbort cancels t's pend on its own mailbox, if any, waking it
// with ErrPendAbort.
func (k *Kernel) TaskQPendAbort(t *TCB) (bool, error) {
	g := k.enterCS()

	aborted := t.State.isPending() && t.PendOn == PendOnTaskQ && k.abortLocked(t)
	g.exit()

	if aborted {
		k.sched()
	}

	return aborted, nil
}

// TaskSemPost increments t's private signal counter, or wakes it directly
// if it is pending on TaskSemPend.
func (k *Kernel) TaskSemPost(t *TCB, opt PostOpt) (uint16, error) {
	g := k.enterCS()

	if t.State.isPending() && t.PendOn == PendOnTaskSem {
		k.wakeTaskLocked(t, PendStatusOK, nil, 0)
		ctr := t.semCtr
		g.exit()

		if !opt.noSched() {
			k.sched()
		}

		return ctr, nil
	}

	if t.semCtr == ^uint16(0) {
		g.exit()
		return 0, newErr("TaskSemPost", ErrSemOvf)
	}

	t.semCtr++
	ctr := t.semCtr
	g.exit()

	return ctr, nil
}

// TaskSemPend waits for (or immediately consumes) a pending signal on the
// calling task's own counter.
func (k *Kernel) TaskSemPend(timeout uint64, opt PendOpt) (uint16, error) {
	g := k.enterCS()

	cur := k.current

	if cur.semCtr > 0 {
		cur.semCtr--
		ctr := cur.semCtr
		g.exit()

		return ctr, nil
	}

	if opt.nonBlocking() {
		g.exit()
		return 0, newErr("TaskSemPend", ErrWouldBlock)
	}

	if timeout != 0 && !k.cfg.TickEn {
		g.exit()
		return 0, newErr("TaskSemPend", ErrTickDisabled)
	}

	if err := k.checkCanBlockLocked("TaskSemPend"); err != nil {
		g.exit()
		return 0, err
	}

	k.blockCurrentLocked(cur, nil, PendOnTaskSem, timeout)
	g.exit()

	k.sched()

	return 0, resultFromStatus("TaskSemPend", cur.PendStatus)
}

// TaskSemPendAbort cancels t's pend on its own signal, if any.
func (k *Kernel) TaskSemPendAbort(t *TCB) (bool, error) {
	g := k.enterCS()

	aborted := t.State.isPending() && t.PendOn == PendOnTaskSem && k.abortLocked(t)
	g.exit()

	if aborted {
		k.sched()
	}

	return aborted, nil
}

// TaskSemSet resets t's signal counter to n, returning the previous value.
func (k *Kernel) TaskSemSet(t *TCB, n uint16) uint16 {
	g := k.enterCS()
	defer g.exit()

	prev := t.semCtr
	t.semCtr = n

	return prev
}
