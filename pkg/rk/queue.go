package rk

// queueEntry is one staged message: a value plus its declared size and the
// tick it was posted at. Shared by Queue and the task-private mailbox.
type queueEntry struct {
	msg  any
	size uint32
	ts   uint64
}

// Queue is a message queue (C11): a bounded FIFO of queueEntry plus a pend
// list of tasks waiting for the next message.
type Queue struct {
	Name string
	Max  int

	k    *Kernel
	pend pendList
	buf  []queueEntry
	del  bool
}

func (q *Queue) pendListHead() *pendList { return &q.pend }
func (q *Queue) objName() string         { return q.Name }

// QCreate allocates an empty queue with capacity max.
func (k *Kernel) QCreate(name string, max int) (*Queue, error) {
	if !k.cfg.QEn {
		return nil, newErr("QCreate", ErrQSizeInvalid)
	}

	if max <= 0 {
		return nil, newErr("QCreate", ErrQSizeInvalid)
	}

	return &Queue{Name: name, Max: max, k: k}, nil
}

// Post delivers msg to the queue: directly to the highest-priority waiter
// if one exists (or all waiters, for BROADCAST), else appended to the
// internal buffer (FIFO) or prepended (LIFO), subject to Max — ErrQMax if
// full and nobody is waiting.
func (q *Queue) Post(msg any, size uint32, opt PostOpt) error {
	k := q.k
	g := k.enterCS()

	if q.del {
		g.exit()
		return newErr("QPost", ErrObjPtrNull)
	}

	if !q.pend.empty() {
		if opt.broadcast() {
			k.postAllLocked(&q.pend, msg, size)
		} else {
			k.postOneLocked(&q.pend, msg, size)
		}

		g.exit()

		if !opt.noSched() {
			k.sched()
		}

		return nil
	}

	if len(q.buf) >= q.Max {
		g.exit()
		return newErr("QPost", ErrQMax)
	}

	entry := queueEntry{msg: msg, size: size, ts: k.tickCtr}

	if opt.lifo() {
		q.buf = append([]queueEntry{entry}, q.buf...)
	} else {
		q.buf = append(q.buf, entry)
	}

	g.exit()

	return nil
}

// Pend removes and returns the message at the head of the buffer (the
// oldest FIFO post, or the latest LIFO post), blocking (subject to
// opt/timeout) if the queue is empty.
func (q *Queue) Pend(timeout uint64, opt PendOpt) (any, uint32, error) {
	k := q.k
	g := k.enterCS()

	if q.del {
		g.exit()
		return nil, 0, newErr("QPend", ErrObjPtrNull)
	}

	if len(q.buf) > 0 {
		entry := q.buf[0]
		q.buf = q.buf[1:]
		g.exit()

		return entry.msg, entry.size, nil
	}

	if opt.nonBlocking() {
		g.exit()
		return nil, 0, newErr("QPend", ErrWouldBlock)
	}

	if timeout != 0 && !k.cfg.TickEn {
		g.exit()
		return nil, 0, newErr("QPend", ErrTickDisabled)
	}

	if err := k.checkCanBlockLocked("QPend"); err != nil {
		g.exit()
		return nil, 0, err
	}

	cur := k.current
	k.blockCurrentLocked(cur, q, PendOnQueue, timeout)
	g.exit()

	k.sched()

	if cur.PendStatus != PendStatusOK {
		return nil, 0, resultFromStatus("QPend", cur.PendStatus)
	}

	return cur.MsgPtr, cur.MsgSize, nil
}

// Flush discards every buffered message, returning how many were dropped.
// Waiters are left untouched — flush only clears what's already queued.
func (q *Queue) Flush() int {
	k := q.k
	g := k.enterCS()
	defer g.exit()

	n := len(q.buf)
	q.buf = nil

	return n
}

// PendAbort cancels the highest-priority (or all) waiter's pend on q.
func (q *Queue) PendAbort(opt AbortOpt) (int, error) {
	k := q.k
	g := k.enterCS()

	n := k.pendAbortPLocked(&q.pend, opt)
	g.exit()

	if n > 0 {
		k.sched()
	}

	return n, nil
}

// Delete tears down the queue, waking every waiter with ErrObjectDeleted.
func (q *Queue) Delete(opt DelOpt) (int, error) {
	k := q.k
	g := k.enterCS()

	if !q.pend.empty() && opt == DelNoPend {
		g.exit()
		return 0, newErr("QDelete", ErrTaskWaiting)
	}

	n := k.deleteWaitersLocked(&q.pend)
	q.del = true
	q.buf = nil
	g.exit()

	if n > 0 {
		k.sched()
	}

	return n, nil
}
