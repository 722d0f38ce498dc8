package rk

// DelOpt selects whether deleting an object with waiters is refused or
// forces every waiter awake with ObjectDeleted.
type DelOpt int

const (
	DelNoPend DelOpt = iota
	DelAlways
)

// Sem is a counting semaphore (C8): ctr saturates at Max; incrementing
// past Max is ErrSemOvf.
type Sem struct {
	Name string
	Max  uint16

	k    *Kernel
	pend pendList
	ctr  uint16
	del  bool
}

func (s *Sem) pendListHead() *pendList { return &s.pend }
func (s *Sem) objName() string         { return s.Name }

// SemCreate allocates and initializes a counting semaphore.
func (k *Kernel) SemCreate(name string, initial uint16) (*Sem, error) {
	if !k.cfg.SemEn {
		return nil, newErr("SemCreate", ErrObjTypeInvalid)
	}

	return &Sem{
		Name: name,
		Max:  ^uint16(0),
		k:    k,
		ctr:  initial,
	}, nil
}

// Pend decrements the counter if it is positive, else blocks (subject to
// opt/timeout) until posted, aborted or the object is deleted.
func (s *Sem) Pend(timeout uint64, opt PendOpt) (uint16, error) {
	k := s.k
	g := k.enterCS()

	if s.del {
		g.exit()
		return 0, newErr("SemPend", ErrObjPtrNull)
	}

	if s.ctr > 0 {
		s.ctr--
		ctr := s.ctr
		g.exit()

		return ctr, nil
	}

	if opt.nonBlocking() {
		g.exit()
		return 0, newErr("SemPend", ErrWouldBlock)
	}

	if timeout != 0 && !k.cfg.TickEn {
		g.exit()
		return 0, newErr("SemPend", ErrTickDisabled)
	}

	if err := k.checkCanBlockLocked("SemPend"); err != nil {
		g.exit()
		return 0, err
	}

	cur := k.current
	k.blockCurrentLocked(cur, s, PendOnSem, timeout)
	g.exit()

	k.sched()

	return 0, resultFromStatus("SemPend", cur.PendStatus)
}

// Post increments the counter, or wakes the highest-priority waiter (or
// all waiters, for BROADCAST) if any are pending.
func (s *Sem) Post(opt PostOpt) (uint16, error) {
	k := s.k
	g := k.enterCS()

	if s.del {
		g.exit()
		return 0, newErr("SemPost", ErrObjPtrNull)
	}

	if s.pend.empty() {
		if s.ctr >= s.Max {
			g.exit()
			return 0, newErr("SemPost", ErrSemOvf)
		}

		s.ctr++
		ctr := s.ctr
		g.exit()

		return ctr, nil
	}

	if opt.broadcast() {
		k.postAllLocked(&s.pend, nil, 0)
	} else {
		k.postOneLocked(&s.pend, nil, 0)
	}

	ctr := s.ctr
	g.exit()

	if !opt.noSched() {
		k.sched()
	}

	return ctr, nil
}

// Set resets the counter to n; fails with ErrTaskWaiting if any task is
// pending, per this module's resolution of the corresponding Open
// Question.
func (s *Sem) Set(n uint16) error {
	k := s.k
	g := k.enterCS()
	defer g.exit()

	if s.del {
		return newErr("SemSet", ErrObjPtrNull)
	}

	if !s.pend.empty() {
		return newErr("SemSet", ErrTaskWaiting)
	}

	s.ctr = n

	return nil
}

// PendAbort cancels one or all waiters' pends with ErrPendAbort.
func (s *Sem) PendAbort(opt AbortOpt) (int, error) {
	k := s.k
	g := k.enterCS()

	n := k.pendAbortPLocked(&s.pend, opt)
	g.exit()

	if n > 0 {
		k.sched()
	}

	return n, nil
}

// Delete tears the semaphore down. With DelNoPend it refuses if any task
// is waiting; with DelAlways every waiter wakes with ErrObjectDeleted.
func (s *Sem) Delete(opt DelOpt) (int, error) {
	k := s.k
	g := k.enterCS()

	if !s.pend.empty() && opt == DelNoPend {
		g.exit()
		return 0, newErr("SemDelete", ErrTaskWaiting)
	}

	n := k.deleteWaitersLocked(&s.pend)
	s.del = true
	g.exit()

	if n > 0 {
		k.sched()
	}

	return n, nil
}

// Ctr returns the current counter value without consuming it.
func (s *Sem) Ctr() uint16 {
	k := s.k
	g := k.enterCS()
	defer g.exit()

	return s.ctr
}
