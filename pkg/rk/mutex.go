package rk

// Mutex is an owned, nestable lock with transitive priority inheritance
// (C9). At most one task owns it; re-acquisition by the owner increments
// Nesting, and release requires the same number of matching calls.
type Mutex struct {
	Name string

	k       *Kernel
	pend    pendList
	owner   *TCB
	nesting uint16
	maxNest uint16
	ts      uint64
	del     bool
	grpNext *Mutex
	grpPrev *Mutex
}

func (m *Mutex) pendListHead() *pendList { return &m.pend }
func (m *Mutex) objName() string         { return m.Name }

// MutexCreate allocates an initially-unowned mutex.
func (k *Kernel) MutexCreate(name string) (*Mutex, error) {
	if !k.cfg.MutexEn {
		return nil, newErr("MutexCreate", ErrObjTypeInvalid)
	}

	return &Mutex{
		Name:    name,
		k:       k,
		maxNest: ^uint16(0),
	}, nil
}

// grpAdd links m onto owner's list of currently-owned mutexes (head
// insertion; order among owned mutexes doesn't matter, only membership).
func grpAdd(owner *TCB, m *Mutex) {
	m.grpNext = owner.mutexGrpHead
	m.grpPrev = nil

	if owner.mutexGrpHead != nil {
		owner.mutexGrpHead.grpPrev = m
	}

	owner.mutexGrpHead = m
}

func grpRemove(owner *TCB, m *Mutex) {
	if m.grpPrev != nil {
		m.grpPrev.grpNext = m.grpNext
	} else {
		owner.mutexGrpHead = m.grpNext
	}

	if m.grpNext != nil {
		m.grpNext.grpPrev = m.grpPrev
	}

	m.grpNext = nil
	m.grpPrev = nil
}

// grpHighestWaiter scans every mutex owner currently holds and returns the
// numerically-lowest (highest-urgency) priority among all their waiters.
// ok is false if none of owner's mutexes have any waiter.
func grpHighestWaiter(owner *TCB) (prio Prio, ok bool) {
	best := Prio(0)
	found := false

	for m := owner.mutexGrpHead; m != nil; m = m.grpNext {
		if m.pend.head == nil {
			continue
		}

		p := m.pend.head.Prio
		if !found || p < best {
			best = p
			found = true
		}
	}

	return best, found
}

// changeTaskPrioLocked changes t's priority, moving it within whatever
// list it currently occupies, and — when t is pending on a mutex — climbs
// the ownership chain exactly as OS_TaskChangePrio does: a priority raise
// propagates to the mutex's owner (and transitively to whatever that owner
// is itself blocked on); a priority change that reaches an owner already
// at least as urgent stops the climb.
func (k *Kernel) changeTaskPrioLocked(t *TCB, newPrio Prio) {
	for t != nil {
		oldPrio := t.Prio
		var nextOwner *TCB

		switch {
		case t.State == StateRDY:
			k.ready.remove(t)
			t.Prio = newPrio

			if t == k.current {
				k.ready.insertHead(t)
			} else {
				k.ready.insertTail(t)
			}

		case t.State == StateDLY || t.State == StateSuspended || t.State == StateDlySuspended:
			t.Prio = newPrio

		case t.State.isPending():
			t.Prio = newPrio

			if t.PendObj != nil {
				t.PendObj.pendListHead().changePrio(t)
			}

			if m, isMutex := t.PendObj.(*Mutex); isMutex && t.PendOn == PendOnMutex {
				owner := m.owner
				if owner == nil {
					break
				}

				if oldPrio > newPrio { // raising priority (lower numeric value)
					if owner.Prio <= newPrio {
						break // owner already at least this urgent
					}

					nextOwner = owner
				} else if owner.Prio == oldPrio { // lowering: only matters if owner inherited from us
					recomputed, found := grpHighestWaiter(owner)
					floor := owner.BasePrio

					target := floor
					if found && recomputed < floor {
						target = recomputed
					}

					if target == owner.Prio {
						break
					}

					newPrio = target
					nextOwner = owner
				}
			}

		default:
			return
		}

		t = nextOwner
	}
}

// Pend acquires the mutex, blocking (subject to opt/timeout) if another
// task owns it, raising that owner's effective priority transitively
// along any chain of mutexes it is itself blocked on.
func (m *Mutex) Pend(timeout uint64, opt PendOpt) error {
	k := m.k
	g := k.enterCS()

	if m.del {
		g.exit()
		return newErr("MutexPend", ErrObjPtrNull)
	}

	cur := k.current

	if m.owner == nil {
		m.owner = cur
		m.nesting = 1
		grpAdd(cur, m)
		g.exit()

		return nil
	}

	if m.owner == cur {
		if m.nesting >= m.maxNest {
			g.exit()
			return newErr("MutexPend", ErrMutexOvf)
		}

		m.nesting++
		g.exit()

		return nil
	}

	if opt.nonBlocking() {
		g.exit()
		return newErr("MutexPend", ErrWouldBlock)
	}

	if timeout != 0 && !k.cfg.TickEn {
		g.exit()
		return newErr("MutexPend", ErrTickDisabled)
	}

	if err := k.checkCanBlockLocked("MutexPend"); err != nil {
		g.exit()
		return err
	}

	k.blockCurrentLocked(cur, m, PendOnMutex, timeout)

	if cur.Prio < m.owner.Prio {
		k.changeTaskPrioLocked(m.owner, cur.Prio)
	}

	g.exit()

	k.sched()

	return resultFromStatus("MutexPend", cur.PendStatus)
}

// Post releases one level of ownership. When nesting reaches zero, the
// owner's priority is recomputed across its remaining owned mutexes and,
// if a waiter exists, ownership transfers to the highest-priority one.
func (m *Mutex) Post() error {
	k := m.k
	g := k.enterCS()

	if m.del {
		g.exit()
		return newErr("MutexPost", ErrObjPtrNull)
	}

	cur := k.current

	if m.owner != cur {
		g.exit()
		return newErr("MutexPost", ErrMutexNotOwner)
	}

	if m.nesting == 0 {
		g.exit()
		return newErr("MutexPost", ErrMutexNesting)
	}

	m.nesting--
	if m.nesting > 0 {
		g.exit()
		return nil
	}

	owner := m.owner
	grpRemove(owner, m)
	m.owner = nil

	recomputed, found := grpHighestWaiter(owner)
	newPrio := owner.BasePrio

	if found && recomputed < newPrio {
		newPrio = recomputed
	}

	if newPrio != owner.Prio {
		k.changeTaskPrioLocked(owner, newPrio)
	}

	if m.pend.head != nil {
		w := m.pend.head
		k.wakeTaskLocked(w, PendStatusOK, nil, 0)
		m.owner = w
		m.nesting = 1
		grpAdd(w, m)
	}

	g.exit()

	k.sched()

	return nil
}

// PendAbort cancels the highest-priority (or all) waiter's pend on m.
func (m *Mutex) PendAbort(opt AbortOpt) (int, error) {
	k := m.k
	g := k.enterCS()

	n := k.pendAbortPLocked(&m.pend, opt)
	g.exit()

	if n > 0 {
		k.sched()
	}

	return n, nil
}

// Delete tears down the mutex. If it is currently owned, the owner's
// inherited priority is rolled back before waiters are woken with
// ErrObjectDeleted, matching the "owner death/mutex death" rollback rule
// of §4.7.
func (m *Mutex) Delete(opt DelOpt) (int, error) {
	k := m.k
	g := k.enterCS()

	if !m.pend.empty() && opt == DelNoPend {
		g.exit()
		return 0, newErr("MutexDelete", ErrTaskWaiting)
	}

	if m.owner != nil {
		owner := m.owner
		grpRemove(owner, m)
		m.owner = nil

		recomputed, found := grpHighestWaiter(owner)
		newPrio := owner.BasePrio

		if found && recomputed < newPrio {
			newPrio = recomputed
		}

		if newPrio != owner.Prio {
			k.changeTaskPrioLocked(owner, newPrio)
		}
	}

	n := k.deleteWaitersLocked(&m.pend)
	m.del = true
	g.exit()

	if n > 0 {
		k.sched()
	}

	return n, nil
}

// Owner returns the current owner, or nil if unowned.
func (m *Mutex) Owner() *TCB {
	k := m.k
	g := k.enterCS()
	defer g.exit()

	return m.owner
}
