package rk

// tickList is C4: the single list of time-waiting TCBs, sorted by absolute
// deadline. This module implements the dynamic-tick-friendly variant:
// every entry carries an absolute deadline (tcb.tickDeadline) compared
// against a monotonic TickCtr, so a periodic-tick port can walk-and-wake
// exactly the entries whose deadline has passed, and a dynamic-tick port
// can read the head's deadline to program its next one-shot.
type tickList struct {
	head *TCB
}

func (tl *tickList) insert(t *TCB, deadline uint64) {
	t.tickDeadline = deadline

	if tl.head == nil || deadline < tl.head.tickDeadline {
		t.tick.next = tl.head
		t.tick.prev = nil

		if tl.head != nil {
			tl.head.tick.prev = t
		}

		tl.head = t
		t.onTickList = true

		return
	}

	cur := tl.head
	for cur.tick.next != nil && cur.tick.next.tickDeadline <= deadline {
		cur = cur.tick.next
	}

	t.tick.next = cur.tick.next
	t.tick.prev = cur

	if cur.tick.next != nil {
		cur.tick.next.tick.prev = t
	}

	cur.tick.next = t
	t.onTickList = true
}

func (tl *tickList) remove(t *TCB) {
	if !t.onTickList {
		return
	}

	if t.tick.prev != nil {
		t.tick.prev.tick.next = t.tick.next
	} else {
		tl.head = t.tick.next
	}

	if t.tick.next != nil {
		t.tick.next.tick.prev = t.tick.prev
	}

	t.tick.next = nil
	t.tick.prev = nil
	t.onTickList = false
}

// expired pops every entry whose deadline is <= now, in deadline order.
func (tl *tickList) expired(now uint64) []*TCB {
	var out []*TCB

	for tl.head != nil && tl.head.tickDeadline <= now {
		t := tl.head
		tl.remove(t)
		out = append(out, t)
	}

	return out
}

// nextDeadline reports the head's deadline for a dynamic-tick port to
// program its next one-shot interrupt; ok is false when the list is empty.
func (tl *tickList) nextDeadline() (deadline uint64, ok bool) {
	if tl.head == nil {
		return 0, false
	}

	return tl.head.tickDeadline, true
}
