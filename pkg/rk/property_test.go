package rk

import (
	"testing"

	"pgregory.net/rapid"
)

// TestPropertyBitmapHighestMatchesLinearScan checks newPrioBitmap's O(1)
// highest() against a brute-force scan over whatever set of priorities
// rapid decides to insert and remove, across a range of bitmap widths that
// exercise word boundaries (64-bit words under the hood).
func TestPropertyBitmapHighestMatchesLinearScan(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		prios := rapid.IntRange(1, 200).Draw(rt, "prios")
		b := newPrioBitmap(prios)

		present := make(map[int]bool)

		steps := rapid.IntRange(1, 50).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			p := rapid.IntRange(0, prios-1).Draw(rt, "p")

			if rapid.Bool().Draw(rt, "insert") {
				b.insert(Prio(p))
				present[p] = true
			} else {
				b.remove(Prio(p))
				delete(present, p)
			}

			wantEmpty := len(present) == 0
			if b.empty() != wantEmpty {
				rt.Fatalf("empty() = %v, want %v", b.empty(), wantEmpty)
			}

			if !wantEmpty {
				want := prios
				for q := range present {
					if q < want {
						want = q
					}
				}

				if got := int(b.highest()); got != want {
					rt.Fatalf("highest() = %d, want %d (present=%v)", got, want, present)
				}
			}

			for q := 0; q < prios; q++ {
				if got := b.isSet(Prio(q)); got != present[q] {
					rt.Fatalf("isSet(%d) = %v, want %v", q, got, present[q])
				}
			}
		}
	})
}

// TestPropertyPendListStaysPriorityOrdered checks that after any sequence
// of insertPrio/remove/changePrio operations, the list is non-decreasing
// in Prio and every still-inserted TCB is reachable from head exactly
// once.
func TestPropertyPendListStaysPriorityOrdered(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(rt, "n")
		tasks := make([]*TCB, n)
		for i := range tasks {
			tasks[i] = &TCB{Name: string(rune('a' + i))}
		}

		var pl pendList
		inserted := make(map[*TCB]bool)

		steps := rapid.IntRange(1, 60).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			idx := rapid.IntRange(0, n-1).Draw(rt, "idx")
			task := tasks[idx]

			switch rapid.IntRange(0, 2).Draw(rt, "op") {
			case 0: // insert (no-op if already present)
				if !inserted[task] {
					task.Prio = Prio(rapid.IntRange(0, 100).Draw(rt, "prio"))
					pl.insertPrio(task)
					inserted[task] = true
				}
			case 1: // remove
				pl.remove(task)
				inserted[task] = false
			case 2: // change priority (no-op if not present)
				if inserted[task] {
					task.Prio = Prio(rapid.IntRange(0, 100).Draw(rt, "newprio"))
					pl.changePrio(task)
				}
			}

			all := pl.all()

			count := 0
			for _, present := range inserted {
				if present {
					count++
				}
			}

			if len(all) != count {
				rt.Fatalf("pend list has %d entries, want %d", len(all), count)
			}

			for j := 1; j < len(all); j++ {
				if all[j-1].Prio > all[j].Prio {
					rt.Fatalf("pend list out of order at %d: %v", j, all)
				}
			}
		}
	})
}

// TestPropertyTickListStaysDeadlineOrdered checks that tickList.insert/
// remove maintain ascending-deadline order and that expired(now) returns
// exactly (and only) the entries whose deadline has passed.
func TestPropertyTickListStaysDeadlineOrdered(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(rt, "n")
		tasks := make([]*TCB, n)
		for i := range tasks {
			tasks[i] = &TCB{Name: string(rune('a' + i))}
		}

		var tl tickList
		deadlines := make(map[*TCB]uint64)

		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			idx := rapid.IntRange(0, n-1).Draw(rt, "idx")
			task := tasks[idx]

			if rapid.Bool().Draw(rt, "insert") {
				if _, present := deadlines[task]; !present {
					d := uint64(rapid.IntRange(0, 1000).Draw(rt, "deadline"))
					tl.insert(task, d)
					deadlines[task] = d
				}
			} else {
				tl.remove(task)
				delete(deadlines, task)
			}

			var prev uint64
			count := 0
			for cur := tl.head; cur != nil; cur = cur.tick.next {
				if count > 0 && cur.tickDeadline < prev {
					rt.Fatalf("tick list out of order: %d before %d", prev, cur.tickDeadline)
				}

				prev = cur.tickDeadline
				count++
			}

			if count != len(deadlines) {
				rt.Fatalf("tick list has %d entries, want %d", count, len(deadlines))
			}
		}

		now := uint64(500)
		expired := tl.expired(now)

		for _, task := range expired {
			if deadlines[task] > now {
				rt.Fatalf("expired() returned %s with deadline %d > now %d", task.Name, deadlines[task], now)
			}
		}

		for cur := tl.head; cur != nil; cur = cur.tick.next {
			if cur.tickDeadline <= now {
				rt.Fatalf("expired() left %s behind with deadline %d <= now %d", cur.Name, cur.tickDeadline, now)
			}
		}
	})
}
