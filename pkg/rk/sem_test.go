package rk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSemPendDecrementsWithoutBlocking(t *testing.T) {
	k, _ := newTestKernel(8)

	s, err := k.SemCreate("s", 2)
	require.NoError(t, err)

	ctr, err := s.Pend(0, PendNonBlocking)
	require.NoError(t, err)
	require.Equal(t, uint16(1), ctr)

	require.Equal(t, uint16(1), s.Ctr())
}

func TestSemPendNonBlockingWouldBlock(t *testing.T) {
	k, _ := newTestKernel(8)

	s, err := k.SemCreate("s", 0)
	require.NoError(t, err)

	_, err = s.Pend(0, PendNonBlocking)
	requireErrKind(t, err, ErrWouldBlock)
}

func TestSemPostSaturatesAtMax(t *testing.T) {
	k, _ := newTestKernel(8)

	s, err := k.SemCreate("s", 0)
	require.NoError(t, err)

	s.Max = 1

	_, err = s.Post(PostFIFO)
	require.NoError(t, err)

	_, err = s.Post(PostFIFO)
	requireErrKind(t, err, ErrSemOvf)
}

// blockWaiterOn puts waiter to sleep on pobj exactly as Pend would, then
// drives the resulting reschedule — the two steps Pend performs under its
// own critical section and after releasing it, respectively. Lets tests
// exercise the wake half of a pend/post pair without a second goroutine
// standing in for the blocked task.
func blockWaiterOn(k *Kernel, waiter *TCB, pobj PendObj, pendOn PendOn, timeout uint64) {
	g := k.enterCS()
	k.blockCurrentLocked(waiter, pobj, pendOn, timeout)
	g.exit()

	k.sched()
}

func TestSemBlockAndWake(t *testing.T) {
	k, disp := newTestKernel(8)

	waiter := mustTask(k, "waiter", 5)
	require.NoError(t, k.Start())
	require.Same(t, waiter, k.Current())

	s, err := k.SemCreate("s", 0)
	require.NoError(t, err)

	blockWaiterOn(k, waiter, s, PendOnSem, 0)

	require.Equal(t, StatePEND, waiter.State)
	require.Same(t, k.idle, k.Current())
	require.NotEmpty(t, disp.switches)

	_, err = s.Post(PostFIFO)
	require.NoError(t, err)

	require.Equal(t, StateRDY, waiter.State)
	require.Equal(t, PendStatusOK, waiter.PendStatus)
	require.Same(t, waiter, k.Current())
}

func TestSemSetFailsWithWaiters(t *testing.T) {
	k, _ := newTestKernel(8)

	waiter := mustTask(k, "waiter", 5)
	require.NoError(t, k.Start())

	s, err := k.SemCreate("s", 0)
	require.NoError(t, err)

	blockWaiterOn(k, waiter, s, PendOnSem, 0)

	err = s.Set(5)
	requireErrKind(t, err, ErrTaskWaiting)
}

func TestSemDeleteWakesWaitersWithObjectDeleted(t *testing.T) {
	k, _ := newTestKernel(8)

	waiter := mustTask(k, "waiter", 5)
	require.NoError(t, k.Start())

	s, err := k.SemCreate("s", 0)
	require.NoError(t, err)

	blockWaiterOn(k, waiter, s, PendOnSem, 0)

	n, err := s.Delete(DelAlways)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.Equal(t, PendStatusObjectDeleted, waiter.PendStatus)
	require.Equal(t, StateRDY, waiter.State)
}

func TestSemPendAbort(t *testing.T) {
	k, _ := newTestKernel(8)

	waiter := mustTask(k, "waiter", 5)
	require.NoError(t, k.Start())

	s, err := k.SemCreate("s", 0)
	require.NoError(t, err)

	blockWaiterOn(k, waiter, s, PendOnSem, 0)

	n, err := s.PendAbort(AbortAll)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, PendStatusAbort, waiter.PendStatus)
}
