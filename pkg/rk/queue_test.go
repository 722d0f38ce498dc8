package rk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueuePostThenPendFIFO(t *testing.T) {
	k, _ := newTestKernel(8)

	q, err := k.QCreate("q", 4)
	require.NoError(t, err)

	require.NoError(t, q.Post("a", 1, PostFIFO))
	require.NoError(t, q.Post("b", 1, PostFIFO))

	msg, _, err := q.Pend(0, PendNonBlocking)
	require.NoError(t, err)
	require.Equal(t, "a", msg)

	msg, _, err = q.Pend(0, PendNonBlocking)
	require.NoError(t, err)
	require.Equal(t, "b", msg)
}

func TestQueuePostLIFO(t *testing.T) {
	k, _ := newTestKernel(8)

	q, err := k.QCreate("q", 4)
	require.NoError(t, err)

	require.NoError(t, q.Post("a", 1, PostFIFO))
	require.NoError(t, q.Post("b", 1, PostLIFO))

	msg, _, err := q.Pend(0, PendNonBlocking)
	require.NoError(t, err)
	require.Equal(t, "b", msg)
}

func TestQueuePostFailsWhenFull(t *testing.T) {
	k, _ := newTestKernel(8)

	q, err := k.QCreate("q", 1)
	require.NoError(t, err)

	require.NoError(t, q.Post("a", 1, PostFIFO))

	err = q.Post("b", 1, PostFIFO)
	requireErrKind(t, err, ErrQMax)
}

func TestQueuePendNonBlockingEmpty(t *testing.T) {
	k, _ := newTestKernel(8)

	q, err := k.QCreate("q", 4)
	require.NoError(t, err)

	_, _, err = q.Pend(0, PendNonBlocking)
	requireErrKind(t, err, ErrWouldBlock)
}

func TestQueuePostDeliversDirectlyToWaiter(t *testing.T) {
	k, _ := newTestKernel(8)

	waiter := mustTask(k, "waiter", 5)

	q, err := k.QCreate("q", 4)
	require.NoError(t, err)

	g := k.enterCS()
	k.current = waiter
	k.blockCurrentLocked(waiter, q, PendOnQueue, 0)
	g.exit()
	k.sched()

	require.NoError(t, q.Post("hello", 5, PostFIFO))

	require.Equal(t, StateRDY, waiter.State)
	require.Equal(t, "hello", waiter.MsgPtr)
	require.Empty(t, q.buf) // delivered directly, never buffered
}

func TestQueueBroadcastWakesEveryWaiter(t *testing.T) {
	k, _ := newTestKernel(8)

	a := mustTask(k, "a", 5)
	b := mustTask(k, "b", 6)

	q, err := k.QCreate("q", 4)
	require.NoError(t, err)

	g := k.enterCS()
	k.current = a
	k.blockCurrentLocked(a, q, PendOnQueue, 0)
	k.current = b
	k.blockCurrentLocked(b, q, PendOnQueue, 0)
	g.exit()

	require.NoError(t, q.Post("go", 2, PostBroadcast))

	require.Equal(t, StateRDY, a.State)
	require.Equal(t, StateRDY, b.State)
	require.Equal(t, "go", a.MsgPtr)
	require.Equal(t, "go", b.MsgPtr)
}

func TestQueueFlush(t *testing.T) {
	k, _ := newTestKernel(8)

	q, err := k.QCreate("q", 4)
	require.NoError(t, err)

	require.NoError(t, q.Post("a", 1, PostFIFO))
	require.NoError(t, q.Post("b", 1, PostFIFO))

	require.Equal(t, 2, q.Flush())
	require.Empty(t, q.buf)
}

func TestQueueDeleteWakesWaitersWithObjectDeleted(t *testing.T) {
	k, _ := newTestKernel(8)

	waiter := mustTask(k, "waiter", 5)

	q, err := k.QCreate("q", 4)
	require.NoError(t, err)

	g := k.enterCS()
	k.current = waiter
	k.blockCurrentLocked(waiter, q, PendOnQueue, 0)
	g.exit()
	k.sched()

	n, err := q.Delete(DelAlways)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, PendStatusObjectDeleted, waiter.PendStatus)
}
