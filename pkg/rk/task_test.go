package rk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTaskCreateRejectsInvalidPrio(t *testing.T) {
	k, _ := newTestKernel(8)

	_, err := k.TaskCreate("t", func(any) {}, nil, -1, 0, 4096, 0)
	requireErrKind(t, err, ErrPrioInvalid)

	_, err = k.TaskCreate("t", func(any) {}, nil, 8, 0, 4096, 0)
	requireErrKind(t, err, ErrPrioInvalid)

	_, err = k.TaskCreate("idle-clash", func(any) {}, nil, k.cfg.IdlePrio(), 0, 4096, 0)
	requireErrKind(t, err, ErrPrioInvalid)
}

func TestTaskCreateRejectsNilEntry(t *testing.T) {
	k, _ := newTestKernel(8)

	_, err := k.TaskCreate("t", nil, nil, 3, 0, 4096, 0)
	requireErrKind(t, err, ErrArgInvalid)
}

func TestTaskDeleteTransfersOwnedMutexes(t *testing.T) {
	k, _ := newTestKernel(16)

	owner := mustTask(k, "owner", 5)
	waiter := mustTask(k, "waiter", 2)

	m, err := k.MutexCreate("m")
	require.NoError(t, err)

	k.current = owner
	require.NoError(t, m.Pend(0, PendBlocking))

	k.current = waiter
	require.NoError(t, m.Pend(0, PendBlocking))

	require.NoError(t, k.TaskDelete(owner))

	require.Equal(t, StateDel, owner.State)
	require.Same(t, waiter, m.Owner())
	require.Equal(t, StateRDY, waiter.State)
}

func TestTaskSuspendResumeNesting(t *testing.T) {
	k, _ := newTestKernel(8)

	task := mustTask(k, "t", 5)

	require.NoError(t, k.TaskSuspend(task))
	require.NoError(t, k.TaskSuspend(task))
	require.Equal(t, uint8(2), task.SuspendCtr)
	require.True(t, task.State.hasSuspend())

	require.NoError(t, k.TaskResume(task))
	require.True(t, task.State.hasSuspend()) // still one level held

	require.NoError(t, k.TaskResume(task))
	require.False(t, task.State.hasSuspend())
	require.Equal(t, StateRDY, task.State)
}

func TestTaskResumeWithoutSuspendFails(t *testing.T) {
	k, _ := newTestKernel(8)

	task := mustTask(k, "t", 5)

	err := k.TaskResume(task)
	requireErrKind(t, err, ErrTaskNotSuspended)
}

func TestTaskSuspendRefusesIdle(t *testing.T) {
	k, _ := newTestKernel(8)

	err := k.TaskSuspend(k.idle)
	requireErrKind(t, err, ErrArgInvalid)
}

func TestTaskChangePrioMovesReadyBucket(t *testing.T) {
	k, _ := newTestKernel(16)

	task := mustTask(k, "t", 10)

	require.NoError(t, k.TaskChangePrio(task, 3))
	require.Equal(t, Prio(3), task.Prio)
	require.Equal(t, Prio(3), task.BasePrio)
	require.Same(t, task, k.ready.head(3))
}

func TestTaskRegGetSet(t *testing.T) {
	k, _ := newTestKernel(8)

	task := mustTask(k, "t", 5)

	require.NoError(t, k.TaskRegSet(task, 2, 0xdead))
	v, err := k.TaskRegGet(task, 2)
	require.NoError(t, err)
	require.EqualValues(t, 0xdead, v)

	_, err = k.TaskRegGet(task, 4)
	requireErrKind(t, err, ErrRegIDInvalid)
}
