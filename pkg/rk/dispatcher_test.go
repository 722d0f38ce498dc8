package rk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// requireErrKind asserts err is a *KernelError of kind. Only four ErrKind
// values (timeout/abort/deleted/would-block) have an exported *KernelError
// sentinel to compare against with errors.Is; every other kind needs this
// to unwrap and check the field directly.
func requireErrKind(t *testing.T, err error, kind ErrKind) {
	t.Helper()

	var ke *KernelError
	require.ErrorAs(t, err, &ke)
	require.Equal(t, kind, ke.Kind)
}

// fakeDispatcher records switches without doing anything stack/goroutine
// related — sufficient for exercising the kernel's state-machine
// transitions from a single Go test goroutine, the way a unit test for
// this kind of scheduler core has no real multitasking to drive.
type fakeDispatcher struct {
	switches [][2]*TCB
	fromISR  [][2]*TCB
	started  *TCB
}

func (d *fakeDispatcher) Dispatch(cur, next *TCB) {
	d.switches = append(d.switches, [2]*TCB{cur, next})
}

func (d *fakeDispatcher) DispatchFromISR(cur, next *TCB) {
	d.fromISR = append(d.fromISR, [2]*TCB{cur, next})
}

func (d *fakeDispatcher) StartHighest(highest *TCB) {
	d.started = highest
}

// newTestKernel builds an initialized (idle-only) kernel wired to a
// fakeDispatcher. Call k.Start() once any tasks are created to set
// k.current, or set it directly for tests that don't need a real Start.
func newTestKernel(prioMax int) (*Kernel, *fakeDispatcher) {
	cfg := DefaultConfig()
	cfg.PrioMax = prioMax

	disp := &fakeDispatcher{}

	k, err := New(cfg, NewHooks(), disp)
	if err != nil {
		panic(err)
	}

	if err := k.Init(); err != nil {
		panic(err)
	}

	return k, disp
}

func mustTask(k *Kernel, name string, prio Prio) *TCB {
	t, err := k.TaskCreate(name, func(any) {}, nil, prio, 0, 4096, 0)
	if err != nil {
		panic(err)
	}

	return t
}
