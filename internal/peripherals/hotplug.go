package peripherals

import (
	"context"
	"time"

	"github.com/jochenvg/go-udev"

	"github.com/openrk/kernel/internal/klog"
	"github.com/openrk/kernel/pkg/rk"
)

// HotplugWatcher is an external, non-task event source — analogous to an
// ISR — that posts to sem whenever a udev "add" event arrives, so a task
// can SemPend to react. Falls back to a timer-simulated event source
// (logged, not silent) when no udev netlink socket is available, e.g.
// inside a container without /run/udev.
type HotplugWatcher struct {
	k    *rk.Kernel
	sem  *rk.Sem
	log  *klog.Logger
	stop context.CancelFunc
}

// NewHotplugWatcher starts monitoring udev "add" events on subsystem.
func NewHotplugWatcher(k *rk.Kernel, sem *rk.Sem, subsystem string) *HotplugWatcher {
	ctx, cancel := context.WithCancel(context.Background())
	h := &HotplugWatcher{k: k, sem: sem, log: klog.Default().With("component", "hotplug"), stop: cancel}

	u := udev.Udev{}
	mon := u.NewMonitorFromNetlink("udev")

	if mon == nil {
		h.log.Warn("no udev netlink monitor available, falling back to timer-simulated hotplug")
		h.runSimulated(ctx)

		return h
	}

	if err := mon.FilterAddMatchSubsystem(subsystem); err != nil {
		h.log.Warn("udev subsystem filter failed, falling back to timer-simulated hotplug", "err", err)
		h.runSimulated(ctx)

		return h
	}

	devCh, errCh, err := mon.DeviceChan(ctx)
	if err != nil {
		h.log.Warn("udev monitor start failed, falling back to timer-simulated hotplug", "err", err)
		h.runSimulated(ctx)

		return h
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case dev := <-devCh:
				if dev == nil {
					continue
				}

				if dev.Action() == "add" {
					h.post()
				}
			case err := <-errCh:
				h.log.Warn("udev monitor error", "err", err)
			}
		}
	}()

	return h
}

func (h *HotplugWatcher) post() {
	if _, err := h.sem.Post(rk.PostFIFO); err != nil {
		h.log.Warn("hotplug sem post failed", "err", err)
	}
}

// runSimulated posts a synthetic device-add event every interval, purely
// to keep the rest of the pipeline exercisable off-target.
func (h *HotplugWatcher) runSimulated(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.post()
			}
		}
	}()
}

// Close stops the watcher.
func (h *HotplugWatcher) Close() {
	h.stop()
}
