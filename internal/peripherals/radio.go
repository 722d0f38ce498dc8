package peripherals

import (
	"github.com/xylo04/goHamlib"

	"github.com/openrk/kernel/internal/klog"
	"github.com/openrk/kernel/pkg/rk"
)

// RadioControl is a task that takes the same "radio bus" mutex as the
// Discovery task and pends on its own task-private semaphore for
// control commands (frequency changes) applied via goHamlib. Because
// rkdemo runs Discovery at a higher priority on the same bus, this
// pairing is the demo binary's concrete instance of the
// priority-inheritance scenarios: while Discovery is blocked on
// RadioControl's hold of bus, RadioControl runs at Discovery's priority.
func RadioControl(k *rk.Kernel, bus *rk.Mutex, rig *goHamlib.Rig, nextFreqHz func() (hz float64, more bool)) func(arg any) {
	log := klog.Default().With("component", "radio")

	return func(any) {
		for {
			if _, err := k.TaskSemPend(0, rk.PendBlocking); err != nil {
				log.Warn("radio task sem pend failed", "err", err)
				return
			}

			hz, more := nextFreqHz()
			if !more {
				return
			}

			if err := bus.Pend(0, rk.PendBlocking); err != nil {
				log.Warn("radio could not take radio bus", "err", err)
				continue
			}

			if rig != nil {
				if err := rig.SetFreq(goHamlib.VFOCurrent, hz); err != nil {
					log.Warn("hamlib set frequency failed", "err", err)
				}
			} else {
				log.Info("no rig attached, logging commanded frequency only", "hz", hz)
			}

			if err := bus.Post(); err != nil {
				log.Warn("radio bus release failed", "err", err)
			}
		}
	}
}
