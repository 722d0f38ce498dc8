// Package board holds the off-core, on-target integration points: the
// tick source and the console, the two pieces of "board support" a real
// port needs that the scheduler core itself never touches.
package board

import (
	"time"

	"github.com/warthog618/go-gpiocdev"

	"github.com/openrk/kernel/internal/klog"
	"github.com/openrk/kernel/pkg/rk"
)

// GPIOTick drives a Kernel's tick engine from a falling edge on a GPIO
// line — the dynamic-tick alternative to a periodic hardware timer
// interrupt. When no gpiochip is available (off-target, in CI, in a
// demo) it falls back to a software ticker running at a fixed 1 kHz; the
// fallback is logged, never silent.
type GPIOTick struct {
	k    *rk.Kernel
	log  *klog.Logger
	line *gpiocdev.Line
	stop chan struct{}
}

// NewGPIOTick opens offset on chipName and arranges for every falling
// edge to advance k's tick engine by one tick.
func NewGPIOTick(k *rk.Kernel, chipName string, offset int) (*GPIOTick, error) {
	gt := &GPIOTick{k: k, log: klog.Default().With("component", "gpiotick"), stop: make(chan struct{})}

	line, err := gpiocdev.RequestLine(chipName, offset,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithEventHandler(gt.onEdge),
	)
	if err != nil {
		gt.log.Warn("no gpiochip available, falling back to software ticker", "chip", chipName, "err", err)
		gt.runSoftwareTicker()

		return gt, nil
	}

	gt.line = line

	return gt, nil
}

func (gt *GPIOTick) onEdge(evt gpiocdev.LineEvent) {
	gt.k.IntEnter()
	gt.k.Tick(1)
	gt.k.IntExit()
}

// runSoftwareTicker starts a goroutine that calls Tick(1) every
// millisecond, standing in for the GPIO edge. It does not read the
// kernel's Config.TickRateHz.
func (gt *GPIOTick) runSoftwareTicker() {
	go func() {
		ticker := time.NewTicker(time.Second / 1000)
		defer ticker.Stop()

		for {
			select {
			case <-gt.stop:
				return
			case <-ticker.C:
				gt.k.IntEnter()
				gt.k.Tick(1)
				gt.k.IntExit()
			}
		}
	}()
}

// Close releases the GPIO line (or stops the software ticker fallback).
func (gt *GPIOTick) Close() error {
	close(gt.stop)

	if gt.line != nil {
		return gt.line.Close()
	}

	return nil
}
