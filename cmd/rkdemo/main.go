// Command rkdemo wires up a kernel instance, the software port, the
// board/peripheral demo tasks, and runs it for a configurable duration —
// the kernel's equivalent of direwolf's appserver binary.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/openrk/kernel/internal/board"
	"github.com/openrk/kernel/internal/klog"
	"github.com/openrk/kernel/internal/peripherals"
	"github.com/openrk/kernel/internal/softport"
	"github.com/openrk/kernel/pkg/rk"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "Path to a YAML kernel config; defaults built in if omitted.")
	gpioChip := pflag.StringP("gpio-chip", "g", "gpiochip0", "gpiochip device for the tick source.")
	gpioLine := pflag.IntP("gpio-line", "l", 0, "GPIO line offset to use as the tick source.")
	runFor := pflag.DurationP("run-for", "t", 5*time.Second, "How long to run the demo before exiting.")
	help := pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: rkdemo [options]\n\n")
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help {
		pflag.Usage()
		return
	}

	log := klog.Default().With("component", "rkdemo")

	cfg := rk.DefaultConfig()
	if *configPath != "" {
		loaded, err := rk.LoadConfig(*configPath)
		if err != nil {
			log.Error("could not load config", "err", err)
			os.Exit(1)
		}

		cfg = loaded
	}

	port := softport.New()

	k, err := rk.New(cfg, rk.NewHooks(), port)
	if err != nil {
		log.Error("kernel init failed", "err", err)
		os.Exit(1)
	}

	if err := k.Init(); err != nil {
		log.Error("kernel Init failed", "err", err)
		os.Exit(1)
	}

	idle := k.Idle()
	port.Spawn(idle, idle.Entry(), idle.Arg())

	bus, err := k.MutexCreate("radio-bus")
	if err != nil {
		log.Error("mutex create failed", "err", err)
		os.Exit(1)
	}

	published, err := k.FlagCreate("published", 0)
	if err != nil {
		log.Error("flag create failed", "err", err)
		os.Exit(1)
	}

	audioQ, err := k.QCreate("audio", 8)
	if err != nil {
		log.Error("queue create failed", "err", err)
		os.Exit(1)
	}

	hotplugSem, err := k.SemCreate("hotplug", 0)
	if err != nil {
		log.Error("sem create failed", "err", err)
		os.Exit(1)
	}

	var stackPlaceholder [4096]byte

	discoveryTCB, err := k.TaskCreate("discovery", peripherals.Discovery(bus, published, "rkdemo", 8001), nil, 5, uintptr(0), uint32(len(stackPlaceholder)), 0)
	if err != nil {
		log.Error("discovery task create failed", "err", err)
		os.Exit(1)
	}

	port.Spawn(discoveryTCB, discoveryTCB.Entry(), discoveryTCB.Arg())

	radioTCB, err := k.TaskCreate("radio", peripherals.RadioControl(k, bus, nil, func() (float64, bool) { return 0, false }), nil, 6, uintptr(0), uint32(len(stackPlaceholder)), 0)
	if err != nil {
		log.Error("radio task create failed", "err", err)
		os.Exit(1)
	}

	port.Spawn(radioTCB, radioTCB.Entry(), radioTCB.Arg())

	audioConsumerTCB, err := k.TaskCreate("audio-consumer", audioConsumer(log, audioQ), nil, 4, uintptr(0), uint32(len(stackPlaceholder)), 0)
	if err != nil {
		log.Error("audio consumer task create failed", "err", err)
		os.Exit(1)
	}

	port.Spawn(audioConsumerTCB, audioConsumerTCB.Entry(), audioConsumerTCB.Arg())

	sampler, err := peripherals.NewAudioSampler(k, audioQ, 8000)
	if err != nil {
		log.Error("audio sampler init failed", "err", err)
		os.Exit(1)
	}

	defer sampler.Close()

	hotplug := peripherals.NewHotplugWatcher(k, hotplugSem, "usb")
	defer hotplug.Close()

	gtick, err := board.NewGPIOTick(k, *gpioChip, *gpioLine)
	if err != nil {
		log.Error("gpio tick source failed", "err", err)
		os.Exit(1)
	}

	defer gtick.Close()

	log.Info("starting kernel", "run_for", runFor.String())

	go func() {
		if err := k.Start(); err != nil {
			log.Error("kernel start failed", "err", err)
			os.Exit(1)
		}
	}()

	time.Sleep(*runFor)
	log.Info("run-for elapsed, exiting")
}

// audioConsumer drains audioQ, demonstrating QPend on the queue the
// sampler's QPost fills.
func audioConsumer(log *klog.Logger, q *rk.Queue) func(arg any) {
	return func(any) {
		for {
			_, _, err := q.Pend(0, rk.PendBlocking)
			if err != nil {
				log.Warn("audio consumer pend failed", "err", err)
				return
			}
		}
	}
}
