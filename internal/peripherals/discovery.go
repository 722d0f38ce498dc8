package peripherals

import (
	"context"

	"github.com/brutella/dnssd"

	"github.com/openrk/kernel/internal/klog"
	"github.com/openrk/kernel/pkg/rk"
)

// FlagPublished is the bit other tasks FlagPend(AND, CONSUME) on to learn
// the service has been announced.
const FlagPublished uint32 = 1 << 0

const radioServiceType = "_rk-radio._tcp"

// Discovery announces a radio-bus service via DNS-SD (mirroring
// dns_sd_announce) from a task that takes bus (the "radio bus" mutex)
// before publishing and sets FlagPublished on done afterward, so other
// tasks can synchronize on "published" rather than polling.
func Discovery(bus *rk.Mutex, done *rk.FlagGroup, name string, port int) func(arg any) {
	log := klog.Default().With("component", "discovery")

	return func(any) {
		if err := bus.Pend(0, rk.PendBlocking); err != nil {
			log.Warn("discovery could not take radio bus", "err", err)
			return
		}
		defer bus.Post()

		cfg := dnssd.Config{Name: name, Type: radioServiceType, Port: port}

		sv, err := dnssd.NewService(cfg)
		if err != nil {
			log.Error("dnssd: failed to create service", "err", err)
			return
		}

		rp, err := dnssd.NewResponder()
		if err != nil {
			log.Error("dnssd: failed to create responder", "err", err)
			return
		}

		if _, err := rp.Add(sv); err != nil {
			log.Error("dnssd: failed to add service", "err", err)
			return
		}

		log.Info("announcing radio-bus service", "port", port, "name", name)

		go func() {
			if err := rp.Respond(context.Background()); err != nil {
				log.Error("dnssd: responder error", "err", err)
			}
		}()

		if err := done.Post(FlagPublished, rk.FlagSet, rk.PostFIFO); err != nil {
			log.Warn("could not set published flag", "err", err)
		}
	}
}
