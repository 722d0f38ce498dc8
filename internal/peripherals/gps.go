// Package peripherals hosts the demo tasks that exercise the kernel's
// object types against real third-party domain libraries: a GPS fix
// converter, an audio sampler, a udev hotplug watcher, a DNS-SD
// announcer and a radio-control task sharing a mutex with the announcer.
package peripherals

import (
	"fmt"
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/tzneal/coordconv"

	"github.com/openrk/kernel/internal/klog"
	"github.com/openrk/kernel/pkg/rk"
)

// Fix is a decoded GPS position, staged in geodetic and UTM form.
type Fix struct {
	LatDeg, LonDeg float64
	UTMZone        int
	UTMHemisphere  byte
	Easting        float64
	Northing       float64
}

func degToRad(d float64) float64 { return d * math.Pi / 180 }

func hemisphereRune(h coordconv.Hemisphere) byte {
	if h == coordconv.Southern {
		return 'S'
	}

	return 'N'
}

// decodeFix converts a raw lat/lon pair to UTM the way
// cmd/samoyed-ll2utm does, returning ok=false if the conversion fails
// (e.g. a polar position outside UTM's domain).
func decodeFix(latDeg, lonDeg float64) (Fix, bool) {
	latlng := s2.LatLng{
		Lat: s1.Angle(degToRad(latDeg)),
		Lng: s1.Angle(degToRad(lonDeg)),
	}

	utm, err := coordconv.DefaultUTMConverter.ConvertFromGeodetic(latlng, 0)
	if err != nil {
		return Fix{}, false
	}

	return Fix{
		LatDeg:        latDeg,
		LonDeg:        lonDeg,
		UTMZone:       utm.Zone,
		UTMHemisphere: hemisphereRune(utm.Hemisphere),
		Easting:       utm.Easting,
		Northing:      utm.Northing,
	}, true
}

// GPSSource is a task function: it decodes fixes as they're produced by
// nextFix and posts each one to consumer's private mailbox, pending on
// its own task semaphore between samples so a tick-driven or
// hardware-driven trigger can pace it.
func GPSSource(k *rk.Kernel, consumer *rk.TCB, nextFix func() (lat, lon float64, more bool)) func(arg any) {
	log := klog.Default().With("component", "gps")

	return func(any) {
		for {
			if _, err := k.TaskSemPend(0, rk.PendBlocking); err != nil {
				log.Warn("gps task sem pend failed", "err", err)
				return
			}

			lat, lon, more := nextFix()
			if !more {
				return
			}

			fix, ok := decodeFix(lat, lon)
			if !ok {
				log.Warn("fix outside UTM domain, dropping", "lat", lat, "lon", lon)
				continue
			}

			if err := k.TaskQPost(consumer, fix, uint32(len(fix.String())), rk.PostFIFO); err != nil {
				log.Warn("gps fix post dropped", "err", err)
			}
		}
	}
}

// String formats a Fix the way ll2utm's %d/%c/%.0f/%.0f line does.
func (f Fix) String() string {
	return fmt.Sprintf("UTM zone = %d, hemisphere = %c, easting = %.0f, northing = %.0f",
		f.UTMZone, f.UTMHemisphere, f.Easting, f.Northing)
}
