package peripherals

import (
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/openrk/kernel/internal/klog"
	"github.com/openrk/kernel/pkg/rk"
)

// AudioSampler posts fixed-size sample buffers to q, one every
// audioBufFrames samples at the stream's sample rate,
// exercising QPost's FIFO ordering and ErrQMax backpressure when the
// consumer falls behind. Falls back to a synthetic sample generator
// (logged, not silent) when portaudio can't open a default input stream.
type AudioSampler struct {
	k      *rk.Kernel
	q      *rk.Queue
	log    *klog.Logger
	stream *portaudio.Stream
	stop   chan struct{}
}

const audioBufFrames = 256

// NewAudioSampler opens the default input device at sampleRate and
// begins posting audioBufFrames-sample buffers to q.
func NewAudioSampler(k *rk.Kernel, q *rk.Queue, sampleRate float64) (*AudioSampler, error) {
	a := &AudioSampler{k: k, q: q, log: klog.Default().With("component", "audio"), stop: make(chan struct{})}

	if err := portaudio.Initialize(); err != nil {
		a.log.Warn("portaudio unavailable, falling back to synthetic samples", "err", err)
		a.runSynthetic(sampleRate)

		return a, nil
	}

	buf := make([]float32, audioBufFrames)

	stream, err := portaudio.OpenDefaultStream(1, 0, sampleRate, len(buf), func(in []float32) {
		copy(buf, in)
		a.post(append([]float32(nil), buf...))
	})
	if err != nil {
		a.log.Warn("no audio device available, falling back to synthetic samples", "err", err)
		portaudio.Terminate()
		a.runSynthetic(sampleRate)

		return a, nil
	}

	if err := stream.Start(); err != nil {
		a.log.Warn("could not start audio stream, falling back to synthetic samples", "err", err)
		stream.Close()
		portaudio.Terminate()
		a.runSynthetic(sampleRate)

		return a, nil
	}

	a.stream = stream

	return a, nil
}

func (a *AudioSampler) post(buf []float32) {
	if err := a.q.Post(buf, uint32(len(buf)*4), rk.PostFIFO); err != nil {
		a.log.Warn("audio buffer dropped, consumer not keeping up", "err", err)
	}
}

// runSynthetic generates silence buffers at the stream's nominal cadence
// so the rest of the pipeline (and its backpressure behavior) can still
// be exercised without a real audio device.
func (a *AudioSampler) runSynthetic(sampleRate float64) {
	go func() {
		buf := make([]float32, audioBufFrames)
		period := time.Duration(float64(audioBufFrames) / sampleRate * float64(time.Second))
		ticker := time.NewTicker(period)
		defer ticker.Stop()

		for {
			select {
			case <-a.stop:
				return
			case <-ticker.C:
				a.post(append([]float32(nil), buf...))
			}
		}
	}()
}

// Close stops sampling and releases the PortAudio stream, if any.
func (a *AudioSampler) Close() error {
	close(a.stop)

	if a.stream == nil {
		return nil
	}

	if err := a.stream.Stop(); err != nil {
		return err
	}

	if err := a.stream.Close(); err != nil {
		return err
	}

	return portaudio.Terminate()
}
