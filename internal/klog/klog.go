// Package klog is the kernel's ambient logger: a thin wrapper over
// charmbracelet/log giving every subsystem a consistently-named,
// level-filtered logger, plus an optional CSV event trail timestamped
// with a user-supplied strftime format — the same two ingredients
// (structured console output, strftime-formatted timestamps for a
// recorded trail) the teacher's logging and transmit-queue code reach
// for, just pointed at kernel events instead of received packets.
package klog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
)

// Logger is the handle every package in this module logs through.
type Logger struct {
	l *charmlog.Logger
}

var (
	defaultOnce sync.Once
	defaultLog  *Logger
)

// New builds a Logger writing to w, named prefix (e.g. "sched", "mutex").
func New(w io.Writer, prefix string) *Logger {
	l := charmlog.NewWithOptions(w, charmlog.Options{
		Prefix:          prefix,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})

	return &Logger{l: l}
}

// Default returns the process-wide logger, writing to stderr at Info
// level, created lazily on first use.
func Default() *Logger {
	defaultOnce.Do(func() {
		defaultLog = New(os.Stderr, "rk")
	})

	return defaultLog
}

func (lg *Logger) SetLevel(level charmlog.Level) { lg.l.SetLevel(level) }

func (lg *Logger) Debug(msg string, kv ...any) { lg.l.Debug(msg, kv...) }
func (lg *Logger) Info(msg string, kv ...any)  { lg.l.Info(msg, kv...) }
func (lg *Logger) Warn(msg string, kv ...any)  { lg.l.Warn(msg, kv...) }
func (lg *Logger) Error(msg string, kv ...any) { lg.l.Error(msg, kv...) }

// With returns a derived logger carrying the given key/value pairs on
// every subsequent line, mirroring charmlog's own With().
func (lg *Logger) With(kv ...any) *Logger {
	return &Logger{l: lg.l.With(kv...)}
}

// EventTrail appends one CSV line per event to path, each stamped with
// timestampFormat (a strftime pattern, matching the teacher's -T flag),
// for later processing by anything that wants a plain event trail rather
// than the structured console log.
type EventTrail struct {
	mu     sync.Mutex
	f      *os.File
	format string
}

// OpenEventTrail opens (creating if needed, appending if not) a CSV
// event trail at path, timestamping each line with timestampFormat.
func OpenEventTrail(path, timestampFormat string) (*EventTrail, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("klog: open event trail %s: %w", path, err)
	}

	return &EventTrail{f: f, format: timestampFormat}, nil
}

// Record appends one event as "<timestamp>,<kind>,<field>,...".
func (t *EventTrail) Record(kind string, fields ...string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	ts, err := strftime.Format(t.format, time.Now())
	if err != nil {
		return fmt.Errorf("klog: format timestamp: %w", err)
	}

	line := ts + "," + kind
	for _, f := range fields {
		line += "," + f
	}

	_, err = fmt.Fprintln(t.f, line)

	return err
}

// Close flushes and closes the underlying file.
func (t *EventTrail) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.f.Close()
}
