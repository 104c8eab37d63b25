// Package monitor prints the periodic heartbeat. It shares no state with the
// listener or the processor.
package monitor

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/dgnsrekt/voicesim/internal/clock"
	"github.com/dgnsrekt/voicesim/internal/report"
)

// Name identifies the monitor to the orchestrator.
const Name = "monitor"

// Monitor reports a heartbeat every interval.
type Monitor struct {
	interval time.Duration
	reporter *report.Reporter
	logger   *log.Logger
	started  time.Time

	beats atomic.Int64
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithLogger sets the diagnostics logger.
func WithLogger(logger *log.Logger) Option {
	return func(m *Monitor) {
		m.logger = logger
	}
}

// New creates a monitor with the given heartbeat interval.
func New(reporter *report.Reporter, interval time.Duration, opts ...Option) *Monitor {
	m := &Monitor{
		interval: interval,
		reporter: reporter,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = log.WithPrefix(Name)
	}
	return m
}

// Name returns the component name.
func (m *Monitor) Name() string {
	return Name
}

// Beats returns how many heartbeats were reported.
func (m *Monitor) Beats() int64 {
	return m.beats.Load()
}

// Run reports a heartbeat, then waits one interval, until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	m.started = time.Now()

	for {
		m.reporter.Report(report.TagMonitor, "System OK")
		m.beats.Add(1)
		m.logHealth()

		if !clock.Sleep(ctx, m.interval) {
			m.logger.Debug("Monitor stopped", "beats", m.Beats())
			return nil
		}
	}
}

// logHealth emits process details at debug level.
func (m *Monitor) logHealth() {
	if m.logger.GetLevel() > log.DebugLevel {
		return
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	m.logger.Debug("Heartbeat",
		"beat", humanize.Comma(m.Beats()),
		"uptime", time.Since(m.started).Round(time.Millisecond),
		"goroutines", runtime.NumGoroutine(),
		"heap", humanize.Bytes(mem.HeapAlloc))
}
