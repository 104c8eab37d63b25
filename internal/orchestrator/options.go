package orchestrator

import (
	"math/rand"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/voicesim/internal/queue"
	"github.com/dgnsrekt/voicesim/internal/report"
)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithReporter sets where the console lines go.
func WithReporter(reporter *report.Reporter) Option {
	return func(o *Orchestrator) {
		o.reporter = reporter
	}
}

// WithRand sets the listener's random source.
func WithRand(rng *rand.Rand) Option {
	return func(o *Orchestrator) {
		o.rng = rng
	}
}

// WithLogger sets the diagnostics logger. Workers log through prefixed
// children of it.
func WithLogger(logger *log.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithComponent supervises an additional component alongside the built-in
// workers.
func WithComponent(c Component) Option {
	return func(o *Orchestrator) {
		o.extra = append(o.extra, c)
	}
}

// WithQueue replaces the command queue the listener and processor share.
func WithQueue(q *queue.CommandQueue) Option {
	return func(o *Orchestrator) {
		o.queue = q
	}
}
