// Package listener simulates the microphone: after a random pause it "hears"
// a command from the catalog, reports it and hands it to the command queue.
package listener

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/voicesim/internal/clock"
	"github.com/dgnsrekt/voicesim/internal/command"
	"github.com/dgnsrekt/voicesim/internal/queue"
	"github.com/dgnsrekt/voicesim/internal/report"
	"github.com/dgnsrekt/voicesim/internal/tracing"
)

// Name identifies the listener to the orchestrator.
const Name = "listener"

// Sink receives heard utterances. Enqueue must not block.
type Sink interface {
	Enqueue(u command.Utterance) error
}

// Config holds listener timing and vocabulary.
type Config struct {
	MinDelay time.Duration
	MaxDelay time.Duration
	Catalog  command.Catalog
}

// Listener produces utterances at random intervals.
type Listener struct {
	config   Config
	sink     Sink
	reporter *report.Reporter
	rng      *rand.Rand
	logger   *log.Logger

	heard atomic.Int64
}

// Option configures a Listener.
type Option func(*Listener)

// WithRand sets the random source used for delays and command selection.
func WithRand(rng *rand.Rand) Option {
	return func(l *Listener) {
		l.rng = rng
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger *log.Logger) Option {
	return func(l *Listener) {
		l.logger = logger
	}
}

// New creates a listener feeding sink.
func New(sink Sink, reporter *report.Reporter, config Config, opts ...Option) *Listener {
	l := &Listener{
		config:   config,
		sink:     sink,
		reporter: reporter,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.rng == nil {
		l.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if l.logger == nil {
		l.logger = log.WithPrefix(Name)
	}
	return l
}

// Name returns the component name.
func (l *Listener) Name() string {
	return Name
}

// Heard returns how many utterances were enqueued.
func (l *Listener) Heard() int64 {
	return l.heard.Load()
}

// Run hears commands until ctx is cancelled. Cancellation is only observed
// while waiting; once a command is picked it is always enqueued.
func (l *Listener) Run(ctx context.Context) error {
	l.logger.Debug("Listening", "minDelay", l.config.MinDelay, "maxDelay", l.config.MaxDelay)

	for {
		delay := clock.Uniform(l.config.MinDelay, l.config.MaxDelay, l.rng.Float64)
		if !clock.Sleep(ctx, delay) {
			l.logger.Debug("Listener stopped", "heard", l.Heard())
			return nil
		}

		if err := l.hear(ctx, l.config.Catalog.Pick(l.rng)); err != nil {
			if errors.Is(err, queue.ErrQueueClosed) {
				l.logger.Debug("Queue closed, listener stopping")
				return nil
			}
			return err
		}
	}
}

// hear reports cmd and enqueues it.
func (l *Listener) hear(ctx context.Context, cmd command.Command) (err error) {
	u := command.NewUtterance(cmd)

	_, span := tracing.StartSpan(ctx, "listener.heard", tracing.KindProducer)
	defer func() { tracing.EndSpan(span, err) }()
	span.WithAttributes(map[string]string{
		"utterance.id": u.ID,
		"command":      cmd.String(),
	})

	l.reporter.Report(report.TagMic, "Heard: %s", cmd)

	if err = l.sink.Enqueue(u); err != nil {
		return fmt.Errorf("unable to enqueue %q: %w", cmd, err)
	}
	l.heard.Add(1)
	l.logger.Debug("Enqueued", "id", u.ID, "command", cmd)
	return nil
}
