package processor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/voicesim/internal/clock"
	"github.com/dgnsrekt/voicesim/internal/command"
	"github.com/dgnsrekt/voicesim/internal/queue"
	"github.com/dgnsrekt/voicesim/internal/report"
	"github.com/dgnsrekt/voicesim/internal/tracing"
)

// Name identifies the processor to the orchestrator.
const Name = "processor"

// Source supplies utterances. Dequeue returns queue.ErrTimeout when nothing
// arrived within timeout.
type Source interface {
	Dequeue(ctx context.Context, timeout time.Duration) (command.Utterance, error)
}

// Config holds processor timing.
type Config struct {
	// PollTimeout bounds each wait on the queue.
	PollTimeout time.Duration

	// WorkDuration is the simulated execution time per command.
	WorkDuration time.Duration
}

// Processor consumes and "executes" commands.
type Processor struct {
	config   Config
	source   Source
	reporter *report.Reporter
	resolver *command.Resolver
	logger   *log.Logger

	// emergency is called when a command resolves to ActionEmergency.
	emergency func(reason string)

	// idle throttles the empty-poll debug line; the processor polls ten
	// times a second when nothing is queued.
	idle rate.Sometimes

	executed atomic.Int64
}

// Option configures a Processor.
type Option func(*Processor)

// WithResolver sets the text to firmware action resolver.
func WithResolver(resolver *command.Resolver) Option {
	return func(p *Processor) {
		p.resolver = resolver
	}
}

// WithEmergency sets the handler for commands that resolve to
// command.ActionEmergency. It must not block on the processor returning.
func WithEmergency(fn func(reason string)) Option {
	return func(p *Processor) {
		p.emergency = fn
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger *log.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// New creates a processor consuming from source.
func New(source Source, reporter *report.Reporter, config Config, opts ...Option) *Processor {
	p := &Processor{
		config:   config,
		source:   source,
		reporter: reporter,
		idle:     rate.Sometimes{Interval: time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.resolver == nil {
		p.resolver = command.NewResolver(command.DefaultActions())
	}
	if p.logger == nil {
		p.logger = log.WithPrefix(Name)
	}
	return p
}

// Name returns the component name.
func (p *Processor) Name() string {
	return Name
}

// Executed returns how many commands were executed.
func (p *Processor) Executed() int64 {
	return p.executed.Load()
}

// Run polls the source until ctx is cancelled or the source is closed.
// Cancellation is checked before every poll and during the simulated work.
func (p *Processor) Run(ctx context.Context) error {
	p.logger.Debug("Processing", "pollTimeout", p.config.PollTimeout, "work", p.config.WorkDuration)

	for {
		if ctx.Err() != nil {
			p.logger.Debug("Processor stopped", "executed", p.Executed())
			return nil
		}

		u, err := p.source.Dequeue(ctx, p.config.PollTimeout)
		switch {
		case err == nil:
		case errors.Is(err, queue.ErrTimeout):
			// Nothing queued; poll again right away.
			p.idle.Do(func() { p.logger.Debug("Queue idle") })
			continue
		case errors.Is(err, queue.ErrQueueClosed):
			p.logger.Debug("Queue closed, processor stopping", "executed", p.Executed())
			return nil
		case ctx.Err() != nil:
			continue
		default:
			return fmt.Errorf("unable to dequeue command: %w", err)
		}

		p.execute(ctx, u)

		if !clock.Sleep(ctx, p.config.WorkDuration) {
			p.logger.Debug("Processor stopped during work", "executed", p.Executed())
			return nil
		}
	}
}

// execute reports u and records what it would have done.
func (p *Processor) execute(ctx context.Context, u command.Utterance) {
	_, span := tracing.StartSpan(ctx, "processor.execute", tracing.KindConsumer)
	defer tracing.EndSpan(span, nil)

	action := p.resolver.Resolve(u.Command.String())
	span.WithAttributes(map[string]string{
		"utterance.id": u.ID,
		"command":      u.Command.String(),
		"action":       string(action),
	})

	p.reporter.Report(report.TagProcessor, "Executing command for: %s", u.Command)
	p.executed.Add(1)

	p.logger.Debug("Resolved command",
		"id", u.ID,
		"action", action,
		"queued", time.Since(u.HeardAt).Round(time.Millisecond))

	if action == command.ActionEmergency && p.emergency != nil {
		p.logger.Warn("Emergency command received", "id", u.ID, "command", u.Command)
		p.emergency(u.Command.String())
	}
}
