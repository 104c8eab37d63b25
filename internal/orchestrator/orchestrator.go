package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/sourcegraph/conc"

	"github.com/dgnsrekt/voicesim/internal/command"
	"github.com/dgnsrekt/voicesim/internal/config"
	"github.com/dgnsrekt/voicesim/internal/listener"
	"github.com/dgnsrekt/voicesim/internal/monitor"
	"github.com/dgnsrekt/voicesim/internal/processor"
	"github.com/dgnsrekt/voicesim/internal/queue"
	"github.com/dgnsrekt/voicesim/internal/report"
)

// Component is a long-running worker. Run must return promptly once ctx is
// cancelled.
type Component interface {
	Name() string
	Run(ctx context.Context) error
}

// Stats summarizes a run.
type Stats struct {
	Queue    queue.Stats
	Heard    int64
	Executed int64
	Beats    int64
}

type handle struct {
	component Component
	state     *StateMachine
	cancel    context.CancelFunc

	mu  sync.Mutex
	err error
}

// signal asks the component to stop. Safe to call repeatedly.
func (h *handle) signal() {
	h.state.Transition(StateCancelling)
	if h.cancel != nil {
		h.cancel()
	}
}

func (h *handle) finish(err error) {
	h.mu.Lock()
	h.err = err
	h.mu.Unlock()
	h.state.Transition(StateStopped)
}

func (h *handle) result() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Orchestrator runs the listener, processor and monitor and shuts them down.
type Orchestrator struct {
	config   config.Config
	queue    *queue.CommandQueue
	reporter *report.Reporter
	rng      *rand.Rand
	logger   *log.Logger
	extra    []Component

	listener  *listener.Listener
	processor *processor.Processor
	monitor   *monitor.Monitor

	mu        sync.Mutex
	handles   []*handle
	byName    map[string]*handle
	started   bool
	startedAt time.Time

	wg       conc.WaitGroup
	stopOnce sync.Once
	stopErr  error

	emergency     chan struct{}
	emergencyOnce sync.Once
}

// New validates cfg and wires the queue and workers.
func New(cfg config.Config, opts ...Option) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &Orchestrator{
		config:    cfg,
		byName:    make(map[string]*handle),
		emergency: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.queue == nil {
		o.queue = queue.New()
	}
	if o.reporter == nil {
		o.reporter = report.Stdout()
	}
	if o.logger == nil {
		o.logger = log.Default()
	}
	if o.rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		o.rng = rand.New(rand.NewSource(seed))
	}

	o.listener = listener.New(o.queue, o.reporter, listener.Config{
		MinDelay: cfg.MinDelay,
		MaxDelay: cfg.MaxDelay,
		Catalog:  cfg.Catalog(),
	}, listener.WithRand(o.rng), listener.WithLogger(o.logger.WithPrefix(listener.Name)))

	o.processor = processor.New(o.queue, o.reporter, processor.Config{
		PollTimeout:  cfg.PollTimeout,
		WorkDuration: cfg.WorkDuration,
	}, processor.WithResolver(command.NewResolver(command.ActionsFor(cfg.Catalog()))),
		processor.WithEmergency(func(reason string) { _ = o.EmergencyStop(reason) }),
		processor.WithLogger(o.logger.WithPrefix(processor.Name)))

	o.monitor = monitor.New(o.reporter, cfg.Heartbeat, monitor.WithLogger(o.logger.WithPrefix(monitor.Name)))

	components := append([]Component{o.listener, o.processor, o.monitor}, o.extra...)
	for _, c := range components {
		if _, ok := o.byName[c.Name()]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateComponent, c.Name())
		}
		h := &handle{component: c, state: NewStateMachine()}
		o.handles = append(o.handles, h)
		o.byName[c.Name()] = h
	}

	return o, nil
}

// Start launches every component on its own goroutine. Component contexts
// keep ctx's values but not its cancellation; only Cancel and Stop end them.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.started {
		return ErrAlreadyStarted
	}
	o.started = true
	o.startedAt = time.Now()

	base := context.WithoutCancel(ctx)
	for _, h := range o.handles {
		cctx, cancel := context.WithCancel(base)
		h.cancel = cancel
		h.state.Transition(StateRunning)

		o.wg.Go(func() {
			defer cancel()
			err := h.component.Run(cctx)
			if err != nil {
				o.logger.Error("Component failed", "component", h.component.Name(), "err", err)
			} else {
				o.logger.Debug("Component stopped", "component", h.component.Name())
			}
			h.finish(err)
		})
	}

	o.logger.Debug("Started components", "count", len(o.handles))
	return nil
}

// Cancel signals the named component to stop. Cancelling a component that
// is already cancelling or stopped does nothing.
func (o *Orchestrator) Cancel(name string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.started {
		return ErrNotStarted
	}
	h, ok := o.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownComponent, name)
	}

	o.logger.Debug("Cancelling component", "component", name, "state", h.state.Current())
	h.signal()
	return nil
}

// Stop cancels every component, waits for all of them to return and closes
// the queue. A panic inside a component is re-raised here. Later calls
// return the first call's result.
func (o *Orchestrator) Stop() error {
	o.mu.Lock()
	started := o.started
	o.mu.Unlock()
	if !started {
		return ErrNotStarted
	}

	o.stopOnce.Do(func() {
		o.reporter.Println("Terminating processes...")

		o.mu.Lock()
		for _, h := range o.handles {
			h.signal()
		}
		o.mu.Unlock()

		o.wg.Wait()

		if err := o.queue.Close(); err != nil {
			o.logger.Warn("Failed to close queue", "err", err)
		}

		var errs []error
		for _, h := range o.handles {
			if err := h.result(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", h.component.Name(), err))
			}
		}
		o.stopErr = errors.Join(errs...)

		o.logSummary()
	})

	return o.stopErr
}

// EmergencyStop sends the EMERGENCY_STOP action and signals every component
// to stop at once. It does not wait for them; Run notices and finishes the
// shutdown. Only the first call has an effect.
func (o *Orchestrator) EmergencyStop(reason string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.started {
		return ErrNotStarted
	}

	o.emergencyOnce.Do(func() {
		o.logger.Warn("Emergency stop", "action", command.ActionEmergency, "reason", reason)
		for _, h := range o.handles {
			h.signal()
		}
		close(o.emergency)
	})
	return nil
}

// Emergency is closed once EmergencyStop has been called.
func (o *Orchestrator) Emergency() <-chan struct{} {
	return o.emergency
}

// Run starts the components, waits for the configured run time, for ctx to
// end or for an emergency stop, then stops everything.
func (o *Orchestrator) Run(ctx context.Context) error {
	if err := o.Start(ctx); err != nil {
		return err
	}

	timer := time.NewTimer(o.config.RunFor)
	defer timer.Stop()

	select {
	case <-timer.C:
		o.logger.Debug("Run time elapsed", "runFor", o.config.RunFor)
	case <-ctx.Done():
		o.logger.Debug("Run interrupted", "cause", context.Cause(ctx))
	case <-o.emergency:
		o.logger.Debug("Run ended by emergency stop")
	}

	return o.Stop()
}

// States returns each component's current state keyed by name.
func (o *Orchestrator) States() map[string]State {
	o.mu.Lock()
	defer o.mu.Unlock()

	states := make(map[string]State, len(o.handles))
	for _, h := range o.handles {
		states[h.component.Name()] = h.state.Current()
	}
	return states
}

// Stats returns the queue and worker counters.
func (o *Orchestrator) Stats() Stats {
	return Stats{
		Queue:    o.queue.Stats(),
		Heard:    o.listener.Heard(),
		Executed: o.processor.Executed(),
		Beats:    o.monitor.Beats(),
	}
}

func (o *Orchestrator) logSummary() {
	stats := o.Stats()
	o.logger.Info("Shutdown complete",
		"uptime", time.Since(o.startedAt).Round(time.Millisecond),
		"heard", humanize.Comma(stats.Heard),
		"executed", humanize.Comma(stats.Executed),
		"heartbeats", humanize.Comma(stats.Beats),
		"unprocessed", stats.Queue.CurrentSize,
		"peakQueue", stats.Queue.PeakSize)
}
