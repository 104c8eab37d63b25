package listener

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgnsrekt/voicesim/internal/command"
	"github.com/dgnsrekt/voicesim/internal/queue"
	"github.com/dgnsrekt/voicesim/internal/report"
)

// recordingSink captures enqueued utterances and can fail on demand.
type recordingSink struct {
	mu    sync.Mutex
	items []command.Utterance
	err   error
}

func (s *recordingSink) Enqueue(u command.Utterance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.items = append(s.items, u)
	return nil
}

func (s *recordingSink) snapshot() []command.Utterance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]command.Utterance(nil), s.items...)
}

func fastConfig() Config {
	return Config{
		MinDelay: time.Millisecond,
		MaxDelay: 2 * time.Millisecond,
		Catalog:  command.DefaultCatalog(),
	}
}

func TestListener_HearsAndEnqueues(t *testing.T) {
	sink := &recordingSink{}
	reporter, rec := report.NewRecorder()
	l := New(sink, reporter, fastConfig(), WithRand(rand.New(rand.NewSource(3))))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	require.Eventually(t, func() bool { return len(sink.snapshot()) >= 10 }, 2*time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("listener did not stop after cancellation")
	}

	items := sink.snapshot()
	lines := rec.Lines()
	require.Len(t, lines, len(items), "every heard command is enqueued exactly once")
	for i, u := range items {
		assert.Equal(t, "[Mic] Heard: "+u.Command.String(), lines[i])
		assert.Contains(t, command.DefaultCatalog(), u.Command)
	}
	assert.Equal(t, int64(len(items)), l.Heard())
}

func TestListener_DeterministicSequence(t *testing.T) {
	run := func() []command.Command {
		sink := &recordingSink{}
		reporter, _ := report.NewRecorder()
		l := New(sink, reporter, fastConfig(), WithRand(rand.New(rand.NewSource(11))))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			_ = l.Run(ctx)
			close(done)
		}()
		require.Eventually(t, func() bool { return len(sink.snapshot()) >= 5 }, 2*time.Second, time.Millisecond)
		cancel()
		<-done

		var cmds []command.Command
		for _, u := range sink.snapshot()[:5] {
			cmds = append(cmds, u.Command)
		}
		return cmds
	}

	assert.Equal(t, run(), run())
}

func TestListener_CancelDuringWait(t *testing.T) {
	sink := &recordingSink{}
	reporter, rec := report.NewRecorder()
	cfg := fastConfig()
	cfg.MinDelay, cfg.MaxDelay = time.Minute, time.Minute
	l := New(sink, reporter, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	start := time.Now()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
		assert.Less(t, time.Since(start), 500*time.Millisecond)
	case <-time.After(time.Second):
		t.Fatal("listener did not observe cancellation while waiting")
	}
	assert.Empty(t, sink.snapshot())
	assert.Empty(t, rec.Lines())
}

func TestListener_ClosedQueueStopsQuietly(t *testing.T) {
	q := queue.New()
	require.NoError(t, q.Close())

	reporter, _ := report.NewRecorder()
	l := New(q, reporter, fastConfig())

	done := make(chan error, 1)
	go func() { done <- l.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("listener kept running against a closed queue")
	}
	assert.Equal(t, int64(0), l.Heard())
}

func TestListener_SinkErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	sink := &recordingSink{err: boom}
	reporter, _ := report.NewRecorder()
	l := New(sink, reporter, fastConfig())

	err := l.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Name, l.Name())
}
