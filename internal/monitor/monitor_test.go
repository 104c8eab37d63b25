package monitor

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgnsrekt/voicesim/internal/report"
)

func TestMonitor_Heartbeats(t *testing.T) {
	reporter, rec := report.NewRecorder()
	m := New(reporter, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	require.Eventually(t, func() bool { return m.Beats() >= 3 }, 2*time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop after cancellation")
	}

	lines := rec.Lines()
	assert.Equal(t, int(m.Beats()), len(lines))
	for _, line := range lines {
		assert.Equal(t, "[Monitor] System OK", line)
	}
}

func TestMonitor_FirstBeatIsImmediate(t *testing.T) {
	reporter, rec := report.NewRecorder()
	m := New(reporter, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	require.Eventually(t, func() bool { return m.Beats() == 1 }, time.Second, time.Millisecond)
	start := time.Now()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
		assert.Less(t, time.Since(start), 500*time.Millisecond)
	case <-time.After(time.Second):
		t.Fatal("monitor did not observe cancellation while sleeping")
	}
	assert.Equal(t, 1, rec.Count("[Monitor] System OK"))
}

func TestMonitor_DebugHealth(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	reporter, _ := report.NewRecorder()
	m := New(reporter, time.Minute, WithLogger(logger))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, m.Run(ctx))

	assert.Contains(t, buf.String(), "Heartbeat")
	assert.Contains(t, buf.String(), "heap=")
	assert.Equal(t, Name, m.Name())
}
