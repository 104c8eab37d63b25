package orchestrator

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
)

// WatchSignals returns a context that is cancelled on the first SIGINT or
// SIGTERM, or when the returned cancel function is called. A second signal
// calls onRepeat, if set, and ends the watch.
func WatchSignals(ctx context.Context, logger *log.Logger, onRepeat func()) (context.Context, context.CancelFunc) {
	sigCtx, cancelSig := context.WithCancel(ctx)
	watchCtx, stopWatch := context.WithCancel(ctx)

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		received := 0
		for {
			select {
			case sig := <-sigCh:
				received++
				if received == 1 {
					logger.Info("Received shutdown signal", "signal", sig)
					cancelSig()
					continue
				}
				logger.Warn("Received repeated shutdown signal", "signal", sig)
				if onRepeat != nil {
					onRepeat()
				}
				return
			case <-watchCtx.Done():
				logger.Debug("Signal watcher released")
				return
			}
		}
	}()

	return sigCtx, func() {
		stopWatch()
		cancelSig()
	}
}
