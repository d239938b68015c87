package shutdown

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/honeycarbs/hirepipe/pkg/logging"
)

type Stoppable interface {
	Shutdown(ctx context.Context) error
}

// StopFunc adapts a plain function to Stoppable
type StopFunc func(ctx context.Context) error

func (f StopFunc) Shutdown(ctx context.Context) error {
	return f(ctx)
}

// Graceful waits for one of signals and then stops each component in order,
// sharing a single timeout
func Graceful(signals []os.Signal, timeout time.Duration, log *logging.Logger, stops ...Stoppable) {
	sigCtx, stop := signal.NotifyContext(context.Background(), signals...)
	defer stop()

	<-sigCtx.Done()
	log.Info("shutdown signal received")

	Stop(timeout, log, stops...)
}

// Stop runs the shutdown sequence without waiting for a signal
func Stop(timeout time.Duration, log *logging.Logger, stops ...Stoppable) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	failed := false
	for _, s := range stops {
		if err := s.Shutdown(ctx); err != nil {
			failed = true
			log.Warn("component shutdown failed", "err", err)
		}
	}

	if failed {
		log.Warn("graceful shutdown completed with error")
	} else {
		log.Info("graceful shutdown completed successfully")
	}
}
