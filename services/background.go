package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"bace/logger"
)

// Background runs fire-and-forget tasks detached from the request that
// started them, and lets shutdown wait for the ones still in flight.
type Background struct {
	wg sync.WaitGroup
}

// Go runs fn in its own goroutine with a fresh deadline. Errors and panics
// are logged, never returned.
func (b *Background) Go(ctx context.Context, name string, timeout time.Duration, fn func(context.Context) error) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		log := logger.FromContext(ctx).With(slog.String("task", name))
		defer func() {
			if r := recover(); r != nil {
				log.Error("background task panicked", slog.Any("panic", r))
			}
		}()

		taskCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		if err := fn(taskCtx); err != nil {
			log.Error("background task failed", slog.Any("error", err))
			return
		}
		log.Debug("background task done")
	}()
}

// Wait blocks until every started task has returned.
func (b *Background) Wait() {
	b.wg.Wait()
}
