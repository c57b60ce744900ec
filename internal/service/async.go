package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// backgroundTimeout bounds fire-and-forget work such as emails and events
const backgroundTimeout = 15 * time.Second

// background runs fire-and-forget tasks. Failures are logged and never
// retried. Wait blocks until every started task has finished.
type background struct {
	wg     sync.WaitGroup
	logger *zap.Logger
}

// Go runs fn detached from ctx's cancellation but keeping its values
func (b *background) Go(ctx context.Context, task string, fn func(ctx context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, backgroundTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			b.logger.Warn("background task failed", zap.String("task", task), zap.Error(err))
		}
	}()
}

// Wait blocks until all started tasks return
func (b *background) Wait() {
	b.wg.Wait()
}
