package service

import (
	"context"
	"sync"
	"time"

	"image-search-be/internal/pkg/logger"
)

// RetryScheduler drives the retry service on independent tickers: embed
// retries, deletion retries, and retention cleanup each run on their own
// cadence.
type RetryScheduler struct {
	retryService     IRetryService
	embedInterval    time.Duration
	deletionInterval time.Duration
	cleanupInterval  time.Duration
	logger           logger.ILogger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRetryScheduler(
	retryService IRetryService,
	embedInterval time.Duration,
	deletionInterval time.Duration,
	cleanupInterval time.Duration,
	log logger.ILogger,
) *RetryScheduler {
	if embedInterval <= 0 {
		embedInterval = 10 * time.Minute
	}
	if deletionInterval <= 0 {
		deletionInterval = 15 * time.Minute
	}
	if cleanupInterval <= 0 {
		cleanupInterval = 24 * time.Hour
	}
	return &RetryScheduler{
		retryService:     retryService,
		embedInterval:    embedInterval,
		deletionInterval: deletionInterval,
		cleanupInterval:  cleanupInterval,
		logger:           log,
	}
}

func (s *RetryScheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.run(ctx, s.embedInterval, s.retryService.RetryFailedEmbeds)
	s.run(ctx, s.deletionInterval, s.retryService.RetryFailedIndexDeletions)
	s.run(ctx, s.cleanupInterval, s.retryService.CleanupOldRecords)

	s.logger.Info("retry_scheduler", "Retry scheduler started", map[string]interface{}{
		"embed_interval":    s.embedInterval.String(),
		"deletion_interval": s.deletionInterval.String(),
		"cleanup_interval":  s.cleanupInterval.String(),
	})
}

func (s *RetryScheduler) run(ctx context.Context, interval time.Duration, task func(context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				task(ctx)
			}
		}
	}()
}

// Stop cancels the tickers and waits for in-flight runs to finish.
func (s *RetryScheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info("retry_scheduler", "Retry scheduler stopped", nil)
}
