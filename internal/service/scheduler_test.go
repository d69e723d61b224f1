package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"image-search-be/internal/dto"
	"image-search-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRetryService struct {
	embeds    atomic.Int64
	deletions atomic.Int64
	cleanups  atomic.Int64
}

func (c *countingRetryService) RecordFailedEmbed(ctx context.Context, ownerId uuid.UUID, folderId uuid.UUID, items []entity.EmbedItem, cause error) error {
	return nil
}

func (c *countingRetryService) RecordFailedIndexDeletion(ctx context.Context, ownerId uuid.UUID, folderId uuid.UUID, cause error) error {
	return nil
}

func (c *countingRetryService) RetryFailedEmbeds(ctx context.Context)         { c.embeds.Add(1) }
func (c *countingRetryService) RetryFailedIndexDeletions(ctx context.Context) { c.deletions.Add(1) }
func (c *countingRetryService) CleanupOldRecords(ctx context.Context)         { c.cleanups.Add(1) }

func (c *countingRetryService) Stats(ctx context.Context) (*dto.RetryQueueStats, error) {
	return &dto.RetryQueueStats{}, nil
}

func TestRetrySchedulerRunsAllTasks(t *testing.T) {
	counter := &countingRetryService{}
	sched := NewRetryScheduler(counter, 10*time.Millisecond, 10*time.Millisecond, 10*time.Millisecond, nopLogger{})

	sched.Start(context.Background())
	require.Eventually(t, func() bool {
		return counter.embeds.Load() > 0 && counter.deletions.Load() > 0 && counter.cleanups.Load() > 0
	}, 2*time.Second, 5*time.Millisecond)
	sched.Stop()

	// No ticks fire after Stop returns.
	embeds := counter.embeds.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, embeds, counter.embeds.Load())
}
