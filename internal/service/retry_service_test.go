package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"image-search-be/internal/entity"
	"image-search-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordFailedEmbedCreatesPendingRecord(t *testing.T) {
	embedRepo := memory.NewFailedEmbedRequestRepository()
	deletionRepo := memory.NewFailedIndexDeletionRepository()
	embedder := newFakeEmbedder(4)
	manager := newFakeIndexManager()
	svc := NewRetryService(embedRepo, deletionRepo, NewBatchEmbedder(embedder, manager, nopLogger{}), manager, 5, 7, nopLogger{})

	ctx := context.Background()
	items := []entity.EmbedItem{{ImageId: uuid.New(), FilePath: "/data/a.jpg"}}
	err := svc.RecordFailedEmbed(ctx, uuid.New(), uuid.New(), items, errors.New("service unreachable"))
	require.NoError(t, err)

	pending, err := embedRepo.FindByStatus(ctx, entity.RetryStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 0, pending[0].RetryCount)
	assert.Equal(t, "service unreachable", pending[0].LastError)
	assert.Equal(t, items, pending[0].Items)
}

func TestRetryFailedEmbedsSucceeds(t *testing.T) {
	embedRepo := memory.NewFailedEmbedRequestRepository()
	deletionRepo := memory.NewFailedIndexDeletionRepository()
	embedder := newFakeEmbedder(4)
	manager := newFakeIndexManager()
	svc := NewRetryService(embedRepo, deletionRepo, NewBatchEmbedder(embedder, manager, nopLogger{}), manager, 5, 7, nopLogger{})

	ctx := context.Background()
	ownerId, folderId := uuid.New(), uuid.New()
	items := []entity.EmbedItem{
		{ImageId: uuid.New(), FilePath: "/data/a.jpg"},
		{ImageId: uuid.New(), FilePath: "/data/b.jpg"},
	}
	require.NoError(t, svc.RecordFailedEmbed(ctx, ownerId, folderId, items, errors.New("boom")))

	svc.RetryFailedEmbeds(ctx)

	succeeded, err := embedRepo.FindByStatus(ctx, entity.RetryStatusSucceeded)
	require.NoError(t, err)
	require.Len(t, succeeded, 1)
	assert.Empty(t, succeeded[0].LastError)
	assert.Equal(t, 0, succeeded[0].RetryCount)
	assert.Equal(t, 2, manager.insertedCount(ownerId, folderId))
}

func TestRetryFailedEmbedsIncrementsCountOncePerAttempt(t *testing.T) {
	embedRepo := memory.NewFailedEmbedRequestRepository()
	deletionRepo := memory.NewFailedIndexDeletionRepository()
	embedder := newFakeEmbedder(4)
	embedder.failPaths["/data/bad.jpg"] = true
	manager := newFakeIndexManager()
	svc := NewRetryService(embedRepo, deletionRepo, NewBatchEmbedder(embedder, manager, nopLogger{}), manager, 5, 7, nopLogger{})

	ctx := context.Background()
	items := []entity.EmbedItem{{ImageId: uuid.New(), FilePath: "/data/bad.jpg"}}
	require.NoError(t, svc.RecordFailedEmbed(ctx, uuid.New(), uuid.New(), items, errors.New("boom")))

	svc.RetryFailedEmbeds(ctx)

	pending, err := embedRepo.FindByStatus(ctx, entity.RetryStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].RetryCount)
	assert.Contains(t, pending[0].LastError, "/data/bad.jpg")
}

func TestRetryFailedEmbedsGoesTerminalAtAttemptLimit(t *testing.T) {
	const maxAttempts = 3
	embedRepo := memory.NewFailedEmbedRequestRepository()
	deletionRepo := memory.NewFailedIndexDeletionRepository()
	embedder := newFakeEmbedder(4)
	embedder.failPaths["/data/bad.jpg"] = true
	manager := newFakeIndexManager()
	svc := NewRetryService(embedRepo, deletionRepo, NewBatchEmbedder(embedder, manager, nopLogger{}), manager, maxAttempts, 7, nopLogger{})

	ctx := context.Background()
	items := []entity.EmbedItem{{ImageId: uuid.New(), FilePath: "/data/bad.jpg"}}
	require.NoError(t, svc.RecordFailedEmbed(ctx, uuid.New(), uuid.New(), items, errors.New("boom")))

	for i := 0; i < maxAttempts; i++ {
		svc.RetryFailedEmbeds(ctx)
	}

	failed, err := embedRepo.FindByStatus(ctx, entity.RetryStatusFailed)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, maxAttempts, failed[0].RetryCount)

	// Terminal records are no longer picked up.
	svc.RetryFailedEmbeds(ctx)
	failed, err = embedRepo.FindByStatus(ctx, entity.RetryStatusFailed)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, maxAttempts, failed[0].RetryCount)
}

func TestRetryFailedIndexDeletions(t *testing.T) {
	embedRepo := memory.NewFailedEmbedRequestRepository()
	deletionRepo := memory.NewFailedIndexDeletionRepository()
	embedder := newFakeEmbedder(4)
	manager := newFakeIndexManager()
	svc := NewRetryService(embedRepo, deletionRepo, NewBatchEmbedder(embedder, manager, nopLogger{}), manager, 5, 7, nopLogger{})

	ctx := context.Background()
	ownerId, folderId := uuid.New(), uuid.New()
	require.NoError(t, svc.RecordFailedIndexDeletion(ctx, ownerId, folderId, errors.New("backend down")))

	svc.RetryFailedIndexDeletions(ctx)

	succeeded, err := deletionRepo.FindByStatus(ctx, entity.RetryStatusSucceeded)
	require.NoError(t, err)
	require.Len(t, succeeded, 1)
	assert.Contains(t, manager.deleted, indexKey(ownerId, folderId))
}

func TestRetryFailedIndexDeletionFailureStaysPending(t *testing.T) {
	embedRepo := memory.NewFailedEmbedRequestRepository()
	deletionRepo := memory.NewFailedIndexDeletionRepository()
	embedder := newFakeEmbedder(4)
	manager := newFakeIndexManager()
	manager.deleteErr = errors.New("backend down")
	svc := NewRetryService(embedRepo, deletionRepo, NewBatchEmbedder(embedder, manager, nopLogger{}), manager, 5, 7, nopLogger{})

	ctx := context.Background()
	require.NoError(t, svc.RecordFailedIndexDeletion(ctx, uuid.New(), uuid.New(), errors.New("backend down")))

	svc.RetryFailedIndexDeletions(ctx)

	pending, err := deletionRepo.FindByStatus(ctx, entity.RetryStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].RetryCount)
	assert.Equal(t, "backend down", pending[0].LastError)
}

func TestRetryFailedIndexDeletionExhaustsIntoStats(t *testing.T) {
	const maxAttempts = 3
	embedRepo := memory.NewFailedEmbedRequestRepository()
	deletionRepo := memory.NewFailedIndexDeletionRepository()
	embedder := newFakeEmbedder(4)
	manager := newFakeIndexManager()
	manager.deleteErr = errors.New("backend down")
	svc := NewRetryService(embedRepo, deletionRepo, NewBatchEmbedder(embedder, manager, nopLogger{}), manager, maxAttempts, 7, nopLogger{})

	ctx := context.Background()
	require.NoError(t, svc.RecordFailedIndexDeletion(ctx, uuid.New(), uuid.New(), errors.New("backend down")))

	for i := 0; i < maxAttempts; i++ {
		svc.RetryFailedIndexDeletions(ctx)
	}

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.DeletionFailed)
	assert.Equal(t, int64(0), stats.DeletionPending)
}

func TestCleanupOldRecordsKeepsRecentAndUnfinished(t *testing.T) {
	embedRepo := memory.NewFailedEmbedRequestRepository()
	deletionRepo := memory.NewFailedIndexDeletionRepository()
	embedder := newFakeEmbedder(4)
	manager := newFakeIndexManager()
	svc := NewRetryService(embedRepo, deletionRepo, NewBatchEmbedder(embedder, manager, nopLogger{}), manager, 5, 7, nopLogger{})

	ctx := context.Background()
	old := time.Now().AddDate(0, 0, -30)

	oldSucceeded := &entity.FailedEmbedRequest{
		Id:        uuid.New(),
		OwnerId:   uuid.New(),
		FolderId:  uuid.New(),
		Status:    entity.RetryStatusSucceeded,
		CreatedAt: old,
		UpdatedAt: &old,
	}
	oldPending := &entity.FailedEmbedRequest{
		Id:        uuid.New(),
		OwnerId:   uuid.New(),
		FolderId:  uuid.New(),
		Status:    entity.RetryStatusPending,
		CreatedAt: old,
		UpdatedAt: &old,
	}
	freshSucceeded := &entity.FailedEmbedRequest{
		Id:        uuid.New(),
		OwnerId:   uuid.New(),
		FolderId:  uuid.New(),
		Status:    entity.RetryStatusSucceeded,
		CreatedAt: time.Now(),
	}
	require.NoError(t, embedRepo.Create(ctx, oldSucceeded))
	require.NoError(t, embedRepo.Create(ctx, oldPending))
	require.NoError(t, embedRepo.Create(ctx, freshSucceeded))

	svc.CleanupOldRecords(ctx)

	gone, err := embedRepo.FindById(ctx, oldSucceeded.Id)
	require.NoError(t, err)
	assert.Nil(t, gone)

	kept, err := embedRepo.FindById(ctx, oldPending.Id)
	require.NoError(t, err)
	assert.NotNil(t, kept)

	kept, err = embedRepo.FindById(ctx, freshSucceeded.Id)
	require.NoError(t, err)
	assert.NotNil(t, kept)
}

func TestRetryQueueStats(t *testing.T) {
	embedRepo := memory.NewFailedEmbedRequestRepository()
	deletionRepo := memory.NewFailedIndexDeletionRepository()
	embedder := newFakeEmbedder(4)
	manager := newFakeIndexManager()
	svc := NewRetryService(embedRepo, deletionRepo, NewBatchEmbedder(embedder, manager, nopLogger{}), manager, 5, 7, nopLogger{})

	ctx := context.Background()
	for _, status := range []entity.RetryStatus{
		entity.RetryStatusPending,
		entity.RetryStatusPending,
		entity.RetryStatusSucceeded,
		entity.RetryStatusFailed,
	} {
		require.NoError(t, embedRepo.Create(ctx, &entity.FailedEmbedRequest{
			Id:        uuid.New(),
			OwnerId:   uuid.New(),
			FolderId:  uuid.New(),
			Status:    status,
			CreatedAt: time.Now(),
		}))
	}
	require.NoError(t, deletionRepo.Create(ctx, &entity.FailedIndexDeletion{
		Id:        uuid.New(),
		OwnerId:   uuid.New(),
		FolderId:  uuid.New(),
		Status:    entity.RetryStatusPending,
		CreatedAt: time.Now(),
	}))

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.EmbedPending)
	assert.Equal(t, int64(0), stats.EmbedInProgress)
	assert.Equal(t, int64(1), stats.EmbedSucceeded)
	assert.Equal(t, int64(1), stats.EmbedFailed)
	assert.Equal(t, int64(1), stats.DeletionPending)
	assert.Equal(t, int64(0), stats.DeletionSucceeded)
	assert.Equal(t, int64(0), stats.DeletionFailed)
}
