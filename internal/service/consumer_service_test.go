package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"image-search-be/internal/dto"
	"image-search-be/internal/entity"
	"image-search-be/internal/repository/memory"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConsumerFixture(embedder *fakeEmbedder, manager *fakeIndexManager, batchSize int) (*consumerService, IRetryService, *memory.FailedEmbedRequestRepository) {
	embedRepo := memory.NewFailedEmbedRequestRepository().(*memory.FailedEmbedRequestRepository)
	deletionRepo := memory.NewFailedIndexDeletionRepository()
	batch := NewBatchEmbedder(embedder, manager, nopLogger{})
	retrySvc := NewRetryService(embedRepo, deletionRepo, batch, manager, 5, 7, nopLogger{})
	cs := NewConsumerService(nil, "EMBED_IMAGES", batch, retrySvc, batchSize, 0, 1, nopLogger{}).(*consumerService)
	return cs, retrySvc, embedRepo
}

func embedMessage(t *testing.T, ownerId, folderId uuid.UUID, paths []string) *message.Message {
	t.Helper()
	payload := dto.EmbedBatchMessage{OwnerId: ownerId, FolderId: folderId}
	for _, p := range paths {
		payload.Images = append(payload.Images, dto.EmbedImageItem{
			ImageId:  uuid.New(),
			FilePath: p,
		})
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return message.NewMessage(watermill.NewUUID(), raw)
}

func TestProcessMessageIndexesAllItems(t *testing.T) {
	embedder := newFakeEmbedder(4)
	manager := newFakeIndexManager()
	cs, _, _ := newConsumerFixture(embedder, manager, 50)

	ownerId, folderId := uuid.New(), uuid.New()
	paths := make([]string, 120)
	for i := range paths {
		paths[i] = fmt.Sprintf("/data/img_%03d.jpg", i)
	}
	msg := embedMessage(t, ownerId, folderId, paths)

	cs.processMessage(context.Background(), msg)

	assert.Equal(t, 120, manager.insertedCount(ownerId, folderId))
	select {
	case <-msg.Acked():
	default:
		t.Fatal("message was not acked")
	}
}

func TestProcessMessageQueuesFailedBatchAndContinues(t *testing.T) {
	embedder := newFakeEmbedder(4)
	manager := newFakeIndexManager()
	cs, _, embedRepo := newConsumerFixture(embedder, manager, 50)

	ownerId, folderId := uuid.New(), uuid.New()
	paths := make([]string, 120)
	for i := range paths {
		paths[i] = fmt.Sprintf("/data/img_%03d.jpg", i)
	}
	// Poison one image in the middle batch (items 50-99).
	embedder.failPaths[paths[60]] = true
	msg := embedMessage(t, ownerId, folderId, paths)

	cs.processMessage(context.Background(), msg)

	// First and last batch still landed.
	assert.Equal(t, 70, manager.insertedCount(ownerId, folderId))

	pending, err := embedRepo.FindByStatus(context.Background(), entity.RetryStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Len(t, pending[0].Items, 50)
	assert.Equal(t, 0, pending[0].RetryCount)
	assert.Equal(t, ownerId, pending[0].OwnerId)
	assert.Equal(t, folderId, pending[0].FolderId)

	select {
	case <-msg.Acked():
	default:
		t.Fatal("message was not acked")
	}
}

func TestProcessMessageAcksInvalidPayload(t *testing.T) {
	embedder := newFakeEmbedder(4)
	manager := newFakeIndexManager()
	cs, _, embedRepo := newConsumerFixture(embedder, manager, 50)

	msg := message.NewMessage(watermill.NewUUID(), []byte("not json"))
	cs.processMessage(context.Background(), msg)

	pending, err := embedRepo.FindByStatus(context.Background(), entity.RetryStatusPending)
	require.NoError(t, err)
	assert.Empty(t, pending)
	select {
	case <-msg.Acked():
	default:
		t.Fatal("invalid message was not acked")
	}
}

func TestProcessMessageRetriedBatchSucceeds(t *testing.T) {
	embedder := newFakeEmbedder(4)
	manager := newFakeIndexManager()
	cs, retrySvc, embedRepo := newConsumerFixture(embedder, manager, 50)

	ownerId, folderId := uuid.New(), uuid.New()
	embedder.failPaths["/data/flaky.jpg"] = true
	msg := embedMessage(t, ownerId, folderId, []string{"/data/flaky.jpg"})
	cs.processMessage(context.Background(), msg)

	require.Equal(t, 0, manager.insertedCount(ownerId, folderId))

	// Once the upstream recovers, the retry pass drains the queue.
	delete(embedder.failPaths, "/data/flaky.jpg")
	retrySvc.RetryFailedEmbeds(context.Background())

	assert.Equal(t, 1, manager.insertedCount(ownerId, folderId))
	succeeded, err := embedRepo.FindByStatus(context.Background(), entity.RetryStatusSucceeded)
	require.NoError(t, err)
	assert.Len(t, succeeded, 1)
}
