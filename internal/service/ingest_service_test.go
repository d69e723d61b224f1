package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"image-search-be/internal/dto"
	"image-search-be/pkg/collab"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitForEmbeddingPublishesBatch(t *testing.T) {
	userId := uuid.New()
	folder := collab.FolderRef{FolderId: uuid.New(), OwnerId: userId}
	manager := newFakeIndexManager()
	publisher := &fakePublisher{}
	svc := NewIngestService(newFakeFolderAccess(folder), manager, publisher, nopLogger{})

	req := &dto.EmbedImagesRequest{
		FolderId: folder.FolderId,
		Images: []dto.EmbedImageItem{
			{ImageId: uuid.New(), FilePath: "/data/a.jpg"},
			{ImageId: uuid.New(), FilePath: "/data/b.jpg"},
		},
	}
	resp, err := svc.SubmitForEmbedding(context.Background(), userId, req)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Accepted)
	assert.Equal(t, folder.FolderId, resp.FolderId)

	// The index exists before any embedding work runs.
	assert.Equal(t, 1, manager.createCalls)

	require.Len(t, publisher.payloads, 1)
	var msg dto.EmbedBatchMessage
	require.NoError(t, json.Unmarshal(publisher.payloads[0], &msg))
	assert.Equal(t, folder.OwnerId, msg.OwnerId)
	assert.Equal(t, folder.FolderId, msg.FolderId)
	assert.Equal(t, req.Images, msg.Images)
}

func TestSubmitForEmbeddingSharedFolderUsesOwnerId(t *testing.T) {
	userId := uuid.New()
	shared := collab.FolderRef{FolderId: uuid.New(), OwnerId: uuid.New()}
	publisher := &fakePublisher{}
	svc := NewIngestService(newFakeFolderAccess(shared), newFakeIndexManager(), publisher, nopLogger{})

	req := &dto.EmbedImagesRequest{
		FolderId: shared.FolderId,
		Images:   []dto.EmbedImageItem{{ImageId: uuid.New(), FilePath: "/data/a.jpg"}},
	}
	_, err := svc.SubmitForEmbedding(context.Background(), userId, req)
	require.NoError(t, err)

	var msg dto.EmbedBatchMessage
	require.NoError(t, json.Unmarshal(publisher.payloads[0], &msg))
	// Shared submissions land in the owner's index, not the caller's.
	assert.Equal(t, shared.OwnerId, msg.OwnerId)
}

func TestSubmitForEmbeddingDeniedFolder(t *testing.T) {
	publisher := &fakePublisher{}
	svc := NewIngestService(newFakeFolderAccess(), newFakeIndexManager(), publisher, nopLogger{})

	_, err := svc.SubmitForEmbedding(context.Background(), uuid.New(), &dto.EmbedImagesRequest{
		FolderId: uuid.New(),
		Images:   []dto.EmbedImageItem{{ImageId: uuid.New(), FilePath: "/data/a.jpg"}},
	})
	assert.ErrorIs(t, err, ErrFolderAccessDenied)
	assert.Empty(t, publisher.payloads)
}

func TestSubmitForEmbeddingPublishFailureSurfaces(t *testing.T) {
	userId := uuid.New()
	folder := collab.FolderRef{FolderId: uuid.New(), OwnerId: userId}
	publisher := &fakePublisher{err: errors.New("broker unavailable")}
	svc := NewIngestService(newFakeFolderAccess(folder), newFakeIndexManager(), publisher, nopLogger{})

	_, err := svc.SubmitForEmbedding(context.Background(), userId, &dto.EmbedImagesRequest{
		FolderId: folder.FolderId,
		Images:   []dto.EmbedImageItem{{ImageId: uuid.New(), FilePath: "/data/a.jpg"}},
	})
	assert.ErrorContains(t, err, "broker unavailable")
}
