package service

import (
	"context"
	"fmt"

	"image-search-be/internal/entity"
	"image-search-be/internal/pkg/logger"
	"image-search-be/pkg/embedding"
	"image-search-be/pkg/vectorindex"

	"github.com/google/uuid"
)

// BatchEmbedder embeds a batch of images and writes the vectors into the
// folder index. The consumer and the retry path share it so a retried batch
// goes through exactly the same code as a fresh one.
type BatchEmbedder struct {
	embeddingProvider embedding.EmbeddingProvider
	indexManager      vectorindex.Manager
	logger            logger.ILogger
}

func NewBatchEmbedder(
	embeddingProvider embedding.EmbeddingProvider,
	indexManager vectorindex.Manager,
	log logger.ILogger,
) *BatchEmbedder {
	return &BatchEmbedder{
		embeddingProvider: embeddingProvider,
		indexManager:      indexManager,
		logger:            log,
	}
}

// embedAndIndex fails the whole batch on the first error so the caller can
// queue it for retry as a unit.
func (b *BatchEmbedder) embedAndIndex(ctx context.Context, ownerId uuid.UUID, folderId uuid.UUID, items []entity.EmbedItem) error {
	if len(items) == 0 {
		return nil
	}

	entries := make([]vectorindex.Entry, 0, len(items))
	for _, item := range items {
		vector, err := b.embeddingProvider.EmbedImage(ctx, item.FilePath)
		if err != nil {
			return fmt.Errorf("embed image %s: %w", item.ImageId, err)
		}
		entries = append(entries, vectorindex.Entry{
			ImageId: item.ImageId,
			Vector:  vector,
		})
	}

	if err := b.indexManager.InsertBatch(ctx, ownerId, folderId, entries); err != nil {
		return fmt.Errorf("insert batch into index %s/%s: %w", ownerId, folderId, err)
	}

	b.logger.Info("batch_embedder", "Indexed image batch", map[string]interface{}{
		"owner_id":  ownerId.String(),
		"folder_id": folderId.String(),
		"count":     len(entries),
	})
	return nil
}
