package dto

import (
	"github.com/google/uuid"
)

type CreateIndexRequest struct {
	FolderId uuid.UUID `json:"folder_id" validate:"required"`
}

type CreateIndexResponse struct {
	FolderId uuid.UUID `json:"folder_id"`
}

type DeleteIndexResponse struct {
	FolderId uuid.UUID `json:"folder_id"`
	// Queued is true when the teardown failed and was handed to the retry
	// queue instead of completing inline.
	Queued bool `json:"queued"`
}

type RetryQueueStats struct {
	EmbedPending      int64 `json:"embed_pending"`
	EmbedInProgress   int64 `json:"embed_in_progress"`
	EmbedSucceeded    int64 `json:"embed_succeeded"`
	EmbedFailed       int64 `json:"embed_failed"`
	DeletionPending   int64 `json:"deletion_pending"`
	DeletionSucceeded int64 `json:"deletion_succeeded"`
	DeletionFailed    int64 `json:"deletion_failed"`
}
