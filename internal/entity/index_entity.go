package entity

import (
	"time"

	"github.com/google/uuid"
)

// IndexHandle records that a vector index exists for an (owner, folder) pair.
type IndexHandle struct {
	Id        uuid.UUID
	OwnerId   uuid.UUID
	FolderId  uuid.UUID
	Dimension int
	CreatedAt time.Time
}

// ImageEmbedding is a stored vector for one image within a folder index.
type ImageEmbedding struct {
	ImageId   uuid.UUID
	OwnerId   uuid.UUID
	FolderId  uuid.UUID
	Embedding []float32
	CreatedAt time.Time
}
