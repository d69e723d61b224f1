package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type IndexHandle struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerId   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_index_handles_owner_folder"`
	FolderId  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_index_handles_owner_folder"`
	Dimension int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (IndexHandle) TableName() string {
	return "index_handles"
}

type ImageEmbedding struct {
	ImageId   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OwnerId   uuid.UUID       `gorm:"type:uuid;not null;index:idx_image_embeddings_owner_folder"`
	FolderId  uuid.UUID       `gorm:"type:uuid;not null;index:idx_image_embeddings_owner_folder"`
	Embedding pgvector.Vector `gorm:"type:vector(512)"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime"`
}

func (ImageEmbedding) TableName() string {
	return "image_embeddings"
}
