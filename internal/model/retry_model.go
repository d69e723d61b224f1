package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type FailedEmbedRequest struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	FolderId   uuid.UUID      `gorm:"type:uuid;not null;index"`
	Payload    datatypes.JSON `gorm:"type:jsonb;not null"`
	Status     string         `gorm:"type:varchar(20);not null;index"`
	RetryCount int            `gorm:"default:0"`
	LastError  string         `gorm:"type:text"`
	CreatedAt  time.Time      `gorm:"autoCreateTime;index"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`
}

func (FailedEmbedRequest) TableName() string {
	return "failed_embed_requests"
}

type FailedIndexDeletion struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerId    uuid.UUID `gorm:"type:uuid;not null;index"`
	FolderId   uuid.UUID `gorm:"type:uuid;not null;index"`
	Status     string    `gorm:"type:varchar(20);not null;index"`
	RetryCount int       `gorm:"default:0"`
	LastError  string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (FailedIndexDeletion) TableName() string {
	return "failed_index_deletions"
}
