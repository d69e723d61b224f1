package entity

import (
	"time"

	"github.com/google/uuid"
)

// RetryStatus is the lifecycle of a queued retry record.
type RetryStatus string

const (
	RetryStatusPending    RetryStatus = "PENDING"
	RetryStatusInProgress RetryStatus = "IN_PROGRESS"
	RetryStatusSucceeded  RetryStatus = "SUCCEEDED"
	RetryStatusFailed     RetryStatus = "FAILED"
)

// FailedEmbedRequest is a batch of images whose embedding attempt failed and
// is awaiting retry.
type FailedEmbedRequest struct {
	Id         uuid.UUID
	OwnerId    uuid.UUID
	FolderId   uuid.UUID
	Items      []EmbedItem
	Status     RetryStatus
	RetryCount int
	LastError  string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// EmbedItem is one image inside an embed batch.
type EmbedItem struct {
	ImageId  uuid.UUID `json:"image_id"`
	FilePath string    `json:"file_path"`
}

// FailedIndexDeletion is an index teardown that failed and is awaiting retry.
type FailedIndexDeletion struct {
	Id         uuid.UUID
	OwnerId    uuid.UUID
	FolderId   uuid.UUID
	Status     RetryStatus
	RetryCount int
	LastError  string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}
