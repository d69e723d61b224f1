package contract

import (
	"context"
	"time"

	"image-search-be/internal/entity"

	"github.com/google/uuid"
)

type FailedIndexDeletionRepository interface {
	Create(ctx context.Context, del *entity.FailedIndexDeletion) error
	Update(ctx context.Context, del *entity.FailedIndexDeletion) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.FailedIndexDeletion, error)
	FindByStatus(ctx context.Context, status entity.RetryStatus) ([]*entity.FailedIndexDeletion, error)
	FindPendingForRetry(ctx context.Context, maxAttempts int) ([]*entity.FailedIndexDeletion, error)
	DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	CountByStatus(ctx context.Context, status entity.RetryStatus) (int64, error)
}
