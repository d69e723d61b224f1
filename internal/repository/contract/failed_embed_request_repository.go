package contract

import (
	"context"
	"time"

	"image-search-be/internal/entity"

	"github.com/google/uuid"
)

type FailedEmbedRequestRepository interface {
	Create(ctx context.Context, req *entity.FailedEmbedRequest) error
	Update(ctx context.Context, req *entity.FailedEmbedRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.FailedEmbedRequest, error)
	FindByStatus(ctx context.Context, status entity.RetryStatus) ([]*entity.FailedEmbedRequest, error)
	// FindPendingForRetry returns PENDING records whose retry count is below
	// maxAttempts, oldest first.
	FindPendingForRetry(ctx context.Context, maxAttempts int) ([]*entity.FailedEmbedRequest, error)
	// DeleteFinishedBefore removes SUCCEEDED and FAILED records last touched
	// before the cutoff. Returns the number of rows removed.
	DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	CountByStatus(ctx context.Context, status entity.RetryStatus) (int64, error)
}
