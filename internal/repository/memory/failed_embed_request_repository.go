package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"image-search-be/internal/entity"
	"image-search-be/internal/repository/contract"

	"github.com/google/uuid"
)

// FailedEmbedRequestRepository keeps retry records in memory. It backs unit
// tests and single-process deployments without Postgres.
type FailedEmbedRequestRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*entity.FailedEmbedRequest
}

func NewFailedEmbedRequestRepository() contract.FailedEmbedRequestRepository {
	return &FailedEmbedRequestRepository{
		records: make(map[uuid.UUID]*entity.FailedEmbedRequest),
	}
}

func (r *FailedEmbedRequestRepository) Create(ctx context.Context, req *entity.FailedEmbedRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if req.Id == uuid.Nil {
		req.Id = uuid.New()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	stored := *req
	r.records[req.Id] = &stored
	return nil
}

func (r *FailedEmbedRequestRepository) Update(ctx context.Context, req *entity.FailedEmbedRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	req.UpdatedAt = &now
	stored := *req
	r.records[req.Id] = &stored
	return nil
}

func (r *FailedEmbedRequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, id)
	return nil
}

func (r *FailedEmbedRequestRepository) FindById(ctx context.Context, id uuid.UUID) (*entity.FailedEmbedRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	found := *rec
	return &found, nil
}

func (r *FailedEmbedRequestRepository) FindByStatus(ctx context.Context, status entity.RetryStatus) ([]*entity.FailedEmbedRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []*entity.FailedEmbedRequest
	for _, rec := range r.records {
		if rec.Status == status {
			found := *rec
			results = append(results, &found)
		}
	}
	sortByCreatedAt(results)
	return results, nil
}

func (r *FailedEmbedRequestRepository) FindPendingForRetry(ctx context.Context, maxAttempts int) ([]*entity.FailedEmbedRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []*entity.FailedEmbedRequest
	for _, rec := range r.records {
		if rec.Status == entity.RetryStatusPending && rec.RetryCount < maxAttempts {
			found := *rec
			results = append(results, &found)
		}
	}
	sortByCreatedAt(results)
	return results, nil
}

func (r *FailedEmbedRequestRepository) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for id, rec := range r.records {
		if rec.Status != entity.RetryStatusSucceeded && rec.Status != entity.RetryStatusFailed {
			continue
		}
		touched := rec.CreatedAt
		if rec.UpdatedAt != nil {
			touched = *rec.UpdatedAt
		}
		if touched.Before(cutoff) {
			delete(r.records, id)
			removed++
		}
	}
	return removed, nil
}

func (r *FailedEmbedRequestRepository) CountByStatus(ctx context.Context, status entity.RetryStatus) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, rec := range r.records {
		if rec.Status == status {
			count++
		}
	}
	return count, nil
}

func sortByCreatedAt(records []*entity.FailedEmbedRequest) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
}
