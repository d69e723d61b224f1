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

type FailedIndexDeletionRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*entity.FailedIndexDeletion
}

func NewFailedIndexDeletionRepository() contract.FailedIndexDeletionRepository {
	return &FailedIndexDeletionRepository{
		records: make(map[uuid.UUID]*entity.FailedIndexDeletion),
	}
}

func (r *FailedIndexDeletionRepository) Create(ctx context.Context, del *entity.FailedIndexDeletion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if del.Id == uuid.Nil {
		del.Id = uuid.New()
	}
	if del.CreatedAt.IsZero() {
		del.CreatedAt = time.Now()
	}
	stored := *del
	r.records[del.Id] = &stored
	return nil
}

func (r *FailedIndexDeletionRepository) Update(ctx context.Context, del *entity.FailedIndexDeletion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	del.UpdatedAt = &now
	stored := *del
	r.records[del.Id] = &stored
	return nil
}

func (r *FailedIndexDeletionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, id)
	return nil
}

func (r *FailedIndexDeletionRepository) FindById(ctx context.Context, id uuid.UUID) (*entity.FailedIndexDeletion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	found := *rec
	return &found, nil
}

func (r *FailedIndexDeletionRepository) FindByStatus(ctx context.Context, status entity.RetryStatus) ([]*entity.FailedIndexDeletion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []*entity.FailedIndexDeletion
	for _, rec := range r.records {
		if rec.Status == status {
			found := *rec
			results = append(results, &found)
		}
	}
	sortDeletionsByCreatedAt(results)
	return results, nil
}

func (r *FailedIndexDeletionRepository) FindPendingForRetry(ctx context.Context, maxAttempts int) ([]*entity.FailedIndexDeletion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []*entity.FailedIndexDeletion
	for _, rec := range r.records {
		if rec.Status == entity.RetryStatusPending && rec.RetryCount < maxAttempts {
			found := *rec
			results = append(results, &found)
		}
	}
	sortDeletionsByCreatedAt(results)
	return results, nil
}

func (r *FailedIndexDeletionRepository) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
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

func (r *FailedIndexDeletionRepository) CountByStatus(ctx context.Context, status entity.RetryStatus) (int64, error) {
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

func sortDeletionsByCreatedAt(records []*entity.FailedIndexDeletion) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
}
