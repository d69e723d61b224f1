package implementation

import (
	"context"
	"errors"
	"time"

	"image-search-be/internal/entity"
	"image-search-be/internal/mapper"
	"image-search-be/internal/model"
	"image-search-be/internal/repository/contract"
	"image-search-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FailedIndexDeletionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FailedIndexDeletionMapper
}

func NewFailedIndexDeletionRepository(db *gorm.DB) contract.FailedIndexDeletionRepository {
	return &FailedIndexDeletionRepositoryImpl{
		db:     db,
		mapper: mapper.NewFailedIndexDeletionMapper(),
	}
}

func (r *FailedIndexDeletionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *FailedIndexDeletionRepositoryImpl) Create(ctx context.Context, del *entity.FailedIndexDeletion) error {
	m := r.mapper.ToModel(del)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*del = *r.mapper.ToEntity(m)
	return nil
}

func (r *FailedIndexDeletionRepositoryImpl) Update(ctx context.Context, del *entity.FailedIndexDeletion) error {
	m := r.mapper.ToModel(del)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*del = *r.mapper.ToEntity(m)
	return nil
}

func (r *FailedIndexDeletionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.FailedIndexDeletion{}, id).Error
}

func (r *FailedIndexDeletionRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.FailedIndexDeletion, error) {
	var m model.FailedIndexDeletion
	query := r.applySpecifications(r.db.WithContext(ctx), specification.ByID{ID: id})
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *FailedIndexDeletionRepositoryImpl) FindByStatus(ctx context.Context, status entity.RetryStatus) ([]*entity.FailedIndexDeletion, error) {
	return r.findAll(ctx,
		specification.ByStatus{Status: string(status)},
		specification.OrderBy{Field: "created_at"},
	)
}

func (r *FailedIndexDeletionRepositoryImpl) findAll(ctx context.Context, specs ...specification.Specification) ([]*entity.FailedIndexDeletion, error) {
	var models []*model.FailedIndexDeletion
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.FailedIndexDeletion, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *FailedIndexDeletionRepositoryImpl) FindPendingForRetry(ctx context.Context, maxAttempts int) ([]*entity.FailedIndexDeletion, error) {
	return r.findAll(ctx,
		specification.ByStatus{Status: string(entity.RetryStatusPending)},
		specification.RetryCountBelow{Max: maxAttempts},
		specification.OrderBy{Field: "created_at"},
	)
}

func (r *FailedIndexDeletionRepositoryImpl) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status IN ?", []string{string(entity.RetryStatusSucceeded), string(entity.RetryStatusFailed)}).
		Where("updated_at < ?", cutoff).
		Delete(&model.FailedIndexDeletion{})
	return result.RowsAffected, result.Error
}

func (r *FailedIndexDeletionRepositoryImpl) CountByStatus(ctx context.Context, status entity.RetryStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.FailedIndexDeletion{}).
		Where("status = ?", string(status)).
		Count(&count).Error
	return count, err
}
