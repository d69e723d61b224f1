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

type FailedEmbedRequestRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FailedEmbedRequestMapper
}

func NewFailedEmbedRequestRepository(db *gorm.DB) contract.FailedEmbedRequestRepository {
	return &FailedEmbedRequestRepositoryImpl{
		db:     db,
		mapper: mapper.NewFailedEmbedRequestMapper(),
	}
}

func (r *FailedEmbedRequestRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *FailedEmbedRequestRepositoryImpl) Create(ctx context.Context, req *entity.FailedEmbedRequest) error {
	m, err := r.mapper.ToModel(req)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	e, err := r.mapper.ToEntity(m)
	if err != nil {
		return err
	}
	*req = *e
	return nil
}

func (r *FailedEmbedRequestRepositoryImpl) Update(ctx context.Context, req *entity.FailedEmbedRequest) error {
	m, err := r.mapper.ToModel(req)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	e, err := r.mapper.ToEntity(m)
	if err != nil {
		return err
	}
	*req = *e
	return nil
}

func (r *FailedEmbedRequestRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.FailedEmbedRequest{}, id).Error
}

func (r *FailedEmbedRequestRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.FailedEmbedRequest, error) {
	var m model.FailedEmbedRequest
	query := r.applySpecifications(r.db.WithContext(ctx), specification.ByID{ID: id})
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m)
}

func (r *FailedEmbedRequestRepositoryImpl) FindByStatus(ctx context.Context, status entity.RetryStatus) ([]*entity.FailedEmbedRequest, error) {
	return r.findAll(ctx,
		specification.ByStatus{Status: string(status)},
		specification.OrderBy{Field: "created_at"},
	)
}

func (r *FailedEmbedRequestRepositoryImpl) findAll(ctx context.Context, specs ...specification.Specification) ([]*entity.FailedEmbedRequest, error) {
	var models []*model.FailedEmbedRequest
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.FailedEmbedRequest, len(models))
	for i, m := range models {
		e, err := r.mapper.ToEntity(m)
		if err != nil {
			return nil, err
		}
		entities[i] = e
	}
	return entities, nil
}

func (r *FailedEmbedRequestRepositoryImpl) FindPendingForRetry(ctx context.Context, maxAttempts int) ([]*entity.FailedEmbedRequest, error) {
	return r.findAll(ctx,
		specification.ByStatus{Status: string(entity.RetryStatusPending)},
		specification.RetryCountBelow{Max: maxAttempts},
		specification.OrderBy{Field: "created_at"},
	)
}

func (r *FailedEmbedRequestRepositoryImpl) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status IN ?", []string{string(entity.RetryStatusSucceeded), string(entity.RetryStatusFailed)}).
		Where("updated_at < ?", cutoff).
		Delete(&model.FailedEmbedRequest{})
	return result.RowsAffected, result.Error
}

func (r *FailedEmbedRequestRepositoryImpl) CountByStatus(ctx context.Context, status entity.RetryStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.FailedEmbedRequest{}).
		Where("status = ?", string(status)).
		Count(&count).Error
	return count, err
}
