package mapper

import (
	"encoding/json"
	"time"

	"image-search-be/internal/entity"
	"image-search-be/internal/model"

	"gorm.io/datatypes"
)

type FailedEmbedRequestMapper struct{}

func NewFailedEmbedRequestMapper() *FailedEmbedRequestMapper {
	return &FailedEmbedRequestMapper{}
}

func (m *FailedEmbedRequestMapper) ToEntity(r *model.FailedEmbedRequest) (*entity.FailedEmbedRequest, error) {
	if r == nil {
		return nil, nil
	}

	var items []entity.EmbedItem
	if len(r.Payload) > 0 {
		if err := json.Unmarshal(r.Payload, &items); err != nil {
			return nil, err
		}
	}

	var updatedAt *time.Time
	if !r.UpdatedAt.IsZero() {
		t := r.UpdatedAt
		updatedAt = &t
	}

	return &entity.FailedEmbedRequest{
		Id:         r.Id,
		OwnerId:    r.OwnerId,
		FolderId:   r.FolderId,
		Items:      items,
		Status:     entity.RetryStatus(r.Status),
		RetryCount: r.RetryCount,
		LastError:  r.LastError,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  updatedAt,
	}, nil
}

func (m *FailedEmbedRequestMapper) ToModel(r *entity.FailedEmbedRequest) (*model.FailedEmbedRequest, error) {
	if r == nil {
		return nil, nil
	}

	payload, err := json.Marshal(r.Items)
	if err != nil {
		return nil, err
	}

	var updatedAt time.Time
	if r.UpdatedAt != nil {
		updatedAt = *r.UpdatedAt
	}

	return &model.FailedEmbedRequest{
		Id:         r.Id,
		OwnerId:    r.OwnerId,
		FolderId:   r.FolderId,
		Payload:    datatypes.JSON(payload),
		Status:     string(r.Status),
		RetryCount: r.RetryCount,
		LastError:  r.LastError,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  updatedAt,
	}, nil
}

type FailedIndexDeletionMapper struct{}

func NewFailedIndexDeletionMapper() *FailedIndexDeletionMapper {
	return &FailedIndexDeletionMapper{}
}

func (m *FailedIndexDeletionMapper) ToEntity(r *model.FailedIndexDeletion) *entity.FailedIndexDeletion {
	if r == nil {
		return nil
	}

	var updatedAt *time.Time
	if !r.UpdatedAt.IsZero() {
		t := r.UpdatedAt
		updatedAt = &t
	}

	return &entity.FailedIndexDeletion{
		Id:         r.Id,
		OwnerId:    r.OwnerId,
		FolderId:   r.FolderId,
		Status:     entity.RetryStatus(r.Status),
		RetryCount: r.RetryCount,
		LastError:  r.LastError,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *FailedIndexDeletionMapper) ToModel(r *entity.FailedIndexDeletion) *model.FailedIndexDeletion {
	if r == nil {
		return nil
	}

	var updatedAt time.Time
	if r.UpdatedAt != nil {
		updatedAt = *r.UpdatedAt
	}

	return &model.FailedIndexDeletion{
		Id:         r.Id,
		OwnerId:    r.OwnerId,
		FolderId:   r.FolderId,
		Status:     string(r.Status),
		RetryCount: r.RetryCount,
		LastError:  r.LastError,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}
