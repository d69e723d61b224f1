package implementation

import (
	"context"
	"errors"

	"image-search-be/internal/model"
	"image-search-be/pkg/collab"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ImageMetadataRepositoryImpl struct {
	db *gorm.DB
}

func NewImageMetadataRepository(db *gorm.DB) collab.ImageMetadataProvider {
	return &ImageMetadataRepositoryImpl{db: db}
}

func (r *ImageMetadataRepositoryImpl) ResolveImagePath(ctx context.Context, imageId uuid.UUID) (string, bool, error) {
	var image model.Image
	err := r.db.WithContext(ctx).
		Where("id = ?", imageId).
		First(&image).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return image.FilePath, true, nil
}
