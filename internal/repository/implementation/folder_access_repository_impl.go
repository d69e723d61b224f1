package implementation

import (
	"context"
	"errors"

	"image-search-be/internal/model"
	"image-search-be/pkg/collab"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FolderAccessRepositoryImpl resolves folder visibility from the folders and
// folder_shares tables. A shared folder resolves to the sharing owner's
// index, not the caller's.
type FolderAccessRepositoryImpl struct {
	db *gorm.DB
}

func NewFolderAccessRepository(db *gorm.DB) collab.FolderAccessProvider {
	return &FolderAccessRepositoryImpl{db: db}
}

func (r *FolderAccessRepositoryImpl) AccessibleFolders(ctx context.Context, userId uuid.UUID) ([]collab.FolderRef, error) {
	var owned []model.Folder
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", userId).
		Find(&owned).Error; err != nil {
		return nil, err
	}

	type sharedRow struct {
		FolderId uuid.UUID
		OwnerId  uuid.UUID
	}
	var shared []sharedRow
	if err := r.db.WithContext(ctx).
		Table("folder_shares").
		Select("folder_shares.folder_id, folders.owner_id").
		Joins("JOIN folders ON folders.id = folder_shares.folder_id").
		Where("folder_shares.shared_with_id = ?", userId).
		Where("folders.deleted_at IS NULL").
		Scan(&shared).Error; err != nil {
		return nil, err
	}

	refs := make([]collab.FolderRef, 0, len(owned)+len(shared))
	for _, f := range owned {
		refs = append(refs, collab.FolderRef{FolderId: f.Id, OwnerId: f.OwnerId})
	}
	for _, s := range shared {
		refs = append(refs, collab.FolderRef{FolderId: s.FolderId, OwnerId: s.OwnerId})
	}
	return refs, nil
}

func (r *FolderAccessRepositoryImpl) CheckAccess(ctx context.Context, userId uuid.UUID, folderId uuid.UUID) (*collab.FolderRef, error) {
	var folder model.Folder
	err := r.db.WithContext(ctx).
		Where("id = ?", folderId).
		First(&folder).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if folder.OwnerId == userId {
		return &collab.FolderRef{FolderId: folder.Id, OwnerId: folder.OwnerId}, nil
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.FolderShare{}).
		Where("folder_id = ? AND shared_with_id = ?", folderId, userId).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	return &collab.FolderRef{FolderId: folder.Id, OwnerId: folder.OwnerId}, nil
}
