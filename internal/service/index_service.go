package service

import (
	"context"

	"image-search-be/internal/dto"
	"image-search-be/internal/pkg/logger"
	"image-search-be/pkg/collab"
	"image-search-be/pkg/vectorindex"

	"github.com/google/uuid"
)

type IIndexService interface {
	CreateIndex(ctx context.Context, userId uuid.UUID, req *dto.CreateIndexRequest) (*dto.CreateIndexResponse, error)
	// DeleteIndex tears down a folder's index. A failed teardown is queued
	// for retry instead of surfacing to the caller.
	DeleteIndex(ctx context.Context, userId uuid.UUID, folderId uuid.UUID) (*dto.DeleteIndexResponse, error)
	Stats(ctx context.Context) (*dto.RetryQueueStats, error)
}

type indexService struct {
	folderAccess collab.FolderAccessProvider
	indexManager vectorindex.Manager
	retryService IRetryService
	logger       logger.ILogger
}

func NewIndexService(
	folderAccess collab.FolderAccessProvider,
	indexManager vectorindex.Manager,
	retryService IRetryService,
	log logger.ILogger,
) IIndexService {
	return &indexService{
		folderAccess: folderAccess,
		indexManager: indexManager,
		retryService: retryService,
		logger:       log,
	}
}

func (s *indexService) CreateIndex(ctx context.Context, userId uuid.UUID, req *dto.CreateIndexRequest) (*dto.CreateIndexResponse, error) {
	ref, err := s.folderAccess.CheckAccess(ctx, userId, req.FolderId)
	if err != nil {
		return nil, err
	}
	if ref == nil {
		return nil, ErrFolderAccessDenied
	}

	if err := s.indexManager.CreateIndex(ctx, ref.OwnerId, ref.FolderId); err != nil {
		return nil, err
	}
	return &dto.CreateIndexResponse{FolderId: ref.FolderId}, nil
}

func (s *indexService) DeleteIndex(ctx context.Context, userId uuid.UUID, folderId uuid.UUID) (*dto.DeleteIndexResponse, error) {
	ref, err := s.folderAccess.CheckAccess(ctx, userId, folderId)
	if err != nil {
		return nil, err
	}
	if ref == nil || ref.OwnerId != userId {
		// Shared access does not extend to tearing the index down.
		return nil, ErrFolderAccessDenied
	}

	if err := s.indexManager.DeleteIndex(ctx, ref.OwnerId, ref.FolderId); err != nil {
		if recErr := s.retryService.RecordFailedIndexDeletion(ctx, ref.OwnerId, ref.FolderId, err); recErr != nil {
			return nil, recErr
		}
		return &dto.DeleteIndexResponse{FolderId: folderId, Queued: true}, nil
	}
	return &dto.DeleteIndexResponse{FolderId: folderId}, nil
}

func (s *indexService) Stats(ctx context.Context) (*dto.RetryQueueStats, error) {
	return s.retryService.Stats(ctx)
}
