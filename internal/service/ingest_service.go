package service

import (
	"context"
	"encoding/json"

	"image-search-be/internal/dto"
	"image-search-be/internal/pkg/logger"
	"image-search-be/pkg/collab"
	"image-search-be/pkg/vectorindex"

	"github.com/google/uuid"
)

type IIngestService interface {
	// SubmitForEmbedding accepts a folder's images for asynchronous
	// embedding. It returns as soon as the work is queued.
	SubmitForEmbedding(ctx context.Context, userId uuid.UUID, req *dto.EmbedImagesRequest) (*dto.EmbedImagesResponse, error)
}

type ingestService struct {
	folderAccess     collab.FolderAccessProvider
	indexManager     vectorindex.Manager
	publisherService IPublisherService
	logger           logger.ILogger
}

func NewIngestService(
	folderAccess collab.FolderAccessProvider,
	indexManager vectorindex.Manager,
	publisherService IPublisherService,
	log logger.ILogger,
) IIngestService {
	return &ingestService{
		folderAccess:     folderAccess,
		indexManager:     indexManager,
		publisherService: publisherService,
		logger:           log,
	}
}

func (s *ingestService) SubmitForEmbedding(ctx context.Context, userId uuid.UUID, req *dto.EmbedImagesRequest) (*dto.EmbedImagesResponse, error) {
	ref, err := s.folderAccess.CheckAccess(ctx, userId, req.FolderId)
	if err != nil {
		return nil, err
	}
	if ref == nil {
		return nil, ErrFolderAccessDenied
	}

	// The index is created up front so searches against an empty folder
	// resolve instead of reporting a missing index.
	if err := s.indexManager.CreateIndex(ctx, ref.OwnerId, ref.FolderId); err != nil {
		return nil, err
	}

	msgPayload := dto.EmbedBatchMessage{
		OwnerId:  ref.OwnerId,
		FolderId: ref.FolderId,
		Images:   req.Images,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return nil, err
	}

	if err := s.publisherService.Publish(ctx, msgJson); err != nil {
		return nil, err
	}

	s.logger.Info("ingest_service", "Queued images for embedding", map[string]interface{}{
		"owner_id":  ref.OwnerId.String(),
		"folder_id": ref.FolderId.String(),
		"count":     len(req.Images),
	})

	return &dto.EmbedImagesResponse{
		FolderId: ref.FolderId,
		Accepted: len(req.Images),
	}, nil
}
