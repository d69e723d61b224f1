package service

import (
	"context"
	"time"

	"image-search-be/internal/dto"
	"image-search-be/internal/entity"
	"image-search-be/internal/pkg/logger"
	"image-search-be/internal/repository/contract"
	"image-search-be/pkg/vectorindex"

	"github.com/google/uuid"
)

type IRetryService interface {
	// RecordFailedEmbed parks a failed batch as PENDING so the scheduler
	// picks it up later.
	RecordFailedEmbed(ctx context.Context, ownerId uuid.UUID, folderId uuid.UUID, items []entity.EmbedItem, cause error) error
	RecordFailedIndexDeletion(ctx context.Context, ownerId uuid.UUID, folderId uuid.UUID, cause error) error

	// RetryFailedEmbeds re-attempts every eligible PENDING batch once.
	RetryFailedEmbeds(ctx context.Context)
	RetryFailedIndexDeletions(ctx context.Context)

	// CleanupOldRecords drops finished records past the retention window.
	CleanupOldRecords(ctx context.Context)

	Stats(ctx context.Context) (*dto.RetryQueueStats, error)
}

type retryService struct {
	embedRepo     contract.FailedEmbedRequestRepository
	deletionRepo  contract.FailedIndexDeletionRepository
	embedder      *BatchEmbedder
	indexManager  vectorindex.Manager
	maxAttempts   int
	retentionDays int
	logger        logger.ILogger
}

func NewRetryService(
	embedRepo contract.FailedEmbedRequestRepository,
	deletionRepo contract.FailedIndexDeletionRepository,
	embedder *BatchEmbedder,
	indexManager vectorindex.Manager,
	maxAttempts int,
	retentionDays int,
	log logger.ILogger,
) IRetryService {
	return &retryService{
		embedRepo:     embedRepo,
		deletionRepo:  deletionRepo,
		embedder:      embedder,
		indexManager:  indexManager,
		maxAttempts:   maxAttempts,
		retentionDays: retentionDays,
		logger:        log,
	}
}

func (s *retryService) RecordFailedEmbed(ctx context.Context, ownerId uuid.UUID, folderId uuid.UUID, items []entity.EmbedItem, cause error) error {
	req := &entity.FailedEmbedRequest{
		Id:        uuid.New(),
		OwnerId:   ownerId,
		FolderId:  folderId,
		Items:     items,
		Status:    entity.RetryStatusPending,
		LastError: cause.Error(),
		CreatedAt: time.Now(),
	}
	if err := s.embedRepo.Create(ctx, req); err != nil {
		s.logger.Error("retry_service", "Failed to record failed embed batch", map[string]interface{}{
			"folder_id": folderId.String(),
			"error":     err.Error(),
		})
		return err
	}
	s.logger.Warn("retry_service", "Embed batch queued for retry", map[string]interface{}{
		"folder_id": folderId.String(),
		"count":     len(items),
		"cause":     cause.Error(),
	})
	return nil
}

func (s *retryService) RecordFailedIndexDeletion(ctx context.Context, ownerId uuid.UUID, folderId uuid.UUID, cause error) error {
	del := &entity.FailedIndexDeletion{
		Id:        uuid.New(),
		OwnerId:   ownerId,
		FolderId:  folderId,
		Status:    entity.RetryStatusPending,
		LastError: cause.Error(),
		CreatedAt: time.Now(),
	}
	if err := s.deletionRepo.Create(ctx, del); err != nil {
		s.logger.Error("retry_service", "Failed to record failed index deletion", map[string]interface{}{
			"folder_id": folderId.String(),
			"error":     err.Error(),
		})
		return err
	}
	s.logger.Warn("retry_service", "Index deletion queued for retry", map[string]interface{}{
		"folder_id": folderId.String(),
		"cause":     cause.Error(),
	})
	return nil
}

func (s *retryService) RetryFailedEmbeds(ctx context.Context) {
	pending, err := s.embedRepo.FindPendingForRetry(ctx, s.maxAttempts)
	if err != nil {
		s.logger.Error("retry_service", "Failed to load pending embed retries", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	for _, req := range pending {
		req.Status = entity.RetryStatusInProgress
		if err := s.embedRepo.Update(ctx, req); err != nil {
			s.logger.Error("retry_service", "Failed to mark embed retry in progress", map[string]interface{}{
				"id":    req.Id.String(),
				"error": err.Error(),
			})
			continue
		}

		attemptErr := s.embedder.embedAndIndex(ctx, req.OwnerId, req.FolderId, req.Items)
		s.settleEmbed(ctx, req, attemptErr)
	}
}

// settleEmbed applies one attempt's outcome. The retry count increments once
// per failed attempt and the record goes terminal FAILED exactly when it
// reaches the attempt limit.
func (s *retryService) settleEmbed(ctx context.Context, req *entity.FailedEmbedRequest, attemptErr error) {
	if attemptErr == nil {
		req.Status = entity.RetryStatusSucceeded
		req.LastError = ""
	} else {
		req.RetryCount++
		req.LastError = attemptErr.Error()
		if req.RetryCount >= s.maxAttempts {
			req.Status = entity.RetryStatusFailed
			s.logger.Error("retry_service", "Embed batch exhausted retries", map[string]interface{}{
				"id":          req.Id.String(),
				"folder_id":   req.FolderId.String(),
				"retry_count": req.RetryCount,
			})
		} else {
			req.Status = entity.RetryStatusPending
		}
	}

	if err := s.embedRepo.Update(ctx, req); err != nil {
		s.logger.Error("retry_service", "Failed to persist embed retry outcome", map[string]interface{}{
			"id":    req.Id.String(),
			"error": err.Error(),
		})
	}
}

func (s *retryService) RetryFailedIndexDeletions(ctx context.Context) {
	pending, err := s.deletionRepo.FindPendingForRetry(ctx, s.maxAttempts)
	if err != nil {
		s.logger.Error("retry_service", "Failed to load pending deletion retries", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	for _, del := range pending {
		del.Status = entity.RetryStatusInProgress
		if err := s.deletionRepo.Update(ctx, del); err != nil {
			s.logger.Error("retry_service", "Failed to mark deletion retry in progress", map[string]interface{}{
				"id":    del.Id.String(),
				"error": err.Error(),
			})
			continue
		}

		attemptErr := s.indexManager.DeleteIndex(ctx, del.OwnerId, del.FolderId)
		s.settleDeletion(ctx, del, attemptErr)
	}
}

func (s *retryService) settleDeletion(ctx context.Context, del *entity.FailedIndexDeletion, attemptErr error) {
	if attemptErr == nil {
		del.Status = entity.RetryStatusSucceeded
		del.LastError = ""
	} else {
		del.RetryCount++
		del.LastError = attemptErr.Error()
		if del.RetryCount >= s.maxAttempts {
			del.Status = entity.RetryStatusFailed
			s.logger.Error("retry_service", "Index deletion exhausted retries", map[string]interface{}{
				"id":          del.Id.String(),
				"folder_id":   del.FolderId.String(),
				"retry_count": del.RetryCount,
			})
		} else {
			del.Status = entity.RetryStatusPending
		}
	}

	if err := s.deletionRepo.Update(ctx, del); err != nil {
		s.logger.Error("retry_service", "Failed to persist deletion retry outcome", map[string]interface{}{
			"id":    del.Id.String(),
			"error": err.Error(),
		})
	}
}

func (s *retryService) CleanupOldRecords(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)

	embedsRemoved, err := s.embedRepo.DeleteFinishedBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("retry_service", "Failed to clean up embed retry records", map[string]interface{}{
			"error": err.Error(),
		})
	}

	deletionsRemoved, err := s.deletionRepo.DeleteFinishedBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("retry_service", "Failed to clean up deletion retry records", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if embedsRemoved > 0 || deletionsRemoved > 0 {
		s.logger.Info("retry_service", "Cleaned up finished retry records", map[string]interface{}{
			"embeds_removed":    embedsRemoved,
			"deletions_removed": deletionsRemoved,
		})
	}
}

func (s *retryService) Stats(ctx context.Context) (*dto.RetryQueueStats, error) {
	stats := &dto.RetryQueueStats{}

	counts := []struct {
		status entity.RetryStatus
		target *int64
		repo   func(context.Context, entity.RetryStatus) (int64, error)
	}{
		{entity.RetryStatusPending, &stats.EmbedPending, s.embedRepo.CountByStatus},
		{entity.RetryStatusInProgress, &stats.EmbedInProgress, s.embedRepo.CountByStatus},
		{entity.RetryStatusSucceeded, &stats.EmbedSucceeded, s.embedRepo.CountByStatus},
		{entity.RetryStatusFailed, &stats.EmbedFailed, s.embedRepo.CountByStatus},
		{entity.RetryStatusPending, &stats.DeletionPending, s.deletionRepo.CountByStatus},
		{entity.RetryStatusSucceeded, &stats.DeletionSucceeded, s.deletionRepo.CountByStatus},
		{entity.RetryStatusFailed, &stats.DeletionFailed, s.deletionRepo.CountByStatus},
	}
	for _, c := range counts {
		n, err := c.repo(ctx, c.status)
		if err != nil {
			return nil, err
		}
		*c.target = n
	}
	return stats, nil
}
