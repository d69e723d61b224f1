package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"image-search-be/internal/dto"
	"image-search-be/internal/pkg/logger"
	"image-search-be/pkg/collab"
	"image-search-be/pkg/embedding"
	"image-search-be/pkg/vectorindex"

	"github.com/google/uuid"
)

const defaultTopK = 20

type ISearchService interface {
	Search(ctx context.Context, userId uuid.UUID, req *dto.SearchRequest) (*dto.SearchResponse, error)
}

type searchService struct {
	folderAccess      collab.FolderAccessProvider
	imageMetadata     collab.ImageMetadataProvider
	embeddingProvider embedding.EmbeddingProvider
	indexManager      vectorindex.Manager
	logger            logger.ILogger
}

func NewSearchService(
	folderAccess collab.FolderAccessProvider,
	imageMetadata collab.ImageMetadataProvider,
	embeddingProvider embedding.EmbeddingProvider,
	indexManager vectorindex.Manager,
	log logger.ILogger,
) ISearchService {
	return &searchService{
		folderAccess:      folderAccess,
		imageMetadata:     imageMetadata,
		embeddingProvider: embeddingProvider,
		indexManager:      indexManager,
		logger:            log,
	}
}

func (s *searchService) Search(ctx context.Context, userId uuid.UUID, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return &dto.SearchResponse{Query: req.Query, Results: []dto.SearchResultItem{}}, nil
	}

	topK := req.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	folders, err := s.resolveFolders(ctx, userId, req.FolderIds)
	if err != nil {
		return nil, err
	}
	if len(folders) == 0 {
		return &dto.SearchResponse{Query: req.Query, Results: []dto.SearchResultItem{}}, nil
	}

	queryVector, err := s.embeddingProvider.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}

	scored, err := s.searchFolders(ctx, folders, queryVector, topK)
	if err != nil {
		return nil, err
	}

	// Stable sort keeps equal scores in folder submission order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}

	results := make([]dto.SearchResultItem, 0, len(scored))
	for _, hit := range scored {
		path, found, err := s.imageMetadata.ResolveImagePath(ctx, hit.ImageId)
		if err != nil {
			return nil, err
		}
		if !found {
			// The index can trail image deletions; such hits are dropped
			// rather than returned as dead links.
			s.logger.Debug("search_service", "Skipping hit for missing image", map[string]interface{}{
				"image_id": hit.ImageId.String(),
			})
			continue
		}
		results = append(results, dto.SearchResultItem{
			ImageId:  hit.ImageId,
			FolderId: hit.FolderId,
			FilePath: path,
			Score:    hit.Score,
		})
	}

	return &dto.SearchResponse{Query: req.Query, Results: results}, nil
}

// resolveFolders turns the request's folder selection into index references.
// Naming any inaccessible folder rejects the whole request.
func (s *searchService) resolveFolders(ctx context.Context, userId uuid.UUID, folderIds []uuid.UUID) ([]collab.FolderRef, error) {
	if len(folderIds) == 0 {
		return s.folderAccess.AccessibleFolders(ctx, userId)
	}

	refs := make([]collab.FolderRef, 0, len(folderIds))
	for _, folderId := range folderIds {
		ref, err := s.folderAccess.CheckAccess(ctx, userId, folderId)
		if err != nil {
			return nil, err
		}
		if ref == nil {
			return nil, ErrFolderAccessDenied
		}
		refs = append(refs, *ref)
	}
	return refs, nil
}

// searchFolders fans out one goroutine per folder and concatenates the
// per-folder results in folder order.
func (s *searchService) searchFolders(ctx context.Context, folders []collab.FolderRef, queryVector []float32, topK int) ([]vectorindex.ScoredResult, error) {
	perFolder := make([][]vectorindex.ScoredResult, len(folders))
	errs := make([]error, len(folders))

	var wg sync.WaitGroup
	for i, ref := range folders {
		wg.Add(1)
		go func(i int, ref collab.FolderRef) {
			defer wg.Done()
			perFolder[i], errs[i] = s.indexManager.Search(ctx, ref.OwnerId, ref.FolderId, queryVector, topK)
		}(i, ref)
	}
	wg.Wait()

	var scored []vectorindex.ScoredResult
	for i := range folders {
		if errs[i] != nil {
			return nil, errs[i]
		}
		scored = append(scored, perFolder[i]...)
	}
	return scored, nil
}
