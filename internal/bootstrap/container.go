package bootstrap

import (
	"log"

	"image-search-be/internal/config"
	"image-search-be/internal/controller"
	"image-search-be/internal/pkg/logger"
	"image-search-be/internal/repository/implementation"
	"image-search-be/internal/service"
	"image-search-be/pkg/embedding"
	"image-search-be/pkg/embedding/clip"
	"image-search-be/pkg/vectorindex"
	"image-search-be/pkg/vectorindex/flat"
	"image-search-be/pkg/vectorindex/hnsw"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	SearchController controller.ISearchController
	IndexController  controller.IIndexController
	HealthController controller.IHealthController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	RetryScheduler  *service.RetryScheduler

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Embedding Provider
	var embeddingProvider embedding.EmbeddingProvider = clip.NewProvider(clip.Config{
		BaseURL:       cfg.Embedding.BaseURL,
		Dimension:     cfg.Embedding.Dimension,
		MaxTextLength: cfg.Embedding.MaxTextLength,
		ImageSize:     cfg.Embedding.ImageSize,
		Timeout:       cfg.Embedding.Timeout,
		CacheTTL:      cfg.Embedding.CacheTTL,
	}, sysLogger)

	// 4. Vector Index Backend
	indexManager := newIndexManager(db, cfg)
	log.Printf("[INFO] Using vector index backend: %s", cfg.Index.Backend)

	// 5. Repositories
	embedRepo := implementation.NewFailedEmbedRequestRepository(db)
	deletionRepo := implementation.NewFailedIndexDeletionRepository(db)
	folderAccess := implementation.NewFolderAccessRepository(db)
	imageMetadata := implementation.NewImageMetadataRepository(db)

	// 6. Services
	publisherService := service.NewPublisherService(cfg.Ingest.TopicName, pubSub)
	embedder := service.NewBatchEmbedder(embeddingProvider, indexManager, sysLogger)

	retryService := service.NewRetryService(
		embedRepo,
		deletionRepo,
		embedder,
		indexManager,
		cfg.Retry.MaxAttempts,
		cfg.Retry.RetentionDays,
		sysLogger,
	)

	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Ingest.TopicName,
		embedder,
		retryService,
		cfg.Ingest.BatchSize,
		cfg.Ingest.BatchDelay,
		cfg.Ingest.Workers,
		sysLogger,
	)

	retryScheduler := service.NewRetryScheduler(
		retryService,
		cfg.Retry.EmbedInterval,
		cfg.Retry.DeletionInterval,
		cfg.Retry.CleanupInterval,
		sysLogger,
	)

	ingestService := service.NewIngestService(folderAccess, indexManager, publisherService, sysLogger)
	indexService := service.NewIndexService(folderAccess, indexManager, retryService, sysLogger)
	searchService := service.NewSearchService(folderAccess, imageMetadata, embeddingProvider, indexManager, sysLogger)

	return &Container{
		SearchController: controller.NewSearchController(searchService, ingestService, indexService),
		IndexController:  controller.NewIndexController(indexService),
		HealthController: controller.NewHealthController(),

		ConsumerService: consumerService,
		RetryScheduler:  retryScheduler,
		Logger:          sysLogger,
	}
}

func newIndexManager(db *gorm.DB, cfg *config.Config) vectorindex.Manager {
	switch cfg.Index.Backend {
	case "pgvector":
		return implementation.NewPgIndexManager(db, cfg.Index.Dimension)
	case "hnsw":
		return vectorindex.NewMemoryManager(func() vectorindex.Index {
			return hnsw.New(cfg.Index.Dimension, hnsw.Config{
				M:              cfg.Index.HnswM,
				EfConstruction: cfg.Index.EfConstruction,
				EfSearch:       cfg.Index.EfSearch,
			})
		})
	default:
		return vectorindex.NewMemoryManager(func() vectorindex.Index {
			return flat.New(cfg.Index.Dimension)
		})
	}
}
