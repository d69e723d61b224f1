package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"image-search-be/internal/dto"
	"image-search-be/internal/entity"
	"image-search-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub       *gochannel.GoChannel
	topicName    string
	embedder     *BatchEmbedder
	retryService IRetryService
	batchSize    int
	batchDelay   time.Duration
	workers      int
	logger       logger.ILogger

	// folderLocks serializes batches per (owner, folder) so concurrent
	// submissions for the same folder cannot interleave index writes.
	folderLocks sync.Map
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	embedder *BatchEmbedder,
	retryService IRetryService,
	batchSize int,
	batchDelay time.Duration,
	workers int,
	log logger.ILogger,
) IConsumerService {
	if batchSize <= 0 {
		batchSize = 50
	}
	if workers <= 0 {
		workers = 4
	}
	return &consumerService{
		pubSub:       pubSub,
		topicName:    topicName,
		embedder:     embedder,
		retryService: retryService,
		batchSize:    batchSize,
		batchDelay:   batchDelay,
		workers:      workers,
		logger:       log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	for i := 0; i < cs.workers; i++ {
		go func() {
			for msg := range messages {
				cs.processMessage(ctx, msg)
			}
		}()
	}

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.EmbedBatchMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("consumer_service", "Failed to unmarshal embed message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite redelivery
		return
	}

	lock := cs.lockFor(payload.OwnerId.String() + "/" + payload.FolderId.String())
	lock.Lock()
	defer lock.Unlock()

	items := make([]entity.EmbedItem, len(payload.Images))
	for i, img := range payload.Images {
		items[i] = entity.EmbedItem{ImageId: img.ImageId, FilePath: img.FilePath}
	}

	for start := 0; start < len(items); start += cs.batchSize {
		end := start + cs.batchSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[start:end]

		if err := cs.embedder.embedAndIndex(ctx, payload.OwnerId, payload.FolderId, batch); err != nil {
			cs.logger.Error("consumer_service", "Embed batch failed, queueing for retry", map[string]interface{}{
				"folder_id": payload.FolderId.String(),
				"batch":     fmt.Sprintf("%d-%d", start, end),
				"error":     err.Error(),
			})
			// A failed batch does not stop the rest of the submission.
			_ = cs.retryService.RecordFailedEmbed(ctx, payload.OwnerId, payload.FolderId, batch, err)
		}

		if end < len(items) && cs.batchDelay > 0 {
			select {
			case <-ctx.Done():
				cs.logger.Warn("consumer_service", "Shutdown during embed submission, remaining batches dropped", map[string]interface{}{
					"folder_id": payload.FolderId.String(),
					"remaining": len(items) - end,
				})
				msg.Ack()
				return
			case <-time.After(cs.batchDelay):
			}
		}
	}

	// Failures are absorbed into the retry queue, so the message itself is
	// always done at this point.
	msg.Ack()
}

func (cs *consumerService) lockFor(key string) *sync.Mutex {
	actual, _ := cs.folderLocks.LoadOrStore(key, &sync.Mutex{})
	return actual.(*sync.Mutex)
}
