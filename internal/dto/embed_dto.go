package dto

import (
	"github.com/google/uuid"
)

type EmbedImageItem struct {
	ImageId  uuid.UUID `json:"image_id" validate:"required"`
	FilePath string    `json:"file_path" validate:"required"`
}

type EmbedImagesRequest struct {
	FolderId uuid.UUID        `json:"folder_id" validate:"required"`
	Images   []EmbedImageItem `json:"images" validate:"required,min=1,dive"`
}

type EmbedImagesResponse struct {
	FolderId uuid.UUID `json:"folder_id"`
	Accepted int       `json:"accepted"`
}

// EmbedBatchMessage is the payload published to the embed topic. The consumer
// splits it into fixed-size batches before calling the embedding provider.
type EmbedBatchMessage struct {
	OwnerId  uuid.UUID        `json:"owner_id"`
	FolderId uuid.UUID        `json:"folder_id"`
	Images   []EmbedImageItem `json:"images"`
}
