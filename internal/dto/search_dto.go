package dto

import (
	"github.com/google/uuid"
)

type SearchRequest struct {
	Query     string      `json:"query"`
	FolderIds []uuid.UUID `json:"folder_ids"`
	TopK      int         `json:"top_k" validate:"omitempty,min=1,max=1000"`
}

type SearchResultItem struct {
	ImageId  uuid.UUID `json:"image_id"`
	FolderId uuid.UUID `json:"folder_id"`
	FilePath string    `json:"file_path"`
	Score    float32   `json:"score"`
}

type SearchResponse struct {
	Query   string             `json:"query"`
	Results []SearchResultItem `json:"results"`
}
