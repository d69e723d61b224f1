package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Folder struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string         `gorm:"type:varchar(255);not null"`
	OwnerId   uuid.UUID      `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Folder) TableName() string {
	return "folders"
}

type FolderShare struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FolderId     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_folder_shares_folder_user"`
	SharedWithId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_folder_shares_folder_user"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (FolderShare) TableName() string {
	return "folder_shares"
}

type Image struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FolderId  uuid.UUID      `gorm:"type:uuid;not null;index"`
	FileName  string         `gorm:"type:varchar(255);not null"`
	FilePath  string         `gorm:"type:text;not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Image) TableName() string {
	return "images"
}
