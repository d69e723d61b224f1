package specification

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByID filters by ID
type ByID struct {
	ID uuid.UUID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// ByStatus filters retry records by lifecycle status
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// RetryCountBelow keeps records that still have attempts left
type RetryCountBelow struct {
	Max int
}

func (s RetryCountBelow) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("retry_count < ?", s.Max)
}

// UpdatedBefore filters by last-touch time, used by retention cleanup
type UpdatedBefore struct {
	Cutoff time.Time
}

func (s UpdatedBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("updated_at < ?", s.Cutoff)
}

// ByOwnerFolder scopes a query to one (owner, folder) index
type ByOwnerFolder struct {
	OwnerId  uuid.UUID
	FolderId uuid.UUID
}

func (s ByOwnerFolder) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("owner_id = ? AND folder_id = ?", s.OwnerId, s.FolderId)
}

// OrderBy applies ordering
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", s.Field, direction))
}

// Pagination
type Pagination struct {
	Limit  int
	Offset int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.Limit).Offset(s.Offset)
}
