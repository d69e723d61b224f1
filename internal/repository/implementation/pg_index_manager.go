package implementation

import (
	"context"

	"image-search-be/internal/model"
	"image-search-be/pkg/vectorindex"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PgIndexManager stores folder indexes in Postgres and delegates similarity
// search to pgvector. It satisfies the same contract as the in-memory
// backends, so the rest of the system does not care which one is wired.
type PgIndexManager struct {
	db        *gorm.DB
	dimension int
}

func NewPgIndexManager(db *gorm.DB, dimension int) vectorindex.Manager {
	return &PgIndexManager{db: db, dimension: dimension}
}

func (m *PgIndexManager) CreateIndex(ctx context.Context, ownerId uuid.UUID, folderId uuid.UUID) error {
	handle := model.IndexHandle{
		OwnerId:   ownerId,
		FolderId:  folderId,
		Dimension: m.dimension,
	}
	return m.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}, {Name: "folder_id"}},
			DoNothing: true,
		}).
		Create(&handle).Error
}

func (m *PgIndexManager) InsertBatch(ctx context.Context, ownerId uuid.UUID, folderId uuid.UUID, entries []vectorindex.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := m.CreateIndex(ctx, ownerId, folderId); err != nil {
		return err
	}

	models := make([]*model.ImageEmbedding, len(entries))
	for i, e := range entries {
		models[i] = &model.ImageEmbedding{
			ImageId:   e.ImageId,
			OwnerId:   ownerId,
			FolderId:  folderId,
			Embedding: pgvector.NewVector(e.Vector),
		}
	}

	return m.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "image_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"owner_id", "folder_id", "embedding", "updated_at"}),
		}).
		Create(&models).Error
}

func (m *PgIndexManager) Search(ctx context.Context, ownerId uuid.UUID, folderId uuid.UUID, query []float32, topK int) ([]vectorindex.ScoredResult, error) {
	if topK <= 0 {
		return []vectorindex.ScoredResult{}, nil
	}

	type row struct {
		ImageId    uuid.UUID
		Similarity float64
	}
	var rows []row

	queryVector := pgvector.NewVector(query)

	// Cosine distance in pgvector is 1 - cosine_similarity, so similarity
	// is recovered as 1 - (embedding <=> query).
	err := m.db.WithContext(ctx).
		Table("image_embeddings").
		Select("image_id, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("owner_id = ? AND folder_id = ?", ownerId, folderId).
		Order("similarity DESC").
		Limit(topK).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	results := make([]vectorindex.ScoredResult, len(rows))
	for i, r := range rows {
		results[i] = vectorindex.ScoredResult{
			ImageId:  r.ImageId,
			Score:    float32(r.Similarity),
			FolderId: folderId,
		}
	}
	return results, nil
}

func (m *PgIndexManager) DeleteIndex(ctx context.Context, ownerId uuid.UUID, folderId uuid.UUID) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("owner_id = ? AND folder_id = ?", ownerId, folderId).
			Delete(&model.ImageEmbedding{}).Error; err != nil {
			return err
		}
		return tx.
			Where("owner_id = ? AND folder_id = ?", ownerId, folderId).
			Delete(&model.IndexHandle{}).Error
	})
}

func (m *PgIndexManager) HasIndex(ctx context.Context, ownerId uuid.UUID, folderId uuid.UUID) (bool, error) {
	var count int64
	err := m.db.WithContext(ctx).
		Model(&model.IndexHandle{}).
		Where("owner_id = ? AND folder_id = ?", ownerId, folderId).
		Count(&count).Error
	return count > 0, err
}
