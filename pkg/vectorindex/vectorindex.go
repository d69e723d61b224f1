// Package vectorindex defines the per-(owner, folder) vector index abstraction.
// Backends differ in recall/latency tradeoffs but must honor identical
// semantics: cosine similarity over unit vectors, idempotent create/delete,
// upsert-by-imageId inserts, and topK as an upper bound.
package vectorindex

import (
	"context"

	"github.com/google/uuid"
)

// Entry is one (imageId, vector) pair submitted to an index.
type Entry struct {
	ImageId uuid.UUID
	Vector  []float32
}

// ScoredResult is a single search hit. Score is cosine similarity in [-1, 1],
// higher is better. Transient, never persisted.
type ScoredResult struct {
	ImageId  uuid.UUID
	Score    float32
	FolderId uuid.UUID
}

// Manager owns one index per (ownerId, folderId).
//
// Search on a missing or empty index returns an empty slice, not an error.
// CreateIndex and DeleteIndex are no-ops when the index already exists or is
// already gone. InsertBatch creates the index when missing and overwrites
// entries that reuse an imageId.
type Manager interface {
	CreateIndex(ctx context.Context, ownerId, folderId uuid.UUID) error
	InsertBatch(ctx context.Context, ownerId, folderId uuid.UUID, entries []Entry) error
	Search(ctx context.Context, ownerId, folderId uuid.UUID, query []float32, topK int) ([]ScoredResult, error)
	DeleteIndex(ctx context.Context, ownerId, folderId uuid.UUID) error
	HasIndex(ctx context.Context, ownerId, folderId uuid.UUID) (bool, error)
}

// Index is a single folder's vector store, as implemented by the in-memory
// backends. The memory manager serializes writers per index; implementations
// must still be safe for concurrent readers.
type Index interface {
	Upsert(id uuid.UUID, vector []float32) error
	Search(query []float32, topK int) []Hit
	Len() int
}

// Hit is a backend-local search result before folder attribution.
type Hit struct {
	ID    uuid.UUID
	Score float32
}
