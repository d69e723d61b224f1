package vectorindex

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IndexFactory allocates a fresh backend index for a newly created handle.
type IndexFactory func() Index

// MemoryManager keeps one in-process Index per (ownerId, folderId) handle.
// Writers to the same handle are serialized through a per-handle mutex;
// readers go through the backend's own read locking and may run concurrently
// with writers.
type MemoryManager struct {
	factory IndexFactory

	mu      sync.RWMutex
	handles map[string]*handle
}

type handle struct {
	index   Index
	writeMu sync.Mutex
}

func NewMemoryManager(factory IndexFactory) *MemoryManager {
	return &MemoryManager{
		factory: factory,
		handles: make(map[string]*handle),
	}
}

func handleKey(ownerId, folderId uuid.UUID) string {
	return ownerId.String() + "/" + folderId.String()
}

func (m *MemoryManager) CreateIndex(ctx context.Context, ownerId, folderId uuid.UUID) error {
	key := handleKey(ownerId, folderId)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.handles[key]; exists {
		return nil
	}
	m.handles[key] = &handle{index: m.factory()}
	return nil
}

func (m *MemoryManager) InsertBatch(ctx context.Context, ownerId, folderId uuid.UUID, entries []Entry) error {
	if err := m.CreateIndex(ctx, ownerId, folderId); err != nil {
		return err
	}

	m.mu.RLock()
	h := m.handles[handleKey(ownerId, folderId)]
	m.mu.RUnlock()
	if h == nil {
		return fmt.Errorf("index %s/%s disappeared during insert", ownerId, folderId)
	}

	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	for _, e := range entries {
		if err := h.index.Upsert(e.ImageId, e.Vector); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryManager) Search(ctx context.Context, ownerId, folderId uuid.UUID, query []float32, topK int) ([]ScoredResult, error) {
	m.mu.RLock()
	h := m.handles[handleKey(ownerId, folderId)]
	m.mu.RUnlock()
	if h == nil {
		return []ScoredResult{}, nil
	}

	hits := h.index.Search(query, topK)
	results := make([]ScoredResult, len(hits))
	for i, hit := range hits {
		results[i] = ScoredResult{ImageId: hit.ID, Score: hit.Score, FolderId: folderId}
	}
	return results, nil
}

func (m *MemoryManager) DeleteIndex(ctx context.Context, ownerId, folderId uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.handles, handleKey(ownerId, folderId))
	return nil
}

func (m *MemoryManager) HasIndex(ctx context.Context, ownerId, folderId uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.handles[handleKey(ownerId, folderId)]
	return exists, nil
}
