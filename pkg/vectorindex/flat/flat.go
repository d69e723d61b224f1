// Package flat implements the exact brute-force index backend: every stored
// vector is scored against the query, guaranteeing 100% recall at linear cost.
package flat

import (
	"fmt"
	"sort"
	"sync"

	"image-search-be/pkg/embedding"
	"image-search-be/pkg/vectorindex"

	"github.com/google/uuid"
)

type Flat struct {
	dimension int

	mu      sync.RWMutex
	order   []uuid.UUID // insertion order, kept stable across upserts
	vectors map[uuid.UUID][]float32
}

func New(dimension int) *Flat {
	return &Flat{
		dimension: dimension,
		vectors:   make(map[uuid.UUID][]float32),
	}
}

func (f *Flat) Upsert(id uuid.UUID, vector []float32) error {
	if len(vector) != f.dimension {
		return fmt.Errorf("vector dimension %d does not match index dimension %d", len(vector), f.dimension)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.vectors[id]; !exists {
		f.order = append(f.order, id)
	}
	f.vectors[id] = vector
	return nil
}

// Search scores all vectors by inner product (cosine similarity over unit
// vectors) and returns up to topK results, best first. Equal scores keep
// insertion order.
func (f *Flat) Search(query []float32, topK int) []vectorindex.Hit {
	f.mu.RLock()
	defer f.mu.RUnlock()

	hits := make([]vectorindex.Hit, 0, len(f.vectors))
	for _, id := range f.order {
		hits = append(hits, vectorindex.Hit{
			ID:    id,
			Score: embedding.Dot(query, f.vectors[id]),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if topK < len(hits) && topK >= 0 {
		hits = hits[:topK]
	}
	return hits
}

func (f *Flat) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.vectors)
}
