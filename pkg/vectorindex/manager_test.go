package vectorindex

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// stubIndex records upserts and returns canned hits.
type stubIndex struct {
	upserts []Entry
	hits    []Hit
}

func (s *stubIndex) Upsert(id uuid.UUID, vector []float32) error {
	s.upserts = append(s.upserts, Entry{ImageId: id, Vector: vector})
	return nil
}

func (s *stubIndex) Search(query []float32, topK int) []Hit {
	if topK < len(s.hits) {
		return s.hits[:topK]
	}
	return s.hits
}

func (s *stubIndex) Len() int { return len(s.upserts) }

func newStubManager() (*MemoryManager, *[]*stubIndex) {
	var created []*stubIndex
	m := NewMemoryManager(func() Index {
		idx := &stubIndex{}
		created = append(created, idx)
		return idx
	})
	return m, &created
}

func TestCreateIndexIdempotent(t *testing.T) {
	m, created := newStubManager()
	ctx := context.Background()
	owner, folder := uuid.New(), uuid.New()

	assert.NoError(t, m.CreateIndex(ctx, owner, folder))
	assert.NoError(t, m.CreateIndex(ctx, owner, folder))
	assert.Len(t, *created, 1)

	exists, err := m.HasIndex(ctx, owner, folder)
	assert.NoError(t, err)
	assert.True(t, exists)
}

func TestInsertBatchCreatesMissingIndex(t *testing.T) {
	m, created := newStubManager()
	ctx := context.Background()
	owner, folder := uuid.New(), uuid.New()

	entries := []Entry{
		{ImageId: uuid.New(), Vector: []float32{1, 0}},
		{ImageId: uuid.New(), Vector: []float32{0, 1}},
	}
	assert.NoError(t, m.InsertBatch(ctx, owner, folder, entries))

	assert.Len(t, *created, 1)
	assert.Len(t, (*created)[0].upserts, 2)
}

func TestSearchMissingIndexReturnsEmpty(t *testing.T) {
	m, _ := newStubManager()

	results, err := m.Search(context.Background(), uuid.New(), uuid.New(), []float32{1, 0}, 5)
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchAttributesFolder(t *testing.T) {
	m, created := newStubManager()
	ctx := context.Background()
	owner, folder := uuid.New(), uuid.New()

	assert.NoError(t, m.CreateIndex(ctx, owner, folder))
	imageId := uuid.New()
	(*created)[0].hits = []Hit{{ID: imageId, Score: 0.9}}

	results, err := m.Search(ctx, owner, folder, []float32{1, 0}, 5)
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, imageId, results[0].ImageId)
	assert.Equal(t, folder, results[0].FolderId)
	assert.InDelta(t, 0.9, float64(results[0].Score), 1e-6)
}

func TestDeleteIndexIdempotent(t *testing.T) {
	m, _ := newStubManager()
	ctx := context.Background()
	owner, folder := uuid.New(), uuid.New()

	assert.NoError(t, m.CreateIndex(ctx, owner, folder))
	assert.NoError(t, m.DeleteIndex(ctx, owner, folder))
	assert.NoError(t, m.DeleteIndex(ctx, owner, folder))

	exists, err := m.HasIndex(ctx, owner, folder)
	assert.NoError(t, err)
	assert.False(t, exists)

	// Searching a deleted index is empty, not an error.
	results, err := m.Search(ctx, owner, folder, []float32{1, 0}, 5)
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestIndexesAreIsolatedPerFolder(t *testing.T) {
	m, created := newStubManager()
	ctx := context.Background()
	owner := uuid.New()
	folderA, folderB := uuid.New(), uuid.New()

	assert.NoError(t, m.InsertBatch(ctx, owner, folderA, []Entry{{ImageId: uuid.New(), Vector: []float32{1}}}))
	assert.NoError(t, m.InsertBatch(ctx, owner, folderB, []Entry{{ImageId: uuid.New(), Vector: []float32{1}}}))

	assert.Len(t, *created, 2)
	assert.Len(t, (*created)[0].upserts, 1)
	assert.Len(t, (*created)[1].upserts, 1)
}
