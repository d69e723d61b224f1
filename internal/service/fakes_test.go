package service

import (
	"context"
	"fmt"
	"sync"

	"image-search-be/pkg/collab"
	"image-search-be/pkg/vectorindex"

	"github.com/google/uuid"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// fakeEmbedder returns fixed-size vectors and can be told to fail for
// specific image paths.
type fakeEmbedder struct {
	mu        sync.Mutex
	dimension int
	failPaths map[string]bool
	failText  bool
	embedded  []string
	textCalls int
}

func newFakeEmbedder(dimension int) *fakeEmbedder {
	return &fakeEmbedder{
		dimension: dimension,
		failPaths: make(map[string]bool),
	}
}

func (f *fakeEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.textCalls++
	if f.failText {
		return nil, fmt.Errorf("text embedding unavailable")
	}
	return f.vector(), nil
}

func (f *fakeEmbedder) EmbedImage(ctx context.Context, path string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPaths[path] {
		return nil, fmt.Errorf("image embedding failed for %s", path)
	}
	f.embedded = append(f.embedded, path)
	return f.vector(), nil
}

func (f *fakeEmbedder) vector() []float32 {
	v := make([]float32, f.dimension)
	v[0] = 1
	return v
}

// fakeIndexManager records calls and serves canned search results per folder.
type fakeIndexManager struct {
	mu          sync.Mutex
	inserted    map[string][]vectorindex.Entry
	results     map[string][]vectorindex.ScoredResult
	searchErr   map[string]error
	insertErr   error
	deleteErr   error
	deleted     []string
	createCalls int
}

func newFakeIndexManager() *fakeIndexManager {
	return &fakeIndexManager{
		inserted:  make(map[string][]vectorindex.Entry),
		results:   make(map[string][]vectorindex.ScoredResult),
		searchErr: make(map[string]error),
	}
}

func indexKey(ownerId, folderId uuid.UUID) string {
	return ownerId.String() + "/" + folderId.String()
}

func (f *fakeIndexManager) CreateIndex(ctx context.Context, ownerId, folderId uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	return nil
}

func (f *fakeIndexManager) InsertBatch(ctx context.Context, ownerId, folderId uuid.UUID, entries []vectorindex.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	key := indexKey(ownerId, folderId)
	f.inserted[key] = append(f.inserted[key], entries...)
	return nil
}

func (f *fakeIndexManager) Search(ctx context.Context, ownerId, folderId uuid.UUID, query []float32, topK int) ([]vectorindex.ScoredResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := indexKey(ownerId, folderId)
	if err := f.searchErr[key]; err != nil {
		return nil, err
	}
	res := f.results[key]
	if topK < len(res) {
		res = res[:topK]
	}
	return res, nil
}

func (f *fakeIndexManager) DeleteIndex(ctx context.Context, ownerId, folderId uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, indexKey(ownerId, folderId))
	return nil
}

func (f *fakeIndexManager) HasIndex(ctx context.Context, ownerId, folderId uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.inserted[indexKey(ownerId, folderId)]
	return ok, nil
}

func (f *fakeIndexManager) insertedCount(ownerId, folderId uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserted[indexKey(ownerId, folderId)])
}

// fakePublisher captures published payloads.
type fakePublisher struct {
	mu       sync.Mutex
	payloads [][]byte
	err      error
}

func (f *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, payload)
	return nil
}

// fakeFolderAccess serves a static accessible-folder set.
type fakeFolderAccess struct {
	refs map[uuid.UUID]collab.FolderRef // folderId -> ref
}

func newFakeFolderAccess(refs ...collab.FolderRef) *fakeFolderAccess {
	m := make(map[uuid.UUID]collab.FolderRef, len(refs))
	for _, r := range refs {
		m[r.FolderId] = r
	}
	return &fakeFolderAccess{refs: m}
}

func (f *fakeFolderAccess) AccessibleFolders(ctx context.Context, userId uuid.UUID) ([]collab.FolderRef, error) {
	out := make([]collab.FolderRef, 0, len(f.refs))
	for _, r := range f.refs {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeFolderAccess) CheckAccess(ctx context.Context, userId uuid.UUID, folderId uuid.UUID) (*collab.FolderRef, error) {
	r, ok := f.refs[folderId]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

// fakeImageMetadata resolves paths and can simulate deleted images.
type fakeImageMetadata struct {
	paths map[uuid.UUID]string
}

func newFakeImageMetadata() *fakeImageMetadata {
	return &fakeImageMetadata{paths: make(map[uuid.UUID]string)}
}

func (f *fakeImageMetadata) ResolveImagePath(ctx context.Context, imageId uuid.UUID) (string, bool, error) {
	path, ok := f.paths[imageId]
	return path, ok, nil
}
