// Package hnsw implements the approximate index backend as a Hierarchical
// Navigable Small World graph. Recall is tuned through the ef search
// parameter; unlike the flat backend, topK is a best-effort bound and results
// become visible with whatever consistency the graph traversal provides.
package hnsw

import (
	"container/heap"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"image-search-be/pkg/embedding"
	"image-search-be/pkg/vectorindex"

	"github.com/google/uuid"
)

// Config holds the graph construction and search knobs.
type Config struct {
	M              int // connections per node per layer (mmax = M, mmax0 = 2*M)
	EfConstruction int // candidate list size during insertion
	EfSearch       int // candidate list size during search
}

func DefaultConfig() Config {
	return Config{
		M:              16,
		EfConstruction: 100,
		EfSearch:       64,
	}
}

type HNSW struct {
	dimension      int
	m              int
	mmax           int
	mmax0          int
	efConstruction int
	efSearch       int
	ml             float64 // level normalization factor, 1/ln(M)

	mu         sync.RWMutex
	entrypoint *node
	maxLevel   int
	nodes      []*node
	nodeIdx    map[uuid.UUID]int
}

type node struct {
	id          uuid.UUID
	vector      []float32
	level       int
	connections [][]uuid.UUID
}

func New(dimension int, cfg Config) *HNSW {
	if cfg.M <= 0 {
		cfg = DefaultConfig()
	}
	return &HNSW{
		dimension:      dimension,
		m:              cfg.M,
		mmax:           cfg.M,
		mmax0:          cfg.M * 2,
		efConstruction: cfg.EfConstruction,
		efSearch:       cfg.EfSearch,
		ml:             1 / math.Log(float64(cfg.M)),
		nodeIdx:        make(map[uuid.UUID]int),
	}
}

// distance is cosine distance; stored vectors are unit length so this is
// 1 - dot(a, b).
func distance(a, b []float32) float32 {
	return 1 - embedding.Dot(a, b)
}

func (h *HNSW) Upsert(id uuid.UUID, vector []float32) error {
	if len(vector) != h.dimension {
		return fmt.Errorf("vector dimension %d does not match index dimension %d", len(vector), h.dimension)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.nodeIdx[id]; exists {
		h.remove(id)
	}
	h.insert(id, vector)
	return nil
}

func (h *HNSW) insert(id uuid.UUID, vector []float32) {
	if len(h.nodes) == 0 {
		n := newNode(id, vector, 0)
		h.nodes = append(h.nodes, n)
		h.nodeIdx[id] = 0
		h.entrypoint = n
		h.maxLevel = 0
		return
	}

	level := int(math.Floor(-math.Log(rand.Float64()) * h.ml))
	n := newNode(id, vector, level)
	h.nodes = append(h.nodes, n)
	h.nodeIdx[id] = len(h.nodes) - 1

	// Greedy descent from the top layer down to the node's level.
	ep := h.entrypoint
	for l := h.maxLevel; l > level; l-- {
		ep = h.searchLayerClosest(n.vector, ep, l)
	}

	for l := min(level, h.maxLevel); l >= 0; l-- {
		results := h.searchLayer(n.vector, ep, h.efConstruction, l)
		results = h.selectNeighbours(n.vector, results, h.m)

		for results.Len() > 0 {
			neighbour := heap.Pop(results).(*item).node
			h.connect(n, neighbour, l)

			mm := h.mmax
			if l == 0 {
				mm = h.mmax0
			}
			if len(neighbour.connections[l]) > mm {
				h.shrink(neighbour, mm, l)
			}
		}
	}

	if level > h.maxLevel {
		h.maxLevel = level
		h.entrypoint = n
	}
}

// remove unlinks a node so an upsert can reinsert it with a fresh vector.
func (h *HNSW) remove(id uuid.UUID) {
	idx := h.nodeIdx[id]
	n := h.nodes[idx]

	for l := n.level; l >= 0; l-- {
		for _, neighbourId := range n.connections[l] {
			nIdx, ok := h.nodeIdx[neighbourId]
			if !ok {
				continue
			}
			neighbour := h.nodes[nIdx]
			kept := neighbour.connections[l][:0]
			for _, cid := range neighbour.connections[l] {
				if cid != id {
					kept = append(kept, cid)
				}
			}
			neighbour.connections[l] = kept
		}
		n.connections[l] = nil
	}

	for i := idx; i < len(h.nodes)-1; i++ {
		h.nodeIdx[h.nodes[i+1].id] = i
	}
	copy(h.nodes[idx:], h.nodes[idx+1:])
	h.nodes = h.nodes[:len(h.nodes)-1]
	delete(h.nodeIdx, id)

	if h.entrypoint == n {
		h.entrypoint = nil
		h.maxLevel = 0
		for _, remaining := range h.nodes {
			if h.entrypoint == nil || remaining.level > h.maxLevel {
				h.entrypoint = remaining
				h.maxLevel = remaining.level
			}
		}
	}
}

// Search returns up to topK approximate nearest neighbours, best first, with
// scores converted back to cosine similarity.
func (h *HNSW) Search(query []float32, topK int) []vectorindex.Hit {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.nodes) == 0 || topK <= 0 {
		return []vectorindex.Hit{}
	}

	ep := h.entrypoint
	for l := h.maxLevel; l > 0; l-- {
		ep = h.searchLayerClosest(query, ep, l)
	}

	results := h.searchLayer(query, ep, h.efSearch, 0)

	if topK > results.Len() {
		topK = results.Len()
	}
	for results.Len() > topK {
		heap.Pop(results)
	}
	results.switchOrder() // closest first

	hits := make([]vectorindex.Hit, 0, topK)
	for results.Len() > 0 {
		it := heap.Pop(results).(*item)
		hits = append(hits, vectorindex.Hit{ID: it.node.id, Score: 1 - it.distance})
	}
	return hits
}

func (h *HNSW) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.nodes)
}

func newNode(id uuid.UUID, vector []float32, level int) *node {
	return &node{
		id:          id,
		vector:      vector,
		level:       level,
		connections: make([][]uuid.UUID, level+1),
	}
}

// searchLayerClosest greedily walks one layer toward the query.
func (h *HNSW) searchLayerClosest(q []float32, ep *node, level int) *node {
	minDist := distance(q, ep.vector)
	for {
		improved := false
		for _, neighbourId := range ep.connections[level] {
			neighbour := h.nodes[h.nodeIdx[neighbourId]]
			if d := distance(q, neighbour.vector); d < minDist {
				minDist = d
				ep = neighbour
				improved = true
			}
		}
		if !improved {
			return ep
		}
	}
}

// searchLayer expands candidates at one layer, returning a max-first queue of
// at most ef results.
func (h *HNSW) searchLayer(q []float32, ep *node, ef int, level int) *priorityQueue {
	visited := map[uuid.UUID]struct{}{ep.id: {}}

	epItem := &item{node: ep, distance: distance(q, ep.vector)}

	candidates := newMinPQ()
	heap.Init(candidates)
	heap.Push(candidates, epItem)

	results := newMaxPQ()
	heap.Init(results)
	heap.Push(results, epItem)

	for candidates.Len() > 0 {
		candidate := heap.Pop(candidates).(*item)
		farthest := results.top()
		if candidate.distance > farthest.distance {
			break
		}

		for _, neighbourId := range candidate.node.connections[level] {
			if _, seen := visited[neighbourId]; seen {
				continue
			}
			visited[neighbourId] = struct{}{}

			neighbour := h.nodes[h.nodeIdx[neighbourId]]
			d := distance(q, neighbour.vector)
			if d < results.top().distance || results.Len() < ef {
				nbItem := &item{node: neighbour, distance: d}
				heap.Push(candidates, nbItem)
				heap.Push(results, nbItem)
				if results.Len() > ef {
					heap.Pop(results)
				}
			}
		}
	}
	return results
}

// selectNeighbours keeps the m most diverse candidates, preferring nodes
// closer to the query than to any already-selected neighbour and backfilling
// from the pruned set when needed.
func (h *HNSW) selectNeighbours(q []float32, candidates *priorityQueue, m int) *priorityQueue {
	if candidates.Len() <= m {
		return candidates
	}

	ordered := newMinPQ()
	heap.Init(ordered)
	for _, it := range candidates.items {
		heap.Push(ordered, it)
	}

	results := newMaxPQ()
	heap.Init(results)
	discarded := newMinPQ()
	heap.Init(discarded)

	for ordered.Len() > 0 && results.Len() < m {
		e := heap.Pop(ordered).(*item)
		diverse := true
		for _, r := range results.items {
			if distance(e.node.vector, r.node.vector) < e.distance {
				diverse = false
				break
			}
		}
		if diverse {
			heap.Push(results, e)
		} else {
			heap.Push(discarded, e)
		}
	}

	for discarded.Len() > 0 && results.Len() < m {
		heap.Push(results, heap.Pop(discarded).(*item))
	}
	return results
}

func (h *HNSW) connect(n, neighbour *node, level int) {
	n.connections[level] = append(n.connections[level], neighbour.id)
	neighbour.connections[level] = append(neighbour.connections[level], n.id)
}

func (h *HNSW) shrink(n *node, m int, level int) {
	neighbours := newMaxPQ()
	heap.Init(neighbours)
	for _, neighbourId := range n.connections[level] {
		neighbour := h.nodes[h.nodeIdx[neighbourId]]
		heap.Push(neighbours, &item{node: neighbour, distance: distance(neighbour.vector, n.vector)})
	}

	neighbours = h.selectNeighbours(n.vector, neighbours, m)

	kept := make([]uuid.UUID, 0, neighbours.Len())
	for _, it := range neighbours.items {
		kept = append(kept, it.node.id)
	}
	n.connections[level] = kept
}
