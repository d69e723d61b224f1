package hnsw

import "container/heap"

type item struct {
	node     *node
	distance float32
}

// priorityQueue orders items by distance. maxFirst=true keeps the farthest
// item at the top (for bounding result sets), maxFirst=false the closest
// (for candidate expansion).
type priorityQueue struct {
	maxFirst bool
	items    []*item
}

func newMinPQ() *priorityQueue { return &priorityQueue{maxFirst: false} }
func newMaxPQ() *priorityQueue { return &priorityQueue{maxFirst: true} }

func (pq *priorityQueue) Len() int { return len(pq.items) }

func (pq *priorityQueue) Less(i, j int) bool {
	if pq.maxFirst {
		return pq.items[i].distance > pq.items[j].distance
	}
	return pq.items[i].distance < pq.items[j].distance
}

func (pq *priorityQueue) Swap(i, j int) {
	pq.items[i], pq.items[j] = pq.items[j], pq.items[i]
}

func (pq *priorityQueue) Push(x any) {
	pq.items = append(pq.items, x.(*item))
}

func (pq *priorityQueue) Pop() any {
	old := pq.items
	n := len(old)
	it := old[n-1]
	pq.items = old[:n-1]
	return it
}

func (pq *priorityQueue) top() *item {
	if len(pq.items) == 0 {
		return nil
	}
	return pq.items[0]
}

func (pq *priorityQueue) switchOrder() {
	pq.maxFirst = !pq.maxFirst
	heap.Init(pq)
}
