package search

import "github.com/robonav/robonav/grid"

// Node is an A* frontier entry: a position with its accumulated cost from
// start and heuristic estimate to goal. Identity is the position alone; two
// entries for the same position with different costs are duplicates, and the
// open set is allowed to hold both (see openHeap).
type Node struct {
	Pos grid.Position
	G   int
	H   int
}

// F is the priority key g + h. It is always derived, never stored.
func (n Node) F() int { return n.G + n.H }

// openHeap is the A* open set: a min-heap over (f, h), so ties on f prefer
// the node closer to the goal. There is no decrease-key; superseded entries
// stay in the heap and are skipped when popped after their position closes
// (lazy deletion).
type openHeap []Node

func (h openHeap) Len() int { return len(h) }

func (h openHeap) Less(i, j int) bool {
	if h[i].F() != h[j].F() {
		return h[i].F() < h[j].F()
	}
	return h[i].H < h[j].H
}

func (h openHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *openHeap) Push(x any) { *h = append(*h, x.(Node)) }

func (h *openHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
