package dag

import (
	"container/heap"
)

// TopoSort returns the node IDs in a dependencies-first topological order:
// for every edge A -> B (A depends on B), B appears before A.
//
// Ties among mutually-independent nodes are broken by insertion order, so
// two runs over the same graph always produce the same sequence. This is
// Kahn's algorithm over out-degrees with a min-heap keyed by insertion
// sequence.
//
// If the graph contains a cycle, TopoSort returns a *CycleError (matching
// ErrGraphHasCycle via errors.Is) with the offending path.
func (d *DAG) TopoSort() ([]string, error) {
	remaining := make(map[string]int, len(d.nodes))
	ready := &seqHeap{}

	for _, id := range d.order {
		remaining[id] = len(d.outgoing[id])
		if remaining[id] == 0 {
			heap.Push(ready, seqItem{id: id, seq: d.nodes[id].seq})
		}
	}

	sorted := make([]string, 0, len(d.nodes))
	for ready.Len() > 0 {
		id := heap.Pop(ready).(seqItem).id
		sorted = append(sorted, id)
		for _, parent := range d.incoming[id] {
			remaining[parent]--
			if remaining[parent] == 0 {
				heap.Push(ready, seqItem{id: parent, seq: d.nodes[parent].seq})
			}
		}
	}

	if len(sorted) != len(d.nodes) {
		// Nodes are left over, so a cycle exists. Run the DFS to
		// recover the exact path for diagnostics.
		return nil, &CycleError{Path: d.findCycle()}
	}
	return sorted, nil
}

type seqItem struct {
	id  string
	seq int
}

// seqHeap is a min-heap of node IDs ordered by insertion sequence.
type seqHeap []seqItem

func (h seqHeap) Len() int            { return len(h) }
func (h seqHeap) Less(i, j int) bool  { return h[i].seq < h[j].seq }
func (h seqHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *seqHeap) Push(x any)         { *h = append(*h, x.(seqItem)) }
func (h *seqHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
