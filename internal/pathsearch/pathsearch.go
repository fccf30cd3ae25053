// Package pathsearch implements uninformed and heuristic search over an
// implicit graph. Nodes are identified by a comparable key; the graph is
// explored lazily through a successor function.
package pathsearch

import (
	"container/heap"
	"context"
	"errors"
)

var (
	// ErrNoPath is returned when the frontier is exhausted without reaching a goal.
	ErrNoPath = errors.New("pathsearch: no path")
	// ErrLimit is returned when the expansion limit is reached.
	ErrLimit = errors.New("pathsearch: expansion limit reached")
)

// Step is an edge out of a node: the move taken, the node reached, and the
// non-negative cost of taking it.
type Step[N comparable, M any] struct {
	Move M
	To   N
	Cost float64
}

// Problem describes a search.
type Problem[N comparable, M any] struct {
	Start      N
	Goal       func(N) bool
	Successors func(N) []Step[N, M]
	// Heuristic estimates the remaining cost. Nil means zero, which reduces
	// A* to uniform-cost search.
	Heuristic func(N) float64
	// Limit bounds the number of expanded nodes. Zero means unbounded.
	Limit int
}

// BFS returns the moves along a path with the fewest steps. Step costs are
// ignored.
func BFS[N comparable, M any](ctx context.Context, p Problem[N, M]) ([]M, error) {
	if p.Goal(p.Start) {
		return nil, nil
	}
	parents := map[N]parent[N, M]{p.Start: {root: true}}
	queue := []N{p.Start}
	expanded := 0
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if p.Limit > 0 && expanded >= p.Limit {
			return nil, ErrLimit
		}
		current := queue[0]
		queue = queue[1:]
		expanded++
		for _, s := range p.Successors(current) {
			if _, seen := parents[s.To]; seen {
				continue
			}
			parents[s.To] = parent[N, M]{from: current, move: s.Move}
			if p.Goal(s.To) {
				return reconstruct(parents, s.To), nil
			}
			queue = append(queue, s.To)
		}
	}
	return nil, ErrNoPath
}

// AStar returns the moves along a lowest-cost path, given a consistent
// heuristic. Ties are broken first-in first-out, which keeps results
// deterministic for deterministic successor functions.
func AStar[N comparable, M any](ctx context.Context, p Problem[N, M]) ([]M, error) {
	h := p.Heuristic
	if h == nil {
		h = func(N) float64 { return 0 }
	}
	parents := map[N]parent[N, M]{p.Start: {root: true}}
	gScore := map[N]float64{p.Start: 0}
	closed := make(map[N]struct{})
	open := &priorityQueue[N]{}
	heap.Push(open, &item[N]{value: p.Start, priority: h(p.Start)})
	var seq uint64
	expanded := 0

	for open.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		current := heap.Pop(open).(*item[N]).value
		if _, done := closed[current]; done {
			continue
		}
		if p.Goal(current) {
			return reconstruct(parents, current), nil
		}
		if p.Limit > 0 && expanded >= p.Limit {
			return nil, ErrLimit
		}
		closed[current] = struct{}{}
		expanded++

		for _, s := range p.Successors(current) {
			if _, done := closed[s.To]; done {
				continue
			}
			tentative := gScore[current] + s.Cost
			if old, ok := gScore[s.To]; ok && tentative >= old {
				continue
			}
			gScore[s.To] = tentative
			parents[s.To] = parent[N, M]{from: current, move: s.Move}
			seq++
			heap.Push(open, &item[N]{value: s.To, priority: tentative + h(s.To), seq: seq})
		}
	}
	return nil, ErrNoPath
}

type parent[N comparable, M any] struct {
	from N
	move M
	root bool
}

func reconstruct[N comparable, M any](parents map[N]parent[N, M], end N) []M {
	var moves []M
	for n := end; !parents[n].root; n = parents[n].from {
		moves = append(moves, parents[n].move)
	}
	for i, j := 0, len(moves)-1; i < j; i, j = i+1, j-1 {
		moves[i], moves[j] = moves[j], moves[i]
	}
	return moves
}

type item[N any] struct {
	value    N
	priority float64
	seq      uint64
	index    int
}

type priorityQueue[N any] []*item[N]

func (pq priorityQueue[N]) Len() int { return len(pq) }

func (pq priorityQueue[N]) Less(i, j int) bool {
	if pq[i].priority != pq[j].priority {
		return pq[i].priority < pq[j].priority
	}
	return pq[i].seq < pq[j].seq
}

func (pq priorityQueue[N]) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue[N]) Push(x any) {
	it := x.(*item[N])
	it.index = len(*pq)
	*pq = append(*pq, it)
}

func (pq *priorityQueue[N]) Pop() any {
	old := *pq
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*pq = old[:n-1]
	return it
}
