// Package plan computes minimum-cost routes through a maze and converts them
// into motion commands.
package plan

import (
	"container/heap"
	"errors"

	"github.com/gwillem/mazerunner/pkg/maze"
)

// Start is the node every plan begins at.
const Start = 0

var (
	// ErrEmptyMap is returned when the map has no nodes.
	ErrEmptyMap = errors.New("map has no nodes")
	// ErrUnreachable is returned when no goal node is reachable from Start.
	ErrUnreachable = errors.New("no goal reachable from start")
)

// Cost returns the planning cost of traversing an edge with heading h.
// Turns cost two actions: the turn itself plus the forward advance after it.
func Cost(h maze.Heading) int {
	if h.Turning() {
		return 2
	}
	return 1
}

// item is a frontier entry of the search.
type item struct {
	node   int
	cost   int
	parent *item
	via    int // edge index used to reach node, -1 at start
	index  int
}

type frontier []*item

func (f frontier) Len() int { return len(f) }

func (f frontier) Less(i, j int) bool {
	return f[i].cost < f[j].cost
}

func (f frontier) Swap(i, j int) {
	f[i], f[j] = f[j], f[i]
	f[i].index = i
	f[j].index = j
}

func (f *frontier) Push(x any) {
	it := x.(*item)
	it.index = len(*f)
	*f = append(*f, it)
}

func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*f = old[:n-1]
	return it
}

// Plan finds a minimum-cost path from Start to the nearest goal node.
//
// When several goals are equally near, which one is chosen depends on
// traversal order and is not part of the contract.
func Plan(m *maze.Map) (Path, error) {
	if m == nil || m.Len() == 0 {
		return Path{}, ErrEmptyMap
	}

	start := &item{node: Start, via: -1}
	open := &frontier{}
	heap.Init(open)
	heap.Push(open, start)

	openSet := map[int]*item{Start: start}
	closed := make([]bool, m.Len())

	for open.Len() > 0 {
		current := heap.Pop(open).(*item)
		delete(openSet, current.node)

		if m.Node(current.node).Goal {
			return reconstruct(m, current), nil
		}
		closed[current.node] = true

		for _, nb := range m.Neighbors(current.node) {
			if closed[nb.Node] {
				continue
			}
			tentative := current.cost + Cost(nb.Heading)

			next, ok := openSet[nb.Node]
			if !ok {
				next = &item{node: nb.Node, cost: tentative, parent: current, via: nb.Edge}
				heap.Push(open, next)
				openSet[nb.Node] = next
			} else if tentative < next.cost {
				next.cost = tentative
				next.parent = current
				next.via = nb.Edge
				heap.Fix(open, next.index)
			}
		}
	}

	return Path{}, ErrUnreachable
}

func reconstruct(m *maze.Map, goal *item) Path {
	var steps []Step
	for it := goal; it.parent != nil; it = it.parent {
		e := m.Edge(it.via)
		steps = append(steps, Step{From: it.parent.node, To: it.node, Heading: e.Heading})
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return Path{steps: steps, cost: goal.cost}
}
