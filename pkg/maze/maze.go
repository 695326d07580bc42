package maze

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
)

// ErrInvalidEdge is returned when an edge references a node that does not exist.
var ErrInvalidEdge = errors.New("edge references unknown node")

// Node is an intersection. Index is stable and assigned at load time.
type Node struct {
	Index int
	Goal  bool
}

// Edge is an undirected corridor between two nodes.
type Edge struct {
	From    int
	To      int
	Heading Heading
}

// Neighbor is one adjacency entry: the node reached and the heading used.
type Neighbor struct {
	Node    int
	Edge    int
	Heading Heading
}

// Map is an immutable undirected graph of nodes and headed edges.
//
// Nodes and edges are stored in flat slices and adjacency is an index list
// computed once by NewMap.
type Map struct {
	nodes []Node
	edges []Edge
	adj   [][]Neighbor
}

// NewMap builds a map from per-node goal flags and an edge list.
func NewMap(goals []bool, edges []Edge) (*Map, error) {
	m := &Map{
		nodes: make([]Node, len(goals)),
		edges: make([]Edge, len(edges)),
		adj:   make([][]Neighbor, len(goals)),
	}
	for i, g := range goals {
		m.nodes[i] = Node{Index: i, Goal: g}
	}
	for i, e := range edges {
		if e.From < 0 || e.From >= len(goals) || e.To < 0 || e.To >= len(goals) {
			return nil, fmt.Errorf("edge %d (%d-%d): %w", i, e.From, e.To, ErrInvalidEdge)
		}
		if !e.Heading.Valid() {
			return nil, fmt.Errorf("edge %d: invalid heading %d", i, int(e.Heading))
		}
		m.edges[i] = e
		m.adj[e.From] = append(m.adj[e.From], Neighbor{Node: e.To, Edge: i, Heading: e.Heading})
		if e.From != e.To {
			m.adj[e.To] = append(m.adj[e.To], Neighbor{Node: e.From, Edge: i, Heading: e.Heading})
		}
	}
	return m, nil
}

// Len returns the number of nodes.
func (m *Map) Len() int {
	return len(m.nodes)
}

// Node returns the node at index i.
func (m *Map) Node(i int) Node {
	return m.nodes[i]
}

// Edge returns the edge at index i.
func (m *Map) Edge(i int) Edge {
	return m.edges[i]
}

// Edges returns a copy of the edge list in load order.
func (m *Map) Edges() []Edge {
	return append([]Edge(nil), m.edges...)
}

// Neighbors returns the adjacency list of node i. The slice must not be modified.
func (m *Map) Neighbors(i int) []Neighbor {
	return m.adj[i]
}

// Goals returns the goal flag of every node, index-ordered.
func (m *Map) Goals() []bool {
	goals := make([]bool, len(m.nodes))
	for i, n := range m.nodes {
		goals[i] = n.Goal
	}
	return goals
}

// Equal reports whether m and other have the same goal flags by index and
// the same multiset of edges, ignoring edge order and endpoint orientation.
func (m *Map) Equal(other *Map) bool {
	if m == nil || other == nil {
		return m == other
	}
	if len(m.nodes) != len(other.nodes) || len(m.edges) != len(other.edges) {
		return false
	}
	for i := range m.nodes {
		if m.nodes[i].Goal != other.nodes[i].Goal {
			return false
		}
	}
	a, b := canonicalEdges(m.edges), canonicalEdges(other.edges)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func canonicalEdges(edges []Edge) []Edge {
	out := make([]Edge, len(edges))
	for i, e := range edges {
		if e.From > e.To {
			e.From, e.To = e.To, e.From
		}
		out[i] = e
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		if out[i].To != out[j].To {
			return out[i].To < out[j].To
		}
		return out[i].Heading < out[j].Heading
	})
	return out
}

// mapJSON is the persisted form:
//
//	{"nodes": [false, true], "edges": [{"nodes": [0, 1], "weight": "Forward"}]}
type mapJSON struct {
	Nodes []bool     `json:"nodes"`
	Edges []edgeJSON `json:"edges"`
}

type edgeJSON struct {
	Nodes  []uint32 `json:"nodes"`
	Weight *Heading `json:"weight"`
}

func (m *Map) MarshalJSON() ([]byte, error) {
	out := mapJSON{
		Nodes: m.Goals(),
		Edges: make([]edgeJSON, len(m.edges)),
	}
	for i, e := range m.edges {
		h := e.Heading
		out.Edges[i] = edgeJSON{
			Nodes:  []uint32{uint32(e.From), uint32(e.To)},
			Weight: &h,
		}
	}
	return json.Marshal(out)
}

func (m *Map) UnmarshalJSON(data []byte) error {
	var raw struct {
		Nodes *[]bool     `json:"nodes"`
		Edges *[]edgeJSON `json:"edges"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Nodes == nil {
		return errors.New("missing field \"nodes\"")
	}
	if raw.Edges == nil {
		return errors.New("missing field \"edges\"")
	}
	edges := make([]Edge, len(*raw.Edges))
	for i, e := range *raw.Edges {
		if len(e.Nodes) != 2 {
			return fmt.Errorf("edge %d: want 2 nodes, got %d", i, len(e.Nodes))
		}
		if e.Weight == nil {
			return fmt.Errorf("edge %d: missing field \"weight\"", i)
		}
		edges[i] = Edge{From: int(e.Nodes[0]), To: int(e.Nodes[1]), Heading: *e.Weight}
	}
	built, err := NewMap(*raw.Nodes, edges)
	if err != nil {
		return err
	}
	*m = *built
	return nil
}

// Decode reads a JSON map from r.
func Decode(r io.Reader) (*Map, error) {
	var m Map
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("parse map JSON: %w", err)
	}
	return &m, nil
}

// Load reads a JSON map file.
func Load(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read map file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Save writes the map to path as indented JSON.
func (m *Map) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (m *Map) String() string {
	return fmt.Sprintf("Map{nodes: %d, edges: %d, goals: %v}", len(m.nodes), len(m.edges), m.goalIndices())
}

func (m *Map) goalIndices() []int {
	var idx []int
	for _, n := range m.nodes {
		if n.Goal {
			idx = append(idx, n.Index)
		}
	}
	return idx
}
