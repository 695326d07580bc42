package maze

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const scenarioJSON = `{
  "nodes": [false, false, false, false, false, true],
  "edges": [
    {"nodes": [0, 1], "weight": "Forward"},
    {"nodes": [1, 2], "weight": "Left"},
    {"nodes": [2, 3], "weight": "Left"},
    {"nodes": [3, 4], "weight": "Right"},
    {"nodes": [3, 5], "weight": "Forward"}
  ]
}`

func TestDecode(t *testing.T) {
	m, err := Decode(strings.NewReader(scenarioJSON))
	require.NoError(t, err)

	assert.Equal(t, 6, m.Len())
	assert.Equal(t, []bool{false, false, false, false, false, true}, m.Goals())
	assert.Equal(t, Edge{From: 1, To: 2, Heading: Left}, m.Edge(1))
	assert.True(t, m.Node(5).Goal)
	assert.Equal(t, 5, m.Node(5).Index)
}

func TestNeighborsAreUndirected(t *testing.T) {
	m, err := Decode(strings.NewReader(scenarioJSON))
	require.NoError(t, err)

	assert.Equal(t, []Neighbor{
		{Node: 2, Edge: 2, Heading: Left},
		{Node: 4, Edge: 3, Heading: Right},
		{Node: 5, Edge: 4, Heading: Forward},
	}, m.Neighbors(3))
	assert.Equal(t, []Neighbor{{Node: 3, Edge: 4, Heading: Forward}}, m.Neighbors(5))
}

func TestNewMapRejectsUnknownNode(t *testing.T) {
	_, err := NewMap([]bool{false, true}, []Edge{{From: 0, To: 2, Heading: Forward}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidEdge))
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing nodes", `{"edges": []}`},
		{"missing edges", `{"nodes": [true]}`},
		{"unknown heading", `{"nodes": [false, true], "edges": [{"nodes": [0, 1], "weight": "Up"}]}`},
		{"heading not a string", `{"nodes": [false, true], "edges": [{"nodes": [0, 1], "weight": 1}]}`},
		{"dangling edge", `{"nodes": [false], "edges": [{"nodes": [0, 7], "weight": "Left"}]}`},
		{"missing weight", `{"nodes": [false, true], "edges": [{"nodes": [0, 1]}]}`},
		{"null weight", `{"nodes": [false, true], "edges": [{"nodes": [0, 1], "weight": null}]}`},
		{"one endpoint", `{"nodes": [false, true], "edges": [{"nodes": [1], "weight": "Left"}]}`},
		{"three endpoints", `{"nodes": [false, true], "edges": [{"nodes": [0, 1, 7], "weight": "Left"}]}`},
		{"missing endpoints", `{"nodes": [false, true], "edges": [{"weight": "Left"}]}`},
		{"not json", `nodes: []`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	m, err := Decode(strings.NewReader(scenarioJSON))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "maze.json")
	require.NoError(t, m.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, m.Equal(loaded))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestEqualIgnoresEdgeOrderAndOrientation(t *testing.T) {
	a, err := NewMap([]bool{false, false, true}, []Edge{
		{From: 0, To: 1, Heading: Forward},
		{From: 1, To: 2, Heading: Left},
	})
	require.NoError(t, err)
	b, err := NewMap([]bool{false, false, true}, []Edge{
		{From: 2, To: 1, Heading: Left},
		{From: 0, To: 1, Heading: Forward},
	})
	require.NoError(t, err)
	c, err := NewMap([]bool{false, false, true}, []Edge{
		{From: 0, To: 1, Heading: Forward},
		{From: 1, To: 2, Heading: Right},
	})
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

// genMap draws an arbitrary, possibly disconnected map.
func genMap(t *rapid.T) *Map {
	n := rapid.IntRange(1, 12).Draw(t, "nodes")
	goals := rapid.SliceOfN(rapid.Bool(), n, n).Draw(t, "goals")
	edges := rapid.SliceOfN(rapid.Custom(func(t *rapid.T) Edge {
		return Edge{
			From:    rapid.IntRange(0, n-1).Draw(t, "from"),
			To:      rapid.IntRange(0, n-1).Draw(t, "to"),
			Heading: rapid.SampledFrom(AllHeadings()).Draw(t, "heading"),
		}
	}), 0, 3*n).Draw(t, "edges")
	m, err := NewMap(goals, edges)
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	return m
}

func TestJSONRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := genMap(t)

		data, err := json.Marshal(m)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var back Map
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if !m.Equal(&back) {
			t.Fatalf("round trip changed map: %s -> %s", m, &back)
		}
	})
}
