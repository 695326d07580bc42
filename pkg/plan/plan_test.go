package plan

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/gwillem/mazerunner/pkg/maze"
)

func scenarioMap(t *testing.T) *maze.Map {
	t.Helper()
	m, err := maze.NewMap(
		[]bool{false, false, false, false, false, true},
		[]maze.Edge{
			{From: 0, To: 1, Heading: maze.Forward},
			{From: 1, To: 2, Heading: maze.Left},
			{From: 2, To: 3, Heading: maze.Left},
			{From: 3, To: 4, Heading: maze.Right},
			{From: 3, To: 5, Heading: maze.Forward},
		},
	)
	require.NoError(t, err)
	return m
}

func TestPlanScenario(t *testing.T) {
	p, err := Plan(scenarioMap(t))
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2, 3, 5}, p.Nodes())
	assert.Equal(t, 6, p.Cost())
	assert.Equal(t, []maze.Command{
		maze.Move(maze.Forward),
		maze.Move(maze.Left),
		maze.Move(maze.Forward),
		maze.Move(maze.Left),
		maze.Move(maze.Forward),
		maze.Move(maze.Forward),
		maze.Stop(),
	}, p.Commands())
	assert.Equal(t, "0 -Forward-> 1 -Left-> 2 -Left-> 3 -Forward-> 5 (cost 6)", p.String())
}

func TestPlanPrefersStraightOverTurn(t *testing.T) {
	// Via 1 costs 1+1; via 3 and 4 costs 2+2+1 despite being found first.
	m, err := maze.NewMap(
		[]bool{false, false, true, false, false},
		[]maze.Edge{
			{From: 0, To: 3, Heading: maze.Right},
			{From: 3, To: 4, Heading: maze.Left},
			{From: 4, To: 2, Heading: maze.Forward},
			{From: 0, To: 1, Heading: maze.Forward},
			{From: 1, To: 2, Heading: maze.Backward},
		},
	)
	require.NoError(t, err)

	p, err := Plan(m)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Cost())
	assert.Equal(t, []int{0, 1, 2}, p.Nodes())
}

func TestPlanEmptyMap(t *testing.T) {
	m, err := maze.NewMap(nil, nil)
	require.NoError(t, err)

	_, err = Plan(m)
	assert.True(t, errors.Is(err, ErrEmptyMap))

	_, err = Plan(nil)
	assert.True(t, errors.Is(err, ErrEmptyMap))
}

func TestPlanUnreachable(t *testing.T) {
	m, err := maze.NewMap(
		[]bool{false, false, true},
		[]maze.Edge{{From: 0, To: 1, Heading: maze.Forward}},
	)
	require.NoError(t, err)

	p, err := Plan(m)
	assert.True(t, errors.Is(err, ErrUnreachable))
	assert.Equal(t, 0, p.Len())
}

func TestPlanNoGoals(t *testing.T) {
	m, err := maze.NewMap([]bool{false, false}, []maze.Edge{{From: 0, To: 1, Heading: maze.Left}})
	require.NoError(t, err)

	_, err = Plan(m)
	assert.True(t, errors.Is(err, ErrUnreachable))
}

func TestPlanStartIsGoal(t *testing.T) {
	m, err := maze.NewMap([]bool{true, true}, []maze.Edge{{From: 0, To: 1, Heading: maze.Forward}})
	require.NoError(t, err)

	p, err := Plan(m)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Len())
	assert.Equal(t, []maze.Command{maze.Stop()}, p.Commands())
}

func TestPlanTraversesEdgeAgainstItsOrientation(t *testing.T) {
	m, err := maze.NewMap(
		[]bool{false, true},
		[]maze.Edge{{From: 1, To: 0, Heading: maze.Right}},
	)
	require.NoError(t, err)

	p, err := Plan(m)
	require.NoError(t, err)
	assert.Equal(t, []Step{{From: 0, To: 1, Heading: maze.Right}}, p.Steps())
}

// genMap draws a random map; goals and connectivity are arbitrary.
func genMap(t *rapid.T) *maze.Map {
	n := rapid.IntRange(1, 10).Draw(t, "nodes")
	goals := rapid.SliceOfN(rapid.Bool(), n, n).Draw(t, "goals")
	edges := rapid.SliceOfN(rapid.Custom(func(t *rapid.T) maze.Edge {
		return maze.Edge{
			From:    rapid.IntRange(0, n-1).Draw(t, "from"),
			To:      rapid.IntRange(0, n-1).Draw(t, "to"),
			Heading: rapid.SampledFrom(maze.AllHeadings()).Draw(t, "heading"),
		}
	}), 0, 3*n).Draw(t, "edges")
	m, err := maze.NewMap(goals, edges)
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	return m
}

// shortest returns the true minimum cost from Start to any goal using
// Bellman-Ford relaxation, or -1 when no goal is reachable.
func shortest(m *maze.Map) int {
	dist := make([]int, m.Len())
	for i := range dist {
		dist[i] = math.MaxInt32
	}
	dist[Start] = 0
	for range m.Len() {
		for _, e := range m.Edges() {
			c := Cost(e.Heading)
			if dist[e.From]+c < dist[e.To] {
				dist[e.To] = dist[e.From] + c
			}
			if dist[e.To]+c < dist[e.From] {
				dist[e.From] = dist[e.To] + c
			}
		}
	}
	best := -1
	for i, g := range m.Goals() {
		if g && dist[i] != math.MaxInt32 && (best < 0 || dist[i] < best) {
			best = dist[i]
		}
	}
	return best
}

func TestPlanIsOptimal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := genMap(t)
		want := shortest(m)

		p, err := Plan(m)
		if want < 0 {
			if !errors.Is(err, ErrUnreachable) {
				t.Fatalf("expected ErrUnreachable, got path %s, err %v", p, err)
			}
			return
		}
		if err != nil {
			t.Fatalf("Plan: %v", err)
		}

		// The path must be connected, follow real edges and end on a goal.
		total := 0
		at := Start
		for _, s := range p.Steps() {
			if s.From != at {
				t.Fatalf("step %v does not start at %d", s, at)
			}
			found := false
			for _, nb := range m.Neighbors(at) {
				if nb.Node == s.To && nb.Heading == s.Heading {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("step %v is not an edge of the map", s)
			}
			total += Cost(s.Heading)
			at = s.To
		}
		if !m.Node(at).Goal {
			t.Fatalf("path ends at non-goal node %d", at)
		}
		if total != want || p.Cost() != want {
			t.Fatalf("path cost %d (reported %d), shortest is %d", total, p.Cost(), want)
		}
	})
}

func TestCommandShape(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p, err := Plan(genMap(t))
		if err != nil {
			return
		}
		cmds := p.Commands()

		stops := 0
		for _, c := range cmds {
			if c.IsStop() {
				stops++
			}
		}
		if stops != 1 || !cmds[len(cmds)-1].IsStop() {
			t.Fatalf("commands must end with exactly one Stop: %v", cmds)
		}

		// Replay the steps: a turn is followed by Move(Forward); a straight
		// edge is not.
		i := 0
		for _, s := range p.Steps() {
			h, _ := cmds[i].Heading()
			if h != s.Heading {
				t.Fatalf("command %d = %v, want Move(%s)", i, cmds[i], s.Heading)
			}
			i++
			if s.Heading.Turning() {
				if h, ok := cmds[i].Heading(); !ok || h != maze.Forward {
					t.Fatalf("turn at command %d not followed by Move(Forward): %v", i-1, cmds)
				}
				i++
			}
		}
		if i != len(cmds)-1 {
			t.Fatalf("unexpected extra commands: %v", cmds)
		}
	})
}
