package plan

import (
	"fmt"
	"strings"

	"github.com/gwillem/mazerunner/pkg/maze"
)

// Step is one traversed edge, oriented in the direction of travel.
type Step struct {
	From    int
	To      int
	Heading maze.Heading
}

// Path is the ordered list of edges from Start to a goal.
type Path struct {
	steps []Step
	cost  int
}

// Steps returns the traversed edges in order.
func (p Path) Steps() []Step {
	return append([]Step(nil), p.steps...)
}

// Len returns the number of edges on the path.
func (p Path) Len() int {
	return len(p.steps)
}

// Cost returns the total planning cost of the path.
func (p Path) Cost() int {
	return p.cost
}

// Nodes returns the visited node sequence, starting at Start.
func (p Path) Nodes() []int {
	nodes := []int{Start}
	for _, s := range p.steps {
		nodes = append(nodes, s.To)
	}
	return nodes
}

// Commands converts the path into motion commands.
//
// Straight edges become a single Move. A turn becomes the turn followed by
// Move(Forward) into the corridor now ahead. The sequence always ends with
// exactly one Stop.
func (p Path) Commands() []maze.Command {
	cmds := make([]maze.Command, 0, 2*len(p.steps)+1)
	for _, s := range p.steps {
		cmds = append(cmds, maze.Move(s.Heading))
		if s.Heading.Turning() {
			cmds = append(cmds, maze.Move(maze.Forward))
		}
	}
	return append(cmds, maze.Stop())
}

func (p Path) String() string {
	if len(p.steps) == 0 {
		return fmt.Sprintf("%d (cost 0)", Start)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d", Start)
	for _, s := range p.steps {
		fmt.Fprintf(&sb, " -%s-> %d", s.Heading, s.To)
	}
	fmt.Fprintf(&sb, " (cost %d)", p.cost)
	return sb.String()
}
