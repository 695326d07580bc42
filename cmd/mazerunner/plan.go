package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"go.uber.org/zap"

	"github.com/gwillem/mazerunner/pkg/maze"
	"github.com/gwillem/mazerunner/pkg/metrics"
	"github.com/gwillem/mazerunner/pkg/plan"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// MapArgs is the positional map file argument shared by the commands.
type MapArgs struct {
	Map string `positional-arg-name:"map.json" required:"yes" description:"Maze map file"`
}

type PlanCommand struct {
	Args MapArgs `positional-args:"yes"`
}

func (c *PlanCommand) Execute(args []string) error {
	log := newLogger()
	defer log.Sync()

	m, p, err := loadPlan(c.Args.Map, log, nil)
	if err != nil {
		return err
	}
	printPlan(m, p)
	return nil
}

// loadPlan loads the map at path and plans a route through it.
func loadPlan(path string, log *zap.Logger, mt *metrics.Metrics) (*maze.Map, plan.Path, error) {
	m, err := maze.Load(path)
	if err != nil {
		return nil, plan.Path{}, err
	}
	log.Info("map loaded", zap.String("path", path), zap.Int("nodes", m.Len()), zap.Int("edges", len(m.Edges())))

	p, err := plan.Plan(m)
	mt.ObservePlan(p.Cost(), err)
	if err != nil {
		return nil, plan.Path{}, fmt.Errorf("plan %s: %w", path, err)
	}
	log.Info("route planned", zap.Stringer("path", p), zap.Int("cost", p.Cost()))
	return m, p, nil
}

func printPlan(m *maze.Map, p plan.Path) {
	fmt.Println(headerStyle.Render("mazerunner"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━"))
	fmt.Println(m)
	fmt.Println()
	fmt.Println(subHeaderStyle.Render("Route"))
	fmt.Println(p)
	fmt.Println()
	fmt.Println(commandTable(p.Commands()))
}

func commandTable(cmds []maze.Command) string {
	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	tableIndexStyle := dimStyle.Padding(0, 1)
	tableCellStyle := lipgloss.NewStyle().Padding(0, 1)
	tableTurnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Padding(0, 1)
	tableStopStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(0, 1)

	rows := make([][]string, 0, len(cmds))
	for i, cmd := range cmds {
		rows = append(rows, []string{strconv.Itoa(i), cmd.String()})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("#", "Command").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			if col == 0 {
				return tableIndexStyle
			}
			if row < 0 || row >= len(cmds) {
				return tableCellStyle
			}
			if cmds[row].IsStop() {
				return tableStopStyle
			}
			if h, _ := cmds[row].Heading(); h.Turning() {
				return tableTurnStyle
			}
			return tableCellStyle
		})
	return t.Render()
}
