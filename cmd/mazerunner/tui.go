package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/mazerunner/pkg/maze"
	"github.com/gwillem/mazerunner/pkg/motion"
	"github.com/gwillem/mazerunner/pkg/robot"
)

const (
	headerHeight = 2  // title + blank line
	legendHeight = 2  // legend row + blank
	footerHeight = 7  // log box height
	maxLogs      = 5  // number of log messages to show
	borderSize   = 2  // chart border
	listWidth    = 24 // command list column
)

// Sensor colors
var sensorColors = map[robot.SensorName]string{
	robot.Front: "196", // red
	robot.Rear:  "226", // yellow
	robot.Left:  "46",  // green
	robot.Right: "51",  // cyan
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	activeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
)

type cmdStatus int

const (
	cmdPending cmdStatus = iota
	cmdActive
	cmdDone
	cmdFailed
)

type runModel struct {
	title    string
	engine   *motion.Engine
	commands []maze.Command
	status   []cmdStatus
	winners  []robot.SensorName
	chart    *streamlinechart.Model
	width    int      // terminal width
	height   int      // terminal height
	logs     []string // last N log messages
	finished bool
	err      error
	quitting bool
}

func (m *runModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// Messages from the engine
type eventMsg motion.Event
type logMsg string
type runDoneMsg struct{ err error }

func waitForEvent(e *motion.Engine) tea.Cmd {
	return func() tea.Msg {
		return eventMsg(<-e.Events())
	}
}

func waitForLog(e *motion.Engine) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-e.Logs())
	}
}

// chartSize calculates the size of the chart based on terminal dimensions
func (m *runModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 60, 20 // default size before we know terminal size
	}
	width = max(m.width-listWidth-borderSize-2, 40)
	height = max(m.height-headerHeight-legendHeight-footerHeight-borderSize, 10)
	return width, height
}

func (m *runModel) resizeChart() {
	w, h := m.chartSize()
	m.chart.Resize(w, h)
}

func newRunModel(title string, e *motion.Engine, cmds []maze.Command) runModel {
	chart := streamlinechart.New(60, 20,
		streamlinechart.WithYRange(0, 150),
	)
	for _, name := range robot.AllSensors() {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(sensorColors[name]))
		chart.SetDataSetStyles(string(name), runes.ThinLineStyle, style)
	}

	return runModel{
		title:    title,
		engine:   e,
		commands: cmds,
		status:   make([]cmdStatus, len(cmds)),
		winners:  make([]robot.SensorName, len(cmds)),
		chart:    &chart,
	}
}

func (m runModel) Init() tea.Cmd {
	return tea.Batch(
		waitForEvent(m.engine),
		waitForLog(m.engine),
	)
}

func (m runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeChart()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case eventMsg:
		m.applyEvent(motion.Event(msg))
		return m, waitForEvent(m.engine)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.engine)

	case runDoneMsg:
		m.finished = true
		m.err = msg.err
		if msg.err != nil {
			m.addLog("Run failed: " + msg.err.Error())
		}
		return m, nil
	}

	return m, nil
}

func (m *runModel) applyEvent(ev motion.Event) {
	if ev.Sample != nil {
		m.chart.PushDataSet(string(ev.Sample.Sensor), ev.Sample.Centimeters)
		m.chart.DrawAll()
	}
	if ev.Index < 0 || ev.Index >= len(m.status) {
		return
	}
	switch ev.Phase {
	case motion.PhaseActuating, motion.PhaseRacing:
		m.status[ev.Index] = cmdActive
	case motion.PhaseCompleted:
		m.status[ev.Index] = cmdDone
		m.winners[ev.Index] = ev.Winner
	case motion.PhaseDisabled:
		if ev.Err != nil {
			m.status[ev.Index] = cmdFailed
		} else {
			m.status[ev.Index] = cmdDone
		}
	}
}

func (m runModel) View() string {
	if m.quitting {
		return "Run stopped.\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString(titleStyle.Render(m.title))
	switch {
	case m.finished && m.err != nil:
		sb.WriteString(" - " + errorStyle.Render("failed"))
	case m.finished:
		sb.WriteString(" - " + successStyle.Render("route complete"))
	default:
		sb.WriteString(" - driving")
	}
	if m.width > 0 {
		sb.WriteString(statusStyle.Render(fmt.Sprintf("  [%dx%d]", m.width, m.height)))
	}
	sb.WriteString("\n\n")

	// Chart next to the command list
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		chartStyle.Render(m.chart.View()),
		m.renderCommands(),
	))
	sb.WriteString("\n")

	// Legend
	sb.WriteString(renderLegend(m.engine.Calibration()))
	sb.WriteString("\n")

	// Log box
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(max(m.width-4, 20))

	var logLines string
	if len(m.logs) == 0 {
		logLines = statusStyle.Render("Press 'q' to quit")
	} else {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func (m runModel) renderCommands() string {
	var lines []string
	for i, cmd := range m.commands {
		line := fmt.Sprintf("%2d %s", i, cmd)
		switch m.status[i] {
		case cmdActive:
			lines = append(lines, activeStyle.Render("▶"+line))
		case cmdDone:
			if w := m.winners[i]; w != "" {
				line += " " + string(w)
			}
			lines = append(lines, successStyle.Render("✓"+line))
		case cmdFailed:
			lines = append(lines, errorStyle.Render("✗"+line))
		default:
			lines = append(lines, statusStyle.Render("·"+line))
		}
	}
	return lipgloss.NewStyle().Width(listWidth).PaddingLeft(1).Render(strings.Join(lines, "\n"))
}

func renderLegend(cal robot.Calibration) string {
	var items []string
	for _, name := range robot.AllSensors() {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(sensorColors[name])).Bold(true)
		items = append(items, colorStyle.Render("━━")+" "+string(name))
	}
	items = append(items, statusStyle.Render(fmt.Sprintf("turn %.2f  wall %.2f  opening %.2f cm",
		cal.TurnThreshold, cal.WallThreshold, cal.OpeningThreshold)))
	return strings.Join(items, "  ")
}
