package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/robonav/robonav/grid"
	"github.com/robonav/robonav/search"
)

var (
	cellStyles = map[grid.CellType]lipgloss.Style{
		grid.Empty:    lipgloss.NewStyle().Background(lipgloss.Color("236")),
		grid.Obstacle: lipgloss.NewStyle().Background(lipgloss.Color("240")),
		grid.Start:    lipgloss.NewStyle().Background(lipgloss.Color("34")),
		grid.Goal:     lipgloss.NewStyle().Background(lipgloss.Color("160")),
		grid.Path:     lipgloss.NewStyle().Background(lipgloss.Color("220")),
		grid.Visited:  lipgloss.NewStyle().Background(lipgloss.Color("25")),
		grid.Frontier: lipgloss.NewStyle().Background(lipgloss.Color("39")),
		grid.Current:  lipgloss.NewStyle().Background(lipgloss.Color("213")),
	}

	titleStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
	statusStyle = lipgloss.NewStyle().MarginTop(1)
)

func (m model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("robonav — %s on %s (%dx%d)",
		m.algo.Display(), m.mapName, m.g.Width(), m.g.Height())))
	sb.WriteString("\n\n")

	for y := 0; y < m.g.Height(); y++ {
		for x := 0; x < m.g.Width(); x++ {
			c := m.g.Cell(grid.Position{X: x, Y: y})
			sb.WriteString(cellStyles[c].Render("  "))
		}
		sb.WriteByte('\n')
	}

	sb.WriteString(statusStyle.Render(m.statusLine()))
	sb.WriteByte('\n')

	if info := m.state.LastStepInfo(); info != "" {
		sb.WriteString(info)
		sb.WriteByte('\n')
	}
	sb.WriteString(m.neighborTable())

	sb.WriteByte('\n')
	sb.WriteString(dimStyle.Render("space step · p play/pause · 1 bfs 2 dfs 3 a* · r reset · +/- speed · q quit"))
	sb.WriteByte('\n')
	return sb.String()
}

func (m model) statusLine() string {
	status := "running"
	if m.outcome != nil {
		switch m.outcome.Outcome {
		case search.PathFound:
			status = fmt.Sprintf("path found, length %d", len(m.outcome.Path))
		case search.NoPath:
			status = "no path"
		}
	} else if m.playing {
		status = fmt.Sprintf("playing (%s/step)", m.delay)
	}
	return fmt.Sprintf("step %d · frontier %d · closed %d · %s",
		m.state.StepCount(), m.state.FrontierLen(m.algo), m.state.ClosedSetLen(), status)
}

// neighborTable renders the inspector: one line per neighbor considered in
// the most recent step, with the direction it sits in relative to the
// popped cell.
func (m model) neighborTable() string {
	decisions := m.state.LastNeighbors()
	if len(decisions) == 0 {
		return ""
	}
	cur, ok := m.state.CurrentNode()
	var sb strings.Builder
	for _, d := range decisions {
		arrow := "•"
		if ok {
			arrow = cur.DirectionTo(d.Pos).Arrow()
		}
		costs := ""
		if d.G != nil {
			costs = fmt.Sprintf(" g=%d", *d.G)
		}
		if d.H != nil {
			costs += fmt.Sprintf(" h=%d", *d.H)
		}
		if d.F != nil {
			costs += fmt.Sprintf(" f=%d", *d.F)
		}
		sb.WriteString(fmt.Sprintf("  %s (%d, %d)%s: %s\n", arrow, d.Pos.X, d.Pos.Y, costs, d.Decision))
	}
	return sb.String()
}
