package render

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/valter-silva-au/procurement-dashboard/internal/core"
	"github.com/valter-silva-au/procurement-dashboard/pkg/models"
)

// TerminalLabelWidth is the width of the task-name column in cells.
const TerminalLabelWidth = 22

// TerminalOptions controls terminal rendering.
type TerminalOptions struct {
	// Width is the number of cells available for the chart area.
	Width int
	// Hovered is the index of the highlighted task, or -1.
	Hovered int
}

var (
	monthStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	labelStyle   = lipgloss.NewStyle()
	hoveredStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230"))
	axisStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Terminal renders layout as lines of text: a month header, an axis, then
// one bar per task. Layout lengths are scaled so the whole chart fits in
// opts.Width cells.
func Terminal(layout *models.TimelineLayout, tasks []models.ScheduleTask, opts TerminalOptions) []string {
	width := max(opts.Width, 10)
	scale := 1.0
	if layout.ChartWidth > 0 {
		scale = float64(width) / layout.ChartWidth
	}
	// col maps a layout length to a cell index within [0, width]. Non-finite
	// lengths from degenerate tasks map to 0 or width.
	col := func(v float64) int {
		c := v * scale
		if math.IsNaN(c) {
			return 0
		}
		return int(math.Round(min(max(c, 0), float64(width))))
	}

	header := []rune(strings.Repeat(" ", width))
	axis := []rune(strings.Repeat("─", width))
	for i, band := range layout.Bands {
		start := col(float64(band.Offset) * layout.DayWidth)
		if start >= width {
			continue
		}
		axis[start] = '┬'
		visible := col(float64(core.VisibleBandDays(layout, i)) * layout.DayWidth)
		label := []rune(truncate(band.Label, visible-1))
		for j, r := range label {
			if start+j < width {
				header[start+j] = r
			}
		}
	}

	pad := strings.Repeat(" ", TerminalLabelWidth)
	lines := []string{
		pad + monthStyle.Render(string(header)),
		pad + axisStyle.Render(string(axis)),
	}

	for i, t := range tasks {
		tl, ok := layout.TaskByID(t.ID)
		if !ok {
			continue
		}
		marker := "  "
		ls := labelStyle
		if i == opts.Hovered {
			marker = "› "
			ls = hoveredStyle
		}
		name := truncate(t.Name, TerminalLabelWidth-3)
		label := marker + name + strings.Repeat(" ", TerminalLabelWidth-2-len([]rune(name)))
		lines = append(lines, ls.Render(label)+bar(tl, col, width))
	}
	return lines
}

// bar draws one task as filled and remaining cells. A task with any width
// gets at least one cell.
func bar(tl models.TaskLayout, col func(float64) int, width int) string {
	start := min(max(col(tl.Rect.Offset), 0), width)
	cells := col(tl.Rect.Width)
	if tl.Rect.Width > 0 && cells == 0 {
		cells = 1
	}
	cells = max(0, min(cells, width-start))
	filled := max(0, min(col(tl.Split.Filled), cells))

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(tl.Color))
	return strings.Repeat(" ", start) +
		style.Render(strings.Repeat("█", filled)) +
		style.Render(strings.Repeat("░", cells-filled)) +
		strings.Repeat(" ", width-start-cells)
}
