package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/displayworks/displayctl/internal/arrange"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	dirtyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	canvasStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

func renderHeader(session *arrange.Session, width int) string {
	title := headerStyle.Render("displayctl · arrange")
	marker := ""
	if session.Dirty() {
		marker = dirtyStyle.Render(" · unsaved changes")
	}
	count := fmt.Sprintf("  %d monitors", len(session.Monitors()))
	line := title + marker + count
	if lipgloss.Width(line) > width {
		return title
	}
	return line
}

// renderCanvas draws the monitor set as bordered rectangles on a cell
// grid. The selected monitor gets a double-line border.
func renderCanvas(session *arrange.Session, selected string, width, height int) string {
	if width < 4 || height < 2 {
		return ""
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}

	for _, m := range session.Monitors() {
		drawMonitor(grid, session, m, m.ID == selected)
	}

	lines := make([]string, height)
	for i, row := range grid {
		lines[i] = string(row)
	}
	return canvasStyle.Render(strings.Join(lines, "\n"))
}

type borderRunes struct {
	tl, tr, bl, br, h, v rune
}

var (
	singleBorder = borderRunes{'┌', '┐', '└', '┘', '─', '│'}
	doubleBorder = borderRunes{'╔', '╗', '╚', '╝', '═', '║'}
)

func drawMonitor(grid [][]rune, session *arrange.Session, m arrange.Monitor, selected bool) {
	cx, cy := session.ToCanvas(m.X, m.Y)
	cw := float64(m.Width) * session.Scale()
	ch := float64(m.Height) * session.Scale()

	left := int(cx)
	top := int(cy) / cellAspect
	right := int(cx+cw) - 1
	bottom := int(cy+ch)/cellAspect - 1
	if right-left < 3 {
		right = left + 3
	}
	if bottom-top < 2 {
		bottom = top + 2
	}

	b := singleBorder
	if selected {
		b = doubleBorder
	}

	for col := left; col <= right; col++ {
		set(grid, top, col, b.h)
		set(grid, bottom, col, b.h)
	}
	for row := top; row <= bottom; row++ {
		set(grid, row, left, b.v)
		set(grid, row, right, b.v)
	}
	set(grid, top, left, b.tl)
	set(grid, top, right, b.tr)
	set(grid, bottom, left, b.bl)
	set(grid, bottom, right, b.br)

	label := m.Name
	if m.IsPrimary {
		label += " ★"
	}
	writeClipped(grid, top+1, left+1, right-1, label)
	writeClipped(grid, top+2, left+1, right-1, m.Resolution)
}

func set(grid [][]rune, row, col int, r rune) {
	if row < 0 || row >= len(grid) || col < 0 || col >= len(grid[row]) {
		return
	}
	grid[row][col] = r
}

func writeClipped(grid [][]rune, row, left, right int, text string) {
	col := left
	for _, r := range text {
		if col > right {
			return
		}
		set(grid, row, col, r)
		col++
	}
}
