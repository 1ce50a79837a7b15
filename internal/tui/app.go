// Package tui is the interactive arrangement editor: a scaled canvas
// of the monitor set with mouse dragging, zoom, and presets.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/displayworks/displayctl/internal/applier"
	"github.com/displayworks/displayctl/internal/arrange"
)

// SaveFunc persists the edited monitor set.
type SaveFunc func(ctx context.Context, monitors []arrange.Monitor) error

// ApplyFunc pushes the edited monitor set to the display hardware.
type ApplyFunc func(ctx context.Context, monitors []arrange.Monitor) applier.Outcome

// model is the root bubbletea model for the arrangement editor.
type model struct {
	session *arrange.Session
	save    SaveFunc
	apply   ApplyFunc

	selected string // monitor id highlighted by tab / click
	status   string
	fatal    error

	width  int
	height int
}

type savedMsg struct{ err error }

type appliedMsg struct{ outcome applier.Outcome }

func newModel(session *arrange.Session, save SaveFunc, apply ApplyFunc) model {
	return model{session: session, save: save, apply: apply}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return nil
}

// contentHeight returns the rows available for the canvas.
func (m model) contentHeight() int {
	// header (1) + status bar (1) + help bar (1)
	h := m.height - 3
	if h < 1 {
		h = 1
	}
	return h
}

// Terminal cells are roughly twice as tall as they are wide; doubling
// the vertical canvas resolution keeps monitor rectangles in shape.
const cellAspect = 2

func (m *model) resizeCanvas() {
	m.session.SetCanvasSize(float64(m.width), float64(m.contentHeight()*cellAspect))
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeCanvas()
		return m, nil

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case tea.KeyMsg:
		return m.updateKey(msg)

	case savedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("save failed: %v", msg.err)
		} else {
			m.session.ClearDirty()
			m.status = "arrangement saved"
		}
		return m, nil

	case appliedMsg:
		m.status = describeOutcome(msg.outcome)
		return m, nil
	}
	return m, nil
}

func (m model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	cx := float64(msg.X)
	cy := float64((msg.Y - 1) * cellAspect) // canvas starts below the header

	switch {
	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		if id, ok := m.session.BeginDrag(cx, cy); ok {
			m.selected = id
			m.status = ""
		}
	case msg.Action == tea.MouseActionMotion:
		m.session.DragTo(cx, cy)
	case msg.Action == tea.MouseActionRelease:
		m.session.EndDrag()
	case msg.Button == tea.MouseButtonWheelUp:
		m.session.ZoomIn()
	case msg.Button == tea.MouseButtonWheelDown:
		m.session.ZoomOut()
	}
	return m, nil
}

func (m model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "tab":
		m.selectNext()

	case "+", "=":
		m.session.ZoomIn()
	case "-":
		m.session.ZoomOut()
	case "f":
		m.session.FitToCanvas()

	case "s":
		m.session.ApplySideBySide()
		m.status = "preset: side by side"
	case "v":
		m.session.ApplyStacked()
		m.status = "preset: stacked"
	case "t":
		m.session.ApplyTriple()
		m.status = "preset: triple"

	case "a":
		added := m.session.AddMonitor()
		m.selected = added.ID
		m.status = fmt.Sprintf("added %s", added.Name)

	case "x":
		if m.selected == "" {
			m.status = "no monitor selected"
			break
		}
		if len(m.session.Monitors()) == 1 {
			m.status = "cannot remove the last monitor"
			break
		}
		m.session.RemoveMonitor(m.selected)
		m.selected = ""
		m.status = "monitor removed"

	case "w":
		if m.save == nil {
			m.status = "saving is not available"
			break
		}
		monitors := m.session.Monitors()
		save := m.save
		m.status = "saving..."
		return m, func() tea.Msg {
			return savedMsg{err: save(context.Background(), monitors)}
		}

	case "p":
		if m.apply == nil {
			m.status = "applying is not available"
			break
		}
		monitors := m.session.Monitors()
		apply := m.apply
		m.status = "applying..."
		return m, func() tea.Msg {
			return appliedMsg{outcome: apply(context.Background(), monitors)}
		}
	}
	return m, nil
}

func (m *model) selectNext() {
	monitors := m.session.Monitors()
	if len(monitors) == 0 {
		return
	}
	for i, mon := range monitors {
		if mon.ID == m.selected {
			m.selected = monitors[(i+1)%len(monitors)].ID
			return
		}
	}
	m.selected = monitors[0].ID
}

func describeOutcome(o applier.Outcome) string {
	switch o.Kind {
	case applier.Applied:
		return "layout applied"
	case applier.PermissionRequired:
		return "apply refused: grant display control permission and retry"
	case applier.ManualCommandRequired:
		if o.Hint == "" {
			return "run manually: " + o.Command
		}
		return fmt.Sprintf("tool missing (%s); run: %s", o.Hint, o.Command)
	default:
		return fmt.Sprintf("apply failed: %v", o.Err)
	}
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := renderHeader(m.session, m.width)
	canvas := renderCanvas(m.session, m.selected, m.width, m.contentHeight())
	status := statusStyle.Width(m.width).Render(m.status)
	help := helpStyle.Width(m.width).Render(
		"drag: move · +/-: zoom · f: fit · s/v/t: presets · a: add · x: remove · w: save · p: apply · q: quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, canvas, status, help)
}

// Run starts the arrangement editor on the terminal.
func Run(session *arrange.Session, save SaveFunc, apply ApplyFunc) error {
	p := tea.NewProgram(newModel(session, save, apply),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
