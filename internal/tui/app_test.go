package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/displayworks/displayctl/internal/applier"
	"github.com/displayworks/displayctl/internal/arrange"
)

func testSession() *arrange.Session {
	s := arrange.NewSession(arrange.Config{
		MinScale: 0.001, MaxScale: 1.0, Margin: 2, Spacing: 40, ZoomStep: 0.01,
	})
	s.SetMonitors([]arrange.Monitor{
		{ID: "a", Name: "Main", Resolution: "2560x1440", Width: 2560, Height: 1440, IsPrimary: true},
		{ID: "b", Name: "Side", Resolution: "1440x900", Width: 1440, Height: 900, X: 2560},
	})
	return s
}

func sized(m model) model {
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(model)
}

func keyMsg(s string) tea.KeyMsg {
	if s == "tab" {
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestUpdate_MouseDragMovesMonitor(t *testing.T) {
	session := testSession()
	m := sized(newModel(session, nil, nil))

	// Press on monitor a's center, one row below the header.
	start, _ := session.MonitorByID("a")
	cx, cy := session.ToCanvas(start.X+float64(start.Width)/2, start.Y+float64(start.Height)/2)
	press := tea.MouseMsg{X: int(cx), Y: int(cy)/cellAspect + 1,
		Button: tea.MouseButtonLeft, Action: tea.MouseActionPress}

	updated, _ := m.Update(press)
	m = updated.(model)
	if id, dragging := session.Dragging(); !dragging || id != "a" {
		t.Fatalf("expected drag on a, got %q %v", id, dragging)
	}
	if m.selected != "a" {
		t.Fatalf("press must select the monitor, got %q", m.selected)
	}

	updated, _ = m.Update(tea.MouseMsg{X: int(cx) + 10, Y: int(cy)/cellAspect + 1,
		Action: tea.MouseActionMotion})
	m = updated.(model)
	moved, _ := session.MonitorByID("a")
	if moved.X <= start.X {
		t.Fatalf("monitor did not move right: %v", moved.X)
	}

	updated, _ = m.Update(tea.MouseMsg{Action: tea.MouseActionRelease})
	_ = updated
	if _, dragging := session.Dragging(); dragging {
		t.Fatal("release must end the gesture")
	}
}

func TestUpdate_PresetAndAddRemoveKeys(t *testing.T) {
	session := testSession()
	m := sized(newModel(session, nil, nil))

	updated, _ := m.Update(keyMsg("s"))
	m = updated.(model)
	if !strings.Contains(m.status, "side by side") {
		t.Fatalf("status %q", m.status)
	}

	updated, _ = m.Update(keyMsg("a"))
	m = updated.(model)
	if len(session.Monitors()) != 3 {
		t.Fatalf("expected 3 monitors after add, got %d", len(session.Monitors()))
	}
	if m.selected == "" {
		t.Fatal("add must select the new monitor")
	}

	updated, _ = m.Update(keyMsg("x"))
	m = updated.(model)
	if len(session.Monitors()) != 2 {
		t.Fatalf("expected 2 monitors after remove, got %d", len(session.Monitors()))
	}
}

func TestUpdate_RemoveRefusesLastMonitor(t *testing.T) {
	session := arrange.NewSession(arrange.DefaultConfig())
	session.SetMonitors([]arrange.Monitor{{ID: "a", Name: "Only", Width: 1920, Height: 1080}})
	m := sized(newModel(session, nil, nil))
	m.selected = "a"

	updated, _ := m.Update(keyMsg("x"))
	m = updated.(model)
	if len(session.Monitors()) != 1 {
		t.Fatal("last monitor must survive")
	}
	if !strings.Contains(m.status, "cannot remove") {
		t.Fatalf("status %q", m.status)
	}
}

func TestUpdate_SaveCommandRoundTrip(t *testing.T) {
	session := testSession()
	var savedCount int
	save := func(_ context.Context, monitors []arrange.Monitor) error {
		savedCount = len(monitors)
		return nil
	}
	m := sized(newModel(session, save, nil))

	updated, cmd := m.Update(keyMsg("w"))
	m = updated.(model)
	if cmd == nil {
		t.Fatal("expected save command")
	}

	updated, _ = m.Update(cmd())
	m = updated.(model)
	if savedCount != 2 {
		t.Fatalf("save saw %d monitors", savedCount)
	}
	if session.Dirty() {
		t.Fatal("successful save must clear dirty")
	}
	if !strings.Contains(m.status, "saved") {
		t.Fatalf("status %q", m.status)
	}
}

func TestUpdate_SaveFailureKeepsDirty(t *testing.T) {
	session := testSession()
	save := func(context.Context, []arrange.Monitor) error {
		return errors.New("disk full")
	}
	m := sized(newModel(session, save, nil))

	updated, cmd := m.Update(keyMsg("w"))
	m = updated.(model)
	updated, _ = m.Update(cmd())
	m = updated.(model)
	if !session.Dirty() {
		t.Fatal("failed save must keep dirty")
	}
	if !strings.Contains(m.status, "disk full") {
		t.Fatalf("status %q", m.status)
	}
}

func TestUpdate_ApplyOutcomeMessages(t *testing.T) {
	session := testSession()
	apply := func(context.Context, []arrange.Monitor) applier.Outcome {
		return applier.Outcome{
			Kind:    applier.ManualCommandRequired,
			Command: `displayplacer "id:1 res:2560x1440 scaling:off origin:(0,0) degree:0"`,
			Hint:    applier.InstallHint,
		}
	}
	m := sized(newModel(session, nil, apply))

	updated, cmd := m.Update(keyMsg("p"))
	m = updated.(model)
	if cmd == nil {
		t.Fatal("expected apply command")
	}
	updated, _ = m.Update(cmd())
	m = updated.(model)
	if !strings.Contains(m.status, "displayplacer") || !strings.Contains(m.status, applier.InstallHint) {
		t.Fatalf("status %q", m.status)
	}
}

func TestUpdate_TabCyclesSelection(t *testing.T) {
	session := testSession()
	m := sized(newModel(session, nil, nil))

	updated, _ := m.Update(keyMsg("tab"))
	m = updated.(model)
	if m.selected != "a" {
		t.Fatalf("first tab selects a, got %q", m.selected)
	}
	updated, _ = m.Update(keyMsg("tab"))
	m = updated.(model)
	if m.selected != "b" {
		t.Fatalf("second tab selects b, got %q", m.selected)
	}
	updated, _ = m.Update(keyMsg("tab"))
	m = updated.(model)
	if m.selected != "a" {
		t.Fatalf("tab wraps to a, got %q", m.selected)
	}
}

func TestView_RendersMonitorsAndHelp(t *testing.T) {
	session := testSession()
	m := sized(newModel(session, nil, nil))
	m.selected = "b"

	view := m.View()
	if !strings.Contains(view, "Main") || !strings.Contains(view, "Side") {
		t.Fatal("view must label both monitors")
	}
	if !strings.Contains(view, "★") {
		t.Fatal("primary marker missing")
	}
	if !strings.Contains(view, "╔") {
		t.Fatal("selected monitor must use the double border")
	}
	if !strings.Contains(view, "q: quit") {
		t.Fatal("help bar missing")
	}
}

func TestView_EmptyBeforeFirstResize(t *testing.T) {
	m := newModel(testSession(), nil, nil)
	if m.View() != "" {
		t.Fatal("view must be empty before the first WindowSizeMsg")
	}
}
