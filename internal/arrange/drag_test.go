package arrange

import (
	"math"
	"testing"
)

func TestDrag_MovesMonitorUnderPointer(t *testing.T) {
	s := dualSession()

	// Grab monitor "b" at its center.
	start, ok := s.MonitorByID("b")
	if !ok {
		t.Fatalf("missing monitor b")
	}
	cx, cy := s.ToCanvas(start.X+float64(start.Width)/2, start.Y+float64(start.Height)/2)

	id, ok := s.BeginDrag(cx, cy)
	if !ok || id != "b" {
		t.Fatalf("expected grab on b, got %q %v", id, ok)
	}

	s.DragTo(cx+10, cy+5)
	moved, _ := s.MonitorByID("b")
	wantX := start.X + 10/s.Scale()
	wantY := start.Y + 5/s.Scale()
	if math.Abs(moved.X-wantX) > 1e-6 || math.Abs(moved.Y-wantY) > 1e-6 {
		t.Fatalf("expected origin (%v, %v), got (%v, %v)", wantX, wantY, moved.X, moved.Y)
	}
	s.EndDrag()
}

func TestDrag_ReturnToStartRestoresOriginExactly(t *testing.T) {
	s := dualSession()
	start, _ := s.MonitorByID("a")
	cx, cy := s.ToCanvas(start.X+100, start.Y+100)

	if _, ok := s.BeginDrag(cx, cy); !ok {
		t.Fatalf("expected grab")
	}
	s.DragTo(cx+250, cy-130)
	s.DragTo(cx+40, cy+90)
	s.DragTo(cx, cy)

	m, _ := s.MonitorByID("a")
	if m.X != start.X || m.Y != start.Y {
		t.Fatalf("expected origin restored to (%v, %v), got (%v, %v)", start.X, start.Y, m.X, m.Y)
	}
	s.EndDrag()
}

func TestDrag_TransformLockedDuringGesture(t *testing.T) {
	s := dualSession()
	scale := s.Scale()
	ox, oy := s.Offset()

	m, _ := s.MonitorByID("b")
	cx, cy := s.ToCanvas(m.X+10, m.Y+10)
	if _, ok := s.BeginDrag(cx, cy); !ok {
		t.Fatalf("expected grab")
	}

	// Dragging far outside the original bounding box would normally trigger a
	// refit; mid-gesture the transform must not move.
	s.DragTo(cx+500, cy+400)
	if s.Scale() != scale {
		t.Fatalf("scale changed mid-drag: %v -> %v", scale, s.Scale())
	}
	if gotX, gotY := s.Offset(); gotX != ox || gotY != oy {
		t.Fatalf("offsets changed mid-drag")
	}

	s.EndDrag()
	if s.Scale() == scale {
		t.Fatalf("expected refit after drag end")
	}
}

func TestDrag_MissLeavesStateMachineIdle(t *testing.T) {
	s := dualSession()

	if _, ok := s.BeginDrag(0, 0); ok {
		t.Fatalf("expected miss outside bounding box")
	}
	if _, dragging := s.Dragging(); dragging {
		t.Fatalf("miss must not start a gesture")
	}

	// Motion and release without a gesture are no-ops.
	before := s.Monitors()
	s.DragTo(100, 100)
	s.EndDrag()
	after := s.Monitors()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("stray motion moved monitor %s", before[i].ID)
		}
	}
}

func TestDrag_MarksDirty(t *testing.T) {
	s := dualSession()
	s.ClearDirty()

	m, _ := s.MonitorByID("a")
	cx, cy := s.ToCanvas(m.X+5, m.Y+5)
	s.BeginDrag(cx, cy)
	if s.Dirty() {
		t.Fatalf("grab alone must not dirty the set")
	}
	s.DragTo(cx+1, cy)
	s.EndDrag()
	if !s.Dirty() {
		t.Fatalf("expected dirty after movement")
	}
}
