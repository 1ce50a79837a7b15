package arrange

import (
	"math"
	"testing"
)

func testConfig() Config {
	return Config{
		MinScale: 0.001,
		MaxScale: 1.0,
		Margin:   10,
		Spacing:  40,
		ZoomStep: 0.01,
	}
}

func dualSession() *Session {
	s := NewSession(testConfig())
	s.SetMonitors([]Monitor{
		{ID: "a", Name: "Main", Width: 2560, Height: 1440, X: 0, Y: 0, IsPrimary: true},
		{ID: "b", Name: "Side", Width: 1440, Height: 900, X: 2560, Y: 0},
	})
	s.SetCanvasSize(800, 600)
	return s
}

func TestFitScale_BoundingBoxFitsCanvas(t *testing.T) {
	s := dualSession()

	_, _, totalW, totalH := s.Bounds()
	availW := 800 - 2*s.cfg.Margin
	availH := 600 - 2*s.cfg.Margin

	if s.Scale()*totalW > availW+1e-9 {
		t.Fatalf("scaled width %v exceeds available %v", s.Scale()*totalW, availW)
	}
	if s.Scale()*totalH > availH+1e-9 {
		t.Fatalf("scaled height %v exceeds available %v", s.Scale()*totalH, availH)
	}
}

func TestFitScale_ClampedToBand(t *testing.T) {
	cfg := testConfig()
	cfg.MaxScale = 0.05
	s := NewSession(cfg)
	s.SetMonitors([]Monitor{{ID: "a", Width: 100, Height: 100}})
	s.SetCanvasSize(800, 600)

	if s.Scale() != 0.05 {
		t.Fatalf("expected scale clamped to 0.05, got %v", s.Scale())
	}
}

func TestTransform_RoundTrip(t *testing.T) {
	s := dualSession()

	for _, pt := range [][2]float64{{0, 0}, {2560, 1440}, {-500, 300}, {4000, 900}} {
		cx, cy := s.ToCanvas(pt[0], pt[1])
		px, py := s.ToPixel(cx, cy)
		if math.Abs(px-pt[0]) > 1e-6 || math.Abs(py-pt[1]) > 1e-6 {
			t.Fatalf("round trip for %v gave (%v, %v)", pt, px, py)
		}
	}
}

func TestOffsets_CenterBoundingBox(t *testing.T) {
	s := dualSession()

	// totalW=4000 at scale 0.195 fills the available width exactly, so the
	// horizontal offset is the margin.
	if math.Abs(s.offsetX-10) > 1e-9 {
		t.Fatalf("expected offsetX 10, got %v", s.offsetX)
	}

	// Vertically the box is smaller than the canvas and must be centered.
	_, minY, _, totalH := s.Bounds()
	wantY := (600-totalH*s.Scale())/2 - minY*s.Scale()
	if math.Abs(s.offsetY-wantY) > 1e-9 {
		t.Fatalf("expected offsetY %v, got %v", wantY, s.offsetY)
	}
}

func TestMonitorAt_HitTest(t *testing.T) {
	s := dualSession()

	// Center of monitor "a" in canvas coordinates.
	cx, cy := s.ToCanvas(1280, 720)
	m, ok := s.MonitorAt(cx, cy)
	if !ok || m.ID != "a" {
		t.Fatalf("expected hit on a, got %v %v", m.ID, ok)
	}

	// A point left of the bounding box hits nothing.
	if _, ok := s.MonitorAt(0, 0); ok {
		t.Fatalf("expected miss at canvas origin")
	}
}

func TestManualZoom_SuspendsAutoFit(t *testing.T) {
	s := dualSession()
	fitScale := s.Scale()

	s.ZoomIn()
	zoomed := s.Scale()
	if zoomed <= fitScale {
		t.Fatalf("expected zoom to increase scale, got %v -> %v", fitScale, zoomed)
	}

	// State changes that would normally reflow must not touch the scale.
	s.SetCanvasSize(1200, 900)
	if s.Scale() != zoomed {
		t.Fatalf("manual zoom not honored: scale changed to %v", s.Scale())
	}

	s.FitToCanvas()
	if s.ManualZoom() {
		t.Fatalf("FitToCanvas must clear manual zoom")
	}
	if s.Scale() == zoomed {
		t.Fatalf("expected fit to recompute scale")
	}
}

func TestZoom_ClampsToBand(t *testing.T) {
	cfg := testConfig()
	cfg.MinScale = 0.1
	cfg.MaxScale = 0.12
	s := NewSession(cfg)
	s.SetMonitors([]Monitor{{ID: "a", Width: 1920, Height: 1080}})
	s.SetCanvasSize(400, 300)

	for i := 0; i < 10; i++ {
		s.ZoomIn()
	}
	if s.Scale() != 0.12 {
		t.Fatalf("expected clamp at 0.12, got %v", s.Scale())
	}
	for i := 0; i < 10; i++ {
		s.ZoomOut()
	}
	if s.Scale() != 0.1 {
		t.Fatalf("expected clamp at 0.1, got %v", s.Scale())
	}
}
