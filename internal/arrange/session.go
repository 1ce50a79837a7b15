package arrange

import (
	"fmt"

	"github.com/displayworks/displayctl/internal/topology"
)

// Monitor is one entry in the editable monitor set. The origin is kept as
// floats so in-progress drags stay smooth; it is rounded to whole pixels
// when the set is exported for apply or save.
type Monitor struct {
	// ID is the session-local identity: the persisted record id for
	// monitors loaded from storage, or a fresh local id for new ones.
	ID          string
	DisplayID   uint32
	Name        string
	Resolution  string
	Width       int
	Height      int
	X           float64
	Y           float64
	ScaleFactor float64
	IsPrimary   bool
	Orientation topology.Orientation
}

// Config carries the canvas tuning constants.
type Config struct {
	MinScale float64 // lower clamp for the fit scale
	MaxScale float64 // upper clamp for the fit scale
	Margin   float64 // canvas margin in canvas units
	Spacing  float64 // pixel-space gap used by presets and AddMonitor
	ZoomStep float64 // manual zoom increment
}

// DefaultConfig returns the canvas constants used when none are configured.
func DefaultConfig() Config {
	return Config{
		MinScale: 0.01,
		MaxScale: 0.25,
		Margin:   2,
		Spacing:  40,
		ZoomStep: 0.005,
	}
}

// Session is the live arrangement state: the editable monitor set plus the
// pixel-to-canvas transform and drag state derived from it. It has a single
// logical owner and is not safe for concurrent use.
type Session struct {
	cfg      Config
	monitors []Monitor

	canvasW float64
	canvasH float64

	scale      float64
	offsetX    float64
	offsetY    float64
	manualZoom bool

	drag *dragState

	dirty       bool
	nextLocalID int
}

// NewSession creates an empty arrangement session.
func NewSession(cfg Config) *Session {
	if cfg.MaxScale <= 0 {
		cfg = DefaultConfig()
	}
	return &Session{cfg: cfg, scale: cfg.MinScale}
}

// FromCapture seeds a session from freshly captured monitor descriptors.
// Captured monitors get local identities; saving them produces creates.
func FromCapture(cfg Config, monitors []topology.MonitorDescriptor) *Session {
	s := NewSession(cfg)
	set := make([]Monitor, 0, len(monitors))
	for _, m := range monitors {
		set = append(set, Monitor{
			ID:          s.newLocalID(),
			DisplayID:   m.DisplayID,
			Name:        m.Name,
			Resolution:  m.Resolution,
			Width:       m.Width,
			Height:      m.Height,
			X:           float64(m.X),
			Y:           float64(m.Y),
			ScaleFactor: m.ScaleFactor,
			IsPrimary:   m.IsPrimary,
			Orientation: m.Orientation,
		})
	}
	s.SetMonitors(set)
	s.dirty = false
	return s
}

// SetMonitors replaces the editable set and reflows the transform.
func (s *Session) SetMonitors(monitors []Monitor) {
	s.monitors = append([]Monitor(nil), monitors...)
	s.markDirty()
	s.reflow()
}

// Monitors returns a copy of the editable set in display order.
func (s *Session) Monitors() []Monitor {
	return append([]Monitor(nil), s.monitors...)
}

// MonitorByID returns the monitor with the given session identity.
func (s *Session) MonitorByID(id string) (Monitor, bool) {
	for _, m := range s.monitors {
		if m.ID == id {
			return m, true
		}
	}
	return Monitor{}, false
}

// SetCanvasSize updates the available canvas area and reflows.
func (s *Session) SetCanvasSize(width, height float64) {
	s.canvasW = width
	s.canvasH = height
	s.reflow()
}

// AddMonitor appends a default monitor just right of the current rightmost
// edge, separated by the preset spacing.
func (s *Session) AddMonitor() Monitor {
	x := 0.0
	if len(s.monitors) > 0 {
		_, _, maxX, _ := s.bounds()
		x = maxX + s.cfg.Spacing
	}

	m := Monitor{
		ID:          s.newLocalID(),
		Name:        fmt.Sprintf("Display %d", len(s.monitors)+1),
		Resolution:  "1920x1080",
		Width:       1920,
		Height:      1080,
		X:           x,
		Y:           0,
		ScaleFactor: 1.0,
		Orientation: topology.Landscape,
	}
	s.monitors = append(s.monitors, m)
	s.markDirty()
	s.reflow()
	return m
}

// RemoveMonitor deletes a monitor by identity.
func (s *Session) RemoveMonitor(id string) bool {
	for i, m := range s.monitors {
		if m.ID == id {
			s.monitors = append(s.monitors[:i], s.monitors[i+1:]...)
			s.markDirty()
			s.reflow()
			return true
		}
	}
	return false
}

// Dirty reports whether the set has unsaved changes.
func (s *Session) Dirty() bool { return s.dirty }

// ClearDirty resets the unsaved-changes flag, e.g. after a successful save.
func (s *Session) ClearDirty() { s.dirty = false }

func (s *Session) markDirty() { s.dirty = true }

func (s *Session) newLocalID() string {
	s.nextLocalID++
	return fmt.Sprintf("local-%d", s.nextLocalID)
}
