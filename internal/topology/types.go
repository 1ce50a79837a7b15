package topology

import (
	"fmt"
	"time"
)

// Orientation of a display, derived from its pixel aspect.
type Orientation string

const (
	Landscape Orientation = "Landscape"
	Portrait  Orientation = "Portrait"
)

// MonitorDescriptor is a normalized physical display. Descriptors are
// superseded wholesale on each capture, never mutated in place.
type MonitorDescriptor struct {
	DisplayID   uint32
	Name        string
	Brand       string
	Model       string
	Resolution  string
	Width       int
	Height      int
	X           int
	Y           int
	ScaleFactor float64
	RefreshRate float64
	IsPrimary   bool
	IsBuiltin   bool
	Orientation Orientation
}

// WindowDescriptor is a normalized user window. DisplayID is assigned by
// geometric containment of the window center, not reported by the OS.
type WindowDescriptor struct {
	WindowID     uint32
	PID          int
	Title        string
	AppName      string
	BundleID     string
	X            int
	Y            int
	Width        int
	Height       int
	DisplayID    uint32
	IsMinimized  bool
	IsFullscreen bool
	Layer        int
}

// RunningApplication is one GUI process, with WindowCount correlated from
// the retained window list.
type RunningApplication struct {
	PID         int
	Name        string
	BundleID    string
	Path        string
	IsActive    bool
	IsHidden    bool
	WindowCount int
}

// CapturedLayout is a timestamped snapshot of the three descriptor kinds.
// Immutable once produced.
type CapturedLayout struct {
	CapturedAt   time.Time
	Monitors     []MonitorDescriptor
	Windows      []WindowDescriptor
	Applications []RunningApplication
}

// DetectionError reports a failed enumeration sub-call. Detection failures
// degrade the affected kind to an empty list; they are reported, not fatal.
type DetectionError struct {
	Kind string // "monitors", "windows" or "applications"
	Err  error
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("detecting %s: %v", e.Kind, e.Err)
}

func (e *DetectionError) Unwrap() error { return e.Err }
