package platform

import (
	"context"
	"errors"
)

// ErrUnsupported is returned by enumeration calls that the current platform
// backend cannot serve. Callers are expected to degrade rather than abort.
var ErrUnsupported = errors.New("enumeration not supported on this platform")

// RawDisplay is an OS-reported display before normalization. Pixel and
// logical sizes may differ on high-density displays; LogicalWidth is zero
// when the OS does not report logical bounds.
type RawDisplay struct {
	ID            uint32
	Name          string
	PixelWidth    int
	PixelHeight   int
	LogicalWidth  int
	LogicalHeight int
	X             int
	Y             int
	RefreshRate   float64
	IsMain        bool
	IsBuiltin     bool
}

// RawWindow is an OS-reported window before normalization. Layer 0 windows
// are ordinary application windows; anything else is system chrome.
type RawWindow struct {
	ID           uint32
	PID          int
	Title        string
	Class        string // WM_CLASS application class; empty off X11
	X            int
	Y            int
	Width        int
	Height       int
	Layer        int
	IsMinimized  bool
	IsFullscreen bool
}

// RawProcess is an OS-reported GUI process.
type RawProcess struct {
	PID         int
	Name        string
	BundleID    string
	Path        string
	IsFrontmost bool
	IsHidden    bool
}

// Backend abstracts OS display, window and process enumeration.
// Processes is best-effort: backends that cannot enumerate GUI processes
// return ErrUnsupported and callers derive application records from the
// window list instead.
type Backend interface {
	Displays(ctx context.Context) ([]RawDisplay, error)
	Windows(ctx context.Context) ([]RawWindow, error)
	Processes(ctx context.Context) ([]RawProcess, error)
}

// ProcessInfo resolves the owning application for a window's process id.
// Both fields may be empty when the process is gone or unresolvable.
type ProcessInfo interface {
	AppInfo(pid int) (name, bundleID string)
}
