//go:build linux

package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/displayworks/displayctl/internal/x11"
)

// LinuxBackend enumerates displays, windows and processes through X11.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)
var _ ProcessInfo = (*LinuxBackend)(nil)

// NewBackend opens a fresh X11 connection and wraps it behind Backend.
func NewBackend() (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Close disconnects from the X11 server.
func (b *LinuxBackend) Close() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// Displays returns all active RandR outputs as raw display records.
// X11 reports a single coordinate space with no pixel/logical split, so
// logical bounds equal pixel bounds and the derived scale factor is 1.0.
func (b *LinuxBackend) Displays(_ context.Context) ([]RawDisplay, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	displays, err := conn.GetDisplays()
	if err != nil {
		return nil, err
	}

	raws := make([]RawDisplay, 0, len(displays))
	for _, d := range displays {
		raws = append(raws, RawDisplay{
			ID:            d.ID,
			Name:          d.Name,
			PixelWidth:    d.Width,
			PixelHeight:   d.Height,
			LogicalWidth:  d.Width,
			LogicalHeight: d.Height,
			X:             d.X,
			Y:             d.Y,
			RefreshRate:   d.RefreshRate,
			IsMain:        d.IsPrimary,
			IsBuiltin:     d.IsBuiltin,
		})
	}
	return raws, nil
}

// Windows returns all managed client windows as raw window records.
func (b *LinuxBackend) Windows(_ context.Context) ([]RawWindow, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	windows, err := conn.GetWindows()
	if err != nil {
		return nil, err
	}

	raws := make([]RawWindow, 0, len(windows))
	for _, w := range windows {
		raws = append(raws, RawWindow{
			ID:           w.ID,
			PID:          w.PID,
			Title:        w.Title,
			Class:        w.Class,
			X:            w.X,
			Y:            w.Y,
			Width:        w.Width,
			Height:       w.Height,
			Layer:        w.Layer,
			IsMinimized:  w.IsMinimized,
			IsFullscreen: w.IsFullscreen,
		})
	}
	return raws, nil
}

// Processes builds process records for every pid owning a client window,
// reading names and executable paths from /proc. The process owning the
// focused window is flagged frontmost.
func (b *LinuxBackend) Processes(ctx context.Context) ([]RawProcess, error) {
	windows, err := b.Windows(ctx)
	if err != nil {
		return nil, err
	}

	frontPID := 0
	if conn, err := b.connection(); err == nil {
		frontPID = conn.ActiveWindowPID()
	}

	seen := make(map[int]bool)
	var procs []RawProcess
	for _, w := range windows {
		if w.PID == 0 || seen[w.PID] {
			continue
		}
		seen[w.PID] = true

		name, path := procIdentity(w.PID)
		if name == "" {
			continue
		}
		procs = append(procs, RawProcess{
			PID:         w.PID,
			Name:        name,
			Path:        path,
			IsFrontmost: w.PID == frontPID,
		})
	}

	sort.Slice(procs, func(i, j int) bool { return procs[i].PID < procs[j].PID })
	return procs, nil
}

// AppInfo resolves a window's owning application by pid. X11 has no bundle
// identifiers; the executable name stands in for the application name.
func (b *LinuxBackend) AppInfo(pid int) (name, bundleID string) {
	name, _ = procIdentity(pid)
	return name, ""
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func procIdentity(pid int) (name, path string) {
	comm, err := os.ReadFile(fmt.Sprintf("/proc/%d/comm", pid))
	if err == nil {
		name = strings.TrimSpace(string(comm))
	}
	if exe, err := os.Readlink(fmt.Sprintf("/proc/%d/exe", pid)); err == nil {
		path = exe
		if name == "" {
			name = filepath.Base(exe)
		}
	}
	return name, path
}
