package x11

import (
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// Window describes one top-level client window in root coordinates.
type Window struct {
	ID           uint32
	PID          int
	Title        string
	Class        string
	X            int
	Y            int
	Width        int
	Height       int
	Layer        int
	IsMinimized  bool
	IsFullscreen bool
}

// GetWindows lists all managed client windows. Docks, desktops and other
// non-normal windows are reported with a non-zero layer so callers can
// filter them the same way on every platform.
func (c *Connection) GetWindows() ([]Window, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(clients))
	for _, windowID := range clients {
		geom, ok := c.windowGeometry(windowID)
		if !ok {
			continue
		}

		pid := 0
		if p, err := ewmh.WmPidGet(c.XUtil, windowID); err == nil {
			pid = int(p)
		}

		minimized, fullscreen := c.windowState(windowID)

		windows = append(windows, Window{
			ID:           uint32(windowID),
			PID:          pid,
			Title:        c.windowTitle(windowID),
			Class:        c.windowClass(windowID),
			X:            geom.x,
			Y:            geom.y,
			Width:        geom.width,
			Height:       geom.height,
			Layer:        c.windowLayer(windowID),
			IsMinimized:  minimized,
			IsFullscreen: fullscreen,
		})
	}

	return windows, nil
}

// ActiveWindowPID returns the process id owning the focused window, or 0.
func (c *Connection) ActiveWindowPID() int {
	active, err := ewmh.ActiveWindowGet(c.XUtil)
	if err != nil || active == 0 {
		return 0
	}
	pid, err := ewmh.WmPidGet(c.XUtil, active)
	if err != nil {
		return 0
	}
	return int(pid)
}

type geometry struct {
	x, y, width, height int
}

func (c *Connection) windowGeometry(windowID xproto.Window) (geometry, bool) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return geometry{}, false
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return geometry{}, false
	}

	return geometry{
		x:      int(translate.DstX),
		y:      int(translate.DstY),
		width:  int(geom.Width),
		height: int(geom.Height),
	}, true
}

// windowLayer maps _NET_WM_WINDOW_TYPE to a CoreGraphics-style layer:
// 0 for normal application windows, non-zero for chrome.
func (c *Connection) windowLayer(windowID xproto.Window) int {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil || len(types) == 0 {
		// Untyped windows are assumed normal.
		return 0
	}

	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL":
			return 0
		case "_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION",
			"_NET_WM_WINDOW_TYPE_TOOLTIP",
			"_NET_WM_WINDOW_TYPE_MENU":
			return 1
		}
	}
	return 0
}

func (c *Connection) windowState(windowID xproto.Window) (minimized, fullscreen bool) {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return false, false
	}
	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_HIDDEN":
			minimized = true
		case "_NET_WM_STATE_FULLSCREEN":
			fullscreen = true
		}
	}
	return minimized, fullscreen
}

func (c *Connection) windowTitle(windowID xproto.Window) string {
	title, err := ewmh.WmNameGet(c.XUtil, windowID)
	if err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}

	title, err = icccm.WmNameGet(c.XUtil, windowID)
	if err == nil {
		return strings.TrimSpace(title)
	}

	return ""
}

func (c *Connection) windowClass(windowID xproto.Window) string {
	wmClass, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(wmClass.Class)
}
