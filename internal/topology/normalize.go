package topology

import (
	"fmt"
	"sort"
	"strings"

	"github.com/displayworks/displayctl/internal/platform"
)

// DefaultMinWindowArea is the smallest bounding area (in px²) a window may
// have and still count as a real user window. Anything smaller is menu bar
// or chrome debris: the classic floor is 50×50.
const DefaultMinWindowArea = 2500

// NormalizeDisplays converts raw OS display records into monitor
// descriptors sorted left-to-right then top-to-bottom by origin.
func NormalizeDisplays(raws []platform.RawDisplay) []MonitorDescriptor {
	monitors := make([]MonitorDescriptor, 0, len(raws))

	for _, raw := range raws {
		scale := 1.0
		if raw.LogicalWidth > 0 {
			scale = float64(raw.PixelWidth) / float64(raw.LogicalWidth)
		}

		orientation := Landscape
		if raw.PixelHeight > raw.PixelWidth {
			orientation = Portrait
		}

		name := raw.Name
		if name == "" {
			name = fmt.Sprintf("Display %d", raw.ID)
		}
		brand, model := ParseDisplayName(raw.Name)

		monitors = append(monitors, MonitorDescriptor{
			DisplayID:   raw.ID,
			Name:        name,
			Brand:       brand,
			Model:       model,
			Resolution:  fmt.Sprintf("%dx%d", raw.PixelWidth, raw.PixelHeight),
			Width:       raw.PixelWidth,
			Height:      raw.PixelHeight,
			X:           raw.X,
			Y:           raw.Y,
			ScaleFactor: scale,
			RefreshRate: raw.RefreshRate,
			IsPrimary:   raw.IsMain,
			IsBuiltin:   raw.IsBuiltin,
			Orientation: orientation,
		})
	}

	sort.Slice(monitors, func(i, j int) bool {
		if monitors[i].X != monitors[j].X {
			return monitors[i].X < monitors[j].X
		}
		return monitors[i].Y < monitors[j].Y
	})

	return monitors
}

// NormalizeWindows filters raw windows down to real user windows and
// assigns each to a monitor by center-point containment. Windows whose
// center lands on no monitor fall back to the primary (or the first
// monitor when no primary exists). App name and bundle id come from the
// resolver, with the window's WM_CLASS standing in for the name when
// the resolver cannot produce one.
func NormalizeWindows(raws []platform.RawWindow, monitors []MonitorDescriptor, resolver platform.ProcessInfo, minArea int) []WindowDescriptor {
	if minArea <= 0 {
		minArea = DefaultMinWindowArea
	}

	windows := make([]WindowDescriptor, 0, len(raws))
	for _, raw := range raws {
		if raw.Layer != 0 {
			continue
		}
		if raw.Width*raw.Height < minArea {
			continue
		}

		appName, bundleID := "", ""
		if resolver != nil {
			appName, bundleID = resolver.AppInfo(raw.PID)
		}
		if appName == "" {
			appName = raw.Class
		}

		windows = append(windows, WindowDescriptor{
			WindowID:     raw.ID,
			PID:          raw.PID,
			Title:        raw.Title,
			AppName:      appName,
			BundleID:     bundleID,
			X:            raw.X,
			Y:            raw.Y,
			Width:        raw.Width,
			Height:       raw.Height,
			DisplayID:    assignDisplay(raw, monitors),
			IsMinimized:  raw.IsMinimized,
			IsFullscreen: raw.IsFullscreen,
			Layer:        raw.Layer,
		})
	}

	return windows
}

func assignDisplay(raw platform.RawWindow, monitors []MonitorDescriptor) uint32 {
	centerX := raw.X + raw.Width/2
	centerY := raw.Y + raw.Height/2

	for _, m := range monitors {
		if centerX >= m.X && centerX < m.X+m.Width &&
			centerY >= m.Y && centerY < m.Y+m.Height {
			return m.DisplayID
		}
	}

	for _, m := range monitors {
		if m.IsPrimary {
			return m.DisplayID
		}
	}
	if len(monitors) > 0 {
		return monitors[0].DisplayID
	}
	return 0
}

// BuildApplications converts raw process records into running-application
// descriptors, correlating window counts by pid. At most one record is
// active; if the OS flagged several frontmost, the first wins.
func BuildApplications(procs []platform.RawProcess, windows []WindowDescriptor) []RunningApplication {
	counts := windowCounts(windows)

	apps := make([]RunningApplication, 0, len(procs))
	sawActive := false
	for _, p := range procs {
		active := p.IsFrontmost && !sawActive
		if active {
			sawActive = true
		}
		apps = append(apps, RunningApplication{
			PID:         p.PID,
			Name:        p.Name,
			BundleID:    p.BundleID,
			Path:        p.Path,
			IsActive:    active,
			IsHidden:    p.IsHidden,
			WindowCount: counts[p.PID],
		})
	}

	sort.Slice(apps, func(i, j int) bool { return apps[i].PID < apps[j].PID })
	return apps
}

// DeriveApplications synthesizes application records from the retained
// window list, for when process enumeration is unavailable. Activity and
// visibility are unknown on this path.
func DeriveApplications(windows []WindowDescriptor) []RunningApplication {
	counts := windowCounts(windows)

	byPID := make(map[int]RunningApplication)
	for _, w := range windows {
		if _, ok := byPID[w.PID]; ok {
			continue
		}
		byPID[w.PID] = RunningApplication{
			PID:         w.PID,
			Name:        w.AppName,
			BundleID:    w.BundleID,
			WindowCount: counts[w.PID],
		}
	}

	apps := make([]RunningApplication, 0, len(byPID))
	for _, app := range byPID {
		apps = append(apps, app)
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].PID < apps[j].PID })
	return apps
}

func windowCounts(windows []WindowDescriptor) map[int]int {
	counts := make(map[int]int)
	for _, w := range windows {
		counts[w.PID]++
	}
	return counts
}

// knownBrands maps an upper-cased leading token of a display name to its
// canonical brand spelling.
var knownBrands = map[string]string{
	"DELL":      "Dell",
	"LG":        "LG",
	"SAMSUNG":   "Samsung",
	"ASUS":      "ASUS",
	"ACER":      "Acer",
	"HP":        "HP",
	"LENOVO":    "Lenovo",
	"VIEWSONIC": "ViewSonic",
	"BENQ":      "BenQ",
	"AOC":       "AOC",
}

// ParseDisplayName splits an OS-reported display name like "DELL U2721DE"
// into brand and model. Names that do not look like "<brand> <model>" are
// returned as a bare model with no brand.
func ParseDisplayName(name string) (brand, model string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}

	if name == "Color LCD" {
		return "Apple", "Built-in Display"
	}

	parts := strings.Fields(name)
	if len(parts) < 2 {
		return "", name
	}

	brand = parts[0]
	if canonical, ok := knownBrands[strings.ToUpper(parts[0])]; ok {
		brand = canonical
	}
	return brand, strings.Join(parts[1:], " ")
}
