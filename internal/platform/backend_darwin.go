//go:build darwin

package platform

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// DarwinBackend enumerates displays, windows and processes by shelling out
// to the system tools (displayplacer, osascript, lsappinfo). There is no
// supported non-cgo path to CoreGraphics, and the System Events scripting
// surface is what the bundled automation tools use anyway.
type DarwinBackend struct{}

var _ Backend = (*DarwinBackend)(nil)
var _ ProcessInfo = (*DarwinBackend)(nil)

// NewBackend creates a Darwin platform backend.
func NewBackend() (*DarwinBackend, error) {
	return &DarwinBackend{}, nil
}

// Close is a no-op; the darwin backend holds no persistent resources.
func (b *DarwinBackend) Close() {}

var (
	contextualIDRe = regexp.MustCompile(`Contextual screen id:\s*(\d+)`)
	resolutionRe   = regexp.MustCompile(`Resolution:\s*(\d+)x(\d+)`)
	hertzRe        = regexp.MustCompile(`Hertz:\s*([\d.]+)`)
	originRe       = regexp.MustCompile(`Origin:\s*\((-?\d+),(-?\d+)\)`)
	typeRe         = regexp.MustCompile(`Type:\s*(.+)`)
	scalingRe      = regexp.MustCompile(`Scaling:\s*(on|off)`)
)

// Displays parses `displayplacer list`, which reports every connected
// screen with its contextual id, resolution, origin and rotation.
func (b *DarwinBackend) Displays(ctx context.Context) ([]RawDisplay, error) {
	out, err := exec.CommandContext(ctx, "displayplacer", "list").Output()
	if err != nil {
		return nil, fmt.Errorf("displayplacer list: %w", err)
	}

	var displays []RawDisplay
	// Screens are separated by blank lines in the list output.
	for _, block := range strings.Split(string(out), "\n\n") {
		if !strings.Contains(block, "Contextual screen id:") {
			continue
		}
		d := RawDisplay{}
		if m := contextualIDRe.FindStringSubmatch(block); m != nil {
			id, _ := strconv.Atoi(m[1])
			d.ID = uint32(id)
		}
		if m := resolutionRe.FindStringSubmatch(block); m != nil {
			d.LogicalWidth, _ = strconv.Atoi(m[1])
			d.LogicalHeight, _ = strconv.Atoi(m[2])
		}
		// With scaling on the reported resolution is in points backed by a
		// 2x framebuffer; with scaling off points and pixels coincide.
		d.PixelWidth, d.PixelHeight = d.LogicalWidth, d.LogicalHeight
		if m := scalingRe.FindStringSubmatch(block); m != nil && m[1] == "on" {
			d.PixelWidth *= 2
			d.PixelHeight *= 2
		}
		if m := hertzRe.FindStringSubmatch(block); m != nil {
			d.RefreshRate, _ = strconv.ParseFloat(m[1], 64)
		}
		if m := originRe.FindStringSubmatch(block); m != nil {
			d.X, _ = strconv.Atoi(m[1])
			d.Y, _ = strconv.Atoi(m[2])
		}
		if m := typeRe.FindStringSubmatch(block); m != nil {
			d.Name = strings.TrimSpace(m[1])
			d.IsBuiltin = strings.Contains(strings.ToLower(d.Name), "built in")
		}
		d.IsMain = strings.Contains(block, "main display")
		displays = append(displays, d)
	}

	if len(displays) == 0 {
		return nil, fmt.Errorf("displayplacer list returned no screens")
	}
	return displays, nil
}

const windowScript = `
tell application "System Events"
	set out to ""
	set winIndex to 0
	repeat with proc in (every process whose background only is false)
		repeat with w in (every window of proc)
			try
				set winIndex to winIndex + 1
				set {px, py} to position of w
				set {sw, sh} to size of w
				set isMin to "false"
				try
					if value of attribute "AXMinimized" of w is true then set isMin to "true"
				end try
				set out to out & winIndex & "|||" & (unix id of proc) & "|||" & (name of w) & "|||" & px & "|||" & py & "|||" & sw & "|||" & sh & "|||" & isMin & "
"
			end try
		end repeat
	end repeat
end tell
return out
`

// Windows lists every window of every foreground process via System Events.
// System Events only exposes ordinary application windows, so everything it
// returns is layer 0.
func (b *DarwinBackend) Windows(ctx context.Context) ([]RawWindow, error) {
	out, err := exec.CommandContext(ctx, "osascript", "-e", windowScript).Output()
	if err != nil {
		return nil, fmt.Errorf("osascript window enumeration: %w", err)
	}

	var windows []RawWindow
	for _, line := range strings.Split(string(out), "\n") {
		parts := strings.Split(line, "|||")
		if len(parts) < 8 {
			continue
		}
		id, _ := strconv.Atoi(strings.TrimSpace(parts[0]))
		pid, _ := strconv.Atoi(strings.TrimSpace(parts[1]))
		if id == 0 || pid == 0 {
			continue
		}
		x, _ := strconv.Atoi(strings.TrimSpace(parts[3]))
		y, _ := strconv.Atoi(strings.TrimSpace(parts[4]))
		w, _ := strconv.Atoi(strings.TrimSpace(parts[5]))
		h, _ := strconv.Atoi(strings.TrimSpace(parts[6]))

		windows = append(windows, RawWindow{
			ID:          uint32(id),
			PID:         pid,
			Title:       parts[2],
			X:           x,
			Y:           y,
			Width:       w,
			Height:      h,
			IsMinimized: strings.TrimSpace(parts[7]) == "true",
		})
	}
	return windows, nil
}

const processScript = `
tell application "System Events"
	set appList to ""
	repeat with proc in (every process whose background only is false)
		try
			set appList to appList & (unix id of proc) & "|||" & (name of proc) & "|||" & (bundle identifier of proc) & "|||" & (frontmost of proc) & "|||" & (visible of proc) & "
"
		end try
	end repeat
end tell
return appList
`

// Processes lists foreground GUI processes via System Events.
func (b *DarwinBackend) Processes(ctx context.Context) ([]RawProcess, error) {
	out, err := exec.CommandContext(ctx, "osascript", "-e", processScript).Output()
	if err != nil {
		return nil, fmt.Errorf("osascript process enumeration: %w", err)
	}

	var procs []RawProcess
	for _, line := range strings.Split(string(out), "\n") {
		parts := strings.Split(line, "|||")
		if len(parts) < 5 {
			continue
		}
		pid, _ := strconv.Atoi(strings.TrimSpace(parts[0]))
		if pid == 0 {
			continue
		}
		procs = append(procs, RawProcess{
			PID:         pid,
			Name:        strings.TrimSpace(parts[1]),
			BundleID:    strings.TrimSpace(parts[2]),
			IsFrontmost: strings.TrimSpace(parts[3]) == "true",
			IsHidden:    strings.TrimSpace(parts[4]) != "true",
		})
	}

	if len(procs) == 0 {
		return nil, fmt.Errorf("process enumeration returned nothing")
	}
	return procs, nil
}

// AppInfo resolves a bundle identifier for a pid via lsappinfo.
func (b *DarwinBackend) AppInfo(pid int) (name, bundleID string) {
	out, err := exec.Command("lsappinfo", "info", "-only", "bundleid", fmt.Sprintf("-pid=%d", pid)).Output()
	if err != nil {
		return "", ""
	}
	// Output format: "bundleid"="com.example.App"
	s := string(out)
	if start := strings.Index(s, "=\""); start >= 0 {
		rest := s[start+2:]
		if end := strings.Index(rest, "\""); end >= 0 {
			bundleID = rest[:end]
		}
	}
	return "", bundleID
}
