package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/randr"
)

// Display describes one active RandR output.
type Display struct {
	ID          uint32
	Name        string
	X           int
	Y           int
	Width       int
	Height      int
	RefreshRate float64
	IsPrimary   bool
	IsBuiltin   bool
}

// GetDisplays retrieves all active displays using XRandR.
// The display ID is the CRTC index, stable while the output stays connected.
func (c *Connection) GetDisplays() ([]Display, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var primaryOutput randr.Output
	if reply, err := randr.GetOutputPrimary(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		primaryOutput = reply.Output
	}

	modes := make(map[randr.Mode]randr.ModeInfo, len(resources.Modes))
	for _, mode := range resources.Modes {
		modes[randr.Mode(mode.Id)] = mode
	}

	var displays []Display

	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		name := ""
		isPrimary := false
		for _, output := range crtcInfo.Outputs {
			if output == primaryOutput {
				isPrimary = true
			}
		}
		if outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(outputInfo.Name)
		}

		displays = append(displays, Display{
			ID:          uint32(i),
			Name:        name,
			X:           int(crtcInfo.X),
			Y:           int(crtcInfo.Y),
			Width:       int(crtcInfo.Width),
			Height:      int(crtcInfo.Height),
			RefreshRate: modeRefreshRate(modes, crtcInfo.Mode),
			IsPrimary:   isPrimary,
			IsBuiltin:   isBuiltinOutput(name),
		})
	}

	return displays, nil
}

// modeRefreshRate computes the vertical refresh rate from RandR mode timings.
func modeRefreshRate(modes map[randr.Mode]randr.ModeInfo, mode randr.Mode) float64 {
	info, ok := modes[mode]
	if !ok {
		return 0
	}
	total := float64(info.Htotal) * float64(info.Vtotal)
	if total == 0 {
		return 0
	}
	return float64(info.DotClock) / total
}

// isBuiltinOutput reports whether an output name looks like a laptop panel.
func isBuiltinOutput(name string) bool {
	upper := strings.ToUpper(name)
	for _, prefix := range []string{"EDP", "LVDS", "DSI"} {
		if strings.HasPrefix(upper, prefix) || strings.HasPrefix(upper, prefix+"-") {
			return true
		}
	}
	return false
}
