package arrange

import "github.com/displayworks/displayctl/internal/topology"

// ApplySideBySide lines all monitors up on the y=0 baseline in their
// current order, separated by the preset spacing.
func (s *Session) ApplySideBySide() {
	runningX := 0.0
	for i := range s.monitors {
		s.monitors[i].X = runningX
		s.monitors[i].Y = 0
		runningX += float64(s.monitors[i].Width) + s.cfg.Spacing
	}
	s.markDirty()
	s.reflow()
}

// ApplyStacked stacks the first two monitors vertically; any further
// monitors keep their positions.
func (s *Session) ApplyStacked() {
	runningY := 0.0
	for i := range s.monitors {
		if i >= 2 {
			break
		}
		s.monitors[i].X = 0
		s.monitors[i].Y = runningY
		runningY += float64(s.monitors[i].Height) + s.cfg.Spacing
	}
	s.markDirty()
	s.reflow()
}

// ApplyTriple arranges three monitors side by side, synthesizing default
// 1920x1080 non-primary monitors for any missing slot.
func (s *Session) ApplyTriple() {
	for len(s.monitors) < 3 {
		s.monitors = append(s.monitors, Monitor{
			ID:          s.newLocalID(),
			Name:        "Display",
			Resolution:  "1920x1080",
			Width:       1920,
			Height:      1080,
			ScaleFactor: 1.0,
			Orientation: topology.Landscape,
		})
	}

	runningX := 0.0
	for i := 0; i < 3; i++ {
		s.monitors[i].X = runningX
		s.monitors[i].Y = 0
		runningX += float64(s.monitors[i].Width) + s.cfg.Spacing
	}
	s.markDirty()
	s.reflow()
}
