package arrange

import "math"

// dragState snapshots the transform at pointer-down. Locking the scale and
// offsets for the duration of the gesture keeps the transform from shifting
// under the cursor when the bounding box changes mid-drag.
type dragState struct {
	monitorID string
	anchorX   float64
	anchorY   float64
	scale     float64
	offsetX   float64
	offsetY   float64
}

// Bounds returns the bounding box of the editable set in pixel space.
func (s *Session) Bounds() (minX, minY, width, height float64) {
	minX, minY, maxX, maxY := s.bounds()
	return minX, minY, maxX - minX, maxY - minY
}

func (s *Session) bounds() (minX, minY, maxX, maxY float64) {
	if len(s.monitors) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, m := range s.monitors {
		minX = math.Min(minX, m.X)
		minY = math.Min(minY, m.Y)
		maxX = math.Max(maxX, m.X+float64(m.Width))
		maxY = math.Max(maxY, m.Y+float64(m.Height))
	}
	return minX, minY, maxX, maxY
}

// Scale returns the current pixel-to-canvas scale.
func (s *Session) Scale() float64 { return s.scale }

// Offset returns the current canvas offsets.
func (s *Session) Offset() (x, y float64) { return s.offsetX, s.offsetY }

// ManualZoom reports whether auto-fit is suspended by a manual zoom.
func (s *Session) ManualZoom() bool { return s.manualZoom }

// reflow recomputes the fit scale and centering offsets. Recomputation is
// suspended while a drag is in progress or manual zoom is active; the next
// FitToCanvas or drag end resumes it.
func (s *Session) reflow() {
	if s.drag != nil || s.manualZoom {
		return
	}
	if len(s.monitors) == 0 || s.canvasW <= 0 || s.canvasH <= 0 {
		return
	}

	minX, minY, totalW, totalH := s.Bounds()
	if totalW <= 0 || totalH <= 0 {
		return
	}

	availW := s.canvasW - 2*s.cfg.Margin
	availH := s.canvasH - 2*s.cfg.Margin
	scale := math.Min(availW/totalW, availH/totalH)
	s.scale = clamp(scale, s.cfg.MinScale, s.cfg.MaxScale)

	s.offsetX = math.Max(s.cfg.Margin, (s.canvasW-totalW*s.scale)/2) - minX*s.scale
	s.offsetY = math.Max(s.cfg.Margin, (s.canvasH-totalH*s.scale)/2) - minY*s.scale
}

// ToCanvas maps a pixel-space point into canvas space.
func (s *Session) ToCanvas(px, py float64) (cx, cy float64) {
	return px*s.scale + s.offsetX, py*s.scale + s.offsetY
}

// ToPixel maps a canvas-space point back into pixel space.
func (s *Session) ToPixel(cx, cy float64) (px, py float64) {
	return (cx - s.offsetX) / s.scale, (cy - s.offsetY) / s.scale
}

// MonitorAt returns the topmost monitor under a canvas-space point.
func (s *Session) MonitorAt(cx, cy float64) (Monitor, bool) {
	px, py := s.ToPixel(cx, cy)
	for i := len(s.monitors) - 1; i >= 0; i-- {
		m := s.monitors[i]
		if px >= m.X && px < m.X+float64(m.Width) &&
			py >= m.Y && py < m.Y+float64(m.Height) {
			return m, true
		}
	}
	return Monitor{}, false
}

// BeginDrag starts a drag gesture at a canvas-space pointer position.
// It locks the current transform for the duration of the gesture and
// returns the grabbed monitor's id. A miss leaves the state machine idle.
func (s *Session) BeginDrag(cx, cy float64) (string, bool) {
	m, ok := s.MonitorAt(cx, cy)
	if !ok {
		return "", false
	}

	px := (cx - s.offsetX) / s.scale
	py := (cy - s.offsetY) / s.scale
	s.drag = &dragState{
		monitorID: m.ID,
		anchorX:   px - m.X,
		anchorY:   py - m.Y,
		scale:     s.scale,
		offsetX:   s.offsetX,
		offsetY:   s.offsetY,
	}
	return m.ID, true
}

// DragTo moves the dragged monitor so the grab point follows the pointer.
// Each call recomputes the origin from the absolute pointer position under
// the locked transform, so the operation is idempotent per event.
func (s *Session) DragTo(cx, cy float64) {
	if s.drag == nil {
		return
	}

	px := (cx - s.drag.offsetX) / s.drag.scale
	py := (cy - s.drag.offsetY) / s.drag.scale

	for i := range s.monitors {
		if s.monitors[i].ID == s.drag.monitorID {
			s.monitors[i].X = px - s.drag.anchorX
			s.monitors[i].Y = py - s.drag.anchorY
			s.markDirty()
			return
		}
	}
}

// EndDrag finishes the gesture and resumes transform recomputation.
func (s *Session) EndDrag() {
	if s.drag == nil {
		return
	}
	s.drag = nil
	s.reflow()
}

// Dragging reports whether a drag gesture is in progress, and for which
// monitor.
func (s *Session) Dragging() (string, bool) {
	if s.drag == nil {
		return "", false
	}
	return s.drag.monitorID, true
}

// ZoomIn increases the scale one step and suspends auto-fit.
func (s *Session) ZoomIn() {
	s.scale = clamp(s.scale+s.cfg.ZoomStep, s.cfg.MinScale, s.cfg.MaxScale)
	s.manualZoom = true
}

// ZoomOut decreases the scale one step and suspends auto-fit.
func (s *Session) ZoomOut() {
	s.scale = clamp(s.scale-s.cfg.ZoomStep, s.cfg.MinScale, s.cfg.MaxScale)
	s.manualZoom = true
}

// FitToCanvas clears manual zoom and recomputes the fit transform.
func (s *Session) FitToCanvas() {
	s.manualZoom = false
	s.reflow()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
