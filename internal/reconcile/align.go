package reconcile

import (
	"fmt"

	"github.com/displayworks/displayctl/internal/arrange"
	"github.com/displayworks/displayctl/internal/store"
	"github.com/displayworks/displayctl/internal/topology"
)

// AlignCaptured turns captured monitors into an editable set whose
// identities line up with persisted records, so resaving a profile
// yields updates rather than delete-create churn. Captured monitors
// are matched to records by hardware display id; unmatched monitors
// get local identities and become creates.
func AlignCaptured(monitors []topology.MonitorDescriptor, persisted []*store.MonitorRecord) []arrange.Monitor {
	byDisplay := make(map[uint32]string, len(persisted))
	for _, rec := range persisted {
		byDisplay[rec.DisplayID] = rec.ID
	}

	edited := make([]arrange.Monitor, 0, len(monitors))
	for i, m := range monitors {
		id, ok := byDisplay[m.DisplayID]
		if !ok {
			id = fmt.Sprintf("local-%d", i+1)
		}
		edited = append(edited, arrange.Monitor{
			ID:          id,
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
	return edited
}

// MonitorsFromRecords converts persisted records into the editable
// monitor form used by the arrangement and apply layers.
func MonitorsFromRecords(records []*store.MonitorRecord) []arrange.Monitor {
	monitors := make([]arrange.Monitor, 0, len(records))
	for _, rec := range records {
		monitors = append(monitors, arrange.Monitor{
			ID:          rec.ID,
			DisplayID:   rec.DisplayID,
			Name:        rec.Name,
			Resolution:  rec.Resolution,
			Width:       rec.Width,
			Height:      rec.Height,
			X:           float64(rec.X),
			Y:           float64(rec.Y),
			ScaleFactor: rec.ScaleFactor,
			IsPrimary:   rec.IsPrimary,
			Orientation: rec.Orientation,
		})
	}
	return monitors
}
