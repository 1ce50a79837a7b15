// Package reconcile diffs an edited arrangement against a profile's
// persisted monitor records and applies the difference.
package reconcile

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/displayworks/displayctl/internal/arrange"
	"github.com/displayworks/displayctl/internal/store"
)

// OpKind names one reconcile operation.
type OpKind string

const (
	OpCreate OpKind = "create"
	OpUpdate OpKind = "update"
	OpDelete OpKind = "delete"
)

// Plan is the computed difference. The three sets are disjoint by
// record identity: an edited monitor is either a create (no persisted
// counterpart) or at most one update, and a persisted record missing
// from the edited set is a delete.
type Plan struct {
	Creates []*store.MonitorRecord
	Updates []*store.MonitorRecord
	Deletes []string
}

// Empty reports whether the plan has no work.
func (p Plan) Empty() bool {
	return len(p.Creates) == 0 && len(p.Updates) == 0 && len(p.Deletes) == 0
}

// Diff computes the plan that brings a profile's persisted records in
// line with the edited monitor set. Display indexes are assigned from
// left-to-right order of the edited set.
func Diff(profileID string, edited []arrange.Monitor, persisted []*store.MonitorRecord) Plan {
	ordered := append([]arrange.Monitor(nil), edited...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].X != ordered[j].X {
			return ordered[i].X < ordered[j].X
		}
		return ordered[i].Y < ordered[j].Y
	})

	byID := make(map[string]*store.MonitorRecord, len(persisted))
	for _, rec := range persisted {
		byID[rec.ID] = rec
	}

	var plan Plan
	seen := make(map[string]bool, len(ordered))
	for index, m := range ordered {
		target := recordFromMonitor(profileID, m, index)
		existing, ok := byID[m.ID]
		if !ok {
			target.ID = "" // let the store assign one
			plan.Creates = append(plan.Creates, target)
			continue
		}
		seen[m.ID] = true
		if !recordEqual(existing, target) {
			target.CreatedAt = existing.CreatedAt
			plan.Updates = append(plan.Updates, target)
		}
	}

	for _, rec := range persisted {
		if !seen[rec.ID] {
			plan.Deletes = append(plan.Deletes, rec.ID)
		}
	}
	return plan
}

func recordFromMonitor(profileID string, m arrange.Monitor, index int) *store.MonitorRecord {
	return &store.MonitorRecord{
		ID:           m.ID,
		ProfileID:    profileID,
		DisplayID:    m.DisplayID,
		Name:         m.Name,
		Resolution:   m.Resolution,
		Orientation:  m.Orientation,
		IsPrimary:    m.IsPrimary,
		ScaleFactor:  m.ScaleFactor,
		X:            int(math.Round(m.X)),
		Y:            int(math.Round(m.Y)),
		Width:        m.Width,
		Height:       m.Height,
		DisplayIndex: index,
	}
}

func recordEqual(a, b *store.MonitorRecord) bool {
	return a.DisplayID == b.DisplayID &&
		a.Name == b.Name &&
		a.Resolution == b.Resolution &&
		a.Orientation == b.Orientation &&
		a.IsPrimary == b.IsPrimary &&
		a.ScaleFactor == b.ScaleFactor &&
		a.X == b.X && a.Y == b.Y &&
		a.Width == b.Width && a.Height == b.Height &&
		a.DisplayIndex == b.DisplayIndex
}

// Repository is the slice of the store the reconciler writes through.
type Repository interface {
	InsertMonitor(ctx context.Context, m *store.MonitorRecord) error
	UpdateMonitor(ctx context.Context, m *store.MonitorRecord) error
	DeleteMonitor(ctx context.Context, id string) error
}

// OperationError identifies the operation that failed mid-apply.
type OperationError struct {
	Op        OpKind
	MonitorID string
	Err       error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s monitor %s: %v", e.Op, e.MonitorID, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// PartialError reports a failure after some operations already took
// effect. There is no rollback; the caller re-diffs to recover.
type PartialError struct {
	Completed int
	Err       error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("reconcile stopped after %d operations: %v", e.Completed, e.Err)
}

func (e *PartialError) Unwrap() error { return e.Err }

// Apply runs the plan sequentially: deletes, then updates, then
// creates. It stops at the first failure and wraps it in PartialError
// when earlier operations already succeeded.
func Apply(ctx context.Context, repo Repository, plan Plan) error {
	completed := 0
	fail := func(err error) error {
		if completed > 0 {
			return &PartialError{Completed: completed, Err: err}
		}
		return err
	}

	for _, id := range plan.Deletes {
		if err := repo.DeleteMonitor(ctx, id); err != nil {
			return fail(&OperationError{Op: OpDelete, MonitorID: id, Err: err})
		}
		completed++
	}
	for _, rec := range plan.Updates {
		if err := repo.UpdateMonitor(ctx, rec); err != nil {
			return fail(&OperationError{Op: OpUpdate, MonitorID: rec.ID, Err: err})
		}
		completed++
	}
	for _, rec := range plan.Creates {
		if err := repo.InsertMonitor(ctx, rec); err != nil {
			return fail(&OperationError{Op: OpCreate, MonitorID: rec.ID, Err: err})
		}
		completed++
	}
	return nil
}

// Save diffs and applies in one step, returning the executed plan.
func Save(ctx context.Context, repo Repository, profileID string, edited []arrange.Monitor, persisted []*store.MonitorRecord) (Plan, error) {
	plan := Diff(profileID, edited, persisted)
	if plan.Empty() {
		return plan, nil
	}
	return plan, Apply(ctx, repo, plan)
}
