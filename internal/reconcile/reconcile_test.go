package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/displayworks/displayctl/internal/arrange"
	"github.com/displayworks/displayctl/internal/store"
	"github.com/displayworks/displayctl/internal/topology"
)

func persistedPair() []*store.MonitorRecord {
	return []*store.MonitorRecord{
		{
			ID: "rec-left", ProfileID: "prof", DisplayID: 1, Name: "Left",
			Resolution: "2560x1440", Orientation: topology.Landscape, IsPrimary: true,
			ScaleFactor: 2.0, X: 0, Y: 0, Width: 2560, Height: 1440, DisplayIndex: 0,
		},
		{
			ID: "rec-right", ProfileID: "prof", DisplayID: 2, Name: "Right",
			Resolution: "1440x900", Orientation: topology.Landscape,
			ScaleFactor: 1.0, X: 2560, Y: 0, Width: 1440, Height: 900, DisplayIndex: 1,
		},
	}
}

func TestDiff_UpdateDeleteCreate(t *testing.T) {
	// Left moved, right removed, one brand-new monitor added.
	edited := []arrange.Monitor{
		{ID: "rec-left", DisplayID: 1, Name: "Left", Resolution: "2560x1440",
			Orientation: topology.Landscape, IsPrimary: true, ScaleFactor: 2.0,
			X: 100, Y: 0, Width: 2560, Height: 1440},
		{ID: "local-1", Name: "New", Resolution: "1920x1080",
			Orientation: topology.Landscape, ScaleFactor: 1.0,
			X: 2700, Y: 0, Width: 1920, Height: 1080},
	}

	plan := Diff("prof", edited, persistedPair())

	if len(plan.Updates) != 1 || plan.Updates[0].ID != "rec-left" {
		t.Fatalf("expected one update for rec-left, got %+v", plan.Updates)
	}
	if plan.Updates[0].X != 100 {
		t.Fatalf("update must carry new origin, got x=%d", plan.Updates[0].X)
	}
	if len(plan.Deletes) != 1 || plan.Deletes[0] != "rec-right" {
		t.Fatalf("expected rec-right deleted, got %v", plan.Deletes)
	}
	if len(plan.Creates) != 1 || plan.Creates[0].Name != "New" {
		t.Fatalf("expected one create, got %+v", plan.Creates)
	}
	if plan.Creates[0].ID != "" {
		t.Fatalf("create must leave id assignment to the store")
	}
	if plan.Creates[0].DisplayIndex != 1 {
		t.Fatalf("create must get display order index 1, got %d", plan.Creates[0].DisplayIndex)
	}
}

func TestDiff_SetsAreDisjoint(t *testing.T) {
	edited := []arrange.Monitor{
		{ID: "rec-left", DisplayID: 1, Name: "Left", Resolution: "2560x1440",
			Orientation: topology.Landscape, IsPrimary: true, ScaleFactor: 2.0,
			X: 50, Y: 0, Width: 2560, Height: 1440},
		{ID: "rec-right", DisplayID: 2, Name: "Right", Resolution: "1440x900",
			Orientation: topology.Landscape, ScaleFactor: 1.0,
			X: 2610, Y: 0, Width: 1440, Height: 900},
		{ID: "local-1", Name: "New", Resolution: "1920x1080",
			Orientation: topology.Landscape, ScaleFactor: 1.0,
			X: 5000, Y: 0, Width: 1920, Height: 1080},
	}

	plan := Diff("prof", edited, persistedPair())

	ids := make(map[string]int)
	for _, rec := range plan.Updates {
		ids[rec.ID]++
	}
	for _, id := range plan.Deletes {
		ids[id]++
	}
	for id, n := range ids {
		if n > 1 {
			t.Fatalf("id %s appears in more than one set", id)
		}
	}
	if len(plan.Deletes) != 0 {
		t.Fatalf("all persisted records survive, got deletes %v", plan.Deletes)
	}
}

func TestDiff_UnchangedSetYieldsEmptyPlan(t *testing.T) {
	persisted := persistedPair()
	edited := []arrange.Monitor{
		{ID: "rec-left", DisplayID: 1, Name: "Left", Resolution: "2560x1440",
			Orientation: topology.Landscape, IsPrimary: true, ScaleFactor: 2.0,
			X: 0, Y: 0, Width: 2560, Height: 1440},
		{ID: "rec-right", DisplayID: 2, Name: "Right", Resolution: "1440x900",
			Orientation: topology.Landscape, ScaleFactor: 1.0,
			X: 2560, Y: 0, Width: 1440, Height: 900},
	}

	if plan := Diff("prof", edited, persisted); !plan.Empty() {
		t.Fatalf("expected empty plan, got %+v", plan)
	}
}

func TestDiff_DisplayIndexFollowsLeftToRightOrder(t *testing.T) {
	// Right monitor dragged to the left of the left one.
	edited := []arrange.Monitor{
		{ID: "rec-left", DisplayID: 1, Name: "Left", Resolution: "2560x1440",
			Orientation: topology.Landscape, IsPrimary: true, ScaleFactor: 2.0,
			X: 0, Y: 0, Width: 2560, Height: 1440},
		{ID: "rec-right", DisplayID: 2, Name: "Right", Resolution: "1440x900",
			Orientation: topology.Landscape, ScaleFactor: 1.0,
			X: -1500, Y: 0, Width: 1440, Height: 900},
	}

	plan := Diff("prof", edited, persistedPair())
	if len(plan.Updates) != 2 {
		t.Fatalf("both indexes change, expected 2 updates, got %d", len(plan.Updates))
	}
	for _, rec := range plan.Updates {
		switch rec.ID {
		case "rec-right":
			if rec.DisplayIndex != 0 {
				t.Fatalf("rec-right index %d, want 0", rec.DisplayIndex)
			}
		case "rec-left":
			if rec.DisplayIndex != 1 {
				t.Fatalf("rec-left index %d, want 1", rec.DisplayIndex)
			}
		}
	}
}

// fakeRepo records the operation sequence and can fail a specific op.
type fakeRepo struct {
	ops    []string
	failOn string
}

func (f *fakeRepo) step(op string) error {
	if op == f.failOn {
		return errors.New("disk full")
	}
	f.ops = append(f.ops, op)
	return nil
}

func (f *fakeRepo) InsertMonitor(_ context.Context, m *store.MonitorRecord) error {
	return f.step("create:" + m.Name)
}

func (f *fakeRepo) UpdateMonitor(_ context.Context, m *store.MonitorRecord) error {
	return f.step("update:" + m.ID)
}

func (f *fakeRepo) DeleteMonitor(_ context.Context, id string) error {
	return f.step("delete:" + id)
}

func TestApply_SequentialOrder(t *testing.T) {
	repo := &fakeRepo{}
	plan := Plan{
		Creates: []*store.MonitorRecord{{Name: "New"}},
		Updates: []*store.MonitorRecord{{ID: "rec-left"}},
		Deletes: []string{"rec-right"},
	}

	if err := Apply(context.Background(), repo, plan); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"delete:rec-right", "update:rec-left", "create:New"}
	if len(repo.ops) != len(want) {
		t.Fatalf("ops %v, want %v", repo.ops, want)
	}
	for i := range want {
		if repo.ops[i] != want[i] {
			t.Fatalf("ops %v, want %v", repo.ops, want)
		}
	}
}

func TestApply_StopsAtFirstFailure(t *testing.T) {
	repo := &fakeRepo{failOn: "update:rec-left"}
	plan := Plan{
		Creates: []*store.MonitorRecord{{Name: "New"}},
		Updates: []*store.MonitorRecord{{ID: "rec-left"}},
		Deletes: []string{"rec-right"},
	}

	err := Apply(context.Background(), repo, plan)
	var partial *PartialError
	if !errors.As(err, &partial) {
		t.Fatalf("expected PartialError, got %v", err)
	}
	if partial.Completed != 1 {
		t.Fatalf("expected 1 completed op, got %d", partial.Completed)
	}
	var opErr *OperationError
	if !errors.As(err, &opErr) || opErr.Op != OpUpdate || opErr.MonitorID != "rec-left" {
		t.Fatalf("expected update OperationError for rec-left, got %v", err)
	}
	// The create must not have run.
	for _, op := range repo.ops {
		if op == "create:New" {
			t.Fatal("create ran after failure")
		}
	}
}

func TestApply_FirstOpFailureIsNotPartial(t *testing.T) {
	repo := &fakeRepo{failOn: "delete:rec-right"}
	plan := Plan{Deletes: []string{"rec-right"}}

	err := Apply(context.Background(), repo, plan)
	var partial *PartialError
	if errors.As(err, &partial) {
		t.Fatalf("nothing completed, must not be PartialError: %v", err)
	}
	var opErr *OperationError
	if !errors.As(err, &opErr) || opErr.Op != OpDelete {
		t.Fatalf("expected delete OperationError, got %v", err)
	}
}

func TestSave_AgainstRealStore(t *testing.T) {
	s, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	p, err := s.CreateProfile(ctx, "Desk")
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}

	edited := []arrange.Monitor{
		{ID: "local-1", DisplayID: 1, Name: "Main", Resolution: "2560x1440",
			Orientation: topology.Landscape, IsPrimary: true, ScaleFactor: 2.0,
			X: 0, Y: 0, Width: 2560, Height: 1440},
		{ID: "local-2", DisplayID: 2, Name: "Side", Resolution: "1440x900",
			Orientation: topology.Landscape, ScaleFactor: 1.0,
			X: 2560, Y: 0, Width: 1440, Height: 900},
	}
	plan, err := Save(ctx, s, p.ID, edited, nil)
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	if len(plan.Creates) != 2 {
		t.Fatalf("expected 2 creates, got %d", len(plan.Creates))
	}

	persisted, err := s.ListMonitors(ctx, p.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	// Reload into an arrangement, move one, drop the other.
	reloaded := []arrange.Monitor{{
		ID: persisted[0].ID, DisplayID: 1, Name: "Main", Resolution: "2560x1440",
		Orientation: topology.Landscape, IsPrimary: true, ScaleFactor: 2.0,
		X: 500, Y: 200, Width: 2560, Height: 1440,
	}}
	if _, err := Save(ctx, s, p.ID, reloaded, persisted); err != nil {
		t.Fatalf("second save: %v", err)
	}

	final, _ := s.ListMonitors(ctx, p.ID)
	if len(final) != 1 {
		t.Fatalf("expected 1 record, got %d", len(final))
	}
	if final[0].X != 500 || final[0].Y != 200 {
		t.Fatalf("origin not updated: %+v", final[0])
	}
}
