package mcp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/displayworks/displayctl/internal/applier"
	"github.com/displayworks/displayctl/internal/capture"
	"github.com/displayworks/displayctl/internal/platform"
	"github.com/displayworks/displayctl/internal/store"
)

type fakeBackend struct {
	displays []platform.RawDisplay
	windows  []platform.RawWindow
	procs    []platform.RawProcess
}

func (f *fakeBackend) Displays(context.Context) ([]platform.RawDisplay, error) {
	return f.displays, nil
}

func (f *fakeBackend) Windows(context.Context) ([]platform.RawWindow, error) {
	return f.windows, nil
}

func (f *fakeBackend) Processes(context.Context) ([]platform.RawProcess, error) {
	return f.procs, nil
}

type fakeRunner struct {
	args []string
	err  error
}

func (f *fakeRunner) Run(_ context.Context, _ string, args []string) ([]byte, error) {
	f.args = args
	return nil, f.err
}

func testServer(t *testing.T, app *applier.Applier) *Server {
	t.Helper()
	backend := &fakeBackend{
		displays: []platform.RawDisplay{
			{ID: 1, PixelWidth: 2560, PixelHeight: 1440, LogicalWidth: 2560, LogicalHeight: 1440, IsMain: true},
			{ID: 2, PixelWidth: 1440, PixelHeight: 900, LogicalWidth: 1440, LogicalHeight: 900, X: 2560},
		},
		windows: []platform.RawWindow{
			{ID: 10, PID: 100, Title: "editor", X: 100, Y: 100, Width: 800, Height: 600},
		},
		procs: []platform.RawProcess{
			{PID: 100, Name: "editor", IsFrontmost: true},
		},
	}
	session := capture.NewSession(backend, capture.Config{})

	st, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	if app == nil {
		app = applier.New(applier.WithToolPath(filepath.Join(t.TempDir(), "missing")))
	}
	return NewServer(session, st, app, nil)
}

func TestDetectDisplays(t *testing.T) {
	s := testServer(t, nil)

	_, out, err := s.handleDetectDisplays(context.Background(), nil, DetectDisplaysInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Monitors) != 2 {
		t.Fatalf("expected 2 monitors, got %d", len(out.Monitors))
	}
	if !out.Monitors[0].IsPrimary || out.Monitors[0].X != 0 {
		t.Fatalf("monitors not in display order: %+v", out.Monitors)
	}
}

func TestCaptureLayout(t *testing.T) {
	s := testServer(t, nil)

	_, out, err := s.handleCaptureLayout(context.Background(), nil, CaptureLayoutInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Monitors) != 2 || len(out.Windows) != 1 || len(out.Applications) != 1 {
		t.Fatalf("incomplete layout: %d/%d/%d", len(out.Monitors), len(out.Windows), len(out.Applications))
	}
	if out.CapturedAt == "" {
		t.Fatal("missing capture timestamp")
	}
}

func TestSaveArrangement_CreateThenStableResave(t *testing.T) {
	s := testServer(t, nil)
	ctx := context.Background()

	_, out, err := s.handleSaveArrangement(ctx, nil, SaveArrangementInput{Profile: "Desk"})
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	if out.Created != 2 || out.Updated != 0 || out.Deleted != 0 {
		t.Fatalf("first save plan: %+v", out)
	}

	// Nothing changed, so a resave is a no-op rather than delete-create churn.
	_, out, err = s.handleSaveArrangement(ctx, nil, SaveArrangementInput{Profile: "Desk"})
	if err != nil {
		t.Fatalf("resave: %v", err)
	}
	if out.Created != 0 || out.Updated != 0 || out.Deleted != 0 {
		t.Fatalf("resave must be empty, got %+v", out)
	}
}

func TestSaveArrangement_RejectsBlankName(t *testing.T) {
	s := testServer(t, nil)
	if _, _, err := s.handleSaveArrangement(context.Background(), nil, SaveArrangementInput{Profile: "  "}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestApplyLayout_MissingToolReturnsManualCommand(t *testing.T) {
	s := testServer(t, nil)
	ctx := context.Background()

	if _, _, err := s.handleSaveArrangement(ctx, nil, SaveArrangementInput{Profile: "Desk"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	_, out, err := s.handleApplyLayout(ctx, nil, ApplyLayoutInput{Profile: "Desk"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != "manual_command_required" {
		t.Fatalf("status %q", out.Status)
	}
	if !strings.Contains(out.Command, `"id:1 res:2560x1440`) {
		t.Fatalf("command %q", out.Command)
	}
	if out.Hint != applier.InstallHint {
		t.Fatalf("hint %q", out.Hint)
	}
}

func TestApplyLayout_AppliesViaRunner(t *testing.T) {
	tool := filepath.Join(t.TempDir(), "displayplacer")
	if err := os.WriteFile(tool, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write tool stub: %v", err)
	}
	runner := &fakeRunner{}
	app := applier.New(applier.WithToolPath(tool), applier.WithRunner(runner))
	s := testServer(t, app)
	ctx := context.Background()

	if _, _, err := s.handleSaveArrangement(ctx, nil, SaveArrangementInput{Profile: "Desk"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	_, out, err := s.handleApplyLayout(ctx, nil, ApplyLayoutInput{Profile: "Desk"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != "applied" {
		t.Fatalf("status %q (error %q)", out.Status, out.Error)
	}
	if len(runner.args) != 2 {
		t.Fatalf("runner got %d args", len(runner.args))
	}
}

func TestApplyLayout_UnknownProfile(t *testing.T) {
	s := testServer(t, nil)
	if _, _, err := s.handleApplyLayout(context.Background(), nil, ApplyLayoutInput{Profile: "nope"}); err == nil {
		t.Fatal("expected error for unknown profile")
	}
}

func TestListProfiles(t *testing.T) {
	s := testServer(t, nil)
	ctx := context.Background()

	_, out, err := s.handleListProfiles(ctx, nil, ListProfilesInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Profiles) != 0 {
		t.Fatalf("expected no profiles, got %d", len(out.Profiles))
	}

	if _, _, err := s.handleSaveArrangement(ctx, nil, SaveArrangementInput{Profile: "Desk"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	_, out, err = s.handleListProfiles(ctx, nil, ListProfilesInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Profiles) != 1 || out.Profiles[0].MonitorCount != 2 {
		t.Fatalf("profiles %+v", out.Profiles)
	}
}
