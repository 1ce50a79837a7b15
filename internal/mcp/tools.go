package mcp

import (
	"context"
	"fmt"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/displayworks/displayctl/internal/applier"
	"github.com/displayworks/displayctl/internal/reconcile"
	"github.com/displayworks/displayctl/internal/store"
)

func (s *Server) handleDetectDisplays(ctx context.Context, _ *mcpsdk.CallToolRequest, _ DetectDisplaysInput) (*mcpsdk.CallToolResult, DetectDisplaysOutput, error) {
	if err := s.session.RefreshMonitors(ctx); err != nil {
		return nil, DetectDisplaysOutput{}, err
	}
	return nil, DetectDisplaysOutput{Monitors: s.session.Monitors()}, nil
}

func (s *Server) handleCaptureLayout(ctx context.Context, _ *mcpsdk.CallToolRequest, _ CaptureLayoutInput) (*mcpsdk.CallToolResult, CaptureLayoutOutput, error) {
	layout, err := s.session.CaptureLayout(ctx)
	if err != nil {
		return nil, CaptureLayoutOutput{}, err
	}
	return nil, CaptureLayoutOutput{
		Monitors:     layout.Monitors,
		Windows:      layout.Windows,
		Applications: layout.Applications,
		CapturedAt:   layout.CapturedAt.Format(time.RFC3339),
	}, nil
}

func (s *Server) handleSaveArrangement(ctx context.Context, _ *mcpsdk.CallToolRequest, args SaveArrangementInput) (*mcpsdk.CallToolResult, SaveArrangementOutput, error) {
	if err := store.ValidateProfileName(args.Profile); err != nil {
		return nil, SaveArrangementOutput{}, err
	}
	if err := s.session.RefreshMonitors(ctx); err != nil {
		return nil, SaveArrangementOutput{}, err
	}
	monitors := s.session.Monitors()
	if len(monitors) == 0 {
		return nil, SaveArrangementOutput{}, fmt.Errorf("no monitors detected")
	}

	profile, err := s.store.GetProfileByName(ctx, args.Profile)
	if err != nil {
		return nil, SaveArrangementOutput{}, err
	}
	if profile == nil {
		profile, err = s.store.CreateProfile(ctx, args.Profile)
		if err != nil {
			return nil, SaveArrangementOutput{}, err
		}
	}

	persisted, err := s.store.ListMonitors(ctx, profile.ID)
	if err != nil {
		return nil, SaveArrangementOutput{}, err
	}

	edited := reconcile.AlignCaptured(monitors, persisted)
	plan, err := reconcile.Save(ctx, s.store, profile.ID, edited, persisted)
	if err != nil {
		return nil, SaveArrangementOutput{}, err
	}

	s.log.Info("arrangement saved", "profile", profile.Name,
		"created", len(plan.Creates), "updated", len(plan.Updates), "deleted", len(plan.Deletes))
	return nil, SaveArrangementOutput{
		ProfileID: profile.ID,
		Created:   len(plan.Creates),
		Updated:   len(plan.Updates),
		Deleted:   len(plan.Deletes),
	}, nil
}

func (s *Server) handleApplyLayout(ctx context.Context, _ *mcpsdk.CallToolRequest, args ApplyLayoutInput) (*mcpsdk.CallToolResult, ApplyLayoutOutput, error) {
	profile, err := s.store.GetProfileByName(ctx, args.Profile)
	if err != nil {
		return nil, ApplyLayoutOutput{}, err
	}
	if profile == nil {
		return nil, ApplyLayoutOutput{}, fmt.Errorf("profile %q not found", args.Profile)
	}
	records, err := s.store.ListMonitors(ctx, profile.ID)
	if err != nil {
		return nil, ApplyLayoutOutput{}, err
	}
	if len(records) == 0 {
		return nil, ApplyLayoutOutput{}, fmt.Errorf("profile %q has no monitors", args.Profile)
	}

	layout := applier.FromArrangement(reconcile.MonitorsFromRecords(records))
	outcome := s.applier.Apply(ctx, layout)

	out := ApplyLayoutOutput{Status: outcome.Kind.String(), Command: outcome.Command, Hint: outcome.Hint}
	if outcome.Err != nil {
		out.Error = outcome.Err.Error()
	}
	return nil, out, nil
}

func (s *Server) handleListProfiles(ctx context.Context, _ *mcpsdk.CallToolRequest, _ ListProfilesInput) (*mcpsdk.CallToolResult, ListProfilesOutput, error) {
	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return nil, ListProfilesOutput{}, err
	}

	out := ListProfilesOutput{Profiles: make([]ProfileInfo, 0, len(profiles))}
	for _, p := range profiles {
		records, err := s.store.ListMonitors(ctx, p.ID)
		if err != nil {
			return nil, ListProfilesOutput{}, err
		}
		out.Profiles = append(out.Profiles, ProfileInfo{
			ID:           p.ID,
			Name:         p.Name,
			MonitorCount: len(records),
			UpdatedAt:    p.UpdatedAt,
		})
	}
	return nil, out, nil
}
