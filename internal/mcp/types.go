package mcp

import "github.com/displayworks/displayctl/internal/topology"

// DetectDisplaysInput is the input for the detect_displays tool.
type DetectDisplaysInput struct{}

// DetectDisplaysOutput is the output for the detect_displays tool.
type DetectDisplaysOutput struct {
	Monitors []topology.MonitorDescriptor `json:"monitors"`
}

// CaptureLayoutInput is the input for the capture_layout tool.
type CaptureLayoutInput struct{}

// CaptureLayoutOutput is the output for the capture_layout tool.
type CaptureLayoutOutput struct {
	Monitors     []topology.MonitorDescriptor  `json:"monitors"`
	Windows      []topology.WindowDescriptor   `json:"windows"`
	Applications []topology.RunningApplication `json:"applications"`
	CapturedAt   string                        `json:"captured_at"`
}

// SaveArrangementInput is the input for the save_arrangement tool.
type SaveArrangementInput struct {
	Profile string `json:"profile" jsonschema:"required,Profile name to save the current arrangement under. Created when missing."`
}

// SaveArrangementOutput is the output for the save_arrangement tool.
type SaveArrangementOutput struct {
	ProfileID string `json:"profile_id"`
	Created   int    `json:"created"`
	Updated   int    `json:"updated"`
	Deleted   int    `json:"deleted"`
}

// ApplyLayoutInput is the input for the apply_layout tool.
type ApplyLayoutInput struct {
	Profile string `json:"profile" jsonschema:"required,Name of the saved profile to apply"`
}

// ApplyLayoutOutput is the output for the apply_layout tool.
type ApplyLayoutOutput struct {
	Status  string `json:"status"`
	Command string `json:"command,omitempty"`
	Hint    string `json:"hint,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ListProfilesInput is the input for the list_profiles tool.
type ListProfilesInput struct{}

// ProfileInfo describes one saved profile.
type ProfileInfo struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MonitorCount int    `json:"monitor_count"`
	UpdatedAt    int64  `json:"updated_at"`
}

// ListProfilesOutput is the output for the list_profiles tool.
type ListProfilesOutput struct {
	Profiles []ProfileInfo `json:"profiles"`
}
