// Package mcp exposes topology capture, layout apply, and profile
// persistence as MCP tools over stdio.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/displayworks/displayctl/internal/applier"
	"github.com/displayworks/displayctl/internal/capture"
	"github.com/displayworks/displayctl/internal/store"
)

const (
	ServerName    = "displayctl"
	ServerVersion = "0.1.0"
)

// Server is the displayctl MCP server.
type Server struct {
	mcpServer *mcpsdk.Server
	session   *capture.Session
	store     *store.Store
	applier   *applier.Applier
	log       *slog.Logger
}

// NewServer creates an MCP server over an existing capture session,
// store, and applier.
func NewServer(session *capture.Session, st *store.Store, app *applier.Applier, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		session: session,
		store:   st,
		applier: app,
		log:     log,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "detect_displays",
		Description: "Enumerate connected monitors with resolution, origin, scale factor, orientation, and primary flag, ordered left to right.",
	}, s.handleDetectDisplays)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "capture_layout",
		Description: "Capture the full desktop topology: monitors, visible application windows with their display assignment, and running applications.",
	}, s.handleCaptureLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "save_arrangement",
		Description: "Save the current monitor arrangement into a named profile. Creates the profile when missing and reconciles its records against the live topology.",
	}, s.handleSaveArrangement)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "apply_layout",
		Description: "Apply a saved profile's monitor arrangement to the hardware via displayplacer. When the tool is not installed, returns the exact command to run by hand.",
	}, s.handleApplyLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_profiles",
		Description: "List saved arrangement profiles with their monitor counts.",
	}, s.handleListProfiles)
}

// Run serves MCP on stdio, blocking until the context ends.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("mcp server starting", "name", ServerName, "version", ServerVersion)
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}
