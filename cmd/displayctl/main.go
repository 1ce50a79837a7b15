package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/displayworks/displayctl/internal/applier"
	"github.com/displayworks/displayctl/internal/capture"
	"github.com/displayworks/displayctl/internal/config"
	"github.com/displayworks/displayctl/internal/platform"
	"github.com/displayworks/displayctl/internal/reconcile"
	"github.com/displayworks/displayctl/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "detect":
		os.Exit(runDetect(os.Args[2:]))
	case "capture":
		os.Exit(runCapture(os.Args[2:]))
	case "arrange":
		os.Exit(runArrange(os.Args[2:]))
	case "apply":
		os.Exit(runApply(os.Args[2:]))
	case "save":
		os.Exit(runSave(os.Args[2:]))
	case "profile":
		os.Exit(runProfile(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: displayctl <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  detect              List connected monitors")
	fmt.Fprintln(w, "  capture             Capture the full desktop topology")
	fmt.Fprintln(w, "  arrange             Open the interactive arrangement editor")
	fmt.Fprintln(w, "  apply               Apply a saved profile to the hardware")
	fmt.Fprintln(w, "  save                Save the current arrangement into a profile")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  profile list        List saved profiles")
	fmt.Fprintln(w, "  profile create      Create an empty profile")
	fmt.Fprintln(w, "  profile delete      Delete a profile and its monitors")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'displayctl <command> --help' for command-specific options.")
}

// loadEnv loads config and builds the process logger.
func loadEnv() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newCaptureSession(cfg *config.Config, logger *slog.Logger) (*capture.Session, error) {
	backend, err := platform.NewBackend()
	if err != nil {
		return nil, fmt.Errorf("connect to display server: %w", err)
	}
	return capture.NewSession(backend, capture.Config{
		MinWindowArea: cfg.Capture.MinWindowArea,
		Logger:        logger,
	}), nil
}

func openStore(cfg *config.Config) (*store.Store, error) {
	path, err := cfg.DatabasePath()
	if err != nil {
		return nil, err
	}
	return store.Open(path)
}

func newApplier(cfg *config.Config, logger *slog.Logger) *applier.Applier {
	return applier.New(
		applier.WithToolPath(cfg.Apply.ToolPath),
		applier.WithLogger(logger),
	)
}

func printYAML(v any) int {
	data, err := yaml.Marshal(v)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	os.Stdout.Write(data)
	return 0
}

func runDetect(args []string) int {
	fs := flag.NewFlagSet("detect", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: displayctl detect")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List connected monitors in left-to-right order.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	cfg, logger, err := loadEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	session, err := newCaptureSession(cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := session.RefreshMonitors(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return printYAML(map[string]any{"monitors": session.Monitors()})
}

func runCapture(args []string) int {
	fs := flag.NewFlagSet("capture", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: displayctl capture")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Capture monitors, visible windows, and running applications.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	cfg, logger, err := loadEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	session, err := newCaptureSession(cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	layout, err := session.CaptureLayout(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return printYAML(layout)
}

func runApply(args []string) int {
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	profileName := fs.String("profile", "", "saved profile to apply (required)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: displayctl apply -profile <name>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Apply a saved profile's monitor arrangement via displayplacer.")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if *profileName == "" {
		fmt.Fprintln(os.Stderr, "apply requires -profile")
		fs.Usage()
		return 2
	}

	cfg, logger, err := loadEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	st, err := openStore(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer st.Close()

	ctx := context.Background()
	profile, err := st.GetProfileByName(ctx, *profileName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if profile == nil {
		fmt.Fprintf(os.Stderr, "profile %q not found\n", *profileName)
		return 1
	}
	records, err := st.ListMonitors(ctx, profile.ID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(records) == 0 {
		fmt.Fprintf(os.Stderr, "profile %q has no monitors\n", *profileName)
		return 1
	}

	layout := applier.FromArrangement(reconcile.MonitorsFromRecords(records))
	outcome := newApplier(cfg, logger).Apply(ctx, layout)
	return reportOutcome(outcome)
}

func reportOutcome(outcome applier.Outcome) int {
	switch outcome.Kind {
	case applier.Applied:
		fmt.Println("layout applied")
		return 0
	case applier.PermissionRequired:
		fmt.Fprintln(os.Stderr, "the OS refused the reconfiguration; grant display control permission and retry")
		return 1
	case applier.ManualCommandRequired:
		if outcome.Hint != "" {
			fmt.Printf("%s is not installed (%s)\n", applier.ToolName, outcome.Hint)
		} else {
			fmt.Printf("%s refused to run non-interactively\n", applier.ToolName)
		}
		fmt.Println("run this command yourself:")
		fmt.Println("  " + outcome.Command)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "apply failed: %v\n", outcome.Err)
		return 1
	}
}

func runSave(args []string) int {
	fs := flag.NewFlagSet("save", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	profileName := fs.String("profile", "", "profile to save into (required, created when missing)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: displayctl save -profile <name>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Save the current monitor arrangement into a profile.")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if *profileName == "" {
		fmt.Fprintln(os.Stderr, "save requires -profile")
		fs.Usage()
		return 2
	}

	cfg, logger, err := loadEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	session, err := newCaptureSession(cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	st, err := openStore(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer st.Close()

	ctx := context.Background()
	if err := session.RefreshMonitors(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	plan, profile, err := saveCaptured(ctx, st, *profileName, session)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("profile %q: %d created, %d updated, %d deleted\n",
		profile.Name, len(plan.Creates), len(plan.Updates), len(plan.Deletes))
	return 0
}

// saveCaptured reconciles the session's captured monitors into the
// named profile, creating it when missing.
func saveCaptured(ctx context.Context, st *store.Store, name string, session *capture.Session) (reconcile.Plan, *store.Profile, error) {
	monitors := session.Monitors()
	if len(monitors) == 0 {
		return reconcile.Plan{}, nil, fmt.Errorf("no monitors detected")
	}

	profile, err := st.GetProfileByName(ctx, name)
	if err != nil {
		return reconcile.Plan{}, nil, err
	}
	if profile == nil {
		profile, err = st.CreateProfile(ctx, name)
		if err != nil {
			return reconcile.Plan{}, nil, err
		}
	}

	persisted, err := st.ListMonitors(ctx, profile.ID)
	if err != nil {
		return reconcile.Plan{}, nil, err
	}
	edited := reconcile.AlignCaptured(monitors, persisted)
	plan, err := reconcile.Save(ctx, st, profile.ID, edited, persisted)
	return plan, profile, err
}
