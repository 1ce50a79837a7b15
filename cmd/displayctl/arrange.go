package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/displayworks/displayctl/internal/applier"
	"github.com/displayworks/displayctl/internal/arrange"
	"github.com/displayworks/displayctl/internal/reconcile"
	"github.com/displayworks/displayctl/internal/tui"
)

func runArrange(args []string) int {
	fs := flag.NewFlagSet("arrange", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	profileName := fs.String("profile", "", "profile to edit; loads its monitors and enables saving (created when missing)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: displayctl arrange [-profile <name>]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Open the interactive arrangement editor. Without -profile the live")
		fmt.Fprintln(os.Stderr, "topology is loaded and saving is disabled.")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "arrange requires an interactive terminal (stdin/stdout must be TTYs)")
		return 1
	}

	cfg, logger, err := loadEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	ctx := context.Background()

	st, err := openStore(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer st.Close()

	var session *arrange.Session
	var save tui.SaveFunc

	if *profileName != "" {
		profile, err := st.GetProfileByName(ctx, *profileName)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if profile == nil {
			profile, err = st.CreateProfile(ctx, *profileName)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
		}

		records, err := st.ListMonitors(ctx, profile.ID)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if len(records) > 0 {
			session = arrange.NewSession(cfg.ArrangeConfig())
			session.SetMonitors(reconcile.MonitorsFromRecords(records))
			session.ClearDirty()
		}

		profileID := profile.ID
		save = func(ctx context.Context, monitors []arrange.Monitor) error {
			persisted, err := st.ListMonitors(ctx, profileID)
			if err != nil {
				return err
			}
			_, err = reconcile.Save(ctx, st, profileID, monitors, persisted)
			return err
		}
	}

	// No profile records to edit: seed from the live topology.
	if session == nil {
		capSession, err := newCaptureSession(cfg, logger)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if err := capSession.RefreshMonitors(ctx); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		session = arrange.FromCapture(cfg.ArrangeConfig(), capSession.Monitors())
	}

	app := newApplier(cfg, logger)
	apply := func(ctx context.Context, monitors []arrange.Monitor) applier.Outcome {
		return app.Apply(ctx, applier.FromArrangement(monitors))
	}

	if err := tui.Run(session, save, apply); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
