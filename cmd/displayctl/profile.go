package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

func printProfileUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: displayctl profile <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  list             List saved profiles")
	fmt.Fprintln(w, "  create <name>    Create an empty profile")
	fmt.Fprintln(w, "  delete <name>    Delete a profile and its monitors")
}

func runProfile(args []string) int {
	if len(args) == 0 {
		printProfileUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "list":
		return runProfileList(args[1:])
	case "create":
		return runProfileCreate(args[1:])
	case "delete":
		return runProfileDelete(args[1:])
	case "help", "-h", "--help":
		printProfileUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown profile command: %s\n\n", args[0])
		printProfileUsage(os.Stderr)
		return 2
	}
}

func runProfileList(args []string) int {
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "profile list takes no arguments")
		return 2
	}

	cfg, _, err := loadEnv()
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
	profiles, err := st.ListProfiles(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(profiles) == 0 {
		fmt.Println("no profiles saved")
		return 0
	}

	for _, p := range profiles {
		records, err := st.ListMonitors(ctx, p.ID)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		updated := time.UnixMilli(p.UpdatedAt).Format("2006-01-02 15:04")
		fmt.Printf("%-24s %d monitors  updated %s\n", p.Name, len(records), updated)
	}
	return 0
}

func runProfileCreate(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: displayctl profile create <name>")
		return 2
	}

	cfg, _, err := loadEnv()
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

	p, err := st.CreateProfile(context.Background(), args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("created profile %q\n", p.Name)
	return 0
}

func runProfileDelete(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: displayctl profile delete <name>")
		return 2
	}

	cfg, _, err := loadEnv()
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
	p, err := st.GetProfileByName(ctx, args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if p == nil {
		fmt.Fprintf(os.Stderr, "profile %q not found\n", args[0])
		return 1
	}
	if err := st.DeleteProfile(ctx, p.ID); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("deleted profile %q\n", p.Name)
	return 0
}
