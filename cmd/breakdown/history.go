package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattjoyce/breakdown/internal/history"
	"github.com/mattjoyce/breakdown/internal/style"
	"github.com/mattjoyce/breakdown/internal/tui/watch"
)

func runHistory(args []string) int {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	configDir := fs.String("config-dir", "", "Path to configuration directory")
	limit := fs.Int("limit", history.DefaultLimit, "Maximum number of runs to show")
	jsonOut := fs.Bool("json", false, "Output in structured JSON format")
	watchRuns := fs.Bool("watch", false, "Open a live view that refreshes as runs are recorded")
	interval := fs.Duration("interval", 2*time.Second, "Refresh interval for --watch")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return exitUsage
	}

	theme := style.NewTheme(os.Stdout)
	cfg, workDir, err := resolveConfig(*configDir)
	if err != nil {
		printFailure(style.NewTheme(os.Stderr), err)
		return exitCodeFor(err)
	}
	if !cfg.History.Enabled {
		fmt.Fprintln(os.Stderr, "History is disabled; set history.enabled: true in config.yaml.")
		return exitUsage
	}

	ctx := context.Background()
	store, closeDB, err := openHistory(ctx, cfg, workDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open history: %v\n", err)
		return exitUsage
	}
	defer closeDB()

	if *watchRuns {
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := watch.Run(ctx, store, *limit, *interval); err != nil {
			fmt.Fprintf(os.Stderr, "Watch failed: %v\n", err)
			return exitUsage
		}
		return exitOK
	}

	runs, err := store.List(ctx, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list history: %v\n", err)
		return exitUsage
	}

	if *jsonOut {
		if runs == nil {
			runs = []history.Entry{}
		}
		data, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render JSON: %v\n", err)
			return exitUsage
		}
		fmt.Println(string(data))
		return exitOK
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return exitOK
	}
	for _, e := range runs {
		fmt.Println(formatHistoryLine(theme, e))
	}
	return exitOK
}

func formatHistoryLine(theme style.Theme, e history.Entry) string {
	id := e.ID
	if len(id) > 8 {
		id = id[:8]
	}
	pair := e.Directive + "/" + e.Layer
	outcome := theme.OK.Render("ok") + " " + e.Template
	if e.FallbackUsed {
		outcome += theme.Highlight.Render(" (fallback)")
	}
	if e.Failed() {
		outcome = theme.Error.Render("failed") + " " + theme.Kind.Render("["+e.ErrorKind+"]")
	}
	return fmt.Sprintf("%s  %s  %-4s %-8s %-16s %s",
		theme.Dim.Render(e.CreatedAt.Local().Format(time.DateTime)),
		id, e.Surface, e.Profile, pair, outcome)
}
