package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattjoyce/breakdown/internal/api"
	"github.com/mattjoyce/breakdown/internal/config"
	"github.com/mattjoyce/breakdown/internal/history"
	"github.com/mattjoyce/breakdown/internal/input"
	"github.com/mattjoyce/breakdown/internal/lock"
	"github.com/mattjoyce/breakdown/internal/log"
	"github.com/mattjoyce/breakdown/internal/mcptool"
	"github.com/mattjoyce/breakdown/internal/pipeline"
	"github.com/mattjoyce/breakdown/internal/style"
)

// serviceDeps is the pipeline wiring for long-running surfaces. They never
// read process stdin; input text arrives in the request instead.
func serviceDeps(cfg *config.Config, workDir string) pipeline.Deps {
	deps := buildDeps(cfg, workDir)
	deps.Stdin = input.NoStdin
	deps.Confine = true
	return deps
}

// startService loads configuration, configures logging and opens history
// for serve and mcp. The returned close func is never nil.
func startService(ctx context.Context, configDir string) (*config.Config, string, *pipeline.Runner, *history.Store, func(), error) {
	cfg, workDir, err := resolveConfig(configDir)
	if err != nil {
		return nil, "", nil, nil, func() {}, err
	}
	log.Setup(cfg.LogLevel)

	runner := pipeline.NewRunner(serviceDeps(cfg, workDir))
	if !cfg.History.Enabled {
		return cfg, workDir, runner, nil, func() {}, nil
	}
	store, closeDB, err := openHistory(ctx, cfg, workDir)
	if err != nil {
		return nil, "", nil, nil, func() {}, fmt.Errorf("open history: %w", err)
	}
	return cfg, workDir, runner, store, closeDB, nil
}

// watchAndSwap reloads configDir on change and swaps the runner's wiring.
// A configuration that fails to load is logged and the previous one kept.
func watchAndSwap(ctx context.Context, configDir, workDir string, runner *pipeline.Runner, logger *slog.Logger) {
	err := config.Watch(ctx, configDir, func() {
		cfg, err := config.Load(configDir)
		if err != nil {
			logger.Error("config reload failed; keeping previous configuration", "error", err)
			return
		}
		runner.Swap(serviceDeps(cfg, workDir))
		logger.Info("configuration reloaded", "profiles", len(cfg.Profiles))
	})
	if err != nil {
		logger.Warn("config watch stopped", "error", err)
	}
}

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configDir := fs.String("config-dir", "", "Path to configuration directory")
	listen := fs.String("listen", "", "Listen address (default: serve.listen)")
	noWatch := fs.Bool("no-watch", false, "Do not reload configuration on change")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, workDir, runner, store, closeDB, err := startService(ctx, *configDir)
	defer closeDB()
	if err != nil {
		printFailure(style.NewTheme(os.Stderr), err)
		return exitCodeFor(err)
	}

	logger := log.WithComponent("serve")
	instance, err := lock.Acquire(cfg.ServeLockPath(workDir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot start server: %v\n", err)
		return exitUsage
	}
	defer func() { _ = instance.Release() }()

	if cfg.ConfigDir != "" && !*noWatch {
		go watchAndSwap(ctx, cfg.ConfigDir, workDir, runner, logger)
	}

	addr := cfg.Serve.Listen
	if *listen != "" {
		addr = *listen
	}

	var hist api.HistoryStore
	if store != nil {
		hist = store
	}
	server := api.New(api.Config{
		Listen:  addr,
		APIKey:  cfg.Serve.APIKey,
		Version: currentVersionInfo().Version,
	}, runner, hist, log.WithComponent("api"))

	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, api.ErrKeyRequired) {
			fmt.Fprintf(os.Stderr, "Cannot start server: %v\n", err)
			return exitUsage
		}
		logger.Error("server stopped", "error", err)
		return exitUsage
	}
	return exitOK
}

func runMCP(args []string) int {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	configDir := fs.String("config-dir", "", "Path to configuration directory")
	noWatch := fs.Bool("no-watch", false, "Do not reload configuration on change")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, workDir, runner, store, closeDB, err := startService(ctx, *configDir)
	defer closeDB()
	if err != nil {
		printFailure(style.NewTheme(os.Stderr), err)
		return exitCodeFor(err)
	}

	logger := log.WithComponent("mcp")
	if cfg.ConfigDir != "" && !*noWatch {
		go watchAndSwap(ctx, cfg.ConfigDir, workDir, runner, logger)
	}

	var rec history.Recorder
	if store != nil {
		rec = store
	}
	s := mcptool.NewServer(currentVersionInfo().Version, mcptool.NewTools(runner, rec, logger))

	logger.Info("MCP server listening on stdio")
	if err := mcptool.Serve(ctx, s, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("mcp server stopped", "error", err)
		return exitUsage
	}
	return exitOK
}
