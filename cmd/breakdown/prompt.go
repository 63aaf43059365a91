package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-git/go-billy/v5/osfs"

	"github.com/mattjoyce/breakdown/internal/config"
	"github.com/mattjoyce/breakdown/internal/failure"
	"github.com/mattjoyce/breakdown/internal/history"
	"github.com/mattjoyce/breakdown/internal/input"
	"github.com/mattjoyce/breakdown/internal/log"
	"github.com/mattjoyce/breakdown/internal/params"
	"github.com/mattjoyce/breakdown/internal/pipeline"
	"github.com/mattjoyce/breakdown/internal/storage"
	"github.com/mattjoyce/breakdown/internal/style"
)

// Exit codes. Pipeline failures get one code per kind.
const (
	exitOK          = 0
	exitUsage       = 1
	exitInterrupted = 130
)

var kindExitCodes = map[failure.Kind]int{
	failure.KindInvalidParameterCount:   2,
	failure.KindInvalidDirectiveType:    3,
	failure.KindInvalidLayerType:        4,
	failure.KindConfigurationNotFound:   5,
	failure.KindPatternNotDefined:       6,
	failure.KindConflictingOptions:      7,
	failure.KindMissingRequired:         8,
	failure.KindFileNotFound:            9,
	failure.KindReservedVariableName:    10,
	failure.KindEmptyVariableValue:      11,
	failure.KindVariableProcessing:      12,
	failure.KindPromptGeneration:        13,
	failure.KindConfigurationValidation: 14,
}

// exitCodeFor maps an error to the process exit code.
func exitCodeFor(err error) int {
	if err == nil {
		return exitOK
	}
	if code, ok := kindExitCodes[failure.KindOf(err)]; ok {
		return code
	}
	if errors.Is(err, context.Canceled) {
		return exitInterrupted
	}
	return exitUsage
}

// newStdin returns the process stdin source. Tests replace it.
var newStdin = func() input.Stdin { return &input.ProcessStdin{} }

// runPrompt handles `breakdown <directive> <layer> [options]`.
func runPrompt(args []string) int {
	inv, err := parsePromptArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", strings.TrimPrefix(err.Error(), "usage: "))
		printPromptHelp(os.Stderr)
		return exitUsage
	}
	if inv.Options.Flag("help") {
		printPromptHelp(os.Stdout)
		return exitOK
	}

	theme := style.NewTheme(os.Stderr)

	workDir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve working directory: %v\n", err)
		return exitUsage
	}

	cfg, err := config.Resolve(inv.ConfigDir, workDir)
	if err != nil {
		printFailure(theme, err)
		return exitCodeFor(err)
	}

	level := cfg.LogLevel
	if inv.LogLevel != "" {
		level = inv.LogLevel
	}
	log.Setup(level)
	logger := log.WithComponent("cli")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := buildDeps(cfg, workDir)
	deps.Stdin = newStdin()
	res, runErr := pipeline.New(deps).Run(ctx, inv.Positionals, inv.Options)

	if cfg.History.Enabled {
		store, closeDB, err := openHistory(ctx, cfg, workDir)
		if err != nil {
			logger.Warn("history unavailable", "path", cfg.HistoryPath(workDir), "error", err)
		} else {
			history.Capture(ctx, store, logger, history.SurfaceCLI, inv.Options, inv.Positionals, res, runErr)
			closeDB()
		}
	}

	if runErr != nil {
		printFailure(theme, runErr)
		return exitCodeFor(runErr)
	}

	if inv.Options.Flag("verbose") {
		printRunReport(theme, res)
	}
	fmt.Fprint(os.Stdout, res.Content)
	return exitOK
}

// buildDeps wires the pipeline to cfg. Stdin is left for the caller.
func buildDeps(cfg *config.Config, workDir string) pipeline.Deps {
	return pipeline.Deps{
		Store:        params.NewCachedStore(params.NewConfigStore(cfg)),
		FS:           osfs.New("/"),
		WorkDir:      workDir,
		PromptRoot:   cfg.PromptRoot(workDir),
		ProfileRoots: cfg.ProfileRoots(workDir),
		Logger:       log.WithComponent("pipeline"),
	}
}

// openHistory opens the history database named by cfg.
func openHistory(ctx context.Context, cfg *config.Config, workDir string) (*history.Store, func(), error) {
	db, err := storage.OpenSQLite(ctx, cfg.HistoryPath(workDir))
	if err != nil {
		return nil, nil, err
	}
	return history.New(db), func() { _ = db.Close() }, nil
}

// printFailure writes "Error [Kind] message" and the error's details to stderr.
func printFailure(theme style.Theme, err error) {
	fe, ok := failure.As(err)
	if !ok {
		fmt.Fprintln(os.Stderr, theme.ErrorLine("", err.Error()))
		return
	}
	fmt.Fprintln(os.Stderr, theme.ErrorLine(string(fe.Kind()), fe.Error()))
	if vp, ok := fe.(*failure.VariableProcessingError); ok {
		for _, inner := range vp.Errors {
			fmt.Fprintln(os.Stderr, theme.Detail(string(inner.Kind()), inner.Error()))
		}
	}
	if pg, ok := fe.(*failure.PromptGenerationError); ok {
		for _, p := range pg.Attempted {
			fmt.Fprintln(os.Stderr, theme.Detail("tried", p))
		}
	}
}

// printRunReport writes the --verbose summary to stderr.
func printRunReport(theme style.Theme, res *pipeline.Result) {
	fmt.Fprintln(os.Stderr, theme.Header.Render("breakdown "+res.Params.Directive.String()+" "+res.Params.Layer.String()))
	fmt.Fprintln(os.Stderr, theme.Detail("run", res.RunID))
	fmt.Fprintln(os.Stderr, theme.Detail("profile", res.Params.Profile))
	fmt.Fprintln(os.Stderr, theme.Detail("input", res.Input.SourceLabel))
	fmt.Fprintln(os.Stderr, theme.Detail("template", res.Template.Path))
	if res.Template.FallbackUsed {
		fmt.Fprintln(os.Stderr, theme.Notice("fallback:",
			fmt.Sprintf("%s not found, used %s", res.Template.Attempted[0], res.Template.RelPath)))
	}
	fmt.Fprintln(os.Stderr, theme.Detail("digest", res.Digest))
}

func printPromptHelp(w *os.File) {
	fmt.Fprint(w, `Usage: breakdown <directive> <layer> [options]

Render the prompt template for a directive/layer pair.

Options:
  -f, --from <file|->        Input file, or - for stdin
  -i, --input <layer>        Input layer shortcut; reads stdin when piped
  -o, --destination <path>   Destination path reported to the template
  -a, --adaptation <name>    Template variant (f_<layer>_<name>.md)
  -p, --profile <name>       Configuration profile (default: default)
      --prompt-dir <dir>     Template root override
      --config-dir <dir>     Configuration directory
      --log-level <level>    debug, info, warn, error
      --uv-<name>=<value>    User variable, available as {uv-<name>} or {<name>}
  -v, --verbose              Report template selection on stderr
`)
}
