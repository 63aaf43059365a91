package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/go-git/go-billy/v5/osfs"
	"gopkg.in/yaml.v3"

	"github.com/mattjoyce/breakdown/internal/config"
	"github.com/mattjoyce/breakdown/internal/doctor"
	"github.com/mattjoyce/breakdown/internal/style"
)

func runConfigNoun(args []string) int {
	if len(args) < 1 {
		printConfigNounHelp(os.Stderr)
		return exitUsage
	}
	if isHelpToken(args[0]) {
		printConfigNounHelp(os.Stdout)
		return exitOK
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "check":
		return runConfigCheck(actionArgs)
	case "lock":
		return runConfigLock(actionArgs)
	case "show":
		return runConfigShow(actionArgs)
	case "get":
		return runConfigGet(actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown config action: %s\n", action)
		return exitUsage
	}
}

func printConfigNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: breakdown config <action> [flags]")
	fmt.Fprintln(w, "Actions: check, lock, show, get")
}

// resolveConfig loads configuration the same way prompt runs do.
func resolveConfig(configDir string) (*config.Config, string, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Resolve(configDir, workDir)
	if err != nil {
		return nil, workDir, err
	}
	return cfg, workDir, nil
}

func runConfigCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	configDir := fs.String("config-dir", "", "Path to configuration directory")
	jsonOut := fs.Bool("json", false, "Output in structured JSON format")
	strict := fs.Bool("strict", false, "Treat warnings as failures")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return exitUsage
	}

	var result *doctor.Result
	cfg, workDir, err := resolveConfig(*configDir)
	if err != nil {
		result = doctor.FromLoadError(err)
	} else {
		result = doctor.New(cfg, osfs.New("/"), workDir).Validate()
	}

	if *jsonOut {
		out, err := doctor.FormatJSON(result)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render JSON: %v\n", err)
			return exitUsage
		}
		fmt.Println(out)
	} else {
		if cfg != nil && cfg.ConfigDir == "" {
			fmt.Println("No configuration directory found; checking built-in defaults.")
		}
		fmt.Print(doctor.FormatHuman(result))
	}

	switch {
	case !result.Valid:
		return exitUsage
	case *strict && len(result.Warnings) > 0:
		return 2
	default:
		return exitOK
	}
}

func runConfigLock(args []string) int {
	fs := flag.NewFlagSet("lock", flag.ContinueOnError)
	configDir := fs.String("config-dir", "", "Path to configuration directory")
	dryRun := fs.Bool("dry-run", false, "Preview hashes without writing .checksums")
	var verbose bool
	fs.BoolVar(&verbose, "verbose", false, "List every hashed file")
	fs.BoolVar(&verbose, "v", false, "List every hashed file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return exitUsage
	}

	workDir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve working directory: %v\n", err)
		return exitUsage
	}
	dir, err := config.DiscoverConfigDir(*configDir, workDir)
	if err != nil {
		printFailure(style.NewTheme(os.Stderr), err)
		return exitCodeFor(err)
	}
	if dir == "" {
		fmt.Fprintln(os.Stderr, "No configuration directory found; run 'breakdown init' first.")
		return exitUsage
	}

	report, err := config.Lock(dir, *dryRun)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Lock failed: %v\n", err)
		return exitUsage
	}

	if verbose || *dryRun {
		for _, f := range report.Files {
			fmt.Printf("  %s  %s\n", f.Hash, f.Rel)
		}
	}
	if *dryRun {
		fmt.Printf("Dry run: %d file(s) would be written to %s\n", len(report.Files), report.ManifestPath)
		return exitOK
	}
	fmt.Printf("Locked %d file(s) in %s\n", len(report.Files), report.ManifestPath)
	return exitOK
}

func runConfigShow(args []string) int {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	configDir := fs.String("config-dir", "", "Path to configuration directory")
	jsonOut := fs.Bool("json", false, "Output in structured JSON format")
	flags, positionals := splitFlagsAndPositionals(args, map[string]bool{"--config-dir": true, "-config-dir": true})
	if err := fs.Parse(flags); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return exitUsage
	}

	cfg, _, err := resolveConfig(*configDir)
	if err != nil {
		printFailure(style.NewTheme(os.Stderr), err)
		return exitCodeFor(err)
	}

	var result any = cfg
	if len(positionals) > 0 {
		val, err := cfg.GetPath(positionals[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitUsage
		}
		result = val
	}

	return printValue(result, *jsonOut, true)
}

func runConfigGet(args []string) int {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	configDir := fs.String("config-dir", "", "Path to configuration directory")
	jsonOut := fs.Bool("json", false, "Output in structured JSON format")
	flags, positionals := splitFlagsAndPositionals(args, map[string]bool{"--config-dir": true, "-config-dir": true})
	if err := fs.Parse(flags); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return exitUsage
	}
	if len(positionals) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: breakdown config get <path> [--json]")
		return exitUsage
	}

	cfg, _, err := resolveConfig(*configDir)
	if err != nil {
		printFailure(style.NewTheme(os.Stderr), err)
		return exitCodeFor(err)
	}

	val, err := cfg.GetPath(positionals[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsage
	}
	return printValue(val, *jsonOut, false)
}

// printValue writes v as JSON, YAML (structured values) or plain text.
func printValue(v any, jsonOut, yamlDefault bool) int {
	if jsonOut {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render JSON: %v\n", err)
			return exitUsage
		}
		fmt.Println(string(data))
		return exitOK
	}
	switch v.(type) {
	case map[string]any, []any:
		yamlDefault = true
	}
	if yamlDefault {
		data, err := yaml.Marshal(v)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render YAML: %v\n", err)
			return exitUsage
		}
		fmt.Print(string(data))
		return exitOK
	}
	fmt.Printf("%v\n", v)
	return exitOK
}
