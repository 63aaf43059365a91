package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"

	"github.com/mattjoyce/breakdown/internal/style"
	"github.com/mattjoyce/breakdown/internal/workspace"
)

func runInit(args []string) int {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	force := fs.Bool("force", false, "Overwrite existing files")
	dir := fs.String("dir", "", "Project directory (default: current directory)")
	directives := fs.String("directives", "", "Comma-separated directives (default: to,summary,defect)")
	layers := fs.String("layers", "", "Comma-separated layers (default: project,issue,task)")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return exitUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintln(os.Stderr, "Usage: breakdown init [--force] [--dir DIR] [--directives a,b] [--layers x,y]")
		return exitUsage
	}

	root := *dir
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to resolve working directory: %v\n", err)
			return exitUsage
		}
		root = wd
	}

	w, err := workspace.New(osfs.New(root))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Init failed: %v\n", err)
		return exitUsage
	}
	report, err := w.Init(context.Background(), workspace.Options{
		Force:      *force,
		Directives: splitList(*directives),
		Layers:     splitList(*layers),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Init failed: %v\n", err)
		return exitUsage
	}

	theme := style.NewTheme(os.Stdout)
	for _, p := range report.Created {
		fmt.Println(theme.OK.Render("created    ") + p)
	}
	for _, p := range report.Overwritten {
		fmt.Println(theme.Warn.Render("overwrote  ") + p)
	}
	for _, p := range report.Skipped {
		fmt.Println(theme.Dim.Render("skipped    ") + p + theme.Dim.Render(" (exists; use --force)"))
	}
	return exitOK
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
