package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/mattjoyce/breakdown/internal/options"
)

// promptInvocation is a parsed prompt command line.
type promptInvocation struct {
	Positionals []string
	Options     options.Options
	ConfigDir   string
	LogLevel    string
}

// errUsage marks command-line errors that map to the usage exit code.
var errUsage = errors.New("usage")

func usageErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

// promptFlagSet declares the known prompt options. Short and long spellings
// share one destination.
func promptFlagSet(inv *promptInvocation, verbose, help *bool) *flag.FlagSet {
	fs := flag.NewFlagSet("breakdown", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	opts := &inv.Options
	stringFlag := func(p *string, long, short, usage string) {
		fs.StringVar(p, long, "", usage)
		if short != "" {
			fs.StringVar(p, short, "", usage)
		}
	}
	stringFlag(&opts.From, "from", "f", "Input file, or - for stdin")
	stringFlag(&opts.Input, "input", "i", "Input layer shortcut; reads stdin")
	stringFlag(&opts.Destination, "destination", "o", "Destination path reported to the template")
	stringFlag(&opts.Adaptation, "adaptation", "a", "Template variant suffix")
	stringFlag(&opts.PromptDir, "prompt-dir", "", "Template root override")
	stringFlag(&opts.Profile, "profile", "p", "Configuration profile")
	stringFlag(&inv.ConfigDir, "config-dir", "", "Configuration directory")
	stringFlag(&inv.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.BoolVar(verbose, "verbose", false, "Report template selection on stderr")
	fs.BoolVar(verbose, "v", false, "Report template selection on stderr")
	fs.BoolVar(help, "help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	return fs
}

// parsePromptArgs splits a prompt command line into positionals, known
// options and free-form options. --uv-<name> options and unknown
// --key=value options land in Options.Extra; unknown bare switches land in
// Options.Flags.
func parsePromptArgs(args []string) (promptInvocation, error) {
	var inv promptInvocation
	var verbose, help bool
	fs := promptFlagSet(&inv, &verbose, &help)

	extra := map[string]string{}
	switches := map[string]bool{}
	known := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			known = append(known, args[i:]...)
			break
		}
		name, value, hasValue, ok := splitOption(arg)
		if !ok || fs.Lookup(name) != nil {
			known = append(known, arg)
			continue
		}
		switch {
		case strings.HasPrefix(name, options.CustomPrefix):
			if !hasValue && i+1 < len(args) && !isOption(args[i+1]) {
				i++
				value = args[i]
			}
			extra[name] = value
		case hasValue:
			extra[name] = value
		default:
			switches[name] = true
		}
	}

	flags, positionals := splitFlagsAndPositionals(known, valueFlags(fs))
	if err := fs.Parse(flags); err != nil {
		return inv, usageErrorf("%v", err)
	}
	positionals = append(positionals, fs.Args()...)

	inv.Positionals = positionals
	switches["verbose"] = verbose
	switches["help"] = help
	inv.Options.Flags = switches
	if len(extra) > 0 {
		inv.Options.Extra = extra
	}
	return inv, nil
}

// splitOption parses -name, --name and --name=value. ok is false for
// positionals, including a bare "-".
func splitOption(arg string) (name, value string, hasValue, ok bool) {
	if !isOption(arg) {
		return "", "", false, false
	}
	trimmed := strings.TrimLeft(arg, "-")
	if trimmed == "" {
		return "", "", false, false
	}
	if k, v, found := strings.Cut(trimmed, "="); found {
		return k, v, true, true
	}
	return trimmed, "", false, true
}

func isOption(arg string) bool {
	return strings.HasPrefix(arg, "-") && arg != "-"
}

// valueFlags lists every spelling (-x and --x) of the non-boolean flags in fs.
func valueFlags(fs *flag.FlagSet) map[string]bool {
	out := map[string]bool{}
	fs.VisitAll(func(f *flag.Flag) {
		if bf, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && bf.IsBoolFlag() {
			return
		}
		out["-"+f.Name] = true
		out["--"+f.Name] = true
	})
	return out
}

// splitFlagsAndPositionals moves flags (and the values of flags listed in
// takesValue) ahead of positionals so flag.FlagSet sees them all. Everything
// after "--" is positional.
func splitFlagsAndPositionals(args []string, takesValue map[string]bool) ([]string, []string) {
	flags := make([]string, 0, len(args))
	positionals := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			positionals = append(positionals, args[i+1:]...)
			break
		}
		if !isOption(arg) {
			positionals = append(positionals, arg)
			continue
		}

		flags = append(flags, arg)
		if strings.Contains(arg, "=") {
			continue
		}
		if takesValue[arg] && i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}

	return flags, positionals
}
