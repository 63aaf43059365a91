// Package options holds the already-tokenized option set handed to the
// prompt pipeline by its callers (CLI, HTTP API, MCP tool).
package options

import (
	"maps"
	"sort"
	"strings"
)

// CustomPrefix marks option keys that become user variables.
const CustomPrefix = "uv-"

// StdinMarker is the --from value that requests standard input explicitly.
const StdinMarker = "-"

// Options is the input boundary of the pipeline.
type Options struct {
	From        string
	Input       string
	Destination string
	Adaptation  string
	PromptDir   string
	Profile     string

	// Extra holds every other --key=value option, uv-* included.
	Extra map[string]string
	// Flags holds boolean switches (help, version, extended, verbose, ...).
	Flags map[string]bool
}

// Clone returns a deep copy.
func (o Options) Clone() Options {
	out := o
	out.Extra = maps.Clone(o.Extra)
	out.Flags = maps.Clone(o.Flags)
	return out
}

// Flag reports whether the named boolean switch is set.
func (o Options) Flag(name string) bool {
	return o.Flags[name]
}

// WithExtra returns a copy with key set to value in Extra.
func (o Options) WithExtra(key, value string) Options {
	out := o.Clone()
	if out.Extra == nil {
		out.Extra = make(map[string]string)
	}
	out.Extra[key] = value
	return out
}

// CustomKeys returns the sorted Extra keys carrying CustomPrefix.
func (o Options) CustomKeys() []string {
	keys := make([]string, 0, len(o.Extra))
	for k := range o.Extra {
		if strings.HasPrefix(k, CustomPrefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// UsesStdin reports whether --from asks for standard input.
func (o Options) UsesStdin() bool {
	return o.From == StdinMarker
}

// HasFile reports whether --from names a file.
func (o Options) HasFile() bool {
	return o.From != "" && o.From != StdinMarker
}
