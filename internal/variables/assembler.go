// Package variables builds the flat name/value set substituted into
// templates: the five standard variables plus user-supplied uv-* options.
package variables

import (
	"maps"
	"strings"

	"github.com/mattjoyce/breakdown/internal/failure"
	"github.com/mattjoyce/breakdown/internal/input"
	"github.com/mattjoyce/breakdown/internal/options"
)

// Standard variable names.
const (
	InputText       = "input_text"
	InputTextFile   = "input_text_file"
	DestinationPath = "destination_path"
	Directive       = "directive"
	Layer           = "layer"
)

// DefaultDestination is destination_path when --destination is absent.
const DefaultDestination = "stdout"

// Reserved reports whether name is a standard variable name.
func Reserved(name string) bool {
	switch name {
	case InputText, InputTextFile, DestinationPath, Directive, Layer:
		return true
	}
	return false
}

// StandardVariables is keyed by the standard names only.
type StandardVariables map[string]string

// CustomVariables is keyed by uv-prefixed names.
type CustomVariables map[string]string

// Set is the result of Assemble. All is the disjoint union of Standard and
// Custom.
type Set struct {
	Standard StandardVariables
	Custom   CustomVariables
	All      map[string]string
}

// Len returns the number of variables in All.
func (s Set) Len() int { return len(s.All) }

// Assemble collects every variable violation rather than stopping at the
// first. A non-empty error list means the Set must not be used. Directive
// and layer are read from opts.Extra when present there; use AssembleFor
// to pass validated values.
func Assemble(opts options.Options, in *input.ResolvedInput) (Set, []failure.Error) {
	return AssembleFor(opts, in, opts.Extra[Directive], opts.Extra[Layer])
}

// AssembleFor is Assemble with explicit directive and layer values.
func AssembleFor(opts options.Options, in *input.ResolvedInput, directive, layer string) (Set, []failure.Error) {
	var errs []failure.Error
	custom := make(CustomVariables)

	for _, key := range opts.CustomKeys() {
		name := strings.TrimPrefix(key, options.CustomPrefix)
		if name == "" {
			continue
		}
		value := opts.Extra[key]
		if Reserved(name) {
			errs = append(errs, &failure.ReservedVariableName{Key: key})
			continue
		}
		if value == "" {
			errs = append(errs, &failure.EmptyVariableValue{Key: key})
			continue
		}
		custom[key] = value
	}

	std := StandardVariables{
		InputText:       "",
		InputTextFile:   input.StdinLabel,
		DestinationPath: DefaultDestination,
		Directive:       directive,
		Layer:           layer,
	}
	if in != nil {
		std[InputText] = in.Text
		if in.SourceLabel != "" {
			std[InputTextFile] = in.SourceLabel
		}
	}
	if opts.Destination != "" {
		std[DestinationPath] = opts.Destination
	}

	if len(errs) > 0 {
		return Set{}, errs
	}

	all := make(map[string]string, len(std)+len(custom))
	maps.Copy(all, std)
	maps.Copy(all, custom)

	return Set{Standard: std, Custom: custom, All: all}, nil
}
