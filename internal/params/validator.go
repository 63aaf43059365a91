package params

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/mattjoyce/breakdown/internal/failure"
)

// ExpectedCount is the number of positional words a prompt command takes.
const ExpectedCount = 2

// CombinationRule vets a directive/layer pair after both matched. It returns
// a non-empty reason to reject the pair.
type CombinationRule func(directive, layer string) string

// AcceptAll is the default CombinationRule.
func AcceptAll(string, string) string { return "" }

// CheckCount verifies the positional word count.
func CheckCount(args []string) error {
	if len(args) != ExpectedCount {
		return &failure.InvalidParameterCount{Received: len(args), Expected: ExpectedCount}
	}
	return nil
}

// Validate checks rawDirective and rawLayer against the patterns of profile.
// The directive is checked before the layer.
func Validate(store PatternStore, rawDirective, rawLayer, profile string) (ValidatedParams, error) {
	return ValidateWithRule(store, AcceptAll, rawDirective, rawLayer, profile)
}

// ValidateWithRule is Validate with a combination rule applied last.
func ValidateWithRule(store PatternStore, rule CombinationRule, rawDirective, rawLayer, profile string) (ValidatedParams, error) {
	profile = NormalizeProfile(profile)

	set, err := store.Patterns(profile)
	if err != nil {
		return ValidatedParams{}, err
	}
	if len(set.Directive) == 0 {
		return ValidatedParams{}, &failure.PatternNotDefined{Profile: profile, Parameter: "directive"}
	}
	if len(set.Layer) == 0 {
		return ValidatedParams{}, &failure.PatternNotDefined{Profile: profile, Parameter: "layer"}
	}

	ok, err := matchAny(set.Directive, rawDirective, profile, "directive")
	if err != nil {
		return ValidatedParams{}, err
	}
	if !ok {
		return ValidatedParams{}, &failure.InvalidDirectiveType{
			Value:      rawDirective,
			ValidTypes: slices.Clone(set.Directive),
		}
	}

	ok, err = matchAny(set.Layer, rawLayer, profile, "layer")
	if err != nil {
		return ValidatedParams{}, err
	}
	if !ok {
		return ValidatedParams{}, &failure.InvalidLayerType{
			Value:      rawLayer,
			ValidTypes: slices.Clone(set.Layer),
		}
	}

	if rule != nil {
		if reason := rule(rawDirective, rawLayer); reason != "" {
			return ValidatedParams{}, &failure.InvalidLayerType{
				Value:      rawLayer,
				ValidTypes: slices.Clone(set.Layer),
				Reason:     fmt.Sprintf("combination %s/%s rejected: %s", rawDirective, rawLayer, reason),
			}
		}
	}

	return ValidatedParams{
		Directive: DirectiveType{value: rawDirective},
		Layer:     LayerType{value: rawLayer},
		Profile:   profile,
	}, nil
}

// MatchLayer reports whether value is a layer word of set.
func MatchLayer(set PatternSet, value string) bool {
	ok, err := matchAny(set.Layer, value, "", "layer")
	return ok && err == nil
}

// Compile anchors and compiles a single pattern.
func Compile(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("^(?:" + pattern + ")$")
}

func matchAny(patterns []string, value, profile, parameter string) (bool, error) {
	if value == "" {
		return false, nil
	}
	for _, p := range patterns {
		if strings.TrimSpace(p) == "" {
			continue
		}
		re, err := Compile(p)
		if err != nil {
			return false, &failure.ConfigurationValidationError{
				Field:  fmt.Sprintf("profiles.%s.two.%s.patterns", profile, parameter),
				Reason: fmt.Sprintf("pattern %q does not compile", p),
				Cause:  err,
			}
		}
		if re.MatchString(value) {
			return true, nil
		}
	}
	return false, nil
}
