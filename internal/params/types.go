// Package params validates the two positional command words (directive and
// layer) against the patterns of the active profile.
package params

// DefaultProfile is used when no profile is named.
const DefaultProfile = "default"

// DirectiveType is a directive that passed validation. Only Validate
// produces non-zero values.
type DirectiveType struct {
	value string
}

// String returns the directive word.
func (d DirectiveType) String() string { return d.value }

// IsZero reports whether d was never validated.
func (d DirectiveType) IsZero() bool { return d.value == "" }

// LayerType is a layer that passed validation. Only Validate produces
// non-zero values.
type LayerType struct {
	value string
}

// String returns the layer word.
func (l LayerType) String() string { return l.value }

// IsZero reports whether l was never validated.
func (l LayerType) IsZero() bool { return l.value == "" }

// ValidatedParams is the output of Validate.
type ValidatedParams struct {
	Directive DirectiveType
	Layer     LayerType
	Profile   string
}

// NormalizeProfile maps the empty profile name to DefaultProfile.
func NormalizeProfile(profile string) string {
	if profile == "" {
		return DefaultProfile
	}
	return profile
}
