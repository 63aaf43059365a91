// Package render substitutes variables into a located template.
package render

import (
	"encoding/hex"
	"regexp"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/zeebo/blake3"

	"github.com/mattjoyce/breakdown/internal/failure"
	"github.com/mattjoyce/breakdown/internal/options"
	"github.com/mattjoyce/breakdown/internal/templates"
)

// placeholder matches {{ name }} and {name}. Names may contain letters,
// digits, '_' and '-'.
var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_-]+)\s*\}\}|\{([A-Za-z0-9_-]+)\}`)

// Rendered is the final prompt text.
type Rendered struct {
	Content string
	// Digest is "blake3:<hex>" of Content.
	Digest string
}

// Renderer reads templates from FS.
type Renderer struct {
	FS billy.Filesystem
}

// Render reads ref and substitutes vars in a single pass.
func (r *Renderer) Render(ref templates.Reference, vars map[string]string) (Rendered, error) {
	data, err := util.ReadFile(r.FS, ref.Path)
	if err != nil {
		return Rendered{}, &failure.PromptGenerationError{
			Reason:    "cannot read template " + ref.Path,
			Attempted: ref.Attempted,
			Cause:     err,
		}
	}
	content := Substitute(string(data), vars)
	return Rendered{Content: content, Digest: Digest(content)}, nil
}

// Substitute replaces known placeholders and leaves unknown ones literal.
// A uv-prefixed variable is also reachable by its bare name unless a
// variable of that bare name exists.
func Substitute(text string, vars map[string]string) string {
	return placeholder.ReplaceAllStringFunc(text, func(m string) string {
		sub := placeholder.FindStringSubmatch(m)
		name := sub[1]
		if name == "" {
			name = sub[2]
		}
		if v, ok := lookup(vars, name); ok {
			return v
		}
		return m
	})
}

func lookup(vars map[string]string, name string) (string, bool) {
	if v, ok := vars[name]; ok {
		return v, true
	}
	if strings.HasPrefix(name, options.CustomPrefix) {
		return "", false
	}
	v, ok := vars[options.CustomPrefix+name]
	return v, ok
}

// Digest returns "blake3:<hex>" of s.
func Digest(s string) string {
	sum := blake3.Sum256([]byte(s))
	return "blake3:" + hex.EncodeToString(sum[:])
}
