// Package templates maps a validated directive/layer pair to a template file
// under the prompt root.
package templates

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/helper/chroot"

	"github.com/mattjoyce/breakdown/internal/failure"
)

// Request names the template to locate.
type Request struct {
	Directive string
	Layer     string
	// InputLayer defaults to Layer.
	InputLayer string
	Adaptation string
}

// Reference is an existing template file.
type Reference struct {
	// Path is the absolute path on the underlying filesystem.
	Path string
	// RelPath is relative to the prompt root.
	RelPath      string
	FallbackUsed bool
	// Attempted lists every RelPath tried, in order.
	Attempted []string
}

// Locator resolves templates under Root.
type Locator struct {
	FS     billy.Filesystem
	Root   string
	Logger *slog.Logger
}

// FileName returns f_<inputLayer>[_<adaptation>].md.
func FileName(inputLayer, adaptation string) string {
	if adaptation == "" {
		return "f_" + inputLayer + ".md"
	}
	return "f_" + inputLayer + "_" + adaptation + ".md"
}

// Locate finds the template for req. When an adaptation is requested and its
// file is missing, the unadapted file is tried once.
func (l *Locator) Locate(req Request) (Reference, error) {
	if req.InputLayer == "" {
		req.InputLayer = req.Layer
	}

	for _, seg := range [][2]string{
		{"directive", req.Directive},
		{"layer", req.Layer},
		{"input layer", req.InputLayer},
	} {
		if seg[1] == "" {
			return Reference{}, &failure.PromptGenerationError{Reason: seg[0] + " is empty"}
		}
	}

	dir := path.Join(Sanitize(req.Directive), Sanitize(req.Layer))
	inputLayer := Sanitize(req.InputLayer)
	jail := chroot.New(l.FS, l.Root)

	candidates := []string{path.Join(dir, FileName(inputLayer, ""))}
	if req.Adaptation != "" {
		adapted := path.Join(dir, FileName(inputLayer, Sanitize(req.Adaptation)))
		candidates = []string{adapted, candidates[0]}
	}

	var attempted []string
	for i, rel := range candidates {
		attempted = append(attempted, rel)
		ok, err := isFile(jail, rel)
		if err != nil {
			return Reference{}, &failure.PromptGenerationError{
				Reason:    "template lookup failed",
				Attempted: attempted,
				Cause:     err,
			}
		}
		if !ok {
			continue
		}
		ref := Reference{
			Path:         filepath.Join(l.Root, filepath.FromSlash(rel)),
			RelPath:      rel,
			FallbackUsed: i > 0,
			Attempted:    attempted,
		}
		if ref.FallbackUsed {
			l.logger().Info("adaptation template missing, using fallback",
				"adaptation", req.Adaptation,
				"missing", attempted[0],
				"template", rel,
			)
		}
		return ref, nil
	}

	return Reference{}, &failure.PromptGenerationError{
		Reason:    fmt.Sprintf("template not found under %s", l.Root),
		Attempted: attempted,
	}
}

func (l *Locator) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

func isFile(fs billy.Filesystem, name string) (bool, error) {
	fi, err := fs.Stat(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return fi.Mode().IsRegular(), nil
}
