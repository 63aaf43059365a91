// Package input decides where the prompt input text comes from: a file named
// by --from or standard input.
package input

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/helper/chroot"
	"github.com/go-git/go-billy/v5/util"

	"github.com/mattjoyce/breakdown/internal/failure"
	"github.com/mattjoyce/breakdown/internal/options"
)

// StdinLabel is the SourceLabel of text read from standard input.
const StdinLabel = "stdin"

// ErrOutsideWorkDir is the cause of a FileNotFound for a confined --from
// that is absolute or leaves the work directory.
var ErrOutsideWorkDir = errors.New("path is outside the work directory")

// ResolvedInput is the text the prompt is built from.
type ResolvedInput struct {
	Text string
	// SourceLabel is the --from value as given, or StdinLabel.
	SourceLabel string
	// Path is the absolute file path; empty for stdin.
	Path      string
	FromStdin bool
}

// Resolver resolves options to an input. FS is read only.
type Resolver struct {
	FS      billy.Filesystem
	WorkDir string
	Stdin   Stdin
	// Confine restricts --from to relative paths inside WorkDir.
	Confine bool
}

// Resolve applies the checks in order: conflict, presence, file existence,
// destination.
func (r *Resolver) Resolve(opts options.Options) (ResolvedInput, error) {
	stdin := r.Stdin
	if stdin == nil {
		stdin = NoStdin
	}

	if opts.From != "" && opts.Input != "" {
		return ResolvedInput{}, &failure.ConflictingOptions{Options: []string{"--from", "--input"}}
	}

	switch {
	case opts.Input != "":
		var text string
		if stdin.Available() {
			var err error
			if text, err = readStdin(stdin); err != nil {
				return ResolvedInput{}, err
			}
		}
		return ResolvedInput{Text: text, SourceLabel: StdinLabel, FromStdin: true}, nil

	case opts.UsesStdin():
		if !stdin.Available() {
			return ResolvedInput{}, &failure.MissingRequired{
				Field: "stdin",
				Hint:  "--from - was given but nothing is piped to standard input",
			}
		}
		text, err := readStdin(stdin)
		if err != nil {
			return ResolvedInput{}, err
		}
		return ResolvedInput{Text: text, SourceLabel: StdinLabel, FromStdin: true}, nil

	case opts.From == "":
		if stdin.Available() {
			text, err := readStdin(stdin)
			if err != nil {
				return ResolvedInput{}, err
			}
			if text != "" {
				return ResolvedInput{Text: text, SourceLabel: StdinLabel, FromStdin: true}, nil
			}
		}
		return ResolvedInput{}, &failure.MissingRequired{
			Field: "input",
			Hint:  "no --from, no --input, no stdin",
		}
	}

	fs, path, err := r.locate(opts.From)
	if err != nil {
		return ResolvedInput{}, &failure.FileNotFound{Path: opts.From, Cause: err}
	}
	fi, err := fs.Stat(path)
	if err != nil {
		return ResolvedInput{}, &failure.FileNotFound{Path: opts.From, Cause: err}
	}
	if !fi.Mode().IsRegular() {
		return ResolvedInput{}, &failure.FileNotFound{
			Path:  opts.From,
			Cause: fmt.Errorf("%s is not a regular file", path),
		}
	}

	if opts.Destination == "" {
		return ResolvedInput{}, &failure.MissingRequired{
			Field: "destination",
			Hint:  "--from <file> requires --destination",
		}
	}

	data, err := util.ReadFile(fs, path)
	if err != nil {
		return ResolvedInput{}, &failure.FileNotFound{Path: opts.From, Cause: err}
	}

	return ResolvedInput{
		Text:        string(data),
		SourceLabel: opts.From,
		Path:        r.absolute(opts.From),
	}, nil
}

// locate returns the filesystem and path to read --from through. Confined
// resolvers read through a chroot of WorkDir.
func (r *Resolver) locate(from string) (billy.Filesystem, string, error) {
	if !r.Confine {
		return r.FS, r.absolute(from), nil
	}
	if filepath.IsAbs(from) {
		return nil, "", ErrOutsideWorkDir
	}
	rel := filepath.Clean(from)
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, "", ErrOutsideWorkDir
	}
	return chroot.New(r.FS, r.absolute(".")), filepath.ToSlash(rel), nil
}

func (r *Resolver) absolute(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	base := r.WorkDir
	if base == "" {
		base = "/"
	}
	return filepath.Join(base, p)
}

func readStdin(s Stdin) (string, error) {
	text, err := s.ReadAll()
	if err != nil {
		return "", &failure.MissingRequired{Field: "stdin", Hint: fmt.Sprintf("read failed: %v", err)}
	}
	return text, nil
}
