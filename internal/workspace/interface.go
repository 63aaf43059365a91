// Package workspace bootstraps a project for breakdown: a config directory
// with the default profile and one starter template per directive/layer
// pair.
package workspace

import (
	"context"
)

// Options controls Init.
type Options struct {
	// Force overwrites files that already exist.
	Force bool
	// Directives and Layers name the starter templates to write. Empty means
	// the built-in vocabulary.
	Directives []string
	Layers     []string
}

// Report lists what Init did, as paths relative to the work directory.
type Report struct {
	Created     []string
	Overwritten []string
	Skipped     []string
}

// Initializer writes a starter layout into a work directory.
type Initializer interface {
	Init(ctx context.Context, opts Options) (Report, error)
}
