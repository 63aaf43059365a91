package input

import (
	"io"
	"os"
	"sync"
)

// Stdin is the standard-input source seen by the resolver.
type Stdin interface {
	// Available reports whether data can be read without blocking on a
	// terminal.
	Available() bool
	ReadAll() (string, error)
}

// ProcessStdin reads os.Stdin once and caches the result.
type ProcessStdin struct {
	once sync.Once
	text string
	err  error
}

// Available is false when stdin is a terminal or cannot be stat'ed.
func (p *ProcessStdin) Available() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice == 0
}

// ReadAll returns everything on stdin.
func (p *ProcessStdin) ReadAll() (string, error) {
	p.once.Do(func() {
		b, err := io.ReadAll(os.Stdin)
		p.text, p.err = string(b), err
	})
	return p.text, p.err
}

// StaticStdin serves fixed text. Used by the HTTP and MCP surfaces, which
// receive the text in the request body, and by tests.
type StaticStdin struct {
	Text    string
	Present bool
}

// NoStdin is a StaticStdin that is never available.
var NoStdin = StaticStdin{}

// Available reports Present.
func (s StaticStdin) Available() bool { return s.Present }

// ReadAll returns Text.
func (s StaticStdin) ReadAll() (string, error) { return s.Text, nil }
