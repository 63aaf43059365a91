package history

import (
	"time"

	"github.com/mattjoyce/breakdown/internal/failure"
	"github.com/mattjoyce/breakdown/internal/options"
	"github.com/mattjoyce/breakdown/internal/pipeline"
)

// Surface names the entry point that produced a run.
type Surface string

const (
	SurfaceCLI Surface = "cli"
	SurfaceAPI Surface = "api"
	SurfaceMCP Surface = "mcp"
)

// Entry is one recorded pipeline run.
type Entry struct {
	ID           string    `json:"id"`
	Surface      Surface   `json:"surface"`
	Profile      string    `json:"profile"`
	Directive    string    `json:"directive,omitempty"`
	Layer        string    `json:"layer,omitempty"`
	InputLayer   string    `json:"input_layer,omitempty"`
	Adaptation   string    `json:"adaptation,omitempty"`
	Source       string    `json:"source,omitempty"`
	Destination  string    `json:"destination,omitempty"`
	Template     string    `json:"template,omitempty"`
	FallbackUsed bool      `json:"fallback_used"`
	Digest       string    `json:"digest,omitempty"`
	Stage        string    `json:"stage"`
	ErrorKind    string    `json:"error_kind,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Failed reports whether the run ended in an error.
func (e Entry) Failed() bool {
	return e.ErrorKind != "" || e.ErrorMessage != ""
}

// FromResult builds an Entry from a finished pipeline run. res may be nil
// when the pipeline could not be constructed.
func FromResult(surface Surface, opts options.Options, args []string, res *pipeline.Result, runErr error) Entry {
	e := Entry{
		Surface:     surface,
		Profile:     opts.Profile,
		Adaptation:  opts.Adaptation,
		Source:      opts.From,
		Destination: opts.Destination,
		Stage:       pipeline.StageStart.String(),
		CreatedAt:   time.Now().UTC(),
	}
	if e.Profile == "" {
		e.Profile = "default"
	}
	if len(args) > 0 {
		e.Directive = args[0]
	}
	if len(args) > 1 {
		e.Layer = args[1]
	}
	if opts.Input != "" && e.Source == "" {
		e.Source = "stdin"
	}

	if res != nil {
		e.ID = res.RunID
		e.Stage = res.Stage.String()
		if !res.Params.Directive.IsZero() {
			e.Directive = res.Params.Directive.String()
			e.Layer = res.Params.Layer.String()
			e.Profile = res.Params.Profile
		}
		e.InputLayer = res.InputLayer
		if res.Input.SourceLabel != "" {
			e.Source = res.Input.SourceLabel
		}
		e.Template = res.Template.RelPath
		e.FallbackUsed = res.Template.FallbackUsed
		e.Digest = res.Digest
		if runErr != nil {
			e.Stage = res.FailedAt.String()
		}
	}
	if runErr != nil {
		e.ErrorKind = string(failure.KindOf(runErr))
		e.ErrorMessage = runErr.Error()
	}
	return e
}
