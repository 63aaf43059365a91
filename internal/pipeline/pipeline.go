// Package pipeline runs one prompt generation: parameter validation, input
// resolution, variable assembly, template location and rendering, in that
// order, stopping at the first failing stage.
package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode"

	billy "github.com/go-git/go-billy/v5"
	"github.com/google/uuid"

	"github.com/mattjoyce/breakdown/internal/failure"
	"github.com/mattjoyce/breakdown/internal/input"
	"github.com/mattjoyce/breakdown/internal/log"
	"github.com/mattjoyce/breakdown/internal/options"
	"github.com/mattjoyce/breakdown/internal/params"
	"github.com/mattjoyce/breakdown/internal/render"
	"github.com/mattjoyce/breakdown/internal/templates"
	"github.com/mattjoyce/breakdown/internal/variables"
)

// Deps wires a Pipeline to its collaborators.
type Deps struct {
	Store params.PatternStore
	// Rule vets directive/layer pairs; nil accepts all.
	Rule    params.CombinationRule
	FS      billy.Filesystem
	WorkDir string
	Stdin   input.Stdin
	// PromptRoot is the template root used when neither --prompt-dir nor a
	// profile override applies. Relative roots resolve against WorkDir.
	PromptRoot string
	// ProfileRoots maps profile names to their prompt_base_dir override.
	ProfileRoots map[string]string
	// Confine keeps request-supplied paths inside WorkDir: --from must be
	// relative and must not climb out, and --prompt-dir is ignored.
	Confine bool
	Logger  *slog.Logger
}

// Result is the outcome of Run. On failure it holds whatever the completed
// stages produced.
type Result struct {
	RunID string
	Stage Stage
	// FailedAt is the last stage reached before a failure.
	FailedAt   Stage
	Params     params.ValidatedParams
	InputLayer string
	Input      input.ResolvedInput
	Variables  variables.Set
	Template   templates.Reference
	Content    string
	Digest     string
}

// Pipeline is built fresh per invocation and runs once.
type Pipeline struct {
	deps Deps
}

// New returns a Pipeline over deps.
func New(deps Deps) *Pipeline {
	return &Pipeline{deps: deps}
}

// Run executes every stage for args and opts. The returned error, if any,
// is a failure.Error or a context error.
func (p *Pipeline) Run(ctx context.Context, args []string, opts options.Options) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), Stage: StageStart}
	logger := p.logger().With(slog.String("run_id", res.RunID))

	fail := func(err error) (*Result, error) {
		res.FailedAt = res.Stage
		res.Stage = StageFailed
		logger.Debug("pipeline failed", "stage", res.FailedAt.String(), "kind", string(failure.KindOf(err)), "error", err)
		return res, err
	}
	advance := func(s Stage) error {
		res.Stage = s
		logger.Debug("stage complete", "stage", s.String())
		return ctx.Err()
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	// params
	if err := params.CheckCount(args); err != nil {
		return fail(err)
	}
	vp, err := params.ValidateWithRule(p.deps.Store, p.deps.Rule, args[0], args[1], opts.Profile)
	if err != nil {
		return fail(err)
	}
	res.Params = vp
	if err := advance(StageParamsValidated); err != nil {
		return fail(err)
	}

	// input
	resolver := &input.Resolver{FS: p.deps.FS, WorkDir: p.deps.WorkDir, Stdin: p.deps.Stdin, Confine: p.deps.Confine}
	in, err := resolver.Resolve(opts)
	if err != nil {
		return fail(err)
	}
	res.Input = in
	res.InputLayer = p.inputLayer(vp, opts)
	if err := advance(StageInputResolved); err != nil {
		return fail(err)
	}

	// variables
	set, errs := variables.AssembleFor(opts, &in, vp.Directive.String(), vp.Layer.String())
	if len(errs) > 0 {
		return fail(&failure.VariableProcessingError{Errors: errs})
	}
	res.Variables = set
	if err := advance(StageVariablesAssembled); err != nil {
		return fail(err)
	}

	// template
	locator := &templates.Locator{
		FS:     p.deps.FS,
		Root:   p.promptRoot(opts, vp.Profile),
		Logger: logger.With(slog.String("component", "templates")),
	}
	ref, err := locator.Locate(templates.Request{
		Directive:  vp.Directive.String(),
		Layer:      vp.Layer.String(),
		InputLayer: res.InputLayer,
		Adaptation: opts.Adaptation,
	})
	if err != nil {
		return fail(err)
	}
	res.Template = ref
	if err := advance(StageTemplateLocated); err != nil {
		return fail(err)
	}

	// render
	renderer := &render.Renderer{FS: p.deps.FS}
	out, err := renderer.Render(ref, set.All)
	if err != nil {
		return fail(err)
	}
	res.Content = out.Content
	res.Digest = out.Digest
	res.Stage = StageRendered

	logger.Info("prompt rendered",
		"directive", vp.Directive.String(),
		"layer", vp.Layer.String(),
		"template", ref.RelPath,
		"fallback", ref.FallbackUsed,
	)
	return res, nil
}

// inputLayer picks --input, else a layer word found in the --from file name,
// else the validated layer.
func (p *Pipeline) inputLayer(vp params.ValidatedParams, opts options.Options) string {
	if opts.Input != "" {
		return opts.Input
	}
	if opts.HasFile() {
		set, err := p.deps.Store.Patterns(vp.Profile)
		if err == nil {
			base := strings.TrimSuffix(filepath.Base(opts.From), filepath.Ext(opts.From))
			words := strings.FieldsFunc(base, func(r rune) bool {
				return !unicode.IsLetter(r) && !unicode.IsDigit(r)
			})
			for _, w := range words {
				if params.MatchLayer(set, w) {
					return w
				}
			}
		}
	}
	return vp.Layer.String()
}

func (p *Pipeline) promptRoot(opts options.Options, profile string) string {
	root := p.deps.PromptRoot
	if r := p.deps.ProfileRoots[profile]; r != "" {
		root = r
	}
	if opts.PromptDir != "" && !p.deps.Confine {
		root = opts.PromptDir
	}
	if root == "" {
		root = "prompts"
	}
	if filepath.IsAbs(root) {
		return filepath.Clean(root)
	}
	base := p.deps.WorkDir
	if base == "" {
		base = "/"
	}
	return filepath.Join(base, root)
}

func (p *Pipeline) logger() *slog.Logger {
	if p.deps.Logger != nil {
		return p.deps.Logger
	}
	return log.WithComponent("pipeline")
}
