package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/breakdown/internal/failure"
	"github.com/mattjoyce/breakdown/internal/input"
	"github.com/mattjoyce/breakdown/internal/options"
	"github.com/mattjoyce/breakdown/internal/params"
	"github.com/mattjoyce/breakdown/internal/params/mocks"
)

const projectTemplate = "# Breakdown to {layer}\n\nSource: {input_text_file}\nWrite to: {destination_path}\n\n{{ input_text }}\n"

func fixtureFS(t *testing.T) billy.Filesystem {
	t.Helper()
	fs := memfs.New()
	files := [][2]string{
		{"/work/input.md", "# Project X\nShip it."},
		{"/work/notes/issue_list.md", "- bug A"},
		{"/work/prompts/to/project/f_project.md", projectTemplate},
		{"/work/prompts/to/task/f_task.md", "task from {input_text}"},
		{"/work/prompts/to/task/f_issue.md", "tasks for issue: {input_text} by {author}"},
		{"/work/prompts/summary/issue/f_issue_brief.md", "brief {{input_text}}"},
		{"/work/prompts/summary/issue/f_issue.md", "full {{input_text}}"},
		{"/work/alt/to/project/f_project.md", "alt {input_text}"},
	}
	for _, f := range files {
		require.NoError(t, util.WriteFile(fs, f[0], []byte(f[1]), 0o644))
	}
	return fs
}

func newPipeline(t *testing.T, stdin input.Stdin) *Pipeline {
	t.Helper()
	return New(Deps{
		Store:      params.BuiltinStore{},
		FS:         fixtureFS(t),
		WorkDir:    "/work",
		Stdin:      stdin,
		PromptRoot: "prompts",
		Logger:     slog.New(slog.NewJSONHandler(io.Discard, nil)),
	})
}

func TestRunToProject(t *testing.T) {
	p := newPipeline(t, input.NoStdin)

	res, err := p.Run(context.Background(), []string{"to", "project"}, options.Options{
		From:        "input.md",
		Destination: "out/project.md",
	})
	require.NoError(t, err)

	assert.Equal(t, StageRendered, res.Stage)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, "to", res.Params.Directive.String())
	assert.Equal(t, "project", res.Params.Layer.String())
	assert.Equal(t, "to/project/f_project.md", res.Template.RelPath)
	assert.Equal(t,
		"# Breakdown to project\n\nSource: input.md\nWrite to: out/project.md\n\n# Project X\nShip it.\n",
		res.Content)
	assert.Contains(t, res.Digest, "blake3:")
}

func TestRunEmptyArgs(t *testing.T) {
	p := newPipeline(t, input.NoStdin)

	res, err := p.Run(context.Background(), []string{}, options.Options{})

	var cErr *failure.InvalidParameterCount
	require.True(t, errors.As(err, &cErr))
	assert.Equal(t, 0, cErr.Received)
	assert.Equal(t, 2, cErr.Expected)
	assert.Equal(t, StageFailed, res.Stage)
	assert.Equal(t, StageStart, res.FailedAt)
}

func TestRunMissingFile(t *testing.T) {
	p := newPipeline(t, input.NoStdin)

	res, err := p.Run(context.Background(), []string{"to", "project"}, options.Options{
		From:        "nope.md",
		Destination: "out.md",
	})
	assert.Equal(t, failure.KindFileNotFound, failure.KindOf(err))
	assert.Equal(t, StageParamsValidated, res.FailedAt)
}

func TestRunStdinWithInputShortcut(t *testing.T) {
	p := newPipeline(t, input.StaticStdin{Text: "piped issue", Present: true})

	res, err := p.Run(context.Background(), []string{"to", "task"}, options.Options{
		Input: "issue",
		Extra: map[string]string{"uv-author": "sam"},
	})
	require.NoError(t, err)
	assert.Equal(t, "issue", res.InputLayer)
	assert.Equal(t, "to/task/f_issue.md", res.Template.RelPath)
	assert.Equal(t, "tasks for issue: piped issue by sam", res.Content)
}

func TestRunInfersInputLayerFromFileName(t *testing.T) {
	p := newPipeline(t, input.NoStdin)

	res, err := p.Run(context.Background(), []string{"to", "task"}, options.Options{
		From:        "notes/issue_list.md",
		Destination: "tasks.md",
	})
	require.NoError(t, err)
	assert.Equal(t, "issue", res.InputLayer)
	assert.Equal(t, "to/task/f_issue.md", res.Template.RelPath)
}

func TestRunAdaptation(t *testing.T) {
	tests := []struct {
		name         string
		adaptation   string
		wantRel      string
		wantFallback bool
		wantContent  string
	}{
		{"adapted present", "brief", "summary/issue/f_issue_brief.md", false, "brief body"},
		{"adapted missing", "verbose", "summary/issue/f_issue.md", true, "full body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPipeline(t, input.StaticStdin{Text: "body", Present: true})

			res, err := p.Run(context.Background(), []string{"summary", "issue"}, options.Options{
				Adaptation: tt.adaptation,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantRel, res.Template.RelPath)
			assert.Equal(t, tt.wantFallback, res.Template.FallbackUsed)
			assert.Equal(t, tt.wantContent, res.Content)
		})
	}
}

func TestRunVariableErrorsWrapped(t *testing.T) {
	p := newPipeline(t, input.StaticStdin{Text: "x", Present: true})

	res, err := p.Run(context.Background(), []string{"to", "project"}, options.Options{
		Extra: map[string]string{"uv-layer": "x", "uv-empty": ""},
	})

	var vErr *failure.VariableProcessingError
	require.True(t, errors.As(err, &vErr))
	require.Len(t, vErr.Errors, 2)
	assert.Equal(t, failure.KindEmptyVariableValue, vErr.Errors[0].Kind())
	assert.Equal(t, failure.KindReservedVariableName, vErr.Errors[1].Kind())
	assert.Equal(t, StageInputResolved, res.FailedAt)
}

func TestRunPromptDirOverride(t *testing.T) {
	p := newPipeline(t, input.StaticStdin{Text: "in", Present: true})

	res, err := p.Run(context.Background(), []string{"to", "project"}, options.Options{PromptDir: "alt"})
	require.NoError(t, err)
	assert.Equal(t, "/work/alt/to/project/f_project.md", res.Template.Path)
	assert.Equal(t, "alt in", res.Content)
}

func TestRunConfinedIgnoresPromptDir(t *testing.T) {
	p := newPipeline(t, input.NoStdin)
	p.deps.Confine = true

	res, err := p.Run(context.Background(), []string{"to", "project"}, options.Options{
		From:        "input.md",
		Destination: "out.md",
		PromptDir:   "alt",
	})
	require.NoError(t, err)
	assert.Equal(t, "/work/prompts/to/project/f_project.md", res.Template.Path)

	_, err = p.Run(context.Background(), []string{"to", "project"}, options.Options{
		From:        "../work/input.md",
		Destination: "out.md",
	})
	assert.Equal(t, failure.KindFileNotFound, failure.KindOf(err))
	assert.ErrorIs(t, err, input.ErrOutsideWorkDir)
}

func TestRunProfileRoot(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockPatternStore(ctrl)
	store.EXPECT().Patterns("alt").Return(params.Builtin(), nil).AnyTimes()

	p := New(Deps{
		Store:        store,
		FS:           fixtureFS(t),
		WorkDir:      "/work",
		Stdin:        input.StaticStdin{Text: "in", Present: true},
		PromptRoot:   "prompts",
		ProfileRoots: map[string]string{"alt": "/work/alt"},
	})

	res, err := p.Run(context.Background(), []string{"to", "project"}, options.Options{Profile: "alt"})
	require.NoError(t, err)
	assert.Equal(t, "alt", res.Params.Profile)
	assert.Equal(t, "alt in", res.Content)
}

func TestRunTemplateMissing(t *testing.T) {
	p := newPipeline(t, input.StaticStdin{Text: "in", Present: true})

	res, err := p.Run(context.Background(), []string{"defect", "project"}, options.Options{})
	assert.Equal(t, failure.KindPromptGeneration, failure.KindOf(err))
	assert.Equal(t, StageVariablesAssembled, res.FailedAt)
}

func TestRunCanceledContext(t *testing.T) {
	p := newPipeline(t, input.NoStdin)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := p.Run(ctx, []string{"to", "project"}, options.Options{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StageFailed, res.Stage)
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "rendered", StageRendered.String())
	assert.Equal(t, "failed", StageFailed.String())
	assert.Equal(t, "unknown", Stage(99).String())
}
