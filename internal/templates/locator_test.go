package templates

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/breakdown/internal/failure"
)

func promptFS(t *testing.T, files ...string) billy.Filesystem {
	t.Helper()
	fs := memfs.New()
	for _, f := range files {
		require.NoError(t, util.WriteFile(fs, "/prompts/"+f, []byte("tpl "+f), 0o644))
	}
	return fs
}

func TestLocateDefaultInputLayer(t *testing.T) {
	l := &Locator{FS: promptFS(t, "to/project/f_project.md"), Root: "/prompts"}

	ref, err := l.Locate(Request{Directive: "to", Layer: "project"})
	require.NoError(t, err)
	assert.Equal(t, "/prompts/to/project/f_project.md", ref.Path)
	assert.Equal(t, "to/project/f_project.md", ref.RelPath)
	assert.False(t, ref.FallbackUsed)
	assert.Equal(t, []string{"to/project/f_project.md"}, ref.Attempted)
}

func TestLocateInputLayer(t *testing.T) {
	l := &Locator{FS: promptFS(t, "to/issue/f_project.md"), Root: "/prompts"}

	ref, err := l.Locate(Request{Directive: "to", Layer: "issue", InputLayer: "project"})
	require.NoError(t, err)
	assert.Equal(t, "to/issue/f_project.md", ref.RelPath)
}

func TestLocateAdaptation(t *testing.T) {
	l := &Locator{
		FS:   promptFS(t, "summary/issue/f_issue.md", "summary/issue/f_issue_strict.md"),
		Root: "/prompts",
	}

	ref, err := l.Locate(Request{Directive: "summary", Layer: "issue", Adaptation: "strict"})
	require.NoError(t, err)
	assert.Equal(t, "summary/issue/f_issue_strict.md", ref.RelPath)
	assert.False(t, ref.FallbackUsed)
}

func TestLocateAdaptationFallback(t *testing.T) {
	var buf bytes.Buffer
	l := &Locator{
		FS:     promptFS(t, "to/task/f_task.md"),
		Root:   "/prompts",
		Logger: slog.New(slog.NewJSONHandler(&buf, nil)),
	}

	ref, err := l.Locate(Request{Directive: "to", Layer: "task", Adaptation: "detailed"})
	require.NoError(t, err)
	assert.True(t, ref.FallbackUsed)
	assert.Equal(t, "to/task/f_task.md", ref.RelPath)
	assert.Equal(t, []string{"to/task/f_task_detailed.md", "to/task/f_task.md"}, ref.Attempted)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "INFO", rec["level"])
	assert.Equal(t, "detailed", rec["adaptation"])
}

func TestLocateNoFallbackWithoutAdaptation(t *testing.T) {
	l := &Locator{FS: promptFS(t, "to/task/f_task_detailed.md"), Root: "/prompts"}

	_, err := l.Locate(Request{Directive: "to", Layer: "task"})

	var pErr *failure.PromptGenerationError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, []string{"to/task/f_task.md"}, pErr.Attempted)
}

func TestLocateBothMissing(t *testing.T) {
	l := &Locator{FS: promptFS(t), Root: "/prompts"}

	_, err := l.Locate(Request{Directive: "to", Layer: "task", Adaptation: "x"})

	var pErr *failure.PromptGenerationError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, []string{"to/task/f_task_x.md", "to/task/f_task.md"}, pErr.Attempted)
}

func TestLocateDirectoryIsNotTemplate(t *testing.T) {
	fs := promptFS(t)
	require.NoError(t, fs.MkdirAll("/prompts/to/task/f_task.md", 0o755))
	l := &Locator{FS: fs, Root: "/prompts"}

	_, err := l.Locate(Request{Directive: "to", Layer: "task"})
	assert.Equal(t, failure.KindPromptGeneration, failure.KindOf(err))
}

func TestLocateRejectsEmptySegments(t *testing.T) {
	l := &Locator{FS: promptFS(t), Root: "/prompts"}

	for _, req := range []Request{
		{Layer: "task"},
		{Directive: "to"},
	} {
		_, err := l.Locate(req)
		assert.Equal(t, failure.KindPromptGeneration, failure.KindOf(err))
	}
}

func TestLocateCannotEscapeRoot(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/secret/f_x.md", []byte("secret"), 0o644))
	l := &Locator{FS: fs, Root: "/prompts"}

	_, err := l.Locate(Request{Directive: "..", Layer: "../secret", InputLayer: "x"})

	var pErr *failure.PromptGenerationError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, []string{"__/___secret/f_x.md"}, pErr.Attempted)
}

func TestSanitize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"project", "project"},
		{"to-do_1", "to-do_1"},
		{"../etc", "___etc"},
		{"a/b", "a_b"},
		{"sp ace", "sp_ace"},
		{"ünïcode", "_n_code"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Sanitize(tt.in), tt.in)
	}
}
