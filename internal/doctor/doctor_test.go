package doctor

import (
	"strings"
	"testing"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"

	"github.com/mattjoyce/breakdown/internal/config"
)

func validConfig() *config.Config {
	cfg := config.Defaults()
	cfg.SourcePath = "/cfg/config.yaml"
	cfg.Serve.APIKey = "secret"
	cfg.Profiles = map[string]config.ProfileConfig{
		"default": {Two: config.TwoParams{
			Directive: config.ParamPatterns{Patterns: []string{"to"}},
			Layer:     config.ParamPatterns{Patterns: []string{"project", "issue"}},
		}},
	}
	return cfg
}

func promptTree(t *testing.T, dirs ...string) billy.Filesystem {
	t.Helper()
	fs := memfs.New()
	for _, d := range dirs {
		if err := fs.MkdirAll("/work/.agent/breakdown/prompts/"+d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return fs
}

func hasIssue(issues []Issue, category, substr string) bool {
	for _, i := range issues {
		if i.Category == category && strings.Contains(i.Message, substr) {
			return true
		}
	}
	return false
}

func TestValidate_ValidConfig(t *testing.T) {
	t.Parallel()
	d := New(validConfig(), promptTree(t, "to/project", "to/issue"), "/work")
	r := d.Validate()
	if !r.Valid {
		t.Fatalf("expected valid, got errors: %v", r.Errors)
	}
	if len(r.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", r.Warnings)
	}
}

func TestValidate_MissingTemplateDir(t *testing.T) {
	t.Parallel()
	d := New(validConfig(), promptTree(t, "to/project"), "/work")
	r := d.Validate()
	if !r.Valid {
		t.Fatalf("missing template dirs should only warn: %v", r.Errors)
	}
	if !hasIssue(r.Warnings, "templates", "no template directory for to issue") {
		t.Errorf("expected template warning, got %v", r.Warnings)
	}
}

func TestValidate_MissingPromptRoot(t *testing.T) {
	t.Parallel()
	d := New(validConfig(), memfs.New(), "/work")
	r := d.Validate()
	if !hasIssue(r.Warnings, "templates", "does not exist") {
		t.Errorf("expected prompt root warning, got %v", r.Warnings)
	}
}

func TestValidate_RegexPatternsSkipTemplateCheck(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Profiles["default"] = config.ProfileConfig{Two: config.TwoParams{
		Directive: config.ParamPatterns{Patterns: []string{"to|summary"}},
		Layer:     config.ParamPatterns{Patterns: []string{"project"}},
	}}
	r := New(cfg, promptTree(t), "/work").Validate()
	if hasIssue(r.Warnings, "templates", "no template directory") {
		t.Errorf("regex patterns should not be mapped to directories: %v", r.Warnings)
	}
}

func TestValidate_ProfileErrors(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Profiles["broken"] = config.ProfileConfig{Two: config.TwoParams{
		Directive: config.ParamPatterns{Patterns: []string{"web(", "web("}},
	}}
	r := New(cfg, promptTree(t, "to/project", "to/issue"), "/work").Validate()
	if r.Valid {
		t.Fatal("expected invalid")
	}
	if !hasIssue(r.Errors, "profiles", "does not compile") {
		t.Errorf("expected compile error, got %v", r.Errors)
	}
	if !hasIssue(r.Errors, "profiles", "defines no layer patterns") {
		t.Errorf("expected missing layer error, got %v", r.Errors)
	}
	if !hasIssue(r.Warnings, "profiles", "listed twice") {
		t.Errorf("expected duplicate warning, got %v", r.Warnings)
	}
}

func TestValidate_ServeAndHistory(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Serve.APIKey = "${UNSET_KEY}"
	cfg.Serve.Listen = ""
	cfg.History = config.HistoryConfig{Enabled: true}

	r := New(cfg, promptTree(t, "to/project", "to/issue"), "/work").Validate()
	if r.Valid {
		t.Fatal("expected invalid")
	}
	for _, want := range []struct{ category, substr string }{
		{"serve", "serve.listen is required"},
		{"env_vars", "unresolved environment variable"},
		{"history", "history.path is required"},
	} {
		if !hasIssue(r.Errors, want.category, want.substr) {
			t.Errorf("missing %s error %q in %v", want.category, want.substr, r.Errors)
		}
	}
}

func TestValidate_NoConfigWarnsBuiltin(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	cfg.Serve.APIKey = "k"
	r := New(cfg, promptTree(t, "summary/project"), "/work").Validate()
	if !r.Valid {
		t.Fatalf("defaults should be valid: %v", r.Errors)
	}
	if !hasIssue(r.Warnings, "profiles", "built-in default profile") {
		t.Errorf("expected builtin warning, got %v", r.Warnings)
	}
	if !hasIssue(r.Warnings, "templates", "no template directory for to project") {
		t.Errorf("expected builtin template warnings, got %v", r.Warnings)
	}
}

func TestFormatHuman(t *testing.T) {
	t.Parallel()
	r := &Result{
		Valid:    false,
		Errors:   []Issue{{Category: "serve", Field: "serve.listen", Message: "required"}},
		Warnings: []Issue{{Category: "templates", Message: "missing"}},
	}
	out := FormatHuman(r)
	if !strings.Contains(out, "Configuration invalid (1 error(s), 1 warning(s))") {
		t.Errorf("unexpected header: %q", out)
	}
	if !strings.Contains(out, "ERROR [serve] serve.listen: required") {
		t.Errorf("missing error line: %q", out)
	}
	if !strings.Contains(out, "WARN  [templates] missing") {
		t.Errorf("missing warning line: %q", out)
	}

	if got := FormatHuman(&Result{Valid: true}); got != "Configuration valid.\n" {
		t.Errorf("FormatHuman(valid) = %q", got)
	}
}

func TestFormatJSON(t *testing.T) {
	t.Parallel()
	out, err := FormatJSON(FromLoadError(errString("boom")))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"valid": false`) || !strings.Contains(out, "boom") {
		t.Errorf("unexpected JSON: %s", out)
	}
}

type errString string

func (e errString) Error() string { return string(e) }
