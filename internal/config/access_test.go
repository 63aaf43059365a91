package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPath(t *testing.T) {
	cfg := Defaults()
	cfg.Profiles = map[string]ProfileConfig{
		"default": {Two: TwoParams{
			Directive: ParamPatterns{Patterns: []string{"to", "summary"}},
			Layer:     ParamPatterns{Patterns: []string{"project"}},
		}},
		"web-search": {Two: TwoParams{
			Directive: ParamPatterns{Patterns: []string{"web"}},
			Layer:     ParamPatterns{Patterns: []string{"db"}},
		}},
	}

	tests := []struct {
		name    string
		path    string
		want    any
		wantErr bool
	}{
		{
			name: "root field",
			path: "log_level",
			want: "warn",
		},
		{
			name: "nested field",
			path: "app_prompt.base_dir",
			want: "prompts",
		},
		{
			name: "list element",
			path: "profiles.default.two.directive.patterns.1",
			want: "summary",
		},
		{
			name: "hyphenated profile",
			path: "profiles.web-search.two.layer.patterns",
			want: []any{"db"},
		},
		{
			name: "jsonpath passthrough",
			path: "$.serve.listen",
			want: "127.0.0.1:8765",
		},
		{
			name:    "missing key",
			path:    "profiles.nope",
			wantErr: true,
		},
		{
			name:    "invalid jsonpath",
			path:    "$[",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cfg.GetPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetPathWildcard(t *testing.T) {
	cfg := Defaults()
	cfg.Profiles = map[string]ProfileConfig{
		"a": {Two: TwoParams{Directive: ParamPatterns{Patterns: []string{"to"}}}},
		"b": {Two: TwoParams{Directive: ParamPatterns{Patterns: []string{"to"}}}},
	}

	got, err := cfg.GetPath("$.profiles.*.two.directive.patterns[0]")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestDotToJSONPath(t *testing.T) {
	assert.Equal(t, "$['a']['b'][0]", dotToJSONPath("a.b.0"))
	assert.Equal(t, "$['a']", dotToJSONPath(".a."))
}
