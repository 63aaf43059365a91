package api

import (
	"time"

	"github.com/mattjoyce/breakdown/internal/history"
)

// PromptRequest is the JSON body for POST /v1/prompts. Field names mirror
// the CLI options; InputText stands in for standard input. From must be
// relative to the server's work directory.
type PromptRequest struct {
	Directive   string  `json:"directive"`
	Layer       string  `json:"layer"`
	From        string  `json:"from,omitempty"`
	Input       string  `json:"input,omitempty"`
	InputText   *string `json:"input_text,omitempty"`
	Destination string  `json:"destination,omitempty"`
	Adaptation  string  `json:"adaptation,omitempty"`
	Profile     string  `json:"profile,omitempty"`
	// Variables become uv-* options; the prefix is optional.
	Variables map[string]string `json:"variables,omitempty"`
}

// PromptResponse is returned by a successful POST /v1/prompts.
type PromptResponse struct {
	RunID        string `json:"run_id"`
	Profile      string `json:"profile"`
	Directive    string `json:"directive"`
	Layer        string `json:"layer"`
	InputLayer   string `json:"input_layer"`
	Source       string `json:"source"`
	Template     string `json:"template"`
	FallbackUsed bool   `json:"fallback_used"`
	Digest       string `json:"digest"`
	Content      string `json:"content"`
}

// ProfileResponse is returned by GET /v1/profiles/{profile}.
type ProfileResponse struct {
	Profile           string   `json:"profile"`
	DirectivePatterns []string `json:"directive_patterns"`
	LayerPatterns     []string `json:"layer_patterns"`
}

// RunsResponse is returned by GET /v1/runs.
type RunsResponse struct {
	Runs []history.Entry `json:"runs"`
}

// ErrorResponse is returned on errors. Kind and Details are set for
// pipeline failures.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Kind    string         `json:"kind,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// HealthzResponse is returned by GET /healthz.
type HealthzResponse struct {
	Status         string    `json:"status"`
	Version        string    `json:"version,omitempty"`
	UptimeSeconds  int64     `json:"uptime_seconds"`
	StartedAt      time.Time `json:"started_at"`
	HistoryEnabled bool      `json:"history_enabled"`
}
