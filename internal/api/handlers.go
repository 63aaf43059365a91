package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mattjoyce/breakdown/internal/failure"
	"github.com/mattjoyce/breakdown/internal/history"
	"github.com/mattjoyce/breakdown/internal/input"
	"github.com/mattjoyce/breakdown/internal/options"
	"github.com/mattjoyce/breakdown/internal/params"
)

const maxRequestBytes = 4 << 20

// handleHealthz handles GET /healthz (no auth).
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthzResponse{
		Status:         "ok",
		Version:        s.config.Version,
		UptimeSeconds:  int64(time.Since(s.startedAt).Seconds()),
		StartedAt:      s.startedAt.UTC(),
		HistoryEnabled: s.history != nil,
	})
}

// handleGeneratePrompt handles POST /v1/prompts.
func (s *Server) handleGeneratePrompt(w http.ResponseWriter, r *http.Request) {
	var req PromptRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	args := req.args()
	opts := req.options()
	stdin := input.NoStdin
	if req.InputText != nil {
		stdin = input.StaticStdin{Text: *req.InputText, Present: true}
	}

	res, err := s.runner.Run(r.Context(), args, opts, stdin)
	history.Capture(r.Context(), s.history, s.logger, history.SurfaceAPI, opts, args, res, err)
	if err != nil {
		s.writeRunError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, PromptResponse{
		RunID:        res.RunID,
		Profile:      res.Params.Profile,
		Directive:    res.Params.Directive.String(),
		Layer:        res.Params.Layer.String(),
		InputLayer:   res.InputLayer,
		Source:       res.Input.SourceLabel,
		Template:     res.Template.RelPath,
		FallbackUsed: res.Template.FallbackUsed,
		Digest:       res.Digest,
		Content:      res.Content,
	})
}

// handleGetProfile handles GET /v1/profiles/{profile}.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile := params.NormalizeProfile(chi.URLParam(r, "profile"))
	set, err := s.runner.Deps().Store.Patterns(profile)
	if err != nil {
		s.writeRunError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ProfileResponse{
		Profile:           profile,
		DirectivePatterns: set.Directive,
		LayerPatterns:     set.Layer,
	})
}

// handleListRuns handles GET /v1/runs.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeError(w, http.StatusNotFound, "history is disabled")
		return
	}

	limit := history.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := s.history.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list runs", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []history.Entry{}
	}
	respondJSON(w, http.StatusOK, RunsResponse{Runs: runs})
}

func (req PromptRequest) args() []string {
	var args []string
	if req.Directive != "" || req.Layer != "" {
		args = append(args, req.Directive)
	}
	if req.Layer != "" {
		args = append(args, req.Layer)
	}
	return args
}

func (req PromptRequest) options() options.Options {
	opts := options.Options{
		From:        req.From,
		Input:       req.Input,
		Destination: req.Destination,
		Adaptation:  req.Adaptation,
		Profile:     req.Profile,
	}
	for k, v := range req.Variables {
		if !strings.HasPrefix(k, options.CustomPrefix) {
			k = options.CustomPrefix + k
		}
		opts = opts.WithExtra(k, v)
	}
	return opts
}

// statusForKind maps a pipeline failure to an HTTP status.
func statusForKind(k failure.Kind) int {
	switch k {
	case failure.KindConfigurationNotFound, failure.KindFileNotFound:
		return http.StatusNotFound
	case failure.KindPatternNotDefined, failure.KindPromptGeneration, failure.KindConfigurationValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) writeRunError(w http.ResponseWriter, err error) {
	if fe, ok := failure.As(err); ok {
		respondJSON(w, statusForKind(fe.Kind()), ErrorResponse{
			Error:   fe.Error(),
			Kind:    string(fe.Kind()),
			Details: failure.Details(fe),
		})
		return
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		s.writeError(w, http.StatusServiceUnavailable, "request canceled")
		return
	}
	s.logger.Error("prompt generation failed", "error", err)
	s.writeError(w, http.StatusInternalServerError, "internal error")
}

// respondJSON is a helper to write JSON responses
func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response
func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}
