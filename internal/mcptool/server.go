// Package mcptool exposes the prompt pipeline as MCP tools over stdio for
// `breakdown mcp`.
package mcptool

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mattjoyce/breakdown/internal/failure"
	"github.com/mattjoyce/breakdown/internal/history"
	"github.com/mattjoyce/breakdown/internal/input"
	"github.com/mattjoyce/breakdown/internal/options"
	"github.com/mattjoyce/breakdown/internal/params"
	"github.com/mattjoyce/breakdown/internal/pipeline"
)

// Tool names.
const (
	PromptToolName  = "breakdown_prompt"
	ProfileToolName = "breakdown_profile"
)

// Tools holds the handlers behind the registered MCP tools.
type Tools struct {
	runner  *pipeline.Runner
	history history.Recorder
	logger  *slog.Logger
}

// NewTools returns handlers over runner. hist may be nil.
func NewTools(runner *pipeline.Runner, hist history.Recorder, logger *slog.Logger) *Tools {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tools{runner: runner, history: hist, logger: logger}
}

// NewServer builds an MCP server with both tools registered.
func NewServer(version string, tools *Tools) *server.MCPServer {
	s := server.NewMCPServer(
		"breakdown",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)
	s.AddTool(tools.PromptDefinition(), tools.HandlePrompt)
	s.AddTool(tools.ProfileDefinition(), tools.HandleProfile)
	return s
}

// Serve runs s over in/out until ctx is canceled or in is closed.
func Serve(ctx context.Context, s *server.MCPServer, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s).Listen(ctx, in, out)
}

const instructions = `breakdown renders prompt templates for a directive/layer pair.
Call breakdown_profile to see which directives and layers a profile accepts,
then breakdown_prompt with input_text (or a from path) to get the rendered prompt.`

// PromptDefinition describes breakdown_prompt.
func (t *Tools) PromptDefinition() mcp.Tool {
	return mcp.NewTool(PromptToolName,
		mcp.WithDescription("Render the prompt template for a directive and layer, substituting the given input and variables."),
		mcp.WithString("directive", mcp.Required(), mcp.Description("Directive word, e.g. to, summary, defect")),
		mcp.WithString("layer", mcp.Required(), mcp.Description("Layer word, e.g. project, issue, task")),
		mcp.WithString("input_text", mcp.Description("Input text; stands in for standard input")),
		mcp.WithString("from", mcp.Description("Input file path, relative to the server working directory")),
		mcp.WithString("input", mcp.Description("Input layer shortcut; selects the f_<input>.md template")),
		mcp.WithString("destination", mcp.Description("Destination path reported to the template")),
		mcp.WithString("adaptation", mcp.Description("Template variant suffix")),
		mcp.WithString("profile", mcp.Description("Configuration profile (default: default)")),
		mcp.WithObject("variables", mcp.Description("User variables; keys may omit the uv- prefix")),
	)
}

// ProfileDefinition describes breakdown_profile.
func (t *Tools) ProfileDefinition() mcp.Tool {
	return mcp.NewTool(ProfileToolName,
		mcp.WithDescription("List the directive and layer patterns accepted by a profile."),
		mcp.WithString("profile", mcp.Description("Configuration profile (default: default)")),
	)
}

// HandlePrompt runs one pipeline. Pipeline failures come back as tool
// errors, not protocol errors.
func (t *Tools) HandlePrompt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := []string{req.GetString("directive", ""), req.GetString("layer", "")}
	opts := options.Options{
		From:        req.GetString("from", ""),
		Input:       req.GetString("input", ""),
		Destination: req.GetString("destination", ""),
		Adaptation:  req.GetString("adaptation", ""),
		Profile:     req.GetString("profile", ""),
	}
	if raw, ok := req.GetArguments()["variables"].(map[string]any); ok {
		for k, v := range raw {
			if !strings.HasPrefix(k, options.CustomPrefix) {
				k = options.CustomPrefix + k
			}
			opts = opts.WithExtra(k, fmt.Sprint(v))
		}
	}

	stdin := input.NoStdin
	if text, ok := req.GetArguments()["input_text"].(string); ok {
		stdin = input.StaticStdin{Text: text, Present: true}
	}

	res, err := t.runner.Run(ctx, args, opts, stdin)
	history.Capture(ctx, t.history, t.logger, history.SurfaceMCP, opts, args, res, err)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(res.Content), nil
}

// HandleProfile reports the patterns of one profile.
func (t *Tools) HandleProfile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profile := params.NormalizeProfile(req.GetString("profile", ""))
	set, err := t.runner.Deps().Store.Patterns(profile)
	if err != nil {
		return errorResult(err), nil
	}

	directives := append([]string(nil), set.Directive...)
	layers := append([]string(nil), set.Layer...)
	sort.Strings(directives)
	sort.Strings(layers)

	var b strings.Builder
	fmt.Fprintf(&b, "profile: %s\n", profile)
	fmt.Fprintf(&b, "directives: %s\n", strings.Join(directives, ", "))
	fmt.Fprintf(&b, "layers: %s\n", strings.Join(layers, ", "))
	return mcp.NewToolResultText(b.String()), nil
}

func errorResult(err error) *mcp.CallToolResult {
	if fe, ok := failure.As(err); ok {
		return mcp.NewToolResultError(fmt.Sprintf("Error [%s] %s", fe.Kind(), fe.Error()))
	}
	return mcp.NewToolResultError(err.Error())
}
