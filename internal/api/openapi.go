package api

import (
	"net/http"
)

// buildOpenAPIDoc returns an OpenAPI 3.1 document for the /v1 routes.
func buildOpenAPIDoc(version string, authenticated bool) map[string]any {
	if version == "" {
		version = "dev"
	}

	errorResponse := map[string]any{
		"description": "Pipeline failure",
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": "#/components/schemas/Error"},
			},
		},
	}

	operation := func(id, summary string) map[string]any {
		op := map[string]any{
			"operationId": id,
			"summary":     summary,
			"responses": map[string]any{
				"200": map[string]any{"description": "OK"},
				"400": errorResponse,
				"404": errorResponse,
				"422": errorResponse,
			},
		}
		if authenticated {
			op["security"] = []any{map[string]any{"BearerAuth": []string{}}}
			op["responses"].(map[string]any)["401"] = map[string]any{"description": "Missing or invalid API key"}
		}
		return op
	}

	generate := operation("generatePrompt", "Render a prompt for a directive/layer pair")
	generate["requestBody"] = map[string]any{
		"required": true,
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": "#/components/schemas/PromptRequest"},
			},
		},
	}

	paths := map[string]any{}
	paths["/v1/prompts"] = map[string]any{"post": generate}
	paths["/v1/profiles/{profile}"] = map[string]any{"get": operation("getProfile", "Show the directive and layer patterns of a profile")}
	paths["/v1/runs"] = map[string]any{"get": operation("listRuns", "List recorded runs, newest first")}

	str := map[string]any{"type": "string"}
	return map[string]any{
		"openapi": "3.1.0",
		"info": map[string]any{
			"title":   "Breakdown",
			"version": version,
		},
		"paths": paths,
		"components": map[string]any{
			"securitySchemes": map[string]any{
				"BearerAuth": map[string]any{
					"type":   "http",
					"scheme": "bearer",
				},
			},
			"schemas": map[string]any{
				"PromptRequest": map[string]any{
					"type":     "object",
					"required": []string{"directive", "layer"},
					"properties": map[string]any{
						"directive":   str,
						"layer":       str,
						"from":        str,
						"input":       str,
						"input_text":  str,
						"destination": str,
						"adaptation":  str,
						"profile":     str,
						"variables": map[string]any{
							"type":                 "object",
							"additionalProperties": str,
						},
					},
				},
				"Error": map[string]any{
					"type":     "object",
					"required": []string{"error"},
					"properties": map[string]any{
						"error":   str,
						"kind":    str,
						"details": map[string]any{"type": "object"},
					},
				},
			},
		},
	}
}

// handleOpenAPI handles GET /openapi.json.
func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, buildOpenAPIDoc(s.config.Version, s.config.APIKey != ""))
}
