package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAPIKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		provided, configured string
		want                 bool
	}{
		{"provided", "provided", true},
		{"provided", "other", false},
		{"short", "longer-key", false},
		{"", "configured", false},
		{"provided", "", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidateAPIKey(tt.provided, tt.configured), "%q vs %q", tt.provided, tt.configured)
	}
}

func TestExtractAPIKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "bearer", header: "Bearer test-key", want: "test-key"},
		{name: "padded", header: "Bearer   test-key ", want: "test-key"},
		{name: "missing", header: "", wantErr: true},
		{name: "basic", header: "Basic abc", wantErr: true},
		{name: "blank", header: "Bearer   ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://example.test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			got, err := ExtractAPIKey(req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthGuardsV1Routes(t *testing.T) {
	s := newTestServer(t, "secret", nil)
	h := s.Handler()

	rr := doJSON(t, h, http.MethodGet, "/v1/profiles/default", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = doJSON(t, h, http.MethodGet, "/v1/profiles/default", nil, map[string]string{"Authorization": "Bearer wrong!"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "invalid API key", decode[ErrorResponse](t, rr).Error)

	rr = doJSON(t, h, http.MethodGet, "/v1/profiles/default", nil, map[string]string{"Authorization": "Bearer secret"})
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, h, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestNoAuthWhenKeyUnset(t *testing.T) {
	s := newTestServer(t, "", nil)
	rr := doJSON(t, s.Handler(), http.MethodGet, "/v1/profiles/default", nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}
