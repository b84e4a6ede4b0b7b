package server

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KKoehn92/Master-Document-Tool/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Data.DataDir = filepath.Join(dir, "data")

	s, err := NewServer(cfg, filepath.Join(dir, "config.toml"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestServer_Routes(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		method, path string
		want         int
		contains     string
	}{
		{http.MethodGet, "/api/status", http.StatusOK, "workbookPath"},
		{http.MethodGet, "/api/sessions", http.StatusOK, "items"},
		{http.MethodGet, "/", http.StatusOK, "Master Document List"},
		{http.MethodGet, "/irgendwo", http.StatusOK, "<form"},
		{http.MethodGet, "/favicon.svg", http.StatusOK, "<svg"},
		{http.MethodOptions, "/api/status", http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, w.Code)
			assert.Contains(t, w.Body.String(), tt.contains)
		})
	}
}

func TestEngineOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Workbook.ReferenceSheets = []string{"Bestand"}
	opts := EngineOptions(cfg, nil)
	assert.Equal(t, []string{"Bestand"}, opts.ReferenceSheets)
	assert.Equal(t, cfg.Workbook.MasterSheet, opts.MasterSheet)
}
