package cmd

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yourusername/osrs-mcp/config"
	"github.com/yourusername/osrs-mcp/internal/logging"
	mcpServer "github.com/yourusername/osrs-mcp/internal/mcp"
)

func newTestRouter(t *testing.T, metricsEnabled bool) http.Handler {
	t.Helper()

	cfg = config.Defaults()
	cfg.Metrics.Enabled = metricsEnabled
	logger = logging.Discard()

	client, quests := newBackend()
	t.Cleanup(client.GetCache().Close)

	return newRouter(mcpServer.NewServer(mcpServer.Options{
		Client:  client,
		Quests:  quests,
		Logger:  logger,
		Version: Version,
	}))
}

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body, _ := io.ReadAll(rec.Result().Body)
	return rec.Code, string(body)
}

func TestRouterEndpoints(t *testing.T) {
	router := newTestRouter(t, true)

	if code, body := get(t, router, "/health"); code != http.StatusOK || body != "OK" {
		t.Errorf("/health = %d %q", code, body)
	}

	code, body := get(t, router, "/")
	if code != http.StatusOK || !strings.Contains(body, "MCP endpoint: /mcp") {
		t.Errorf("/ = %d %q", code, body)
	}
	if !strings.Contains(body, "Metrics: /metrics") {
		t.Errorf("index should advertise metrics: %q", body)
	}

	if code, body := get(t, router, "/metrics"); code != http.StatusOK || !strings.Contains(body, "go_goroutines") {
		t.Errorf("/metrics = %d", code)
	}
}

func TestRouterWithoutMetrics(t *testing.T) {
	router := newTestRouter(t, false)

	if code, _ := get(t, router, "/metrics"); code != http.StatusNotFound {
		t.Errorf("/metrics = %d, want 404", code)
	}
}
