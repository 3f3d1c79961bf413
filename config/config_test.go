package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(cfg, Defaults()) {
		t.Errorf("expected defaults, got %+v", cfg)
	}
	if cfg.Wiki.URL != "https://oldschool.runescape.wiki" {
		t.Errorf("unexpected wiki URL %q", cfg.Wiki.URL)
	}
	if len(cfg.Quest.NonItemKeywords) == 0 {
		t.Error("expected default non-item keywords")
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[server]
port = "9090"

[wiki]
rate_limit = 2.5
cache_ttl = "10m"

[quest]
non_item_keywords = ["Quest", "Skill"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.Server.Port)
	}
	if cfg.Wiki.RateLimit != 2.5 {
		t.Errorf("rate limit = %v, want 2.5", cfg.Wiki.RateLimit)
	}
	if cfg.Wiki.CacheTTL != 10*time.Minute {
		t.Errorf("cache ttl = %v, want 10m", cfg.Wiki.CacheTTL)
	}
	if cfg.Wiki.RequestTimeout != 30*time.Second {
		t.Errorf("request timeout should keep its default, got %v", cfg.Wiki.RequestTimeout)
	}
	if want := []string{"Quest", "Skill"}; !reflect.DeepEqual(cfg.Quest.NonItemKeywords, want) {
		t.Errorf("keywords = %v, want %v", cfg.Quest.NonItemKeywords, want)
	}
}

func TestLoadFileIntegerDurationsAreSeconds(t *testing.T) {
	path := writeConfig(t, `
[wiki]
request_timeout = 30
cache_ttl = 120
cache_ttl_info = "2h"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"request_timeout", cfg.Wiki.RequestTimeout, 30 * time.Second},
		{"cache_ttl", cfg.Wiki.CacheTTL, 2 * time.Minute},
		{"cache_ttl_info", cfg.Wiki.CacheTTLInfo, 2 * time.Hour},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestLoadInvalidFile(t *testing.T) {
	path := writeConfig(t, "[server\nport = ")
	if _, err := Load(path); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "[server]\nport = \"9090\"\n")

	t.Setenv("MCP_PORT", "7070")
	t.Setenv("OSRS_WIKI_URL", "http://localhost:1234/")
	t.Setenv("MCP_CACHE_TTL", "60")
	t.Setenv("MCP_REQUEST_TIMEOUT", "1500ms")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")
	t.Setenv("MCP_METRICS", "false")
	t.Setenv("OSRS_NON_ITEM_KEYWORDS", "Quest, Skill ,,")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "7070" {
		t.Errorf("port = %q, want 7070", cfg.Server.Port)
	}
	if cfg.Wiki.URL != "http://localhost:1234" {
		t.Errorf("wiki URL = %q", cfg.Wiki.URL)
	}
	if cfg.Wiki.CacheTTL != time.Minute {
		t.Errorf("cache ttl = %v, want 1m", cfg.Wiki.CacheTTL)
	}
	if cfg.Wiki.RequestTimeout != 1500*time.Millisecond {
		t.Errorf("request timeout = %v", cfg.Wiki.RequestTimeout)
	}
	if !cfg.Tracing.Enabled {
		t.Error("tracing should be enabled by an OTLP endpoint")
	}
	if cfg.Metrics.Enabled {
		t.Error("metrics should be disabled")
	}
	if want := []string{"Quest", "Skill"}; !reflect.DeepEqual(cfg.Quest.NonItemKeywords, want) {
		t.Errorf("keywords = %v, want %v", cfg.Quest.NonItemKeywords, want)
	}
}

func TestInvalidEnvKeepsDefault(t *testing.T) {
	t.Setenv("MCP_RATE_LIMIT", "fast")
	t.Setenv("MCP_CACHE_TTL", "soon")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Wiki.RateLimit != 10.0 {
		t.Errorf("rate limit = %v, want 10", cfg.Wiki.RateLimit)
	}
	if cfg.Wiki.CacheTTL != 300*time.Second {
		t.Errorf("cache ttl = %v, want 5m", cfg.Wiki.CacheTTL)
	}
}
