package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rotisserie/eris"

	"github.com/yourusername/osrs-mcp/internal/wikitext"
)

// Config holds all server configuration
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Wiki    WikiConfig    `toml:"wiki"`
	Log     LogConfig     `toml:"log"`
	Tracing TracingConfig `toml:"tracing"`
	Metrics MetricsConfig `toml:"metrics"`
	Quest   QuestConfig   `toml:"quest"`
}

type ServerConfig struct {
	Port string `toml:"port"`
}

type WikiConfig struct {
	URL            string        `toml:"url"`
	UserAgent      string        `toml:"user_agent"`
	RateLimit      float64       `toml:"rate_limit"` // requests per second
	// Durations accept "30s"-style strings or bare integer seconds.
	RequestTimeout time.Duration `toml:"request_timeout"`
	CacheTTL       time.Duration `toml:"cache_ttl"`
	CacheTTLInfo   time.Duration `toml:"cache_ttl_info"` // page info and parse trees
}

type LogConfig struct {
	Level       string `toml:"level"`
	SentryDSN   string `toml:"sentry_dsn"`
	Environment string `toml:"environment"`
}

type TracingConfig struct {
	Enabled      bool    `toml:"enabled"`
	OTLPEndpoint string  `toml:"otlp_endpoint"`
	SampleRate   float64 `toml:"sample_rate"`
}

type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

type QuestConfig struct {
	// NonItemKeywords are substrings that mark a linked page as something
	// other than an item in requirement lists.
	NonItemKeywords []string `toml:"non_item_keywords"`
}

// Defaults returns a Config populated with built-in default values.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Wiki: WikiConfig{
			URL:            "https://oldschool.runescape.wiki",
			UserAgent:      "OSRSWikiMCP/1.0 (https://github.com/yourusername/osrs-mcp)",
			RateLimit:      10.0,
			RequestTimeout: 30 * time.Second,
			CacheTTL:       300 * time.Second,
			CacheTTLInfo:   3600 * time.Second,
		},
		Log:     LogConfig{Level: "info", Environment: "development"},
		Tracing: TracingConfig{SampleRate: 1.0},
		Metrics: MetricsConfig{Enabled: true},
		Quest: QuestConfig{
			NonItemKeywords: append([]string(nil), wikitext.DefaultNonItemKeywords...),
		},
	}
}

// Load reads configuration from built-in defaults, then an optional TOML
// file, then environment variables. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			md, err := toml.DecodeFile(path, cfg)
			if err != nil {
				return nil, eris.Wrapf(err, "decoding config file %s", path)
			}
			cfg.Wiki.secondsFromIntegers(md)
		} else if !os.IsNotExist(err) {
			return nil, eris.Wrapf(err, "reading config file %s", path)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// secondsFromIntegers reads bare integer durations as seconds, matching the
// environment layer. Strings such as "30s" decode as Go durations.
func (w *WikiConfig) secondsFromIntegers(md toml.MetaData) {
	fields := map[string]*time.Duration{
		"request_timeout": &w.RequestTimeout,
		"cache_ttl":       &w.CacheTTL,
		"cache_ttl_info":  &w.CacheTTLInfo,
	}
	for key, d := range fields {
		if md.Type("wiki", key) == "Integer" {
			*d = time.Duration(int64(*d)) * time.Second
		}
	}
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("MCP_PORT", c.Server.Port)

	c.Wiki.URL = strings.TrimRight(getEnv("OSRS_WIKI_URL", c.Wiki.URL), "/")
	c.Wiki.UserAgent = getEnv("MCP_USER_AGENT", c.Wiki.UserAgent)
	c.Wiki.RateLimit = getEnvFloat("MCP_RATE_LIMIT", c.Wiki.RateLimit)
	c.Wiki.RequestTimeout = getEnvDuration("MCP_REQUEST_TIMEOUT", c.Wiki.RequestTimeout)
	c.Wiki.CacheTTL = getEnvDuration("MCP_CACHE_TTL", c.Wiki.CacheTTL)
	c.Wiki.CacheTTLInfo = getEnvDuration("MCP_CACHE_TTL_INFO", c.Wiki.CacheTTLInfo)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.SentryDSN = getEnv("SENTRY_DSN", c.Log.SentryDSN)
	c.Log.Environment = getEnv("ENVIRONMENT", c.Log.Environment)

	c.Tracing.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.Tracing.OTLPEndpoint)
	c.Tracing.Enabled = getEnvBool("OTEL_ENABLED", c.Tracing.Enabled) || c.Tracing.OTLPEndpoint != ""
	c.Tracing.SampleRate = getEnvFloat("OTEL_SAMPLE_RATE", c.Tracing.SampleRate)

	c.Metrics.Enabled = getEnvBool("MCP_METRICS", c.Metrics.Enabled)

	if val := os.Getenv("OSRS_NON_ITEM_KEYWORDS"); val != "" {
		var keywords []string
		for _, k := range strings.Split(val, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keywords = append(keywords, k)
			}
		}
		c.Quest.NonItemKeywords = keywords
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

// getEnvDuration accepts a bare number of seconds or a Go duration string.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if i, err := strconv.Atoi(val); err == nil {
		return time.Duration(i) * time.Second
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	return defaultVal
}
