// Package metrics provides Prometheus metrics for the OSRS wiki MCP server.
// It tracks tool calls, wiki API latency, cache performance and quest
// extraction failures.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace for all metrics
const Namespace = "osrs_mcp"

var (
	// ToolCallsTotal counts MCP tool calls by tool name and status
	ToolCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "tool_calls_total",
		Help:      "Total number of MCP tool calls",
	}, []string{"tool", "status"})

	// ToolDuration measures tool call latency
	ToolDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "tool_duration_seconds",
		Help:      "Tool call latency distribution by tool",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"tool"})

	// WikiRequestsTotal counts wiki API requests by action and status
	WikiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "wiki_requests_total",
		Help:      "Total wiki API requests by action and status",
	}, []string{"action", "status"})

	// WikiRequestDuration measures wiki API latency
	WikiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "wiki_request_duration_seconds",
		Help:      "Wiki API latency by action",
		Buckets:   prometheus.DefBuckets,
	}, []string{"action"})

	// CacheHits counts cache hits
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "cache_hits_total",
		Help:      "Total cache hit count",
	})

	// CacheMisses counts cache misses
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "cache_misses_total",
		Help:      "Total cache miss count",
	})

	// CacheEntries tracks current cache entry count
	CacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "cache_entries",
		Help:      "Current number of cache entries",
	})

	// QuestStageFailures counts terminal quest extraction failures by stage
	QuestStageFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "quest_stage_failures_total",
		Help:      "Quest info extraction failures by stage",
	}, []string{"stage"})
)

// RecordToolCall records a completed tool call with its duration and status
func RecordToolCall(tool string, duration float64, success bool) {
	ToolCallsTotal.WithLabelValues(tool, status(success)).Inc()
	ToolDuration.WithLabelValues(tool).Observe(duration)
}

// RecordWikiRequest records a wiki API call
func RecordWikiRequest(action string, duration float64, success bool) {
	WikiRequestsTotal.WithLabelValues(action, status(success)).Inc()
	WikiRequestDuration.WithLabelValues(action).Observe(duration)
}

// RecordCacheAccess records a cache hit or miss
func RecordCacheAccess(hit bool) {
	if hit {
		CacheHits.Inc()
	} else {
		CacheMisses.Inc()
	}
}

// SetCacheEntries updates the cache size gauge
func SetCacheEntries(n int) {
	CacheEntries.Set(float64(n))
}

// RecordQuestFailure counts a failed quest extraction stage
func RecordQuestFailure(stage string) {
	QuestStageFailures.WithLabelValues(stage).Inc()
}

// Handler exposes the default registry for scraping
func Handler() http.Handler {
	return promhttp.Handler()
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
