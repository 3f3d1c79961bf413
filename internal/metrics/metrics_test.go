package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return m.Counter.GetValue()
}

func TestRecordToolCall(t *testing.T) {
	tests := []struct {
		name       string
		success    bool
		wantStatus string
	}{
		{name: "successful call", success: true, wantStatus: "success"},
		{name: "failed call", success: false, wantStatus: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordToolCall("test_tool", 0.2, tt.success)

			counter, err := ToolCallsTotal.GetMetricWithLabelValues("test_tool", tt.wantStatus)
			if err != nil {
				t.Fatalf("failed to get metric: %v", err)
			}
			if counterValue(t, counter) < 1 {
				t.Error("expected counter to be incremented")
			}
		})
	}
}

func TestRecordWikiRequest(t *testing.T) {
	RecordWikiRequest("parse", 0.1, false)

	counter, err := WikiRequestsTotal.GetMetricWithLabelValues("parse", "error")
	if err != nil {
		t.Fatalf("failed to get metric: %v", err)
	}
	if counterValue(t, counter) < 1 {
		t.Error("expected wiki request counter to be incremented")
	}
}

func TestRecordCacheAccess(t *testing.T) {
	hits := counterValue(t, CacheHits)
	misses := counterValue(t, CacheMisses)

	RecordCacheAccess(true)
	RecordCacheAccess(false)
	RecordCacheAccess(false)

	if got := counterValue(t, CacheHits) - hits; got != 1 {
		t.Errorf("expected 1 hit, got %v", got)
	}
	if got := counterValue(t, CacheMisses) - misses; got != 2 {
		t.Errorf("expected 2 misses, got %v", got)
	}
}

func TestRecordQuestFailure(t *testing.T) {
	RecordQuestFailure("locate_infobox")

	counter, err := QuestStageFailures.GetMetricWithLabelValues("locate_infobox")
	if err != nil {
		t.Fatalf("failed to get metric: %v", err)
	}
	if counterValue(t, counter) < 1 {
		t.Error("expected stage failure counter to be incremented")
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordToolCall("exposed_tool", 0.01, true)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "osrs_mcp_tool_calls_total") {
		t.Error("expected tool call metric in exposition output")
	}
}
