package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		want    logrus.Level
		wantErr bool
	}{
		{name: "default", level: "", want: logrus.InfoLevel},
		{name: "debug", level: "debug", want: logrus.DebugLevel},
		{name: "mixed case", level: "WARN", want: logrus.WarnLevel},
		{name: "invalid", level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.level, &bytes.Buffer{})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if logger.GetLevel() != tt.want {
				t.Errorf("level = %v, want %v", logger.GetLevel(), tt.want)
			}
		})
	}
}

func TestComponentTagsEntries(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger("info", &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	Component(logger, "quest").Info("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if line["logger"] != "quest" {
		t.Errorf("logger field = %v, want quest", line["logger"])
	}
	if line["msg"] != "hello" {
		t.Errorf("msg field = %v, want hello", line["msg"])
	}
}

func TestComponentNilLogger(t *testing.T) {
	// Must not panic.
	Component(nil, "wiki").Info("dropped")
}

func TestInitSentryWithoutDSN(t *testing.T) {
	flush, err := InitSentry(Discard(), SentrySettings{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	flush()
}
