package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		verbose, trace bool
		want           zerolog.Level
	}{
		{false, false, zerolog.InfoLevel},
		{true, false, zerolog.DebugLevel},
		{false, true, zerolog.TraceLevel},
		{true, true, zerolog.TraceLevel},
	}
	for _, tt := range tests {
		if got := Level(tt.verbose, tt.trace); got != tt.want {
			t.Errorf("Level(%v, %v) = %v, want %v", tt.verbose, tt.trace, got, tt.want)
		}
	}
}

func TestNewLoggerWritesJSON(t *testing.T) {
	var a, b bytes.Buffer
	logger := NewLogger(&a, &b)
	logger.Info().Str("component", "test").Msg("hello")

	for _, buf := range []*bytes.Buffer{&a, &b} {
		var event map[string]any
		if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
			t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
		}
		if event["message"] != "hello" || event["component"] != "test" {
			t.Errorf("unexpected event %v", event)
		}
	}
}
