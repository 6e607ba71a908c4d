package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewJSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Level: "warn", Format: "json", Out: &buf})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	log.Info().Msg("hidden")
	log.Warn().Str("idea_id", "1").Msg("shown")
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %q", buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal(lines[0], &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry["message"] != "shown" || entry["idea_id"] != "1" || entry["level"] != "warn" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Fatalf("timestamp missing: %v", entry)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(Options{Level: "chatty"}); err == nil {
		t.Fatalf("expected error")
	}
}
