package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestBootLogger_WritesJSONBeforeConfig(t *testing.T) {
	var buf bytes.Buffer
	boot := bootLogger(&buf)
	boot.Error().Err(errors.New("JWT_SECRET is required in production")).Msg("load config")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	if entry["phase"] != "boot" || entry["message"] != "load config" || entry["level"] != "error" {
		t.Errorf("unexpected entry %v", entry)
	}
	if _, ok := entry["time"]; !ok {
		t.Error("expected a timestamp")
	}
}
