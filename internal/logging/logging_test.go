package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("info", &buf)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	log.Debug("hidden")
	log.Info("parsed file", zap.String("path", "access.log"), zap.Int("failed", 2))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug entry should be filtered: %q", out)
	}
	for _, want := range []string{"info", "nginxlog", "parsed file", `"path": "access.log"`, `"failed": 2`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output %q", want, out)
		}
	}
}

func TestNewDefaultLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("", &buf)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	log.Info("quiet")
	log.Warn("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") || !strings.Contains(out, "loud") {
		t.Fatalf("expected only warn output, got %q", out)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	if _, err := New("chatty", nil); err == nil {
		t.Fatalf("expected error for invalid level")
	}
}
