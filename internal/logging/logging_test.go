package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestNewTextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("debug", "text", &buf)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.WithField("card", "a.md").Debug("moved")

	out := buf.String()
	if !strings.Contains(out, "moved") || !strings.Contains(out, "card=a.md") {
		t.Fatalf("unexpected log output %q", out)
	}
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("", "json", &buf)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if logger.GetLevel() != log.InfoLevel {
		t.Fatalf("expected info level by default, got %s", logger.GetLevel())
	}
	logger.Debug("hidden")
	logger.WithField("board", "work").Info("built")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected a single JSON entry, got %q: %v", buf.String(), err)
	}
	if entry["board"] != "work" || entry["msg"] != "built" {
		t.Fatalf("unexpected entry %#v", entry)
	}
}

func TestNewRejectsInvalidSettings(t *testing.T) {
	if _, err := New("loud", "text", nil); err == nil {
		t.Fatalf("expected error for invalid level")
	}
	if _, err := New("info", "xml", nil); err == nil {
		t.Fatalf("expected error for invalid format")
	}
}

func TestOpenFileAppends(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	for i := 0; i < 2; i++ {
		f, err := OpenFile(dir)
		if err != nil {
			t.Fatalf("OpenFile returned error: %v", err)
		}
		if _, err := f.WriteString("line\n"); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		f.Close()
	}

	data, err := os.ReadFile(filepath.Join(dir, LogFile))
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	if string(data) != "line\nline\n" {
		t.Fatalf("unexpected log content %q", data)
	}

	Discard().Info("dropped")
}
