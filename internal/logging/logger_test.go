package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestNewWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "wxbakd.log")
	logger, err := New(Options{Path: path, Level: "debug", MaxSizeMB: 1, Component: "test", Quiet: true})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("log line is not JSON: %v: %s", err, data)
	}
	if entry["msg"] != "hello" || entry["component"] != "test" {
		t.Errorf("entry = %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Error("entry has no ts")
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(Options{Level: "shout", Quiet: true}); err == nil {
		t.Error("expected error for bad level")
	}
}

func TestNewWithoutFile(t *testing.T) {
	logger, err := New(Options{Quiet: true})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("dropped")
}
