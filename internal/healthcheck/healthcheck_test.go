package healthcheck

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/l3aro/cprep/internal/config"
)

func writeList(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write list: %v", err)
	}
	return path
}

func TestCheckWithNilConfig(t *testing.T) {
	_, err := Check(nil, "")
	if err == nil {
		t.Error("Expected error for nil config, got nil")
	}
}

func TestCheckReady(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Engine = "ast"
	cfg.FunctionsList = writeList(t, dir, "functions.txt", "pd_loop\npd_init\n")
	cfg.StatesList = writeList(t, dir, "states.txt", "PE_SRC_READY\n")
	cfg.Backup = true
	cfg.JournalPath = filepath.Join(dir, ".cprep", "journal.msgpack")

	result, err := Check(cfg, "")
	if err != nil {
		t.Fatalf("Check() failed: %v", err)
	}

	for _, item := range result.Items() {
		if item.Status != StatusReady {
			t.Errorf("%s status = %q (%s), want %q", item.Name, item.Status, item.Error, StatusReady)
		}
	}
	if result.Functions.Detail != "2 names" {
		t.Errorf("Functions.Detail = %q, want %q", result.Functions.Detail, "2 names")
	}
	if result.HasError() {
		t.Error("HasError() = true, want false")
	}
}

func TestCheckReportsErrors(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Engine = "regex"
	cfg.FunctionsList = filepath.Join(dir, "missing.txt")
	cfg.StatesList = writeList(t, dir, "states.txt", "")

	result, err := Check(cfg, "")
	if err != nil {
		t.Fatalf("Check() failed: %v", err)
	}

	if result.Engine.Status != StatusError {
		t.Errorf("Engine.Status = %q, want %q", result.Engine.Status, StatusError)
	}
	if result.Functions.Status != StatusError {
		t.Errorf("Functions.Status = %q, want %q", result.Functions.Status, StatusError)
	}
	if result.States.Status != StatusReady {
		t.Errorf("States.Status = %q, want %q", result.States.Status, StatusReady)
	}
	if result.Journal.Status != StatusDisabled {
		t.Errorf("Journal.Status = %q, want %q", result.Journal.Status, StatusDisabled)
	}
	if !result.HasError() {
		t.Error("HasError() = false, want true")
	}
}

func TestCheckCorruptJournal(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Backup = true
	cfg.JournalPath = writeList(t, dir, "journal.msgpack", "not msgpack")

	result, err := Check(cfg, "")
	if err != nil {
		t.Fatalf("Check() failed: %v", err)
	}
	if result.Journal.Status != StatusError {
		t.Errorf("Journal.Status = %q, want %q", result.Journal.Status, StatusError)
	}
}

func TestScopeFromPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		path string
		want string
	}{
		{"", ""},
		{filepath.Join(home, ".cprep", "config.yaml"), "global"},
		{".cprep/config.yaml", "project"},
	}
	for _, tt := range tests {
		if got := scopeFromPath(tt.path); got != tt.want {
			t.Errorf("scopeFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
