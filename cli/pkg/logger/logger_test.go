package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/config"
)

func TestLoggerFunctions_NoNilPointers(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Logger function panicked: %v", r)
		}
	}()

	logger = nil
	Debug("test debug", "key", "value")
	Info("test info", "key", "value")
	Warn("test warn", "key", "value")
	Error("test error", "key", "value")
}

func TestLoggerWritesToConfiguredFile(t *testing.T) {
	dir := t.TempDir()
	if err := config.Init(filepath.Join(dir, "config.toml")); err != nil {
		t.Fatalf("Failed to initialize config: %v", err)
	}
	path := filepath.Join(dir, "chatctl.log")
	config.Override("log.file", path)

	Init(false)
	Debug("hidden at info level")
	Info("connected", "user", "alice")
	Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Log file missing: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "connected") || !strings.Contains(out, "alice") {
		t.Errorf("Expected info line in log, got %q", out)
	}
	if strings.Contains(out, "hidden at info level") {
		t.Errorf("Debug line should be filtered at info level")
	}
}

func TestVerboseEnablesDebug(t *testing.T) {
	dir := t.TempDir()
	if err := config.Init(filepath.Join(dir, "config.toml")); err != nil {
		t.Fatalf("Failed to initialize config: %v", err)
	}
	path := filepath.Join(dir, "verbose.log")
	config.Override("log.file", path)

	Init(true)
	Debug("request", "method", "GET")
	Close()

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "request") {
		t.Errorf("Expected debug line with --verbose, got %q", string(data))
	}
}
