package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/config"
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/output"
	"github.com/fatih/color"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	buf := &bytes.Buffer{}
	prev := output.Out
	output.Out = buf
	t.Cleanup(func() { output.Out = prev })

	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version", "--config", filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "chatctl v"+Version) {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestConfigSetThenShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if _, err := run(t, "config", "set", "api.base_url", "https://chat.example.com", "--config", path); err != nil {
		t.Fatalf("config set failed: %v", err)
	}
	out, err := run(t, "config", "show", "--config", path)
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(out, "https://chat.example.com") {
		t.Errorf("Expected persisted base URL in:\n%s", out)
	}
}

func TestAPIFlagOverridesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if _, err := run(t, "config", "show", "--config", path, "--api", "http://10.0.0.5:5001"); err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if got := config.GetString("api.base_url"); got != "http://10.0.0.5:5001" {
		t.Errorf("Expected --api to override base URL, got %q", got)
	}
	apiURL = ""
}

func TestRejectsUnknownOutputFormat(t *testing.T) {
	_, err := run(t, "version", "--config", filepath.Join(t.TempDir(), "config.toml"), "--output", "yaml")
	if err == nil {
		t.Fatal("Expected an error for --output yaml")
	}
	outputFmt = "text"
}

func TestCommandsNeedLogin(t *testing.T) {
	_, err := run(t, "notifications", "list", "--config", filepath.Join(t.TempDir(), "config.toml"))
	if err == nil || !strings.Contains(err.Error(), "Not logged in") {
		t.Fatalf("Expected not-logged-in error, got %v", err)
	}
}

func TestAttachmentFlags(t *testing.T) {
	f := attachmentFlags{image: "a.png", file: "notes.pdf"}
	got := f.attachments()
	if len(got) != 2 || got["image"] != "a.png" || got["file"] != "notes.pdf" {
		t.Errorf("Unexpected attachments %v", got)
	}
}
