package output

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/config"
	"github.com/fatih/color"
)

func capture(t *testing.T, format string) *bytes.Buffer {
	t.Helper()
	if err := config.Init(filepath.Join(t.TempDir(), "config.toml")); err != nil {
		t.Fatalf("Failed to initialize config: %v", err)
	}
	config.Override("output.format", format)

	color.NoColor = true
	buf := &bytes.Buffer{}
	prev := Out
	Out = buf
	t.Cleanup(func() { Out = prev })
	return buf
}

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		format  string
		isValid bool
	}{
		{"json", true},
		{"text", true},
		{"table", true},
		{"invalid", false},
	}

	for _, tt := range tests {
		if got := ValidateOutputFormat(tt.format); got != tt.isValid {
			t.Errorf("ValidateOutputFormat(%s): got %v, want %v", tt.format, got, tt.isValid)
		}
	}
}

func TestTableText(t *testing.T) {
	buf := capture(t, "text")

	err := Table([]string{"ID", "NAME"}, [][]string{{"1", "Ada"}, {"2", "Grace"}}, nil)
	if err != nil {
		t.Fatalf("Table failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header and two rows, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "ID") || !strings.Contains(lines[2], "Grace") {
		t.Errorf("Unexpected table %q", buf.String())
	}
}

func TestTableJSONPrintsRaw(t *testing.T) {
	buf := capture(t, "json")

	raw := []map[string]string{{"_id": "1", "fullName": "Ada"}}
	if err := Table([]string{"ID"}, [][]string{{"1"}}, raw); err != nil {
		t.Fatalf("Table failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"fullName": "Ada"`) {
		t.Errorf("Expected raw JSON, got %q", buf.String())
	}
}

func TestEmptyTable(t *testing.T) {
	buf := capture(t, "text")

	if err := Table([]string{"ID"}, nil, nil); err != nil {
		t.Fatalf("Table failed: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "(none)" {
		t.Errorf("Expected (none), got %q", buf.String())
	}
}

func TestRecordSortsKeys(t *testing.T) {
	buf := capture(t, "text")

	if err := Record("Me", map[string]interface{}{"Email": "a@x.io", "Name": "Ada"}, nil); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	out := buf.String()
	if strings.Index(out, "Email") > strings.Index(out, "Name") {
		t.Errorf("Expected sorted keys, got %q", out)
	}
}

func TestMessagesSilentInJSONMode(t *testing.T) {
	buf := capture(t, "json")

	PrintSuccess("done")
	PrintInfo("working")
	if buf.Len() != 0 {
		t.Errorf("Expected no chatter in JSON mode, got %q", buf.String())
	}
}
