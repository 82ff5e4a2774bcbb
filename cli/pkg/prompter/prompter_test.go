package prompter

import (
	"io"
	"strings"
	"testing"
)

func feed(t *testing.T, input string) {
	t.Helper()
	SetInput(strings.NewReader(input))
	prompt = io.Discard
}

func TestPromptStringReadsSuccessiveLines(t *testing.T) {
	feed(t, "  alice@example.com \nsecond\n")

	first, err := PromptString("Email: ")
	if err != nil || first != "alice@example.com" {
		t.Fatalf("Unexpected first answer %q, %v", first, err)
	}
	second, err := PromptString("Next: ")
	if err != nil || second != "second" {
		t.Fatalf("Unexpected second answer %q, %v", second, err)
	}
}

func TestPromptStringWithoutTrailingNewline(t *testing.T) {
	feed(t, "last")

	got, err := PromptString("> ")
	if err != nil || got != "last" {
		t.Fatalf("Unexpected answer %q, %v", got, err)
	}
	if _, err := PromptString("> "); err != io.EOF {
		t.Errorf("Expected EOF once input is exhausted, got %v", err)
	}
}

func TestPromptConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
	}
	for _, tt := range tests {
		feed(t, tt.input)
		got, err := PromptConfirm("Continue?")
		if err != nil {
			t.Fatalf("PromptConfirm(%q) failed: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("PromptConfirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestRequiredSkipsBlankAnswers(t *testing.T) {
	feed(t, "\n\nAda\n")

	got, err := Required("Name: ", PromptString)
	if err != nil || got != "Ada" {
		t.Fatalf("Unexpected answer %q, %v", got, err)
	}
}
