package prompter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var (
	in     = bufio.NewReader(os.Stdin)
	prompt io.Writer = os.Stdout
)

// SetInput replaces stdin, for tests and piped input
func SetInput(r io.Reader) {
	in = bufio.NewReader(r)
}

// PromptString prompts user for a string input
func PromptString(label string) (string, error) {
	fmt.Fprint(prompt, label)
	input, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// PromptPassword reads a password without echo when stdin is a terminal
func PromptPassword(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return PromptString(label)
	}

	fmt.Fprint(prompt, label)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// PromptConfirm prompts user for yes/no confirmation
func PromptConfirm(label string) (bool, error) {
	answer, err := PromptString(label + " (y/n) ")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

// Required prompts until a non-empty answer is given or input ends
func Required(label string, read func(string) (string, error)) (string, error) {
	for {
		v, err := read(label)
		if err != nil {
			return "", err
		}
		if v != "" {
			return v, nil
		}
	}
}
