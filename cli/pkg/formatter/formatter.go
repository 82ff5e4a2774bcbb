package formatter

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"
)

var (
	Bold  = color.New(color.Bold)
	Dim   = color.New(color.Faint)
	Event = color.New(color.FgMagenta, color.Bold)
	Me    = color.New(color.FgGreen)
	Peer  = color.New(color.FgCyan)
)

// now is swapped in tests
var now = time.Now

// TimeAgo renders t relative to now ("just now", "5m ago", "3h ago", "2d ago")
func TimeAgo(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now().Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Local().Format("2006-01-02")
	}
}

// ExpiresIn renders the time left until t ("in 3h", "expired")
func ExpiresIn(t time.Time) string {
	d := t.Sub(now())
	switch {
	case d <= 0:
		return "expired"
	case d < time.Hour:
		return fmt.Sprintf("in %dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("in %dh", int(d.Hours()))
	}
}

// Truncate shortens s to max runes, marking the cut with an ellipsis
func Truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}

// Attachments names the non-empty media fields, e.g. "[image, audio]"
func Attachments(fields map[string]string) string {
	var kinds []string
	for _, kind := range []string{"image", "video", "audio", "file"} {
		if fields[kind] != "" {
			kinds = append(kinds, kind)
		}
	}
	if len(kinds) == 0 {
		return ""
	}
	return "[" + strings.Join(kinds, ", ") + "]"
}

// Body joins truncated text and the attachment summary
func Body(text string, fields map[string]string, max int) string {
	parts := []string{}
	if t := Truncate(text, max); t != "" {
		parts = append(parts, t)
	}
	if a := Attachments(fields); a != "" {
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// ShortID keeps the first block of a uuid for compact tables
func ShortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
