package output

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/config"
	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Out receives everything the CLI prints
var Out io.Writer = color.Output

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatTable OutputFormat = "table"
	FormatText  OutputFormat = "text"
)

// GetOutputFormat returns the configured output format
func GetOutputFormat() OutputFormat {
	switch config.GetString("output.format") {
	case "json":
		return FormatJSON
	case "table":
		return FormatTable
	default:
		return FormatText
	}
}

// ValidateOutputFormat checks if format is valid
func ValidateOutputFormat(format string) bool {
	return format == "json" || format == "table" || format == "text"
}

// IsJSON reports whether raw JSON output was requested
func IsJSON() bool {
	return GetOutputFormat() == FormatJSON
}

// JSON writes data as indented JSON regardless of the configured format
func JSON(data interface{}) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(Out, string(b))
	return err
}

// Table prints rows under headers. In JSON mode raw is printed instead, so
// scripts get the full records rather than the truncated columns.
func Table(headers []string, rows [][]string, raw interface{}) error {
	if IsJSON() {
		return JSON(raw)
	}
	if len(rows) == 0 {
		fmt.Fprintln(Out, "(none)")
		return nil
	}

	w := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
	bold := color.New(color.Bold)
	for i, h := range headers {
		bold.Fprint(w, h)
		if i < len(headers)-1 {
			fmt.Fprint(w, "\t")
		}
	}
	fmt.Fprintln(w)
	for _, row := range rows {
		for i, cell := range row {
			fmt.Fprint(w, cell)
			if i < len(row)-1 {
				fmt.Fprint(w, "\t")
			}
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

// Record prints a single object as key/value lines, or as JSON
func Record(title string, fields map[string]interface{}, raw interface{}) error {
	switch GetOutputFormat() {
	case FormatJSON:
		return JSON(raw)
	case FormatTable:
		rows := make([][]string, 0, len(fields))
		for _, k := range sortedKeys(fields) {
			rows = append(rows, []string{k, fmt.Sprintf("%v", fields[k])})
		}
		return Table([]string{"Field", "Value"}, rows, raw)
	default:
		if title != "" {
			color.New(color.Bold, color.Underline).Fprintln(Out, title)
		}
		bold := color.New(color.Bold)
		for _, k := range sortedKeys(fields) {
			bold.Fprint(Out, k+": ")
			fmt.Fprintf(Out, "%v\n", fields[k])
		}
		return nil
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PrintSuccess prints a success message
func PrintSuccess(msg string, args ...interface{}) {
	if IsJSON() {
		return
	}
	color.New(color.FgGreen).Fprintf(Out, msg+"\n", args...)
}

// PrintError prints an error message
func PrintError(msg string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(Out, "Error: "+msg+"\n", args...)
}

// PrintInfo prints an info message
func PrintInfo(msg string, args ...interface{}) {
	if IsJSON() {
		return
	}
	color.New(color.FgCyan).Fprintf(Out, msg+"\n", args...)
}

// PrintWarning prints a warning message
func PrintWarning(msg string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(Out, "Warning: "+msg+"\n", args...)
}
