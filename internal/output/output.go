package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format represents the output format.
type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// OutputFormat is the current output format, set by the root command's --format flag.
var OutputFormat Format = FormatText

// PrettyOutput enables pretty-printing for JSON output.
var PrettyOutput bool

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatYAML, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (expected text, yaml, or json)", s)
	}
}

// Result is the structured envelope for one command's outcome.
type Result struct {
	OK      bool   `yaml:"ok"                json:"ok"`
	Message string `yaml:"message,omitempty" json:"message,omitempty"`
	Data    any    `yaml:"data,omitempty"    json:"data,omitempty"`
}

// PrintResult prints a command outcome. Text format prints text as is;
// the structured formats wrap it in a Result, keeping the message only
// when there is no payload or the command failed.
func PrintResult(text string, data any, failed bool) error {
	if OutputFormat == FormatText {
		_, err := fmt.Fprintln(os.Stdout, text)
		return err
	}
	res := Result{OK: !failed, Data: data}
	if data == nil || failed {
		res.Message = text
	}
	return Print(res)
}

// Print serializes v to stdout in the current output format. Text format
// falls back to YAML for values that have no text rendering.
func Print(v interface{}) error {
	switch OutputFormat {
	case FormatJSON:
		if PrettyOutput {
			return PrintPrettyJSON(v)
		}
		return PrintJSON(v)
	case FormatYAML, FormatText:
		return PrintYAML(v)
	default:
		return fmt.Errorf("unsupported output format: %s", OutputFormat)
	}
}

// PrintJSON serializes v to stdout as compact single-line JSON.
func PrintJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// PrintPrettyJSON serializes v to stdout as indented JSON.
func PrintPrettyJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// PrintYAML serializes v to stdout as YAML.
func PrintYAML(v interface{}) error {
	enc := yaml.NewEncoder(os.Stdout)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}
