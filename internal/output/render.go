package output

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Machine-readable output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ParseFormat validates a --format value. Empty means text.
func ParseFormat(s string) (string, error) {
	switch s {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return s, nil
	}
	return "", fmt.Errorf("invalid format: %s", s)
}

// Render writes v as indented JSON or YAML.
func Render(w io.Writer, format string, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("invalid format: %s", format)
}

// Decode reads JSON or YAML from data into v. YAML is a superset of JSON, so
// a YAML decoder accepts both; JSON is tried first to keep its field tags.
func Decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err == nil {
		return nil
	}
	return yaml.Unmarshal(data, v)
}
