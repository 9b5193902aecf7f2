// Package printers renders momentum results for the terminal.
package printers

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

const (
	JSON = "json"
	YAML = "yaml"
)

// Structured writes v as JSON or YAML. It reports false, writing nothing,
// for any other format so the caller can fall back to PrettyPrint.
func Structured(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case JSON:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, err
		}
		_, err = fmt.Fprintln(w, string(b))
		return true, err
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	default:
		return false, nil
	}
}
