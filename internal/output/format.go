// Package output turns a scanned registry into reports and renders them.
package output

import (
	"fmt"
	"strings"
)

// Format is a listing encoding.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
)

// ParseFormat validates a --format value. Empty selects text.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatJSONL:
		return FormatJSONL, nil
	default:
		return "", fmt.Errorf("unsupported format %q (supported: text, json, jsonl)", value)
	}
}
