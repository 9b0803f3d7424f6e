package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skelly-dev/cnote/internal/lexer"
	"github.com/skelly-dev/cnote/internal/output"
)

func OptionalStringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return strings.TrimSpace(value), nil
}

func OptionalBoolFlag(cmd *cobra.Command, name string) (bool, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return false, nil
	}
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}

// flagChanged reports whether the user set name explicitly.
func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil {
		return false
	}
	flag := cmd.Flags().Lookup(name)
	return flag != nil && flag.Changed
}

// ParseTagFlag returns the --tag values, split on whitespace and
// deduplicated. Without the flag it returns fallback.
func ParseTagFlag(cmd *cobra.Command, fallback []string) ([]string, error) {
	if cmd == nil || cmd.Flags().Lookup("tag") == nil {
		return fallback, nil
	}
	values, err := cmd.Flags().GetStringSlice("tag")
	if err != nil {
		return nil, fmt.Errorf("failed to read --tag flag: %w", err)
	}
	if len(values) == 0 {
		return fallback, nil
	}
	return lexer.ParseTags(strings.Join(values, " ")), nil
}

// ParseOutputFormat resolves --json and --format, falling back to the
// configured format.
func ParseOutputFormat(cmd *cobra.Command, fallback string) (output.Format, error) {
	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return "", err
	}
	if asJSON {
		return output.FormatJSON, nil
	}
	value, err := OptionalStringFlag(cmd, "format")
	if err != nil {
		return "", err
	}
	if value == "" {
		value = fallback
	}
	return output.ParseFormat(value)
}

// ParseTagArgs turns command arguments into tag texts. A tag may not
// start with the tag marker.
func ParseTagArgs(args []string) ([]string, error) {
	tags := lexer.ParseTags(strings.Join(args, " "))
	if len(tags) == 0 {
		return nil, fmt.Errorf("no tags given")
	}
	for _, tag := range tags {
		if strings.HasPrefix(tag, lexer.TagMarker) {
			return nil, fmt.Errorf("invalid tag %q: tags may not start with %q", tag, lexer.TagMarker)
		}
	}
	return tags, nil
}
