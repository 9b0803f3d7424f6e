// Package config loads cnote settings from .cnote.yaml.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/skelly-dev/cnote/internal/extract"
	"github.com/skelly-dev/cnote/internal/lexer"
)

// FileName is the default config file looked up in the working directory.
const FileName = ".cnote.yaml"

// Config represents cnote configuration options
type Config struct {
	// ReadLimit is how many bytes of each file are inspected for tags
	ReadLimit int `yaml:"read_limit"`

	// Recursive descends into subdirectories of directory arguments
	Recursive bool `yaml:"recursive"`

	// Ignore holds extra gitignore-like rules, applied after .cnoteignore
	Ignore []string `yaml:"ignore"`

	// LogLevel sets the logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// Color controls colored output (auto, always, never)
	Color string `yaml:"color"`

	// Format is the default listing format (text, json, jsonl)
	Format string `yaml:"format"`

	// DefaultTags filters listings when no --tag flag is given
	DefaultTags []string `yaml:"default_tags"`

	// CommentStyles restricts the comment openers allowed before a tag
	// marker (c, lisp, latex, shell). Empty allows all of them.
	CommentStyles []string `yaml:"comment_styles"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ReadLimit: extract.DefaultReadLimit,
		Recursive: false,
		LogLevel:  "warn",
		Color:     "auto",
		Format:    "text",
	}
}

// LoadConfig loads configuration from path.
// A missing file yields the defaults; a malformed file is an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Pointers distinguish an explicit false or zero from an absent key.
	type yamlConfig struct {
		ReadLimit     *int     `yaml:"read_limit"`
		Recursive     *bool    `yaml:"recursive"`
		Ignore        []string `yaml:"ignore"`
		LogLevel      string   `yaml:"log_level"`
		Color         string   `yaml:"color"`
		Format        string   `yaml:"format"`
		DefaultTags   []string `yaml:"default_tags"`
		CommentStyles []string `yaml:"comment_styles"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.ReadLimit != nil {
		cfg.ReadLimit = *yamlCfg.ReadLimit
	}
	if yamlCfg.Recursive != nil {
		cfg.Recursive = *yamlCfg.Recursive
	}
	if len(yamlCfg.Ignore) > 0 {
		cfg.Ignore = yamlCfg.Ignore
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.Color != "" {
		cfg.Color = yamlCfg.Color
	}
	if yamlCfg.Format != "" {
		cfg.Format = yamlCfg.Format
	}
	if len(yamlCfg.DefaultTags) > 0 {
		cfg.DefaultTags = yamlCfg.DefaultTags
	}
	if len(yamlCfg.CommentStyles) > 0 {
		cfg.CommentStyles = yamlCfg.CommentStyles
	}

	return cfg, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if c.ReadLimit < extract.MinReadLimit || c.ReadLimit > extract.MaxReadLimit {
		return fmt.Errorf("read_limit must be between %d and %d, got %d",
			extract.MinReadLimit, extract.MaxReadLimit, c.ReadLimit)
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.LogLevel) {
		return fmt.Errorf("invalid log_level %q, must be one of: debug, info, warn, error", c.LogLevel)
	}
	if !slices.Contains([]string{"auto", "always", "never"}, c.Color) {
		return fmt.Errorf("invalid color %q, must be one of: auto, always, never", c.Color)
	}
	if !slices.Contains([]string{"text", "json", "jsonl"}, c.Format) {
		return fmt.Errorf("invalid format %q, must be one of: text, json, jsonl", c.Format)
	}
	if _, err := c.Dialects(); err != nil {
		return err
	}
	return nil
}

// Dialects resolves CommentStyles to lexer dialects, in lexer order.
func (c *Config) Dialects() ([]lexer.Dialect, error) {
	if len(c.CommentStyles) == 0 {
		return lexer.Dialects, nil
	}
	names := make([]string, 0, len(lexer.Dialects))
	for _, d := range lexer.Dialects {
		names = append(names, d.Name)
	}
	for _, name := range c.CommentStyles {
		if _, ok := lexer.DialectByName(name); !ok {
			return nil, fmt.Errorf("invalid comment style %q, must be one of: %s", name, strings.Join(names, ", "))
		}
	}
	var out []lexer.Dialect
	for _, d := range lexer.Dialects {
		if slices.Contains(c.CommentStyles, d.Name) {
			out = append(out, d)
		}
	}
	return out, nil
}
