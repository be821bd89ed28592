package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.Output {
	case "auto", "text", "plain", "json":
	default:
		return fmt.Errorf("output must be one of auto, text, plain, json, got %q", c.Output)
	}
	for name, ext := range map[string]string{"source_ext": c.SourceExt, "out_ext": c.OutExt} {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("%s must start with a dot, got %q", name, ext)
		}
	}
	if c.SourceExt == c.OutExt {
		return fmt.Errorf("source_ext and out_ext must differ, both are %q", c.SourceExt)
	}
	if c.UI.Port < 0 || c.UI.Port > 65535 {
		return fmt.Errorf("ui.port out of range: %d", c.UI.Port)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	return nil
}

// ParseLevel parses a log level name (debug, info, warn, error).
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log_level %q", s)
	}
	return level, nil
}
