// Package config provides configuration management for the bsql CLI.
//
// Values are layered from built-in defaults, a bsql.yaml file, BSQL_*
// environment variables and command-line flags, in increasing precedence.
package config

import "time"

// Default configuration values.
const (
	DefaultLogLevel    = "info"
	DefaultOutput      = "auto"
	DefaultSourceExt   = ".bsql"
	DefaultOutExt      = ".sql"
	DefaultUIPort      = 8766
	DefaultDebounce    = 100 * time.Millisecond
	DefaultHistoryFile = "~/.bsql_history"
)

// Config holds all CLI configuration options.
type Config struct {
	Verbose   bool        `koanf:"verbose"`
	LogLevel  string      `koanf:"log_level"`
	NoColor   bool        `koanf:"no_color"`
	Output    string      `koanf:"output"`
	SourceExt string      `koanf:"source_ext"`
	OutExt    string      `koanf:"out_ext"`
	UI        UIConfig    `koanf:"ui"`
	Watch     WatchConfig `koanf:"watch"`
	REPL      REPLConfig  `koanf:"repl"`

	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

// UIConfig holds configuration for the playground server.
type UIConfig struct {
	Port int  `koanf:"port"`
	CORS bool `koanf:"cors"`
}

// WatchConfig holds configuration for the file watcher.
type WatchConfig struct {
	Debounce time.Duration `koanf:"debounce"`
}

// REPLConfig holds configuration for the interactive shell.
type REPLConfig struct {
	HistoryFile string `koanf:"history_file"`
}

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		LogLevel:  DefaultLogLevel,
		Output:    DefaultOutput,
		SourceExt: DefaultSourceExt,
		OutExt:    DefaultOutExt,
		UI:        UIConfig{Port: DefaultUIPort},
		Watch:     WatchConfig{Debounce: DefaultDebounce},
		REPL:      REPLConfig{HistoryFile: DefaultHistoryFile},
	}
}

// OutputPath returns the path compiled SQL for source is written to:
// the source extension replaced by the output extension.
func (c *Config) OutputPath(source string) string {
	if n := len(source) - len(c.SourceExt); c.SourceExt != "" && n > 0 && source[n:] == c.SourceExt {
		return source[:n] + c.OutExt
	}
	return source + c.OutExt
}
