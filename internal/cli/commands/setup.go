package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/leapstack-labs/bettersql/internal/cli/config"
	"github.com/leapstack-labs/bettersql/internal/cli/output"
	"github.com/leapstack-labs/bettersql/pkg/compiler"
	"github.com/spf13/cobra"
)

// stdinName labels input read from standard input.
const stdinName = "<stdin>"

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
	Compiler *compiler.Compiler
}

// NewCommandContext builds the dependencies of cmd from the config and
// logger the root command stored in its context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := config.GetConfig(cmd.Context())
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output),
		output.Options{NoColor: cfg.NoColor})

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
		Compiler: compiler.New(logger),
	}
}

// source is one query text to process.
type source struct {
	name string // file path or <stdin>
	path string // empty for stdin
	text string
}

// readSources reads the named files, or standard input when args is empty
// or the single argument "-".
func readSources(cmd *cobra.Command, args []string) ([]source, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return []source{{name: stdinName, text: string(data)}}, nil
	}

	sources := make([]source, 0, len(args))
	for _, path := range args {
		if path == "-" {
			return nil, fmt.Errorf(`"-" cannot be combined with file arguments`)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		sources = append(sources, source{name: path, path: path, text: string(data)})
	}
	return sources, nil
}

// readSource reads a single query for commands taking at most one input.
func readSource(cmd *cobra.Command, args []string) (source, error) {
	sources, err := readSources(cmd, args)
	if err != nil {
		return source{}, err
	}
	return sources[0], nil
}
