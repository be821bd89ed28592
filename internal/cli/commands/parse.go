package commands

import (
	"fmt"

	"github.com/leapstack-labs/bettersql/pkg/compiler"
	"github.com/leapstack-labs/bettersql/pkg/parser"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ParseOptions holds options for the parse command.
type ParseOptions struct {
	Format string // json or yaml
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	opts := &ParseOptions{}
	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Print the syntax tree of a query",
		Long: `Parse a bsql query and print its syntax tree without generating SQL.

Every node carries a "type" field (select, table, column, where, compare,
not, parenthesis, logical). Keyword spellings are present only when the
query spelled them differently from the lowercase keyword.`,
		Example: `  # Print the tree as JSON
  bsql parse queries/post.bsql

  # Print the tree as YAML
  echo 'select user { id }' | bsql parse --format yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "json", "Output format: json, yaml")
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runParse(cmd *cobra.Command, args []string, opts *ParseOptions) error {
	if opts.Format != "json" && opts.Format != "yaml" {
		return fmt.Errorf("unknown format %q, expected json or yaml", opts.Format)
	}

	cc := NewCommandContext(cmd)
	src, err := readSource(cmd, args)
	if err != nil {
		return err
	}

	sel, err := compiler.Decode(src.text)
	if err != nil {
		if se, ok := parser.AsSyntaxError(err); ok {
			cc.Renderer.Errorf("%s", cc.Renderer.SyntaxError(src.name, src.text, se))
		}
		return fmt.Errorf("failed to parse %s", src.name)
	}

	if opts.Format == "yaml" {
		enc := yaml.NewEncoder(cc.Renderer.Writer())
		enc.SetIndent(2)
		if err := enc.Encode(sel); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	}
	return cc.Renderer.JSON(sel)
}
