package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/bettersql/internal/cli/output"
	"github.com/leapstack-labs/bettersql/pkg/parser"
	"github.com/spf13/cobra"
)

// tokenRow is the JSON form of one token.
type tokenRow struct {
	Type   string `json:"type"`
	Value  string `json:"value,omitempty"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// NewTokensCommand creates the tokens command.
func NewTokensCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens [file]",
		Short: "Print the token stream of a query",
		Long: `Tokenize a bsql query and print one row per token with its type,
value and line:column position. Useful when a query parses differently
than expected.`,
		Example: `  echo 'select post [ title ] where id is not null' | bsql tokens`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokens(cmd, args)
		},
	}
}

func runTokens(cmd *cobra.Command, args []string) error {
	cc := NewCommandContext(cmd)
	r := cc.Renderer

	src, err := readSource(cmd, args)
	if err != nil {
		return err
	}

	tokens, err := parser.Tokenize(src.text)
	if err != nil {
		if se, ok := parser.AsSyntaxError(err); ok {
			r.Errorf("%s", r.SyntaxError(src.name, src.text, se))
		}
		return fmt.Errorf("failed to tokenize %s", src.name)
	}

	if r.EffectiveMode() == output.ModeJSON {
		rows := make([]tokenRow, 0, len(tokens))
		for _, tok := range tokens {
			rows = append(rows, tokenRow{
				Type:   tok.Type.String(),
				Value:  tok.Value,
				Line:   tok.Pos.Line,
				Column: tok.Pos.Column,
			})
		}
		return r.JSON(rows)
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Type", "Value", "Position"})
	for i, tok := range tokens {
		t.AppendRow(table.Row{i, tok.Type.String(), tok.Value, tok.Pos.String()})
	}
	t.Render()
	r.Printf("(%d tokens)\n", len(tokens))
	return nil
}
