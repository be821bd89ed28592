package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/leapstack-labs/bettersql/internal/cli/output"
	"github.com/spf13/cobra"
)

// CompileOptions holds options for the compile command.
type CompileOptions struct {
	Write bool // write <file><out_ext> next to each source
	Check bool // validate only
}

// compileResult is the JSON form of one compiled input.
type compileResult struct {
	Source string `json:"source"`
	Output string `json:"output,omitempty"`
	SQL    string `json:"sql,omitempty"`
	Error  string `json:"error,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand() *cobra.Command {
	opts := &CompileOptions{}
	cmd := &cobra.Command{
		Use:   "compile [file...]",
		Short: "Compile bsql queries to SQL",
		Long: `Compile bsql queries to SQL.

Each file is compiled independently. Without arguments, or with "-", the
query is read from stdin. SQL goes to stdout unless --write is given, in
which case it is written next to each source with the configured output
extension. Syntax errors are reported on stderr with the offending line.`,
		Example: `  # Compile a file to stdout
  bsql compile queries/post.bsql

  # Compile from stdin
  echo 'select user { id }' | bsql compile

  # Write queries/*.sql next to the sources
  bsql compile --write queries/*.bsql

  # Validate only, e.g. in CI
  bsql compile --check queries/*.bsql`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Write, "write", "w", false, "Write SQL next to each source file")
	cmd.Flags().BoolVar(&opts.Check, "check", false, "Only report syntax errors")
	cmd.MarkFlagsMutuallyExclusive("write", "check")

	return cmd
}

func runCompile(cmd *cobra.Command, args []string, opts *CompileOptions) error {
	cc := NewCommandContext(cmd)
	r := cc.Renderer

	sources, err := readSources(cmd, args)
	if err != nil {
		return err
	}
	if opts.Write && sources[0].path == "" {
		return errors.New("--write needs file arguments")
	}

	var (
		results []compileResult
		failed  int
	)
	for i, src := range sources {
		res := cc.Compiler.Compile(src.name, src.text)
		out := compileResult{Source: src.name}

		if !res.OK() {
			failed++
			out.Error = res.Err.Message
			out.Line = res.Err.Pos.Line
			out.Column = res.Err.Pos.Column
			results = append(results, out)
			if r.EffectiveMode() != output.ModeJSON {
				r.Errorf("%s", r.SyntaxError(src.name, src.text, res.Err))
			}
			continue
		}

		switch {
		case opts.Check:
			if r.EffectiveMode() != output.ModeJSON {
				r.Printf("%s %s\n", r.Styles().Success.Render("ok"), src.name)
			}
		case opts.Write:
			out.Output = cc.Cfg.OutputPath(src.path)
			if err := os.WriteFile(out.Output, []byte(res.SQL), 0o644); err != nil { //nolint:gosec
				return fmt.Errorf("failed to write %s: %w", out.Output, err)
			}
			cc.Logger.Debug("wrote", "source", src.name, "output", out.Output)
			if r.EffectiveMode() != output.ModeJSON {
				r.Printf("%s %s -> %s\n", r.Styles().Success.Render("wrote"), src.name, out.Output)
			}
		default:
			out.SQL = res.SQL
			if r.EffectiveMode() != output.ModeJSON {
				if len(sources) > 1 {
					if i > 0 {
						r.Println()
					}
					r.Println(r.Styles().Muted.Render("-- " + src.name))
				}
				r.Printf("%s", r.SQL(res.SQL))
			}
		}
		results = append(results, out)
	}

	if r.EffectiveMode() == output.ModeJSON {
		if err := r.JSON(results); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d queries failed to compile", failed, len(sources))
	}
	return nil
}
