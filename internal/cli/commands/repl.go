package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/bettersql/internal/cli/config"
	"github.com/leapstack-labs/bettersql/internal/cli/output"
	"github.com/leapstack-labs/bettersql/pkg/compiler"
	"github.com/spf13/cobra"
)

const (
	replPrompt         = "bsql> "
	replContinuePrompt = "  ...> "
	replSource         = "<repl>"
)

// REPLOptions holds options for the repl command.
type REPLOptions struct {
	History string
	AST     bool
}

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	opts := &REPLOptions{}
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Compile queries interactively",
		Long: `Start an interactive shell that compiles bsql queries as you type them.

A query may span several lines. It is compiled when a line ends with ";"
or when an empty line is entered. Dot commands are available between
queries; type .help to list them.`,
		Example: `  # Start the shell
  bsql repl

  # Also print the syntax tree of every query
  bsql repl --ast`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.History, "history", "", "History file (default: ~/.bsql_history)")
	cmd.Flags().BoolVar(&opts.AST, "ast", false, "Print the syntax tree of every query")

	return cmd
}

func runREPL(cmd *cobra.Command, opts *REPLOptions) error {
	cc := NewCommandContext(cmd)
	session := newREPLSession(cc.Renderer, cc.Compiler)
	session.showAST = opts.AST

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     config.ExpandHome(cc.Cfg.REPL.HistoryFile),
		AutoComplete:    newREPLCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	cc.Renderer.Println("bsql interactive compiler")
	cc.Renderer.Println("End a query with ; or an empty line. Type .help for commands, .quit to exit")
	cc.Renderer.Println()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			session.Reset()
			rl.SetPrompt(session.Prompt())
			continue
		}
		if errors.Is(err, io.EOF) {
			session.Flush()
			return nil
		}
		if err != nil {
			return err
		}

		if quit := session.Feed(line); quit {
			return nil
		}
		rl.SetPrompt(session.Prompt())
	}
}

// replSession accumulates input lines and compiles complete queries. It
// holds no terminal state so it can be driven line by line.
type replSession struct {
	r        *output.Renderer
	compiler *compiler.Compiler
	buf      strings.Builder
	showAST  bool
}

func newREPLSession(r *output.Renderer, c *compiler.Compiler) *replSession {
	return &replSession{r: r, compiler: c}
}

// Prompt returns the prompt for the next line.
func (s *replSession) Prompt() string {
	if s.buf.Len() > 0 {
		return replContinuePrompt
	}
	return replPrompt
}

// Reset discards the pending query.
func (s *replSession) Reset() {
	s.buf.Reset()
}

// Feed consumes one input line and reports whether the session should end.
func (s *replSession) Feed(line string) bool {
	trimmed := strings.TrimSpace(line)

	if s.buf.Len() == 0 {
		if trimmed == "" {
			return false
		}
		if strings.HasPrefix(trimmed, ".") {
			return s.dotCommand(trimmed)
		}
	}

	if trimmed == "" {
		s.Flush()
		return false
	}

	if strings.HasSuffix(trimmed, ";") {
		// Keep the original indentation so error columns match the input.
		s.buf.WriteString(strings.TrimRight(line, " \t\r;"))
		s.Flush()
		return false
	}

	s.buf.WriteString(line)
	s.buf.WriteByte('\n')
	return false
}

// Flush compiles the pending query, if any.
func (s *replSession) Flush() {
	text := s.buf.String()
	s.buf.Reset()
	if strings.TrimSpace(text) == "" {
		return
	}

	res := s.compiler.Compile(replSource, text)
	if !res.OK() {
		s.r.Errorf("%s", s.r.SyntaxError(replSource, text, res.Err))
		return
	}

	if s.showAST {
		data, err := json.MarshalIndent(res.AST, "", "  ")
		if err == nil {
			s.r.Println(s.r.Styles().Muted.Render(string(data)))
		}
	}
	s.r.Printf("%s\n", s.r.SQL(res.SQL))
}

// dotCommand runs a dot command such as .help or .ast and reports whether
// the session should end.
func (s *replSession) dotCommand(line string) bool {
	command := strings.ToLower(strings.Fields(line)[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(s.r.Writer())

	case ".examples":
		for _, ex := range compiler.Examples() {
			s.r.Println(s.r.Styles().Header.Render("-- " + ex.Name))
			s.r.Println(ex.Query)
			s.r.Println()
		}

	case ".ast":
		s.showAST = !s.showAST
		state := "off"
		if s.showAST {
			state = "on"
		}
		s.r.Printf("syntax tree display %s\n", state)

	default:
		s.r.Errorf("Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .examples       Show example queries
  .ast            Toggle syntax tree display
  .quit / .exit   Exit the shell

Tips:
  - A query ends with ";" or an empty line
  - Use arrow keys to navigate history
  - Ctrl+C discards the query being typed
`
	_, _ = fmt.Fprintln(w, help)
}

// newREPLCompleter completes dot commands and keywords.
func newREPLCompleter() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, c := range []string{".help", ".examples", ".ast", ".quit", ".exit"} {
		items = append(items, readline.PcItem(c))
	}
	items = append(items, readline.PcItem("select"))
	return readline.NewPrefixCompleter(items...)
}
