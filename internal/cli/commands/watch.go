package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leapstack-labs/bettersql/internal/cli/output"
	"github.com/leapstack-labs/bettersql/internal/watch"
	"github.com/spf13/cobra"
)

// WatchOptions holds options for the watch command.
type WatchOptions struct {
	Debounce time.Duration
	Once     bool
}

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	opts := &WatchOptions{}
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Recompile queries when they change",
		Long: `Compile every source file below a directory and recompile each one
when it changes. The SQL of a source is written next to it with the
configured output extension.

A source that fails to compile keeps its previous SQL file, so a half
typed query never clobbers working output.`,
		Example: `  # Watch the current directory
  bsql watch

  # Watch a directory with a longer debounce window
  bsql watch queries --debounce 500ms

  # Compile everything once and exit
  bsql watch queries --once`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runWatch(cmd, dir, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.Debounce, "debounce", 0, "Wait this long for changes to settle (default: 100ms)")
	cmd.Flags().BoolVar(&opts.Once, "once", false, "Compile every source once and exit")

	return cmd
}

func runWatch(cmd *cobra.Command, dir string, opts *WatchOptions) error {
	cc := NewCommandContext(cmd)

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("cannot watch %s: not a directory", dir)
	}

	w := watch.New(watch.Config{
		Dir:        dir,
		SourceExt:  cc.Cfg.SourceExt,
		OutputPath: cc.Cfg.OutputPath,
		Debounce:   cc.Cfg.Watch.Debounce,
		Logger:     cc.Logger,
		OnCompile:  func(ev watch.Event) { reportEvent(cc.Renderer, ev) },
	})

	events, err := w.CompileAll()
	if err != nil {
		return err
	}
	if opts.Once {
		failed := 0
		for _, ev := range events {
			if !ev.OK {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d queries failed to compile", failed, len(events))
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cc.Renderer.Errorf("Watching %s for %s changes. Press Ctrl+C to stop\n", dir, cc.Cfg.SourceExt)
	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// reportEvent prints one status line per compiled source.
func reportEvent(r *output.Renderer, ev watch.Event) {
	if r.EffectiveMode() == output.ModeJSON {
		_ = r.JSON(ev)
		return
	}

	styles := r.Styles()
	if ev.OK {
		r.Printf("%s %s -> %s\n", styles.Success.Render("ok"), ev.Source, ev.Output)
		return
	}
	if ev.Line > 0 {
		r.Printf("%s %s:%d:%d: %s\n", styles.Error.Render("error"), ev.Source, ev.Line, ev.Column, ev.Error)
		return
	}
	r.Printf("%s %s: %s\n", styles.Error.Render("error"), ev.Source, ev.Error)
}
