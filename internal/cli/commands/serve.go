package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/leapstack-labs/bettersql/internal/ui"
	"github.com/leapstack-labs/bettersql/internal/watch"
	"github.com/spf13/cobra"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Port  int
	CORS  bool
	Watch string
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the playground server",
		Long: `Start a local web server with an interactive playground and a JSON API.

Endpoints:
  GET  /                 playground page
  POST /api/compile      {"query": "..."} -> {"id", "sql"}
  POST /api/parse        {"query": "..."} -> {"id", "ast"}
  GET  /api/examples     example queries
  GET  /api/events       server-sent events for watched files
  GET  /healthz          liveness probe

With --watch, sources below the directory are recompiled on change and
every result is pushed to /api/events subscribers.`,
		Example: `  # Start on the default port
  bsql serve

  # Start on a custom port and recompile queries/ on change
  bsql serve --port 3000 --watch queries`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8766)")
	cmd.Flags().BoolVar(&opts.CORS, "cors", false, "Allow cross-origin requests")
	cmd.Flags().StringVar(&opts.Watch, "watch", "", "Recompile sources below this directory on change")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cc := NewCommandContext(cmd)

	serverCfg := ui.Config{
		Port:   cc.Cfg.UI.Port,
		CORS:   cc.Cfg.UI.CORS,
		Logger: cc.Logger,
	}

	if opts.Watch != "" {
		if info, err := os.Stat(opts.Watch); err != nil || !info.IsDir() {
			return fmt.Errorf("cannot watch %s: not a directory", opts.Watch)
		}
		serverCfg.Watch = &watch.Config{
			Dir:        opts.Watch,
			SourceExt:  cc.Cfg.SourceExt,
			OutputPath: cc.Cfg.OutputPath,
			Debounce:   cc.Cfg.Watch.Debounce,
			Logger:     cc.Logger,
		}
	}

	server := ui.NewServer(serverCfg)

	cc.Renderer.Errorf("Playground on http://localhost:%d\n", serverCfg.Port)
	cc.Renderer.Errorf("Press Ctrl+C to stop\n")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx)
}
