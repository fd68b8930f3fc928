package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/taskgraph/internal/server"
)

const shutdownTimeout = 5 * time.Second

// serveCommand creates the HTTP/WebSocket server command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags liveFlags
		addr  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a live task lineage view over HTTP and WebSocket",
		Long: `Serve a live task lineage view over HTTP and WebSocket.

GET /api/view returns the current view as JSON, GET /api/view.svg renders it,
and /ws pushes every new view. Controls (refresh, direction, scope, interval,
hover, select) are plain JSON endpoints under /api.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), flags, addr)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, flags liveFlags, addr string) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	onSelect := func(id string) { c.Logger.Info("task selected", "task", id) }
	sess, err := c.newLiveSession(ctx, cfg, flags, onSelect)
	if err != nil {
		return err
	}
	defer sess.close()

	handler := server.New(sess.reconciler, server.Options{
		Publish:      sess.publish,
		AllowOrigins: cfg.Server.AllowOrigins,
		Logger:       c.Logger,
	})

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	c.Logger.Info("listening", "addr", ln.Addr().String())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sess.reconciler.Run(gctx)
	})
	g.Go(func() error {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	c.Logger.Info("server stopped")
	return nil
}
