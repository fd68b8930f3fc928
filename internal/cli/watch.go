package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/taskgraph/internal/config"
	"github.com/matzehuels/taskgraph/pkg/graph"
	"github.com/matzehuels/taskgraph/pkg/reconcile"
)

// liveFlags override the [refresh] section of the config file.
type liveFlags struct {
	scope     string
	direction string
	interval  time.Duration
	noAuto    bool
	noCache   bool
}

func (f *liveFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.scope, "scope", "", "scope to watch (default from config)")
	cmd.Flags().StringVarP(&f.direction, "direction", "d", "", "layout direction: top-down, left-right")
	cmd.Flags().DurationVarP(&f.interval, "interval", "i", 0, "auto-refresh interval: 5s, 10s, 15s, 30s or 60s")
	cmd.Flags().BoolVar(&f.noAuto, "no-auto", false, "start with auto-refresh off")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable layout caching")
}

// liveSession is a running reconciler plus the resources behind it.
type liveSession struct {
	reconciler *reconcile.Reconciler
	publish    publishFunc
	close      func()
}

// newLiveSession wires source, feed, cache and reconciler from config and
// flags.
func (c *CLI) newLiveSession(ctx context.Context, cfg *config.Config, flags liveFlags, onSelect func(string)) (*liveSession, error) {
	opts := reconcile.Options{
		Scope:        cfg.Refresh.Scope,
		Direction:    cfg.Direction(),
		Interval:     cfg.Refresh.Interval.Duration,
		AutoRefresh:  cfg.Refresh.AutoRefresh() && !flags.noAuto,
		FetchTimeout: cfg.Refresh.FetchTimeout.Duration,
		Layout:       layoutOptions(cfg),
		OnSelect:     onSelect,
		Logger:       c.Logger,
	}
	if flags.scope != "" {
		opts.Scope = flags.scope
	}
	if flags.direction != "" {
		d, err := graph.ParseDirection(flags.direction)
		if err != nil {
			return nil, err
		}
		opts.Direction = d
	}
	if flags.interval != 0 {
		opts.Interval = flags.interval
	}

	src, closeSrc, err := c.newSource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	runner, err := c.newRunner(ctx, cfg, flags.noCache)
	if err != nil {
		closeSrc()
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	feed, publish, closeFeed := c.newFeed(cfg)

	opts.Runner = runner
	opts.Events = feed
	r, err := reconcile.New(src, opts)
	if err != nil {
		closeFeed()
		_ = runner.Close()
		closeSrc()
		return nil, err
	}

	c.Logger.Info("live view ready",
		"scope", opts.Scope,
		"source", cfg.Source.Type,
		"events", cfg.Events.Type,
		"interval", opts.Interval,
		"auto", opts.AutoRefresh)

	return &liveSession{
		reconciler: r,
		publish:    publish,
		close: func() {
			closeFeed()
			_ = runner.Close()
			closeSrc()
		},
	}, nil
}

// watchCommand creates the terminal dashboard command.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		flags   liveFlags
		logFile string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a scope's task lineage live in the terminal",
		Long: `Watch a scope's task lineage live in the terminal.

The graph refreshes on a timer, on task_created events and on demand.
Moving the cursor onto a task highlights everything connected to it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), flags, logFile)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file while the dashboard is open")

	return cmd
}

func (c *CLI) runWatch(ctx context.Context, flags liveFlags, logFile string) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}

	// The dashboard owns the terminal; logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	c.Logger.SetOutput(logOut)
	defer c.Logger.SetOutput(os.Stderr)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	onSelect := func(id string) { c.Logger.Info("task selected", "task", id) }
	sess, err := c.newLiveSession(ctx, cfg, flags, onSelect)
	if err != nil {
		return err
	}
	defer sess.close()

	views, unsubscribe := sess.reconciler.Subscribe()
	defer unsubscribe()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sess.reconciler.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		p := tea.NewProgram(NewWatchModel(gctx, sess.reconciler, views), tea.WithAltScreen(), tea.WithContext(gctx))
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
