// Package cli implements the taskgraph command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/matzehuels/taskgraph/internal/config"
	"github.com/matzehuels/taskgraph/pkg/buildinfo"
	"github.com/matzehuels/taskgraph/pkg/cache"
	"github.com/matzehuels/taskgraph/pkg/events"
	"github.com/matzehuels/taskgraph/pkg/events/redisfeed"
	"github.com/matzehuels/taskgraph/pkg/observability"
	"github.com/matzehuels/taskgraph/pkg/pipeline"
	"github.com/matzehuels/taskgraph/pkg/reconcile"
	"github.com/matzehuels/taskgraph/pkg/source/filesource"
	"github.com/matzehuels/taskgraph/pkg/source/httpsource"
	"github.com/matzehuels/taskgraph/pkg/source/mongosource"
)

// =============================================================================
// Constants
// =============================================================================

// appName is used for cache directories and display.
const appName = "taskgraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a CLI with a timestamped logger writing to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level every
// observability hook logs through the same logger.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		hooks := observability.NewLogHooks(c.Logger)
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
		observability.SetEventHooks(hooks)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "taskgraph lays out and watches live task lineage graphs",
		Long: `taskgraph turns snapshots of a multi-agent orchestrator's tasks into
layered lineage diagrams. It can lay out and render a single snapshot, or
keep a live view in sync with the orchestrator in the terminal or over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+config.DefaultPath()+")")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.reachCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config loads the config file once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	c.cfg = &cfg
	return c.cfg, nil
}

// =============================================================================
// Factories
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config, noCache bool) (*pipeline.Runner, error) {
	lc, err := c.newCache(ctx, cfg.Cache, noCache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(lc, nil, c.Logger)
	runner.TTL = cfg.Cache.TTL.Duration
	return runner, nil
}

func (c *CLI) newCache(ctx context.Context, cfg config.Cache, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Type == config.CacheNone {
		return cache.NewNullCache(), nil
	}
	if cfg.Type == config.CacheRedis {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		return rc, nil
	}

	dir := cfg.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}

// newSource creates the configured snapshot source. The returned close
// function is never nil.
func (c *CLI) newSource(ctx context.Context, cfg *config.Config) (reconcile.Fetcher, func(), error) {
	noop := func() {}
	src := cfg.Source
	switch src.Type {
	case config.SourceHTTP:
		s, err := httpsource.New(src.URL, httpsource.Options{Token: src.Token, Timeout: src.Timeout.Duration, Path: src.Path})
		return s, noop, err
	case config.SourceMongo:
		s, err := mongosource.Connect(ctx, mongosource.Config{URI: src.MongoURI, Database: src.Database, Collection: src.Collection})
		if err != nil {
			return nil, noop, err
		}
		return s, func() {
			if err := s.Close(context.Background()); err != nil {
				c.Logger.Warn("close mongo source", "err", err)
			}
		}, nil
	default:
		return filesource.New(src.Dir), noop, nil
	}
}

// publishFunc injects an event into the configured feed.
type publishFunc func(ctx context.Context, e events.Event) error

// newFeed creates the configured event feed. Both the feed and publish are
// nil when events are disabled.
func (c *CLI) newFeed(cfg *config.Config) (events.Feed, publishFunc, func()) {
	switch cfg.Events.Type {
	case config.EventsBus:
		bus := events.NewBus(0)
		publish := func(_ context.Context, e events.Event) error {
			c.Logger.Debug("event published", "type", e.Type, "scope", e.Scope, "delivered", bus.Publish(e))
			return nil
		}
		return bus, publish, bus.Close
	case config.EventsRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.Events.RedisAddr})
		feed := redisfeed.New(client, cfg.Events.Channel, c.Logger)
		return feed, feed.Publish, func() { _ = client.Close() }
	default:
		return nil, nil, func() {}
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/taskgraph/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutOptions builds pipeline options from the config file.
func layoutOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		Direction:  cfg.Direction(),
		NodeWidth:  cfg.Layout.NodeWidth,
		NodeHeight: cfg.Layout.NodeHeight,
		Spacing:    cfg.Layout.Spacing,
		Passes:     cfg.Layout.Passes,
	}
}
