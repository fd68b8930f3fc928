package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/taskgraph/pkg/cache"
	"github.com/matzehuels/taskgraph/pkg/graph"
	"github.com/matzehuels/taskgraph/pkg/layout"
	"github.com/matzehuels/taskgraph/pkg/model"
	"github.com/matzehuels/taskgraph/pkg/observability"
)

// Runner executes the pipeline with a layout cache.
//
// The Runner holds no per-run state, so one instance can serve concurrent
// callers with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is the cache lifetime of a layout; zero uses cache.DefaultLayoutTTL.
	TTL time.Duration
}

// NewRunner creates a runner. A nil cache disables caching; a nil keyer uses
// cache.DefaultKeyer.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Result is the output of one pipeline run.
type Result struct {
	Snapshot  graph.Snapshot
	Model     model.Model
	Layout    layout.Result
	Direction graph.Direction
	GraphHash string

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats records stage timings and sizes.
type Stats struct {
	BuildTime  time.Duration
	LayoutTime time.Duration
	NodeCount  int
	EdgeCount  int
}

// CacheInfo reports which stages were served from cache.
type CacheInfo struct {
	LayoutHit bool
}

// Execute runs build and layout for snap.
func (r *Runner) Execute(ctx context.Context, snap graph.Snapshot, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	res := &Result{Snapshot: snap, Direction: opts.Direction}

	buildStart := time.Now()
	res.Model = r.Build(snap)
	res.Stats.BuildTime = time.Since(buildStart)
	res.Stats.NodeCount = len(res.Model.Tasks)
	res.Stats.EdgeCount = len(res.Model.Edges)

	layoutStart := time.Now()
	l, hit, hash, err := r.LayoutWithCacheInfo(ctx, res.Model, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	res.Layout = l
	res.GraphHash = hash
	res.CacheInfo.LayoutHit = hit
	res.Stats.LayoutTime = time.Since(layoutStart)

	r.Logger.Debug("computed layout",
		"nodes", res.Stats.NodeCount,
		"edges", res.Stats.EdgeCount,
		"ranks", l.Ranks,
		"cached", hit,
		"duration", res.Stats.LayoutTime)

	return res, nil
}

// Build filters the snapshot and logs what was discarded.
func (r *Runner) Build(snap graph.Snapshot) model.Model {
	m := model.Build(snap)
	if m.Dropped > 0 || m.Duplicates > 0 {
		r.Logger.Debug("filtered snapshot",
			"tasks", len(m.Tasks),
			"edges", len(m.Edges),
			"dangling", m.Dropped,
			"duplicates", m.Duplicates)
	}
	return m
}

// LayoutWithCacheInfo lays out m, consulting the cache first. It returns the
// layout, whether it came from cache, and the graph hash used in the key.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, m model.Model, opts Options) (layout.Result, bool, string, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return layout.Result{}, false, "", err
	}
	hooks := observability.Pipeline()
	cacheHooks := observability.Cache()

	hash := r.Keyer.GraphHash(m.TaskIDs(), graphEdges(m))
	key := r.Keyer.LayoutKey(hash, opts.LayoutKeyOpts())

	if !opts.NoCache {
		var cached layout.Result
		err := cache.GetJSON(ctx, r.Cache, key, &cached)
		switch {
		case err == nil:
			cacheHooks.OnCacheHit(ctx, "layout")
			return cached, true, hash, nil
		case errors.Is(err, cache.ErrCacheMiss):
			cacheHooks.OnCacheMiss(ctx, "layout")
		default:
			r.Logger.Warn("layout cache read failed", "err", err)
		}
	}

	start := time.Now()
	hooks.OnLayoutStart(ctx, string(opts.Direction), len(m.Tasks))
	l := layout.ComputeModel(m, opts.LayoutOptions())
	hooks.OnLayoutComplete(ctx, string(opts.Direction), time.Since(start), nil)

	if !opts.NoCache && len(l.Nodes) > 0 {
		ttl := r.TTL
		if ttl <= 0 {
			ttl = cache.DefaultLayoutTTL
		}
		size, err := cache.SetJSON(ctx, r.Cache, key, l, ttl)
		if err != nil {
			r.Logger.Warn("layout cache write failed", "err", err)
		} else {
			cacheHooks.OnCacheSet(ctx, "layout", size)
		}
	}
	return l, false, hash, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func graphEdges(m model.Model) []cache.GraphEdge {
	edges := make([]cache.GraphEdge, len(m.Edges))
	for i, e := range m.Edges {
		edges[i] = cache.GraphEdge{ID: e.ID, Source: e.Source, Target: e.Target}
	}
	return edges
}
