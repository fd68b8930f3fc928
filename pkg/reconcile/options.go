package reconcile

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/taskgraph/pkg/errors"
	"github.com/matzehuels/taskgraph/pkg/events"
	"github.com/matzehuels/taskgraph/pkg/graph"
	"github.com/matzehuels/taskgraph/pkg/pipeline"
)

// DefaultFetchTimeout bounds one snapshot request.
const DefaultFetchTimeout = 15 * time.Second

// Fetcher returns the current snapshot for a scope.
type Fetcher interface {
	GetGraphSnapshot(ctx context.Context, scope string) (graph.Snapshot, error)
}

// Options configures a Reconciler.
type Options struct {
	Scope       string
	Direction   graph.Direction
	Interval    time.Duration // One of graph.RefreshIntervals; zero uses the default
	AutoRefresh bool

	FetchTimeout time.Duration

	// Layout carries sizes and spacing. Direction and Hints are managed by the
	// reconciler and ignored here.
	Layout pipeline.Options
	Runner *pipeline.Runner

	// Events, when set, triggers a refresh on task_created for the scope.
	Events events.Feed

	// OnSelect is called after a Click is applied, on the caller's goroutine.
	OnSelect func(taskID string)

	Logger *log.Logger
}

func (o *Options) validateAndSetDefaults() error {
	if o.Direction == "" {
		o.Direction = graph.TopDown
	}
	d, err := graph.ParseDirection(string(o.Direction))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDirection, err, "invalid direction")
	}
	o.Direction = d
	if o.Interval == 0 {
		o.Interval = graph.DefaultRefreshInterval
	}
	if !graph.ValidRefreshInterval(o.Interval) {
		return errors.New(errors.ErrCodeInvalidInterval, "refresh interval %s is not one of %v", o.Interval, graph.RefreshIntervals)
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = DefaultFetchTimeout
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	if o.Runner == nil {
		o.Runner = pipeline.NewRunner(nil, nil, o.Logger)
	}
	o.Layout.Logger = o.Logger
	o.Layout.Hints = nil
	return o.Layout.ValidateAndSetDefaults()
}
