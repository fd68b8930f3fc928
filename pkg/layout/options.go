package layout

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/taskgraph/pkg/graph"
	"github.com/matzehuels/taskgraph/pkg/layout/ordering"
)

const (
	DefaultNodeWidth  = 160.0
	DefaultNodeHeight = 48.0
	DefaultNodeSep    = 24.0
	DefaultRankSep    = 64.0
	DefaultMargin     = 16.0
)

// Spacing controls the gaps of the drawing. NodeSep separates neighbours in a
// rank, RankSep separates consecutive ranks. A negative Margin means none.
type Spacing struct {
	NodeSep float64 `toml:"node_sep" json:"node_sep"`
	RankSep float64 `toml:"rank_sep" json:"rank_sep"`
	Margin  float64 `toml:"margin" json:"margin"`
}

// Options configures [Compute]. The zero value is valid.
type Options struct {
	Direction  graph.Direction
	Spacing    Spacing
	NodeWidth  float64
	NodeHeight float64

	// Passes is the number of ordering sweeps (default ordering.DefaultPasses).
	Passes int

	// Hints are relative positions from a previous layout, see [Result.Hints].
	// Tasks without a hint inherit the hint of their first ranked parent.
	Hints ordering.Hints

	Logger *log.Logger
}

func (o Options) withDefaults() Options {
	if o.Direction == "" {
		o.Direction = graph.TopDown
	}
	if o.NodeWidth <= 0 {
		o.NodeWidth = DefaultNodeWidth
	}
	if o.NodeHeight <= 0 {
		o.NodeHeight = DefaultNodeHeight
	}
	if o.Spacing.NodeSep <= 0 {
		o.Spacing.NodeSep = DefaultNodeSep
	}
	if o.Spacing.RankSep <= 0 {
		o.Spacing.RankSep = DefaultRankSep
	}
	if o.Spacing.Margin < 0 {
		o.Spacing.Margin = 0
	} else if o.Spacing.Margin == 0 {
		o.Spacing.Margin = DefaultMargin
	}
	if o.Passes <= 0 {
		o.Passes = ordering.DefaultPasses
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}
