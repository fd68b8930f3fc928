// Package pipeline turns a snapshot into a positioned view:
//
//  1. Build: filter the snapshot to tasks and spawn edges (package model)
//  2. Layout: rank, order and place the tasks (package layout), cached by
//     graph hash and options
//  3. Assemble: join model, layout and highlight into a [graph.View]
//
// The CLI commands and the live reconciler share this package so a snapshot
// renders the same way everywhere.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Execute(ctx, snap, pipeline.Options{Direction: graph.LeftRight})
//	if err != nil {
//	    return err
//	}
//	view := res.View(reach.Highlight{})
package pipeline

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/taskgraph/pkg/cache"
	"github.com/matzehuels/taskgraph/pkg/errors"
	"github.com/matzehuels/taskgraph/pkg/graph"
	"github.com/matzehuels/taskgraph/pkg/layout"
	"github.com/matzehuels/taskgraph/pkg/layout/ordering"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	DefaultDirection  = graph.TopDown
	DefaultNodeWidth  = layout.DefaultNodeWidth
	DefaultNodeHeight = layout.DefaultNodeHeight
	DefaultNodeSep    = layout.DefaultNodeSep
	DefaultRankSep    = layout.DefaultRankSep
	DefaultMargin     = layout.DefaultMargin
	DefaultPasses     = ordering.DefaultPasses

	// MaxPasses bounds ordering sweeps; more rarely helps and costs latency on
	// every refresh.
	MaxPasses = 64
)

// Options configures the build and layout stages.
type Options struct {
	Direction  graph.Direction
	NodeWidth  float64
	NodeHeight float64
	Spacing    layout.Spacing
	Passes     int

	// Hints seed the ordering from a previous layout. They are part of the
	// cache key.
	Hints ordering.Hints

	// NoCache skips the layout cache for this run.
	NoCache bool

	Logger *log.Logger
}

// ValidateAndSetDefaults fills zero fields and rejects invalid ones.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Direction == "" {
		o.Direction = DefaultDirection
	}
	if _, err := graph.ParseDirection(string(o.Direction)); err != nil {
		return errors.New(errors.ErrCodeInvalidDirection, "invalid direction %q", o.Direction)
	}
	if o.NodeWidth < 0 || o.NodeHeight < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "node size must not be negative")
	}
	if o.NodeWidth == 0 {
		o.NodeWidth = DefaultNodeWidth
	}
	if o.NodeHeight == 0 {
		o.NodeHeight = DefaultNodeHeight
	}
	if o.Spacing.NodeSep == 0 {
		o.Spacing.NodeSep = DefaultNodeSep
	}
	if o.Spacing.RankSep == 0 {
		o.Spacing.RankSep = DefaultRankSep
	}
	if o.Spacing.Margin == 0 {
		o.Spacing.Margin = DefaultMargin
	}
	if o.Spacing.NodeSep < 0 || o.Spacing.RankSep < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "spacing must not be negative")
	}
	if o.Passes == 0 {
		o.Passes = DefaultPasses
	}
	if o.Passes < 0 || o.Passes > MaxPasses {
		return errors.New(errors.ErrCodeInvalidInput, "passes must be between 1 and %d", MaxPasses)
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return nil
}

// LayoutOptions converts to the layout engine's options.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		Direction:  o.Direction,
		Spacing:    o.Spacing,
		NodeWidth:  o.NodeWidth,
		NodeHeight: o.NodeHeight,
		Passes:     o.Passes,
		Hints:      o.Hints,
		Logger:     o.Logger,
	}
}

// LayoutKeyOpts returns the options that identify a cached layout.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Direction:  string(o.Direction),
		NodeWidth:  o.NodeWidth,
		NodeHeight: o.NodeHeight,
		NodeSep:    o.Spacing.NodeSep,
		RankSep:    o.Spacing.RankSep,
		Margin:     o.Spacing.Margin,
		Passes:     o.Passes,
		Hints:      o.Hints,
	}
}
