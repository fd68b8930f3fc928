package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/taskgraph/internal/config"
	"github.com/matzehuels/taskgraph/pkg/graph"
	"github.com/matzehuels/taskgraph/pkg/pipeline"
	"github.com/matzehuels/taskgraph/pkg/reach"
)

// snapshotFlags select where a one-shot command reads its snapshot.
type snapshotFlags struct {
	scope     string
	direction string
	noCache   bool
	focus     string
}

func (f *snapshotFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.scope, "scope", "", "fetch this scope from the configured source instead of reading a file")
	cmd.Flags().StringVarP(&f.direction, "direction", "d", "", "layout direction: top-down, left-right (default from config)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable layout caching")
	cmd.Flags().StringVar(&f.focus, "focus", "", "highlight the lineage of this task")
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  snapshotFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "layout [snapshot.json]",
		Short: "Lay out a snapshot and write the positioned view as JSON",
		Long: `Lay out a snapshot and write the positioned view as JSON.

The snapshot is read from a file ('-' for stdin) or, with --scope, fetched
from the source in the config file. The output is the same view payload the
serve command pushes to dashboards.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args, flags, output)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.view.json, '-' for stdout)")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, args []string, flags snapshotFlags, output string) error {
	res, cached, err := c.computeView(ctx, args, flags)
	if err != nil {
		return err
	}
	hl, err := highlightFor(res, flags.focus)
	if err != nil {
		return err
	}
	v := res.View(hl)

	outputPath := output
	if outputPath == "" {
		outputPath = defaultOutput(args, flags.scope, ".view.json")
	}
	if outputPath == "-" {
		return graph.WriteView(os.Stdout, v)
	}
	if err := graph.WriteViewFile(v, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(v.Nodes), len(v.Edges), cached)
	if n := len(res.Layout.BackEdges); n > 0 {
		printWarning("%d spawn cycle edge(s) left out of ranking", n)
	}
	printNewline()
	printNextStep("Render", appName+" render "+inputName(args, flags.scope))
	return nil
}

// computeView loads the snapshot and runs the pipeline.
func (c *CLI) computeView(ctx context.Context, args []string, flags snapshotFlags) (*pipeline.Result, bool, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, false, err
	}
	opts := layoutOptions(cfg)
	if flags.direction != "" {
		d, err := graph.ParseDirection(flags.direction)
		if err != nil {
			return nil, false, err
		}
		opts.Direction = d
	}
	opts.NoCache = flags.noCache

	snap, err := c.loadSnapshot(ctx, cfg, args, flags.scope)
	if err != nil {
		return nil, false, err
	}

	runner, err := c.newRunner(ctx, cfg, flags.noCache)
	if err != nil {
		return nil, false, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()
	res, err := runner.Execute(ctx, snap, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return nil, false, fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return nil, false, ctx.Err()
	}
	return res, res.CacheInfo.LayoutHit, nil
}

// loadSnapshot reads args[0] ('-' is stdin) or fetches scope from the
// configured source.
func (c *CLI) loadSnapshot(ctx context.Context, cfg *config.Config, args []string, scope string) (graph.Snapshot, error) {
	if len(args) == 1 {
		if args[0] == "-" {
			return graph.ReadSnapshot(os.Stdin)
		}
		snap, err := graph.ReadSnapshotFile(args[0])
		if err != nil {
			return graph.Snapshot{}, fmt.Errorf("load snapshot %s: %w", args[0], err)
		}
		return snap, nil
	}

	src, closeSrc, err := c.newSource(ctx, cfg)
	if err != nil {
		return graph.Snapshot{}, err
	}
	defer closeSrc()
	if scope == "" {
		scope = cfg.Refresh.Scope
	}
	c.Logger.Debug("fetching snapshot", "source", cfg.Source.Type, "scope", scope)
	return src.GetGraphSnapshot(ctx, scope)
}

// defaultOutput derives an output path from the input file or the scope.
func defaultOutput(args []string, scope, suffix string) string {
	if len(args) == 1 && args[0] != "-" {
		return strings.TrimSuffix(args[0], filepath.Ext(args[0])) + suffix
	}
	if scope == "" {
		scope = "snapshot"
	}
	return scope + suffix
}

func inputName(args []string, scope string) string {
	if len(args) == 1 {
		return args[0]
	}
	return "--scope " + scope
}

// highlightFor returns the lineage of focus, empty when focus is empty.
func highlightFor(res *pipeline.Result, focus string) (reach.Highlight, error) {
	if focus == "" {
		return reach.Highlight{}, nil
	}
	if !res.Model.Has(focus) {
		return reach.Highlight{}, fmt.Errorf("task %q is not in the snapshot", focus)
	}
	return res.Index().Component(focus), nil
}
