package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/taskgraph/pkg/graph"
	"github.com/matzehuels/taskgraph/pkg/render"
	"github.com/matzehuels/taskgraph/pkg/render/nodelink"
)

// Output formats.
const (
	formatSVG  = "svg"
	formatDOT  = "dot"
	formatPDF  = "pdf"
	formatPNG  = "png"
	formatJSON = "json"
)

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{formatSVG: true, formatDOT: true, formatPDF: true, formatPNG: true, formatJSON: true}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	snapshotFlags
	output   string   // output file, or base path for several formats
	formats  []string // svg, dot, pdf, png, json
	detailed bool     // status and phase lines under each label
	scale    float64  // PNG scale factor
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{scale: 2}

	cmd := &cobra.Command{
		Use:   "render [snapshot.json]",
		Short: "Render a snapshot as a node-link diagram",
		Long: `Render a snapshot as a node-link diagram.

Tasks keep the ranks and in-rank order computed by the layout engine; nodes
are filled by status and --focus draws one task's lineage in an accent
color. SVG and DOT are produced in process; PDF and PNG need rsvg-convert.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args, &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (several)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, json, pdf, png (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show status and phase in node labels")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")

	return cmd
}

// parseFormats splits the --format flag, defaulting to svg.
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatSVG}
	}
	return strings.Split(s, ",")
}

// validateFormats checks that all requested formats are supported.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return fmt.Errorf("invalid format: %s (must be 'svg', 'dot', 'json', 'pdf', or 'png')", f)
		}
	}
	return nil
}

// basePath derives the base output path. A known format extension on
// output is stripped; without output the input name is used.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if validFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func (c *CLI) runRender(ctx context.Context, args []string, opts *renderOpts) error {
	res, cached, err := c.computeView(ctx, args, opts.snapshotFlags)
	if err != nil {
		return err
	}
	hl, err := highlightFor(res, opts.focus)
	if err != nil {
		return err
	}
	v := res.View(hl)
	v.Hovered = opts.focus

	base := basePath(opts.output, defaultOutput(args, opts.scope, ""))
	var written []string
	for _, format := range opts.formats {
		data, err := renderView(ctx, v, format, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", format, err)
		}
		path := base + "." + format
		if len(opts.formats) == 1 && opts.output != "" {
			path = opts.output
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		c.Logger.Debug("wrote output", "format", format, "bytes", len(data))
		written = append(written, path)
	}

	printSuccess("Rendered %d task(s)", len(v.Nodes))
	for _, p := range written {
		printFile(p)
	}
	printStats(len(v.Nodes), len(v.Edges), cached)
	return nil
}

// renderView produces one output format for v.
func renderView(ctx context.Context, v graph.View, format string, opts *renderOpts) ([]byte, error) {
	if format == formatJSON {
		var b strings.Builder
		if err := graph.WriteView(&b, v); err != nil {
			return nil, err
		}
		return []byte(b.String()), nil
	}

	dot := nodelink.ToDOT(v, nodelink.Options{Detailed: opts.detailed})
	if format == formatDOT {
		return []byte(dot), nil
	}

	svg, err := nodelink.RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	switch format {
	case formatPDF:
		return render.ToPDF(ctx, svg)
	case formatPNG:
		return render.ToPNG(ctx, svg, opts.scale)
	default:
		return svg, nil
	}
}
