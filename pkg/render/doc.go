// Package render turns task graph views into images.
//
// The [nodelink] subpackage writes a [graph.View] as Graphviz DOT with the
// layout engine's coordinates pinned, and renders it to SVG in process.
// [ToPDF] and [ToPNG] convert that SVG with the external rsvg-convert tool.
//
//	dot := nodelink.ToDOT(view, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := render.ToPNG(ctx, svg, 2)
//
// [graph.View]: github.com/matzehuels/taskgraph/pkg/graph.View
// [nodelink]: github.com/matzehuels/taskgraph/pkg/render/nodelink
package render
