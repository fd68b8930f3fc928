// Package nodelink renders task lineage views as node-link diagrams.
//
// [ToDOT] writes a [graph.View] as Graphviz DOT. Each rank becomes a
// rank=same group listed in slot order, so Graphviz keeps the layering the
// layout engine chose; node fill follows the status bucket, and the hover
// highlight is drawn as an accent stroke.
//
//	dot := nodelink.ToDOT(view, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Rendering uses [github.com/goccy/go-graphviz] in process; no Graphviz
// installation is needed.
//
// [graph.View]: github.com/matzehuels/taskgraph/pkg/graph.View
package nodelink
