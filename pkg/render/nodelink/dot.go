package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/taskgraph/pkg/graph"
	"github.com/matzehuels/taskgraph/pkg/model"
)

// Options configures DOT generation.
type Options struct {
	// Detailed adds status and phase lines under each label.
	Detailed bool
}

var bucketFill = map[model.Bucket]string{
	model.BucketDone:       "#d3f9d8",
	model.BucketInProgress: "#d0ebff",
	model.BucketPending:    "#f1f3f5",
	model.BucketFailed:     "#ffe3e3",
}

const highlightColor = "#f08c00"

// ToDOT writes a view as Graphviz DOT. Ranks and in-rank order come from the
// view, so Graphviz draws the same layering the layout engine computed.
// Highlighted nodes and edges are drawn in a heavier accent stroke and back
// edges are dashed.
func ToDOT(v graph.View, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir(v.Direction))
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  ordering=out;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range v.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, rank := range ranks(v) {
		buf.WriteString("  { rank=same;")
		for _, id := range rank {
			fmt.Fprintf(&buf, " %q;", id)
		}
		buf.WriteString(" }\n")
	}

	buf.WriteString("\n")
	for _, e := range v.Edges {
		attrs := edgeAttrs(e)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func rankdir(d graph.Direction) string {
	if d == graph.LeftRight {
		return "LR"
	}
	return "TB"
}

// ranks groups node IDs by rank, each group in slot order.
func ranks(v graph.View) [][]string {
	maxRank := -1
	for _, n := range v.Nodes {
		maxRank = max(maxRank, n.Rank)
	}
	out := make([][]string, maxRank+1)
	for r := range out {
		var row []graph.ViewNode
		for _, n := range v.Nodes {
			if n.Rank == r {
				row = append(row, n)
			}
		}
		ids := make([]string, len(row))
		for _, n := range row {
			if n.Order >= 0 && n.Order < len(ids) {
				ids[n.Order] = n.ID
			}
		}
		out[r] = ids
	}
	return out
}

func nodeAttrs(n graph.ViewNode, detailed bool) []string {
	label := n.DisplayLabel()
	if detailed {
		var parts []string
		if n.Status != "" {
			parts = append(parts, "status: "+n.Status)
		}
		if n.PhaseName != "" {
			parts = append(parts, "phase: "+n.PhaseName)
		}
		if len(parts) > 0 {
			label += "\n" + strings.Join(parts, "\n")
		}
	}

	attrs := []string{fmt.Sprintf("label=%q", label)}
	if fill, ok := bucketFill[model.Bucket(n.Bucket)]; ok {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
	}
	if n.Description != "" {
		attrs = append(attrs, fmt.Sprintf("tooltip=%q", n.Description))
	}
	if n.Highlighted {
		attrs = append(attrs, fmt.Sprintf("color=%q", highlightColor), "penwidth=2.5")
	}
	return attrs
}

func edgeAttrs(e graph.ViewEdge) []string {
	var attrs []string
	if e.Label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
	}
	if e.Back {
		attrs = append(attrs, "style=dashed", "constraint=false")
	}
	if e.Highlighted {
		attrs = append(attrs, fmt.Sprintf("color=%q", highlightColor), "penwidth=2.5")
	}
	return attrs
}

// RenderSVG renders DOT source to SVG in process.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one that
// scales to its container.
func normalizeViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[3]), 64)
	h, _ := strconv.ParseFloat(string(m[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
