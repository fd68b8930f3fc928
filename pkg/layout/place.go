package layout

import (
	"cmp"
	"slices"

	"github.com/matzehuels/taskgraph/pkg/dag"
	"github.com/matzehuels/taskgraph/pkg/graph"
)

// place converts (rank, order) into coordinates. The layout is computed on an
// abstract (along, across) plane where ranks advance along "across"; for
// LeftRight the two axes are swapped when writing X and Y.
func place(g *dag.DAG, opts Options) Result {
	horizontal := opts.Direction == graph.LeftRight

	// Extent of one box along the order axis and along the rank axis.
	slot, depth := opts.NodeWidth, opts.NodeHeight
	if horizontal {
		slot, depth = opts.NodeHeight, opts.NodeWidth
	}
	sp := opts.Spacing

	span := func(k int) float64 {
		if k == 0 {
			return 0
		}
		return float64(k)*slot + float64(k-1)*sp.NodeSep
	}

	ranks := g.RankIDs()
	widest := 0.0
	for _, r := range ranks {
		widest = max(widest, span(len(g.NodesInRank(r))))
	}

	nodes := make([]Node, 0, g.NodeCount())
	for _, r := range ranks {
		row := g.NodesInRank(r)
		offset := sp.Margin + (widest-span(len(row)))/2
		across := sp.Margin + float64(r)*(depth+sp.RankSep)
		for i, n := range row {
			along := offset + float64(i)*(slot+sp.NodeSep)
			x, y := along, across
			if horizontal {
				x, y = across, along
			}
			nodes = append(nodes, Node{
				ID:     n.ID,
				Rank:   n.Rank,
				Order:  i,
				X:      x,
				Y:      y,
				Width:  opts.NodeWidth,
				Height: opts.NodeHeight,
			})
		}
	}
	slices.SortFunc(nodes, func(a, b Node) int { return cmp.Compare(a.ID, b.ID) })

	rankCount := 0
	if len(ranks) > 0 {
		rankCount = ranks[len(ranks)-1] + 1
	}
	along := 2*sp.Margin + widest
	across := 2*sp.Margin + float64(rankCount)*depth + float64(max(rankCount-1, 0))*sp.RankSep

	res := Result{Nodes: nodes, Ranks: rankCount, Width: along, Height: across}
	if horizontal {
		res.Width, res.Height = across, along
	}
	return res
}
