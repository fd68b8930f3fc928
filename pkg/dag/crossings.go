package dag

import (
	"maps"
	"slices"
)

// CountCrossings returns the total number of edge crossings for the given rank
// orderings. It sums the crossings between each pair of consecutive ranks; edges
// that skip a rank are not counted. The orders map should contain node IDs in
// left-to-right order for each rank. Ranks without entries are treated as empty.
//
//	orders := map[int][]string{
//	    0: {"plan", "triage"},
//	    1: {"build", "test", "lint"},
//	}
//	crossings := dag.CountCrossings(g, orders)
//
// It runs in O(R × E log V) time where R is the number of ranks, E is edges per
// layer, and V is nodes per layer.
func CountCrossings(g *DAG, orders map[int][]string) int {
	ranks := slices.Sorted(maps.Keys(orders))
	crossings := 0
	for i := 0; i < len(ranks)-1; i++ {
		r := ranks[i]
		crossings += CountLayerCrossings(g, orders[r], orders[r+1])
	}
	return crossings
}

// CountLayerCrossings counts edge crossings between two adjacent ranks using a
// Fenwick tree (binary indexed tree) for O(E log V) performance where E is the
// number of edges between the ranks and V is the number of nodes in the lower rank.
//
// Two edges (u1,v1) and (u2,v2) cross if and only if:
//
//	pos(u1) < pos(u2) AND pos(v1) > pos(v2)
//
// This is equivalent to counting inversions in the sequence of target positions
// when edges are sorted by source position. The Fenwick tree enables efficient
// inversion counting compared to the naive O(E²) algorithm.
//
// Returns 0 if either rank is empty or nil, as no crossings can exist without edges.
func CountLayerCrossings(g *DAG, upper, lower []string) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}

	lowerPos := PosMap(lower)

	type edge struct{ upper, lower int }
	edges := make([]edge, 0, len(upper)*2)
	for i, nodeID := range upper {
		for _, child := range g.Children(nodeID) {
			if pos, ok := lowerPos[child]; ok {
				edges = append(edges, edge{i, pos})
			}
		}
	}
	if len(edges) < 2 {
		return 0
	}

	// Sort edges by source position, then by target position
	slices.SortFunc(edges, func(a, b edge) int {
		if a.upper != b.upper {
			return a.upper - b.upper
		}
		return a.lower - b.lower
	})

	// Count inversions using Fenwick tree
	fenwick := make([]int, len(lower)+1)
	crossings, total := 0, 0
	for _, e := range edges {
		// Query: count edges seen so far with target <= e.lower
		lessOrEqual := 0
		for q := e.lower + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		// Crossings = edges seen so far with target > e.lower
		crossings += total - lessOrEqual

		// Update: increment count at target position
		total++
		for idx := e.lower + 1; idx < len(fenwick); idx += idx & (-idx) {
			fenwick[idx]++
		}
	}
	return crossings
}

// CountPairCrossings counts the crossings between the edges of two nodes when
// left is placed before right in their rank. If useParents is true, it considers
// edges to the rank above; otherwise, edges to the rank below.
//
// The transpose step of the ordering heuristic compares CountPairCrossings for
// (a, b) against (b, a) to decide whether swapping neighbours helps. adjOrder
// holds the node IDs of the adjacent rank in left-to-right order.
//
// Returns 0 if either node has no edges to the adjacent rank, or if no crossings
// would occur. This function does not modify the graph.
func CountPairCrossings(g *DAG, left, right string, adjOrder []string, useParents bool) int {
	return CountPairCrossingsWithPos(g, left, right, PosMap(adjOrder), useParents)
}

// CountPairCrossingsWithPos is like [CountPairCrossings] but takes a precomputed
// position map for the adjacent rank. This avoids repeated calls to [PosMap] when
// checking multiple swaps against the same adjacent rank.
//
// The adjPos map should map node IDs to their positions (0-indexed) in the
// adjacent rank. Nodes not in the map are ignored.
func CountPairCrossingsWithPos(g *DAG, left, right string, adjPos map[string]int, useParents bool) int {
	var lnbr, rnbr []string
	if useParents {
		lnbr = g.Parents(left)
		rnbr = g.Parents(right)
	} else {
		lnbr = g.Children(left)
		rnbr = g.Children(right)
	}

	crossings := 0
	for _, ln := range lnbr {
		lp, ok := adjPos[ln]
		if !ok {
			continue
		}
		for _, rn := range rnbr {
			// If left's neighbor is to the right of right's neighbor, they cross
			if rp, ok := adjPos[rn]; ok && lp > rp {
				crossings++
			}
		}
	}
	return crossings
}
