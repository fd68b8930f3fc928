package ordering

import (
	"cmp"
	"maps"
	"slices"

	"github.com/matzehuels/taskgraph/pkg/dag"
)

// Barycentric orders ranks with alternating barycenter sweeps followed by
// adjacent transposition. The zero value is usable.
type Barycentric struct {
	Passes int   // Number of sweeps (default DefaultPasses)
	Hints  Hints // Optional seed positions
}

// OrderRanks returns the best ordering found for every rank of g. The result
// is a function of g and Hints only.
func (b Barycentric) OrderRanks(g *dag.DAG) map[int][]string {
	ranks := g.RankIDs()
	if len(ranks) == 0 {
		return map[int][]string{}
	}

	orders := b.seed(g, ranks)
	best := cloneOrders(orders)
	bestCrossings := dag.CountCrossings(g, best)

	passes := b.Passes
	if passes <= 0 {
		passes = DefaultPasses
	}

	for pass := 0; pass < passes && bestCrossings > 0; pass++ {
		down := pass%2 == 0
		sweep(g, ranks, orders, down)
		transpose(g, ranks, orders)

		if c := dag.CountCrossings(g, orders); c < bestCrossings {
			best, bestCrossings = cloneOrders(orders), c
		}
	}
	return best
}

func (b Barycentric) seed(g *dag.DAG, ranks []int) map[int][]string {
	orders := make(map[int][]string, len(ranks))
	for _, r := range ranks {
		ids := dag.NodeIDs(g.NodesInRank(r))
		slices.SortStableFunc(ids, func(x, y string) int {
			hx, okx := b.Hints[x]
			hy, oky := b.Hints[y]
			switch {
			case okx && !oky:
				return -1
			case !okx && oky:
				return 1
			case okx && oky && hx != hy:
				return cmp.Compare(hx, hy)
			}
			return cmp.Compare(x, y)
		})
		orders[r] = ids
	}
	return orders
}

// sweep reorders every rank by the mean normalized position of its neighbours
// on the side the sweep comes from. Tasks without such neighbours keep their
// current normalized position.
func sweep(g *dag.DAG, ranks []int, orders map[int][]string, down bool) {
	pos := normalizedPositions(orders)

	seq := ranks
	if !down {
		seq = slices.Clone(ranks)
		slices.Reverse(seq)
	}

	for i, r := range seq {
		if i == 0 {
			continue
		}
		ids := orders[r]
		keys := make(map[string]float64, len(ids))
		for _, id := range ids {
			nbrs := g.Parents(id)
			if !down {
				nbrs = g.Children(id)
			}
			keys[id] = barycenter(nbrs, pos, pos[id])
		}
		slices.SortStableFunc(ids, func(x, y string) int {
			return cmp.Compare(keys[x], keys[y])
		})
		for j, id := range ids {
			pos[id] = position(j, len(ids))
		}
	}
}

func barycenter(nbrs []string, pos map[string]float64, fallback float64) float64 {
	sum, n := 0.0, 0
	for _, nb := range nbrs {
		if p, ok := pos[nb]; ok {
			sum += p
			n++
		}
	}
	if n == 0 {
		return fallback
	}
	return sum / float64(n)
}

// transpose swaps adjacent tasks in a rank whenever the swap strictly reduces
// the crossings with both neighbouring ranks, repeating until stable. Each
// rank is bounded by len(rank) rounds.
func transpose(g *dag.DAG, ranks []int, orders map[int][]string) {
	for _, r := range ranks {
		ids := orders[r]
		if len(ids) < 2 {
			continue
		}
		abovePos := dag.PosMap(orders[r-1])
		belowPos := dag.PosMap(orders[r+1])

		cost := func(left, right string) int {
			return dag.CountPairCrossingsWithPos(g, left, right, abovePos, true) +
				dag.CountPairCrossingsWithPos(g, left, right, belowPos, false)
		}

		for round := 0; round < len(ids); round++ {
			improved := false
			for i := 0; i+1 < len(ids); i++ {
				if cost(ids[i+1], ids[i]) < cost(ids[i], ids[i+1]) {
					ids[i], ids[i+1] = ids[i+1], ids[i]
					improved = true
				}
			}
			if !improved {
				break
			}
		}
	}
}

func normalizedPositions(orders map[int][]string) map[string]float64 {
	pos := make(map[string]float64)
	for _, ids := range orders {
		for i, id := range ids {
			pos[id] = position(i, len(ids))
		}
	}
	return pos
}

// position maps slot i of n onto (0, 1) so ranks of different widths share
// one scale.
func position(i, n int) float64 {
	return (float64(i) + 0.5) / float64(n)
}

func cloneOrders(orders map[int][]string) map[int][]string {
	out := make(map[int][]string, len(orders))
	for r, ids := range maps.All(orders) {
		out[r] = slices.Clone(ids)
	}
	return out
}
