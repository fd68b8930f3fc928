package layout

import (
	"cmp"
	"slices"

	"github.com/matzehuels/taskgraph/pkg/dag"
	"github.com/matzehuels/taskgraph/pkg/dag/transform"
	"github.com/matzehuels/taskgraph/pkg/layout/ordering"
	"github.com/matzehuels/taskgraph/pkg/model"
)

// Edge is a spawn relation handed to the engine.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Node is a positioned task.
type Node struct {
	ID     string  `json:"id"`
	Rank   int     `json:"rank"`
	Order  int     `json:"order"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Result is a computed layout. Nodes are sorted by ID.
type Result struct {
	Nodes     []Node  `json:"nodes"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Ranks     int     `json:"ranks"`
	Crossings int     `json:"crossings"`
	// BackEdges were excluded from ranking because they close a cycle.
	BackEdges []Edge `json:"back_edges,omitempty"`
}

// Node returns the positioned node with the given ID.
func (r Result) Node(id string) (Node, bool) {
	i, ok := slices.BinarySearchFunc(r.Nodes, id, func(n Node, id string) int {
		return cmp.Compare(n.ID, id)
	})
	if !ok {
		return Node{}, false
	}
	return r.Nodes[i], true
}

// Hints returns each node's relative position in its rank, suitable for
// [Options.Hints] of the next computation.
func (r Result) Hints() ordering.Hints {
	width := make(map[int]int)
	for _, n := range r.Nodes {
		width[n.Rank]++
	}
	hints := make(ordering.Hints, len(r.Nodes))
	for _, n := range r.Nodes {
		hints[n.ID] = (float64(n.Order) + 0.5) / float64(width[n.Rank])
	}
	return hints
}

// ComputeModel lays out the tasks and spawn edges of m.
func ComputeModel(m model.Model, opts Options) Result {
	ids := make([]string, len(m.Tasks))
	for i, t := range m.Tasks {
		ids[i] = t.ID
	}
	edges := make([]Edge, len(m.Edges))
	for i, e := range m.Edges {
		edges[i] = Edge{ID: e.ID, Source: e.Source, Target: e.Target}
	}
	return Compute(ids, edges, opts)
}

// Compute lays out the given tasks. Every ID in nodes yields exactly one
// [Node]; duplicate IDs collapse and edges with an unknown endpoint are
// ignored. Compute never fails: cyclic input is ranked after dropping the
// back-edges, which are logged as warnings and returned in the result.
func Compute(nodes []string, edges []Edge, opts Options) Result {
	opts = opts.withDefaults()
	if len(nodes) == 0 {
		return Result{}
	}

	g := dag.New()
	for _, id := range nodes {
		_ = g.AddNode(dag.Node{ID: id})
	}
	for _, e := range edges {
		_ = g.AddEdge(dag.Edge{ID: e.ID, From: e.Source, To: e.Target})
	}

	var back []Edge
	for _, e := range transform.BreakCycles(g) {
		back = append(back, Edge{ID: e.ID, Source: e.From, Target: e.To})
		opts.Logger.Warn("cycle in spawn graph, edge excluded from ranking",
			"edge", e.ID, "from", e.From, "to", e.To)
	}

	transform.AssignRanks(g)

	orderer := ordering.Barycentric{Passes: opts.Passes, Hints: inheritHints(g, opts.Hints)}
	orders := orderer.OrderRanks(g)
	g.SetOrders(orders)

	res := place(g, opts)
	res.Crossings = dag.CountCrossings(g, orders)
	res.BackEdges = back

	opts.Logger.Debug("layout computed",
		"nodes", len(res.Nodes), "ranks", res.Ranks,
		"crossings", res.Crossings, "back_edges", len(back))
	return res
}

// inheritHints gives every unhinted task the hint of its first parent that
// has one, walking ranks top to bottom so chains of new tasks follow their
// oldest known ancestor.
func inheritHints(g *dag.DAG, hints ordering.Hints) ordering.Hints {
	if len(hints) == 0 {
		return nil
	}
	out := make(ordering.Hints, g.NodeCount())
	for _, r := range g.RankIDs() {
		for _, n := range g.NodesInRank(r) {
			if h, ok := hints[n.ID]; ok {
				out[n.ID] = h
				continue
			}
			for _, p := range g.Parents(n.ID) {
				if h, ok := out[p]; ok {
					out[n.ID] = h
					break
				}
			}
		}
	}
	return out
}
