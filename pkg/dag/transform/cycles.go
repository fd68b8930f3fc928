package transform

import "github.com/matzehuels/taskgraph/pkg/dag"

const (
	unvisited = iota
	inProgress
	done
)

// BreakCycles removes every edge that closes a directed cycle and returns the
// removed edges in discovery order.
//
// The search starts from the sources in ID order, then from any node still
// unvisited (nodes that only sit on cycles), and follows children in edge
// insertion order, so the same graph always loses the same edges. The walk
// uses an explicit stack, so deep spawn chains cannot exhaust the goroutine
// stack.
func BreakCycles(g *dag.DAG) []dag.Edge {
	state := make(map[string]int, g.NodeCount())
	var back [][2]string

	type frame struct {
		id   string
		next int
	}

	visit := func(root string) {
		stack := []frame{{id: root}}
		state[root] = inProgress
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := g.Children(top.id)
			if top.next == len(children) {
				state[top.id] = done
				stack = stack[:len(stack)-1]
				continue
			}
			child := children[top.next]
			top.next++
			switch state[child] {
			case unvisited:
				state[child] = inProgress
				stack = append(stack, frame{id: child})
			case inProgress:
				back = append(back, [2]string{top.id, child})
			}
		}
	}

	for _, n := range g.Sources() {
		if state[n.ID] == unvisited {
			visit(n.ID)
		}
	}
	for _, n := range g.Nodes() {
		if state[n.ID] == unvisited {
			visit(n.ID)
		}
	}

	if len(back) == 0 {
		return nil
	}

	removed := make([]dag.Edge, 0, len(back))
	edges := g.Edges()
	taken := make([]bool, len(edges))
	for _, b := range back {
		for i, e := range edges {
			if !taken[i] && e.From == b[0] && e.To == b[1] {
				taken[i] = true
				removed = append(removed, e)
				break
			}
		}
		g.RemoveEdge(b[0], b[1])
	}
	return removed
}
