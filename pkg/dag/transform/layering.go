package transform

import "github.com/matzehuels/taskgraph/pkg/dag"

// AssignRanks assigns every node to a rank equal to its longest spawn distance
// from a root, and resets each node's Order to its ID position in the rank.
//
// AssignRanks uses a longest-path algorithm via topological sort (Kahn's
// algorithm):
//  1. Sources (in-degree 0) start at rank 0 and seed the queue in ID order
//  2. Each dequeued node pushes its children to max(child, rank+1)
//  3. A child is enqueued once all its parents have been processed
//
// Isolated nodes are sources and stay at rank 0. Ranks are clamped to
// NodeCount-1. If the graph still contains a cycle (BreakCycles was not run),
// the nodes on it are never dequeued and keep whatever rank their processed
// parents gave them; the function still terminates after at most N dequeues.
//
// Time complexity is O(V + E).
func AssignRanks(g *dag.DAG) {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return
	}
	limit := len(nodes) - 1

	inDegree := make(map[string]int, len(nodes))
	ranks := make(map[string]int, len(nodes))
	queue := make([]string, 0, len(nodes))

	for _, n := range nodes {
		ranks[n.ID] = 0
		degree := g.InDegree(n.ID)
		inDegree[n.ID] = degree
		if degree == 0 {
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range g.Children(curr) {
			if rank := min(ranks[curr]+1, limit); rank > ranks[child] {
				ranks[child] = rank
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	g.SetRanks(ranks)
}
