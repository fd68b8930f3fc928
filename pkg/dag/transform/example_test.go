package transform_test

import (
	"fmt"

	"github.com/matzehuels/taskgraph/pkg/dag"
	"github.com/matzehuels/taskgraph/pkg/dag/transform"
)

func ExampleAssignRanks() {
	// plan spawns build and docs; build spawns test; docs also spawns test
	g := dag.New()
	for _, id := range []string{"plan", "build", "docs", "test"} {
		_ = g.AddNode(dag.Node{ID: id})
	}
	_ = g.AddEdge(dag.Edge{From: "plan", To: "build"})
	_ = g.AddEdge(dag.Edge{From: "plan", To: "docs"})
	_ = g.AddEdge(dag.Edge{From: "build", To: "test"})
	_ = g.AddEdge(dag.Edge{From: "docs", To: "test"})

	transform.AssignRanks(g)

	for _, r := range g.RankIDs() {
		fmt.Println(r, dag.NodeIDs(g.NodesInRank(r)))
	}
	// Output:
	// 0 [plan]
	// 1 [build docs]
	// 2 [test]
}

func ExampleBreakCycles() {
	g := dag.New()
	_ = g.AddNode(dag.Node{ID: "a"})
	_ = g.AddNode(dag.Node{ID: "b"})
	_ = g.AddEdge(dag.Edge{ID: "forward", From: "a", To: "b"})
	_ = g.AddEdge(dag.Edge{ID: "loop", From: "b", To: "a"})

	for _, e := range transform.BreakCycles(g) {
		fmt.Println("removed", e.ID)
	}
	fmt.Println("edges left:", g.EdgeCount())
	// Output:
	// removed loop
	// edges left: 1
}
