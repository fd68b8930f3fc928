// Package dag provides the directed graph used to lay out task-spawn lineage.
//
// # Overview
//
// Nodes are tasks; an edge from A to B means task A spawned subtask B. Each
// node carries a Rank (its layer, the longest spawn distance from a root) and
// an Order (its slot within the layer). The layout engine fills both in; this
// package only stores and indexes them.
//
// # Basic Usage
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: "plan"})
//	g.AddNode(dag.Node{ID: "build", Rank: 1})
//	g.AddEdge(dag.Edge{ID: "e1", From: "plan", To: "build"})
//
// Query with [DAG.Children], [DAG.Parents], [DAG.NodesInRank] and friends.
// Every collection accessor is deterministic (sorted by ID or by Order), which
// the layout engine relies on to produce identical coordinates for identical
// input.
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] count inversions between adjacent
// ranks with a Fenwick tree in O(E log V). The ordering heuristics use them to
// keep the best of several candidate orderings.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use.
//
// The [transform] subpackage assigns ranks, tolerating cyclic input.
//
// [transform]: github.com/matzehuels/taskgraph/pkg/dag/transform
package dag
