// Package transform assigns ranks to a task graph.
//
// Ranking is two steps, both deterministic:
//
//  1. [BreakCycles] walks the graph depth-first, marking each node
//     unvisited, in-progress or done. An edge into an in-progress node closes
//     a cycle; it is removed and returned so the caller can log it.
//  2. [AssignRanks] places every node at its longest spawn distance from a
//     root, using Kahn's topological order over the remaining edges.
//
// After both steps every remaining edge u→v satisfies rank(v) > rank(u), and
// no rank exceeds NodeCount-1. Spawn relations are expected to be acyclic, so
// step 1 normally removes nothing.
package transform
