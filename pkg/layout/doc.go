// Package layout positions a task-spawn graph as a layered (Sugiyama-style)
// diagram.
//
// # Pipeline
//
// [Compute] runs four steps:
//
//  1. Break cycles: a depth-first search marks tasks unvisited, in progress
//     or done; edges that reach an in-progress task are removed from ranking
//     and reported as [Result.BackEdges].
//  2. Rank: each task sits at its longest spawn distance from a root. Tasks
//     with no parents, isolated ones included, are rank 0.
//  3. Order: [ordering.Barycentric] arranges each rank, seeded by
//     [Options.Hints] so a refreshed graph keeps its shape.
//  4. Place: one function turns (rank, order) into coordinates; [graph.LeftRight]
//     only swaps the axes.
//
// Identical input always yields an identical [Result].
//
// # Coordinates
//
// X and Y are the top-left corner of each node box. Every rank is centered on
// the widest one, and the whole drawing is inset by [Spacing.Margin].
package layout
