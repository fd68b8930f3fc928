// Package ordering decides the left-to-right arrangement of tasks within each
// rank of a layered spawn graph.
//
// # The Ordering Problem
//
// Once every task has a rank, the only remaining freedom is the order of the
// tasks inside a rank. Edges between adjacent ranks cross when their endpoints
// are ordered inconsistently. Finding the minimum-crossing order is NP-hard, so
// this package only offers a deterministic heuristic.
//
// # Barycentric Heuristic
//
// [Barycentric] implements the classic Sugiyama barycenter method:
//
//  1. Seed each rank by (hint, id); tasks without a hint go last
//  2. Alternate downward sweeps (sort by mean parent position) and upward
//     sweeps (sort by mean child position)
//  3. After each sweep, transpose adjacent tasks while that lowers crossings
//  4. Keep the ordering with the fewest crossings; ties keep the earlier one
//
// Positions are normalized by rank width, so edges that skip ranks still pull
// their endpoints toward each other.
//
// # Usage
//
//	var orderer ordering.Orderer = ordering.Barycentric{Passes: 4}
//	orders := orderer.OrderRanks(g) // map[rank][]taskID
package ordering
