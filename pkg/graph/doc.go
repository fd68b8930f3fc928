// Package graph defines the wire formats exchanged with the outside world.
//
// Two documents cross the boundary of the engine:
//
//   - [Snapshot]: one point-in-time fetch of the orchestration graph, as
//     delivered by the data service. It mixes agents and tasks and every kind
//     of relation between them.
//   - [View]: the positioned task-lineage diagram handed to a renderer,
//     including highlight flags, legend counts and error state.
//
// Both carry JSON tags; Snapshot also carries BSON tags so it can be decoded
// straight from a MongoDB collection.
//
// # Constants
//
// This package is the single source of truth for the enumerations shared by
// the engine, the CLI and the HTTP API:
//
//	graph.KindTask, graph.KindAgent            // node kinds
//	graph.EdgeSubtask, graph.EdgeAssigned      // edge kinds
//	graph.TopDown, graph.LeftRight             // layout directions
//	graph.RefreshIntervals                     // 5s, 10s, 15s, 30s, 60s
//
// # Snapshot Serialization
//
//	snap, _ := graph.ReadSnapshotFile("snapshot.json")
//	graph.WriteSnapshot(os.Stdout, snap)
//
// # Concurrency
//
// Snapshots and Views are plain values; treat them as immutable once shared.
package graph
