// Package pkg holds the libraries behind taskgraph, a live task lineage
// viewer for multi-agent orchestrators.
//
// # Data Flow
//
//	source (HTTP / file / MongoDB)
//	         ↓
//	    [model]      snapshot → task lineage graph, status buckets
//	         ↓
//	    [layout]     ranks, cycle-tolerant layering, barycentric ordering
//	         ↓
//	    [reach]      ancestor/descendant highlight index
//	         ↓
//	    [pipeline]   cached layout runs producing a [graph.View]
//	         ↓
//	    [render]     Graphviz DOT, SVG, PDF, PNG
//
// [reconcile] keeps a view in sync with the source: periodic and event-driven
// refreshes, stale-fetch discarding, and hover/selection through
// [interaction].
//
// # Supporting Packages
//
//   - [cache]: layout cache (file, Redis, null)
//   - [events]: task_created feeds (in-process bus, Redis pub/sub)
//   - [errors]: coded errors shared by every layer
//   - [httputil]: retrying HTTP client used by the HTTP source
//   - [observability]: pipeline, cache and HTTP hooks
//   - [dag]: layered graph storage and crossing counts
//
// [model]: https://pkg.go.dev/github.com/matzehuels/taskgraph/pkg/model
// [layout]: https://pkg.go.dev/github.com/matzehuels/taskgraph/pkg/layout
// [reach]: https://pkg.go.dev/github.com/matzehuels/taskgraph/pkg/reach
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/taskgraph/pkg/pipeline
// [render]: https://pkg.go.dev/github.com/matzehuels/taskgraph/pkg/render
// [reconcile]: https://pkg.go.dev/github.com/matzehuels/taskgraph/pkg/reconcile
// [interaction]: https://pkg.go.dev/github.com/matzehuels/taskgraph/pkg/interaction
// [graph.View]: https://pkg.go.dev/github.com/matzehuels/taskgraph/pkg/graph#View
// [cache]: https://pkg.go.dev/github.com/matzehuels/taskgraph/pkg/cache
// [events]: https://pkg.go.dev/github.com/matzehuels/taskgraph/pkg/events
// [errors]: https://pkg.go.dev/github.com/matzehuels/taskgraph/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/matzehuels/taskgraph/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/taskgraph/pkg/observability
// [dag]: https://pkg.go.dev/github.com/matzehuels/taskgraph/pkg/dag
package pkg
