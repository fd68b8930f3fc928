// Package reach computes lineage highlights: the set of tasks and spawn edges
// connected to a focal task when edge direction is ignored.
//
// Highlighting a task therefore lights up its ancestors, its descendants and
// their siblings, cousins and so on, i.e. the whole weakly connected
// component. The search keeps a visited set, so cycles and self loops are
// harmless, and runs in O(nodes + edges).
package reach

import (
	"maps"
	"slices"
)

// Edge is an undirected view of a spawn relation.
type Edge struct {
	ID     string
	Source string
	Target string
}

type incidence struct {
	edge  string
	other string
}

// Index is an adjacency list built once per snapshot and queried on every
// hover. It is immutable after [New] and safe for concurrent reads.
type Index struct {
	adj map[string][]incidence
}

// New indexes edges in both directions. Edge order is preserved per node so
// queries are deterministic.
func New(edges []Edge) *Index {
	idx := &Index{adj: make(map[string][]incidence, len(edges))}
	for _, e := range edges {
		idx.adj[e.Source] = append(idx.adj[e.Source], incidence{edge: e.ID, other: e.Target})
		if e.Source != e.Target {
			idx.adj[e.Target] = append(idx.adj[e.Target], incidence{edge: e.ID, other: e.Source})
		}
	}
	return idx
}

// Component returns every node and edge reachable from focal. A focal ID with
// no edges, including one the index has never seen, yields just {focal}.
// An empty focal yields an empty highlight.
func (idx *Index) Component(focal string) Highlight {
	h := Highlight{nodes: map[string]struct{}{}, edges: map[string]struct{}{}}
	if focal == "" {
		return h
	}

	h.nodes[focal] = struct{}{}
	queue := []string{focal}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, inc := range idx.adj[curr] {
			h.edges[inc.edge] = struct{}{}
			if _, seen := h.nodes[inc.other]; seen {
				continue
			}
			h.nodes[inc.other] = struct{}{}
			queue = append(queue, inc.other)
		}
	}
	return h
}

// Component is shorthand for New(edges).Component(focal).
func Component(focal string, edges []Edge) Highlight {
	return New(edges).Component(focal)
}

// Highlight is a set of highlighted node and edge IDs. The zero value is an
// empty highlight.
type Highlight struct {
	nodes map[string]struct{}
	edges map[string]struct{}
}

// HasNode reports whether the node is highlighted.
func (h Highlight) HasNode(id string) bool {
	_, ok := h.nodes[id]
	return ok
}

// HasEdge reports whether the edge is highlighted.
func (h Highlight) HasEdge(id string) bool {
	_, ok := h.edges[id]
	return ok
}

// Empty reports whether nothing is highlighted.
func (h Highlight) Empty() bool { return len(h.nodes) == 0 }

// NodeIDs returns the highlighted node IDs, sorted.
func (h Highlight) NodeIDs() []string { return slices.Sorted(maps.Keys(h.nodes)) }

// EdgeIDs returns the highlighted edge IDs, sorted.
func (h Highlight) EdgeIDs() []string { return slices.Sorted(maps.Keys(h.edges)) }
