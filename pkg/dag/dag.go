package dag

import (
	"cmp"
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] when a node with the same
	// ID already exists in the graph. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the To node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrInvalidEdgeEndpoint is returned by [DAG.Validate] when an edge
	// references a node that doesn't exist. This indicates graph corruption.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrNonMonotonicRanks is returned by [DAG.Validate] when an edge does not
	// point strictly downward (To.Rank <= From.Rank).
	ErrNonMonotonicRanks = errors.New("edges must point to a higher rank")

	// ErrGraphHasCycle is returned by [DAG.Validate] when a cycle is detected.
	// Cycles are detected using depth-first search with white/gray/black coloring.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Node is a task vertex with its assigned layer (Rank) and position within
// that layer (Order).
//
// The zero value is not usable - ID must be set before adding to a DAG.
type Node struct {
	ID    string // Unique identifier
	Rank  int    // Layer assignment (0 = root, increasing along spawn edges)
	Order int    // Position within the rank, 0-based
}

// Edge is a directed spawn relation from a parent task to the task it spawned.
// ID is optional; it is carried through so callers can map back to wire edges.
type Edge struct {
	ID   string // Edge identifier (may be empty)
	From string // Source node ID
	To   string // Target node ID
}

// DAG is a directed graph of tasks organized into ranks for layered layout.
// It does not reject cycles on insertion; use [DAG.Validate] to check, or the
// transform package to rank cyclic input safely.
//
// All accessors that return collections do so in a deterministic order so
// that layouts computed from the same input are identical.
//
// The zero value is not usable - use New to create a valid DAG instance.
// DAG is not safe for concurrent use without external synchronization.
type DAG struct {
	nodes    map[string]*Node
	edges    []Edge
	outgoing map[string][]string // nodeID -> children IDs
	incoming map[string][]string // nodeID -> parent IDs
	ranks    map[int][]*Node     // rank -> nodes in that rank, by Order then ID
}

// New creates an empty DAG.
func New() *DAG {
	return &DAG{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		ranks:    make(map[int][]*Node),
	}
}

// AddNode adds a node to the graph and indexes it by its Rank.
// Returns ErrInvalidNodeID if the node ID is empty, or ErrDuplicateNodeID
// if a node with the same ID already exists.
func (d *DAG) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	node := &n
	d.nodes[node.ID] = node
	d.ranks[node.Rank] = insertSorted(d.ranks[node.Rank], node)
	return nil
}

// AddEdge adds a directed edge between two existing nodes.
// Returns ErrUnknownSourceNode if the From node doesn't exist, or
// ErrUnknownTargetNode if the To node doesn't exist.
//
// AddEdge does not check rank monotonicity - use Validate for that.
func (d *DAG) AddEdge(e Edge) error {
	if _, ok := d.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := d.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	d.edges = append(d.edges, e)
	d.outgoing[e.From] = append(d.outgoing[e.From], e.To)
	d.incoming[e.To] = append(d.incoming[e.To], e.From)
	return nil
}

// RemoveEdge removes the edge from→to if it exists.
// No error is returned if the edge does not exist. If multiple edges
// exist between the same nodes, only the first is removed.
func (d *DAG) RemoveEdge(from, to string) {
	if i := slices.IndexFunc(d.edges, func(e Edge) bool { return e.From == from && e.To == to }); i >= 0 {
		d.edges = slices.Delete(d.edges, i, i+1)
	}
	if i := slices.Index(d.outgoing[from], to); i >= 0 {
		d.outgoing[from] = slices.Delete(d.outgoing[from], i, i+1)
	}
	if i := slices.Index(d.incoming[to], from); i >= 0 {
		d.incoming[to] = slices.Delete(d.incoming[to], i, i+1)
	}
}

// SetRanks updates rank assignments and rebuilds the rank index.
// Nodes not present in the map retain their current rank. Order is reset to
// the node's position in its rank, sorted by ID.
func (d *DAG) SetRanks(ranks map[string]int) {
	d.ranks = make(map[int][]*Node)
	for _, n := range d.Nodes() {
		if r, ok := ranks[n.ID]; ok {
			n.Rank = r
		}
		n.Order = len(d.ranks[n.Rank])
		d.ranks[n.Rank] = append(d.ranks[n.Rank], n)
	}
}

// SetOrders applies a left-to-right ordering per rank. IDs in orders[r]
// receive Order = index. Ranks absent from orders keep their current order.
// IDs that are not in rank r are ignored.
func (d *DAG) SetOrders(orders map[int][]string) {
	for r, ids := range orders {
		for i, id := range ids {
			if n, ok := d.nodes[id]; ok && n.Rank == r {
				n.Order = i
			}
		}
		sortRank(d.ranks[r])
	}
}

// Nodes returns all nodes sorted by ID. The returned slice contains pointers
// to the actual node structs, so modifications affect the graph.
func (d *DAG) Nodes() []*Node {
	nodes := slices.Collect(maps.Values(d.nodes))
	slices.SortFunc(nodes, func(a, b *Node) int { return cmp.Compare(a.ID, b.ID) })
	return nodes
}

// Edges returns a copy of all edges in insertion order.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

// NodeCount returns the number of nodes in the graph.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges in the graph.
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Children returns the IDs of tasks spawned by this node, in edge insertion
// order. The returned slice should not be modified.
func (d *DAG) Children(id string) []string { return d.outgoing[id] }

// Parents returns the IDs of tasks that spawned this node, in edge insertion
// order. The returned slice should not be modified.
func (d *DAG) Parents(id string) []string { return d.incoming[id] }

// OutDegree returns the number of outgoing edges from the node.
func (d *DAG) OutDegree(id string) int { return len(d.outgoing[id]) }

// InDegree returns the number of incoming edges to the node.
func (d *DAG) InDegree(id string) int { return len(d.incoming[id]) }

// Node returns the node with the given ID and true, or nil and false if not found.
func (d *DAG) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// NodesInRank returns the nodes of a rank sorted by Order, then ID.
// The returned slice should not be modified.
func (d *DAG) NodesInRank(rank int) []*Node { return d.ranks[rank] }

// RankCount returns the number of distinct ranks. Ranks need not be
// consecutive.
func (d *DAG) RankCount() int { return len(d.ranks) }

// RankIDs returns all rank indices in ascending order.
func (d *DAG) RankIDs() []int {
	return slices.Sorted(maps.Keys(d.ranks))
}

// MaxRank returns the highest rank index, or 0 if the graph is empty.
func (d *DAG) MaxRank() int {
	ids := d.RankIDs()
	if len(ids) == 0 {
		return 0
	}
	return ids[len(ids)-1]
}

// Sources returns nodes with no incoming edges (roots), sorted by ID.
func (d *DAG) Sources() []*Node {
	var sources []*Node
	for _, n := range d.Nodes() {
		if len(d.incoming[n.ID]) == 0 {
			sources = append(sources, n)
		}
	}
	return sources
}

// Validate checks graph integrity and returns nil if valid:
//
//  1. All edges connect existing nodes with To.Rank > From.Rank
//  2. The graph is acyclic
//
// Cycle detection runs in O(N+E) time using depth-first search.
func (d *DAG) Validate() error {
	if err := d.validateEdgeConsistency(); err != nil {
		return err
	}
	return d.detectCycles()
}

func (d *DAG) validateEdgeConsistency() error {
	for _, e := range d.edges {
		src, okS := d.nodes[e.From]
		dst, okD := d.nodes[e.To]
		if !okS || !okD {
			return ErrInvalidEdgeEndpoint
		}
		if dst.Rank <= src.Rank {
			return ErrNonMonotonicRanks
		}
	}
	return nil
}

func (d *DAG) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(d.nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range d.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
				return
			}
		}
		color[id] = black
	}

	for _, n := range d.Nodes() {
		if color[n.ID] == white {
			dfs(n.ID)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}

// PosMap creates a position lookup map from a slice of node IDs.
// The returned map maps each ID to its index in the slice.
func PosMap(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}

// NodeIDs extracts the ID from each node in a slice.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

func compareNodes(a, b *Node) int {
	if c := cmp.Compare(a.Order, b.Order); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func sortRank(nodes []*Node) {
	slices.SortFunc(nodes, compareNodes)
}

func insertSorted(nodes []*Node, n *Node) []*Node {
	i, _ := slices.BinarySearchFunc(nodes, n, compareNodes)
	return slices.Insert(nodes, i, n)
}
