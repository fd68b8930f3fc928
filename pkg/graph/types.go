package graph

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// NodeKind distinguishes agents from tasks in a snapshot.
type NodeKind string

// Node kinds.
const (
	KindAgent NodeKind = "agent"
	KindTask  NodeKind = "task"
)

// EdgeKind names the relation an edge expresses.
type EdgeKind string

// Edge kinds. Only EdgeSubtask edges take part in the lineage view.
const (
	EdgeCreated  EdgeKind = "created"
	EdgeAssigned EdgeKind = "assigned"
	EdgeSubtask  EdgeKind = "subtask"
)

// Direction selects which screen axis ranks advance along.
type Direction string

// Layout directions.
const (
	TopDown   Direction = "top-down"
	LeftRight Direction = "left-right"
)

// ParseDirection accepts the canonical names plus the Graphviz-style
// shorthands TB and LR (case-insensitive).
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(TopDown), "tb", "td", "vertical":
		return TopDown, nil
	case string(LeftRight), "lr", "horizontal":
		return LeftRight, nil
	}
	return "", fmt.Errorf("invalid direction: %q (must be one of: top-down, left-right)", s)
}

// Toggle returns the other direction.
func (d Direction) Toggle() Direction {
	if d == LeftRight {
		return TopDown
	}
	return LeftRight
}

// RefreshIntervals is the enumerated set of auto-refresh periods an operator
// can choose from.
var RefreshIntervals = []time.Duration{
	5 * time.Second,
	10 * time.Second,
	15 * time.Second,
	30 * time.Second,
	60 * time.Second,
}

// DefaultRefreshInterval is the auto-refresh period used when none is set.
const DefaultRefreshInterval = 10 * time.Second

// ValidRefreshInterval reports whether d is one of [RefreshIntervals].
func ValidRefreshInterval(d time.Duration) bool {
	return slices.Contains(RefreshIntervals, d)
}

// =============================================================================
// Snapshot - Data Service Payload
// =============================================================================

// Snapshot is one fetch of the full orchestration graph for a scope.
// It is produced fresh by every fetch and never mutated afterwards.
type Snapshot struct {
	Scope     string               `json:"scope,omitempty" bson:"scope,omitempty"`
	Nodes     []NodeRecord         `json:"nodes" bson:"nodes"`
	Edges     []EdgeRecord         `json:"edges" bson:"edges"`
	Phases    map[string]PhaseInfo `json:"phases,omitempty" bson:"phases,omitempty"`
	Timestamp time.Time            `json:"timestamp" bson:"timestamp"`
}

// NodeRecord is an agent or task as reported by the data service.
type NodeRecord struct {
	ID         string     `json:"id" bson:"id"`
	Kind       NodeKind   `json:"kind" bson:"kind"`
	Label      string     `json:"label,omitempty" bson:"label,omitempty"`
	Attributes Attributes `json:"attributes" bson:"attributes"`
}

// Attributes holds the task fields the dashboard displays.
type Attributes struct {
	Status      string    `json:"status,omitempty" bson:"status,omitempty"`
	PhaseID     string    `json:"phase_id,omitempty" bson:"phase_id,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero" bson:"created_at,omitempty"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
}

// EdgeRecord is a directed relation between two snapshot nodes.
type EdgeRecord struct {
	ID       string   `json:"id" bson:"id"`
	SourceID string   `json:"source_id" bson:"source_id"`
	TargetID string   `json:"target_id" bson:"target_id"`
	Kind     EdgeKind `json:"kind" bson:"kind"`
	Label    string   `json:"label,omitempty" bson:"label,omitempty"`
}

// PhaseInfo describes a workflow phase that tasks may belong to.
type PhaseInfo struct {
	ID    string `json:"id" bson:"id"`
	Name  string `json:"name" bson:"name"`
	Order int    `json:"order" bson:"order"`
}

// =============================================================================
// View - Renderer Payload
// =============================================================================

// View is the positioned lineage diagram plus the state a host UI needs to
// draw around it. Coordinates are the top-left corner of each node box.
type View struct {
	Scope     string     `json:"scope"`
	Direction Direction  `json:"direction"`
	Nodes     []ViewNode `json:"nodes"`
	Edges     []ViewEdge `json:"edges"`
	Counts    Counts     `json:"counts"`
	Width     float64    `json:"width"`
	Height    float64    `json:"height"`

	Hovered  string `json:"hovered,omitempty"`
	Selected string `json:"selected,omitempty"`

	AutoRefresh bool `json:"auto_refresh"`

	// RefreshInterval is encoded as a duration string ("30s"), the same form
	// the refresh-interval control accepts.
	RefreshInterval time.Duration `json:"-"`

	// Error is set when the latest fetch failed. The previous graph, if any,
	// stays in Nodes/Edges and Stale is true.
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
	Stale     bool   `json:"stale,omitempty"`
	Loading   bool   `json:"loading,omitempty"`

	Revision   uint64    `json:"revision"`
	SnapshotAt time.Time `json:"snapshot_at,omitzero"`
	UpdatedAt  time.Time `json:"updated_at,omitzero"`
}

// ViewNode is a positioned task.
type ViewNode struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Status      string    `json:"status,omitempty"`
	Bucket      string    `json:"bucket"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
	PhaseID     string    `json:"phase_id,omitempty"`
	PhaseName   string    `json:"phase_name,omitempty"`
	PhaseOrder  int       `json:"phase_order,omitempty"`

	Rank   int     `json:"rank"`
	Order  int     `json:"order"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Highlighted bool `json:"highlighted,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *ViewNode) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// ViewEdge is a spawn edge between two positioned tasks.
type ViewEdge struct {
	ID          string `json:"id"`
	Source      string `json:"source"`
	Target      string `json:"target"`
	Label       string `json:"label,omitempty"`
	Highlighted bool   `json:"highlighted,omitempty"`
	// Back marks an edge that closed a spawn cycle and was left out of ranking.
	Back bool `json:"back,omitempty"`
}

// Counts are the legend figures shown next to the diagram.
type Counts struct {
	Total      int `json:"total"`
	Done       int `json:"done"`
	InProgress int `json:"in_progress"`
	Pending    int `json:"pending"`
	Failed     int `json:"failed"`
	Edges      int `json:"edges"`
}

type viewJSON View

type viewWire struct {
	viewJSON
	RefreshInterval string `json:"refresh_interval"`
}

// MarshalJSON implements json.Marshaler.
func (v View) MarshalJSON() ([]byte, error) {
	return json.Marshal(viewWire{viewJSON: viewJSON(v), RefreshInterval: v.RefreshInterval.String()})
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *View) UnmarshalJSON(data []byte) error {
	var w viewWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*v = View(w.viewJSON)
	if w.RefreshInterval == "" {
		return nil
	}
	d, err := time.ParseDuration(w.RefreshInterval)
	if err != nil {
		return fmt.Errorf("refresh_interval: %w", err)
	}
	v.RefreshInterval = d
	return nil
}

// Node returns the view node with the given ID.
func (v *View) Node(id string) (ViewNode, bool) {
	for _, n := range v.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return ViewNode{}, false
}

// HighlightedNodeIDs returns the IDs of highlighted nodes in view order.
func (v *View) HighlightedNodeIDs() []string {
	var ids []string
	for _, n := range v.Nodes {
		if n.Highlighted {
			ids = append(ids, n.ID)
		}
	}
	return ids
}
