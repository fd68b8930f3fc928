// Package model turns a raw orchestration snapshot into the task-lineage
// model the layout engine works on.
//
// The lineage view shows tasks and the subtasks they spawned, nothing else:
// agents and the created/assigned relations that touch them are dropped, as
// are edges whose endpoints did not survive the filter. [Build] is pure; the
// same snapshot always yields the same model.
package model

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/taskgraph/pkg/graph"
)

// TaskNode is a task from the snapshot with its phase resolved.
type TaskNode struct {
	ID          string
	Label       string
	Status      string
	Description string
	CreatedAt   time.Time
	PhaseID     string
	// Phase is nil when PhaseID is empty or names a phase the snapshot does
	// not describe. Renderers fall back to neutral styling.
	Phase *graph.PhaseInfo
}

// Bucket returns the legend bucket of the task's status.
func (t TaskNode) Bucket() Bucket { return BucketOf(t.Status) }

// SpawnEdge records that Source spawned Target.
type SpawnEdge struct {
	ID     string
	Source string
	Target string
	Label  string
}

// Model is the filtered task graph. Tasks are sorted by ID; edges keep
// snapshot order.
type Model struct {
	Tasks []TaskNode
	Edges []SpawnEdge

	// Dropped counts subtask edges discarded because an endpoint was missing.
	Dropped int
	// Duplicates counts task nodes and subtask edges ignored because their ID
	// was already taken.
	Duplicates int
}

// Build filters snap down to task nodes and subtask edges.
//
// Edges that reference a node that is absent, or is not a task, are dropped
// without error. When two records share an ID the first one wins. Phase
// lookups that miss leave Phase nil.
func Build(snap graph.Snapshot) Model {
	var m Model

	tasks := make(map[string]struct{}, len(snap.Nodes))
	for _, rec := range snap.Nodes {
		if rec.Kind != graph.KindTask {
			continue
		}
		if _, seen := tasks[rec.ID]; seen || rec.ID == "" {
			m.Duplicates++
			continue
		}
		tasks[rec.ID] = struct{}{}
		m.Tasks = append(m.Tasks, taskFromRecord(rec, snap.Phases))
	}
	slices.SortFunc(m.Tasks, func(a, b TaskNode) int { return cmp.Compare(a.ID, b.ID) })

	edgeIDs := make(map[string]struct{}, len(snap.Edges))
	for _, rec := range snap.Edges {
		if rec.Kind != graph.EdgeSubtask {
			continue
		}
		_, okS := tasks[rec.SourceID]
		_, okT := tasks[rec.TargetID]
		if !okS || !okT {
			m.Dropped++
			continue
		}
		id := edgeID(rec)
		if _, seen := edgeIDs[id]; seen {
			m.Duplicates++
			continue
		}
		edgeIDs[id] = struct{}{}
		m.Edges = append(m.Edges, SpawnEdge{
			ID:     id,
			Source: rec.SourceID,
			Target: rec.TargetID,
			Label:  rec.Label,
		})
	}

	return m
}

func taskFromRecord(rec graph.NodeRecord, phases map[string]graph.PhaseInfo) TaskNode {
	t := TaskNode{
		ID:          rec.ID,
		Label:       rec.Label,
		Status:      rec.Attributes.Status,
		Description: rec.Attributes.Description,
		CreatedAt:   rec.Attributes.CreatedAt,
		PhaseID:     rec.Attributes.PhaseID,
	}
	if t.PhaseID != "" {
		if p, ok := phases[t.PhaseID]; ok {
			t.Phase = &p
		}
	}
	return t
}

// edgeID falls back to a source→target key for edges the service sent
// without an ID, so highlight sets can still address them.
func edgeID(rec graph.EdgeRecord) string {
	if rec.ID != "" {
		return rec.ID
	}
	return rec.SourceID + "->" + rec.TargetID
}

// Task returns the task with the given ID.
func (m Model) Task(id string) (TaskNode, bool) {
	i, ok := slices.BinarySearchFunc(m.Tasks, id, func(t TaskNode, id string) int { return cmp.Compare(t.ID, id) })
	if !ok {
		return TaskNode{}, false
	}
	return m.Tasks[i], true
}

// Has reports whether the model contains a task with the given ID.
func (m Model) Has(id string) bool {
	_, ok := m.Task(id)
	return ok
}

// TaskIDs returns the task IDs in sorted order.
func (m Model) TaskIDs() []string {
	ids := make([]string, len(m.Tasks))
	for i, t := range m.Tasks {
		ids[i] = t.ID
	}
	return ids
}

// Counts returns the legend figures for the model.
func (m Model) Counts() graph.Counts {
	c := graph.Counts{Total: len(m.Tasks), Edges: len(m.Edges)}
	for _, t := range m.Tasks {
		switch t.Bucket() {
		case BucketDone:
			c.Done++
		case BucketInProgress:
			c.InProgress++
		case BucketFailed:
			c.Failed++
		default:
			c.Pending++
		}
	}
	return c
}

// Bucket groups raw task statuses for the legend.
type Bucket string

// Status buckets.
const (
	BucketDone       Bucket = "done"
	BucketInProgress Bucket = "in-progress"
	BucketPending    Bucket = "pending"
	BucketFailed     Bucket = "failed"
)

var buckets = map[string]Bucket{
	"done":        BucketDone,
	"completed":   BucketDone,
	"complete":    BucketDone,
	"succeeded":   BucketDone,
	"success":     BucketDone,
	"in_progress": BucketInProgress,
	"in-progress": BucketInProgress,
	"running":     BucketInProgress,
	"active":      BucketInProgress,
	"assigned":    BucketInProgress,
	"started":     BucketInProgress,
	"failed":      BucketFailed,
	"error":       BucketFailed,
	"errored":     BucketFailed,
	"cancelled":   BucketFailed,
	"canceled":    BucketFailed,
	"timeout":     BucketFailed,
}

// BucketOf maps a raw status to its legend bucket. Unknown and empty
// statuses count as pending.
func BucketOf(status string) Bucket {
	if b, ok := buckets[strings.ToLower(strings.TrimSpace(status))]; ok {
		return b
	}
	return BucketPending
}
