package pipeline

import (
	"github.com/matzehuels/taskgraph/pkg/graph"
	"github.com/matzehuels/taskgraph/pkg/reach"
)

// Index builds the reachability index over the result's spawn edges.
func (r *Result) Index() *reach.Index {
	edges := make([]reach.Edge, len(r.Model.Edges))
	for i, e := range r.Model.Edges {
		edges[i] = reach.Edge{ID: e.ID, Source: e.Source, Target: e.Target}
	}
	return reach.New(edges)
}

// View joins model, layout and highlight into the renderer payload. Nodes
// follow the layout's ID order and edges keep snapshot order. Only graph
// fields are set; the caller fills in interaction and refresh state.
func (r *Result) View(hl reach.Highlight) graph.View {
	v := graph.View{
		Scope:      r.Snapshot.Scope,
		Direction:  r.Direction,
		Nodes:      make([]graph.ViewNode, 0, len(r.Layout.Nodes)),
		Edges:      make([]graph.ViewEdge, 0, len(r.Model.Edges)),
		Counts:     r.Model.Counts(),
		Width:      r.Layout.Width,
		Height:     r.Layout.Height,
		SnapshotAt: r.Snapshot.Timestamp,
	}

	for _, ln := range r.Layout.Nodes {
		t, ok := r.Model.Task(ln.ID)
		if !ok {
			continue
		}
		vn := graph.ViewNode{
			ID:          t.ID,
			Label:       t.Label,
			Status:      t.Status,
			Bucket:      string(t.Bucket()),
			Description: t.Description,
			CreatedAt:   t.CreatedAt,
			PhaseID:     t.PhaseID,
			Rank:        ln.Rank,
			Order:       ln.Order,
			X:           ln.X,
			Y:           ln.Y,
			Width:       ln.Width,
			Height:      ln.Height,
			Highlighted: hl.HasNode(t.ID),
		}
		if t.Phase != nil {
			vn.PhaseName = t.Phase.Name
			vn.PhaseOrder = t.Phase.Order
		}
		v.Nodes = append(v.Nodes, vn)
	}

	back := make(map[string]bool, len(r.Layout.BackEdges))
	for _, e := range r.Layout.BackEdges {
		back[e.ID] = true
	}
	for _, e := range r.Model.Edges {
		v.Edges = append(v.Edges, graph.ViewEdge{
			ID:          e.ID,
			Source:      e.Source,
			Target:      e.Target,
			Label:       e.Label,
			Highlighted: hl.HasEdge(e.ID),
			Back:        back[e.ID],
		})
	}
	return v
}
