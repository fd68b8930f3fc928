package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/taskgraph/pkg/graph"
)

func testView() graph.View {
	return graph.View{
		Direction: graph.TopDown,
		Nodes: []graph.ViewNode{
			{ID: "A", Label: "Plan", Status: "completed", Bucket: "done", Rank: 0, Order: 0, Highlighted: true},
			{ID: "B", Status: "running", Bucket: "in-progress", PhaseName: "build", Rank: 1, Order: 1, Highlighted: true},
			{ID: "C", Bucket: "pending", Rank: 1, Order: 0, Description: "write docs"},
		},
		Edges: []graph.ViewEdge{
			{ID: "e1", Source: "A", Target: "B", Highlighted: true},
			{ID: "e2", Source: "A", Target: "C"},
			{ID: "e3", Source: "B", Target: "A", Back: true},
		},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testView(), Options{})

	for _, want := range []string{
		"digraph G {",
		"rankdir=TB;",
		`"A" [label="Plan", fillcolor="#d3f9d8", color="#f08c00", penwidth=2.5];`,
		`"C" [label="C", fillcolor="#f1f3f5", tooltip="write docs"];`,
		`{ rank=same; "A"; }`,
		`{ rank=same; "C"; "B"; }`,
		`"A" -> "B" [color="#f08c00", penwidth=2.5];`,
		`"A" -> "C";`,
		`"B" -> "A" [style=dashed, constraint=false];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
}

func TestToDOTDirection(t *testing.T) {
	v := testView()
	v.Direction = graph.LeftRight
	if dot := ToDOT(v, Options{}); !strings.Contains(dot, "rankdir=LR;") {
		t.Errorf("left-right view should use rankdir=LR:\n%s", dot)
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(testView(), Options{Detailed: true})
	if !strings.Contains(dot, `label="B\nstatus: running\nphase: build"`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
	if !strings.Contains(dot, `label="Plan\nstatus: completed"`) {
		t.Errorf("detailed label without phase missing:\n%s", dot)
	}
}

func TestToDOTEmpty(t *testing.T) {
	dot := ToDOT(graph.View{}, Options{})
	if !strings.HasPrefix(dot, "digraph G {") || !strings.HasSuffix(dot, "}\n") {
		t.Errorf("unexpected DOT for empty view:\n%s", dot)
	}
	if strings.Contains(dot, "rank=same") {
		t.Error("empty view should have no rank groups")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg></svg>")); string(got) != "<svg></svg>" {
		t.Errorf("input without viewBox should pass through, got %s", got)
	}
}
