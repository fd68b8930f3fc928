package cli

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/taskgraph/pkg/graph"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "dot", []string{"dot"}},
		{"multiple formats", "svg,pdf,png", []string{"svg", "pdf", "png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseFormats(tt.input); !slices.Equal(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		wantErr bool
	}{
		{"valid svg", []string{"svg"}, false},
		{"valid dot", []string{"dot"}, false},
		{"valid all", []string{"svg", "dot", "pdf", "png", "json"}, false},
		{"invalid format", []string{"gif"}, true},
		{"mixed valid invalid", []string{"svg", "gif"}, true},
		{"empty slice", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFormats(tt.formats)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "runs/run-1.json", "runs/run-1"},
		{"out.svg", "run.json", "out"},
		{"out.dot", "run.json", "out"},
		{"out", "run.json", "out"},
		{"out.txt", "run.json", "out.txt"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestDefaultOutput(t *testing.T) {
	if got := defaultOutput([]string{"runs/a.json"}, "", ".view.json"); got != "runs/a.view.json" {
		t.Errorf("got %q", got)
	}
	if got := defaultOutput(nil, "run-9", ".view.json"); got != "run-9.view.json" {
		t.Errorf("got %q", got)
	}
	if got := defaultOutput([]string{"-"}, "", ".svg"); got != "snapshot.svg" {
		t.Errorf("got %q", got)
	}
}

func TestRenderViewDOTAndJSON(t *testing.T) {
	v := graph.View{
		Direction: graph.LeftRight,
		Nodes:     []graph.ViewNode{{ID: "A", Bucket: "done"}, {ID: "B", Bucket: "pending", Rank: 1}},
		Edges:     []graph.ViewEdge{{ID: "e1", Source: "A", Target: "B"}},
	}
	opts := &renderOpts{}

	dot, err := renderView(context.Background(), v, formatDOT, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(dot), "rankdir=LR") || !strings.Contains(string(dot), `"A" -> "B"`) {
		t.Errorf("unexpected DOT:\n%s", dot)
	}

	js, err := renderView(context.Background(), v, formatJSON, opts)
	if err != nil {
		t.Fatal(err)
	}
	back, err := graph.UnmarshalView(js)
	if err != nil {
		t.Fatal(err)
	}
	if len(back.Nodes) != 2 || back.Direction != graph.LeftRight {
		t.Errorf("round trip lost data: %+v", back)
	}
}
