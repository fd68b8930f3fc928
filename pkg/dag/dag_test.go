package dag

import (
	"errors"
	"slices"
	"testing"
)

func TestAddNodeErrors(t *testing.T) {
	g := New()
	if err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(empty) = %v, want ErrInvalidNodeID", err)
	}
	if err := g.AddNode(Node{ID: "a"}); err != nil {
		t.Fatalf("AddNode(a) = %v", err)
	}
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode(dup) = %v, want ErrDuplicateNodeID", err)
	}
}

func TestAddEdgeErrors(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "a"})
	if err := g.AddEdge(Edge{From: "z", To: "a"}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("AddEdge(unknown source) = %v", err)
	}
	if err := g.AddEdge(Edge{From: "a", To: "z"}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("AddEdge(unknown target) = %v", err)
	}
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d, want 0", g.EdgeCount())
	}
}

func TestNodesSortedByID(t *testing.T) {
	g := New()
	for _, id := range []string{"c", "a", "b"} {
		g.AddNode(Node{ID: id})
	}
	if got := NodeIDs(g.Nodes()); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("Nodes() = %v, want sorted", got)
	}
}

func TestSetRanksAndOrders(t *testing.T) {
	g := New()
	for _, id := range []string{"a", "b", "c", "d"} {
		g.AddNode(Node{ID: id})
	}
	g.SetRanks(map[string]int{"b": 1, "c": 1, "d": 1})

	if got := NodeIDs(g.NodesInRank(1)); !slices.Equal(got, []string{"b", "c", "d"}) {
		t.Fatalf("rank 1 = %v", got)
	}
	if g.MaxRank() != 1 || g.RankCount() != 2 {
		t.Errorf("MaxRank() = %d, RankCount() = %d", g.MaxRank(), g.RankCount())
	}

	g.SetOrders(map[int][]string{1: {"d", "b", "c"}})
	if got := NodeIDs(g.NodesInRank(1)); !slices.Equal(got, []string{"d", "b", "c"}) {
		t.Errorf("rank 1 after SetOrders = %v", got)
	}
	if n, _ := g.Node("c"); n.Order != 2 {
		t.Errorf("c.Order = %d, want 2", n.Order)
	}
}

func TestRemoveEdge(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "a"})
	g.AddNode(Node{ID: "b"})
	g.AddEdge(Edge{From: "a", To: "b"})
	g.AddEdge(Edge{From: "a", To: "b"})

	g.RemoveEdge("a", "b")
	if g.EdgeCount() != 1 || g.OutDegree("a") != 1 || g.InDegree("b") != 1 {
		t.Errorf("after one removal: edges=%d out=%d in=%d", g.EdgeCount(), g.OutDegree("a"), g.InDegree("b"))
	}
	g.RemoveEdge("a", "b")
	g.RemoveEdge("a", "b")
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d, want 0", g.EdgeCount())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		ranks map[string]int
		edges [][2]string
		want  error
	}{
		{"chain", map[string]int{"a": 0, "b": 1, "c": 2}, [][2]string{{"a", "b"}, {"b", "c"}}, nil},
		{"skip rank", map[string]int{"a": 0, "b": 1, "c": 3}, [][2]string{{"a", "c"}}, nil},
		{"same rank", map[string]int{"a": 0, "b": 0}, [][2]string{{"a", "b"}}, ErrNonMonotonicRanks},
		{"upward", map[string]int{"a": 1, "b": 0}, [][2]string{{"a", "b"}}, ErrNonMonotonicRanks},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			for id, r := range tt.ranks {
				g.AddNode(Node{ID: id, Rank: r})
			}
			for _, e := range tt.edges {
				g.AddEdge(Edge{From: e[0], To: e[1]})
			}
			if err := g.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDetectCycles(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "a"})
	g.AddNode(Node{ID: "b"})
	g.AddEdge(Edge{From: "a", To: "b"})
	g.AddEdge(Edge{From: "b", To: "a"})

	if err := g.detectCycles(); !errors.Is(err, ErrGraphHasCycle) {
		t.Errorf("detectCycles() = %v, want ErrGraphHasCycle", err)
	}
}

func TestCountCrossings(t *testing.T) {
	// K2,2 between ranks 0 and 1 plus a parallel pair between 1 and 2.
	g := New()
	for _, id := range []string{"a", "b", "x", "y", "p", "q"} {
		g.AddNode(Node{ID: id})
	}
	g.AddEdge(Edge{From: "a", To: "x"})
	g.AddEdge(Edge{From: "a", To: "y"})
	g.AddEdge(Edge{From: "b", To: "x"})
	g.AddEdge(Edge{From: "b", To: "y"})
	g.AddEdge(Edge{From: "x", To: "p"})
	g.AddEdge(Edge{From: "y", To: "q"})

	orders := map[int][]string{0: {"a", "b"}, 1: {"x", "y"}, 2: {"p", "q"}}
	if got := CountCrossings(g, orders); got != 1 {
		t.Errorf("CountCrossings() = %d, want 1", got)
	}
	orders[2] = []string{"q", "p"}
	if got := CountCrossings(g, orders); got != 2 {
		t.Errorf("CountCrossings() = %d, want 2", got)
	}
}

func TestCountPairCrossings(t *testing.T) {
	g := New()
	for _, id := range []string{"a", "b", "x", "y"} {
		g.AddNode(Node{ID: id})
	}
	g.AddEdge(Edge{From: "a", To: "y"})
	g.AddEdge(Edge{From: "b", To: "x"})

	lower := []string{"x", "y"}
	if got := CountPairCrossings(g, "a", "b", lower, false); got != 1 {
		t.Errorf("a before b = %d, want 1", got)
	}
	if got := CountPairCrossings(g, "b", "a", lower, false); got != 0 {
		t.Errorf("b before a = %d, want 0", got)
	}
	if got := CountPairCrossings(g, "x", "y", []string{"a", "b"}, true); got != 1 {
		t.Errorf("parents x before y = %d, want 1", got)
	}
}
