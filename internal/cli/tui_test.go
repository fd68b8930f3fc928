package cli

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/taskgraph/pkg/graph"
)

type recordingLive struct {
	calls []string
	err   error
}

func (r *recordingLive) rec(s string) error {
	r.calls = append(r.calls, s)
	return r.err
}

func (r *recordingLive) Refresh(context.Context) error         { return r.rec("refresh") }
func (r *recordingLive) ToggleDirection(context.Context) error { return r.rec("toggle") }
func (r *recordingLive) SetAutoRefresh(_ context.Context, on bool) error {
	if on {
		return r.rec("auto on")
	}
	return r.rec("auto off")
}
func (r *recordingLive) SetInterval(_ context.Context, d time.Duration) error {
	return r.rec("interval " + d.String())
}
func (r *recordingLive) Hover(_ context.Context, id string) error { return r.rec("hover " + id) }
func (r *recordingLive) Leave(context.Context) error            { return r.rec("leave") }
func (r *recordingLive) Click(_ context.Context, id string) error { return r.rec("click " + id) }

func (r *recordingLive) last() string {
	if len(r.calls) == 0 {
		return ""
	}
	return r.calls[len(r.calls)-1]
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds a key and runs the resulting command, returning the new model.
func press(t *testing.T, m WatchModel, k string) WatchModel {
	t.Helper()
	next, cmd := m.Update(key(k))
	if cmd != nil {
		if msg := cmd(); msg != nil {
			next, _ = next.Update(msg)
		}
	}
	return next.(WatchModel)
}

func sampleView() graph.View {
	return graph.View{
		Scope:           "run-1",
		Direction:       graph.TopDown,
		AutoRefresh:     true,
		RefreshInterval: 10 * time.Second,
		Nodes: []graph.ViewNode{
			{ID: "c", Label: "Child", Rank: 1, Order: 0, Status: "pending", Bucket: "pending"},
			{ID: "r", Label: "Root", Rank: 0, Order: 0, Status: "done", Bucket: "done"},
			{ID: "d", Label: "Other", Rank: 1, Order: 1, Status: "failed", Bucket: "failed"},
		},
		Counts: graph.Counts{Total: 3, Done: 1, Pending: 1, Failed: 1, Edges: 2},
	}
}

func loaded(live *recordingLive) WatchModel {
	m := NewWatchModel(context.Background(), live, nil)
	next, _ := m.Update(viewMsg(sampleView()))
	return next.(WatchModel)
}

func TestWatchModelOrdersTasksByRank(t *testing.T) {
	m := loaded(&recordingLive{})
	var ids []string
	for _, n := range m.tasks {
		ids = append(ids, n.ID)
	}
	if got := strings.Join(ids, ","); got != "r,c,d" {
		t.Errorf("task order = %s, want r,c,d", got)
	}
	if m.cursor != -1 {
		t.Errorf("cursor = %d, want -1 with nothing hovered", m.cursor)
	}
}

func TestWatchModelKeys(t *testing.T) {
	tests := []struct {
		keys []string
		want string
	}{
		{[]string{"r"}, "refresh"},
		{[]string{"d"}, "toggle"},
		{[]string{"a"}, "auto off"},
		{[]string{"+"}, "interval 15s"},
		{[]string{"-"}, "interval 5s"},
		{[]string{"j"}, "hover r"},
		{[]string{"j", "j"}, "hover c"},
		{[]string{"k"}, "hover r"},
		{[]string{"j", "enter"}, "click r"},
		{[]string{"j", "esc"}, "leave"},
		{[]string{"enter"}, ""},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.keys, "+"), func(t *testing.T) {
			live := &recordingLive{}
			m := loaded(live)
			for _, k := range tt.keys {
				m = press(t, m, k)
			}
			if got := live.last(); got != tt.want {
				t.Errorf("last call = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWatchModelKeepsCursorOnHovered(t *testing.T) {
	m := loaded(&recordingLive{})
	v := sampleView()
	v.Hovered = "d"
	next, _ := m.Update(viewMsg(v))
	m = next.(WatchModel)
	if m.cursor < 0 || m.tasks[m.cursor].ID != "d" {
		t.Errorf("cursor = %d, want on d", m.cursor)
	}
}

func TestWatchModelShowsActionErrors(t *testing.T) {
	live := &recordingLive{err: errors.New("reconciler stopped")}
	m := press(t, loaded(live), "r")
	if !strings.Contains(m.View(), "reconciler stopped") {
		t.Error("action error should appear in the status line")
	}
	m = press(t, m, "q")
	if m.status != "" {
		t.Error("next key press should clear the status line")
	}
}

func TestWatchModelView(t *testing.T) {
	v := sampleView()
	v.Selected = "c"
	v.Error = "could not load the task graph"
	v.Stale = true
	m := NewWatchModel(context.Background(), &recordingLive{}, nil)
	next, _ := m.Update(viewMsg(v))
	out := next.(WatchModel).View()

	for _, want := range []string{"run-1", "Root", "Child", "rank 1", "showing last good graph", "● Child", "auto 10s"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}

	empty := NewWatchModel(context.Background(), &recordingLive{}, nil).View()
	if !strings.Contains(empty, "No tasks") {
		t.Error("empty view should say so")
	}
}

func TestWatchModelQuitsWhenViewsClose(t *testing.T) {
	ch := make(chan graph.View)
	close(ch)
	m := NewWatchModel(context.Background(), &recordingLive{}, ch)
	msg := m.Init()()
	if _, ok := msg.(viewClosedMsg); !ok {
		t.Fatalf("Init on a closed channel = %T, want viewClosedMsg", msg)
	}
	_, cmd := m.Update(msg)
	if cmd == nil {
		t.Fatal("closed feed should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("closed feed should produce tea.QuitMsg")
	}
}
