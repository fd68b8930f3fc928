package cli

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/taskgraph/pkg/graph"
	"github.com/matzehuels/taskgraph/pkg/model"
)

// liveGraph is the part of the reconciler the dashboard drives.
type liveGraph interface {
	Refresh(ctx context.Context) error
	ToggleDirection(ctx context.Context) error
	SetAutoRefresh(ctx context.Context, on bool) error
	SetInterval(ctx context.Context, d time.Duration) error
	Hover(ctx context.Context, taskID string) error
	Leave(ctx context.Context) error
	Click(ctx context.Context, taskID string) error
}

var (
	taskStyle     = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
	taskLitStyle  = taskStyle.BorderForeground(colorYellow).Bold(true)
	taskCursor    = taskStyle.BorderForeground(colorCyan).Bold(true)
	rankLabel     = lipgloss.NewStyle().Foreground(colorDim).Width(8)
	listDimStyle  = lipgloss.NewStyle().Foreground(colorDim)
	headerStyle   = lipgloss.NewStyle().Foreground(colorGray)
	errorBarStyle = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Messages
// =============================================================================

type viewMsg graph.View

type viewClosedMsg struct{}

type actionErrMsg struct{ err error }

// waitForView blocks until the reconciler publishes the next view.
func waitForView(ch <-chan graph.View) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return viewClosedMsg{}
		}
		return viewMsg(v)
	}
}

// =============================================================================
// WatchModel - live lineage dashboard
// =============================================================================

// WatchModel is the bubbletea model for the watch command.
type WatchModel struct {
	ctx   context.Context
	live  liveGraph
	views <-chan graph.View

	view   graph.View
	tasks  []graph.ViewNode // rank, then slot order
	cursor int
	status string
	width  int
}

// NewWatchModel creates a dashboard that renders views from ch and sends
// key presses to live.
func NewWatchModel(ctx context.Context, live liveGraph, ch <-chan graph.View) WatchModel {
	return WatchModel{ctx: ctx, live: live, views: ch, cursor: -1}
}

func (m WatchModel) Init() tea.Cmd {
	return waitForView(m.views)
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case viewMsg:
		m.setView(graph.View(msg))
		return m, waitForView(m.views)

	case viewClosedMsg:
		return m, tea.Quit

	case actionErrMsg:
		m.status = msg.err.Error()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *WatchModel) setView(v graph.View) {
	m.view = v
	m.tasks = slices.Clone(v.Nodes)
	slices.SortFunc(m.tasks, func(a, b graph.ViewNode) int {
		if c := cmp.Compare(a.Rank, b.Rank); c != 0 {
			return c
		}
		return cmp.Compare(a.Order, b.Order)
	})

	// Keep the cursor on the hovered task across refreshes.
	m.cursor = -1
	for i, t := range m.tasks {
		if t.ID == v.Hovered {
			m.cursor = i
		}
	}
}

func (m WatchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		return m, m.act(m.live.Refresh)
	case "d":
		return m, m.act(m.live.ToggleDirection)
	case "a":
		on := !m.view.AutoRefresh
		return m, m.act(func(ctx context.Context) error { return m.live.SetAutoRefresh(ctx, on) })
	case "+", "]":
		return m, m.stepInterval(1)
	case "-", "[":
		return m, m.stepInterval(-1)
	case "down", "j", "right", "l", "tab":
		return m.moveCursor(1)
	case "up", "k", "left", "h", "shift+tab":
		return m.moveCursor(-1)
	case "esc":
		m.cursor = -1
		return m, m.act(m.live.Leave)
	case "enter":
		if m.cursor < 0 || m.cursor >= len(m.tasks) {
			return m, nil
		}
		id := m.tasks[m.cursor].ID
		return m, m.act(func(ctx context.Context) error { return m.live.Click(ctx, id) })
	}
	return m, nil
}

func (m WatchModel) moveCursor(delta int) (tea.Model, tea.Cmd) {
	if len(m.tasks) == 0 {
		return m, nil
	}
	if m.cursor < 0 {
		m.cursor = 0
	} else {
		m.cursor = (m.cursor + delta + len(m.tasks)) % len(m.tasks)
	}
	id := m.tasks[m.cursor].ID
	return m, m.act(func(ctx context.Context) error { return m.live.Hover(ctx, id) })
}

// stepInterval moves to the next or previous allowed refresh interval.
func (m WatchModel) stepInterval(delta int) tea.Cmd {
	i := slices.Index(graph.RefreshIntervals, m.view.RefreshInterval)
	if i < 0 {
		i = slices.Index(graph.RefreshIntervals, graph.DefaultRefreshInterval)
	}
	j := min(max(i+delta, 0), len(graph.RefreshIntervals)-1)
	if j == i {
		return nil
	}
	d := graph.RefreshIntervals[j]
	return m.act(func(ctx context.Context) error { return m.live.SetInterval(ctx, d) })
}

// act runs fn off the UI goroutine; failures show in the status line.
func (m WatchModel) act(fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		if err := fn(ctx); err != nil {
			return actionErrMsg{err}
		}
		return nil
	}
}

func (m WatchModel) View() string {
	var b strings.Builder
	v := m.view

	b.WriteString(StyleTitle.Render("taskgraph"))
	if v.Scope != "" {
		b.WriteString(" " + StyleHighlight.Render(v.Scope))
	}
	b.WriteString("  " + headerStyle.Render(m.headerLine()))
	b.WriteString("\n")
	b.WriteString(m.legendLine())
	b.WriteString("\n\n")

	if v.Error != "" {
		msg := iconError + " " + v.Error
		if v.Stale {
			msg += " (showing last good graph)"
		}
		b.WriteString(errorBarStyle.Render(msg))
		b.WriteString("\n\n")
	}

	if len(m.tasks) == 0 {
		if v.Loading {
			b.WriteString(listDimStyle.Render("Loading..."))
		} else {
			b.WriteString(listDimStyle.Render("No tasks"))
		}
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderRanks())
		b.WriteString("\n")
	}

	if t, ok := v.Node(v.Selected); ok {
		b.WriteString("\n")
		b.WriteString(StyleValue.Render(t.DisplayLabel()) + " " + bucketStyle(model.Bucket(t.Bucket)).Render(t.Status))
		if t.PhaseName != "" {
			b.WriteString(listDimStyle.Render("  phase " + t.PhaseName))
		}
		if t.Description != "" {
			b.WriteString("\n" + listDimStyle.Render(t.Description))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(errorBarStyle.Render(m.status) + "\n")
	}
	b.WriteString(listDimStyle.Render("↑/↓ hover  ⏎ select  esc clear  r refresh  d direction  a auto  +/- interval  q quit"))
	return b.String()
}

func (m WatchModel) headerLine() string {
	v := m.view
	auto := "auto off"
	if v.AutoRefresh {
		auto = "auto " + v.RefreshInterval.String()
	}
	parts := []string{string(v.Direction), auto, fmt.Sprintf("rev %d", v.Revision)}
	if !v.SnapshotAt.IsZero() {
		parts = append(parts, "snapshot "+v.SnapshotAt.Format("15:04:05"))
	}
	if v.Loading {
		parts = append(parts, "refreshing")
	}
	return strings.Join(parts, " · ")
}

func (m WatchModel) legendLine() string {
	c := m.view.Counts
	items := []string{
		StyleNumber.Render(fmt.Sprint(c.Total)) + " tasks",
		bucketStyle(model.BucketDone).Render(fmt.Sprintf("%d done", c.Done)),
		bucketStyle(model.BucketInProgress).Render(fmt.Sprintf("%d in progress", c.InProgress)),
		bucketStyle(model.BucketPending).Render(fmt.Sprintf("%d pending", c.Pending)),
		bucketStyle(model.BucketFailed).Render(fmt.Sprintf("%d failed", c.Failed)),
		StyleNumber.Render(fmt.Sprint(c.Edges)) + " edges",
	}
	return strings.Join(items, StyleDim.Render(" · "))
}

// renderRanks draws one row per rank in top-down mode and one column per
// rank in left-right mode.
func (m WatchModel) renderRanks() string {
	var groups [][]string
	for i, t := range m.tasks {
		if len(groups) <= t.Rank {
			groups = append(groups, make([][]string, t.Rank+1-len(groups))...)
		}
		groups[t.Rank] = append(groups[t.Rank], m.renderTask(i, t))
	}

	if m.view.Direction == graph.LeftRight {
		cols := make([]string, len(groups))
		for r, g := range groups {
			cols[r] = lipgloss.JoinVertical(lipgloss.Left, append([]string{rankLabel.Render(fmt.Sprintf("rank %d", r))}, g...)...)
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
	}

	rows := make([]string, len(groups))
	for r, g := range groups {
		row := append([]string{rankLabel.Render(fmt.Sprintf("rank %d", r))}, g...)
		rows[r] = lipgloss.JoinHorizontal(lipgloss.Center, row...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m WatchModel) renderTask(i int, t graph.ViewNode) string {
	style := taskStyle
	switch {
	case i == m.cursor:
		style = taskCursor
	case t.Highlighted:
		style = taskLitStyle
	}
	label := t.DisplayLabel()
	if t.ID == m.view.Selected {
		label = "● " + label
	}
	return style.Render(label + "\n" + bucketStyle(model.Bucket(t.Bucket)).Render(t.Status))
}
