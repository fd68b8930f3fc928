// Package interaction tracks pointer state over the task graph: which task is
// hovered, the lineage highlight that hover produces, and which task the
// operator selected.
//
// Hover and selection are independent. The hover machine has two states:
//
//	Idle --Enter(n)--> Hovering(n) --Leave--> Idle
//	Hovering(n) --Enter(m)--> Hovering(m)
//
// Entering the task that is already hovered does nothing. Click records the
// selection and notifies the host; it never touches hover or highlight.
package interaction

import (
	"errors"

	"github.com/matzehuels/taskgraph/pkg/reach"
)

// ErrUnknownNode is returned for pointer events on a task that is not in the
// current graph.
var ErrUnknownNode = errors.New("unknown node")

// State is the hover state.
type State int

const (
	Idle State = iota
	Hovering
)

func (s State) String() string {
	if s == Hovering {
		return "hovering"
	}
	return "idle"
}

// Controller is the hover/selection state machine. It is not safe for
// concurrent use; the reconciler drives it from its event loop.
type Controller struct {
	index  *reach.Index
	exists func(id string) bool

	state     State
	hovered   string
	highlight reach.Highlight
	selected  string

	onSelect     func(taskID string)
	computations int
}

// New returns an idle controller with an empty graph. onSelect may be nil.
func New(onSelect func(taskID string)) *Controller {
	return &Controller{
		index:    reach.New(nil),
		exists:   func(string) bool { return false },
		onSelect: onSelect,
	}
}

// OnSelect replaces the selection callback.
func (c *Controller) OnSelect(fn func(taskID string)) { c.onSelect = fn }

// Enter moves the pointer onto a task and highlights its lineage.
func (c *Controller) Enter(id string) error {
	if !c.exists(id) {
		return ErrUnknownNode
	}
	if c.state == Hovering && c.hovered == id {
		return nil
	}
	c.state, c.hovered = Hovering, id
	c.recompute()
	return nil
}

// Leave clears the highlight and returns to Idle.
func (c *Controller) Leave() {
	c.state, c.hovered = Idle, ""
	c.highlight = reach.Highlight{}
}

// Click selects a task and invokes the selection callback.
func (c *Controller) Click(id string) error {
	if !c.exists(id) {
		return ErrUnknownNode
	}
	c.selected = id
	if c.onSelect != nil {
		c.onSelect(id)
	}
	return nil
}

// ClearSelection drops the selection without notifying.
func (c *Controller) ClearSelection() { c.selected = "" }

// Rebind swaps in the graph of a new snapshot. A hovered task that still
// exists gets its highlight recomputed against the new edges; one that
// vanished sends the controller back to Idle. A vanished selection is
// cleared as well.
func (c *Controller) Rebind(index *reach.Index, exists func(id string) bool) {
	if index == nil {
		index = reach.New(nil)
	}
	c.index, c.exists = index, exists

	if c.selected != "" && !exists(c.selected) {
		c.selected = ""
	}
	if c.state != Hovering {
		return
	}
	if !exists(c.hovered) {
		c.Leave()
		return
	}
	c.recompute()
}

func (c *Controller) recompute() {
	c.highlight = c.index.Component(c.hovered)
	c.computations++
}

// State returns the hover state.
func (c *Controller) State() State { return c.state }

// Hovered returns the hovered task, or "" when idle.
func (c *Controller) Hovered() string { return c.hovered }

// Selected returns the selected task, or "".
func (c *Controller) Selected() string { return c.selected }

// Highlight returns the current highlight; empty when idle.
func (c *Controller) Highlight() reach.Highlight { return c.highlight }

// Computations returns how many reachability queries have run.
func (c *Controller) Computations() int { return c.computations }
