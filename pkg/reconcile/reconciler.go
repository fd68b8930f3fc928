package reconcile

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/taskgraph/pkg/errors"
	"github.com/matzehuels/taskgraph/pkg/events"
	"github.com/matzehuels/taskgraph/pkg/graph"
	"github.com/matzehuels/taskgraph/pkg/interaction"
	"github.com/matzehuels/taskgraph/pkg/layout/ordering"
	"github.com/matzehuels/taskgraph/pkg/observability"
	"github.com/matzehuels/taskgraph/pkg/pipeline"
	"github.com/matzehuels/taskgraph/pkg/reach"
)

// ErrStopped is returned by commands sent after Run has returned.
var ErrStopped = stderrors.New("reconciler stopped")

type command struct {
	fn    func() error
	reply chan error
}

type fetchResult struct {
	gen      uint64
	scope    string
	reqID    string
	snap     graph.Snapshot
	err      error
	duration time.Duration
}

// Reconciler fetches snapshots, lays them out and publishes views.
type Reconciler struct {
	fetcher Fetcher
	opts    Options

	cmds    chan command
	results chan fetchResult
	done    chan struct{}
	running sync.Once

	newTicker func(time.Duration) ticker

	// Loop-owned state.
	runCtx    context.Context
	scope     string
	direction graph.Direction
	interval  time.Duration
	auto      bool
	ticker    ticker
	gen       uint64
	inflight  bool
	pending   bool
	cancel    context.CancelFunc
	last      *pipeline.Result
	hints     ordering.Hints
	err       error
	ctrl      *interaction.Controller
	revision  uint64

	// Published state.
	mu      sync.RWMutex
	current graph.View
	subs    map[uint64]chan graph.View
	nextSub uint64
}

// New validates opts and returns a Reconciler. Call Run to start it.
func New(fetcher Fetcher, opts Options) (*Reconciler, error) {
	if fetcher == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "fetcher is required")
	}
	if err := opts.validateAndSetDefaults(); err != nil {
		return nil, err
	}
	r := &Reconciler{
		fetcher:   fetcher,
		opts:      opts,
		cmds:      make(chan command),
		results:   make(chan fetchResult),
		done:      make(chan struct{}),
		newTicker: newTimeTicker,
		scope:     opts.Scope,
		direction: opts.Direction,
		interval:  opts.Interval,
		auto:      opts.AutoRefresh,
		ctrl:      interaction.New(nil),
		subs:      make(map[uint64]chan graph.View),
	}
	r.current = r.buildView()
	return r, nil
}

// Run fetches immediately and then processes triggers until ctx is done.
// It returns ctx.Err(). Run may only be called once.
func (r *Reconciler) Run(ctx context.Context) error {
	err := ErrStopped
	r.running.Do(func() { err = r.loop(ctx) })
	return err
}

func (r *Reconciler) loop(ctx context.Context) error {
	defer r.shutdown()
	r.runCtx = ctx
	log := r.opts.Logger

	r.ticker = r.newTicker(r.interval)
	defer r.ticker.Stop()
	if !r.auto {
		r.ticker.Stop()
	}

	var feed <-chan events.Event
	if r.opts.Events != nil {
		ch, err := r.opts.Events.Subscribe(ctx)
		if err != nil {
			log.Warn("event feed unavailable, relying on timer", "err", err)
		} else {
			feed = ch
		}
	}

	r.trigger("initial")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case cmd := <-r.cmds:
			cmd.reply <- cmd.fn()

		case res := <-r.results:
			r.apply(res)

		case <-r.ticker.C():
			if r.auto {
				r.trigger("timer")
			}

		case e, ok := <-feed:
			if !ok {
				log.Warn("event feed closed, relying on timer")
				feed = nil
				continue
			}
			relevant := e.Type == events.TaskCreated && e.Matches(r.scope)
			observability.Events().OnEvent(ctx, string(e.Type), e.Scope, relevant)
			if relevant {
				log.Debug("task created", "task", e.TaskID, "event", e.ID)
				r.trigger("event")
			}
		}
	}
}

func (r *Reconciler) shutdown() {
	if r.cancel != nil {
		r.cancel()
	}
	close(r.done)

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, ch := range r.subs {
		delete(r.subs, id)
		close(ch)
	}
}

// trigger requests a fetch. While one is in flight the request is folded
// into a single follow-up fetch.
func (r *Reconciler) trigger(reason string) {
	if r.inflight {
		r.pending = true
		return
	}
	r.startFetch(reason)
}

// supersede cancels any in-flight fetch and starts a new one whose result
// replaces it.
func (r *Reconciler) supersede(reason string) {
	if r.cancel != nil {
		r.cancel()
	}
	r.pending = false
	r.startFetch(reason)
}

func (r *Reconciler) startFetch(reason string) {
	r.gen++
	gen, scope, reqID := r.gen, r.scope, uuid.NewString()

	ctx, cancel := context.WithTimeout(r.runCtx, r.opts.FetchTimeout)
	r.cancel = cancel
	r.inflight = true

	r.opts.Logger.Debug("fetching snapshot", "scope", scope, "reason", reason, "gen", gen, "request_id", reqID)

	go func() {
		defer cancel()
		hooks := observability.Pipeline()
		hooks.OnFetchStart(ctx, scope)
		start := time.Now()
		snap, err := r.fetcher.GetGraphSnapshot(ctx, scope)
		d := time.Since(start)
		hooks.OnFetchComplete(ctx, scope, len(snap.Nodes), d, err)

		res := fetchResult{gen: gen, scope: scope, reqID: reqID, snap: snap, err: err, duration: d}
		select {
		case r.results <- res:
		case <-r.runCtx.Done():
		}
	}()

	r.publish()
}

func (r *Reconciler) apply(res fetchResult) {
	log := r.opts.Logger.With("request_id", res.reqID, "gen", res.gen)
	if res.gen != r.gen {
		log.Debug("discarding superseded snapshot", "current_gen", r.gen)
		return
	}
	r.inflight = false
	r.cancel = nil

	if res.err != nil {
		r.err = fetchError(res.err)
		log.Warn("snapshot fetch failed", "scope", res.scope, "err", res.err, "stale", r.last != nil)
	} else if err := r.relayout(res.snap); err != nil {
		r.err = err
		log.Error("layout failed", "err", err)
	} else {
		r.err = nil
		log.Debug("snapshot applied",
			"scope", res.scope,
			"tasks", len(r.last.Model.Tasks),
			"edges", len(r.last.Model.Edges),
			"duration", res.duration)
	}

	if r.pending {
		r.pending = false
		r.startFetch("coalesced")
		return
	}
	r.publish()
}

// relayout builds and lays out snap, then rebinds the hover state to the
// new graph.
func (r *Reconciler) relayout(snap graph.Snapshot) error {
	opts := r.opts.Layout
	opts.Direction = r.direction
	opts.Hints = r.hints

	res, err := r.opts.Runner.Execute(r.runCtx, snap, opts)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "layout snapshot")
	}
	for _, e := range res.Layout.BackEdges {
		r.opts.Logger.Warn("spawn cycle", "edge", e.ID, "from", e.Source, "to", e.Target)
	}

	r.last = res
	r.hints = res.Layout.Hints()
	r.ctrl.Rebind(res.Index(), res.Model.Has)
	return nil
}

func fetchError(err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(errors.ErrCodeTimeout, err, "snapshot fetch timed out")
	}
	return errors.Wrap(errors.ErrCodeFetchFailed, err, "could not load the task graph")
}

// =============================================================================
// Views
// =============================================================================

func (r *Reconciler) buildView() graph.View {
	var v graph.View
	if r.last != nil {
		v = r.last.View(r.ctrl.Highlight())
	} else {
		v = graph.View{Nodes: []graph.ViewNode{}, Edges: []graph.ViewEdge{}}
	}
	v.Scope = r.scope
	v.Direction = r.direction
	v.Hovered = r.ctrl.Hovered()
	v.Selected = r.ctrl.Selected()
	v.AutoRefresh = r.auto
	v.RefreshInterval = r.interval
	v.Loading = r.inflight

	if r.err != nil {
		v.Error = errors.UserMessage(r.err)
		v.ErrorCode = string(errors.GetCode(r.err))
		v.Retryable = errors.Retryable(r.err)
		v.Stale = r.last != nil
	}

	r.revision++
	v.Revision = r.revision
	v.UpdatedAt = time.Now()
	return v
}

func (r *Reconciler) publish() {
	v := r.buildView()

	r.mu.Lock()
	r.current = v
	n := len(r.subs)
	for _, ch := range r.subs {
		// Keep only the newest view for slow subscribers.
		select {
		case <-ch:
		default:
		}
		ch <- v
	}
	r.mu.Unlock()

	observability.Pipeline().OnPublish(r.runCtx, v.Revision, n)
}

// Current returns the latest published view.
func (r *Reconciler) Current() graph.View {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Subscribe returns a channel that receives the current view immediately and
// every view published afterwards. The channel holds at most one view.
// Call the returned function to unsubscribe; channels are also closed when
// Run returns.
func (r *Reconciler) Subscribe() (<-chan graph.View, func()) {
	ch := make(chan graph.View, 1)

	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	ch <- r.current
	select {
	case <-r.done:
		close(ch)
		r.mu.Unlock()
		return ch, func() {}
	default:
	}
	r.subs[id] = ch
	r.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if c, ok := r.subs[id]; ok {
				delete(r.subs, id)
				close(c)
			}
		})
	}
}

// =============================================================================
// Commands
// =============================================================================

func (r *Reconciler) do(ctx context.Context, fn func() error) error {
	cmd := command{fn: fn, reply: make(chan error, 1)}
	select {
	case r.cmds <- cmd:
	case <-r.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-r.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Refresh fetches now. A refresh during an in-flight fetch runs right after
// it.
func (r *Reconciler) Refresh(ctx context.Context) error {
	return r.do(ctx, func() error {
		r.trigger("manual")
		return nil
	})
}

// SetDirection switches the layout direction. The current graph is laid out
// again at once and a fresh snapshot is requested, superseding any fetch in
// flight.
func (r *Reconciler) SetDirection(ctx context.Context, d graph.Direction) error {
	dir, err := graph.ParseDirection(string(d))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDirection, err, "invalid direction")
	}
	return r.do(ctx, func() error {
		r.applyDirection(dir)
		return nil
	})
}

// ToggleDirection flips between top-down and left-right.
func (r *Reconciler) ToggleDirection(ctx context.Context) error {
	return r.do(ctx, func() error {
		r.applyDirection(r.direction.Toggle())
		return nil
	})
}

func (r *Reconciler) applyDirection(dir graph.Direction) {
	if dir == r.direction {
		return
	}
	r.direction = dir
	if r.last != nil {
		if err := r.relayout(r.last.Snapshot); err != nil {
			r.opts.Logger.Error("layout failed", "err", err)
		}
	}
	r.supersede("direction")
}

// SetScope switches to another scope. The old graph, hover and selection
// are discarded and any fetch in flight is superseded.
func (r *Reconciler) SetScope(ctx context.Context, scope string) error {
	return r.do(ctx, func() error {
		if scope == r.scope {
			r.trigger("manual")
			return nil
		}
		r.scope = scope
		r.last, r.hints, r.err = nil, nil, nil
		r.ctrl.Leave()
		r.ctrl.ClearSelection()
		r.ctrl.Rebind(reach.New(nil), func(string) bool { return false })
		r.supersede("scope")
		return nil
	})
}

// SetInterval changes the auto-refresh period. d must be one of
// graph.RefreshIntervals.
func (r *Reconciler) SetInterval(ctx context.Context, d time.Duration) error {
	if !graph.ValidRefreshInterval(d) {
		return errors.New(errors.ErrCodeInvalidInterval, "refresh interval %s is not one of %v", d, graph.RefreshIntervals)
	}
	return r.do(ctx, func() error {
		r.interval = d
		if r.auto {
			r.ticker.Reset(d)
		}
		r.publish()
		return nil
	})
}

// SetAutoRefresh turns the timer on or off. Events and manual refreshes work
// either way.
func (r *Reconciler) SetAutoRefresh(ctx context.Context, on bool) error {
	return r.do(ctx, func() error {
		if on == r.auto {
			return nil
		}
		r.auto = on
		if on {
			r.ticker.Reset(r.interval)
		} else {
			r.ticker.Stop()
		}
		r.publish()
		return nil
	})
}

// Hover moves the pointer onto a task and highlights its lineage.
func (r *Reconciler) Hover(ctx context.Context, taskID string) error {
	return r.do(ctx, func() error {
		before := r.ctrl.Computations()
		if err := r.ctrl.Enter(taskID); err != nil {
			return errors.Wrap(errors.ErrCodeNotFound, err, "task %q", taskID)
		}
		if r.ctrl.Computations() != before {
			r.publish()
		}
		return nil
	})
}

// Leave clears the hover highlight.
func (r *Reconciler) Leave(ctx context.Context) error {
	return r.do(ctx, func() error {
		if r.ctrl.State() == interaction.Idle {
			return nil
		}
		r.ctrl.Leave()
		r.publish()
		return nil
	})
}

// Click selects a task and then calls Options.OnSelect.
func (r *Reconciler) Click(ctx context.Context, taskID string) error {
	err := r.do(ctx, func() error {
		if err := r.ctrl.Click(taskID); err != nil {
			return errors.Wrap(errors.ErrCodeNotFound, err, "task %q", taskID)
		}
		r.publish()
		return nil
	})
	if err == nil && r.opts.OnSelect != nil {
		r.opts.OnSelect(taskID)
	}
	return err
}
