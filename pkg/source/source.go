// Package source defines where graph snapshots come from.
//
// A [Source] returns the current snapshot for a scope (for example one
// orchestration run). Implementations live in subpackages:
//
//   - httpsource: the orchestrator's REST API
//   - filesource: JSON files on disk, one per scope
//   - mongosource: the latest snapshot document in a MongoDB collection
//
// Sources report failures with pkg/errors codes so the reconciler can tell
// retryable transport failures from bad input.
package source

import (
	"context"
	"sync"

	"github.com/matzehuels/taskgraph/pkg/graph"
)

// Source fetches graph snapshots.
type Source interface {
	GetGraphSnapshot(ctx context.Context, scope string) (graph.Snapshot, error)
}

// Func adapts a function to Source.
type Func func(ctx context.Context, scope string) (graph.Snapshot, error)

// GetGraphSnapshot calls f.
func (f Func) GetGraphSnapshot(ctx context.Context, scope string) (graph.Snapshot, error) {
	return f(ctx, scope)
}

// Static serves snapshots held in memory, keyed by scope. It is used by the
// CLI for one-shot runs and by tests.
type Static struct {
	mu    sync.RWMutex
	snaps map[string]graph.Snapshot
}

// NewStatic returns a Static source serving snap for every scope.
func NewStatic(snap graph.Snapshot) *Static {
	return &Static{snaps: map[string]graph.Snapshot{"": snap}}
}

// Put replaces the snapshot served for scope. The empty scope is the
// fallback for scopes without their own snapshot.
func (s *Static) Put(scope string, snap graph.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snaps == nil {
		s.snaps = make(map[string]graph.Snapshot)
	}
	s.snaps[scope] = snap
}

// GetGraphSnapshot implements Source.
func (s *Static) GetGraphSnapshot(_ context.Context, scope string) (graph.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[scope]
	if !ok {
		snap = s.snaps[""]
	}
	snap.Scope = scope
	return snap, nil
}
