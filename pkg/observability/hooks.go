// Package observability lets hosts observe fetches, layouts, cache traffic,
// HTTP calls and live events without the library packages depending on a
// metrics or tracing backend.
//
// Every hook set defaults to a no-op. Hosts install real implementations at
// startup:
//
//	hooks := observability.NewLogHooks(logger)
//	observability.SetPipelineHooks(hooks)
//	observability.SetEventHooks(hooks)
//
// Libraries fetch the current set at the call site:
//
//	observability.Pipeline().OnFetchStart(ctx, scope)
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks observes the snapshot-to-view pipeline.
type PipelineHooks interface {
	OnFetchStart(ctx context.Context, scope string)
	OnFetchComplete(ctx context.Context, scope string, nodeCount int, duration time.Duration, err error)
	OnLayoutStart(ctx context.Context, direction string, nodeCount int)
	OnLayoutComplete(ctx context.Context, direction string, duration time.Duration, err error)
	// OnPublish records a view handed to subscribers.
	OnPublish(ctx context.Context, revision uint64, subscribers int)
}

// CacheHooks observes layout cache traffic. keyType names the cached entity.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks observes outgoing requests to the data service.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, host, path string, err error)
}

// EventHooks observes the live event feed. triggered reports whether the
// event caused a refresh of the watched scope.
type EventHooks interface {
	OnEvent(ctx context.Context, eventType, scope string, triggered bool)
}

// NoopPipelineHooks ignores every pipeline event.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnFetchStart(context.Context, string)                                {}
func (NoopPipelineHooks) OnFetchComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnLayoutStart(context.Context, string, int)                          {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, string, time.Duration, error)      {}
func (NoopPipelineHooks) OnPublish(context.Context, uint64, int)                              {}

// NoopCacheHooks ignores every cache event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores every HTTP event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// NoopEventHooks ignores every feed event.
type NoopEventHooks struct{}

func (NoopEventHooks) OnEvent(context.Context, string, string, bool) {}

// registry holds one hook set behind a lock.
type registry[T any] struct {
	mu   sync.RWMutex
	cur  T
	noop T
}

func newRegistry[T any](noop T) *registry[T] {
	return &registry[T]{cur: noop, noop: noop}
}

func (r *registry[T]) get() T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cur
}

func (r *registry[T]) set(h T, isNil bool) {
	if isNil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cur = h
}

func (r *registry[T]) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cur = r.noop
}

var (
	pipelineHooks = newRegistry[PipelineHooks](NoopPipelineHooks{})
	cacheHooks    = newRegistry[CacheHooks](NoopCacheHooks{})
	httpHooks     = newRegistry[HTTPHooks](NoopHTTPHooks{})
	eventHooks    = newRegistry[EventHooks](NoopEventHooks{})
)

// SetPipelineHooks installs pipeline hooks. Nil is ignored.
func SetPipelineHooks(h PipelineHooks) { pipelineHooks.set(h, h == nil) }

// SetCacheHooks installs cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) { cacheHooks.set(h, h == nil) }

// SetHTTPHooks installs HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) { httpHooks.set(h, h == nil) }

// SetEventHooks installs event feed hooks. Nil is ignored.
func SetEventHooks(h EventHooks) { eventHooks.set(h, h == nil) }

// Pipeline returns the installed pipeline hooks.
func Pipeline() PipelineHooks { return pipelineHooks.get() }

// Cache returns the installed cache hooks.
func Cache() CacheHooks { return cacheHooks.get() }

// HTTP returns the installed HTTP hooks.
func HTTP() HTTPHooks { return httpHooks.get() }

// Events returns the installed event feed hooks.
func Events() EventHooks { return eventHooks.get() }

// Reset restores every hook set to its no-op.
func Reset() {
	pipelineHooks.reset()
	cacheHooks.reset()
	httpHooks.reset()
	eventHooks.reset()
}
