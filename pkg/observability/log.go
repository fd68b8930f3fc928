package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks logs every observed event at debug level and failures at warn
// level. It implements every hook interface.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to l.
func NewLogHooks(l *log.Logger) *LogHooks { return &LogHooks{logger: l} }

func (h *LogHooks) OnFetchStart(_ context.Context, scope string) {
	h.logger.Debug("fetch started", "scope", scope)
}

func (h *LogHooks) OnFetchComplete(_ context.Context, scope string, nodeCount int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("fetch failed", "scope", scope, "duration", d, "err", err)
		return
	}
	h.logger.Debug("fetch complete", "scope", scope, "nodes", nodeCount, "duration", d)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, direction string, nodeCount int) {
	h.logger.Debug("layout started", "direction", direction, "nodes", nodeCount)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, direction string, d time.Duration, err error) {
	h.logger.Debug("layout complete", "direction", direction, "duration", d, "err", err)
}

func (h *LogHooks) OnPublish(_ context.Context, revision uint64, subscribers int) {
	h.logger.Debug("view published", "revision", revision, "subscribers", subscribers)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Warn("http error", "method", method, "host", host, "path", path, "err", err)
}

func (h *LogHooks) OnEvent(_ context.Context, eventType, scope string, triggered bool) {
	h.logger.Debug("event received", "type", eventType, "scope", scope, "refresh", triggered)
}

var (
	_ EventHooks    = (*LogHooks)(nil)
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
