// Package server exposes a live task graph over HTTP and WebSocket.
//
// Routes:
//
//	GET  /healthz
//	GET  /api/view                 current view as JSON
//	GET  /api/view.svg             current view rendered with Graphviz
//	POST /api/refresh
//	PUT  /api/direction            {"direction": "left-right"}
//	PUT  /api/scope                {"scope": "run-42"}
//	PUT  /api/refresh-interval     {"interval": "30s"}
//	PUT  /api/auto-refresh         {"enabled": false}
//	POST /api/hover                {"task_id": "t1"}
//	POST /api/leave
//	POST /api/select               {"task_id": "t1"}
//	POST /api/events               {"type": "task_created", "scope": "run-42"}
//	GET  /ws                       pushes every published view
//
// Mutating routes answer with the view current after the change.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/taskgraph/pkg/errors"
	"github.com/matzehuels/taskgraph/pkg/events"
	"github.com/matzehuels/taskgraph/pkg/graph"
	"github.com/matzehuels/taskgraph/pkg/reconcile"
	"github.com/matzehuels/taskgraph/pkg/render/nodelink"
)

// Live is the reconciler surface the server drives.
type Live interface {
	Current() graph.View
	Subscribe() (<-chan graph.View, func())
	Refresh(ctx context.Context) error
	SetDirection(ctx context.Context, d graph.Direction) error
	SetScope(ctx context.Context, scope string) error
	SetInterval(ctx context.Context, d time.Duration) error
	SetAutoRefresh(ctx context.Context, on bool) error
	Hover(ctx context.Context, taskID string) error
	Leave(ctx context.Context) error
	Click(ctx context.Context, taskID string) error
}

// Options configures a Server.
type Options struct {
	// Publish injects events into the live feed. Nil disables POST /api/events.
	Publish func(ctx context.Context, e events.Event) error

	// AllowOrigins lists browser origins allowed for CORS and WebSocket. Empty
	// means same-origin only; "*" allows any.
	AllowOrigins []string

	Logger *log.Logger
}

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxBody    = 1 << 16
)

// Server serves the HTTP API.
type Server struct {
	live     Live
	opts     Options
	logger   *log.Logger
	upgrader websocket.Upgrader
	router   chi.Router
}

// New builds the router.
func New(live Live, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{live: live, opts: opts, logger: logger}
	s.upgrader = websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 4096}
	if len(opts.AllowOrigins) > 0 {
		s.upgrader.CheckOrigin = func(r *http.Request) bool { return s.originAllowed(r.Header.Get("Origin")) }
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(s.cors)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/api", func(r chi.Router) {
		r.Get("/view", s.handleView)
		r.Get("/view.svg", s.handleViewSVG)
		r.Post("/refresh", s.handleRefresh)
		r.Put("/direction", s.handleDirection)
		r.Put("/scope", s.handleScope)
		r.Put("/refresh-interval", s.handleInterval)
		r.Put("/auto-refresh", s.handleAutoRefresh)
		r.Post("/hover", s.handleHover)
		r.Post("/leave", s.handleLeave)
		r.Post("/select", s.handleSelect)
		r.Post("/events", s.handleEvent)
	})
	r.Get("/ws", s.handleWS)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleView(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.live.Current())
}

func (s *Server) handleViewSVG(w http.ResponseWriter, r *http.Request) {
	detailed := r.URL.Query().Get("detailed") == "true"
	svg, err := nodelink.RenderSVG(r.Context(), nodelink.ToDOT(s.live.Current(), nodelink.Options{Detailed: detailed}))
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render view"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(svg)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, s.live.Refresh)
}

func (s *Server) handleDirection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Direction string `json:"direction"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	d, err := graph.ParseDirection(req.Direction)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidDirection, err, "invalid direction"))
		return
	}
	s.apply(w, r, func(ctx context.Context) error { return s.live.SetDirection(ctx, d) })
}

func (s *Server) handleScope(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Scope string `json:"scope"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	s.apply(w, r, func(ctx context.Context) error { return s.live.SetScope(ctx, req.Scope) })
}

func (s *Server) handleInterval(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Interval string `json:"interval"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	d, err := time.ParseDuration(req.Interval)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInterval, err, "invalid interval %q", req.Interval))
		return
	}
	s.apply(w, r, func(ctx context.Context) error { return s.live.SetInterval(ctx, d) })
}

func (s *Server) handleAutoRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if req.Enabled == nil {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "enabled is required"))
		return
	}
	s.apply(w, r, func(ctx context.Context) error { return s.live.SetAutoRefresh(ctx, *req.Enabled) })
}

type taskRequest struct {
	TaskID string `json:"task_id"`
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if !s.decodeTask(w, r, &req) {
		return
	}
	s.apply(w, r, func(ctx context.Context) error { return s.live.Hover(ctx, req.TaskID) })
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, s.live.Leave)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if !s.decodeTask(w, r, &req) {
		return
	}
	s.apply(w, r, func(ctx context.Context) error { return s.live.Click(ctx, req.TaskID) })
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	if s.opts.Publish == nil {
		s.writeError(w, errors.New(errors.ErrCodeUnsupported, "event publishing is disabled"))
		return
	}
	var req struct {
		Type   events.Type `json:"type"`
		Scope  string      `json:"scope"`
		TaskID string      `json:"task_id"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if req.Type == "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "type is required"))
		return
	}
	e := events.New(req.Type, req.Scope, req.TaskID)
	if err := s.opts.Publish(r.Context(), e); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeNetwork, err, "publish event"))
		return
	}
	writeJSON(w, http.StatusAccepted, e)
}

// handleWS streams views until the client goes away.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	views, unsubscribe := s.live.Subscribe()
	defer unsubscribe()

	// The read loop only notices the client closing.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	s.logger.Debug("websocket connected", "remote", r.RemoteAddr)

	for {
		select {
		case <-closed:
			s.logger.Debug("websocket closed", "remote", r.RemoteAddr)
			return
		case <-r.Context().Done():
			return
		case v, ok := <-views:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(writeWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(v); err != nil {
				s.logger.Debug("websocket write failed", "err", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) apply(w http.ResponseWriter, r *http.Request, fn func(context.Context) error) {
	if err := fn(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.live.Current())
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return false
	}
	return true
}

func (s *Server) decodeTask(w http.ResponseWriter, r *http.Request, req *taskRequest) bool {
	if !s.decode(w, r, req) {
		return false
	}
	if req.TaskID == "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "task_id is required"))
		return false
	}
	return true
}

type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Retryable bool   `json:"retryable,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorBody{
		Error:     errors.UserMessage(err),
		Code:      string(errors.GetCode(err)),
		Retryable: errors.Retryable(err),
	})
}

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	if stderrors.Is(err, reconcile.ErrStopped) {
		return http.StatusServiceUnavailable
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidDirection, errors.ErrCodeInvalidInterval, errors.ErrCodeInvalidSnapshot:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeNetwork, errors.ErrCodeFetchFailed:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) originAllowed(origin string) bool {
	if origin == "" {
		return true
	}
	return slices.Contains(s.opts.AllowOrigins, "*") || slices.Contains(s.opts.AllowOrigins, origin)
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && len(s.opts.AllowOrigins) > 0 && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
