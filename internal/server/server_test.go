package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matzehuels/taskgraph/pkg/errors"
	"github.com/matzehuels/taskgraph/pkg/events"
	"github.com/matzehuels/taskgraph/pkg/graph"
	"github.com/matzehuels/taskgraph/pkg/reconcile"
)

type fakeLive struct {
	mu    sync.Mutex
	view  graph.View
	calls []string
	err   error
	subs  chan graph.View
}

func newFakeLive() *fakeLive {
	return &fakeLive{
		view: graph.View{
			Scope:     "run-1",
			Direction: graph.TopDown,
			Nodes:     []graph.ViewNode{{ID: "A", Bucket: "done"}, {ID: "B", Bucket: "pending", Rank: 1}},
			Edges:     []graph.ViewEdge{{ID: "e1", Source: "A", Target: "B"}},
			Revision:  1,

			RefreshInterval: 10 * time.Second,
		},
		subs: make(chan graph.View, 4),
	}
}

func (f *fakeLive) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	f.view.Revision++
	return f.err
}

func (f *fakeLive) lastCall() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return ""
	}
	return f.calls[len(f.calls)-1]
}

func (f *fakeLive) Current() graph.View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.view
}

func (f *fakeLive) Subscribe() (<-chan graph.View, func()) {
	f.subs <- f.Current()
	return f.subs, func() {}
}

func (f *fakeLive) Refresh(context.Context) error { return f.record("refresh") }
func (f *fakeLive) SetDirection(_ context.Context, d graph.Direction) error {
	return f.record("direction " + string(d))
}
func (f *fakeLive) SetScope(_ context.Context, s string) error { return f.record("scope " + s) }
func (f *fakeLive) SetInterval(_ context.Context, d time.Duration) error {
	if !graph.ValidRefreshInterval(d) {
		return errors.New(errors.ErrCodeInvalidInterval, "bad interval")
	}
	f.mu.Lock()
	f.view.RefreshInterval = d
	f.mu.Unlock()
	return f.record("interval " + d.String())
}
func (f *fakeLive) SetAutoRefresh(_ context.Context, on bool) error {
	if on {
		return f.record("auto on")
	}
	return f.record("auto off")
}
func (f *fakeLive) Hover(_ context.Context, id string) error {
	if id == "missing" {
		return errors.New(errors.ErrCodeNotFound, "task %q", id)
	}
	return f.record("hover " + id)
}
func (f *fakeLive) Leave(context.Context) error            { return f.record("leave") }
func (f *fakeLive) Click(_ context.Context, id string) error { return f.record("click " + id) }

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestView(t *testing.T) {
	live := newFakeLive()
	s := New(live, Options{})

	rec := do(t, s, http.MethodGet, "/api/view", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	v, err := graph.UnmarshalView(rec.Body.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if v.Scope != "run-1" || len(v.Nodes) != 2 {
		t.Errorf("view = %+v", v)
	}
	if !strings.Contains(rec.Body.String(), `"refresh_interval":"10s"`) {
		t.Errorf("refresh_interval should use the control's duration format: %s", rec.Body)
	}

	if rec := do(t, s, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz = %d", rec.Code)
	}
}

func TestControls(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
		wantCall string
	}{
		{"refresh", http.MethodPost, "/api/refresh", "", http.StatusOK, "refresh"},
		{"direction", http.MethodPut, "/api/direction", `{"direction":"LR"}`, http.StatusOK, "direction left-right"},
		{"bad direction", http.MethodPut, "/api/direction", `{"direction":"up"}`, http.StatusBadRequest, ""},
		{"scope", http.MethodPut, "/api/scope", `{"scope":"run-2"}`, http.StatusOK, "scope run-2"},
		{"interval", http.MethodPut, "/api/refresh-interval", `{"interval":"30s"}`, http.StatusOK, "interval 30s"},
		{"interval not allowed", http.MethodPut, "/api/refresh-interval", `{"interval":"7s"}`, http.StatusBadRequest, ""},
		{"interval unparsable", http.MethodPut, "/api/refresh-interval", `{"interval":"soon"}`, http.StatusBadRequest, ""},
		{"auto off", http.MethodPut, "/api/auto-refresh", `{"enabled":false}`, http.StatusOK, "auto off"},
		{"auto missing field", http.MethodPut, "/api/auto-refresh", `{}`, http.StatusBadRequest, ""},
		{"hover", http.MethodPost, "/api/hover", `{"task_id":"A"}`, http.StatusOK, "hover A"},
		{"hover unknown", http.MethodPost, "/api/hover", `{"task_id":"missing"}`, http.StatusNotFound, ""},
		{"hover no id", http.MethodPost, "/api/hover", `{}`, http.StatusBadRequest, ""},
		{"leave", http.MethodPost, "/api/leave", "", http.StatusOK, "leave"},
		{"select", http.MethodPost, "/api/select", `{"task_id":"B"}`, http.StatusOK, "click B"},
		{"unknown field", http.MethodPost, "/api/select", `{"task":"B"}`, http.StatusBadRequest, ""},
		{"wrong method", http.MethodGet, "/api/refresh", "", http.StatusMethodNotAllowed, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			live := newFakeLive()
			rec := do(t, New(live, Options{}), tt.method, tt.path, tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantCode, rec.Body)
			}
			if got := live.lastCall(); got != tt.wantCall {
				t.Errorf("call = %q, want %q", got, tt.wantCall)
			}
			if tt.wantCode == http.StatusOK {
				var v graph.View
				if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil || v.Revision != 2 {
					t.Errorf("should answer with the updated view, got revision %d err %v", v.Revision, err)
				}
				if tt.name == "interval" && v.RefreshInterval != 30*time.Second {
					t.Errorf("RefreshInterval = %s, want 30s", v.RefreshInterval)
				}
			}
		})
	}
}

func TestErrorBody(t *testing.T) {
	rec := do(t, New(newFakeLive(), Options{}), http.MethodPost, "/api/hover", `{"task_id":"missing"}`)
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Code != string(errors.ErrCodeNotFound) || body.Error == "" || body.Retryable {
		t.Errorf("body = %+v", body)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeInvalidInterval, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeNotFound, "x"), http.StatusNotFound},
		{errors.New(errors.ErrCodeUnsupported, "x"), http.StatusNotImplemented},
		{errors.New(errors.ErrCodeTimeout, "x"), http.StatusGatewayTimeout},
		{errors.New(errors.ErrCodeFetchFailed, "x"), http.StatusBadGateway},
		{reconcile.ErrStopped, http.StatusServiceUnavailable},
		{context.Canceled, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestEvents(t *testing.T) {
	if rec := do(t, New(newFakeLive(), Options{}), http.MethodPost, "/api/events", `{"type":"task_created"}`); rec.Code != http.StatusNotImplemented {
		t.Errorf("without a publisher status = %d, want 501", rec.Code)
	}

	bus := events.NewBus(0)
	defer bus.Close()
	ch, err := bus.Subscribe(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	publish := func(_ context.Context, e events.Event) error {
		bus.Publish(e)
		return nil
	}
	s := New(newFakeLive(), Options{Publish: publish})

	rec := do(t, s, http.MethodPost, "/api/events", `{"type":"task_created","scope":"run-1","task_id":"C"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	select {
	case e := <-ch:
		if e.Type != events.TaskCreated || e.Scope != "run-1" || e.TaskID != "C" || e.ID == "" {
			t.Errorf("event = %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	if rec := do(t, s, http.MethodPost, "/api/events", `{"scope":"run-1"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("event without type: status = %d", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	s := New(newFakeLive(), Options{AllowOrigins: []string{"https://dash.example.com"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/view", nil)
	req.Header.Set("Origin", "https://dash.example.com")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "https://dash.example.com" {
		t.Errorf("preflight = %d %v", rec.Code, rec.Header())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/view", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("unlisted origin should get no CORS headers")
	}
}

func TestWebSocket(t *testing.T) {
	live := newFakeLive()
	srv := httptest.NewServer(New(live, Options{}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var v graph.View
	if err := conn.ReadJSON(&v); err != nil {
		t.Fatal(err)
	}
	if v.Scope != "run-1" {
		t.Errorf("first message = %+v", v)
	}

	next := live.Current()
	next.Revision = 9
	live.subs <- next
	if err := conn.ReadJSON(&v); err != nil {
		t.Fatal(err)
	}
	if v.Revision != 9 {
		t.Errorf("revision = %d, want 9", v.Revision)
	}
}
