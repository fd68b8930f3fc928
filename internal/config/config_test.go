package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/taskgraph/pkg/errors"
	"github.com/matzehuels/taskgraph/pkg/graph"
)

func TestDefault(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if c.Direction() != graph.TopDown {
		t.Errorf("Direction = %q", c.Direction())
	}
	if c.Refresh.Interval.Duration != graph.DefaultRefreshInterval || !c.Refresh.AutoRefresh() {
		t.Errorf("refresh = %+v", c.Refresh)
	}
	if c.Source.Type != SourceFile || c.Source.Dir != "." {
		t.Errorf("source = %+v", c.Source)
	}
	if c.Events.Type != EventsBus || c.Cache.Type != CacheFile || c.Server.Addr == "" {
		t.Errorf("defaults not applied: %+v", c)
	}
}

func TestSetDefaultsIdempotent(t *testing.T) {
	c := Default()
	before := c
	c.SetDefaults()
	if c.Source != before.Source || c.Refresh.Interval != before.Refresh.Interval || c.Server.Addr != before.Server.Addr {
		t.Errorf("second SetDefaults changed config: %+v vs %+v", before, c)
	}
}

func TestParse(t *testing.T) {
	c, err := Parse(`
[refresh]
scope = "run-42"
direction = "LR"
interval = "30s"
auto = false
fetch_timeout = "5s"

[layout]
node_width = 200
node_sep = 32
margin = -1

[source]
url = "https://orchestrator.internal/api"
token = "secret"

[events]
type = "redis"
redis_addr = "localhost:6379"

[cache]
type = "none"

[server]
addr = ":9000"
allow_origins = ["https://dash.example.com"]
`)
	if err != nil {
		t.Fatal(err)
	}
	if c.Refresh.Scope != "run-42" || c.Direction() != graph.LeftRight {
		t.Errorf("refresh = %+v", c.Refresh)
	}
	if c.Refresh.Interval.Duration != 30*time.Second || c.Refresh.AutoRefresh() {
		t.Errorf("interval/auto = %s %v", c.Refresh.Interval, c.Refresh.AutoRefresh())
	}
	if c.Refresh.FetchTimeout.Duration != 5*time.Second {
		t.Errorf("fetch_timeout = %s", c.Refresh.FetchTimeout)
	}
	if c.Layout.NodeWidth != 200 || c.Layout.NodeSep != 32 || c.Layout.Margin != -1 {
		t.Errorf("layout = %+v", c.Layout)
	}
	if c.Source.Type != SourceHTTP {
		t.Errorf("source type should be inferred from url, got %q", c.Source.Type)
	}
	if c.Events.Type != EventsRedis || c.Events.Channel != "taskgraph:events" {
		t.Errorf("events = %+v", c.Events)
	}
	if c.Server.Addr != ":9000" || len(c.Server.AllowOrigins) != 1 {
		t.Errorf("server = %+v", c.Server)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		toml string
		code errors.Code
	}{
		{"bad interval", "[refresh]\ninterval = \"7s\"", errors.ErrCodeInvalidInterval},
		{"bad direction", "[refresh]\ndirection = \"diagonal\"", errors.ErrCodeInvalidDirection},
		{"unknown key", "[refresh]\nintervall = \"5s\"", errors.ErrCodeInvalidInput},
		{"http without url", "[source]\ntype = \"http\"", errors.ErrCodeInvalidInput},
		{"mongo without database", "[source]\ntype = \"mongo\"\nmongo_uri = \"mongodb://x\"", errors.ErrCodeInvalidInput},
		{"bad source type", "[source]\ntype = \"ftp\"", errors.ErrCodeInvalidInput},
		{"redis feed without addr", "[events]\ntype = \"redis\"", errors.ErrCodeInvalidInput},
		{"bad cache type", "[cache]\ntype = \"memcached\"", errors.ErrCodeInvalidInput},
		{"negative size", "[layout]\nnode_width = -5", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.toml)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}

	if _, err := Parse("[refresh\n"); err == nil {
		t.Error("malformed TOML should fail")
	}
	if _, err := Parse("[refresh]\ninterval = \"soon\""); err == nil {
		t.Error("bad duration should fail")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[source]\ndir = \"/var/snapshots\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Path != path || c.Source.Dir != "/var/snapshots" {
		t.Errorf("loaded %+v", c)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("missing explicit file should fail")
	}
}

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if c.Path != "" || c.Source.Type != SourceFile {
		t.Errorf("expected defaults, got %+v", c)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got, want := DefaultPath(), filepath.Join("/tmp/xdg", "taskgraph", "config.toml"); got != want {
		t.Errorf("DefaultPath = %q, want %q", got, want)
	}
}
