// Package config loads the taskgraph TOML configuration file.
//
// Every section is optional. Load fills in defaults and validates the
// result; CLI flags are applied on top by the caller.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/taskgraph/pkg/errors"
	"github.com/matzehuels/taskgraph/pkg/graph"
	"github.com/matzehuels/taskgraph/pkg/layout"
)

const appName = "taskgraph"

// Source kinds.
const (
	SourceHTTP  = "http"
	SourceFile  = "file"
	SourceMongo = "mongo"
)

// Event feed kinds.
const (
	EventsNone  = "none"
	EventsBus   = "bus"
	EventsRedis = "redis"
)

// Cache kinds.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Duration is a time.Duration written as a Go duration string ("10s").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the whole configuration file.
type Config struct {
	Refresh Refresh `toml:"refresh"`
	Layout  Layout  `toml:"layout"`
	Source  Source  `toml:"source"`
	Events  Events  `toml:"events"`
	Cache   Cache   `toml:"cache"`
	Server  Server  `toml:"server"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

// Refresh controls the live reconciler.
type Refresh struct {
	Scope        string   `toml:"scope"`
	Direction    string   `toml:"direction"`
	Interval     Duration `toml:"interval"`
	Auto         *bool    `toml:"auto"`
	FetchTimeout Duration `toml:"fetch_timeout"`
}

// AutoRefresh reports the auto setting, true when unset.
func (r Refresh) AutoRefresh() bool { return r.Auto == nil || *r.Auto }

// Layout sets node sizes and spacing.
type Layout struct {
	NodeWidth  float64 `toml:"node_width"`
	NodeHeight float64 `toml:"node_height"`
	Passes     int     `toml:"passes"`
	layout.Spacing
}

// Source selects where snapshots come from.
type Source struct {
	Type    string   `toml:"type"`
	URL     string   `toml:"url"`
	Token   string   `toml:"token"`
	Path    string   `toml:"path"`
	Timeout Duration `toml:"timeout"`

	Dir string `toml:"dir"`

	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Events selects the live event feed.
type Events struct {
	Type      string `toml:"type"`
	RedisAddr string `toml:"redis_addr"`
	Channel   string `toml:"channel"`
}

// Cache selects the layout cache.
type Cache struct {
	Type      string   `toml:"type"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	RedisDB   int      `toml:"redis_db"`
	TTL       Duration `toml:"ttl"`
}

// Server configures `taskgraph serve`.
type Server struct {
	Addr         string   `toml:"addr"`
	AllowOrigins []string `toml:"allow_origins"`
}

// Default returns a config with every default applied.
func Default() Config {
	var c Config
	c.SetDefaults()
	return c
}

// DefaultPath returns ~/.config/taskgraph/config.toml, honoring
// XDG_CONFIG_HOME.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", appName, "config.toml")
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// Load reads path, or the default path when empty. A missing default file
// is not an error and yields the defaults; a missing explicit file is.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	path = expandHome(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	cfg, err := Parse(string(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes TOML text, rejecting unknown keys, then applies defaults
// and validates.
func Parse(data string) (Config, error) {
	var cfg Config
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidInput, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults fills in zero values. It is idempotent.
func (c *Config) SetDefaults() {
	if c.Refresh.Direction == "" {
		c.Refresh.Direction = string(graph.TopDown)
	}
	if c.Refresh.Interval.Duration == 0 {
		c.Refresh.Interval.Duration = graph.DefaultRefreshInterval
	}
	if c.Refresh.FetchTimeout.Duration == 0 {
		c.Refresh.FetchTimeout.Duration = 15 * time.Second
	}

	if c.Source.Type == "" {
		switch {
		case c.Source.URL != "":
			c.Source.Type = SourceHTTP
		case c.Source.MongoURI != "":
			c.Source.Type = SourceMongo
		default:
			c.Source.Type = SourceFile
		}
	}
	if c.Source.Type == SourceFile && c.Source.Dir == "" {
		c.Source.Dir = "."
	}

	if c.Events.Type == "" {
		c.Events.Type = EventsBus
	}
	if c.Events.Channel == "" {
		c.Events.Channel = "taskgraph:events"
	}

	if c.Cache.Type == "" {
		c.Cache.Type = CacheFile
	}
	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL.Duration = 10 * time.Minute
	}

	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:8080"
	}
}

// Validate checks enumerations and required fields.
func (c *Config) Validate() error {
	if _, err := graph.ParseDirection(c.Refresh.Direction); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDirection, err, "refresh.direction")
	}
	if !graph.ValidRefreshInterval(c.Refresh.Interval.Duration) {
		return errors.New(errors.ErrCodeInvalidInterval, "refresh.interval %s is not one of %v", c.Refresh.Interval.Duration, graph.RefreshIntervals)
	}
	if c.Refresh.FetchTimeout.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "refresh.fetch_timeout must not be negative")
	}

	if c.Layout.NodeWidth < 0 || c.Layout.NodeHeight < 0 || c.Layout.NodeSep < 0 || c.Layout.RankSep < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "layout sizes must not be negative")
	}
	if c.Layout.Passes < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "layout.passes must not be negative")
	}

	switch c.Source.Type {
	case SourceHTTP:
		if c.Source.URL == "" {
			return errors.New(errors.ErrCodeInvalidInput, "source.url is required for the http source")
		}
	case SourceFile:
	case SourceMongo:
		if c.Source.MongoURI == "" || c.Source.Database == "" {
			return errors.New(errors.ErrCodeInvalidInput, "source.mongo_uri and source.database are required for the mongo source")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "source.type %q must be one of: %s", c.Source.Type, strings.Join([]string{SourceHTTP, SourceFile, SourceMongo}, ", "))
	}

	if !slices.Contains([]string{EventsNone, EventsBus, EventsRedis}, c.Events.Type) {
		return errors.New(errors.ErrCodeInvalidInput, "events.type %q must be one of: none, bus, redis", c.Events.Type)
	}
	if c.Events.Type == EventsRedis && c.Events.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "events.redis_addr is required for the redis feed")
	}

	if !slices.Contains([]string{CacheFile, CacheRedis, CacheNone}, c.Cache.Type) {
		return errors.New(errors.ErrCodeInvalidInput, "cache.type %q must be one of: file, redis, none", c.Cache.Type)
	}
	if c.Cache.Type == CacheRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "cache.redis_addr is required for the redis cache")
	}
	return nil
}

// Direction returns the parsed refresh direction. Call after Validate.
func (c *Config) Direction() graph.Direction {
	d, _ := graph.ParseDirection(c.Refresh.Direction)
	return d
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return filepath.Clean(path)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Clean(path)
	}
	rest := strings.TrimLeft(strings.TrimPrefix(path, "~"), `/\`)
	return filepath.Join(home, rest)
}
