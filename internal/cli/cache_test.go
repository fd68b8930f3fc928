package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/taskgraph/internal/config"
	"github.com/matzehuels/taskgraph/pkg/cache"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join("/tmp/custom-cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestFileCacheDirFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Dir = "/srv/taskgraph/cache"
	if dir, _ := fileCacheDir(&cfg); dir != "/srv/taskgraph/cache" {
		t.Errorf("fileCacheDir = %q", dir)
	}
}

func TestCacheClear(t *testing.T) {
	dir := t.TempDir()
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, k := range []string{"a", "b"} {
		if err := fc.Set(ctx, k, []byte(`{}`), 0); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.Default()
	cfg.Cache.Dir = dir
	c := New(&strings.Builder{}, LogInfo)
	c.cfg = &cfg
	if err := c.runCacheClear(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := fc.Get(ctx, "a"); ok {
		t.Error("entry a should be gone")
	}
}

func TestNewCacheSelection(t *testing.T) {
	c := New(&strings.Builder{}, LogInfo)
	ctx := context.Background()

	nc, err := c.newCache(ctx, config.Cache{Type: config.CacheNone}, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := nc.(cache.NullCache); !ok {
		t.Errorf("none cache = %T", nc)
	}

	fc, err := c.newCache(ctx, config.Cache{Type: config.CacheFile, Dir: t.TempDir()}, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := fc.(cache.NullCache); !ok {
		t.Errorf("--no-cache should win over the file cache, got %T", fc)
	}

	fc, err = c.newCache(ctx, config.Cache{Type: config.CacheFile, Dir: t.TempDir()}, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := fc.(*cache.FileCache); !ok {
		t.Errorf("file cache = %T", fc)
	}
}
