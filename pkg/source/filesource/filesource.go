// Package filesource reads snapshots from JSON files named {dir}/{scope}.json.
// The empty scope reads {dir}/default.json. Files are re-read on every fetch,
// so editing a file is enough to drive a live dashboard during development.
package filesource

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/taskgraph/pkg/errors"
	"github.com/matzehuels/taskgraph/pkg/graph"
)

// DefaultScope names the file used for the empty scope.
const DefaultScope = "default"

// Source reads snapshot files from a directory.
type Source struct {
	dir string
}

// New returns a Source reading from dir.
func New(dir string) *Source { return &Source{dir: dir} }

// Path returns the file read for scope.
func (s *Source) Path(scope string) (string, error) {
	if scope == "" {
		scope = DefaultScope
	}
	if strings.ContainsAny(scope, `/\`) || scope == "." || scope == ".." {
		return "", errors.New(errors.ErrCodeInvalidInput, "invalid scope %q", scope)
	}
	return filepath.Join(s.dir, scope+".json"), nil
}

// GetGraphSnapshot implements source.Source.
func (s *Source) GetGraphSnapshot(ctx context.Context, scope string) (graph.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return graph.Snapshot{}, err
	}
	path, err := s.Path(scope)
	if err != nil {
		return graph.Snapshot{}, err
	}
	snap, err := graph.ReadSnapshotFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return graph.Snapshot{}, errors.Wrap(errors.ErrCodeNotFound, err, "no snapshot for scope %q", scope)
	}
	if err != nil {
		return graph.Snapshot{}, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "read %s", path)
	}
	if snap.Scope == "" {
		snap.Scope = scope
	}
	if snap.Timestamp.IsZero() {
		if info, err := os.Stat(path); err == nil {
			snap.Timestamp = info.ModTime()
		}
	}
	return snap, nil
}
