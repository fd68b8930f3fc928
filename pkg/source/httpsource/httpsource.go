// Package httpsource fetches snapshots from the orchestrator REST API with
// GET {base}/graph?scope={scope}.
package httpsource

import (
	"context"
	"net/url"
	"time"

	"github.com/matzehuels/taskgraph/pkg/buildinfo"
	"github.com/matzehuels/taskgraph/pkg/errors"
	"github.com/matzehuels/taskgraph/pkg/graph"
	"github.com/matzehuels/taskgraph/pkg/httputil"
)

// Options configures a Source.
type Options struct {
	Token   string        // Bearer token, optional
	Timeout time.Duration // Per request; zero uses httputil.DefaultTimeout
	Path    string        // Endpoint path, default "/graph"
}

// Source is a REST snapshot source.
type Source struct {
	base   *url.URL
	path   string
	client *httputil.Client
}

// New validates baseURL and returns a Source.
func New(baseURL string, opts Options) (*Source, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid base URL %q", baseURL)
	}
	headers := map[string]string{"User-Agent": buildinfo.UserAgent()}
	if opts.Token != "" {
		headers["Authorization"] = "Bearer " + opts.Token
	}
	path := opts.Path
	if path == "" {
		path = "/graph"
	}
	return &Source{
		base:   u,
		path:   path,
		client: httputil.NewClient(opts.Timeout, headers),
	}, nil
}

// Endpoint returns the URL requested for scope.
func (s *Source) Endpoint(scope string) string {
	u := s.base.JoinPath(s.path)
	if scope != "" {
		q := u.Query()
		q.Set("scope", scope)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// GetGraphSnapshot fetches the snapshot for scope. A response without a
// timestamp is stamped with the receive time.
func (s *Source) GetGraphSnapshot(ctx context.Context, scope string) (graph.Snapshot, error) {
	var snap graph.Snapshot
	if err := s.client.GetJSON(ctx, s.Endpoint(scope), &snap); err != nil {
		return graph.Snapshot{}, err
	}
	if snap.Scope == "" {
		snap.Scope = scope
	}
	if snap.Timestamp.IsZero() {
		snap.Timestamp = time.Now()
	}
	return snap, nil
}
