package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	tgerrors "github.com/matzehuels/taskgraph/pkg/errors"
	"github.com/matzehuels/taskgraph/pkg/observability"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 10 * time.Second

// Client performs JSON GET requests with retry.
type Client struct {
	http    *http.Client
	headers map[string]string
	backoff Backoff
}

// NewClient creates a Client. Headers are applied to every request; pass nil
// for none. A zero timeout uses DefaultTimeout.
func NewClient(timeout time.Duration, headers map[string]string) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		headers: headers,
		backoff: DefaultBackoff,
	}
}

// WithBackoff overrides the retry policy. Attempts below 2 disables retry.
func (c *Client) WithBackoff(b Backoff) *Client {
	c.backoff = b
	return c
}

// GetJSON fetches rawURL and decodes the JSON body into v, retrying
// transient failures.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any) error {
	return c.backoff.Do(ctx, func() error {
		body, err := c.doRequest(ctx, rawURL)
		if err != nil {
			return err
		}
		defer body.Close()
		if err := json.NewDecoder(body).Decode(v); err != nil {
			return tgerrors.Wrap(tgerrors.ErrCodeInvalidSnapshot, err, "decode response from %s", rawURL)
		}
		return nil
	})
}

func (c *Client) doRequest(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, tgerrors.Wrap(tgerrors.ErrCodeInvalidInput, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	host, path := hostPath(req.URL)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, transportError(ctx, err)
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := CheckStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		var re *RetryableError
		if errors.As(err, &re) {
			re.After = retryAfter(resp.Header)
		}
		return nil, err
	}
	return resp.Body, nil
}

// CheckStatus maps an HTTP status code to nil or a coded error.
func CheckStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return tgerrors.New(tgerrors.ErrCodeNotFound, "not found")
	case code == http.StatusTooManyRequests || code >= 500:
		return &RetryableError{Err: tgerrors.New(tgerrors.ErrCodeNetwork, "status %d", code)}
	default:
		return tgerrors.New(tgerrors.ErrCodeNetwork, "status %d", code)
	}
}

func transportError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		return &RetryableError{Err: tgerrors.Wrap(tgerrors.ErrCodeTimeout, err, "request timed out")}
	}
	return &RetryableError{Err: tgerrors.Wrap(tgerrors.ErrCodeNetwork, err, "request failed")}
}

func hostPath(u *url.URL) (string, string) {
	if u == nil {
		return "", ""
	}
	return u.Host, u.Path
}
