// Package fetch talks to the reporting API. Every endpoint returns loose
// JSON; this package only gets the tree across the wire and decides whether
// the response is usable. Interpreting the tree is the callers' job.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Logger matches the subset of *log.Logger the client needs.
type Logger interface {
	Printf(format string, args ...any)
}

// Fetcher is the read side of the client. Aggregators depend on this so
// tests can substitute canned trees.
type Fetcher interface {
	JSON(ctx context.Context, path string, params map[string]string) (any, error)
}

// APIError is a response the server delivered but flagged as failed. The
// reporting backend signals errors in-band with "error" or "detail" keys on
// an otherwise-200 body.
type APIError struct {
	Path    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error from %s: %s", e.Path, e.Message)
}

// Client fetches JSON trees from one API base URL.
type Client struct {
	baseURL  string
	http     *http.Client
	logger   Logger
	cacheDir string
}

// Option configures a Client.
type Option func(*Client)

// WithLogger attaches a logger for per-request diagnostics.
func WithLogger(l Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithCacheDir enables a read-through response cache keyed by endpoint and
// parameters. Useful for re-running a report offline against the same day's
// data.
func WithCacheDir(dir string) Option {
	return func(c *Client) { c.cacheDir = dir }
}

// New builds a Client for baseURL. timeout bounds each request.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}

// JSON fetches path with params and decodes the body into a generic tree.
// Transport failures, non-200 statuses, undecodable bodies and in-band
// error responses all return a nil tree with an error; callers treat any of
// them as "no data for this endpoint".
func (c *Client) JSON(ctx context.Context, path string, params map[string]string) (any, error) {
	if body, ok := c.cachedBody(path, params); ok {
		return c.decode(path, body)
	}

	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		q := url.Values{}
		for k, v := range params {
			q.Set(k, v)
		}
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", path, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: read body: %w", path, err)
	}
	c.logf("fetched %s (%d bytes, %s)", path, len(body), time.Since(start).Round(time.Millisecond))

	tree, err := c.decode(path, body)
	if err != nil {
		return nil, err
	}
	c.storeBody(path, params, body)
	return tree, nil
}

func (c *Client) decode(path string, body []byte) (any, error) {
	var tree any
	if err := json.Unmarshal(body, &tree); err != nil {
		return nil, fmt.Errorf("fetch %s: decode: %w", path, err)
	}
	if m, ok := tree.(map[string]any); ok {
		for _, key := range []string{"error", "detail"} {
			if msg, present := m[key]; present {
				return nil, &APIError{Path: path, Message: fmt.Sprint(msg)}
			}
		}
	}
	return tree, nil
}

func (c *Client) cacheKey(path string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	h := sha256.New()
	io.WriteString(h, path)
	for _, k := range keys {
		fmt.Fprintf(h, "|%s=%s", k, params[k])
	}
	return hex.EncodeToString(h.Sum(nil))[:16] + ".json"
}

func (c *Client) cachedBody(path string, params map[string]string) ([]byte, bool) {
	if c.cacheDir == "" {
		return nil, false
	}
	body, err := os.ReadFile(filepath.Join(c.cacheDir, c.cacheKey(path, params)))
	if err != nil {
		return nil, false
	}
	c.logf("cache hit for %s", path)
	return body, true
}

func (c *Client) storeBody(path string, params map[string]string, body []byte) {
	if c.cacheDir == "" {
		return
	}
	name := filepath.Join(c.cacheDir, c.cacheKey(path, params))
	tmp := name + ".tmp"
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		c.logf("cache write for %s failed: %v", path, err)
		return
	}
	if err := os.Rename(tmp, name); err != nil {
		c.logf("cache rename for %s failed: %v", path, err)
	}
}
