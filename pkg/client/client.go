// Package client is a typed Go client for the marketplace API. Reads are
// cached per operation and parameters, and successful writes drop the cached
// reads they make stale.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Egorka7485/tgkadsf/internal/contract"
	"github.com/Egorka7485/tgkadsf/internal/transport"
)

const DefaultCacheSize = 256

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
	Field   string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("api: %d %s (%s)", e.Status, e.Message, e.Field)
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status of an *APIError, or 0.
func StatusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *lru.Cache[string, []byte]
	notifier   Notifier
	authorize  func(*http.Request)

	mu       sync.Mutex
	watchers map[string][]func()
	// gens counts invalidations per operation key; a read only caches its
	// body if no invalidation of its operation happened while it was in flight.
	gens map[string]uint64
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithNotifier(n Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

// WithBearer sends token as a bearer Authorization header.
func WithBearer(token string) Option {
	return func(c *Client) {
		c.authorize = func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
	}
}

func New(baseURL string, cacheSize int, opts ...Option) (*Client, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, []byte](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      cache,
		notifier:   NopNotifier{},
		watchers:   make(map[string][]func()),
		gens:       make(map[string]uint64),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func cacheKey(op contract.Operation, target string) string {
	return op.Key() + "|" + target
}

// read serves op from the cache or the server and decodes the body into out.
func (c *Client) read(ctx context.Context, op contract.Operation, params map[string]any, query url.Values, out any) error {
	target := op.URL(params, query)
	key := cacheKey(op, target)

	body, ok := c.cache.Get(key)
	if !ok {
		c.mu.Lock()
		gen := c.gens[op.Key()]
		c.mu.Unlock()

		var err error
		body, err = c.do(ctx, op, target, nil)
		if err != nil {
			return err
		}

		c.mu.Lock()
		if c.gens[op.Key()] == gen {
			c.cache.Add(key, body)
		}
		c.mu.Unlock()
	}
	return json.Unmarshal(body, out)
}

// write sends a mutation; on success the listed reads are invalidated.
func (c *Client) write(ctx context.Context, op contract.Operation, params map[string]any, in, out any, stale ...contract.Operation) error {
	body, err := c.do(ctx, op, op.URL(params, nil), in)
	if err != nil {
		return err
	}
	c.Invalidate(stale...)
	if out == nil || len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func (c *Client) do(ctx context.Context, op contract.Operation, target string, in any) ([]byte, error) {
	var rd io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", op.Key(), err)
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, op.Method, c.baseURL+target, rd)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authorize != nil {
		c.authorize(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do %s: %w", op.Key(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", op.Key(), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		ae := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var eb transport.ErrorBody
		if json.Unmarshal(body, &eb) == nil && eb.Message != "" {
			ae.Message, ae.Field = eb.Message, eb.Field
		}
		return nil, ae
	}
	return body, nil
}

// Invalidate drops every cached read of the given operations and refreshes
// the live queries watching them in the background.
func (c *Client) Invalidate(ops ...contract.Operation) {
	if len(ops) == 0 {
		return
	}

	c.mu.Lock()
	var refresh []func()
	for _, op := range ops {
		c.gens[op.Key()]++
		refresh = append(refresh, c.watchers[op.Key()]...)
	}
	for _, key := range c.cache.Keys() {
		for _, op := range ops {
			if strings.HasPrefix(key, op.Key()+"|") {
				c.cache.Remove(key)
				break
			}
		}
	}
	c.mu.Unlock()
	for _, f := range refresh {
		go f()
	}
}

func (c *Client) watch(op contract.Operation, f func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watchers[op.Key()] = append(c.watchers[op.Key()], f)
}
