// Package etherpad is the gateway to the remote collaborative-editing
// service. It validates calls against a static method registry, deduplicates
// concurrently identical in-flight calls, and surfaces transport and
// application failures uniformly.
package etherpad

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"bbb-pads/errors"
)

// Params carries the query parameters of one remote call.
type Params map[string]any

// Data is the payload of a successful remote response.
type Data map[string]any

// String reads a string field out of the response payload. Missing or
// non-string fields read as empty.
func (d Data) String(key string) string {
	value, _ := d[key].(string)
	return value
}

type Config struct {
	Scheme  string
	Host    string
	Port    int
	APIKey  string
	Version string
}

type Client struct {
	base    string
	apikey  string
	http    *http.Client
	log     *slog.Logger
	locks   inflight
	metrics metrics
}

func NewClient(cfg Config, log *slog.Logger) *Client {
	return &Client{
		base:   fmt.Sprintf("%s://%s:%d/api/%s", cfg.Scheme, cfg.Host, cfg.Port, cfg.Version),
		apikey: cfg.APIKey,
		http:   &http.Client{Timeout: 30 * time.Second},
		log:    log,
		locks:  inflight{ids: make(map[string]struct{})},
		metrics: metrics{
			calls:    make(map[string]uint64),
			failures: make(map[string]uint64),
		},
	}
}

type response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    Data   `json:"data"`
}

// Call performs one remote operation. A call whose fingerprint is already in
// flight is rejected immediately with ErrLocked; there is no queuing. The
// fingerprint lock is released on every path. No retries happen here.
func (c *Client) Call(ctx context.Context, method string, params Params) (Data, error) {
	if err := validate(method, params); err != nil {
		c.log.Error("gateway call rejected", "method", method, "error", err)
		return nil, err
	}

	id := fingerprint(method, params)
	if !c.locks.acquire(id) {
		c.log.Warn("gateway call already in flight", "method", method, "id", id)
		return nil, fmt.Errorf("%w: %s", errors.ErrLocked, method)
	}
	defer c.locks.release(id)

	c.metrics.call(method)

	data, err := c.request(ctx, method, params)
	if err != nil {
		c.metrics.failure(method)
		c.log.Error("gateway call failed", "method", method, "error", err)
		return nil, err
	}

	return data, nil
}

func (c *Client) request(ctx context.Context, method string, params Params) (Data, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(method, params), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrRemote, err)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrRemote, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d", errors.ErrRemote, method, res.StatusCode)
	}

	var body response
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrRemote, err)
	}

	if body.Code != 0 {
		return nil, fmt.Errorf("%w: %s failed with code %d: %s", errors.ErrRemote, method, body.Code, body.Message)
	}

	return body.Data, nil
}

func (c *Client) buildURL(method string, params Params) string {
	query := url.Values{}
	query.Set("apikey", c.apikey)
	for key, value := range params {
		query.Set(key, fmt.Sprint(value))
	}

	return fmt.Sprintf("%s/%s?%s", c.base, method, query.Encode())
}

// Stats reports total calls and failures per method, for the monitor.
func (c *Client) Stats() (calls, failures map[string]uint64) {
	return c.metrics.snapshot()
}

// inflight is the process-global fingerprint lock table. Entries are only
// appended and removed, never waited on.
type inflight struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func (l *inflight) acquire(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.ids[id]; ok {
		return false
	}
	l.ids[id] = struct{}{}

	return true
}

func (l *inflight) release(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.ids, id)
}

type metrics struct {
	mu       sync.Mutex
	calls    map[string]uint64
	failures map[string]uint64
}

func (m *metrics) call(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls[method]++
}

func (m *metrics) failure(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failures[method]++
}

func (m *metrics) snapshot() (calls, failures map[string]uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls = make(map[string]uint64, len(m.calls))
	failures = make(map[string]uint64, len(m.failures))
	for method, count := range m.calls {
		calls[method] = count
	}
	for method, count := range m.failures {
		failures[method] = count
	}

	return calls, failures
}
