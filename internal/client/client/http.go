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

	"github.com/google/uuid"

	"github.com/dmitrijs2005/storefront/internal/client/tokens"
	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/logging"
)

const defaultTimeout = 10 * time.Second

// HTTPClient talks to the storefront REST backend.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	tokens  tokens.Store
	policy  Policy
	timeout time.Duration
	log     logging.Logger
	newID   func() string

	mu    sync.RWMutex
	hooks SessionHooks
}

type Option func(*HTTPClient)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

func WithPolicy(p Policy) Option {
	return func(c *HTTPClient) { c.policy = p }
}

// WithTimeout bounds every request. Zero keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// WithRequestIDFunc replaces the X-Request-ID generator.
func WithRequestIDFunc(fn func() string) Option {
	return func(c *HTTPClient) { c.newID = fn }
}

// NewHTTPClient builds a client for the API rooted at baseURL, reading the
// bearer token from ts on every request.
func NewHTTPClient(baseURL string, ts tokens.Store, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}

	c := &HTTPClient{
		baseURL: u,
		http:    http.DefaultClient,
		tokens:  ts,
		policy:  PolicyLogout,
		timeout: defaultTimeout,
		log:     logging.Nop(),
		newID:   uuid.NewString,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// SetSessionHooks installs the 401 handlers. The session owner is built on
// top of the client, so the hooks are attached after construction.
func (c *HTTPClient) SetSessionHooks(h SessionHooks) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = h
}

func (c *HTTPClient) Policy() Policy { return c.policy }

func (c *HTTPClient) sessionHooks() SessionHooks {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hooks
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	// public requests carry no token and never trigger the 401 policy
	public bool
}

func (c *HTTPClient) do(ctx context.Context, r request, out any) error {
	if r.public {
		_, err := c.roundTrip(ctx, r, "", out)
		return err
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	status, err := c.roundTrip(ctx, r, token, out)
	if status != http.StatusUnauthorized || token == "" || hooksSkipped(ctx) {
		return err
	}

	hooks := c.sessionHooks()
	if hooks == nil {
		return err
	}

	if c.policy == PolicyRefresh {
		if hooks.Refresh(ctx) {
			fresh, terr := c.accessToken(ctx)
			if terr != nil {
				return terr
			}
			c.log.Debug(ctx, "retrying after token refresh", "method", r.method, "path", r.path)
			status, err = c.roundTrip(ctx, r, fresh, out)
			if status != http.StatusUnauthorized {
				return err
			}
		}
	}

	c.log.Warn(ctx, "session expired", "method", r.method, "path", r.path, "policy", string(c.policy))
	hooks.Expire(ctx)
	return err
}

func (c *HTTPClient) accessToken(ctx context.Context) (string, error) {
	t, err := c.tokens.Load(ctx)
	if errors.Is(err, tokens.ErrNoTokens) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrLocalDataNotAvailable, err)
	}
	return t.AccessToken, nil
}

// roundTrip performs one HTTP exchange and returns the response status (0
// when no response was received).
func (c *HTTPClient) roundTrip(ctx context.Context, r request, token string, out any) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return 0, fmt.Errorf("encode %s %s: %w", r.method, r.path, err)
		}
		body = bytes.NewReader(b)
	}

	u := c.baseURL.JoinPath(r.path)
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return 0, fmt.Errorf("build %s %s: %w", r.method, r.path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	reqID := c.newID()
	req.Header.Set(common.RequestIDHeaderName, reqID)
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug(ctx, "request failed", "method", r.method, "path", r.path, "request_id", reqID, "err", err)
		if errors.Is(err, context.Canceled) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %s %s: %v", ErrUnavailable, r.method, r.path, err)
	}
	defer resp.Body.Close()

	c.log.Debug(ctx, "request done",
		"method", r.method, "path", r.path, "status", resp.StatusCode,
		"request_id", reqID, "elapsed", time.Since(start))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("%w: read %s %s: %v", ErrUnavailable, r.method, r.path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, &APIError{StatusCode: resp.StatusCode, Detail: decodeDetail(raw)}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode %s %s: %w", r.method, r.path, err)
	}
	return resp.StatusCode, nil
}

// decodeDetail extracts the human-readable part of an error body. The
// backend sends {"detail": "..."} or, for validation failures, a list of
// {"msg": "..."} objects under detail.
func decodeDetail(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return strings.TrimSpace(string(raw))
	}

	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return string(body.Detail)
}
