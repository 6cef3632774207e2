// Package backend is the REST client for the upstream API that owns all
// durable state. Every request carries the operator's bearer token when one
// is held; a 401 from any endpoint fires the auth-expired hook before the
// error reaches the caller.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// TokenSource yields the bearer token for an outbound request, empty when
// the session is unauthenticated.
type TokenSource func(ctx context.Context) string

// AuthExpiredHook observes 401 responses.
type AuthExpiredHook func(ctx context.Context)

// Client talks to the upstream API.
type Client struct {
	base          string
	http          *http.Client
	logger        *slog.Logger
	token         TokenSource
	onAuthExpired AuthExpiredHook
	payments      singleflight.Group
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger attaches a logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTokenSource wires the session gate's token into outbound requests.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.token = ts }
}

// WithAuthExpiredHook wires the global 401 interceptor.
func WithAuthExpiredHook(h AuthExpiredHook) Option {
	return func(c *Client) { c.onAuthExpired = h }
}

// New constructs a Client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base:   strings.TrimRight(baseURL, "/"),
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: slog.Default(),
		token:  func(context.Context) string { return "" },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("backend: encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("backend: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token := c.token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// do performs a JSON round trip and classifies failures. out may be nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return &Error{Kind: KindNetwork, Err: err}
	}
	res, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Err: err}
	}
	defer func() { _ = res.Body.Close() }()

	if err := c.checkStatus(ctx, res); err != nil {
		return err
	}
	if out == nil || res.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return &Error{Kind: KindRemote, Status: res.StatusCode, Message: "respuesta inesperada del servidor", Err: err}
	}
	return nil
}

// download performs a binary round trip (invoice documents).
func (c *Client) download(ctx context.Context, path string) ([]byte, string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, "", &Error{Kind: KindNetwork, Err: err}
	}
	req.Header.Set("Accept", "application/pdf")
	res, err := c.http.Do(req)
	if err != nil {
		return nil, "", &Error{Kind: KindNetwork, Err: err}
	}
	defer func() { _ = res.Body.Close() }()

	if err := c.checkStatus(ctx, res); err != nil {
		return nil, "", err
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, "", &Error{Kind: KindNetwork, Err: err}
	}
	return data, res.Header.Get("Content-Type"), nil
}

func (c *Client) checkStatus(ctx context.Context, res *http.Response) error {
	switch {
	case res.StatusCode == http.StatusUnauthorized:
		c.logger.Info("session expired, clearing token", slog.String("path", res.Request.URL.Path))
		if c.onAuthExpired != nil {
			c.onAuthExpired(ctx)
		}
		return &Error{Kind: KindAuthExpired, Status: res.StatusCode, Message: "la sesión ha expirado"}
	case res.StatusCode >= 400:
		return &Error{Kind: KindRemote, Status: res.StatusCode, Message: extractMessage(res)}
	}
	return nil
}

// extractMessage pulls the human-readable message from an error payload,
// falling back to the transport-level status text.
func extractMessage(res *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	if err == nil && len(data) > 0 {
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil {
			if eb.Message != "" {
				return eb.Message
			}
			if eb.Error != "" {
				return eb.Error
			}
		}
	}
	return http.StatusText(res.StatusCode)
}
