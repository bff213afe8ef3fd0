package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/linkforty/go-linkforty/pkg/config"
	"github.com/linkforty/go-linkforty/pkg/interfaces/logger"
)

const maxErrorBody = 512

// HTTPClient is the default RequestFunc implementation: it joins paths onto
// the base URL, attaches the bearer API key and decodes JSON responses.
type HTTPClient struct {
	baseURL   string
	apiKey    string
	userAgent string
	headers   map[string]string
	client    *http.Client
	logger    logger.Logger
}

type Option func(*HTTPClient)

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(key string) Option {
	return func(c *HTTPClient) {
		c.apiKey = strings.TrimSpace(key)
	}
}

// WithTimeout sets the timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithHTTPClient allows injecting a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *HTTPClient) {
		if strings.TrimSpace(ua) != "" {
			c.userAgent = ua
		}
	}
}

// WithHeader adds a static header to every request.
func WithHeader(key, value string) Option {
	return func(c *HTTPClient) {
		c.headers[key] = value
	}
}

// NewHTTPClient constructs a client for baseURL.
func NewHTTPClient(baseURL string, lgr logger.Logger, opts ...Option) *HTTPClient {
	if lgr == nil {
		lgr = &logger.Nop{}
	}
	c := &HTTPClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: "linkforty-go",
		headers:   make(map[string]string),
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    logger.Component(lgr, "transport"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.logger.Debug("api client configured",
		logger.Field{Key: "base_url", Value: c.baseURL},
		logger.Field{Key: "api_key", Value: config.MaskSecret(c.apiKey)},
	)
	return c
}

// NewHTTPClientFromConfig builds the client from SDK configuration.
func NewHTTPClientFromConfig(cfg config.Config, lgr logger.Logger, opts ...Option) *HTTPClient {
	base := []Option{
		WithAPIKey(cfg.APIKey),
		WithTimeout(cfg.Request.Timeout),
		WithUserAgent(cfg.Request.UserAgent),
	}
	return NewHTTPClient(cfg.BaseURL, lgr, append(base, opts...)...)
}

// Func exposes the client as a RequestFunc.
func (c *HTTPClient) Func() RequestFunc {
	return c.Do
}

// Do performs the request described by path and opts.
func (c *HTTPClient) Do(ctx context.Context, path string, opts RequestOptions) (json.RawMessage, error) {
	method := strings.ToUpper(strings.TrimSpace(opts.Method))
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Body != nil {
		payload, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("transport: encode body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("transport: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Path: path, Err: err}
	}

	c.logger.Debug("api call completed",
		logger.Field{Key: "method", Value: method},
		logger.Field{Key: "path", Value: path},
		logger.Field{Key: "status", Value: resp.StatusCode},
		logger.Field{Key: "duration_ms", Value: time.Since(started).Milliseconds()},
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: truncate(string(raw), maxErrorBody), Path: path}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(raw) {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("invalid JSON body (%d bytes)", len(raw))}
	}
	return json.RawMessage(raw), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
