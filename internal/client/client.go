// Package client provides the HTTP client for the merchant API.
// It includes authentication handling, rate limiting, and response envelope decoding.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/CalebMUC/Quickcrate-Merchant-Dashboard-sub000/internal/config"
	"github.com/CalebMUC/Quickcrate-Merchant-Dashboard-sub000/internal/logger"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// RequestObserver is notified after every HTTP exchange. status is zero when
// no response was received.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, duration time.Duration, err error)
}

// Client is the HTTP client for the merchant API.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	headers    map[string]string
	auth       *AuthManager
	limiter    *rate.Limiter
	observer   RequestObserver
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver registers a request observer, typically the metrics exporter.
func WithObserver(o RequestObserver) Option {
	return func(c *Client) { c.observer = o }
}

// New creates a client for the API described by cfg.
func New(cfg config.APIConfig, authCfg config.AuthConfig, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL: %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.TLSSkipVerify, //nolint:gosec // opt-in for test environments
		},
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	c := &Client{
		httpClient: &http.Client{Transport: transport, Timeout: timeout},
		baseURL:    base,
		headers:    make(map[string]string),
		logger:     zap.NewNop(),
	}

	c.headers["Content-Type"] = "application/json"
	c.headers["Accept"] = "application/json"
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "Quickcrate-Dashboard/1.0"
	}
	c.headers["User-Agent"] = userAgent
	for k, v := range cfg.Headers {
		c.headers[k] = v
	}

	if cfg.RateLimitQPS > 0 {
		burst := cfg.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitQPS), burst)
	}

	for _, opt := range opts {
		opt(c)
	}

	if authCfg.Type != "" && authCfg.Type != config.AuthNone {
		am, err := NewAuthManager(c, authCfg)
		if err != nil {
			return nil, fmt.Errorf("creating auth manager: %w", err)
		}
		c.auth = am
	}

	return c, nil
}

// Request represents an HTTP request to be executed.
type Request struct {
	Method string
	Path   string
	// Route is the path template used as a low-cardinality metrics label,
	// e.g. "/Categories/{id}". Defaults to Path.
	Route       string
	QueryParams map[string]string
	Headers     map[string]string
	Body        any
	Timeout     time.Duration
}

// Response represents an HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
	RequestID  string
}

// Do executes req. Non-2xx responses are returned together with an *APIError.
// A 401 on a request that carried a refreshable token triggers one shared
// token refresh and a single replay of the request. Nothing else is retried.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	return c.do(ctx, req, true)
}

func (c *Client) do(ctx context.Context, req Request, authenticate bool) (*Response, error) {
	u, err := c.buildURL(req.Path, req.QueryParams)
	if err != nil {
		return nil, fmt.Errorf("building URL: %w", err)
	}

	var body []byte
	if req.Body != nil {
		body, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	requestID := logger.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	resp, token, err := c.send(ctx, req, u, body, requestID, authenticate)
	if err == nil && resp.StatusCode == http.StatusUnauthorized && authenticate && token != "" && c.auth.Refreshable() {
		c.auth.Invalidate(token)
		logger.For(ctx, c.logger).Debug("replaying request after token refresh",
			zap.String("method", req.Method),
			zap.String("route", routeOf(req)),
		)
		resp, _, err = c.send(ctx, req, u, body, requestID, authenticate)
	}
	if err != nil {
		return resp, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, newStatusError(resp, req, requestID)
	}
	return resp, nil
}

// send performs one HTTP exchange and returns the bearer token it used.
func (c *Client) send(ctx context.Context, req Request, u *url.URL, body []byte, requestID string, authenticate bool) (*Response, string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, "", fmt.Errorf("rate limiter: %w", err)
		}
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), bodyReader)
	if err != nil {
		return nil, "", fmt.Errorf("creating HTTP request: %w", err)
	}

	c.setHeaders(httpReq, req.Headers)
	httpReq.Header.Set(RequestIDHeader, requestID)

	var token string
	if authenticate && c.auth != nil {
		token, err = c.auth.Authenticate(ctx, httpReq)
		if err != nil {
			return nil, "", fmt.Errorf("authenticating request: %w", err)
		}
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	duration := time.Since(start)

	resp := &Response{Duration: duration, RequestID: requestID}
	if err == nil {
		resp.StatusCode = httpResp.StatusCode
		resp.Headers = httpResp.Header
		resp.Body, err = io.ReadAll(httpResp.Body)
		_ = httpResp.Body.Close()
		if err != nil {
			err = fmt.Errorf("reading response body: %w", err)
		}
	} else {
		err = fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}

	route := routeOf(req)
	if c.observer != nil {
		c.observer.ObserveRequest(req.Method, route, resp.StatusCode, duration, err)
	}
	logger.For(ctx, c.logger).Debug("api request",
		zap.String("method", req.Method),
		zap.String("route", route),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration),
		zap.String("request_id", requestID),
		zap.Error(err),
	)

	return resp, token, err
}

// buildURL joins path, which may contain escaped ids, onto the base URL path
// and adds query parameters.
func (c *Client) buildURL(path string, queryParams map[string]string) (*url.URL, error) {
	rel, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing path: %w", err)
	}

	// RawPath keeps escaped separators inside ids from becoming segments.
	u := *c.baseURL
	u.Path = strings.TrimSuffix(c.baseURL.Path, "/") + "/" + rel.Path
	u.RawPath = strings.TrimSuffix(c.baseURL.EscapedPath(), "/") + "/" + rel.EscapedPath()

	q := rel.Query()
	for k, v := range queryParams {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	return &u, nil
}

// setHeaders applies the default headers, then the per-request ones.
func (c *Client) setHeaders(req *http.Request, customHeaders map[string]string) {
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range customHeaders {
		req.Header.Set(k, v)
	}
}

// BaseURL returns the client's base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// AuthManager returns the authentication manager, nil when auth is disabled.
func (c *Client) AuthManager() *AuthManager {
	return c.auth
}

func routeOf(req Request) string {
	if req.Route != "" {
		return req.Route
	}
	return req.Path
}
