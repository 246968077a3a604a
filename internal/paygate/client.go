package paygate

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the hosted backend origin.
const DefaultBaseURL = "https://payment-gateway-7a7f.onrender.com"

// TokenSource supplies the current bearer token, if any.
type TokenSource interface {
	Token() (string, bool)
}

// Headers are per-call headers merged over the defaults. Names are sent
// exactly as given.
type Headers map[string]string

// Client issues requests against the backend and normalizes every outcome
// into a Result. It never retries and enforces no timeout of its own.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	logger     *zap.Logger
	metrics    *Metrics
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records request counts and latency.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds a client for baseURL. tokens may be nil for
// unauthenticated use, such as server-side order submission.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		tokens:     tokens,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string) Result[json.RawMessage] {
	return c.do(ctx, http.MethodGet, path, nil, nil)
}

// Post issues a POST request with a JSON body and optional extra headers.
func (c *Client) Post(ctx context.Context, path string, payload any, headers Headers) Result[json.RawMessage] {
	return c.do(ctx, http.MethodPost, path, payload, headers)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, payload any) Result[json.RawMessage] {
	return c.do(ctx, http.MethodPut, path, payload, nil)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) Result[json.RawMessage] {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload any, headers Headers) Result[json.RawMessage] {
	started := time.Now()
	res, outcome := c.roundTrip(ctx, method, path, payload, headers)

	endpoint := path
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		endpoint = endpoint[:i]
	}
	elapsed := time.Since(started)
	c.metrics.observe(method, endpoint, outcome, elapsed)

	fields := []zap.Field{
		zap.String("method", method),
		zap.String("path", endpoint),
		zap.Int("status", res.StatusCode),
		zap.Duration("duration", elapsed),
	}
	if res.Success {
		c.logger.Debug("api call succeeded", fields...)
	} else {
		c.logger.Warn("api call failed", append(fields, zap.String("error", res.Error))...)
	}
	return res
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload any, headers Headers) (Result[json.RawMessage], string) {
	var body io.Reader
	if payload != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(payload); err != nil {
			return Fail[json.RawMessage](transportMessage(err), 0), outcomeTransport
		}
		body = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return Fail[json.RawMessage](transportMessage(err), 0), outcomeTransport
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	for name, value := range headers {
		req.Header.Del(name)
		req.Header[name] = []string{value}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Fail[json.RawMessage](transportMessage(err), 0), outcomeTransport
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Fail[json.RawMessage](transportMessage(err), resp.StatusCode), outcomeTransport
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Fail[json.RawMessage](errorMessage(data), resp.StatusCode), outcomeHTTPError
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && !json.Valid(data) {
		return Fail[json.RawMessage]("invalid JSON response", resp.StatusCode), outcomeInvalid
	}
	return Ok(json.RawMessage(data), resp.StatusCode), outcomeSuccess
}

func transportMessage(err error) string {
	if err == nil || err.Error() == "" {
		return MsgNetworkError
	}
	return err.Error()
}
