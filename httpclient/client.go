// Package httpclient is the request-issuing facade for the dashboard API.
// It attaches the current bearer token on the way out and watches for the
// server declaring that token dead on the way in. It is the only component
// outside the auth controller allowed to (indirectly) mutate the session.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const (
	defaultTimeout = 30 * time.Second

	// Responses larger than this are truncated before decoding.
	maxBodyBytes = 4 << 20
)

// TokenSource supplies the bearer credential for each outbound request.
// The session store satisfies it; each call re-reads the current token, so a
// rotation observed mid-flight affects only later requests.
type TokenSource interface {
	AccessToken() string
}

// Invalidator is notified when the server declares the current token dead.
// The session store satisfies it with MarkExpired.
type Invalidator interface {
	MarkExpired(flag bool)
}

// Client issues requests against the dashboard API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokens      TokenSource
	invalidator Invalidator
	logger      zerolog.Logger
	metrics     *clientMetrics
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client) error

// WithHTTPClient replaces the underlying transport (primarily for testing).
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) error {
		c.httpClient = httpClient
		return nil
	}
}

// WithTimeout sets the per-request timeout on the underlying transport.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) error {
		c.httpClient.Timeout = d
		return nil
	}
}

// WithLogger sets the client's logger.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// WithMetrics registers the client's request counters with reg.
func WithMetrics(reg prometheus.Registerer) ClientOption {
	return func(c *Client) error {
		return errors.Wrap(c.metrics.register(reg), "[httpclient.WithMetrics] register")
	}
}

// NewClient initializes a Client for the API at baseURL.
func NewClient(baseURL string, tokens TokenSource, invalidator Invalidator, options ...ClientOption) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[NewClient] baseURL is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewClient] token source is required")
	}
	if invalidator == nil {
		return nil, errors.New("[NewClient] invalidator is required")
	}

	client := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: defaultTimeout},
		tokens:      tokens,
		invalidator: invalidator,
		logger:      zerolog.Nop(),
		metrics:     newClientMetrics(),
	}
	for _, opt := range options {
		if err := opt(client); err != nil {
			return nil, err
		}
	}
	return client, nil
}

// Get issues an authenticated GET and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues an authenticated POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, in, out)
}

// Put issues an authenticated PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPut, path, in, out)
}

// Delete issues an authenticated DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "[Client.do] marshal request body")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "[Client.do] build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// Requests with no token are sent unauthenticated.
	if token := c.tokens.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(method, 0)
		return errors.Wrapf(err, "[Client.do] %s %s", method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.metrics.observe(method, resp.StatusCode)
		return errors.Wrapf(err, "[Client.do] read response %s %s", method, path)
	}

	c.metrics.observe(method, resp.StatusCode)
	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("api request")

	if resp.StatusCode >= 400 {
		return c.responseError(resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return errors.Wrapf(err, "[Client.do] decode response %s %s", method, path)
		}
	}
	return nil
}

// responseError parses the structured error body and, for the one 401 shape
// that means "your token is dead", flips the session's expiry flag before
// propagating the error unchanged. No retry, no automatic refresh.
func (c *Client) responseError(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode}
	_ = json.Unmarshal(body, apiErr) // a non-JSON body leaves Detail/Messages empty

	if apiErr.IsInvalidToken() {
		c.logger.Info().Msg("server declared access token invalid")
		c.invalidator.MarkExpired(true)
		c.metrics.invalidations.Inc()
	}
	return apiErr
}
