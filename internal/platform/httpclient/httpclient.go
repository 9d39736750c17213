// Package httpclient provides the shared HTTP client used by all sources,
// with connection pooling, retry, rate limiting, and optional proxy support.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"subsweep/internal/platform/errors"
	"subsweep/internal/platform/logx"
	"subsweep/internal/platform/rate"
)

// Client is an enhanced HTTP client with retry logic, rate limiting, and
// connection pooling. A single instance is shared by every source so the
// pool and rate limiter apply across the whole run.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      logx.Logger
	config      Config
}

// Config holds the configuration for the HTTP client.
type Config struct {
	// Timeout is the per-request timeout duration.
	// Default: 30 seconds
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts.
	// Default: 0 (no retries; sources opt in per request)
	MaxRetries int

	// RetryBackoff is the initial backoff duration for retries.
	// Backoff increases exponentially with each retry.
	// Default: 1 second
	RetryBackoff time.Duration

	// MaxRetryBackoff is the maximum backoff duration between retries.
	// Default: 30 seconds
	MaxRetryBackoff time.Duration

	// UserAgent is the User-Agent header value.
	// Default: "subsweep/1.0"
	UserAgent string

	// RateLimit is the maximum requests per second across all sources.
	// 0 means no rate limiting.
	RateLimit float64

	// RateLimitBurst is the burst size for rate limiting.
	// Default: 1
	RateLimitBurst int

	// ProxyURL routes all requests through an HTTP proxy when set.
	ProxyURL *url.URL

	// MaxIdleConns bounds the connection pool.
	// Default: 100
	MaxIdleConns int

	// MaxIdleConnsPerHost bounds idle connections kept per host.
	// Default: 10
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long idle pooled connections are kept.
	// Default: 90 seconds
	IdleConnTimeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:             30 * time.Second,
		MaxRetries:          0,
		RetryBackoff:        1 * time.Second,
		MaxRetryBackoff:     30 * time.Second,
		UserAgent:           "subsweep/1.0",
		RateLimit:           0,
		RateLimitBurst:      1,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
}

// New creates a new HTTP client with the given configuration.
func New(config Config, logger logx.Logger) *Client {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RetryBackoff == 0 {
		config.RetryBackoff = 1 * time.Second
	}
	if config.MaxRetryBackoff == 0 {
		config.MaxRetryBackoff = 30 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = "subsweep/1.0"
	}
	if config.RateLimitBurst == 0 {
		config.RateLimitBurst = 1
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 100
	}
	if config.MaxIdleConnsPerHost == 0 {
		config.MaxIdleConnsPerHost = 10
	}
	if config.IdleConnTimeout == 0 {
		config.IdleConnTimeout = 90 * time.Second
	}

	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		Proxy:               http.ProxyFromEnvironment,
	}
	if config.ProxyURL != nil {
		transport.Proxy = http.ProxyURL(config.ProxyURL)
	}

	// Some sources authenticate across requests with cookies.
	jar, _ := cookiejar.New(nil)

	httpClient := &http.Client{
		Timeout:   config.Timeout,
		Transport: transport,
		Jar:       jar,
	}

	var rateLimiter *rate.Limiter
	if config.RateLimit > 0 {
		rateLimiter = rate.New(config.RateLimit, config.RateLimitBurst)
	}

	return &Client{
		httpClient:  httpClient,
		rateLimiter: rateLimiter,
		logger:      logger.With("component", "httpclient"),
		config:      config,
	}
}

// Request performs an HTTP request with retry logic and rate limiting.
//
// The request body is read once, so retried methods must pass a body factory
// via RequestWithBody when retries are enabled.
func (c *Client) Request(ctx context.Context, method, url string, body io.Reader, headers map[string]string) (*http.Response, error) {
	makeBody := func() io.Reader { return body }
	if body != nil && c.config.MaxRetries > 0 {
		// A plain reader cannot be replayed; only the first attempt gets it.
		consumed := false
		makeBody = func() io.Reader {
			if consumed {
				return nil
			}
			consumed = true
			return body
		}
	}
	return c.do(ctx, method, url, makeBody, headers)
}

// RequestWithBody performs a request whose body can be recreated per attempt.
func (c *Client) RequestWithBody(ctx context.Context, method, url string, makeBody func() io.Reader, headers map[string]string) (*http.Response, error) {
	return c.do(ctx, method, url, makeBody, headers)
}

func (c *Client) do(ctx context.Context, method, url string, makeBody func() io.Reader, headers map[string]string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if c.rateLimiter != nil {
			if err := c.rateLimiter.Wait(ctx); err != nil {
				return nil, errors.Wrap(err, "rate limit wait failed")
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, url, makeBody())
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create request for %s %s", method, url)
		}

		req.Header.Set("User-Agent", c.config.UserAgent)
		for key, value := range headers {
			req.Header.Set(key, value)
		}

		c.logger.Debug("HTTP request",
			"method", method,
			"url", url,
			"attempt", attempt+1,
		)

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		duration := time.Since(start)

		if err != nil {
			c.logger.Debug("HTTP request failed",
				"method", method,
				"url", url,
				"attempt", attempt+1,
				"error", err.Error(),
				"duration_ms", duration.Milliseconds(),
			)
			lastErr = err

			if ctx.Err() != nil {
				return nil, errors.Wrap(ctx.Err(), "request aborted")
			}
			if !c.shouldRetry(attempt, err, nil) {
				return nil, errors.Wrapf(errors.ErrConnectionFailed, "%s %s: %v", method, url, err)
			}
			if err := c.backoff(ctx, attempt); err != nil {
				return nil, errors.Wrap(err, "backoff interrupted")
			}
			continue
		}

		c.logger.Debug("HTTP response received",
			"method", method,
			"url", url,
			"status", resp.StatusCode,
			"duration_ms", duration.Milliseconds(),
		)

		if !c.isRetryableStatus(resp) {
			return resp, nil
		}

		// Retry budget exhausted: hand the response back so the caller
		// can map the status through CheckStatus (429 stays a rate limit,
		// not a transport failure).
		if !c.shouldRetry(attempt, nil, resp) {
			return resp, nil
		}

		resp.Body.Close()
		lastErr = errors.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)

		if err := c.backoff(ctx, attempt); err != nil {
			return nil, errors.Wrap(err, "backoff interrupted")
		}
	}

	return nil, errors.Wrapf(lastErr, "request failed after %d attempts", c.config.MaxRetries+1)
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	return c.Request(ctx, http.MethodGet, url, nil, headers)
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, url string, body io.Reader, headers map[string]string) (*http.Response, error) {
	return c.Request(ctx, http.MethodPost, url, body, headers)
}

// PostForm performs a POST with form-encoded values, replayable on retry.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values, headers map[string]string) (*http.Response, error) {
	merged := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
	for k, v := range headers {
		merged[k] = v
	}
	encoded := form.Encode()
	return c.RequestWithBody(ctx, http.MethodPost, rawURL, func() io.Reader {
		return strings.NewReader(encoded)
	}, merged)
}

// GetJSON is a convenience method for GET requests that expect JSON responses.
func (c *Client) GetJSON(ctx context.Context, url string) (*http.Response, error) {
	return c.Get(ctx, url, map[string]string{"Accept": "application/json"})
}

// FetchJSON performs a GET request and returns the response body as bytes.
// The response is validated for 2xx status codes.
func (c *Client) FetchJSON(ctx context.Context, url string) ([]byte, error) {
	return c.Fetch(ctx, url, map[string]string{"Accept": "application/json"})
}

// Fetch performs a GET request with headers, checks the status, and returns
// the body.
func (c *Client) Fetch(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	resp, err := c.Get(ctx, url, headers)
	if err != nil {
		return nil, err
	}

	if err := CheckStatus(resp); err != nil {
		resp.Body.Close()
		return nil, errors.Wrapf(err, "request to %s failed", url)
	}

	return ReadBody(resp)
}

// isRetryableStatus checks if an HTTP status code should trigger a retry.
func (c *Client) isRetryableStatus(resp *http.Response) bool {
	if resp == nil {
		return false
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func (c *Client) shouldRetry(attempt int, err error, resp *http.Response) bool {
	if attempt >= c.config.MaxRetries {
		return false
	}
	if err != nil {
		return true
	}
	return c.isRetryableStatus(resp)
}

// backoff implements exponential backoff.
func (c *Client) backoff(ctx context.Context, attempt int) error {
	backoff := c.config.RetryBackoff * time.Duration(math.Pow(2, float64(attempt)))
	if backoff > c.config.MaxRetryBackoff {
		backoff = c.config.MaxRetryBackoff
	}

	c.logger.Debug("Backing off before retry",
		"attempt", attempt+1,
		"backoff_ms", backoff.Milliseconds(),
	)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(backoff):
		return nil
	}
}

// WithRetries returns a client sharing this client's transport, pool, and
// rate limiter but with a different retry budget. Sources that tolerate
// flaky endpoints use it without duplicating connections.
func (c *Client) WithRetries(maxRetries int) *Client {
	clone := *c
	clone.config.MaxRetries = maxRetries
	return &clone
}

// ReadBody reads the response body and closes it.
func ReadBody(resp *http.Response) ([]byte, error) {
	if resp == nil {
		return nil, errors.New("response is nil")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	return body, nil
}

// CheckStatus validates the HTTP status code and returns an error if it's not successful.
func CheckStatus(resp *http.Response) error {
	if resp == nil {
		return errors.New("response is nil")
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return errors.ErrRateLimit
	case http.StatusNotFound:
		return errors.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.ErrUnauthorized
	case http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusBadGateway:
		return errors.ErrServiceUnavailable
	default:
		return errors.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
}

// String returns a human-readable representation of the client configuration.
func (c *Client) String() string {
	proxy := "none"
	if c.config.ProxyURL != nil {
		proxy = c.config.ProxyURL.Host
	}
	return fmt.Sprintf("HTTPClient{timeout=%s, max_retries=%d, proxy=%s}",
		c.config.Timeout,
		c.config.MaxRetries,
		proxy,
	)
}
