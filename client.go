package furnilytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	internalbackoff "github.com/Furnilytics/Furnilytics-lib/internal/backoff"
)

// Configuration defaults. The retry defaults mirror the service's documented
// guidance: up to four retries with a 600ms initial backoff.
const (
	DefaultBaseURL           = "https://furnilytics-api.fly.dev"
	DefaultTimeout           = 20 * time.Second
	DefaultMaxRetries        = 4
	DefaultInitialBackoff    = 600 * time.Millisecond
	DefaultMaxBackoff        = 10 * time.Second
	DefaultBackoffMultiplier = 2.0
	DefaultJitter            = 1.0
)

// Environment variables consulted when the corresponding option is not set.
const (
	EnvAPIKey  = "FURNILYTICS_API_KEY"
	EnvBaseURL = "FURNILYTICS_BASE_URL"
)

// Client talks to the Furnilytics dataset catalog over HTTP. It layers
// retries, optional rate limiting, middleware and metrics around the
// standard net/http Client. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	rawBaseURL string
	apiKey     string
	userAgent  string
	env        func(key string) string

	maxRetries        int
	initialBackoff    time.Duration
	maxBackoff        time.Duration
	backoffMultiplier float64
	jitter            float64
	timeout           time.Duration

	retryCondition  RetryCondition
	customCondition bool
	retryPolicy     RetryPolicy
	retryBudget     *RetryBudget

	middleware []Middleware
	limiter    *rate.Limiter

	metrics *MetricsCollector
	debug   *DebugConfig
	logger  Logger

	metaMu   sync.RWMutex
	lastMeta *ResponseMeta
}

// New constructs a Client using the provided functional options. The API key
// falls back to FURNILYTICS_API_KEY and the base URL to FURNILYTICS_BASE_URL;
// a base URL that is not absolute http(s) yields a Config error.
func New(options ...Option) (*Client, error) {
	client := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		env:               os.Getenv,
		maxRetries:        DefaultMaxRetries,
		initialBackoff:    DefaultInitialBackoff,
		maxBackoff:        DefaultMaxBackoff,
		backoffMultiplier: DefaultBackoffMultiplier,
		jitter:            DefaultJitter,
		timeout:           DefaultTimeout,
		retryCondition:    DefaultRetryCondition,
		middleware:        []Middleware{},
		debug:             DefaultDebugConfig(),
	}

	for _, option := range options {
		option(client)
	}

	client.normalize()

	if client.apiKey == "" {
		client.apiKey = client.env(EnvAPIKey)
	}

	raw := client.rawBaseURL
	if raw == "" {
		raw = client.env(EnvBaseURL)
	}
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := parseBaseURL(raw)
	if err != nil {
		return nil, err
	}
	client.baseURL = base

	// The default policy owns Retry-After handling; a custom RetryCondition
	// opts back into the legacy condition+backoff path.
	if client.retryPolicy == nil && !client.customCondition {
		client.retryPolicy = NewDefaultRetryPolicy(
			client.maxRetries,
			client.initialBackoff,
			client.maxBackoff,
			client.backoffMultiplier,
			client.jitter,
		)
	}

	return client, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, newConfigError(fmt.Sprintf("invalid base URL %q", raw), err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" || parsed.Host == "" {
		return nil, newConfigError(fmt.Sprintf("base URL %q must be an absolute http(s) URL", raw), nil)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/")
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return parsed, nil
}

// normalize clamps degenerate knob values so a half-configured client still
// behaves. Soft misconfiguration remains reportable via ValidateConfiguration.
func (c *Client) normalize() {
	if c.maxRetries < 0 {
		c.maxRetries = 0
	}
	if c.initialBackoff <= 0 {
		c.initialBackoff = DefaultInitialBackoff
	}
	if c.maxBackoff <= 0 {
		c.maxBackoff = DefaultMaxBackoff
	}
	if c.maxBackoff < c.initialBackoff {
		c.maxBackoff = c.initialBackoff
	}
	if c.backoffMultiplier <= 0 {
		c.backoffMultiplier = DefaultBackoffMultiplier
	}
	if c.jitter < 0 {
		c.jitter = 0
	}
	if c.jitter > 1 {
		c.jitter = 1
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
		if c.httpClient != nil {
			c.httpClient.Timeout = c.timeout
		}
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	if c.userAgent == "" {
		c.userAgent = defaultUserAgent()
	}
	if c.env == nil {
		c.env = os.Getenv
	}
	if c.retryCondition == nil {
		c.retryCondition = DefaultRetryCondition
	}
	if c.debug == nil {
		c.debug = DefaultDebugConfig()
	}
}

// BaseURL returns the resolved base URL the client sends requests to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// getJSON performs a GET against path, records response metadata, classifies
// non-2xx statuses and verifies the success body is JSON.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values) ([]byte, error) {
	req, err := c.newRequest(ctx, path, query)
	if err != nil {
		return nil, err
	}

	resp, body, err := c.do(req)
	c.recordMeta(req, resp)
	if err != nil {
		return nil, err
	}

	if err := c.classify(req, resp, body); err != nil {
		return nil, err
	}

	if !json.Valid(body) {
		if c.metrics != nil {
			c.metrics.RecordError(ErrorTypeAPI, req.Method, endpointFromRequest(req))
		}
		message := fmt.Sprintf("Invalid JSON response (HTTP %d).", resp.StatusCode)
		if snippet := bodySnippet(body, 200); snippet != "" {
			message = fmt.Sprintf("Invalid JSON response (HTTP %d): %s", resp.StatusCode, snippet)
		}
		return nil, &ClientError{
			Type:       ErrorTypeAPI,
			Message:    message,
			StatusCode: resp.StatusCode,
			Body:       body,
			Method:     req.Method,
			URL:        req.URL.String(),
			MaxRetries: c.maxRetries,
			Timestamp:  time.Now(),
		}
	}

	return body, nil
}

// do executes a prepared request applying all reliability features and
// returns the response alongside its fully read body.
func (c *Client) do(req *http.Request) (*http.Response, []byte, error) {
	start := time.Now()
	endpoint := endpointFromRequest(req)

	var requestID string
	if c.debug != nil && c.debug.Enabled && c.debug.RequestIDGen != nil {
		requestID = c.debug.RequestIDGen()
		req.Header.Set(headerRequestID, requestID)
	}

	if c.debug != nil && c.debug.Enabled && c.debug.LogRequests && c.logger != nil {
		c.logger.Debug("Starting request", "requestID", requestID, "method", req.Method, "url", req.URL.String(), "endpoint", endpoint)
	}

	if c.metrics != nil {
		c.metrics.RecordRequestStart(req.Method, endpoint)
	}

	resp, err := c.doWithRetry(req, 0, requestID, start)

	if c.metrics != nil {
		c.metrics.RecordRequestEnd(req.Method, endpoint)
	}

	duration := time.Since(start)
	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}
	if c.metrics != nil {
		c.metrics.RecordRequest(req.Method, endpoint, statusCode, duration)
	}

	if c.debug != nil && c.debug.Enabled && c.debug.LogResponses && c.logger != nil {
		c.logger.Debug("Request finished", "requestID", requestID, "status", statusCode, "duration", duration)
	}

	if err != nil {
		return resp, nil, err
	}

	body, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, &ClientError{
			Type:       ErrorTypeNetwork,
			Message:    "failed to read response body",
			Cause:      readErr,
			StatusCode: resp.StatusCode,
			RequestID:  requestID,
			Method:     req.Method,
			URL:        req.URL.String(),
			MaxRetries: c.maxRetries,
			Timestamp:  time.Now(),
			Duration:   time.Since(start),
		}
	}

	return resp, body, nil
}

func (c *Client) doWithRetry(req *http.Request, attempt int, requestID string, startTime time.Time) (*http.Response, error) {
	endpoint := endpointFromRequest(req)

	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			if c.debug != nil && c.debug.Enabled && c.debug.LogRateLimit && c.logger != nil {
				c.logger.Warn("Rate limiter wait aborted", "requestID", requestID, "endpoint", endpoint, "error", err.Error())
			}
			return nil, c.transportError(req, requestID, attempt, startTime, err)
		}

		if c.metrics != nil {
			c.metrics.RecordRateLimiterTokens("default", int(c.limiter.Tokens()))
		}
	}

	if attempt > 0 {
		if c.debug != nil && c.debug.Enabled && c.debug.LogRetries && c.logger != nil {
			c.logger.Info("Retry attempt", "requestID", requestID, "attempt", attempt, "maxRetries", c.maxRetries, "endpoint", endpoint)
		}

		if c.metrics != nil {
			c.metrics.RecordRetry(req.Method, endpoint, attempt)
		}
	}

	resp, err := c.executeMiddleware(req)

	// Check retry eligibility using either the RetryPolicy or legacy condition
	var shouldRetry bool
	var delay time.Duration

	if c.retryPolicy != nil {
		delay, shouldRetry = c.retryPolicy.ShouldRetry(resp, err, attempt)
	} else {
		shouldRetry = attempt < c.maxRetries && c.retryCondition(resp, err)
		if shouldRetry {
			delay = c.calculateBackoff(attempt)
		}
	}

	if shouldRetry {
		// Check retry budget if configured
		if c.retryBudget != nil && !c.retryBudget.Allow() {
			if c.metrics != nil {
				c.metrics.RecordRetryBudgetExceeded(endpoint)
			}
			if c.debug != nil && c.debug.Enabled && c.debug.LogRetries && c.logger != nil {
				c.logger.Warn("Retry budget exceeded", "requestID", requestID, "endpoint", endpoint)
			}
			drainBody(resp)
			return nil, &ClientError{
				Type:       ErrorTypeRetryBudgetExceeded,
				Message:    "retry budget exceeded",
				Cause:      err,
				RequestID:  requestID,
				Method:     req.Method,
				URL:        req.URL.String(),
				Attempt:    attempt,
				MaxRetries: c.maxRetries,
				Timestamp:  time.Now(),
				Duration:   time.Since(startTime),
			}
		}

		if c.debug != nil && c.debug.Enabled && c.debug.LogRetries && c.logger != nil {
			c.logger.Info("Scheduling retry", "requestID", requestID, "attempt", attempt+1, "backoff", delay, "endpoint", endpoint)
		}

		// The connection is only reusable once the stale body is drained.
		drainBody(resp)

		if sleepErr := sleepContext(req.Context(), delay); sleepErr != nil {
			return nil, c.transportError(req, requestID, attempt, startTime, sleepErr)
		}
		return c.doWithRetry(req, attempt+1, requestID, startTime)
	}

	if err != nil {
		return nil, c.transportError(req, requestID, attempt, startTime, err)
	}

	return resp, nil
}

func (c *Client) executeMiddleware(req *http.Request) (*http.Response, error) {
	if len(c.middleware) == 0 {
		return c.httpClient.Do(req)
	}

	current := RoundTripperFunc(c.httpClient.Do)

	for i := len(c.middleware) - 1; i >= 0; i-- {
		middleware := c.middleware[i]
		next := current
		current = RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			return middleware(r, next)
		})
	}

	return current.RoundTrip(req)
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := time.Duration(float64(c.initialBackoff) * internalbackoff.Pow(c.backoffMultiplier, attempt))
	if backoff > c.maxBackoff {
		backoff = c.maxBackoff
	}
	jitter := c.jitter
	if jitter < 0 {
		jitter = 0
	}
	if jitter > 1 {
		jitter = 1
	}
	if jitter > 0 {
		jitterAmount := time.Duration(float64(backoff) * jitter * rand.Float64())
		backoff += jitterAmount
	}
	return backoff
}

// DefaultRetryCondition retries connection failures, HTTP 429 and all 5xx.
func DefaultRetryCondition(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}
	return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
}

// transportError wraps a connection-level failure in a ClientError,
// distinguishing timeouts and cancellation from other network faults.
func (c *Client) transportError(req *http.Request, requestID string, attempt int, startTime time.Time, cause error) *ClientError {
	errorType := ErrorTypeNetwork
	message := "network request failed"

	var netErr net.Error
	switch {
	case errors.Is(cause, context.DeadlineExceeded):
		errorType = ErrorTypeTimeout
		message = "request timed out"
	case errors.As(cause, &netErr) && netErr.Timeout():
		errorType = ErrorTypeTimeout
		message = "request timed out"
	case errors.Is(cause, context.Canceled):
		message = "request canceled"
	}

	if c.metrics != nil {
		c.metrics.RecordError(errorType, req.Method, endpointFromRequest(req))
	}

	return &ClientError{
		Type:       errorType,
		Message:    message,
		Cause:      cause,
		RequestID:  requestID,
		Method:     req.Method,
		URL:        req.URL.String(),
		Attempt:    attempt,
		MaxRetries: c.maxRetries,
		Timestamp:  time.Now(),
		Duration:   time.Since(startTime),
	}
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// drainBody discards and closes a response body so the underlying
// connection can be reused for the next attempt.
func drainBody(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
