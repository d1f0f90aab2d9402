package versioncheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Error variables for HTTP client errors
var (
	// ErrMaxRetriesExceeded is returned when all retry attempts have failed
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
	// ErrRequestTimeout is returned when a request times out
	ErrRequestTimeout = errors.New("request timeout")
	// ErrHTTPStatus is returned when upstream answers with a non-200 status
	ErrHTTPStatus = errors.New("unexpected HTTP status")
)

// DefaultUserAgent identifies bakecheck to upstream servers.
const DefaultUserAgent = "bakecheck-version-checker"

// githubMediaType is the media type requested from the GitHub REST API.
const githubMediaType = "application/vnd.github+json"

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt (default: 0)
	MaxRetries int
	// BaseDelay is the initial delay before first retry (default: 1s)
	BaseDelay time.Duration
	// MaxDelay is the maximum delay between retries (default: 4s)
	MaxDelay time.Duration
	// Timeout bounds each individual request (default: 20s)
	Timeout time.Duration
}

// DefaultRetryConfig returns the default retry configuration.
// A lookup is a single best-effort GET; retries are opt-in.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 0,
		BaseDelay:  1 * time.Second,
		MaxDelay:   4 * time.Second,
		Timeout:    20 * time.Second,
	}
}

// RetryableHTTPClient wraps an HTTP client with retry logic.
// It implements exponential backoff for failed requests.
type RetryableHTTPClient struct {
	client *http.Client
	config RetryConfig
	// delayFunc allows overriding the delay function for testing
	delayFunc func(time.Duration)
	// userAgent is sent with every request
	userAgent string
	// githubToken is the GitHub API token for authentication
	githubToken string
	// githubAPIURL is the API base the token is sent to
	githubAPIURL string
}

// NewRetryableHTTPClient creates a new HTTP client using the default retry configuration.
func NewRetryableHTTPClient() *RetryableHTTPClient {
	return NewRetryableHTTPClientWithConfig(DefaultRetryConfig())
}

// NewRetryableHTTPClientWithConfig creates a new HTTP client with custom retry configuration.
func NewRetryableHTTPClientWithConfig(config RetryConfig) *RetryableHTTPClient {
	if config.Timeout <= 0 {
		config.Timeout = DefaultRetryConfig().Timeout
	}
	return &RetryableHTTPClient{
		client: &http.Client{
			Timeout: config.Timeout,
		},
		config:       config,
		delayFunc:    time.Sleep,
		userAgent:    DefaultUserAgent,
		githubAPIURL: DefaultGitHubAPIURL,
	}
}

// SetHTTPClient sets a custom underlying HTTP client (useful for testing).
func (c *RetryableHTTPClient) SetHTTPClient(client *http.Client) {
	c.client = client
}

// SetDelayFunc sets a custom delay function (useful for testing).
func (c *RetryableHTTPClient) SetDelayFunc(fn func(time.Duration)) {
	c.delayFunc = fn
}

// SetUserAgent overrides the User-Agent header sent with every request.
func (c *RetryableHTTPClient) SetUserAgent(ua string) {
	if ua != "" {
		c.userAgent = ua
	}
}

// SetGitHubToken sets the GitHub API token for authentication.
// When set, requests to the GitHub API include an Authorization header.
func (c *RetryableHTTPClient) SetGitHubToken(token string) {
	c.githubToken = token
}

// SetGitHubAPIURL changes which API base receives the GitHub token
// (GitHub Enterprise installs, test servers).
func (c *RetryableHTTPClient) SetGitHubAPIURL(base string) {
	if base != "" {
		c.githubAPIURL = strings.TrimSuffix(base, "/")
	}
}

// Config returns the current retry configuration.
func (c *RetryableHTTPClient) Config() RetryConfig {
	return c.config
}

// DoWithContext executes an HTTP request with retry logic and context support.
// It retries on network errors, 5xx server errors and 429 with exponential backoff.
func (c *RetryableHTTPClient) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %v", ErrRequestTimeout, ctx.Err())
			}
			return nil, ctx.Err()
		}

		if attempt > 0 {
			c.delayFunc(c.calculateDelay(attempt))
		}

		resp, err := c.client.Do(req.Clone(ctx))
		if err != nil {
			lastErr = err
			if isTimeoutError(err) {
				lastErr = fmt.Errorf("%w: %v", ErrRequestTimeout, err)
			}
			continue
		}

		if c.shouldRetry(resp.StatusCode) && attempt < c.config.MaxRetries {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("%w %d", ErrHTTPStatus, resp.StatusCode)
			continue
		}

		// Success, non-retryable status, or the last attempt's response
		return resp, nil
	}

	if c.config.MaxRetries == 0 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%w: %v", ErrMaxRetriesExceeded, lastErr)
}

// Get performs a GET request with the client's default headers.
// Extra headers are applied last and may override the defaults.
func (c *RetryableHTTPClient) Get(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	c.applyHeaders(req, url, headers)
	return c.DoWithContext(ctx, req)
}

// FetchText GETs url and returns the body decoded as text.
// Anything but 200 OK is an error. The request is bounded by the
// configured per-request timeout.
func (c *RetryableHTTPClient) FetchText(ctx context.Context, url string) (string, error) {
	data, err := c.fetch(ctx, url, nil)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(data), "�"), nil
}

// FetchJSON GETs url and decodes the JSON body into result.
// It requests the GitHub media type, which other JSON endpoints ignore.
func (c *RetryableHTTPClient) FetchJSON(ctx context.Context, url string, result any) error {
	data, err := c.fetch(ctx, url, map[string]string{"Accept": githubMediaType})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("%w from %s: %v", ErrUnexpectedResponse, url, err)
	}
	return nil
}

// fetch executes a bounded GET and returns the raw body.
func (c *RetryableHTTPClient) fetch(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	resp, err := c.Get(ctx, url, headers)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %w %d", url, ErrHTTPStatus, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeoutError(err) {
			return nil, fmt.Errorf("GET %s: %w: %v", url, ErrRequestTimeout, err)
		}
		return nil, fmt.Errorf("GET %s: read body: %w", url, err)
	}
	return data, nil
}

// calculateDelay calculates the delay for a given retry attempt.
// Uses exponential backoff: delay = baseDelay * 2^(attempt-1), capped at MaxDelay.
func (c *RetryableHTTPClient) calculateDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	multiplier := 1 << (attempt - 1)
	delay := c.config.BaseDelay * time.Duration(multiplier)
	if delay > c.config.MaxDelay {
		delay = c.config.MaxDelay
	}

	return delay
}

// shouldRetry determines if a request should be retried based on status code.
func (c *RetryableHTTPClient) shouldRetry(statusCode int) bool {
	if statusCode >= 500 && statusCode < 600 {
		return true
	}
	return statusCode == http.StatusTooManyRequests
}

// applyHeaders applies headers to a request in the following order:
// 1. User-Agent
// 2. GitHub token (if URL is a GitHub API URL and a token is configured)
// 3. Custom headers
func (c *RetryableHTTPClient) applyHeaders(req *http.Request, url string, customHeaders map[string]string) {
	req.Header.Set("User-Agent", c.userAgent)

	if c.githubToken != "" && c.isGitHubAPIURL(url) {
		req.Header.Set("Authorization", "Bearer "+c.githubToken)
	}

	for key, value := range customHeaders {
		req.Header.Set(key, value)
	}
}

// isTimeoutError checks if an error is a timeout error.
func isTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	type timeoutError interface {
		Timeout() bool
	}
	var te timeoutError
	if errors.As(err, &te) {
		return te.Timeout()
	}
	return false
}

// isGitHubAPIURL checks if a URL points at the configured GitHub API.
func (c *RetryableHTTPClient) isGitHubAPIURL(url string) bool {
	return strings.HasPrefix(url, c.githubAPIURL+"/")
}
