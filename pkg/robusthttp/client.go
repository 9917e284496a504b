// Package robusthttp builds HTTP clients with retry and timeout defaults
// suitable for talking to a BFF backend over flaky mobile-grade networks.
package robusthttp

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
)

type LeveledSlog struct {
	inner *slog.Logger
}

// re-writes HTTP client ERROR to WARN level (because of retries)
func (l LeveledSlog) Error(msg string, keysAndValues ...any) {
	l.inner.Warn(msg, keysAndValues...)
}

func (l LeveledSlog) Warn(msg string, keysAndValues ...any) {
	l.inner.Warn(msg, keysAndValues...)
}

func (l LeveledSlog) Info(msg string, keysAndValues ...any) {
	l.inner.Info(msg, keysAndValues...)
}

func (l LeveledSlog) Debug(msg string, keysAndValues ...any) {
	l.inner.Debug(msg, keysAndValues...)
}

type Option func(*retryablehttp.Client)

// WithMaxRetries sets the maximum number of transport-level retries.
func WithMaxRetries(maxRetries int) Option {
	return func(client *retryablehttp.Client) {
		client.RetryMax = maxRetries
	}
}

// WithRetryWaitMin sets the minimum wait time between retries.
func WithRetryWaitMin(waitMin time.Duration) Option {
	return func(client *retryablehttp.Client) {
		client.RetryWaitMin = waitMin
	}
}

// WithRetryWaitMax sets the maximum wait time between retries.
func WithRetryWaitMax(waitMax time.Duration) Option {
	return func(client *retryablehttp.Client) {
		client.RetryWaitMax = waitMax
	}
}

// WithLogger sets a custom logger for the HTTP client.
func WithLogger(logger *slog.Logger) Option {
	return func(client *retryablehttp.Client) {
		client.Logger = retryablehttp.LeveledLogger(LeveledSlog{inner: logger})
	}
}

// WithTransport sets a custom transport for the HTTP client.
func WithTransport(transport http.RoundTripper) Option {
	return func(client *retryablehttp.Client) {
		client.HTTPClient.Transport = transport
	}
}

// WithCookieJar sets the cookie jar on the HTTP client. The jar should be
// shared with the session cookie manager so authenticated requests carry the
// backend session cookie.
func WithCookieJar(jar http.CookieJar) Option {
	return func(client *retryablehttp.Client) {
		client.HTTPClient.Jar = jar
	}
}

// NewClient generates an HTTP client with general-purpose defaults around
// timeouts and retries. The returned client has the stdlib http.Client
// interface, but has Hashicorp retryablehttp logic internally.
//
// This client retries on connection errors and 5xx status (except 501), and
// logs intermediate failures at WARN level. This sits below the auth-level
// 401 handling in bffclient, which never reaches this layer's retry logic
// (401 is not retried here).
func NewClient(options ...Option) *http.Client {
	logger := LeveledSlog{inner: slog.Default().With("subsystem", "RobustHTTPClient")}
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Transport = cleanhttp.DefaultPooledTransport()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.Logger = retryablehttp.LeveledLogger(logger)
	retryClient.CheckRetry = DefaultRetryPolicy

	for _, option := range options {
		option(retryClient)
	}

	client := retryClient.StandardClient()
	client.Timeout = 30 * time.Second
	return client
}

// TestingClient is for use in local integration tests. Short timeouts, no
// retries. The jar (may be nil) is attached so session cookies still flow.
func TestingClient(jar http.CookieJar) *http.Client {
	return &http.Client{
		Timeout: 1 * time.Second,
		Jar:     jar,
	}
}

// DefaultRetryPolicy is a custom wrapper around retryablehttp.DefaultRetryPolicy.
// It treats `429 Too Many Requests` as non-retryable, so the application can
// decide how to deal with rate-limiting.
func DefaultRetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil && resp.StatusCode == http.StatusTooManyRequests {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}
