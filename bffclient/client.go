package bffclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/tijs/atproto-bff-go/bffauth"
)

// APIClient performs HTTP calls against the backend with transparent
// credential lifecycle management: credentials are loaded before every
// request, refreshed proactively when near expiry, and refreshed reactively
// (with bounded exponential backoff) when the backend answers 401.
//
// The session rides on the cookie jar shared between HTTPClient and the
// coordinator's cookie manager; no Authorization header is ever set.
type APIClient struct {
	// Must share a cookie jar with Sessions.Cookies. Defaults to
	// Sessions.Client, so the zero configuration is one shared client.
	HTTPClient *http.Client

	Config   *bffauth.Config
	Sessions *bffauth.Coordinator

	// Defaults to slog.Default().
	Logger *slog.Logger
}

// NewAPIClient builds a client on top of an existing coordinator, sharing
// its HTTP client (and therefore its cookie jar) and configuration.
func NewAPIClient(sessions *bffauth.Coordinator) *APIClient {
	return &APIClient{
		HTTPClient: sessions.Client,
		Config:     sessions.Config,
		Sessions:   sessions,
		Logger:     sessions.Logger,
	}
}

func (c *APIClient) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}

func (c *APIClient) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func (c *APIClient) defaultHeaders() http.Header {
	return http.Header{
		"User-Agent": []string{c.Config.UserAgent},
		"Accept":     []string{"application/json"},
	}
}

// Do issues an authenticated request and returns the response body bytes.
//
// Requires stored credentials (fails with [bffauth.ErrInvalidCredentials]
// otherwise). When the session is within Config.RefreshThreshold of expiry
// it is refreshed first; an unrecoverable refresh failure propagates
// immediately (no point issuing a request known to be unauthenticated),
// while a recoverable one is logged and the stale session used, leaving the
// reactive 401 path as the fallback.
func (c *APIClient) Do(ctx context.Context, req *APIRequest) ([]byte, error) {
	log := c.logger().With("category", "network")

	creds, err := c.Sessions.Store.Load(ctx)
	if err != nil {
		return nil, &bffauth.StorageError{Op: "load", Err: err}
	}
	if creds == nil {
		return nil, fmt.Errorf("%w: no stored credentials", bffauth.ErrInvalidCredentials)
	}

	if creds.ExpiresWithin(c.Config.RefreshThreshold) {
		if _, err := c.Sessions.RefreshSession(ctx); err != nil {
			if !bffauth.Recoverable(err) {
				return nil, err
			}
			log.Warn("proactive session refresh failed, continuing with stale session", "err", err)
		}
	}

	return c.doWithRetry(ctx, req)
}

// doWithRetry issues the request, refreshing the session and retrying on
// 401 up to Config.MaxRetryAttempts times, sleeping min(2^n, cap) seconds
// between attempts.
func (c *APIClient) doWithRetry(ctx context.Context, req *APIRequest) ([]byte, error) {
	log := c.logger().With("category", "network")

	for attempt := 0; ; attempt++ {
		httpReq, err := req.HTTPRequest(ctx, c.Config.AppURL, c.defaultHeaders())
		if err != nil {
			return nil, err
		}
		resp, err := c.httpClient().Do(httpReq)
		if err != nil {
			log.Warn("request transport failure", "path", req.Path, "err", err)
			return nil, &bffauth.NetworkError{Detail: req.Path, Err: err}
		}

		if resp.StatusCode == http.StatusUnauthorized {
			resp.Body.Close()
			if attempt >= c.Config.MaxRetryAttempts {
				log.Warn("request unauthorized, retries exhausted", "path", req.Path, "attempts", attempt)
				return nil, fmt.Errorf("%w: request unauthorized after %d refresh attempts", bffauth.ErrInvalidCredentials, attempt)
			}
			log.Info("request unauthorized, refreshing session", "path", req.Path, "attempt", attempt)
			if err := c.backoff(ctx, attempt); err != nil {
				return nil, err
			}
			if _, err := c.Sessions.RefreshSession(ctx); err != nil {
				// no point retrying a request known to be unauthenticated
				return nil, err
			}
			continue
		}

		return readResponse(resp, req.Path)
	}
}

// backoff sleeps min(2^attempt, Config.MaxBackoffDelay), or returns early
// when ctx is cancelled.
func (c *APIClient) backoff(ctx context.Context, attempt int) error {
	delay := time.Duration(1<<attempt) * time.Second
	if delay > c.Config.MaxBackoffDelay {
		delay = c.Config.MaxBackoffDelay
	}
	if delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func readResponse(resp *http.Response, path string) ([]byte, error) {
	defer resp.Body.Close()

	if !(resp.StatusCode >= 200 && resp.StatusCode < 300) {
		var eb bffauth.ErrorBody
		if err := json.NewDecoder(resp.Body).Decode(&eb); err != nil {
			return nil, &bffauth.APIError{StatusCode: resp.StatusCode}
		}
		return nil, eb.APIError(resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &bffauth.NetworkError{Detail: path, Err: err}
	}
	return data, nil
}

// Get is a high-level helper for JSON GET calls. Decode failures surface as
// plain JSON errors, not as part of the auth error taxonomy.
func (c *APIClient) Get(ctx context.Context, path string, params url.Values, out any) error {
	req := NewAPIRequest(http.MethodGet, path, nil)
	if params != nil {
		req.QueryParams = params
	}
	data, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

// Post is a high-level helper for JSON-to-JSON POST calls. Decode failures
// surface as plain JSON errors, not as part of the auth error taxonomy.
func (c *APIClient) Post(ctx context.Context, path string, body any, out any) error {
	bodyJSON, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req := NewAPIRequest(http.MethodPost, path, bytes.NewReader(bodyJSON))
	req.Headers.Set("Content-Type", "application/json")
	data, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

// IsAuthenticated reports whether structurally-valid credentials are stored.
// Pure store read-through; no network calls.
func (c *APIClient) IsAuthenticated(ctx context.Context) bool {
	creds, err := c.Sessions.Store.Load(ctx)
	return err == nil && creds != nil && creds.IsValid()
}

// CurrentUser returns the stored credentials, or nil when none are stored.
// Pure store read-through; no network calls.
func (c *APIClient) CurrentUser(ctx context.Context) *bffauth.Credentials {
	creds, err := c.Sessions.Store.Load(ctx)
	if err != nil {
		return nil
	}
	return creds
}
