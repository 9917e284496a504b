package bffauth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bluesky-social/indigo/atproto/syntax"

	"golang.org/x/sync/singleflight"
)

// Backend paths for the BFF session lifecycle.
const (
	mobileAuthPath   = "/mobile-auth"
	sessionCheckPath = "/api/auth/session"
	refreshTokenPath = "/mobile/refresh-token"
)

// Callback query parameters. The web authentication surface cannot share
// cookie storage with the app's HTTP stack, so the backend smuggles the
// session token through the redirect URL.
const (
	callbackParamDID   = "did"
	callbackParamToken = "session_token"
)

// Coordinator drives the backend-for-frontend OAuth lifecycle: start,
// complete, refresh, sign out. It is stateless between calls; every method
// loads what it needs from the credentials store and cookie manager.
// Safe for concurrent use.
type Coordinator struct {
	// HTTP client for backend calls. Must share a cookie jar with Cookies
	// so the session cookie rides along implicitly. Defaults to
	// http.DefaultClient.
	Client *http.Client

	Config  *Config
	Store   CredentialsStore
	Cookies SessionCookieManager

	// Defaults to slog.Default().
	Logger *slog.Logger

	// Collapses concurrent refreshes for the same account into one backend
	// round trip.
	refreshes singleflight.Group
}

func (co *Coordinator) httpClient() *http.Client {
	if co.Client == nil {
		return http.DefaultClient
	}
	return co.Client
}

func (co *Coordinator) logger() *slog.Logger {
	if co.Logger == nil {
		return slog.Default()
	}
	return co.Logger
}

// StartOAuthFlow returns the hosted authorization page URL the caller must
// present in a web authentication surface. Pure URL composition; the backend
// performs the actual OAuth exchange when the page is loaded.
func (co *Coordinator) StartOAuthFlow() string {
	return strings.TrimSuffix(co.Config.AppURL, "/") + mobileAuthPath
}

type sessionCheckResponse struct {
	UserHandle string `json:"userHandle"`
	DID        string `json:"did,omitempty"`
}

// CompleteOAuthFlow consumes the redirect URL produced after the backend
// finishes its half of OAuth. It extracts the account DID and session token,
// materializes the session cookie, and validates the new session against the
// backend. The returned credentials are not persisted; that is the caller's
// responsibility.
func (co *Coordinator) CompleteOAuthFlow(ctx context.Context, callbackURL string) (*Credentials, error) {
	log := co.logger().With("category", "oauth")

	u, err := url.Parse(callbackURL)
	if err != nil {
		return nil, fmt.Errorf("%w: callback URL did not parse: %v", ErrInvalidCredentials, err)
	}
	if u.RawQuery == "" {
		return nil, fmt.Errorf("%w: callback URL has no query component", ErrInvalidCredentials)
	}
	params := u.Query()
	didParam := params.Get(callbackParamDID)
	token := params.Get(callbackParamToken)
	if didParam == "" || token == "" {
		log.Warn("callback missing required parameters",
			"hasDID", didParam != "",
			"hasSessionToken", token != "")
		return nil, fmt.Errorf("%w: callback requires both %s and %s parameters", ErrInvalidCredentials, callbackParamDID, callbackParamToken)
	}
	did, err := syntax.ParseDID(didParam)
	if err != nil {
		return nil, fmt.Errorf("%w: callback DID invalid: %v", ErrInvalidCredentials, err)
	}

	saved, err := co.Cookies.SetSession(token)
	if err != nil {
		return nil, &StorageError{Op: "cookie save", Err: err}
	}
	log.Debug("session cookie established", "domain", saved.Domain, "expiresAt", saved.ExpiresAt)

	handle, err := co.validateSession(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	creds := &Credentials{
		Handle:       handle,
		AccessToken:  BackendManagedToken,
		RefreshToken: BackendManagedToken,
		DID:          did,
		PDSURL:       BackendResolvedPDS,
		ExpiresAt:    now.Add(co.Config.SessionDuration),
		SessionID:    token,
		CreatedAt:    now,
	}
	log.Info("oauth flow complete", "did", creds.DID, "handle", creds.Handle)
	return creds, nil
}

// validateSession checks the freshly-set cookie against the backend and
// returns the account handle. The backend is a black box here: a rejected,
// garbled, or incomplete response all mean the callback did not produce a
// usable session.
func (co *Coordinator) validateSession(ctx context.Context) (syntax.Handle, error) {
	log := co.logger().With("category", "auth")

	req, err := co.newRequest(ctx, http.MethodGet, sessionCheckPath)
	if err != nil {
		return "", err
	}
	resp, err := co.httpClient().Do(req)
	if err != nil {
		log.Warn("session validation transport failure", "err", err)
		return "", &NetworkError{Detail: "session validation", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn("session validation rejected", "statusCode", resp.StatusCode)
		return "", fmt.Errorf("%w: session validation returned HTTP %d", ErrInvalidCredentials, resp.StatusCode)
	}

	var out sessionCheckResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Warn("session validation body did not decode", "err", err)
		return "", fmt.Errorf("%w: session validation body did not decode", ErrInvalidCredentials)
	}
	if out.UserHandle == "" {
		log.Warn("session validation response missing handle")
		return "", fmt.Errorf("%w: session validation response missing handle", ErrInvalidCredentials)
	}
	handle, err := syntax.ParseHandle(out.UserHandle)
	if err != nil {
		return "", fmt.Errorf("%w: session validation returned invalid handle: %v", ErrInvalidCredentials, err)
	}
	return handle, nil
}

type refreshResponse struct {
	Success bool            `json:"success"`
	Payload *refreshPayload `json:"payload"`
}

type refreshPayload struct {
	DID string `json:"did"`
	SID string `json:"sid"`
}

// RefreshSession extends the current backend session, overwriting the
// session cookie and the stored credentials with the new token and expiry.
//
// With no stored credentials, or when the backend definitively rejects the
// session, this fails with [ErrSessionExpired] (a fresh sign-in is needed).
// Transport-level failures surface as [*NetworkError] instead: the session
// may still be good, and the caller can retry later.
//
// Concurrent refreshes for the same account collapse into a single backend
// round trip; all callers observe the same result.
func (co *Coordinator) RefreshSession(ctx context.Context) (*Credentials, error) {
	log := co.logger().With("category", "session")

	prior, err := co.Store.Load(ctx)
	if err != nil {
		return nil, &StorageError{Op: "load", Err: err}
	}
	if prior == nil {
		log.Warn("refresh requested with no stored credentials")
		return nil, fmt.Errorf("%w: no stored credentials to refresh", ErrSessionExpired)
	}

	v, err, _ := co.refreshes.Do(prior.DID.String(), func() (any, error) {
		return co.doRefresh(ctx, prior)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Credentials), nil
}

func (co *Coordinator) doRefresh(ctx context.Context, prior *Credentials) (*Credentials, error) {
	log := co.logger().With("category", "session")

	req, err := co.newRequest(ctx, http.MethodGet, refreshTokenPath)
	if err != nil {
		return nil, err
	}
	resp, err := co.httpClient().Do(req)
	if err != nil {
		log.Warn("session refresh transport failure", "err", err)
		return nil, &NetworkError{Detail: "session refresh", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn("session refresh rejected", "statusCode", resp.StatusCode)
		return nil, fmt.Errorf("%w: refresh returned HTTP %d", ErrSessionExpired, resp.StatusCode)
	}

	// A malformed refresh response is operationally indistinguishable from
	// "the session is gone"; there is no safe partial-refresh state.
	var out refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Warn("session refresh body did not decode", "err", err)
		return nil, fmt.Errorf("%w: refresh body did not decode", ErrSessionExpired)
	}
	if !out.Success || out.Payload == nil || out.Payload.DID == "" || out.Payload.SID == "" {
		log.Warn("session refresh response incomplete", "success", out.Success, "hasPayload", out.Payload != nil)
		return nil, fmt.Errorf("%w: refresh response incomplete", ErrSessionExpired)
	}
	did, err := syntax.ParseDID(out.Payload.DID)
	if err != nil {
		return nil, fmt.Errorf("%w: refresh response DID invalid: %v", ErrSessionExpired, err)
	}

	if _, err := co.Cookies.SetSession(out.Payload.SID); err != nil {
		return nil, &StorageError{Op: "cookie save", Err: err}
	}

	now := time.Now()
	next := &Credentials{
		Handle:       prior.Handle,
		AccessToken:  BackendManagedToken,
		RefreshToken: BackendManagedToken,
		DID:          did,
		PDSURL:       prior.PDSURL,
		ExpiresAt:    now.Add(co.Config.SessionDuration),
		SessionID:    out.Payload.SID,
		CreatedAt:    now,
	}
	if err := co.Store.Save(ctx, next); err != nil {
		return nil, &StorageError{Op: "save", Err: err}
	}
	log.Info("session refreshed", "did", next.DID, "expiresAt", next.ExpiresAt)
	return next, nil
}

// SignOut clears the stored credentials and drops the session cookie.
func (co *Coordinator) SignOut(ctx context.Context) error {
	log := co.logger().With("category", "auth")

	if err := co.Store.Clear(ctx); err != nil {
		return &StorageError{Op: "clear", Err: err}
	}
	if err := co.Cookies.Clear(); err != nil {
		return &StorageError{Op: "cookie clear", Err: err}
	}
	log.Info("signed out")
	return nil
}

func (co *Coordinator) newRequest(ctx context.Context, method, path string) (*http.Request, error) {
	u := strings.TrimSuffix(co.Config.AppURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", co.Config.UserAgent)
	req.Header.Set("Accept", "application/json")
	return req, nil
}
