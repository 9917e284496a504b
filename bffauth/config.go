package bffauth

import (
	"fmt"
	"net/url"
	"time"
)

// Config is the per-deployment policy for the BFF session flow. Every field
// is required: this package never bakes in production values, so callers
// must be explicit about which backend they talk to and how sessions age.
type Config struct {
	// URL prefix of the backend: scheme, hostname, port. No trailing slash.
	AppURL string

	// Value for the User-Agent header on all outbound requests.
	UserAgent string

	// Name of the backend session cookie (eg, "sid").
	SessionCookieName string

	// Domain the session cookie is scoped to.
	CookieDomain string

	// Custom URL scheme the hosting app registers to recognize the OAuth
	// callback redirect. Not interpreted by this package.
	CallbackScheme string

	// How long a newly-established or refreshed session lives.
	SessionDuration time.Duration

	// How close to expiry the client refreshes proactively before a request.
	RefreshThreshold time.Duration

	// Ceiling on 401-triggered refresh-and-retry attempts per request.
	MaxRetryAttempts int

	// Ceiling on the exponential backoff delay between retry attempts.
	MaxBackoffDelay time.Duration
}

func (c *Config) Validate() error {
	if c.AppURL == "" {
		return fmt.Errorf("%w: app URL is required", ErrInvalidConfig)
	}
	u, err := url.Parse(c.AppURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: app URL must include scheme and host", ErrInvalidConfig)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("%w: user agent is required", ErrInvalidConfig)
	}
	if c.SessionCookieName == "" {
		return fmt.Errorf("%w: session cookie name is required", ErrInvalidConfig)
	}
	if c.CookieDomain == "" {
		return fmt.Errorf("%w: cookie domain is required", ErrInvalidConfig)
	}
	if c.CallbackScheme == "" {
		return fmt.Errorf("%w: callback URL scheme is required", ErrInvalidConfig)
	}
	if c.SessionDuration <= 0 {
		return fmt.Errorf("%w: session duration must be positive", ErrInvalidConfig)
	}
	if c.RefreshThreshold <= 0 {
		return fmt.Errorf("%w: refresh threshold must be positive", ErrInvalidConfig)
	}
	if c.MaxRetryAttempts < 0 {
		return fmt.Errorf("%w: max retry attempts must not be negative", ErrInvalidConfig)
	}
	if c.MaxBackoffDelay < 0 {
		return fmt.Errorf("%w: max backoff delay must not be negative", ErrInvalidConfig)
	}
	return nil
}
