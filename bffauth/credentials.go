package bffauth

import (
	"time"

	"github.com/bluesky-social/indigo/atproto/syntax"
)

// Placeholder values for token fields. Under the backend-for-frontend
// pattern the real OAuth tokens never leave the backend; these sentinels
// make it obvious that the local record does not hold usable bearer
// credentials.
const (
	BackendManagedToken = "backend-managed"
	BackendResolvedPDS  = "backend-resolved"
)

// How close to expiry a session counts as expired. Refreshing a few minutes
// early avoids issuing requests with a session that dies mid-flight.
const expiryHorizon = 300 * time.Second

// Credentials is the locally-persisted record of an authenticated backend
// session: account identity plus the opaque session token used to
// reconstruct the session cookie.
type Credentials struct {
	Handle       syntax.Handle `json:"handle"`
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	DID          syntax.DID    `json:"did"`
	PDSURL       string        `json:"pds_url"`
	ExpiresAt    time.Time     `json:"expires_at"`
	AppPassword  string        `json:"app_password,omitempty"`
	SessionID    string        `json:"session_id"`
	CreatedAt    time.Time     `json:"created_at"`
}

// IsValid reports whether the record is structurally complete. Expiration is
// not part of validity: an expired-but-intact record is still refreshable.
func (c *Credentials) IsValid() bool {
	return c.Handle != "" && c.AccessToken != "" && c.RefreshToken != "" && c.DID != "" && c.PDSURL != ""
}

// IsExpired reports whether fewer than five minutes remain on the session.
func (c *Credentials) IsExpired() bool {
	return c.ExpiresWithin(expiryHorizon)
}

// ExpiresWithin reports whether the session expires within d of now.
func (c *Credentials) ExpiresWithin(d time.Duration) bool {
	return time.Until(c.ExpiresAt) < d
}
