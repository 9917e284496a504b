package bffauth

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"
)

// SavedSessionCookie describes the session cookie most recently written by a
// cookie manager. Used to verify coordinator behavior; not production state.
type SavedSessionCookie struct {
	Token     string
	ExpiresAt time.Time
	Domain    string
}

// SessionCookieManager owns the single named session cookie. The
// authentication web surface and the app's HTTP stack do not share cookie
// storage, so the coordinator materializes the cookie here from the token
// smuggled through the callback URL.
type SessionCookieManager interface {
	// SetSession writes the session cookie for token, replacing any prior one.
	SetSession(token string) (SavedSessionCookie, error)

	// Clear drops the session cookie.
	Clear() error

	// Current returns the last-saved cookie, or nil if none has been set
	// since construction (or since Clear).
	Current() *SavedSessionCookie
}

// JarCookieManager keeps the session cookie in an [http.CookieJar] shared
// with the HTTP client, so ordinary requests carry the session implicitly.
//
// The cookie is stored host-only against the app URL (the backend is the
// only host this client talks to); the configured cookie domain is recorded
// on the SavedSessionCookie for verification.
type JarCookieManager struct {
	Jar    http.CookieJar
	Config *Config

	lk   sync.Mutex
	last *SavedSessionCookie
}

var _ SessionCookieManager = &JarCookieManager{}

// NewJarCookieManager builds a manager around a fresh cookie jar. Attach the
// returned manager's Jar to the http.Client used for backend requests.
func NewJarCookieManager(cfg *Config) (*JarCookieManager, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &JarCookieManager{Jar: jar, Config: cfg}, nil
}

func (m *JarCookieManager) cookieURL() (*url.URL, error) {
	u, err := url.Parse(m.Config.AppURL)
	if err != nil {
		return nil, err
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: app URL missing host", ErrInvalidConfig)
	}
	u.Path = "/"
	return u, nil
}

func (m *JarCookieManager) SetSession(token string) (SavedSessionCookie, error) {
	u, err := m.cookieURL()
	if err != nil {
		return SavedSessionCookie{}, err
	}

	expires := time.Now().Add(m.Config.SessionDuration)
	m.Jar.SetCookies(u, []*http.Cookie{{
		Name:    m.Config.SessionCookieName,
		Value:   token,
		Path:    "/",
		Secure:  true,
		Expires: expires,
	}})

	saved := SavedSessionCookie{
		Token:     token,
		ExpiresAt: expires,
		Domain:    m.Config.CookieDomain,
	}
	m.lk.Lock()
	m.last = &saved
	m.lk.Unlock()
	return saved, nil
}

func (m *JarCookieManager) Clear() error {
	u, err := m.cookieURL()
	if err != nil {
		return err
	}
	m.Jar.SetCookies(u, []*http.Cookie{{
		Name:   m.Config.SessionCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	}})

	m.lk.Lock()
	m.last = nil
	m.lk.Unlock()
	return nil
}

func (m *JarCookieManager) Current() *SavedSessionCookie {
	m.lk.Lock()
	defer m.lk.Unlock()
	if m.last == nil {
		return nil
	}
	saved := *m.last
	return &saved
}
