package bffauth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCredentialsValidity(t *testing.T) {
	assert := assert.New(t)

	creds := Credentials{
		Handle:       "user1.example.com",
		AccessToken:  BackendManagedToken,
		RefreshToken: BackendManagedToken,
		DID:          "did:plc:abc234",
		PDSURL:       BackendResolvedPDS,
		ExpiresAt:    time.Now().Add(24 * time.Hour),
	}
	assert.True(creds.IsValid())
	assert.False(creds.IsExpired())

	// expiration is not part of validity: an expired-but-intact record is
	// still refreshable
	expired := creds
	expired.ExpiresAt = time.Now().Add(-time.Hour)
	assert.True(expired.IsValid())
	assert.True(expired.IsExpired())

	for _, mutate := range []func(*Credentials){
		func(c *Credentials) { c.Handle = "" },
		func(c *Credentials) { c.AccessToken = "" },
		func(c *Credentials) { c.RefreshToken = "" },
		func(c *Credentials) { c.DID = "" },
		func(c *Credentials) { c.PDSURL = "" },
	} {
		broken := creds
		mutate(&broken)
		assert.False(broken.IsValid())
	}
}

func TestCredentialsExpiryHorizon(t *testing.T) {
	assert := assert.New(t)

	// fewer than 300 seconds remaining counts as expired
	creds := Credentials{ExpiresAt: time.Now().Add(2 * time.Minute)}
	assert.True(creds.IsExpired())

	creds.ExpiresAt = time.Now().Add(10 * time.Minute)
	assert.False(creds.IsExpired())
	assert.True(creds.ExpiresWithin(time.Hour))
	assert.False(creds.ExpiresWithin(time.Minute))
}

func TestConfigValidate(t *testing.T) {
	assert := assert.New(t)

	valid := testConfig("https://bff.example.com")
	assert.NoError(valid.Validate())

	for _, mutate := range []func(*Config){
		func(c *Config) { c.AppURL = "" },
		func(c *Config) { c.AppURL = "not a url" },
		func(c *Config) { c.UserAgent = "" },
		func(c *Config) { c.SessionCookieName = "" },
		func(c *Config) { c.CookieDomain = "" },
		func(c *Config) { c.CallbackScheme = "" },
		func(c *Config) { c.SessionDuration = 0 },
		func(c *Config) { c.RefreshThreshold = 0 },
		func(c *Config) { c.MaxRetryAttempts = -1 },
		func(c *Config) { c.MaxBackoffDelay = -time.Second },
	} {
		broken := *valid
		mutate(&broken)
		assert.ErrorIs(broken.Validate(), ErrInvalidConfig)
	}
}
