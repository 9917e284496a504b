package bffauth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCredentials() *Credentials {
	return &Credentials{
		Handle:       "user1.example.com",
		AccessToken:  BackendManagedToken,
		RefreshToken: BackendManagedToken,
		DID:          "did:plc:abc234",
		PDSURL:       BackendResolvedPDS,
		ExpiresAt:    time.Now().Add(24 * time.Hour).Round(time.Millisecond),
		SessionID:    "tok123",
		CreatedAt:    time.Now().Round(time.Millisecond),
	}
}

func TestMemStore(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	store := NewMemStore()

	// empty store is not an error
	creds, err := store.Load(ctx)
	require.NoError(err)
	assert.Nil(creds)

	orig := testCredentials()
	require.NoError(store.Save(ctx, orig))

	loaded, err := store.Load(ctx)
	require.NoError(err)
	require.NotNil(loaded)
	assert.Equal(orig, loaded)

	// records are overwritten, never mutated in place
	loaded.SessionID = "mutated"
	reloaded, err := store.Load(ctx)
	require.NoError(err)
	assert.Equal("tok123", reloaded.SessionID)

	require.NoError(store.Clear(ctx))
	creds, err = store.Load(ctx)
	require.NoError(err)
	assert.Nil(creds)
}

func TestFileStoreRoundTrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	store := NewFileStore(filepath.Join(t.TempDir(), "state", "auth-session.json"))

	// missing file is an empty store, not an error
	creds, err := store.Load(ctx)
	require.NoError(err)
	assert.Nil(creds)
	require.NoError(store.Clear(ctx))

	orig := testCredentials()
	require.NoError(store.Save(ctx, orig))

	loaded, err := store.Load(ctx)
	require.NoError(err)
	require.NotNil(loaded)
	assert.Equal(orig.Handle, loaded.Handle)
	assert.Equal(orig.DID, loaded.DID)
	assert.Equal(orig.SessionID, loaded.SessionID)
	assert.Equal(orig.PDSURL, loaded.PDSURL)
	assert.True(orig.ExpiresAt.Equal(loaded.ExpiresAt))

	require.NoError(store.Clear(ctx))
	creds, err = store.Load(ctx)
	require.NoError(err)
	assert.Nil(creds)
}

func TestJarCookieManager(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	cfg := testConfig("https://bff.example.com")
	mgr, err := NewJarCookieManager(cfg)
	require.NoError(err)

	assert.Nil(mgr.Current())

	saved, err := mgr.SetSession("tok123")
	require.NoError(err)
	assert.Equal("tok123", saved.Token)
	assert.Equal(cfg.CookieDomain, saved.Domain)
	assert.True(saved.ExpiresAt.After(time.Now()))

	current := mgr.Current()
	require.NotNil(current)
	assert.Equal(saved, *current)

	// overwrite replaces, not appends
	saved2, err := mgr.SetSession("tok456")
	require.NoError(err)
	assert.Equal("tok456", mgr.Current().Token)
	assert.True(!saved2.ExpiresAt.Before(saved.ExpiresAt))

	require.NoError(mgr.Clear())
	assert.Nil(mgr.Current())
}
