package bffauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthStateTransitions(t *testing.T) {
	assert := assert.New(t)

	creds := testCredentials()

	assert.True(Unauthenticated().CanTransitionTo(StatusAuthenticating))
	assert.False(Unauthenticated().CanTransitionTo(StatusAuthenticated))

	assert.True(Authenticating().CanTransitionTo(StatusAuthenticated))
	assert.True(Authenticating().CanTransitionTo(StatusError))
	assert.False(Authenticating().CanTransitionTo(StatusRefreshing))

	assert.True(Authenticated(creds).CanTransitionTo(StatusRefreshing))
	assert.True(Authenticated(creds).CanTransitionTo(StatusSessionExpired))
	assert.False(Authenticated(creds).CanTransitionTo(StatusAuthenticating))

	assert.True(SessionExpired(creds).CanTransitionTo(StatusRefreshing))
	assert.False(SessionExpired(creds).CanTransitionTo(StatusAuthenticated))

	assert.True(Refreshing(creds).CanTransitionTo(StatusAuthenticated))
	assert.True(Refreshing(creds).CanTransitionTo(StatusError))
	assert.False(Refreshing(creds).CanTransitionTo(StatusSessionExpired))

	// sign-out resets from anywhere
	for _, s := range []AuthState{
		Unauthenticated(),
		Authenticating(),
		Authenticated(creds),
		SessionExpired(creds),
		Refreshing(creds),
		Errored(ErrSessionExpired),
	} {
		assert.True(s.CanTransitionTo(StatusUnauthenticated))
	}
}
