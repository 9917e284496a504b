package bffauth

// AuthStatus identifies a position in the authentication lifecycle.
type AuthStatus string

const (
	StatusUnauthenticated AuthStatus = "unauthenticated"
	StatusAuthenticating  AuthStatus = "authenticating"
	StatusAuthenticated   AuthStatus = "authenticated"
	StatusSessionExpired  AuthStatus = "session-expired"
	StatusRefreshing      AuthStatus = "refreshing"
	StatusError           AuthStatus = "error"
)

// AuthState is the UI-facing authentication state. The Coordinator itself is
// stateless between calls; callers that want reactive state hold one of
// these and advance it around Coordinator calls.
type AuthState struct {
	Status      AuthStatus
	Credentials *Credentials
	Err         error
}

func Unauthenticated() AuthState {
	return AuthState{Status: StatusUnauthenticated}
}

func Authenticating() AuthState {
	return AuthState{Status: StatusAuthenticating}
}

func Authenticated(creds *Credentials) AuthState {
	return AuthState{Status: StatusAuthenticated, Credentials: creds}
}

func SessionExpired(creds *Credentials) AuthState {
	return AuthState{Status: StatusSessionExpired, Credentials: creds}
}

func Refreshing(creds *Credentials) AuthState {
	return AuthState{Status: StatusRefreshing, Credentials: creds}
}

func Errored(err error) AuthState {
	return AuthState{Status: StatusError, Err: err}
}

// CanTransitionTo reports whether moving to next is a legal lifecycle
// transition. Sign-out (back to unauthenticated) is always allowed.
func (s AuthState) CanTransitionTo(next AuthStatus) bool {
	if next == StatusUnauthenticated {
		return true
	}
	switch s.Status {
	case StatusUnauthenticated:
		return next == StatusAuthenticating
	case StatusAuthenticating:
		return next == StatusAuthenticated || next == StatusError
	case StatusAuthenticated:
		return next == StatusRefreshing || next == StatusSessionExpired
	case StatusSessionExpired:
		return next == StatusRefreshing
	case StatusRefreshing:
		return next == StatusAuthenticated || next == StatusError
	case StatusError:
		return next == StatusAuthenticating
	}
	return false
}
