package bffauth

import (
	"context"
)

// CredentialsStore persists the single current-credentials record. The store
// is the source of truth for "what session do we currently think we have";
// the coordinator and client hold no session state of their own.
//
// Save, Load, and Clear must each be individually atomic, but this package
// does not compose them into read-modify-write transactions. Implementations
// should allow concurrent access.
type CredentialsStore interface {
	Save(ctx context.Context, creds *Credentials) error

	// Load returns the stored credentials, or (nil, nil) when nothing has
	// been saved. An empty store is not an error.
	Load(ctx context.Context) (*Credentials, error)

	Clear(ctx context.Context) error
}
