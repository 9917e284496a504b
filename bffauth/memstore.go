package bffauth

import (
	"context"
	"sync"
)

// MemStore is a simple in-memory implementation of [CredentialsStore], for
// use in development and tests. All sessions are lost when the process
// exits.
type MemStore struct {
	lk    sync.Mutex
	creds *Credentials
}

var _ CredentialsStore = &MemStore{}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (m *MemStore) Save(ctx context.Context, creds *Credentials) error {
	m.lk.Lock()
	defer m.lk.Unlock()

	c := *creds
	m.creds = &c
	return nil
}

func (m *MemStore) Load(ctx context.Context) (*Credentials, error) {
	m.lk.Lock()
	defer m.lk.Unlock()

	if m.creds == nil {
		return nil, nil
	}
	c := *m.creds
	return &c, nil
}

func (m *MemStore) Clear(ctx context.Context) error {
	m.lk.Lock()
	defer m.lk.Unlock()

	m.creds = nil
	return nil
}
