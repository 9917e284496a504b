package bffauth

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists credentials as a JSON file with 0600 permissions.
// Suitable for CLI tools and daemons; mobile hosts would swap in a
// secure-enclave-backed implementation of [CredentialsStore] instead.
type FileStore struct {
	Path string

	lk sync.Mutex
}

var _ CredentialsStore = &FileStore{}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (s *FileStore) Save(ctx context.Context, creds *Credentials) error {
	s.lk.Lock()
	defer s.lk.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.Path), 0700); err != nil {
		return err
	}

	f, err := os.OpenFile(s.Path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	credBytes, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	_, err = f.Write(credBytes)
	return err
}

func (s *FileStore) Load(ctx context.Context) (*Credentials, error) {
	s.lk.Lock()
	defer s.lk.Unlock()

	credBytes, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var creds Credentials
	if err := json.Unmarshal(credBytes, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

func (s *FileStore) Clear(ctx context.Context) error {
	s.lk.Lock()
	defer s.lk.Unlock()

	err := os.Remove(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
