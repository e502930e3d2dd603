// Package memory is an in-process DocumentStore for development and tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"equanima/internal/storage"
)

// SeedFile is the file NewFromFile looks for in the data directory.
const SeedFile = "entries.json"

type Store struct {
	mu       sync.Mutex
	docs     map[string][]byte
	versions map[string]int64
}

func New() *Store {
	return &Store{docs: map[string][]byte{}, versions: map[string]int64{}}
}

// NewFromFile returns a store whose key starts with the contents of
// <base>/entries.json. A missing file leaves the key absent so the journal
// seeds its demo entries; the contents are not parsed here.
func NewFromFile(base, key string) (*Store, error) {
	s := New()
	b, err := os.ReadFile(filepath.Join(base, SeedFile))
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	s.docs[key] = b
	s.versions[key] = 1
	return s, nil
}

// Load implements storage.DocumentStore.
func (s *Store) Load(_ context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, storage.ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), doc...), true, nil
}

// Save implements storage.DocumentStore.
func (s *Store) Save(_ context.Context, key string, doc []byte) error {
	if key == "" {
		return storage.ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = append([]byte(nil), doc...)
	s.versions[key]++
	return nil
}

// Version implements storage.Versioned.
func (s *Store) Version(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.versions[key], nil
}
