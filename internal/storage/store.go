// Package storage persists the journal as a single serialized document per key.
package storage

import (
	"context"
	"errors"
)

// DocumentStore is the key/value port the journal persists through.
// Save replaces the whole document; the last write wins.
type DocumentStore interface {
	Load(ctx context.Context, key string) (doc []byte, found bool, err error)
	Save(ctx context.Context, key string, doc []byte) error
}

// Versioned is implemented by stores that count writes per key.
type Versioned interface {
	Version(ctx context.Context, key string) (int64, error)
}

var ErrEmptyKey = errors.New("document key cannot be empty")
