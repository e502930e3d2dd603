package backend

import (
	"context"

	"equanima/internal/journal"
	"equanima/internal/storage"
)

// CleanupFunc releases the resources a backend opened.
type CleanupFunc func() error

// ReadyFunc reports whether the backend's dependencies are reachable.
type ReadyFunc func(ctx context.Context) error

// BackendResult holds the journal wired to the selected store.
type BackendResult struct {
	Journal *journal.Journal
	Store   storage.DocumentStore
	Ready   ReadyFunc
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	JournalKey string
	Seed       bool

	// SQLite specific
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Memory backend specific
	DataDirectory string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
