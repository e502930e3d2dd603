package backend

import (
	"context"
	"fmt"

	"equanima/internal/amqp"
	"equanima/internal/journal"
	applog "equanima/internal/log"
	"equanima/internal/storage"
	"equanima/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.FromSlog(nil, "")
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		res *BackendResult
		err error
	)
	switch config.Type {
	case SQLiteBackend:
		res, err = f.createSQLiteBackend(config)
	case MemoryBackend:
		res, err = f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	if err := res.Journal.Open(ctx); err != nil {
		res.Cleanup()
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return res, nil
}

func (f *DefaultFactory) journalOptions(config Config) []journal.Option {
	opts := []journal.Option{
		journal.WithKey(config.JournalKey),
		journal.WithLogger(f.logger),
	}
	if !config.Seed {
		opts = append(opts, journal.WithoutSeed())
	}
	return opts
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	store, err := storage.NewSQLiteStore(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}

	opts := f.journalOptions(config)

	// Change events are optional; the journal works without them.
	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without change events", applog.FieldError, err)
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			opts = append(opts, journal.WithPublisher(amqpClient))
		}
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", amqpClient != nil)

	cleanup := func() error {
		var errs []error
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				errs = append(errs, fmt.Errorf("amqp: %w", err))
			}
		}
		if err := store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
		if len(errs) > 0 {
			return fmt.Errorf("close sqlite backend: %v", errs)
		}
		return nil
	}

	return &BackendResult{
		Journal: journal.New(store, opts...),
		Store:   store,
		Ready:   store.Ping,
		Cleanup: cleanup,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}

	store, err := memory.NewFromFile(dataDir, config.JournalKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize memory store: %w", err)
	}
	if config.AMQPURL != "" {
		f.logger.Warn("AMQP_URL is ignored by the memory backend")
	}

	f.logger.Info("Initialized memory backend", "data_dir", dataDir)

	return &BackendResult{
		Journal: journal.New(store, f.journalOptions(config)...),
		Store:   store,
		Ready:   func(context.Context) error { return nil },
		Cleanup: func() error { return nil },
	}, nil
}
