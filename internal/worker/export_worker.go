// Package worker mirrors the stored journal into the spreadsheet exporter.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"equanima/internal/amqp"
	"equanima/internal/journal"
	"equanima/internal/sheets"
	"equanima/internal/storage"
)

// VersionedStore is a document store that can report write counts.
type VersionedStore interface {
	storage.DocumentStore
	storage.Versioned
}

// ExportWorker re-exports the whole journal whenever the stored document
// changes. Calls are serialized.
type ExportWorker struct {
	store    VersionedStore
	exporter sheets.JournalExporter
	key      string

	mu           sync.Mutex
	lastExported int64
}

func NewExportWorker(store VersionedStore, exporter sheets.JournalExporter, key string) *ExportWorker {
	return &ExportWorker{
		store:        store,
		exporter:     exporter,
		key:          key,
		lastExported: -1,
	}
}

// HandleChange processes one change notification from AMQP.
func (w *ExportWorker) HandleChange(ctx context.Context, msg *amqp.JournalChangedMessage) error {
	if msg.Key != w.key {
		slog.DebugContext(ctx, "Ignoring change for another journal", "key", msg.Key)
		return nil
	}
	slog.InfoContext(ctx, "Processing journal change",
		"operation", msg.Operation,
		"entry_id", msg.EntryID,
		"timestamp", msg.Timestamp)

	_, err := w.Sync(ctx)
	return err
}

// Sync exports the document if its version moved since the last export and
// reports whether anything was written.
func (w *ExportWorker) Sync(ctx context.Context) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	version, err := w.store.Version(ctx, w.key)
	if err != nil {
		return false, fmt.Errorf("read journal version: %w", err)
	}
	if version == w.lastExported {
		slog.DebugContext(ctx, "Journal unchanged, skipping export", "version", version)
		return false, nil
	}

	doc, found, err := w.store.Load(ctx, w.key)
	if err != nil {
		return false, fmt.Errorf("load journal: %w", err)
	}
	if !found {
		slog.InfoContext(ctx, "No journal stored yet, nothing to export", "key", w.key)
		w.lastExported = version
		return false, nil
	}

	entries, err := journal.DecodeDocument(doc)
	if err != nil {
		// A broken document must not wipe the sheet; wait for the next write.
		slog.WarnContext(ctx, "Stored journal is malformed, export skipped",
			"key", w.key, "version", version, "error", err)
		w.lastExported = version
		return false, nil
	}

	rows, err := w.exporter.ExportEntries(ctx, entries)
	if err != nil {
		return false, fmt.Errorf("export journal: %w", err)
	}

	w.lastExported = version
	slog.InfoContext(ctx, "Journal exported", "version", version, "rows", rows)
	return true, nil
}

// RunPeriodic calls Sync on every tick until ctx is done. Export failures are
// logged and retried on the next tick.
func (w *ExportWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.Sync(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic export failed", "error", err)
			}
		}
	}
}
