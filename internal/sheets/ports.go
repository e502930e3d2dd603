// Package sheets defines the outbound ports for mirroring the journal to a
// spreadsheet.
package sheets

import (
	"context"

	"equanima/internal/core"
)

// JournalExporter replaces the exported copy of the journal with entries and
// returns the number of data rows written.
type JournalExporter interface {
	ExportEntries(ctx context.Context, entries []core.MoodEntry) (int, error)
}
