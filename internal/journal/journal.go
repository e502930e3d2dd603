// Package journal owns the ordered list of mood entries, persists it as one
// document and derives the weekly views from it.
package journal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"equanima/internal/core"
	applog "equanima/internal/log"
	"equanima/internal/storage"
)

// DefaultKey is the document key the entry list is stored under.
const DefaultKey = "equanima_mood_entries"

// Change operations reported to the publisher.
const (
	OpAdd    = "add"
	OpUpdate = "update"
	OpDelete = "delete"
)

// ChangePublisher is notified after every successful write.
type ChangePublisher interface {
	PublishJournalChanged(ctx context.Context, key, operation, entryID string) error
}

// Journal is safe for concurrent use. Every operation runs under one lock so
// each mutation is a whole-list read-modify-write. Change events are published
// after the lock is released.
type Journal struct {
	store     storage.DocumentStore
	key       string
	now       func() time.Time
	newID     func() string
	publisher ChangePublisher
	logger    *applog.Logger
	seed      bool

	mu      sync.Mutex
	loaded  bool
	entries []core.MoodEntry
}

type Option func(*Journal)

func WithClock(now func() time.Time) Option {
	return func(j *Journal) { j.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(j *Journal) { j.newID = gen }
}

func WithPublisher(p ChangePublisher) Option {
	return func(j *Journal) { j.publisher = p }
}

func WithLogger(l *applog.Logger) Option {
	return func(j *Journal) { j.logger = l.WithComponent(applog.ComponentJournal) }
}

// WithKey stores the list under key instead of DefaultKey.
func WithKey(key string) Option {
	return func(j *Journal) { j.key = key }
}

// WithoutSeed starts an absent document as an empty journal.
func WithoutSeed() Option {
	return func(j *Journal) { j.seed = false }
}

func New(store storage.DocumentStore, opts ...Option) *Journal {
	j := &Journal{
		store:  store,
		key:    DefaultKey,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: applog.FromSlog(nil, applog.ComponentJournal),
		seed:   true,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Key returns the document key.
func (j *Journal) Key() string { return j.key }

// Open loads the document now instead of on first use.
func (j *Journal) Open(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.ensureLoaded(ctx)
}

func (j *Journal) ensureLoaded(ctx context.Context) error {
	if j.loaded {
		return nil
	}

	doc, found, err := j.store.Load(ctx, j.key)
	if err != nil {
		return fmt.Errorf("load journal: %w", err)
	}

	switch {
	case !found && j.seed:
		seeded := demoEntries(j.now(), j.newID)
		if err := j.persist(ctx, seeded); err != nil {
			return fmt.Errorf("seed journal: %w", err)
		}
		j.entries = seeded
		j.logger.InfoContext(ctx, "Journal seeded with demo entries",
			applog.FieldKey, j.key, applog.FieldEntries, len(seeded))
	case !found:
		j.entries = []core.MoodEntry{}
	default:
		entries, err := DecodeDocument(doc)
		if err != nil {
			// Leave the stored bytes alone; the next mutation replaces them.
			j.logger.WarnContext(ctx, "Stored journal is malformed, starting empty",
				applog.FieldKey, j.key, applog.FieldError, err)
			entries = []core.MoodEntry{}
		}
		j.entries = entries
		j.logger.DebugContext(ctx, "Journal loaded",
			applog.FieldKey, j.key, applog.FieldEntries, len(entries))
	}

	j.loaded = true
	return nil
}

func (j *Journal) persist(ctx context.Context, entries []core.MoodEntry) error {
	doc, err := EncodeDocument(entries)
	if err != nil {
		return err
	}
	if err := j.store.Save(ctx, j.key, doc); err != nil {
		return fmt.Errorf("save journal: %w", err)
	}
	return nil
}

// commit persists next and makes it the current list. On failure the current
// list is left as it was.
func (j *Journal) commit(ctx context.Context, next []core.MoodEntry) error {
	if err := j.persist(ctx, next); err != nil {
		return err
	}
	j.entries = next
	return nil
}

// notify runs after the lock is released; readers never wait on the broker.
func (j *Journal) notify(ctx context.Context, op, id string) {
	if j.publisher == nil {
		return
	}
	if err := j.publisher.PublishJournalChanged(ctx, j.key, op, id); err != nil {
		j.logger.ErrorContext(ctx, "Failed to publish journal change",
			applog.FieldOperation, op, applog.FieldEntryID, id, applog.FieldError, err)
	}
}

// AddEntry appends the entry with a fresh id. Ranges are not checked here.
func (j *Journal) AddEntry(ctx context.Context, e core.NewEntry) (core.MoodEntry, error) {
	entry, err := j.add(ctx, e)
	if err != nil {
		return core.MoodEntry{}, err
	}
	j.notify(ctx, OpAdd, entry.ID)
	return entry, nil
}

func (j *Journal) add(ctx context.Context, e core.NewEntry) (core.MoodEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.ensureLoaded(ctx); err != nil {
		return core.MoodEntry{}, err
	}

	entry := e.WithID(j.newID())
	next := make([]core.MoodEntry, 0, len(j.entries)+1)
	next = append(next, j.entries...)
	next = append(next, entry)

	if err := j.commit(ctx, next); err != nil {
		return core.MoodEntry{}, err
	}
	return entry.Clone(), nil
}

// UpdateEntry merges patch into the first entry with id. An unknown id is a
// no-op and nothing is written.
func (j *Journal) UpdateEntry(ctx context.Context, id string, patch core.EntryPatch) error {
	updated, err := j.update(ctx, id, patch)
	if err != nil || !updated {
		return err
	}
	j.notify(ctx, OpUpdate, id)
	return nil
}

func (j *Journal) update(ctx context.Context, id string, patch core.EntryPatch) (bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.ensureLoaded(ctx); err != nil {
		return false, err
	}

	idx := -1
	for i := range j.entries {
		if j.entries[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		j.logger.DebugContext(ctx, "Update ignored, entry not found", applog.FieldEntryID, id)
		return false, nil
	}

	next := make([]core.MoodEntry, len(j.entries))
	copy(next, j.entries)
	next[idx] = patch.Apply(j.entries[idx])

	if err := j.commit(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteEntry removes every entry with id and writes the list back. Deleting
// an unknown id is safe.
func (j *Journal) DeleteEntry(ctx context.Context, id string) error {
	if err := j.delete(ctx, id); err != nil {
		return err
	}
	j.notify(ctx, OpDelete, id)
	return nil
}

func (j *Journal) delete(ctx context.Context, id string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.ensureLoaded(ctx); err != nil {
		return err
	}

	next := make([]core.MoodEntry, 0, len(j.entries))
	for _, e := range j.entries {
		if e.ID != id {
			next = append(next, e)
		}
	}
	return j.commit(ctx, next)
}

// snapshot returns a deep copy of the list and today's date.
func (j *Journal) snapshot(ctx context.Context) ([]core.MoodEntry, core.Date, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.ensureLoaded(ctx); err != nil {
		return nil, core.Date{}, err
	}
	out := make([]core.MoodEntry, len(j.entries))
	for i, e := range j.entries {
		out[i] = e.Clone()
	}
	return out, core.DateOf(j.now()), nil
}

// Entries returns all entries in insertion order.
func (j *Journal) Entries(ctx context.Context) ([]core.MoodEntry, error) {
	entries, _, err := j.snapshot(ctx)
	return entries, err
}

// Entry returns the first entry with id.
func (j *Journal) Entry(ctx context.Context, id string) (core.MoodEntry, bool, error) {
	entries, _, err := j.snapshot(ctx)
	if err != nil {
		return core.MoodEntry{}, false, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, true, nil
		}
	}
	return core.MoodEntry{}, false, nil
}

// WeeklyData returns the seven days ending today, oldest first.
func (j *Journal) WeeklyData(ctx context.Context) ([]core.DayPoint, error) {
	entries, today, err := j.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return core.WeeklySeries(entries, today), nil
}

func (j *Journal) Trend(ctx context.Context) (core.TrendSummary, error) {
	week, err := j.WeeklyData(ctx)
	if err != nil {
		return core.TrendSummary{}, err
	}
	return core.ComputeTrend(week), nil
}

// Distribution counts moods over the whole history.
func (j *Journal) Distribution(ctx context.Context) (core.Distribution, error) {
	entries, _, err := j.snapshot(ctx)
	if err != nil {
		return core.Distribution{}, err
	}
	return core.ComputeDistribution(entries), nil
}

// Overview builds every dashboard view from a single snapshot.
func (j *Journal) Overview(ctx context.Context, recent int) (core.Overview, error) {
	entries, today, err := j.snapshot(ctx)
	if err != nil {
		return core.Overview{}, err
	}
	return core.BuildOverview(entries, today, recent), nil
}
