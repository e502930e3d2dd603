package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO 8601 calendar date form used on the wire and in storage.
const DateLayout = "2006-01-02"

// Energy and anxiety share the same 1..10 slider range.
const (
	MinLevel       = 1
	MaxLevel       = 10
	DefaultEnergy  = 5
	DefaultAnxiety = 5
)

type (
	// Date is a calendar day. The wrapped time is always midnight UTC so two
	// dates compare equal iff they name the same day.
	Date struct {
		time.Time
	}

	// MoodEntry is one journal record.
	MoodEntry struct {
		ID      string   `json:"id"`
		Date    Date     `json:"date"`
		Mood    Mood     `json:"mood"`
		Energy  int      `json:"energy"`
		Anxiety int      `json:"anxiety"`
		Notes   string   `json:"notes"`
		Tags    []string `json:"tags"`
	}

	// NewEntry is a MoodEntry before the journal assigns its id.
	NewEntry struct {
		Date    Date
		Mood    Mood
		Energy  int
		Anxiety int
		Notes   string
		Tags    []string
	}

	// EntryPatch carries the fields of a partial update. Nil means "keep".
	EntryPatch struct {
		Date    *Date     `json:"date,omitempty"`
		Mood    *Mood     `json:"mood,omitempty"`
		Energy  *int      `json:"energy,omitempty"`
		Anxiety *int      `json:"anxiety,omitempty"`
		Notes   *string   `json:"notes,omitempty"`
		Tags    *[]string `json:"tags,omitempty"`
	}
)

var (
	// ErrInvalidEntry is wrapped by every validation failure below.
	ErrInvalidEntry = errors.New("invalid entry")

	ErrInvalidDate    = fmt.Errorf("%w: invalid date", ErrInvalidEntry)
	ErrInvalidMood    = fmt.Errorf("%w: mood must be one of very-sad, sad, neutral, happy, very-happy", ErrInvalidEntry)
	ErrInvalidEnergy  = fmt.Errorf("%w: energy must be between 1 and 10", ErrInvalidEntry)
	ErrInvalidAnxiety = fmt.Errorf("%w: anxiety must be between 1 and 10", ErrInvalidEntry)
	ErrNotesTooLong   = fmt.Errorf("%w: notes too long (max 2000 characters)", ErrInvalidEntry)
	ErrEmptyTag       = fmt.Errorf("%w: empty tag", ErrInvalidEntry)
)

const maxNotesLength = 2000

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t as observed in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// AddDays shifts the date by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// Equal reports whether both dates name the same day.
func (d Date) Equal(o Date) bool {
	return d.Time.Equal(o.Time)
}

// Before reports whether d is an earlier day than o.
func (d Date) Before(o Date) bool {
	return d.Time.Before(o.Time)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(b))
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Validate checks the ranges the authoring UI enforces. The journal itself
// stores entries without calling this.
func (e NewEntry) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if !e.Mood.Valid() {
		return ErrInvalidMood
	}
	if e.Energy < MinLevel || e.Energy > MaxLevel {
		return ErrInvalidEnergy
	}
	if e.Anxiety < MinLevel || e.Anxiety > MaxLevel {
		return ErrInvalidAnxiety
	}
	if len([]rune(e.Notes)) > maxNotesLength {
		return ErrNotesTooLong
	}
	for _, t := range e.Tags {
		if strings.TrimSpace(t) == "" {
			return ErrEmptyTag
		}
	}
	return nil
}

// Validate applies the NewEntry rules to a stored entry.
func (e MoodEntry) Validate() error {
	return e.withoutID().Validate()
}

func (e MoodEntry) withoutID() NewEntry {
	return NewEntry{
		Date:    e.Date,
		Mood:    e.Mood,
		Energy:  e.Energy,
		Anxiety: e.Anxiety,
		Notes:   e.Notes,
		Tags:    e.Tags,
	}
}

// WithID turns the draft into a stored entry. Tags are copied so the caller
// can't mutate journal state through its slice.
func (e NewEntry) WithID(id string) MoodEntry {
	return MoodEntry{
		ID:      id,
		Date:    e.Date,
		Mood:    e.Mood,
		Energy:  e.Energy,
		Anxiety: e.Anxiety,
		Notes:   e.Notes,
		Tags:    cloneTags(e.Tags),
	}
}

// Clone returns a deep copy.
func (e MoodEntry) Clone() MoodEntry {
	e.Tags = cloneTags(e.Tags)
	return e
}

// Apply merges the present patch fields over e and returns the result.
// The id is never changed.
func (p EntryPatch) Apply(e MoodEntry) MoodEntry {
	out := e.Clone()
	if p.Date != nil {
		out.Date = *p.Date
	}
	if p.Mood != nil {
		out.Mood = *p.Mood
	}
	if p.Energy != nil {
		out.Energy = *p.Energy
	}
	if p.Anxiety != nil {
		out.Anxiety = *p.Anxiety
	}
	if p.Notes != nil {
		out.Notes = *p.Notes
	}
	if p.Tags != nil {
		out.Tags = cloneTags(*p.Tags)
	}
	return out
}

// IsEmpty reports whether the patch changes nothing.
func (p EntryPatch) IsEmpty() bool {
	return p.Date == nil && p.Mood == nil && p.Energy == nil &&
		p.Anxiety == nil && p.Notes == nil && p.Tags == nil
}

// Validate checks only the fields that are present.
func (p EntryPatch) Validate() error {
	if p.Date != nil {
		if err := p.Date.Validate(); err != nil {
			return err
		}
	}
	if p.Mood != nil && !p.Mood.Valid() {
		return ErrInvalidMood
	}
	if p.Energy != nil && (*p.Energy < MinLevel || *p.Energy > MaxLevel) {
		return ErrInvalidEnergy
	}
	if p.Anxiety != nil && (*p.Anxiety < MinLevel || *p.Anxiety > MaxLevel) {
		return ErrInvalidAnxiety
	}
	if p.Notes != nil && len([]rune(*p.Notes)) > maxNotesLength {
		return ErrNotesTooLong
	}
	if p.Tags != nil {
		for _, t := range *p.Tags {
			if strings.TrimSpace(t) == "" {
				return ErrEmptyTag
			}
		}
	}
	return nil
}

func cloneTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
