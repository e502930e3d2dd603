package google

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"equanima/internal/core"
)

func TestEntryRows(t *testing.T) {
	entries := []core.MoodEntry{
		{ID: "b", Date: core.NewDate(2026, 10, 18), Mood: core.Sad, Energy: 3, Anxiety: 8, Notes: "late", Tags: []string{"work", "stress"}},
		{ID: "a", Date: core.NewDate(2026, 10, 17), Mood: core.VeryHappy, Energy: 9, Anxiety: 1, Tags: []string{}},
		{ID: "c", Date: core.NewDate(2026, 10, 18), Mood: "zen", Energy: 5, Anxiety: 5},
	}

	want := [][]any{
		Header,
		{"2026-10-17", "Very Happy", 5, 9, 1, "", ""},
		{"2026-10-18", "Sad", 2, 3, 8, "late", "work, stress"},
		{"2026-10-18", "zen", 3, 5, 5, "", ""},
	}
	if diff := cmp.Diff(want, EntryRows(entries)); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	if entries[0].ID != "b" {
		t.Fatalf("EntryRows reordered its input")
	}
}

func TestEntryRowsEmpty(t *testing.T) {
	rows := EntryRows(nil)
	if len(rows) != 1 {
		t.Fatalf("expected only the header, got %d rows", len(rows))
	}
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	if _, err := New(t.Context(), Config{SheetName: "Mood Journal"}); err == nil {
		t.Fatalf("expected error without spreadsheet id")
	}
}

func TestQuoteSheet(t *testing.T) {
	if got := quoteSheet("Mood Journal"); got != "'Mood Journal'" {
		t.Fatalf("quoteSheet = %s", got)
	}
	if got := quoteSheet("Ann's"); got != "'Ann''s'" {
		t.Fatalf("quoteSheet = %s", got)
	}
}
