package google

import (
	"sort"
	"strings"

	"equanima/internal/core"
)

// Header is the first row of the exported sheet. Columns A:G.
var Header = []any{"Date", "Mood", "Score", "Energy", "Anxiety", "Notes", "Tags"}

// EntryRows lays the entries out as sheet rows, oldest date first. Entries on
// the same date keep their journal order.
func EntryRows(entries []core.MoodEntry) [][]any {
	sorted := make([]core.MoodEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	rows := make([][]any, 0, len(sorted)+1)
	rows = append(rows, Header)
	for _, e := range sorted {
		rows = append(rows, []any{
			e.Date.String(),
			e.Mood.Label(),
			e.Mood.Score(),
			e.Energy,
			e.Anxiety,
			e.Notes,
			strings.Join(e.Tags, ", "),
		})
	}
	return rows
}
