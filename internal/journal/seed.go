package journal

import (
	"time"

	"equanima/internal/core"
)

// demoEntries are written on first load so a fresh journal has something to
// chart. Dates are relative to now.
func demoEntries(now time.Time, newID func() string) []core.MoodEntry {
	day := func(offset int) core.Date {
		return core.DateOf(now.AddDate(0, 0, offset))
	}
	return []core.MoodEntry{
		{
			ID:      newID(),
			Date:    day(-6),
			Mood:    core.Happy,
			Energy:  7,
			Anxiety: 3,
			Notes:   "Had a great day at work!",
			Tags:    []string{"work", "productive"},
		},
		{
			ID:      newID(),
			Date:    day(-5),
			Mood:    core.Neutral,
			Energy:  5,
			Anxiety: 5,
			Notes:   "Average day, nothing special",
			Tags:    []string{"routine"},
		},
		{
			ID:      newID(),
			Date:    day(-4),
			Mood:    core.VeryHappy,
			Energy:  9,
			Anxiety: 2,
			Notes:   "Celebrated my birthday with friends!",
			Tags:    []string{"celebration", "friends", "birthday"},
		},
	}
}
