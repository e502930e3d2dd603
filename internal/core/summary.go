package core

import "sort"

// WeekLength is the number of days in the trailing window.
const WeekLength = 7

// Trend is the coarse direction of mood over the week.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// DayPoint is one day of the weekly series.
type DayPoint struct {
	Date      Date `json:"date"`
	MoodScore int  `json:"moodScore"`
	Energy    int  `json:"energy"`
	Anxiety   int  `json:"anxiety"`
	// HasEntry is false when the values are the neutral fill.
	HasEntry bool `json:"hasEntry"`
}

// TrendSummary carries the direction and the two window averages behind it.
type TrendSummary struct {
	Direction       Trend   `json:"trend"`
	RecentAverage   float64 `json:"recentAverage"`
	PreviousAverage float64 `json:"previousAverage"`
}

// MoodCount is one slice of the distribution chart.
type MoodCount struct {
	Mood  Mood    `json:"mood"`
	Label string  `json:"label"`
	Count int     `json:"count"`
	Share float64 `json:"share"`
}

// Distribution counts entries per mood over the whole history.
type Distribution struct {
	Counts map[Mood]int `json:"counts"`
	Total  int          `json:"total"`
}

// WeeklyAverages are the means of the weekly series.
type WeeklyAverages struct {
	Mood    float64 `json:"mood"`
	Energy  float64 `json:"energy"`
	Anxiety float64 `json:"anxiety"`
}

// Overview is a compact summary for the dashboard.
type Overview struct {
	Today        Date           `json:"today"`
	Week         []DayPoint     `json:"week"`
	Averages     WeeklyAverages `json:"averages"`
	Trend        TrendSummary   `json:"trend"`
	Distribution []MoodCount    `json:"distribution"`
	Recent       []MoodEntry    `json:"recent"`
	TotalEntries int            `json:"totalEntries"`
}

// WeeklySeries builds the seven day series ending at today (inclusive),
// oldest first. When several entries share a date the first one in
// insertion order is used. Days without an entry get the neutral fill.
func WeeklySeries(entries []MoodEntry, today Date) []DayPoint {
	byDate := make(map[string]int, len(entries))
	for i := range entries {
		d := entries[i].Date.String()
		if _, ok := byDate[d]; !ok {
			byDate[d] = i
		}
	}

	series := make([]DayPoint, WeekLength)
	for i := range series {
		day := today.AddDays(i - (WeekLength - 1))
		idx, ok := byDate[day.String()]
		if !ok {
			series[i] = DayPoint{
				Date:      day,
				MoodScore: DefaultMoodScore,
				Energy:    DefaultEnergy,
				Anxiety:   DefaultAnxiety,
			}
			continue
		}
		e := entries[idx]
		series[i] = DayPoint{
			Date:      day,
			MoodScore: e.Mood.Score(),
			Energy:    levelOrDefault(e.Energy, DefaultEnergy),
			Anxiety:   levelOrDefault(e.Anxiety, DefaultAnxiety),
			HasEntry:  true,
		}
	}
	return series
}

// A zero level means "not recorded" and falls back like a missing day.
func levelOrDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

// ComputeTrend compares the mood average of the last three days with the
// three days before them. The oldest point of a seven day series belongs to
// neither window.
func ComputeTrend(series []DayPoint) TrendSummary {
	if len(series) < 6 {
		return TrendSummary{Direction: TrendStable}
	}
	n := len(series)
	recent := sumScores(series[n-3:])
	previous := sumScores(series[n-6 : n-3])

	out := TrendSummary{
		RecentAverage:   float64(recent) / 3,
		PreviousAverage: float64(previous) / 3,
	}
	// Both windows have the same length, so comparing sums avoids float noise.
	switch {
	case recent > previous:
		out.Direction = TrendUp
	case recent < previous:
		out.Direction = TrendDown
	default:
		out.Direction = TrendStable
	}
	return out
}

func sumScores(points []DayPoint) int {
	total := 0
	for _, p := range points {
		total += p.MoodScore
	}
	return total
}

// ComputeDistribution counts every entry's mood, unknown categories included.
func ComputeDistribution(entries []MoodEntry) Distribution {
	d := Distribution{Counts: make(map[Mood]int)}
	for _, e := range entries {
		d.Counts[e.Mood]++
		d.Total++
	}
	return d
}

// Slices returns non-zero counts in legend order (very-happy first), followed
// by any off-scale moods sorted by name.
func (d Distribution) Slices() []MoodCount {
	out := make([]MoodCount, 0, len(d.Counts))
	add := func(m Mood) {
		c := d.Counts[m]
		if c == 0 {
			return
		}
		share := 0.0
		if d.Total > 0 {
			share = float64(c) / float64(d.Total)
		}
		out = append(out, MoodCount{Mood: m, Label: m.Label(), Count: c, Share: share})
	}

	for i := len(Moods) - 1; i >= 0; i-- {
		add(Moods[i])
	}

	var unknown []Mood
	for m := range d.Counts {
		if !m.Valid() {
			unknown = append(unknown, m)
		}
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	for _, m := range unknown {
		add(m)
	}
	return out
}

// ComputeAverages averages the series. An empty series averages to the
// neutral fill.
func ComputeAverages(series []DayPoint) WeeklyAverages {
	if len(series) == 0 {
		return WeeklyAverages{Mood: DefaultMoodScore, Energy: DefaultEnergy, Anxiety: DefaultAnxiety}
	}
	var mood, energy, anxiety int
	for _, p := range series {
		mood += p.MoodScore
		energy += p.Energy
		anxiety += p.Anxiety
	}
	n := float64(len(series))
	return WeeklyAverages{
		Mood:    float64(mood) / n,
		Energy:  float64(energy) / n,
		Anxiety: float64(anxiety) / n,
	}
}

// RecentEntries returns up to n of the most recently added entries, newest
// first.
func RecentEntries(entries []MoodEntry, n int) []MoodEntry {
	if n <= 0 || len(entries) == 0 {
		return []MoodEntry{}
	}
	if n > len(entries) {
		n = len(entries)
	}
	out := make([]MoodEntry, 0, n)
	for i := len(entries) - 1; i >= len(entries)-n; i-- {
		out = append(out, entries[i].Clone())
	}
	return out
}

// BuildOverview assembles every dashboard view from one snapshot.
func BuildOverview(entries []MoodEntry, today Date, recent int) Overview {
	week := WeeklySeries(entries, today)
	return Overview{
		Today:        today,
		Week:         week,
		Averages:     ComputeAverages(week),
		Trend:        ComputeTrend(week),
		Distribution: ComputeDistribution(entries).Slices(),
		Recent:       RecentEntries(entries, recent),
		TotalEntries: len(entries),
	}
}
