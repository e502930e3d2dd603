package core

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMoodScoreBijection(t *testing.T) {
	want := map[Mood]int{VerySad: 1, Sad: 2, Neutral: 3, Happy: 4, VeryHappy: 5}
	for m, score := range want {
		if got := m.Score(); got != score {
			t.Errorf("%s.Score() = %d, want %d", m, got, score)
		}
		back, ok := MoodForScore(score)
		if !ok || back != m {
			t.Errorf("MoodForScore(%d) = %q, %v", score, back, ok)
		}
	}
	if got := Mood("ecstatic").Score(); got != DefaultMoodScore {
		t.Errorf("unknown mood scored %d", got)
	}
}

func TestParseMood(t *testing.T) {
	for in, want := range map[string]Mood{
		"happy":      Happy,
		"Very Happy": VeryHappy,
		"very_sad":   VerySad,
		" NEUTRAL ":  Neutral,
	} {
		got, err := ParseMood(in)
		if err != nil || got != want {
			t.Errorf("ParseMood(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseMood("great"); err == nil {
		t.Errorf("expected error for unknown mood")
	}
}

func TestWeeklySeriesShapeAndDefaults(t *testing.T) {
	today := NewDate(2026, 10, 19)
	series := WeeklySeries(nil, today)

	if len(series) != WeekLength {
		t.Fatalf("expected %d points, got %d", WeekLength, len(series))
	}
	for i, p := range series {
		wantDate := today.AddDays(i - 6)
		if !p.Date.Equal(wantDate) {
			t.Errorf("point %d date = %s, want %s", i, p.Date, wantDate)
		}
		if p.MoodScore != 3 || p.Energy != 5 || p.Anxiety != 5 || p.HasEntry {
			t.Errorf("point %d = %+v, want neutral fill", i, p)
		}
	}
	if series[0].Date.String() != "2026-10-13" || series[6].Date.String() != "2026-10-19" {
		t.Fatalf("unexpected window %s..%s", series[0].Date, series[6].Date)
	}
}

func TestWeeklySeriesReflectsEntries(t *testing.T) {
	today := NewDate(2026, 10, 19)
	entries := []MoodEntry{
		{ID: "old", Date: NewDate(2026, 10, 1), Mood: VerySad, Energy: 1, Anxiety: 10},
		{ID: "a", Date: NewDate(2026, 10, 17), Mood: VeryHappy, Energy: 9, Anxiety: 2},
		{ID: "b", Date: today, Mood: Sad, Energy: 4, Anxiety: 7},
	}
	series := WeeklySeries(entries, today)

	want := []DayPoint{
		{Date: NewDate(2026, 10, 13), MoodScore: 3, Energy: 5, Anxiety: 5},
		{Date: NewDate(2026, 10, 14), MoodScore: 3, Energy: 5, Anxiety: 5},
		{Date: NewDate(2026, 10, 15), MoodScore: 3, Energy: 5, Anxiety: 5},
		{Date: NewDate(2026, 10, 16), MoodScore: 3, Energy: 5, Anxiety: 5},
		{Date: NewDate(2026, 10, 17), MoodScore: 5, Energy: 9, Anxiety: 2, HasEntry: true},
		{Date: NewDate(2026, 10, 18), MoodScore: 3, Energy: 5, Anxiety: 5},
		{Date: today, MoodScore: 2, Energy: 4, Anxiety: 7, HasEntry: true},
	}
	if diff := cmp.Diff(want, series); diff != "" {
		t.Fatalf("series mismatch (-want +got):\n%s", diff)
	}
}

func TestWeeklySeriesFirstEntryForDateWins(t *testing.T) {
	today := NewDate(2026, 10, 19)
	entries := []MoodEntry{
		{ID: "first", Date: today, Mood: Happy, Energy: 6, Anxiety: 4},
		{ID: "second", Date: today, Mood: VerySad, Energy: 1, Anxiety: 9},
	}
	last := WeeklySeries(entries, today)[6]
	if last.MoodScore != 4 || last.Energy != 6 || last.Anxiety != 4 {
		t.Fatalf("expected first entry to win, got %+v", last)
	}
}

func TestWeeklySeriesZeroLevelsFallBack(t *testing.T) {
	today := NewDate(2026, 10, 19)
	entries := []MoodEntry{{ID: "a", Date: today, Mood: Happy}}
	last := WeeklySeries(entries, today)[6]
	if last.MoodScore != 4 || last.Energy != 5 || last.Anxiety != 5 {
		t.Fatalf("unexpected point %+v", last)
	}
}

func seriesFromScores(scores ...int) []DayPoint {
	out := make([]DayPoint, len(scores))
	for i, s := range scores {
		out[i] = DayPoint{MoodScore: s}
	}
	return out
}

func TestComputeTrend(t *testing.T) {
	tests := []struct {
		name   string
		scores []int
		want   Trend
	}{
		{"rising tail", []int{1, 1, 1, 1, 1, 5, 5}, TrendUp},
		{"falling tail", []int{5, 5, 5, 5, 1, 1, 1}, TrendDown},
		{"flat", []int{3, 3, 3, 3, 3, 3, 3}, TrendStable},
		{"oldest day ignored", []int{5, 2, 2, 2, 2, 2, 2}, TrendStable},
		{"middle day counts in previous window", []int{3, 4, 4, 5, 4, 4, 4}, TrendDown},
		{"too short", []int{1, 5}, TrendStable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTrend(seriesFromScores(tt.scores...))
			if got.Direction != tt.want {
				t.Fatalf("trend = %s, want %s (%+v)", got.Direction, tt.want, got)
			}
		})
	}

	got := ComputeTrend(seriesFromScores(1, 1, 1, 1, 1, 5, 5))
	if math.Abs(got.RecentAverage-11.0/3) > 1e-9 || got.PreviousAverage != 1 {
		t.Fatalf("unexpected averages %+v", got)
	}
}

func TestComputeDistribution(t *testing.T) {
	entries := []MoodEntry{{Mood: Happy}, {Mood: Happy}, {Mood: Sad}}
	d := ComputeDistribution(entries)

	if diff := cmp.Diff(map[Mood]int{Happy: 2, Sad: 1}, d.Counts); diff != "" {
		t.Fatalf("counts mismatch (-want +got):\n%s", diff)
	}
	if d.Total != 3 {
		t.Fatalf("total = %d", d.Total)
	}

	slices := d.Slices()
	if len(slices) != 2 || slices[0].Mood != Happy || slices[1].Mood != Sad {
		t.Fatalf("unexpected slices %+v", slices)
	}
	if math.Abs(slices[0].Share-2.0/3) > 1e-9 {
		t.Fatalf("unexpected share %v", slices[0].Share)
	}
}

func TestDistributionKeepsOffScaleMoodsLast(t *testing.T) {
	d := ComputeDistribution([]MoodEntry{{Mood: "zen"}, {Mood: VerySad}, {Mood: "angry"}, {Mood: VeryHappy}})
	var order []Mood
	for _, s := range d.Slices() {
		order = append(order, s.Mood)
	}
	want := []Mood{VeryHappy, VerySad, "angry", "zen"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeAverages(t *testing.T) {
	series := []DayPoint{
		{MoodScore: 1, Energy: 2, Anxiety: 10},
		{MoodScore: 5, Energy: 8, Anxiety: 2},
	}
	got := ComputeAverages(series)
	if got != (WeeklyAverages{Mood: 3, Energy: 5, Anxiety: 6}) {
		t.Fatalf("unexpected averages %+v", got)
	}
	if got := ComputeAverages(nil); got.Mood != 3 || got.Energy != 5 || got.Anxiety != 5 {
		t.Fatalf("unexpected empty averages %+v", got)
	}
}

func TestRecentEntriesNewestFirst(t *testing.T) {
	entries := []MoodEntry{{ID: "1"}, {ID: "2"}, {ID: "3"}}
	got := RecentEntries(entries, 2)
	if len(got) != 2 || got[0].ID != "3" || got[1].ID != "2" {
		t.Fatalf("unexpected recent entries %+v", got)
	}
	if got := RecentEntries(entries, 10); len(got) != 3 {
		t.Fatalf("expected all entries, got %d", len(got))
	}
	if got := RecentEntries(entries, 0); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice")
	}
}

func TestBuildOverview(t *testing.T) {
	today := NewDate(2026, 10, 19)
	entries := []MoodEntry{
		{ID: "a", Date: today.AddDays(-1), Mood: VeryHappy, Energy: 9, Anxiety: 1},
		{ID: "b", Date: today, Mood: VeryHappy, Energy: 9, Anxiety: 1},
	}
	ov := BuildOverview(entries, today, 5)
	if len(ov.Week) != 7 || ov.TotalEntries != 2 || len(ov.Recent) != 2 {
		t.Fatalf("unexpected overview %+v", ov)
	}
	if ov.Trend.Direction != TrendUp {
		t.Fatalf("expected upward trend, got %s", ov.Trend.Direction)
	}
	if len(ov.Distribution) != 1 || ov.Distribution[0].Count != 2 {
		t.Fatalf("unexpected distribution %+v", ov.Distribution)
	}
}
