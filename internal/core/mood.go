// Package core provides the mood journal domain model.
//
// This file contains the categorical mood scale and its projection onto the
// 1..5 integer score used for charting and trend arithmetic.
package core

import (
	"strings"
)

// Mood is a category on the ordered five point mood scale.
type Mood string

const (
	VerySad   Mood = "very-sad"
	Sad       Mood = "sad"
	Neutral   Mood = "neutral"
	Happy     Mood = "happy"
	VeryHappy Mood = "very-happy"
)

// Score bounds and the neutral fill used for days without data.
const (
	MinMoodScore     = 1
	MaxMoodScore     = 5
	DefaultMoodScore = 3
)

// Moods lists the scale from lowest to highest score.
var Moods = []Mood{VerySad, Sad, Neutral, Happy, VeryHappy}

var moodScores = map[Mood]int{
	VerySad:   1,
	Sad:       2,
	Neutral:   3,
	Happy:     4,
	VeryHappy: 5,
}

var moodLabels = map[Mood]string{
	VerySad:   "Very Sad",
	Sad:       "Sad",
	Neutral:   "Neutral",
	Happy:     "Happy",
	VeryHappy: "Very Happy",
}

var moodEmoji = map[Mood]string{
	VerySad:   "😭",
	Sad:       "😢",
	Neutral:   "😐",
	Happy:     "😊",
	VeryHappy: "😄",
}

// Valid reports whether m is one of the five scale categories.
func (m Mood) Valid() bool {
	_, ok := moodScores[m]
	return ok
}

// Score maps the category to 1..5.
// Values outside the scale score as neutral so derived views never fail on
// stored data that was written without validation.
func (m Mood) Score() int {
	if s, ok := moodScores[m]; ok {
		return s
	}
	return DefaultMoodScore
}

// Label returns a human readable name, e.g. "Very Happy".
func (m Mood) Label() string {
	if l, ok := moodLabels[m]; ok {
		return l
	}
	return string(m)
}

// Emoji returns the face shown next to the category in the UI.
func (m Mood) Emoji() string {
	if e, ok := moodEmoji[m]; ok {
		return e
	}
	return moodEmoji[Neutral]
}

func (m Mood) String() string {
	return string(m)
}

// ParseMood accepts the canonical form plus the common spellings a form or
// spreadsheet might produce ("Very Happy", "very_happy", "VERY-HAPPY").
func ParseMood(s string) (Mood, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "-", "_", "-").Replace(norm)
	m := Mood(norm)
	if !m.Valid() {
		return "", ErrInvalidMood
	}
	return m, nil
}

// MoodForScore is the inverse of Score for 1..5.
func MoodForScore(score int) (Mood, bool) {
	if score < MinMoodScore || score > MaxMoodScore {
		return "", false
	}
	return Moods[score-1], true
}
