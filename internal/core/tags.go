package core

import "strings"

// CommonTags are the quick-pick labels offered by the entry form.
var CommonTags = []string{
	"work",
	"family",
	"friends",
	"exercise",
	"sleep",
	"stress",
	"anxiety",
	"happy",
	"productive",
	"tired",
	"social",
	"alone",
}

// NormalizeTags trims each tag, drops blanks and removes duplicates while
// keeping first-seen order. The result is never nil.
func NormalizeTags(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// SplitTags parses a comma separated list as typed into a single text field.
func SplitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	return NormalizeTags(strings.Split(s, ","))
}
