package journal

import (
	"bytes"
	"encoding/json"
	"fmt"

	"equanima/internal/core"
)

// DecodeDocument parses a stored entry list. The whole document is rejected
// if any part of it is malformed; "null" and an empty body decode to no entries.
func DecodeDocument(doc []byte) ([]core.MoodEntry, error) {
	trimmed := bytes.TrimSpace(doc)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []core.MoodEntry{}, nil
	}
	var entries []core.MoodEntry
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, fmt.Errorf("decode journal document: %w", err)
	}
	for i := range entries {
		if entries[i].Tags == nil {
			entries[i].Tags = []string{}
		}
	}
	return entries, nil
}

// EncodeDocument serializes the full entry list in insertion order.
func EncodeDocument(entries []core.MoodEntry) ([]byte, error) {
	if entries == nil {
		entries = []core.MoodEntry{}
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode journal document: %w", err)
	}
	return b, nil
}
