package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// JournalChangedMessage tells consumers that the stored journal document under
// Key was rewritten. It carries no entry data; consumers reload the document.
type JournalChangedMessage struct {
	Key       string    `json:"key"`
	Operation string    `json:"operation"`
	EntryID   string    `json:"entry_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

var errMissingKey = errors.New("journal change message has no key")

func NewJournalChangedMessage(key, operation, entryID string) *JournalChangedMessage {
	return &JournalChangedMessage{
		Key:       key,
		Operation: operation,
		EntryID:   entryID,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *JournalChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// JournalChangedMessageFromJSON decodes a message and rejects one without a key.
func JournalChangedMessageFromJSON(data []byte) (*JournalChangedMessage, error) {
	var msg JournalChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("decode journal change message: %w", err)
	}
	if msg.Key == "" {
		return nil, errMissingKey
	}
	return &msg, nil
}
