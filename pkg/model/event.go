package model

import (
	"encoding/json"
	"time"
)

// TimestampLayout is the event timestamp format: ISO-8601 in UTC with
// microsecond precision. The serialized string participates in the
// content hash, so it must never be reformatted after an event is
// written.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// NewTimestamp formats an instant as an event timestamp.
func NewTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Event is a single line in a day's log file (JSONL format).
//
// content_hash covers the canonical encoding of {ts, content} only;
// prev_hash and chain_hash are derived fields and excluded from it.
// chain_hash = SHA-256(prev_hash || content_hash), hex digests
// concatenated as bytes.
type Event struct {
	Timestamp   string          `json:"ts"`
	Content     json.RawMessage `json:"content"`
	ContentHash HashValue       `json:"content_hash"`
	PrevHash    HashValue       `json:"prev_hash"`
	ChainHash   HashValue       `json:"chain_hash"`
}

// Day derives the calendar day from the event timestamp.
func (e *Event) Day() Day {
	if len(e.Timestamp) < len(DayLayout) {
		return ""
	}
	return Day(e.Timestamp[:len(DayLayout)])
}
