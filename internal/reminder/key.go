package reminder

import (
	"fmt"
	"time"
)

// Key identifies one occurrence. Two matches that produce the same Key are
// the same real-world occurrence. Always build keys with NewKey (or
// FallbackKey on the client) so every layer agrees on the format.
type Key string

const (
	recurringLayout = "2006-01-02T15:04"
	oneTimeLayout   = "2006-01-02T15:04Z"
)

// NewKey derives the occurrence key for a record firing at fireInstant.
// Recurring (medicine) instants are rendered in their own wall-clock zone,
// one-time (appointment) instants in UTC.
func NewKey(kind Kind, recordID string, fireInstant time.Time) Key {
	var at string
	if kind.OneTime() {
		at = fireInstant.UTC().Format(oneTimeLayout)
	} else {
		at = fireInstant.Format(recurringLayout)
	}
	return Key(fmt.Sprintf("%s_%s_%s", kind, recordID, at))
}

// FallbackKey is used by clients when the server did not provide a key.
func FallbackKey(kind Kind, recordID, timeOrDate string) Key {
	return Key(fmt.Sprintf("%s_%s_%s", kind, recordID, timeOrDate))
}

// KeyFor returns the alert's key, deriving one when it is missing.
func KeyFor(a Alert) Key {
	if a.Key != "" {
		return a.Key
	}
	timeOrDate := a.Time
	if a.Date != "" {
		timeOrDate = a.Date
	}
	return FallbackKey(a.Kind, a.RecordID(), timeOrDate)
}
