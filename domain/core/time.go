package core

import (
	"time"
)

// Clock supplies the current time. Validation timestamps are taken from it so
// tests can pin them.
type Clock func() time.Time

// SystemClock returns the wall clock in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}

// FixedClock always returns t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// FormatTimestamp renders t as an ISO-8601 timestamp.
func FormatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
