package storage

import "time"

// TimestampLayout renders instants as ISO-8601 UTC with millisecond
// precision, which sorts lexically in chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp formats t in TimestampLayout after converting it to UTC.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
