package timeutil

import "time"

// layout renders timestamps as "2006-01-02 15:04:05.000" in UTC.
const layout = "2006-01-02 15:04:05.000"

// Timestamp returns the current time shifted by offset, in UTC.
func Timestamp(offset time.Duration) time.Time {
	return time.Now().Add(offset).UTC()
}

// Format renders t in the fixed UTC layout with millisecond precision.
func Format(t time.Time) string {
	return t.UTC().Format(layout)
}

// FormatNow renders the current time in the fixed UTC layout.
func FormatNow() string {
	return Format(time.Now())
}
