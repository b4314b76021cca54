package database

import "time"

// TimeLayout matches SQLite's CURRENT_TIMESTAMP so stored values sort and
// compare as text.
const TimeLayout = "2006-01-02 15:04:05"

// FormatTime renders t in UTC for storage or comparison.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// FormatTimePtr returns nil for a nil time.
func FormatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return FormatTime(*t)
}

// ParseTime reads a value stored with FormatTime.
func ParseTime(s string) (time.Time, error) {
	return time.ParseInLocation(TimeLayout, s, time.UTC)
}
