package utils

import (
	"strings"
	"time"
)

const (
	layoutDate     = "2006-01-02"
	layoutDateTime = "2006-01-02 15:04"
)

// NowUTC returns current time in UTC at second precision, the precision stored in the database.
func NowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// ParseDate parses YYYY-MM-DD as a UTC day.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(layoutDate, strings.TrimSpace(s), time.UTC)
}

// ParseTimestamp accepts RFC 3339 or "YYYY-MM-DD HH:MM" (UTC) and normalizes to UTC seconds.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.ParseInLocation(layoutDateTime, s, time.UTC)
		if err != nil {
			return time.Time{}, err
		}
	}
	return t.UTC().Truncate(time.Second), nil
}

// FormatDateTime formats t as "YYYY-MM-DD HH:MM UTC".
func FormatDateTime(t time.Time) string {
	return t.UTC().Format(layoutDateTime) + " UTC"
}
