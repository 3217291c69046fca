// Package timefmt parses the timestamps accepted by the API.
package timefmt

import (
	"errors"
	"strings"
	"time"
)

var ErrBadTime = errors.New("unrecognized time format")

const dateOnly = "2006-01-02"

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Parse reads RFC3339 as is. Zone-less values are read in loc.
func Parse(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrBadTime
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	if t, err := time.ParseInLocation(dateOnly, raw, loc); err == nil {
		return t, nil
	}
	return time.Time{}, ErrBadTime
}

// ParseRangeEnd is Parse, except that a bare date means the end of that day.
func ParseRangeEnd(raw string, loc *time.Location) (time.Time, error) {
	t, err := Parse(raw, loc)
	if err != nil {
		return t, err
	}
	if _, err := time.ParseInLocation(dateOnly, strings.TrimSpace(raw), loc); err == nil {
		return t.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}
	return t, nil
}
