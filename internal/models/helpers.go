// Package models defines data structures for the CRE assistant client.
package models

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// timeLayouts are the timestamp formats the backend emits. Naive timestamps
// (no zone) are produced by the history service and are treated as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Time is a time.Time that decodes the backend's timestamp formats.
type Time struct {
	time.Time
}

// ParseTime parses a backend timestamp.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp: %q", s)
}

// UnmarshalJSON accepts RFC 3339 and naive ISO 8601 strings; null and "" yield the zero time.
func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	s := strings.Trim(string(data), `"`)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := ParseTime(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// MarshalJSON encodes as RFC 3339.
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(time.RFC3339Nano) + `"`), nil
}

// maxTitleLen is the length at which generated session titles are cut.
const maxTitleLen = 50

// SessionTitle derives a session title from the first user message,
// the same way the history service names sessions it creates implicitly.
func SessionTitle(firstMessage string) string {
	s := strings.TrimSpace(firstMessage)
	r := []rune(s)
	if len(r) > maxTitleLen {
		return string(r[:maxTitleLen]) + "..."
	}
	return s
}
