package model

import (
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02T15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// ParseTimestamp parses s with the accepted layouts. Values without a zone
// are read as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AsTimestamp coerces v to a temporal value. Anything that cannot be read as
// a timestamp becomes missing.
func AsTimestamp(v Value) Value {
	if v.Null {
		return Missing()
	}
	switch v.Kind {
	case KindTemporal:
		return v
	case KindText, KindUnknown:
		if t, ok := ParseTimestamp(v.Str); ok {
			return Timestamp(t)
		}
	}
	// Numbers are not read as epoch offsets; the unit would be a guess.
	return Missing()
}
