// Package timestamp normalizes the timestamp representations accepted
// by the filtering language into UTC instants.
package timestamp

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"time"
)

// ErrInvalid is returned when a value matches neither the numeric
// epoch form nor the RFC3339-like pattern.
var ErrInvalid = errors.New("invalid timestamp")

var rfc3339RE = regexp.MustCompile(
	`^([0-9]{4})-([0-9]{2})-([0-9]{2})[Tt]([0-9]{2}):([0-9]{2}):([0-9]{2})(?:\.([0-9]+))?([Zz]|(?:[+-][0-9]{2}:[0-9]{2}))$`)

// FromEpoch converts fractional seconds since the Unix epoch to a UTC
// instant.
func FromEpoch(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(math.Round(frac*1e9))).UTC()
}

// Parse normalizes v to a UTC instant. Accepted forms: time.Time
// (passed through as UTC), a numeric epoch offset with optional
// fractional seconds, or an RFC3339-like string with a Z/z suffix or a
// ±HH:MM zone offset. Fractional seconds are kept to microsecond
// precision. Anything else fails with ErrInvalid.
func Parse(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case int:
		return FromEpoch(float64(t)), nil
	case int64:
		return FromEpoch(float64(t)), nil
	case float64:
		return FromEpoch(t), nil
	case string:
		if sec, err := strconv.ParseFloat(t, 64); err == nil {
			return FromEpoch(sec), nil
		}
		return parseRFC3339(t)
	default:
		return time.Time{}, ErrInvalid
	}
}

func parseRFC3339(s string) (time.Time, error) {
	m := rfc3339RE.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, ErrInvalid
	}
	year := atoi(m[1])
	month := atoi(m[2])
	day := atoi(m[3])
	hour := atoi(m[4])
	minute := atoi(m[5])
	second := atoi(m[6])

	// fractional part is truncated or right-padded to microseconds
	fracStr := m[7]
	if len(fracStr) > 6 {
		fracStr = fracStr[:6]
	}
	for len(fracStr) < 6 {
		fracStr += "0"
	}
	micros := atoi(fracStr)

	t := time.Date(year, time.Month(month), day, hour, minute, second, micros*1000, time.UTC)
	return t.Add(-zoneOffset(m[8])), nil
}

func zoneOffset(zone string) time.Duration {
	if zone == "Z" || zone == "z" {
		return 0
	}
	sign := time.Duration(1)
	if zone[0] == '-' {
		sign = -1
	}
	hours := atoi(zone[1:3])
	minutes := atoi(zone[4:6])
	return sign * (time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
