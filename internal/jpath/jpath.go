// Package jpath resolves dotted path expressions into decoded-JSON
// style records (map[string]any and []any).
//
// A path is a sequence of dot-separated segments. Each segment names a
// map key and may carry an index suffix: "[3]" selects one element of
// an array value, "[*]" selects all of them. A segment without an
// index applied to an array value broadcasts over every element, so a
// path always resolves to an ordered sequence of zero or more values.
package jpath

import (
	"regexp"
	"strconv"
	"strings"
)

var indexRE = regexp.MustCompile(`\[(?:\d+|\*)\]`)

// Segment is one parsed component of a path.
type Segment struct {
	Key      string
	Index    int
	HasIndex bool
	Wildcard bool
}

// Canonical strips every bracketed index segment from a path, leaving
// the bare semantic path, e.g. "Source.IP4[2]" -> "Source.IP4".
func Canonical(path string) string {
	return indexRE.ReplaceAllString(path, "")
}

// Split parses a path into its segments. A malformed index suffix is
// kept as part of the key, which simply resolves to nothing.
func Split(path string) []Segment {
	raw := strings.Split(path, ".")
	segments := make([]Segment, 0, len(raw))
	for _, part := range raw {
		seg := Segment{Key: part}
		if open := strings.IndexByte(part, '['); open >= 0 && strings.HasSuffix(part, "]") {
			inner := part[open+1 : len(part)-1]
			if inner == "*" {
				seg.Key = part[:open]
				seg.Wildcard = true
			} else if idx, err := strconv.Atoi(inner); err == nil && idx >= 0 {
				seg.Key = part[:open]
				seg.Index = idx
				seg.HasIndex = true
			}
		}
		segments = append(segments, seg)
	}
	return segments
}

// Values returns the ordered sequence of values found at path inside
// the record. An absent path yields an empty sequence, never an error.
func Values(record any, path string) []any {
	current := []any{record}
	for _, seg := range Split(path) {
		if seg.Key == "" {
			return nil
		}
		var next []any
		for _, cur := range current {
			m, ok := cur.(map[string]any)
			if !ok {
				continue
			}
			val, ok := m[seg.Key]
			if !ok {
				continue
			}
			next = append(next, selectIndexed(val, seg)...)
		}
		if len(next) == 0 {
			return nil
		}
		current = next
	}
	return current
}

func selectIndexed(val any, seg Segment) []any {
	arr, isArr := val.([]any)
	switch {
	case seg.HasIndex:
		if !isArr || seg.Index >= len(arr) {
			return nil
		}
		return []any{arr[seg.Index]}
	case isArr:
		// wildcard and bare segments both broadcast over the array
		return arr
	case seg.Wildcard:
		return nil
	default:
		return []any{val}
	}
}
