package jpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testRecord() map[string]any {
	return map[string]any{
		"ID":        "e214d2d9",
		"ConnCount": float64(15),
		"Source": []any{
			map[string]any{
				"IP4":  []any{"192.168.1.1", "192.168.1.2"},
				"Port": float64(22),
			},
			map[string]any{
				"IP4": []any{"10.0.0.5"},
			},
		},
		"Node": map[string]any{
			"Name": "cz.cesnet.holly",
		},
	}
}

func TestValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		want []any
	}{
		{"top level scalar", "ID", []any{"e214d2d9"}},
		{"nested scalar", "Node.Name", []any{"cz.cesnet.holly"}},
		{"broadcast over arrays", "Source.IP4", []any{"192.168.1.1", "192.168.1.2", "10.0.0.5"}},
		{"wildcard equals broadcast", "Source[*].IP4[*]", []any{"192.168.1.1", "192.168.1.2", "10.0.0.5"}},
		{"indexed element", "Source[0].IP4[1]", []any{"192.168.1.2"}},
		{"index into second", "Source[1].IP4", []any{"10.0.0.5"}},
		{"partial presence", "Source.Port", []any{float64(22)}},
		{"absent path", "Target.IP4", nil},
		{"absent nested key", "Node.Missing", nil},
		{"index out of range", "Source[5].IP4", nil},
		{"empty path segment", "Node.", nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Values(testRecord(), tt.path))
		})
	}
}

func TestValuesOnNonMap(t *testing.T) {
	t.Parallel()
	assert.Nil(t, Values("scalar", "ID"))
	assert.Nil(t, Values(nil, "ID"))
}

func TestCanonical(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"Source.IP4", "Source.IP4"},
		{"Source.IP4[2]", "Source.IP4"},
		{"Source[12].IP4[0]", "Source.IP4"},
		{"Source[*].IP4", "Source.IP4"},
		{"ConnCount", "ConnCount"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Canonical(tt.path))
	}
}

func TestSplit(t *testing.T) {
	t.Parallel()

	segments := Split("Source[2].IP4[*].x")
	assert.Len(t, segments, 3)
	assert.Equal(t, Segment{Key: "Source", Index: 2, HasIndex: true}, segments[0])
	assert.Equal(t, Segment{Key: "IP4", Wildcard: true}, segments[1])
	assert.Equal(t, Segment{Key: "x"}, segments[2])
}
