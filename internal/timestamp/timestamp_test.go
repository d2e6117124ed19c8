package timestamp

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRFC3339(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			"utc zulu",
			"2023-05-01T08:00:00Z",
			time.Date(2023, 5, 1, 8, 0, 0, 0, time.UTC),
		},
		{
			"lowercase separators",
			"2023-05-01t08:00:00z",
			time.Date(2023, 5, 1, 8, 0, 0, 0, time.UTC),
		},
		{
			"positive offset subtracted",
			"2023-05-01T10:00:00+02:00",
			time.Date(2023, 5, 1, 8, 0, 0, 0, time.UTC),
		},
		{
			"negative offset added",
			"2023-05-01T06:30:00-01:30",
			time.Date(2023, 5, 1, 8, 0, 0, 0, time.UTC),
		},
		{
			"fractional seconds padded to micros",
			"2023-05-01T08:00:00.5Z",
			time.Date(2023, 5, 1, 8, 0, 0, 500000000, time.UTC),
		},
		{
			"fractional seconds truncated to micros",
			"2023-05-01T08:00:00.123456789Z",
			time.Date(2023, 5, 1, 8, 0, 0, 123456000, time.UTC),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestParseEpoch(t *testing.T) {
	t.Parallel()

	got, err := Parse(float64(1682928000))
	require.NoError(t, err)
	assert.True(t, time.Date(2023, 5, 1, 8, 0, 0, 0, time.UTC).Equal(got))

	got, err = Parse("1682928000.25")
	require.NoError(t, err)
	assert.True(t, time.Date(2023, 5, 1, 8, 0, 0, 250000000, time.UTC).Equal(got))

	got, err = Parse(int64(0))
	require.NoError(t, err)
	assert.True(t, time.Unix(0, 0).UTC().Equal(got))
}

func TestStringAndEpochAgree(t *testing.T) {
	t.Parallel()

	instant := time.Date(2023, 5, 1, 8, 0, 0, 250000000, time.UTC)

	fromString, err := Parse(instant.Format("2006-01-02T15:04:05.000000Z07:00"))
	require.NoError(t, err)

	epoch := fmt.Sprintf("%.6f", float64(instant.UnixNano())/1e9)
	fromEpoch, err := Parse(epoch)
	require.NoError(t, err)

	assert.True(t, fromString.Equal(fromEpoch), "string %v vs epoch %v", fromString, fromEpoch)
}

func TestParsePassThrough(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("CEST", 2*3600)
	local := time.Date(2023, 5, 1, 10, 0, 0, 0, loc)
	got, err := Parse(local)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, got.Location())
	assert.True(t, local.Equal(got))
}

func TestParseInvalid(t *testing.T) {
	t.Parallel()

	for _, input := range []any{
		"yesterday",
		"2023-05-01 08:00:00Z",
		"2023-05-01T08:00:00",
		"2023-05-01T08:00:00+0200",
		nil,
		[]any{"2023-05-01T08:00:00Z"},
	} {
		_, err := Parse(input)
		assert.ErrorIs(t, err, ErrInvalid, "input %v", input)
	}
}
