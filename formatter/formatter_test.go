package formatter

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sievelabs/sieve/internal/types"
)

func init() {
	color.NoColor = true
}

func sampleMatches() []types.Match {
	return []types.Match{
		{File: "b.json", Index: 0, Expression: "ConnCount > 1", Matched: true, ID: "first"},
		{File: "b.json", Index: 1, Expression: "ConnCount > 1", Matched: false},
		{File: "a.json", Index: 0, Expression: "ConnCount > 1", Matched: true},
	}
}

func TestFormatGroupsAndSortsByFile(t *testing.T) {
	out := Format(sampleMatches(), false)

	assert.Less(t, strings.Index(out, "a.json"), strings.Index(out, "b.json"))
	assert.Contains(t, out, "match #0 first")
	assert.Contains(t, out, "- #1")
	assert.Contains(t, out, "2 of 3 records matched")
}

func TestFormatOnlyMatched(t *testing.T) {
	out := Format(sampleMatches(), true)

	assert.Contains(t, out, "match #0")
	assert.NotContains(t, out, "- #1")
	assert.Contains(t, out, "2 of 3 records matched", "summary counts all records")
}

func TestFormatEmptyFileIsStdin(t *testing.T) {
	out := Format([]types.Match{{Matched: true, Expression: "x"}}, false)
	assert.Contains(t, out, "<stdin>")
}

func TestFormatJSON(t *testing.T) {
	out, err := FormatJSON(sampleMatches())
	require.NoError(t, err)

	var decoded map[string][]types.Match
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Len(t, decoded["b.json"], 2)
	assert.Len(t, decoded["a.json"], 1)
}

func TestSummary(t *testing.T) {
	assert.Contains(t, Summary(nil), "0 of 0")
	assert.Contains(t, Summary(sampleMatches()), "2 of 3")
}
