package sieve

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sievelabs/sieve/internal/filter"
	"github.com/sievelabs/sieve/internal/rules"
)

func mustSchema(t *testing.T, config Config) filter.Schema {
	t.Helper()
	schema := filter.Schema{}
	require.NoError(t, extendSchema(schema, config.Fields))
	return schema
}

func sampleRecord() map[string]any {
	return map[string]any{
		"ID":         "e214d2d9-359b-443d-993d-3cc5637107a0",
		"Category":   []any{"Attempt.Login"},
		"ConnCount":  float64(2),
		"DetectTime": "2023-05-01T10:00:00Z",
		"Source": []any{
			map[string]any{"IP4": []any{"192.168.1.1"}},
		},
	}
}

func TestEngineCompileAndMatch(t *testing.T) {
	t.Parallel()
	engine, err := New("")
	require.NoError(t, err)

	tests := []struct {
		expression string
		want       bool
	}{
		{`Source.IP4 in [192.168.0.0/16]`, true},
		{`Source.IP4 in [10.0.0.0/8]`, false},
		{`DetectTime > 2023-05-01T08:00:00Z`, true},
		{`DetectTime > 2023-05-01T10:00:00+02:00`, true},
		{`Category in ["Attempt.Login"] and ConnCount > 1`, true},
		{`exists Target.IP4`, false},
	}
	rec := sampleRecord()
	for _, tt := range tests {
		f, err := engine.Compile(tt.expression)
		require.NoError(t, err, tt.expression)
		got, err := engine.Match(f, rec)
		require.NoError(t, err, tt.expression)
		assert.Equal(t, tt.want, got, tt.expression)
	}
}

func TestEngineCompileErrors(t *testing.T) {
	t.Parallel()
	engine, err := New("")
	require.NoError(t, err)

	_, err = engine.Compile(`Source.IP4 == "not.an.ip"`)
	assert.Error(t, err)

	_, err = engine.Compile(`ConnCount >`)
	assert.Error(t, err)
}

func TestEngineCompileTree(t *testing.T) {
	t.Parallel()
	engine, err := New("")
	require.NoError(t, err)

	tree := rules.ComparisonNode{
		Op:    rules.OpEq,
		Left:  rules.VariableNode{Path: "Source.IP4"},
		Right: rules.ConstantNode{Value: "192.168.1.1"},
	}
	compiled, err := engine.CompileTree(tree)
	require.NoError(t, err)

	cmp, ok := compiled.(rules.ComparisonNode)
	require.True(t, ok)
	_, ok = cmp.Right.(rules.IPv4Node)
	assert.True(t, ok, "string literal should compile to an IP range literal")
}

func TestEngineWithConfiguration(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sieve.yaml")
	config := `
name: custom
fields:
  - path: Custom.Addr
    type: ipv4
  - path: Custom.Seen
    type: datetime
`
	require.NoError(t, os.WriteFile(path, []byte(config), 0o644))

	engine, err := New(path)
	require.NoError(t, err)

	f, err := engine.Compile(`Custom.Addr in [192.168.0.0/16]`)
	require.NoError(t, err)

	rec := map[string]any{
		"Custom": map[string]any{"Addr": "192.168.1.1"},
	}
	ok, err := engine.Match(f, rec)
	require.NoError(t, err)
	assert.True(t, ok)

	// the default schema stays available alongside the extension
	_, err = engine.Compile(`Source.IP4 == 192.168.1.1`)
	assert.NoError(t, err)
}

func TestEngineConfigurationErrors(t *testing.T) {
	t.Parallel()

	_, err := New(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fields:\n  - path: X\n    type: nope\n"), 0o644))
	_, err = New(path)
	assert.Error(t, err)
}

func TestProcessRecords(t *testing.T) {
	t.Parallel()
	engine, err := New("")
	require.NoError(t, err)

	f, err := engine.Compile("ConnCount > 1")
	require.NoError(t, err)

	records := []any{
		sampleRecord(),
		map[string]any{"ID": "second", "ConnCount": float64(0)},
		map[string]any{"ConnCount": float64(5)},
	}
	matches, err := ProcessRecords(context.Background(), nil, engine, f, records, false)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	assert.True(t, matches[0].Matched)
	assert.Equal(t, "e214d2d9-359b-443d-993d-3cc5637107a0", matches[0].ID)
	assert.False(t, matches[1].Matched)
	assert.Equal(t, "second", matches[1].ID)
	assert.True(t, matches[2].Matched)
	assert.Equal(t, "", matches[2].ID)
	assert.Equal(t, "ConnCount > 1", matches[0].Expression)
}

func TestProcessRecordsCancellation(t *testing.T) {
	t.Parallel()
	engine, err := New("")
	require.NoError(t, err)

	f, err := engine.Compile("ConnCount > 1")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ProcessRecords(ctx, nil, engine, f, []any{sampleRecord()}, false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecodeRecords(t *testing.T) {
	t.Parallel()

	t.Run("array", func(t *testing.T) {
		t.Parallel()
		records, err := DecodeRecords([]byte(`[{"ID": "a"}, {"ID": "b"}]`))
		require.NoError(t, err)
		require.Len(t, records, 2)
	})

	t.Run("single object", func(t *testing.T) {
		t.Parallel()
		records, err := DecodeRecords([]byte(`{"ID": "a"}`))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "a", records[0].(map[string]any)["ID"])
	})

	t.Run("newline delimited", func(t *testing.T) {
		t.Parallel()
		records, err := DecodeRecords([]byte("{\"ID\": \"a\"}\n{\"ID\": \"b\"}\n\n{\"ID\": \"c\"}\n"))
		require.NoError(t, err)
		require.Len(t, records, 3)
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		records, err := DecodeRecords([]byte("  \n"))
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("garbage", func(t *testing.T) {
		t.Parallel()
		_, err := DecodeRecords([]byte("not json"))
		assert.Error(t, err)
	})
}

func TestDefaultConfigCoversDefaultSchema(t *testing.T) {
	t.Parallel()

	config := DefaultConfig()
	require.NotEmpty(t, config.Fields)

	engine := NewWithSchema(mustSchema(t, config))
	f, err := engine.Compile("DetectTime < 2024-01-01T00:00:00Z")
	require.NoError(t, err)

	cmp, ok := f.Tree.(rules.ComparisonNode)
	require.True(t, ok)
	dt, ok := cmp.Right.(rules.DatetimeNode)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), dt.Value)
}
