package arrowbuild

import (
	"bytes"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightbridge/flightbridge/typesystem"
)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	cols := &CSVColumns{
		ColumnOrder: []string{"name", "age", "city"},
		LogicalType: map[string]typesystem.LogicalType{
			"name": typesystem.String,
			"age":  typesystem.Int64,
			"city": typesystem.String,
		},
	}
	b, err := New(cols, Options{}, nil)
	require.NoError(t, err)
	return b
}

func TestBuilderCreateRecordBatch(t *testing.T) {
	b := newTestBuilder(t)

	rows := []map[string]any{
		{"name": "John", "age": int64(25), "city": "New York"},
		{"name": "Jane", "age": int64(30), "city": "Los Angeles"},
		{"name": "Bob", "age": int64(35), "city": "Chicago"},
	}

	rec := b.CreateRecordBatch(rows)
	require.NotNil(t, rec)
	defer rec.Release()

	assert.Equal(t, int64(3), rec.NumRows())
	assert.Equal(t, int64(3), rec.NumCols())
}

func TestBuilderCreateRecordBatchEmptyIsNil(t *testing.T) {
	b := newTestBuilder(t)
	assert.Nil(t, b.CreateRecordBatch(nil))
}

func TestBuilderSerializeRoundTrip(t *testing.T) {
	b := newTestBuilder(t)
	rows := []map[string]any{{"name": "John", "age": int64(25), "city": "New York"}}
	rec := b.CreateRecordBatch(rows)
	require.NotNil(t, rec)
	defer rec.Release()

	data := b.SerializeRecordBatch(rec)
	require.NotNil(t, data)
	assert.NotEmpty(t, data)

	reader, err := ipc.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer reader.Release()
	require.True(t, reader.Next())
	assert.Equal(t, int64(1), reader.Record().NumRows())
}

func TestBuilderSerializeSchema(t *testing.T) {
	b := newTestBuilder(t)
	data := b.SerializeSchema()
	require.NotNil(t, data)
	assert.NotEmpty(t, data)
}

func TestBuilderStats(t *testing.T) {
	b := newTestBuilder(t)
	rows := []map[string]any{
		{"name": "John", "age": int64(25), "city": "New York"},
		{"name": "Jane", "age": int64(30), "city": "Los Angeles"},
	}
	rec := b.CreateRecordBatch(rows)
	require.NotNil(t, rec)
	defer rec.Release()

	stats := BatchStats(rec)
	assert.Equal(t, int64(2), stats.NumRows)
	assert.Equal(t, int64(3), stats.NumCols)
}
