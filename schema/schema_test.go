package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightbridge/flightbridge/typesystem"
)

func TestInferColumnTypeMajorityVote(t *testing.T) {
	values := []any{"1", "2", "3", "4", "hello"}
	got := InferColumnType(values, Options{})
	assert.Equal(t, typesystem.Int64, got)
}

func TestInferColumnTypeBelowConfidenceFallsBackToString(t *testing.T) {
	values := []any{"1", "a", "2.5", "true", "x"}
	got := InferColumnType(values, Options{})
	assert.Equal(t, typesystem.String, got)
}

func TestInferColumnTypeNullThreshold(t *testing.T) {
	values := []any{"", "", "", "42"}
	got := InferColumnType(values, Options{})
	assert.Equal(t, typesystem.String, got)
}

func TestInferSchemaUnionsColumnNames(t *testing.T) {
	samples := []map[string]any{
		{"name": "John", "age": "25", "city": "New York"},
		{"name": "Jane", "age": "30", "city": "Los Angeles"},
		{"name": "Bob", "age": "35", "city": "Chicago"},
	}
	got := InferSchema(samples, Options{})
	require.Len(t, got, 3)
	assert.Equal(t, typesystem.String, got["name"])
	assert.Equal(t, typesystem.Int64, got["age"])
	assert.Equal(t, typesystem.String, got["city"])
}

func TestGenerateArrowSchemaPreservesOrder(t *testing.T) {
	samples := []map[string]any{
		{"name": "John", "age": "25", "city": "New York"},
	}
	mapping := InferSchema(samples, Options{})
	order := ColumnOrder(samples)
	sch := GenerateArrowSchema(order, mapping, Options{})

	require.Equal(t, 3, sch.NumFields())
	assert.Equal(t, "name", sch.Field(0).Name)
	assert.Equal(t, "age", sch.Field(1).Name)
	assert.Equal(t, "city", sch.Field(2).Name)
	for _, f := range sch.Fields() {
		assert.True(t, f.Nullable)
	}
}

func TestInferSchemaTypeRulesOverride(t *testing.T) {
	samples := []map[string]any{{"id": "42"}}
	got := InferSchema(samples, Options{TypeRules: map[string]typesystem.LogicalType{"id": typesystem.String}})
	assert.Equal(t, typesystem.String, got["id"])
}
