package arrowbuild

import (
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/flightbridge/flightbridge/typesystem"
)

// CSVColumns is the concrete ColumnBuilder for CSV-sourced datasets: source
// types are LogicalType names in column order, and rows are already
// coerced (see csvsource) to the Go value each LogicalType maps to.
type CSVColumns struct {
	ColumnOrder []string
	LogicalType map[string]typesystem.LogicalType
	ArrowOpts   typesystem.ArrowOptions
}

// BuildSchema constructs the Arrow schema from the column order and
// per-column logical types, in a single pass with no intermediate mapping.
func (c *CSVColumns) BuildSchema() (*arrow.Schema, error) {
	fields := make([]arrow.Field, len(c.ColumnOrder))
	for i, name := range c.ColumnOrder {
		lt, ok := c.LogicalType[name]
		if !ok {
			lt = typesystem.String
		}
		fields[i] = arrow.Field{
			Name:     name,
			Type:     c.MapType(string(lt)),
			Nullable: true,
		}
	}
	return arrow.NewSchema(fields, nil), nil
}

// MapType maps a LogicalType name to its Arrow type under c's ArrowOptions.
func (c *CSVColumns) MapType(sourceType string) arrow.DataType {
	return typesystem.LogicalToArrow(typesystem.LogicalType(sourceType), c.ArrowOpts)
}

// CreateVectors builds one arrow.Array per column directly from rows: each
// column's builder is appended to in a single pass over rows, never via a
// row-by-row intermediate struct/map transpose per column.
func (c *CSVColumns) CreateVectors(allocator memory.Allocator, rows []map[string]any, schema *arrow.Schema) ([]arrow.Array, error) {
	n := schema.NumFields()
	builders := make([]array.Builder, n)
	for i := 0; i < n; i++ {
		builders[i] = array.NewBuilder(allocator, schema.Field(i).Type)
	}
	defer func() {
		for _, b := range builders {
			b.Release()
		}
	}()

	for _, row := range rows {
		for i := 0; i < n; i++ {
			field := schema.Field(i)
			appendValue(builders[i], row[field.Name])
		}
	}

	out := make([]arrow.Array, n)
	for i, b := range builders {
		out[i] = b.NewArray()
	}
	return out, nil
}

// appendValue appends v (already coerced, or nil) to builder, falling back
// to a null append for any value shape the concrete builder rejects rather
// than panicking — CSV data is untrusted.
func appendValue(builder array.Builder, v any) {
	if v == nil {
		builder.AppendNull()
		return
	}

	switch b := builder.(type) {
	case *array.BooleanBuilder:
		if bv, ok := v.(bool); ok {
			b.Append(bv)
			return
		}
	case *array.Int8Builder:
		if n, ok := toInt64(v); ok {
			b.Append(int8(n))
			return
		}
	case *array.Int16Builder:
		if n, ok := toInt64(v); ok {
			b.Append(int16(n))
			return
		}
	case *array.Int32Builder:
		if n, ok := toInt64(v); ok {
			b.Append(int32(n))
			return
		}
	case *array.Int64Builder:
		if n, ok := toInt64(v); ok {
			b.Append(n)
			return
		}
	case *array.Uint8Builder:
		if n, ok := toUint64(v); ok {
			b.Append(uint8(n))
			return
		}
	case *array.Uint16Builder:
		if n, ok := toUint64(v); ok {
			b.Append(uint16(n))
			return
		}
	case *array.Uint32Builder:
		if n, ok := toUint64(v); ok {
			b.Append(uint32(n))
			return
		}
	case *array.Uint64Builder:
		if n, ok := toUint64(v); ok {
			b.Append(n)
			return
		}
	case *array.Float32Builder:
		if f, ok := toFloat64(v); ok {
			b.Append(float32(f))
			return
		}
	case *array.Float64Builder:
		if f, ok := toFloat64(v); ok {
			b.Append(f)
			return
		}
	case *array.StringBuilder:
		b.Append(fmt.Sprintf("%v", v))
		return
	case *array.BinaryBuilder:
		if raw, ok := v.([]byte); ok {
			b.Append(raw)
			return
		}
		b.Append([]byte(fmt.Sprintf("%v", v)))
		return
	case *array.Date32Builder:
		if t, ok := v.(time.Time); ok {
			b.Append(arrow.Date32FromTime(t))
			return
		}
	case *array.TimestampBuilder:
		if t, ok := v.(time.Time); ok {
			unit := arrow.Microsecond
			if ts, isTS := builder.Type().(*arrow.TimestampType); isTS {
				unit = ts.Unit
			}
			if stamp, err := arrow.TimestampFromTime(t, unit); err == nil {
				b.Append(stamp)
				return
			}
		}
	case *array.Time32Builder:
		if t, ok := v.(time.Time); ok {
			midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
			b.Append(arrow.Time32(t.Sub(midnight).Milliseconds()))
			return
		}
	case *array.Time64Builder:
		if t, ok := v.(time.Time); ok {
			midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
			b.Append(arrow.Time64(t.Sub(midnight).Microseconds()))
			return
		}
	}
	builder.AppendNull()
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case uint64:
		return int64(n), true
	}
	return 0, false
}

func toUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint64:
		return n, true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
