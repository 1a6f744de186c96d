package typesystem

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// toArrow converts the package-local arrowTimeUnit to arrow.TimeUnit,
// defaulting to microsecond precision (Arrow's own default) when unset.
func (u arrowTimeUnit) toArrow() arrow.TimeUnit {
	switch u {
	case TimeUnitSecond:
		return arrow.Second
	case TimeUnitMilli:
		return arrow.Millisecond
	case TimeUnitNano:
		return arrow.Nanosecond
	default:
		return arrow.Microsecond
	}
}

// LogicalToArrow maps a LogicalType to its concrete arrow.DataType, sizing
// Timestamp/Time/Decimal per opts. It never errors for any LogicalType in
// the closed enumeration; an unrecognized value falls back to Utf8 so a
// caller extending the enum in the future degrades gracefully rather than
// panicking.
func LogicalToArrow(lt LogicalType, opts ArrowOptions) arrow.DataType {
	switch lt {
	case Boolean:
		return arrow.FixedWidthTypes.Boolean
	case Int8:
		return arrow.PrimitiveTypes.Int8
	case Int16:
		return arrow.PrimitiveTypes.Int16
	case Int32:
		return arrow.PrimitiveTypes.Int32
	case Int64:
		return arrow.PrimitiveTypes.Int64
	case Uint8:
		return arrow.PrimitiveTypes.Uint8
	case Uint16:
		return arrow.PrimitiveTypes.Uint16
	case Uint32:
		return arrow.PrimitiveTypes.Uint32
	case Uint64:
		return arrow.PrimitiveTypes.Uint64
	case Float16:
		return arrow.FixedWidthTypes.Float16
	case Float32:
		return arrow.PrimitiveTypes.Float32
	case Float64:
		return arrow.PrimitiveTypes.Float64
	case String:
		return arrow.BinaryTypes.String
	case Binary:
		return arrow.BinaryTypes.Binary
	case FixedSizeBinary:
		return arrow.BinaryTypes.Binary
	case Date:
		return arrow.FixedWidthTypes.Date32
	case Timestamp:
		return &arrow.TimestampType{Unit: opts.TimeUnit.toArrow()}
	case Time:
		switch opts.TimeUnit.toArrow() {
		case arrow.Second, arrow.Millisecond:
			return &arrow.Time32Type{Unit: opts.TimeUnit.toArrow()}
		default:
			return &arrow.Time64Type{Unit: opts.TimeUnit.toArrow()}
		}
	case Duration:
		return &arrow.DurationType{Unit: opts.TimeUnit.toArrow()}
	case Interval:
		return arrow.FixedWidthTypes.MonthDayNanoInterval
	case Decimal:
		precision, scale := opts.DecimalPrecision, opts.DecimalScale
		if precision == 0 && scale == 0 {
			precision, scale = 38, 9
		}
		return &arrow.Decimal128Type{Precision: precision, Scale: scale}
	case List:
		return arrow.ListOf(arrow.BinaryTypes.String)
	case Struct:
		return arrow.StructOf()
	case Map:
		return arrow.MapOf(arrow.BinaryTypes.String, arrow.BinaryTypes.String)
	case Union:
		return arrow.SparseUnionOf(nil, nil)
	case Dictionary:
		return &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Int32, ValueType: arrow.BinaryTypes.String}
	default:
		return arrow.BinaryTypes.String
	}
}

// ArrowTypeName renders the concrete Arrow type for a LogicalType, useful in log
// lines and error messages without forcing callers to import arrow-go.
func (lt LogicalType) ArrowTypeName(opts ArrowOptions) string {
	return fmt.Sprintf("%v", LogicalToArrow(lt, opts))
}
