// Package typesystem maps logical source types to Arrow types and provides
// total, never-panicking coercion of raw (string or primitive) values into
// typed Arrow-compatible values.
package typesystem

// LogicalType is a closed enumeration of the value kinds the type system
// can infer and coerce. It is distinct from arrow.DataType: a LogicalType
// names "what kind of value this is" independent of its Arrow encoding
// (e.g. Int64 always maps to arrow.PrimitiveTypes.Int64, but Timestamp maps
// to whichever Arrow time unit the caller's ArrowOptions request).
type LogicalType string

const (
	Boolean LogicalType = "boolean"

	Int8  LogicalType = "int8"
	Int16 LogicalType = "int16"
	Int32 LogicalType = "int32"
	Int64 LogicalType = "int64"

	Uint8  LogicalType = "uint8"
	Uint16 LogicalType = "uint16"
	Uint32 LogicalType = "uint32"
	Uint64 LogicalType = "uint64"

	Float16 LogicalType = "float16"
	Float32 LogicalType = "float32"
	Float64 LogicalType = "float64"

	String LogicalType = "string"
	Binary LogicalType = "binary"

	Date      LogicalType = "date"
	Timestamp LogicalType = "timestamp"
	Time      LogicalType = "time"

	Decimal        LogicalType = "decimal"
	List           LogicalType = "list"
	Struct         LogicalType = "struct"
	Map            LogicalType = "map"
	Union          LogicalType = "union"
	Dictionary     LogicalType = "dictionary"
	FixedSizeBinary LogicalType = "fixed_size_binary"
	Interval       LogicalType = "interval"
	Duration       LogicalType = "duration"
)

// InferOptions tunes inferLogicalType's per-value classification.
type InferOptions struct {
	// StrictMode keeps ambiguous currency/percent-looking strings as String
	// instead of guessing a numeric type. Default false.
	StrictMode bool

	// DateFormats are additional layouts (in addition to the built-in set)
	// tried when recognizing a date-shaped value.
	DateFormats []string

	// IntegerThreshold bounds the magnitude an integer-looking value may
	// have before it is treated as too large to be a safe int64 and is
	// instead left as String. Zero means use the default (math.MaxInt64).
	IntegerThreshold int64
}

// ArrowOptions controls which concrete Arrow type a LogicalType maps to,
// for subtypes where more than one Arrow encoding is valid (e.g. Timestamp
// unit, Decimal precision/scale).
type ArrowOptions struct {
	// TimeUnit selects the Arrow time/timestamp/duration unit. Defaults to
	// arrow.Microsecond when zero-valued (the Arrow default).
	TimeUnit arrowTimeUnit

	// DecimalPrecision/DecimalScale size a decimal128 Arrow type. Defaults
	// to (38, 9) when both are zero.
	DecimalPrecision int32
	DecimalScale     int32
}

// arrowTimeUnit mirrors arrow.TimeUnit without importing the arrow package
// from this file, so types.go stays import-light; arrow.go converts it.
type arrowTimeUnit int8

const (
	TimeUnitSecond arrowTimeUnit = iota + 1
	TimeUnitMilli
	TimeUnitMicro
	TimeUnitNano
)
