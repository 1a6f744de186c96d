package typesystem

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// CoercerFunc is a caller-supplied override for coercing a value of a given
// LogicalType. It participates in the same total-coercion contract as the
// built-in coercers: returning (nil, nil) means "could not coerce", not an
// error.
type CoercerFunc func(value any, opts ArrowOptions) (any, error)

// Registry holds caller-extensible inference/coercion behavior. Unlike a
// package-level global, a Registry is an explicit value a caller constructs
// and calls directly; the schema and arrowbuild packages use the
// package-level functions and take no Registry. Two callers in the same
// process can run independent registries without interfering with each
// other's custom types.
type Registry struct {
	infer    InferOptions
	arrow    ArrowOptions
	coercers map[LogicalType]CoercerFunc
}

// NewRegistry builds a Registry seeded with the given default options. A
// zero-value InferOptions/ArrowOptions is valid and uses the package
// defaults described on those types.
func NewRegistry(infer InferOptions, arrow ArrowOptions) *Registry {
	return &Registry{
		infer:    infer,
		arrow:    arrow,
		coercers: make(map[LogicalType]CoercerFunc),
	}
}

// RegisterCoercer installs a custom coercion function for lt, overriding the
// package's built-in Coerce behavior for that LogicalType. Registering for a
// type not in the closed enumeration is a no-op error, since Registry never
// silently extends the enum.
func (r *Registry) RegisterCoercer(lt LogicalType, fn CoercerFunc) error {
	if !isKnownLogicalType(lt) {
		return fmt.Errorf("typesystem: unknown logical type %q", lt)
	}
	r.coercers[lt] = fn
	return nil
}

// Infer classifies value using the registry's configured InferOptions.
func (r *Registry) Infer(value any) LogicalType {
	return InferLogicalType(value, r.infer)
}

// Coerce converts value to lt's Go representation, preferring a registered
// custom coercer over the package default when one exists for lt.
func (r *Registry) Coerce(value any, lt LogicalType) (any, error) {
	if fn, ok := r.coercers[lt]; ok {
		return fn(value, r.arrow)
	}
	return Coerce(value, lt, r.arrow)
}

// ArrowType returns the concrete arrow.DataType for lt under this registry's
// ArrowOptions.
func (r *Registry) ArrowType(lt LogicalType) arrow.DataType {
	return LogicalToArrow(lt, r.arrow)
}

func isKnownLogicalType(lt LogicalType) bool {
	switch lt {
	case Boolean, Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64,
		Float16, Float32, Float64, String, Binary, Date, Timestamp, Time,
		Decimal, List, Struct, Map, Union, Dictionary, FixedSizeBinary,
		Interval, Duration:
		return true
	default:
		return false
	}
}
