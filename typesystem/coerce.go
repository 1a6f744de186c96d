package typesystem

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Coerce converts a raw value to the Go representation appropriate for
// logical type lt (sized/typed per at). Coercion is total: unparseable
// input yields (nil, nil), and Coerce never returns a non-nil error. Custom
// coercers are not consulted here; Registry.Coerce calls them (see
// Registry.RegisterCoercer).
func Coerce(value any, lt LogicalType, at ArrowOptions) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch lt {
	case Boolean:
		return coerceBool(value), nil
	case Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64:
		return coerceInteger(value, lt), nil
	case Float16, Float32, Float64:
		return coerceFloat(value), nil
	case String:
		return toString(value), nil
	case Binary:
		return coerceBinary(value), nil
	case Date:
		return coerceDate(value)
	case Timestamp:
		return coerceTimestamp(value, at)
	case Time:
		return coerceTime(value, at)
	case Decimal, Union, Dictionary, Interval, Duration:
		// Pass-through: the Arrow builder layer handles final encoding.
		return value, nil
	case List, Struct, Map:
		return coerceNested(value)
	default:
		return value, nil
	}
}

func coerceBool(value any) any {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "on":
			return true
		default:
			return false
		}
	default:
		return isTruthy(value)
	}
}

func isTruthy(value any) bool {
	switch v := value.(type) {
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", v) != "0"
	case float32, float64:
		return fmt.Sprintf("%v", v) != "0"
	case nil:
		return false
	default:
		return v != nil
	}
}

func coerceInteger(value any, lt LogicalType) any {
	s := toTrimmedString(value)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Non-integer input and values outside the int64 range yield nil.
		return nil
	}
	switch lt {
	case Int8, Int16, Int32, Int64:
		return n
	default: // unsigned family
		if n < 0 {
			return nil
		}
		return uint64(n)
	}
}

func coerceFloat(value any) any {
	s := toTrimmedString(value)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return nil
	}
	return f
}

func coerceBinary(value any) any {
	switch v := value.(type) {
	case []byte:
		return v
	case string:
		if decoded, err := base64.StdEncoding.DecodeString(v); err == nil {
			return decoded
		}
		return []byte(v)
	case []any:
		out := make([]byte, 0, len(v))
		for _, elem := range v {
			n, ok := elem.(float64)
			if !ok {
				return nil
			}
			out = append(out, byte(int(n)))
		}
		return out
	default:
		return nil
	}
}

func coerceDate(value any) (any, error) {
	s := toTrimmedString(value)
	if s == "" {
		return nil, nil
	}
	for _, layout := range builtinDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return nil, nil
}

func coerceTimestamp(value any, at ArrowOptions) (any, error) {
	s := toTrimmedString(value)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		switch {
		case epoch13Pattern.MatchString(s):
			return time.UnixMilli(n).UTC(), nil
		case epoch10Pattern.MatchString(s):
			return time.Unix(n, 0).UTC(), nil
		}
	}
	return nil, nil
}

func coerceTime(value any, at ArrowOptions) (any, error) {
	s := toTrimmedString(value)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{"15:04:05", "15:04:05.999999999", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return nil, nil
}

func coerceNested(value any) (any, error) {
	switch v := value.(type) {
	case string:
		var parsed any
		if err := json.Unmarshal([]byte(v), &parsed); err != nil {
			// Wrap a bare scalar into a single-element list, the closest
			// total interpretation of an unparsable nested value.
			return []any{v}, nil
		}
		return parsed, nil
	default:
		return value, nil
	}
}

func toString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
