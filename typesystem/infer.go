package typesystem

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	boolPattern    = regexp.MustCompile(`(?i)^(true|false|yes|no|y|n|1|0)$`)
	intPattern     = regexp.MustCompile(`^-?\d+$`)
	floatPattern   = regexp.MustCompile(`^-?\d*\.\d+$`)
	sciPattern     = regexp.MustCompile(`(?i)^-?\d+(\.\d+)?e[+-]?\d+$`)
	isoTimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T`)
	epoch10Pattern = regexp.MustCompile(`^\d{10}$`)
	epoch13Pattern = regexp.MustCompile(`^\d{13}$`)
)

// builtinDateFormats are tried in order against a trimmed value when
// recognizing date-shaped strings, matching spec.md 4.A rule 5.
var builtinDateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"02-01-2006",
	"01-02-2006",
}

const defaultIntegerThreshold = math.MaxInt64

// InferLogicalType classifies a raw value's trimmed string form into a
// LogicalType, applying the ordered rules from the specification. It never
// errors: unrecognized shapes fall through to String.
func InferLogicalType(value any, opts InferOptions) LogicalType {
	s := toTrimmedString(value)

	// Rule 1: empty/null placeholder.
	if s == "" {
		return String
	}

	// Rule 2: boolean-looking tokens, checked before numeric rules so that
	// "1"/"0" land here first — downstream column-type voting is expected
	// to demote stray booleans in numeric columns via confidenceThreshold.
	// Do not reorder this check relative to the integer rule below.
	if boolPattern.MatchString(s) {
		return Boolean
	}

	threshold := opts.IntegerThreshold
	if threshold == 0 {
		threshold = defaultIntegerThreshold
	}

	// Rule 3: integer.
	if intPattern.MatchString(s) {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			if n < 0 {
				n = -n
			}
			if n <= threshold {
				return Int64
			}
		}
		return String
	}

	// Rule 4: float (decimal or scientific notation).
	if !opts.StrictMode && (floatPattern.MatchString(s) || sciPattern.MatchString(s)) {
		return Float64
	}
	if opts.StrictMode && (floatPattern.MatchString(s) || sciPattern.MatchString(s)) {
		if looksAmbiguous(s) {
			return String
		}
		return Float64
	}

	// Rule 5: date.
	formats := append(append([]string{}, builtinDateFormats...), opts.DateFormats...)
	for _, layout := range formats {
		if _, err := time.Parse(layout, s); err == nil {
			return Date
		}
	}

	// Rule 6: ISO timestamp or plausible epoch seconds/millis. All-digit
	// values are already decided by rule 3, so the epoch check below does
	// not change the result for them.
	if isoTimePattern.MatchString(s) {
		if _, err := time.Parse(time.RFC3339, s); err == nil {
			return Timestamp
		}
		if _, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
			return Timestamp
		}
	}
	if epoch10Pattern.MatchString(s) || epoch13Pattern.MatchString(s) {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil && plausibleEpoch(n, epoch13Pattern.MatchString(s)) {
			return Timestamp
		}
	}

	// Rule 7: fallback.
	return String
}

// looksAmbiguous flags currency/percent-decorated numerics so strict mode
// can keep them as strings instead of guessing.
func looksAmbiguous(s string) bool {
	return strings.ContainsAny(s, "$%€£¥")
}

// plausibleEpoch bounds epoch values to roughly 1990-2100 to avoid treating
// arbitrary large integers as timestamps.
func plausibleEpoch(n int64, millis bool) bool {
	const minSec, maxSec = 631152000, 4102444800 // 1990-01-01 .. 2100-01-01
	if millis {
		n /= 1000
	}
	return n >= minSec && n <= maxSec
}

func toTrimmedString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []byte:
		return strings.TrimSpace(string(v))
	default:
		return strings.TrimSpace(toString(v))
	}
}
