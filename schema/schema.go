// Package schema infers a per-column logical type from a bounded sample of
// row-oriented data and turns the result into an Arrow schema.
package schema

import (
	"sort"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/flightbridge/flightbridge/typesystem"
)

// Options tunes inferColumnType/inferSchema voting, matching the defaults
// a CSV-backed catalog scan uses.
type Options struct {
	// SampleSize bounds how many non-null values of a column are classified
	// before voting on its type. Zero means the default of 1000.
	SampleSize int

	// NullThreshold is the fraction of null/empty values in a column above
	// which the column is forced to String regardless of its non-null
	// values. Zero means the default of 0.5.
	NullThreshold float64

	// ConfidenceThreshold is the minimum share the most frequent inferred
	// type must hold among a column's classified samples to win the vote.
	// Zero means the default of 0.6.
	ConfidenceThreshold float64

	// TypeRules overrides the logical type chosen for specific column
	// names, bypassing inference entirely for those columns.
	TypeRules map[string]typesystem.LogicalType

	Infer typesystem.InferOptions
	Arrow typesystem.ArrowOptions
}

const (
	defaultSampleSize          = 1000
	defaultNullThreshold       = 0.5
	defaultConfidenceThreshold = 0.6
)

func (o Options) withDefaults() Options {
	if o.SampleSize <= 0 {
		o.SampleSize = defaultSampleSize
	}
	if o.NullThreshold <= 0 {
		o.NullThreshold = defaultNullThreshold
	}
	if o.ConfidenceThreshold <= 0 {
		o.ConfidenceThreshold = defaultConfidenceThreshold
	}
	return o
}

// isBlank reports whether a raw sample value counts as null/empty for the
// purposes of NullThreshold: Go's nil, and the empty string (CSV cells never
// carry a distinct "undefined", only "").
func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// InferColumnType classifies a single column's sampled raw values into a
// LogicalType by majority vote, per spec.md 4.B: columns dominated by
// blanks become String outright; otherwise the most frequent type among the
// first SampleSize non-blank values wins provided it clears
// ConfidenceThreshold, else the column falls back to String.
func InferColumnType(values []any, opts Options) typesystem.LogicalType {
	opts = opts.withDefaults()

	if len(values) == 0 {
		return typesystem.String
	}

	blanks := 0
	for _, v := range values {
		if isBlank(v) {
			blanks++
		}
	}
	if float64(blanks)/float64(len(values)) > opts.NullThreshold {
		return typesystem.String
	}

	counts := make(map[typesystem.LogicalType]int)
	sampled := 0
	for _, v := range values {
		if isBlank(v) {
			continue
		}
		if sampled >= opts.SampleSize {
			break
		}
		lt := typesystem.InferLogicalType(v, opts.Infer)
		counts[lt]++
		sampled++
	}
	if sampled == 0 {
		return typesystem.String
	}

	var winner typesystem.LogicalType
	best := 0
	// Deterministic tie-break: iterate types in lexical order of their
	// names rather than Go's randomized map order; the first type with the
	// highest count wins.
	order := make([]typesystem.LogicalType, 0, len(counts))
	for lt := range counts {
		order = append(order, lt)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	for _, lt := range order {
		if counts[lt] > best {
			best = counts[lt]
			winner = lt
		}
	}

	if float64(best)/float64(sampled) >= opts.ConfidenceThreshold {
		return winner
	}
	return typesystem.String
}

// InferSchema unions all column names seen across samples (a slice of
// row maps) and classifies each column independently via InferColumnType.
// Rows need not share the same key set; a column absent from a row is
// ignored for that row rather than treated as a blank value.
func InferSchema(samples []map[string]any, opts Options) map[string]typesystem.LogicalType {
	columns := make(map[string][]any)
	var order []string
	for _, row := range samples {
		for k, v := range row {
			if _, seen := columns[k]; !seen {
				order = append(order, k)
			}
			columns[k] = append(columns[k], v)
		}
	}

	result := make(map[string]typesystem.LogicalType, len(columns))
	for _, name := range order {
		if override, ok := opts.TypeRules[name]; ok {
			result[name] = override
			continue
		}
		result[name] = InferColumnType(columns[name], opts)
	}
	return result
}

// NormalizeSchema maps each column's inferred LogicalType to its Arrow type
// name. Names not in the closed enumeration fall back to "utf8".
func NormalizeSchema(mapping map[string]typesystem.LogicalType, opts Options) map[string]string {
	out := make(map[string]string, len(mapping))
	for name, lt := range mapping {
		out[name] = arrowTypeName(lt, opts.Arrow)
	}
	return out
}

func arrowTypeName(lt typesystem.LogicalType, arrowOpts typesystem.ArrowOptions) string {
	dt := typesystem.LogicalToArrow(lt, arrowOpts)
	if dt == nil {
		return "utf8"
	}
	return dt.Name()
}

// ColumnOrder preserves first-seen column order across InferSchema, needed
// because Go maps don't. Callers building an arrow.Schema should pass an
// explicit order rather than ranging mapping directly.
func ColumnOrder(samples []map[string]any) []string {
	seen := make(map[string]bool)
	var order []string
	for _, row := range samples {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				order = append(order, k)
			}
		}
	}
	return order
}

// GenerateArrowSchema builds an arrow.Schema from a column-to-LogicalType
// mapping (as returned by InferSchema) and an explicit column order (see ColumnOrder). All fields are
// nullable, matching spec.md 3's "nullability defaults to true".
func GenerateArrowSchema(columnOrder []string, mapping map[string]typesystem.LogicalType, opts Options) *arrow.Schema {
	fields := make([]arrow.Field, 0, len(columnOrder))
	for _, name := range columnOrder {
		lt, ok := mapping[name]
		if !ok {
			lt = typesystem.String
		}
		fields = append(fields, arrow.Field{
			Name:     name,
			Type:     typesystem.LogicalToArrow(lt, opts.Arrow),
			Nullable: true,
		})
	}
	return arrow.NewSchema(fields, nil)
}
