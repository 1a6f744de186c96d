package typesystem

import "testing"

func TestInferLogicalType(t *testing.T) {
	cases := []struct {
		name  string
		value any
		opts  InferOptions
		want  LogicalType
	}{
		{"empty", "", InferOptions{}, String},
		{"bool true", "true", InferOptions{}, Boolean},
		{"bool numeric", "1", InferOptions{}, Boolean},
		{"bool numeric zero", "0", InferOptions{}, Boolean},
		{"integer", "42", InferOptions{}, Int64},
		{"negative integer", "-42", InferOptions{}, Int64},
		{"over threshold", "999", InferOptions{IntegerThreshold: 10}, String},
		{"float", "3.14", InferOptions{}, Float64},
		{"scientific", "1.5e10", InferOptions{}, Float64},
		{"ambiguous strict", "$3.14", InferOptions{StrictMode: true}, String},
		{"date", "2024-01-15", InferOptions{}, Date},
		{"iso timestamp", "2024-01-15T10:30:00Z", InferOptions{}, Timestamp},
		{"epoch-sized integer", "1700000000", InferOptions{}, Int64},
		{"fallback string", "hello world", InferOptions{}, String},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := InferLogicalType(tc.value, tc.opts)
			if got != tc.want {
				t.Errorf("InferLogicalType(%q) = %q, want %q", tc.value, got, tc.want)
			}
		})
	}
}

func TestInferLogicalTypeBooleanBeforeInteger(t *testing.T) {
	// "1" and "0" must classify as Boolean even though they also match the
	// integer pattern; column-level voting is expected to demote this when
	// a column is mostly numeric.
	if got := InferLogicalType("1", InferOptions{}); got != Boolean {
		t.Fatalf("expected \"1\" to infer as Boolean, got %q", got)
	}
}
