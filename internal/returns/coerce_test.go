package returns

import (
	"encoding/json"
	"testing"
)

func TestParseFine(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want int64
	}{
		{name: "nil", raw: nil, want: 0},
		{name: "json number", raw: float64(5000), want: 5000},
		{name: "fraction floors", raw: 2500.9, want: 2500},
		{name: "numeric string", raw: "5000", want: 5000},
		{name: "padded string", raw: " 750 ", want: 750},
		{name: "json.Number", raw: json.Number("1200"), want: 1200},
		{name: "negative", raw: float64(-10), want: 0},
		{name: "negative string", raw: "-1", want: 0},
		{name: "non numeric", raw: "lima ribu", want: 0},
		{name: "empty string", raw: "", want: 0},
		{name: "bool", raw: true, want: 0},
		{name: "overflow", raw: "99999999999999999999999", want: 0},
	}
	for _, tt := range tests {
		if got := ParseFine(tt.raw); got != tt.want {
			t.Fatalf("%s: ParseFine(%v) = %d, want %d", tt.name, tt.raw, got, tt.want)
		}
	}
}

func TestParseID(t *testing.T) {
	good := []any{float64(42), "42", json.Number("42"), int64(42)}
	for _, raw := range good {
		id, ok := ParseID(raw)
		if !ok || id != 42 {
			t.Fatalf("ParseID(%v) = %d, %v", raw, id, ok)
		}
	}
	bad := []any{nil, float64(0), float64(-1), 4.2, "abc", "", true}
	for _, raw := range bad {
		if _, ok := ParseID(raw); ok {
			t.Fatalf("ParseID(%v) should fail", raw)
		}
	}
}
