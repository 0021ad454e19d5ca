package returns

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var maxFine = decimal.NewFromInt(math.MaxInt64)

// ParseFine coerces a fine amount from a JSON number or numeric string.
// Missing, non-numeric and negative inputs yield 0; fractions are floored.
func ParseFine(raw any) int64 {
	var (
		d   decimal.Decimal
		err error
	)
	switch v := raw.(type) {
	case nil:
		return 0
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		d = decimal.NewFromFloat(v)
	case float32:
		d = decimal.NewFromFloat32(v)
	case int:
		d = decimal.NewFromInt(int64(v))
	case int64:
		d = decimal.NewFromInt(v)
	case json.Number:
		d, err = decimal.NewFromString(v.String())
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0
		}
		d, err = decimal.NewFromString(trimmed)
	default:
		return 0
	}
	if err != nil || d.IsNegative() {
		return 0
	}
	d = d.Floor()
	if d.GreaterThan(maxFine) {
		return 0
	}
	return d.IntPart()
}
