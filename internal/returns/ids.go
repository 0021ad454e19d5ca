package returns

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ParseID reads a positive integer id from a JSON number or numeric string.
func ParseID(raw any) (int64, bool) {
	switch v := raw.(type) {
	case float64:
		if v <= 0 || v != math.Trunc(v) || v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case int:
		return int64(v), v > 0
	case int64:
		return v, v > 0
	case json.Number:
		return parseIDString(v.String())
	case string:
		return parseIDString(v)
	default:
		return 0, false
	}
}

func parseIDString(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
