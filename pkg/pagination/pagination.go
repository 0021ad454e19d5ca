package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Cursor is the (created_at, id) keyset of the last row on a page. Rows are
// ordered newest first, so the next page holds everything strictly older.
type Cursor struct {
	CreatedAt time.Time
	ID        int64
}

type cursorPayload struct {
	At string `json:"t"`
	ID int64  `json:"i"`
}

// NormalizeLimit maps a non-positive limit to DefaultLimit and clamps at MaxLimit.
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// LimitWithBuffer asks for one extra row so callers can tell whether a next page exists.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

// Trim cuts a buffered result back to limit rows. It reports whether the
// buffer row was present, i.e. whether another page follows.
func Trim[T any](rows []T, limit int) ([]T, bool) {
	limit = NormalizeLimit(limit)
	if len(rows) <= limit {
		return rows, false
	}
	return rows[:limit], true
}

// EncodeCursor renders an opaque URL-safe token.
func EncodeCursor(c Cursor) string {
	raw, _ := json.Marshal(cursorPayload{At: c.CreatedAt.UTC().Format(time.RFC3339Nano), ID: c.ID})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// ParseCursor returns nil for a blank token.
func ParseCursor(value string) (*Cursor, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	var p cursorPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("invalid cursor payload: %w", err)
	}
	at, err := time.Parse(time.RFC3339Nano, p.At)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor timestamp: %w", err)
	}
	if p.ID <= 0 {
		return nil, fmt.Errorf("invalid cursor id %d", p.ID)
	}
	return &Cursor{CreatedAt: at, ID: p.ID}, nil
}
