package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows a single page can return.
	MaxLimit = 100
)

// Params holds cursor pagination inputs from commands or services.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor points just past the last row of the previous page.
type Cursor struct {
	Offset int
	LastID string
}

// Page is one slice of a listing plus the cursor for the next one.
type Page[T any] struct {
	Items      []T
	NextCursor string
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// EncodeCursor builds a base64 cursor string from the provided values.
func EncodeCursor(cursor Cursor) string {
	payload := fmt.Sprintf("%d|%s", cursor.Offset, cursor.LastID)
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// ParseCursor decodes the cursor string back into its components. An empty
// value means the first page.
func ParseCursor(value string) (*Cursor, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	rawOffset, lastID, ok := strings.Cut(string(decoded), "|")
	if !ok || lastID == "" {
		return nil, fmt.Errorf("invalid cursor format")
	}
	offset, err := strconv.Atoi(rawOffset)
	if err != nil || offset < 1 {
		return nil, fmt.Errorf("invalid cursor offset")
	}
	return &Cursor{Offset: offset, LastID: lastID}, nil
}

// Paginate returns the page of items selected by params. id names each item
// so a cursor taken from a listing that has since changed is rejected
// instead of silently skipping rows.
func Paginate[T any](items []T, params Params, id func(T) string) (Page[T], error) {
	limit := NormalizeLimit(params.Limit)

	cursor, err := ParseCursor(params.Cursor)
	if err != nil {
		return Page[T]{}, err
	}
	start := 0
	if cursor != nil {
		if cursor.Offset > len(items) || id(items[cursor.Offset-1]) != cursor.LastID {
			return Page[T]{}, fmt.Errorf("cursor is stale")
		}
		start = cursor.Offset
	}

	end := min(start+limit, len(items))
	page := Page[T]{Items: items[start:end]}
	if end < len(items) {
		page.NextCursor = EncodeCursor(Cursor{Offset: end, LastID: id(items[end-1])})
	}
	return page, nil
}
