// Package pagination implements opaque cursor pagination keyed on
// (created_at, id). Cursors are stable under inserts: the same cursor with no
// intervening writes always yields the same page.
package pagination

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultPageSize is used when a pager is built with a non-positive size.
const DefaultPageSize = 10

// ErrInvalidCursor is returned for cursors that cannot be decoded.
var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor is a position between two rows. Reverse cursors walk back towards
// the first page.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
	Reverse   bool
}

// Keyed rows expose their ordering key.
type Keyed interface {
	CursorKey() (time.Time, uuid.UUID)
}

// Page is one slice of results plus the cursors around it.
type Page[T any] struct {
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// CursorPager restricts a query to one page and reports the page size.
type CursorPager interface {
	Size() int
	Scope(cur *Cursor) func(*gorm.DB) *gorm.DB
}

// Pager is the GORM CursorPager. Table qualifies the key columns so the scope
// survives joins.
type Pager struct {
	PageSize   int
	Descending bool
	Table      string
}

func New(table string, pageSize int, descending bool) Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return Pager{PageSize: pageSize, Descending: descending, Table: table}
}

func (p Pager) Size() int { return p.PageSize }

// Scope filters past the cursor, orders by the key and fetches one extra row
// to detect whether another page exists.
func (p Pager) Scope(cur *Cursor) func(*gorm.DB) *gorm.DB {
	createdAt, id := p.column("created_at"), p.column("id")
	return func(db *gorm.DB) *gorm.DB {
		asc := !p.Descending
		if cur != nil && cur.Reverse {
			asc = !asc
		}
		op, dir := "<", "DESC"
		if asc {
			op, dir = ">", "ASC"
		}
		if cur != nil {
			db = db.Where(
				fmt.Sprintf("(%s %s ? OR (%s = ? AND %s %s ?))", createdAt, op, createdAt, id, op),
				cur.CreatedAt, cur.CreatedAt, cur.ID,
			)
		}
		return db.Order(fmt.Sprintf("%s %s, %s %s", createdAt, dir, id, dir)).Limit(p.PageSize + 1)
	}
}

func (p Pager) column(name string) string {
	if p.Table == "" {
		return name
	}
	return p.Table + "." + name
}

// Cut trims rows fetched through Scope to one page and computes the
// surrounding cursors.
func Cut[T Keyed](p CursorPager, rows []T, cur *Cursor) Page[T] {
	hasMore := len(rows) > p.Size()
	if hasMore {
		rows = rows[:p.Size()]
	}
	reverse := cur != nil && cur.Reverse
	if reverse {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}

	page := Page[T]{Results: rows}
	if len(rows) == 0 {
		return page
	}
	first, last := rows[0], rows[len(rows)-1]
	if reverse || hasMore {
		page.Next = encodeKey(last, false)
	}
	if (!reverse && cur != nil) || (reverse && hasMore) {
		page.Previous = encodeKey(first, true)
	}
	return page
}

// Map converts the results of a page while keeping its cursors.
func Map[T, R any](p Page[T], fn func(T) R) Page[R] {
	out := Page[R]{Next: p.Next, Previous: p.Previous, Results: make([]R, len(p.Results))}
	for i, row := range p.Results {
		out.Results[i] = fn(row)
	}
	return out
}

func encodeKey(row Keyed, reverse bool) *string {
	createdAt, id := row.CursorKey()
	s := EncodeCursor(Cursor{CreatedAt: createdAt, ID: id, Reverse: reverse})
	return &s
}

// EncodeCursor builds an opaque base64 cursor.
func EncodeCursor(c Cursor) string {
	dir := "n"
	if c.Reverse {
		dir = "r"
	}
	payload := fmt.Sprintf("%s|%s|%s", dir, c.CreatedAt.UTC().Format(time.RFC3339Nano), c.ID.String())
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// ParseCursor decodes a cursor. An empty string means "first page" and
// returns nil without error.
func ParseCursor(value string) (*Cursor, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	parts := strings.SplitN(string(decoded), "|", 3)
	if len(parts) != 3 || (parts[0] != "n" && parts[0] != "r") {
		return nil, ErrInvalidCursor
	}
	t, err := time.Parse(time.RFC3339Nano, parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	id, err := uuid.Parse(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	return &Cursor{CreatedAt: t, ID: id, Reverse: parts[0] == "r"}, nil
}
