package pagination

import (
	"strconv"
	"time"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 100
	MaxPageSize     = 500
)

// Normalize clamps the page size into [1, MaxPageSize].
func (p Pagination) Normalize() Pagination {
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Apply adds keyset conditions for a (created_at, id) descending cursor and
// fetches one extra row so callers can detect another page. column prefixes
// the cursor columns, e.g. "m." for an aliased table.
func Apply(stmt *gorm.DB, page Pagination, column string) (*gorm.DB, error) {
	page = page.Normalize()
	if page.PageToken != "" {
		cursor, err := DecodeCursor(page.PageToken)
		if err != nil {
			return nil, err
		}
		createdAt, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
		if err != nil {
			return nil, err
		}
		id, err := strconv.ParseInt(cursor.ID, 10, 64)
		if err != nil {
			return nil, err
		}
		stmt = stmt.Where(
			"("+column+"created_at < ?) OR ("+column+"created_at = ? AND "+column+"id < ?)",
			createdAt.UTC(), createdAt.UTC(), id,
		)
	}
	return stmt.Limit(page.PageSize + 1), nil
}
