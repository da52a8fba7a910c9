package media

import (
	"encoding/json"

	"github.com/desertthunder/bcx/internal/connection"
)

// ResultSet is one page of finder results. Items are decoded as they are
// iterated; once drained, or after a decode error, Next keeps returning false.
//
//	rs, err := media.FindAllPlaylists(ctx, conn, nil)
//	for rs.Next() {
//		p := rs.Item()
//	}
//	if err := rs.Err(); err != nil { ... }
type ResultSet[T any] struct {
	TotalCount int
	PageSize   int
	PageNumber int

	raw    []json.RawMessage
	decode func(json.RawMessage) (T, error)
	pos    int
	cur    T
	err    error
}

func newResultSet[T any](page *connection.ItemCollection, decode func(json.RawMessage) (T, error)) *ResultSet[T] {
	return &ResultSet[T]{
		TotalCount: page.TotalCount,
		PageSize:   page.PageSize,
		PageNumber: page.PageNumber,
		raw:        page.Items,
		decode:     decode,
	}
}

// Next decodes the next item and reports whether one is available.
func (r *ResultSet[T]) Next() bool {
	if r.err != nil || r.pos >= len(r.raw) {
		return false
	}

	item, err := r.decode(r.raw[r.pos])
	r.pos++
	if err != nil {
		r.err = err
		r.pos = len(r.raw)
		var zero T
		r.cur = zero
		return false
	}
	r.cur = item
	return true
}

// Item returns the entity decoded by the last successful Next.
func (r *ResultSet[T]) Item() T { return r.cur }

// Err returns the decode error that stopped iteration, if any.
func (r *ResultSet[T]) Err() error { return r.err }

// Len is the number of items on the page.
func (r *ResultSet[T]) Len() int { return len(r.raw) }

// All drains the remaining items.
func (r *ResultSet[T]) All() ([]T, error) {
	var out []T
	for r.Next() {
		out = append(out, r.Item())
	}
	return out, r.Err()
}
