package service

import (
	"fmt"

	"github.com/ctu-developers/DSpace/internal/repository"
)

const (
	DefaultLimit  = 20
	DefaultOffset = 0
)

// Page is a limit/offset window over a result sequence
type Page struct {
	Limit  int
	Offset int
}

// NewPage normalizes limit and offset, falling back to the defaults for
// out-of-range values
func NewPage(limit, offset int) Page {
	if limit < 1 {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = DefaultOffset
	}
	return Page{Limit: limit, Offset: offset}
}

// collect walks it once and returns the page of entries accepted by keep.
// Rejected entries count against neither offset nor limit. A nil keep
// accepts everything. it is closed on every path.
func collect[T any](it repository.Iterator[T], page Page, keep func(T) bool) (out []T, err error) {
	defer func() {
		if cerr := it.Close(); cerr != nil && err == nil {
			out, err = nil, fmt.Errorf("failed to close cursor: %w", cerr)
		}
	}()

	skipped := 0
	for len(out) < page.Limit && it.Next() {
		v := it.Value()
		if keep != nil && !keep(v) {
			continue
		}
		if skipped < page.Offset {
			skipped++
			continue
		}
		out = append(out, v)
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// sliceIterator serves an in-memory list through repository.Iterator
type sliceIterator[T any] struct {
	items []T
	pos   int
}

func newSliceIterator[T any](items []T) *sliceIterator[T] {
	return &sliceIterator[T]{items: items, pos: -1}
}

func (it *sliceIterator[T]) Next() bool {
	if it.pos+1 >= len(it.items) {
		it.pos = len(it.items)
		return false
	}
	it.pos++
	return true
}

func (it *sliceIterator[T]) Value() T     { return it.items[it.pos] }
func (it *sliceIterator[T]) Err() error   { return nil }
func (it *sliceIterator[T]) Close() error { return nil }
