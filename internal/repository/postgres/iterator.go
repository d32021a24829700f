package postgres

import (
	"github.com/jmoiron/sqlx"
)

// rowIterator adapts *sqlx.Rows to repository.Iterator
type rowIterator[T any] struct {
	rows   *sqlx.Rows
	scan   func(*sqlx.Rows) (T, error)
	value  T
	err    error
	closed bool
}

func newRowIterator[T any](rows *sqlx.Rows, scan func(*sqlx.Rows) (T, error)) *rowIterator[T] {
	return &rowIterator[T]{rows: rows, scan: scan}
}

func (it *rowIterator[T]) Next() bool {
	if it.closed || it.err != nil {
		return false
	}
	if !it.rows.Next() {
		it.err = it.rows.Err()
		return false
	}
	v, err := it.scan(it.rows)
	if err != nil {
		it.err = err
		return false
	}
	it.value = v
	return true
}

func (it *rowIterator[T]) Value() T { return it.value }

func (it *rowIterator[T]) Err() error { return it.err }

func (it *rowIterator[T]) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	return it.rows.Close()
}
