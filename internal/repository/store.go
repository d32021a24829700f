package repository

import (
	"context"

	"github.com/ctu-developers/DSpace/internal/domain"
)

// Store opens request-scoped sessions on the backing database
type Store interface {
	// Begin opens a transaction for principal and evaluates its admin
	// membership. The returned Session must be committed or rolled back.
	Begin(ctx context.Context, principal *domain.Principal) (Session, error)
	Ping(ctx context.Context) error
}

// Session is one unit of work: a transaction, an identity map of the rows
// loaded through it and the caller it runs for.
type Session interface {
	Principal() *domain.Principal
	IsAdmin() bool

	Persons() PersonRepository
	Authorities() AuthorityRepository
	Items() ItemRepository

	Commit() error
	// Rollback is a no-op once the session was committed or rolled back.
	Rollback() error
}

// AdminChecker decides whether a principal belongs to the administrators
type AdminChecker interface {
	IsAdmin(ctx context.Context, principal *domain.Principal) (bool, error)
}

// Iterator is a forward-only, single-pass cursor. Close must be called on
// every path, including when the caller stops early.
type Iterator[T any] interface {
	Next() bool
	Value() T
	Err() error
	Close() error
}
