package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ctu-developers/DSpace/internal/domain"
	"github.com/ctu-developers/DSpace/internal/logging"
	"github.com/ctu-developers/DSpace/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type Store struct {
	db    *sqlx.DB
	admin repository.AdminChecker
}

// NewStore creates a store whose sessions evaluate admin status with admin
func NewStore(db *sqlx.DB, admin repository.AdminChecker) *Store {
	return &Store{db: db, admin: admin}
}

// Begin checks the principal's group membership and opens a transaction.
// When membership cannot be established the session runs as non-admin.
func (s *Store) Begin(ctx context.Context, principal *domain.Principal) (repository.Session, error) {
	admin, err := s.admin.IsAdmin(ctx, principal)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("principal", principal.String()).Msg("Admin check failed, continuing as anonymous")
		admin = false
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	sess := &session{
		tx:        tx,
		principal: principal,
		admin:     admin,
		identity:  make(identityMap),
	}
	sess.authorities = &AuthorityRepository{s: sess}
	sess.persons = &PersonRepository{s: sess, authorities: sess.authorities}
	sess.items = &ItemRepository{s: sess}
	return sess, nil
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type session struct {
	tx        *sqlx.Tx
	principal *domain.Principal
	admin     bool
	identity  identityMap
	done      bool

	persons     *PersonRepository
	authorities *AuthorityRepository
	items       *ItemRepository
}

func (s *session) Principal() *domain.Principal { return s.principal }
func (s *session) IsAdmin() bool                 { return s.admin }

func (s *session) Persons() repository.PersonRepository       { return s.persons }
func (s *session) Authorities() repository.AuthorityRepository { return s.authorities }
func (s *session) Items() repository.ItemRepository           { return s.items }

func (s *session) Commit() error {
	if s.done {
		return errors.New("session already closed")
	}
	s.done = true
	if err := s.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *session) Rollback() error {
	if s.done {
		return nil
	}
	s.done = true
	if err := s.tx.Rollback(); err != nil {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

func (s *session) requireAdmin() error {
	if !s.admin {
		return domain.ErrPermissionDenied
	}
	return nil
}

// identityMap keeps one in-memory instance per row for the session
type identityMap map[identityKey]any

type identityKey struct {
	kind string
	id   int64
}

const (
	kindPerson    = "authority_person"
	kindAuthority = "authority"
)

func (m identityMap) person(p *domain.AuthorityPerson) *domain.AuthorityPerson {
	key := identityKey{kindPerson, p.ID}
	if cached, ok := m[key].(*domain.AuthorityPerson); ok {
		return cached
	}
	m[key] = p
	return p
}

func (m identityMap) authority(a *domain.Authority) *domain.Authority {
	key := identityKey{kindAuthority, a.ID}
	if cached, ok := m[key].(*domain.Authority); ok {
		return cached
	}
	m[key] = a
	return a
}

func (m identityMap) evict(kind string, id int64) {
	delete(m, identityKey{kind, id})
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
