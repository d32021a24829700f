package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ctu-developers/DSpace/internal/domain"
	"github.com/ctu-developers/DSpace/internal/repository"
	"github.com/jmoiron/sqlx"
)

const authorityColumns = `id, "key", "value", person_id`

type AuthorityRepository struct {
	s *session
}

// Create inserts a new authority
func (r *AuthorityRepository) Create(ctx context.Context, authority *domain.Authority) error {
	if err := r.s.requireAdmin(); err != nil {
		return err
	}
	if !authority.Complete() {
		return fmt.Errorf("%w: authority name and key are required", domain.ErrInvalidInput)
	}

	query := r.s.tx.Rebind(`
		INSERT INTO authority ("key", "value", person_id)
		VALUES (?, ?, ?)
		RETURNING id
	`)
	err := r.s.tx.QueryRowxContext(ctx, query, authority.Name, authority.Key, authority.PersonID).Scan(&authority.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: authority %s/%s", domain.ErrAlreadyExists, authority.Name, authority.Key)
	}
	if err != nil {
		return fmt.Errorf("failed to create authority: %w", err)
	}

	r.s.identity.authority(authority)
	return nil
}

// FindByID retrieves an authority by ID
func (r *AuthorityRepository) FindByID(ctx context.Context, id int64) (*domain.Authority, error) {
	query := r.s.tx.Rebind(`SELECT ` + authorityColumns + ` FROM authority WHERE id = ?`)
	return r.get(ctx, query, id)
}

// FindByKey retrieves the authority with the exact name/key pair
func (r *AuthorityRepository) FindByKey(ctx context.Context, name, key string) (*domain.Authority, error) {
	query := r.s.tx.Rebind(`SELECT ` + authorityColumns + ` FROM authority WHERE "key" = ? AND "value" = ?`)
	return r.get(ctx, query, name, key)
}

// FindByPerson retrieves all authorities owned by a person
func (r *AuthorityRepository) FindByPerson(ctx context.Context, personID int64) ([]*domain.Authority, error) {
	var rows []*domain.Authority
	query := r.s.tx.Rebind(`SELECT ` + authorityColumns + ` FROM authority WHERE person_id = ? ORDER BY id`)

	if err := r.s.tx.SelectContext(ctx, &rows, query, personID); err != nil {
		return nil, fmt.Errorf("failed to get authorities of person %d: %w", personID, err)
	}

	authorities := make([]*domain.Authority, 0, len(rows))
	for _, a := range rows {
		authorities = append(authorities, r.s.identity.authority(a))
	}
	return authorities, nil
}

// FindAll iterates every authority ordered by ID
func (r *AuthorityRepository) FindAll(ctx context.Context) (repository.Iterator[*domain.Authority], error) {
	rows, err := r.s.tx.QueryxContext(ctx, `SELECT `+authorityColumns+` FROM authority ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list authorities: %w", err)
	}
	return newRowIterator(rows, r.scan), nil
}

// Update persists name, key and owner of an authority
func (r *AuthorityRepository) Update(ctx context.Context, authority *domain.Authority) error {
	if err := r.s.requireAdmin(); err != nil {
		return err
	}
	if !authority.Complete() {
		return fmt.Errorf("%w: authority name and key are required", domain.ErrInvalidInput)
	}

	query := r.s.tx.Rebind(`UPDATE authority SET "key" = ?, "value" = ?, person_id = ? WHERE id = ?`)
	result, err := r.s.tx.ExecContext(ctx, query, authority.Name, authority.Key, authority.PersonID, authority.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: authority %s/%s", domain.ErrAlreadyExists, authority.Name, authority.Key)
	}
	if err != nil {
		return fmt.Errorf("failed to update authority: %w", err)
	}
	return expectAffected(result, "authority")
}

// Delete removes an authority
func (r *AuthorityRepository) Delete(ctx context.Context, authority *domain.Authority) error {
	if err := r.s.requireAdmin(); err != nil {
		return err
	}

	query := r.s.tx.Rebind(`DELETE FROM authority WHERE id = ?`)
	result, err := r.s.tx.ExecContext(ctx, query, authority.ID)
	if err != nil {
		return fmt.Errorf("failed to delete authority: %w", err)
	}
	if err := expectAffected(result, "authority"); err != nil {
		return err
	}

	r.s.identity.evict(kindAuthority, authority.ID)
	return nil
}

func (r *AuthorityRepository) get(ctx context.Context, query string, args ...any) (*domain.Authority, error) {
	var authority domain.Authority
	err := r.s.tx.GetContext(ctx, &authority, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get authority: %w", err)
	}
	return r.s.identity.authority(&authority), nil
}

func (r *AuthorityRepository) scan(rows *sqlx.Rows) (*domain.Authority, error) {
	var authority domain.Authority
	if err := rows.StructScan(&authority); err != nil {
		return nil, fmt.Errorf("failed to scan authority: %w", err)
	}
	return r.s.identity.authority(&authority), nil
}

func expectAffected(result sql.Result, what string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, what)
	}
	return nil
}
