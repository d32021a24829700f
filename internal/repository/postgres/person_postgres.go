package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ctu-developers/DSpace/internal/domain"
	"github.com/ctu-developers/DSpace/internal/repository"
	"github.com/jmoiron/sqlx"
)

const personColumns = `p.id, p.uid, p.firstname, p.lastname, p.created`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type PersonRepository struct {
	s           *session
	authorities *AuthorityRepository
}

// Create inserts a new person with an empty authority list
func (r *PersonRepository) Create(ctx context.Context, person *domain.AuthorityPerson) error {
	if err := r.s.requireAdmin(); err != nil {
		return err
	}
	if !person.HasNames() {
		return fmt.Errorf("%w: first and last name are required", domain.ErrInvalidInput)
	}
	if person.UID == "" {
		person.GenerateUID()
	}
	person.Created = domain.Today()

	query := r.s.tx.Rebind(`
		INSERT INTO authority_person (uid, firstname, lastname, created)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`)
	err := r.s.tx.QueryRowxContext(ctx, query, person.UID, person.FirstName, person.LastName, person.Created).Scan(&person.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: person %s", domain.ErrAlreadyExists, person.UID)
	}
	if err != nil {
		return fmt.Errorf("failed to create person: %w", err)
	}

	person.SetAuthorities(nil)
	r.s.identity.person(person)
	return nil
}

// FindByID retrieves a person by ID
func (r *PersonRepository) FindByID(ctx context.Context, id int64) (*domain.AuthorityPerson, error) {
	query := r.s.tx.Rebind(`SELECT ` + personColumns + ` FROM authority_person p WHERE p.id = ?`)
	return r.get(ctx, query, id)
}

// FindByUID retrieves a person by its external uid
func (r *PersonRepository) FindByUID(ctx context.Context, uid string) (*domain.AuthorityPerson, error) {
	query := r.s.tx.Rebind(`SELECT ` + personColumns + ` FROM authority_person p WHERE p.uid = ?`)
	return r.get(ctx, query, uid)
}

// FindByKey retrieves the owner of the exact authority name/key pair
func (r *PersonRepository) FindByKey(ctx context.Context, authorityName, authorityKey string) (*domain.AuthorityPerson, error) {
	query := r.s.tx.Rebind(`
		SELECT ` + personColumns + `
		FROM authority_person p
		JOIN authority a ON a.person_id = p.id
		WHERE a."key" = ? AND a."value" = ?
	`)
	return r.get(ctx, query, authorityName, authorityKey)
}

// FindByName iterates persons whose names match exactly
func (r *PersonRepository) FindByName(ctx context.Context, firstName, lastName string) (repository.Iterator[*domain.AuthorityPerson], error) {
	return r.query(ctx, `WHERE p.firstname = ? AND p.lastname = ?`, firstName, lastName)
}

// FindLikeName iterates persons whose first and last names each contain the
// given fragments, ignoring case
func (r *PersonRepository) FindLikeName(ctx context.Context, firstName, lastName string) (repository.Iterator[*domain.AuthorityPerson], error) {
	return r.query(ctx,
		`WHERE LOWER(p.firstname) LIKE ? ESCAPE '\' AND LOWER(p.lastname) LIKE ? ESCAPE '\'`,
		containsPattern(firstName), containsPattern(lastName),
	)
}

// FindLikeFullName iterates persons whose "last first" or "first last" name
// contains name, ignoring case
func (r *PersonRepository) FindLikeFullName(ctx context.Context, name string) (repository.Iterator[*domain.AuthorityPerson], error) {
	pattern := containsPattern(name)
	return r.query(ctx,
		`WHERE LOWER(p.lastname || ' ' || p.firstname) LIKE ? ESCAPE '\'
		   OR LOWER(p.firstname || ' ' || p.lastname) LIKE ? ESCAPE '\'`,
		pattern, pattern,
	)
}

// FindAll iterates every person ordered by ID
func (r *PersonRepository) FindAll(ctx context.Context) (repository.Iterator[*domain.AuthorityPerson], error) {
	return r.query(ctx, ``)
}

// Update persists uid and names of a person
func (r *PersonRepository) Update(ctx context.Context, person *domain.AuthorityPerson) error {
	if err := r.s.requireAdmin(); err != nil {
		return err
	}
	if !person.HasNames() {
		return fmt.Errorf("%w: first and last name are required", domain.ErrInvalidInput)
	}

	query := r.s.tx.Rebind(`UPDATE authority_person SET uid = ?, firstname = ?, lastname = ? WHERE id = ?`)
	result, err := r.s.tx.ExecContext(ctx, query, person.UID, person.FirstName, person.LastName, person.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: person %s", domain.ErrAlreadyExists, person.UID)
	}
	if err != nil {
		return fmt.Errorf("failed to update person: %w", err)
	}
	return expectAffected(result, "person")
}

// Delete removes a person together with every authority it owns
func (r *PersonRepository) Delete(ctx context.Context, person *domain.AuthorityPerson) error {
	if err := r.s.requireAdmin(); err != nil {
		return err
	}

	owned, err := r.authorities.FindByPerson(ctx, person.ID)
	if err != nil {
		return err
	}
	for _, authority := range owned {
		if err := r.authorities.Delete(ctx, authority); err != nil {
			return err
		}
	}

	query := r.s.tx.Rebind(`DELETE FROM authority_person WHERE id = ?`)
	result, err := r.s.tx.ExecContext(ctx, query, person.ID)
	if err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}
	if err := expectAffected(result, "person"); err != nil {
		return err
	}

	person.SetAuthorities(nil)
	r.s.identity.evict(kindPerson, person.ID)
	return nil
}

// Authorities returns the person's authorities, loading them on first use
func (r *PersonRepository) Authorities(ctx context.Context, person *domain.AuthorityPerson) ([]*domain.Authority, error) {
	return person.LoadAuthorities(func() ([]*domain.Authority, error) {
		if person.ID == 0 {
			return nil, nil
		}
		return r.authorities.FindByPerson(ctx, person.ID)
	})
}

// AddAuthority attaches authority to person. Attaching an authority that is
// already in the person's list does nothing. An authority owned by another
// person must be deleted before it can be attached.
func (r *PersonRepository) AddAuthority(ctx context.Context, person *domain.AuthorityPerson, authority *domain.Authority) error {
	current, err := r.Authorities(ctx, person)
	if err != nil {
		return err
	}
	if authority.ID != 0 {
		for _, existing := range current {
			if existing.ID == authority.ID {
				return nil
			}
		}
	}

	if authority.PersonID != nil && *authority.PersonID != person.ID {
		return fmt.Errorf("%w: authority %s %s is attached to another person", domain.ErrAlreadyExists, authority.Name, authority.Key)
	}

	personID := person.ID
	authority.PersonID = &personID
	if authority.ID == 0 {
		err = r.authorities.Create(ctx, authority)
	} else {
		err = r.authorities.Update(ctx, authority)
	}
	if err != nil {
		return err
	}

	person.AppendAuthority(authority)
	return nil
}

func (r *PersonRepository) get(ctx context.Context, query string, args ...any) (*domain.AuthorityPerson, error) {
	var person domain.AuthorityPerson
	err := r.s.tx.GetContext(ctx, &person, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	return r.s.identity.person(&person), nil
}

func (r *PersonRepository) query(ctx context.Context, where string, args ...any) (repository.Iterator[*domain.AuthorityPerson], error) {
	query := r.s.tx.Rebind(`SELECT ` + personColumns + ` FROM authority_person p ` + where + ` ORDER BY p.id`)
	rows, err := r.s.tx.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query persons: %w", err)
	}
	return newRowIterator(rows, r.scan), nil
}

func (r *PersonRepository) scan(rows *sqlx.Rows) (*domain.AuthorityPerson, error) {
	var person domain.AuthorityPerson
	if err := rows.StructScan(&person); err != nil {
		return nil, fmt.Errorf("failed to scan person: %w", err)
	}
	return r.s.identity.person(&person), nil
}

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
