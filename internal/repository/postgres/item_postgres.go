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

type ItemRepository struct {
	s *session
}

// FindReferencing iterates resource ids whose metadata carries authority.
// One id is yielded per matching metadata row.
func (r *ItemRepository) FindReferencing(ctx context.Context, authority string, resourceType int) (repository.Iterator[int64], error) {
	query := r.s.tx.Rebind(`
		SELECT resource_id FROM metadatavalue
		WHERE authority = ? AND resource_type_id = ?
		ORDER BY id
	`)
	rows, err := r.s.tx.QueryxContext(ctx, query, authority, resourceType)
	if err != nil {
		return nil, fmt.Errorf("failed to query metadata by authority: %w", err)
	}
	return newRowIterator(rows, func(rows *sqlx.Rows) (int64, error) {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to scan resource id: %w", err)
		}
		return id, nil
	}), nil
}

// FindByID retrieves an item by ID
func (r *ItemRepository) FindByID(ctx context.Context, id int64) (*domain.Item, error) {
	var item domain.Item
	query := r.s.tx.Rebind(`
		SELECT id, name, handle, in_archive, withdrawn, discoverable
		FROM item WHERE id = ?
	`)

	err := r.s.tx.GetContext(ctx, &item, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &item, nil
}

// Metadata retrieves the metadata values of an item
func (r *ItemRepository) Metadata(ctx context.Context, itemID int64) ([]domain.MetadataValue, error) {
	var values []domain.MetadataValue
	query := r.s.tx.Rebind(`
		SELECT element, qualifier, text_value, authority
		FROM metadatavalue
		WHERE resource_id = ? AND resource_type_id = ?
		ORDER BY id
	`)

	if err := r.s.tx.SelectContext(ctx, &values, query, itemID, domain.ResourceTypeItem); err != nil {
		return nil, fmt.Errorf("failed to get item metadata: %w", err)
	}
	return values, nil
}
