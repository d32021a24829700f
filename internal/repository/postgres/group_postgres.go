package postgres

import (
	"context"
	"fmt"

	"github.com/ctu-developers/DSpace/internal/domain"
	"github.com/jmoiron/sqlx"
)

// GroupRepository resolves group membership of principals
type GroupRepository struct {
	db         *sqlx.DB
	adminGroup string
}

func NewGroupRepository(db *sqlx.DB, adminGroup string) *GroupRepository {
	return &GroupRepository{db: db, adminGroup: adminGroup}
}

// IsMember checks whether the email belongs to the named group
func (r *GroupRepository) IsMember(ctx context.Context, group, email string) (bool, error) {
	var count int
	query := r.db.Rebind(`
		SELECT COUNT(*)
		FROM epersongroup_member gm
		JOIN epersongroup g ON g.id = gm.group_id
		WHERE g.name = ? AND LOWER(gm.email) = LOWER(?)
	`)

	if err := r.db.GetContext(ctx, &count, query, group, email); err != nil {
		return false, fmt.Errorf("failed to check group membership: %w", err)
	}
	return count > 0, nil
}

// IsAdmin checks whether the principal belongs to the administrator group
func (r *GroupRepository) IsAdmin(ctx context.Context, principal *domain.Principal) (bool, error) {
	if principal.Anonymous() {
		return false, nil
	}
	return r.IsMember(ctx, r.adminGroup, principal.Email)
}
