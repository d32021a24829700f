package repository

import (
	"context"

	"github.com/ctu-developers/DSpace/internal/domain"
)

// PersonRepository finders return nil, nil when nothing matches.
type PersonRepository interface {
	Create(ctx context.Context, person *domain.AuthorityPerson) error
	FindByID(ctx context.Context, id int64) (*domain.AuthorityPerson, error)
	FindByUID(ctx context.Context, uid string) (*domain.AuthorityPerson, error)
	FindByKey(ctx context.Context, authorityName, authorityKey string) (*domain.AuthorityPerson, error)
	FindByName(ctx context.Context, firstName, lastName string) (Iterator[*domain.AuthorityPerson], error)
	FindLikeName(ctx context.Context, firstName, lastName string) (Iterator[*domain.AuthorityPerson], error)
	FindLikeFullName(ctx context.Context, name string) (Iterator[*domain.AuthorityPerson], error)
	FindAll(ctx context.Context) (Iterator[*domain.AuthorityPerson], error)
	Update(ctx context.Context, person *domain.AuthorityPerson) error
	Delete(ctx context.Context, person *domain.AuthorityPerson) error

	Authorities(ctx context.Context, person *domain.AuthorityPerson) ([]*domain.Authority, error)
	AddAuthority(ctx context.Context, person *domain.AuthorityPerson, authority *domain.Authority) error
}
