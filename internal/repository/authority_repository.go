package repository

import (
	"context"

	"github.com/ctu-developers/DSpace/internal/domain"
)

type AuthorityRepository interface {
	Create(ctx context.Context, authority *domain.Authority) error
	FindByID(ctx context.Context, id int64) (*domain.Authority, error)
	FindByKey(ctx context.Context, name, key string) (*domain.Authority, error)
	FindByPerson(ctx context.Context, personID int64) ([]*domain.Authority, error)
	FindAll(ctx context.Context) (Iterator[*domain.Authority], error)
	Update(ctx context.Context, authority *domain.Authority) error
	Delete(ctx context.Context, authority *domain.Authority) error
}
