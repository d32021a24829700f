package repository

import (
	"context"

	"github.com/ctu-developers/DSpace/internal/domain"
)

// ItemRepository reads the platform's item metadata index
type ItemRepository interface {
	// FindReferencing yields the ids of resources of resourceType whose
	// metadata carries the given authority value.
	FindReferencing(ctx context.Context, authority string, resourceType int) (Iterator[int64], error)
	FindByID(ctx context.Context, id int64) (*domain.Item, error)
	Metadata(ctx context.Context, itemID int64) ([]domain.MetadataValue, error)
}
