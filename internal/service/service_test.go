package service

import (
	"context"
	"testing"

	"github.com/ctu-developers/DSpace/internal/domain"
	"github.com/ctu-developers/DSpace/internal/repository/postgres"
	"github.com/ctu-developers/DSpace/internal/testinfra"
	"github.com/ctu-developers/DSpace/pkg/validator"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

var (
	admin  = &domain.Principal{Email: "admin@example.org"}
	reader = &domain.Principal{Email: "reader@example.org"}
)

type fixture struct {
	db      *sqlx.DB
	svc     *AuthorityService
	choices *ChoiceService
}

func newFixture(t *testing.T, deny ...string) *fixture {
	t.Helper()
	db := testinfra.OpenDB(t)
	testinfra.SeedAdmin(t, db, admin.Email)

	store := postgres.NewStore(db, postgres.NewGroupRepository(db, testinfra.AdminGroup))
	return &fixture{
		db:      db,
		svc:     NewAuthorityService(store, NewDenyList(deny...), validator.NewValidator()),
		choices: NewChoiceService(store),
	}
}

func (f *fixture) person(t *testing.T, first, last string, authorities ...AuthorityRequest) *PersonResponse {
	t.Helper()
	ctx := context.Background()

	created, err := f.svc.CreatePerson(ctx, admin, PersonRequest{FirstName: first, LastName: last})
	require.NoError(t, err)
	for _, a := range authorities {
		_, err := f.svc.CreatePersonAuthority(ctx, admin, created.UID, a)
		require.NoError(t, err)
	}
	return created
}

func uids(persons []PersonResponse) []string {
	out := make([]string, 0, len(persons))
	for _, p := range persons {
		out = append(out, p.UID)
	}
	return out
}

func authorityNames(authorities []AuthorityResponse) []string {
	out := make([]string, 0, len(authorities))
	for _, a := range authorities {
		out = append(out, a.Name)
	}
	return out
}
