package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/ctu-developers/DSpace/internal/domain"
	"github.com/ctu-developers/DSpace/internal/testinfra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	orcid  = AuthorityRequest{Name: "orcid", Key: "0000-0002-1825-0097"}
	scopus = AuthorityRequest{Name: "scopus", Key: "7004212771"}
)

func TestCreatePersonThenGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreatePerson(ctx, admin, PersonRequest{FirstName: "Jan", LastName: "Novak"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.UID)
	assert.NotNil(t, created.Authorities)
	assert.Empty(t, created.Authorities)

	got, err := f.svc.GetPerson(ctx, nil, created.UID)
	require.NoError(t, err)
	assert.Equal(t, "Jan", got.FirstName)
	assert.Equal(t, "Novak", got.LastName)
	assert.Equal(t, domain.Today().Format(domain.DateLayout), got.Created.String())
}

func TestCreatePersonRejectsEmptyNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, req := range []PersonRequest{
		{FirstName: "", LastName: "Novak"},
		{FirstName: "Jan", LastName: ""},
		{FirstName: "  ", LastName: "Novak"},
	} {
		_, err := f.svc.CreatePerson(ctx, admin, req)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}

	persons, err := f.svc.ListPersons(ctx, admin, NewPage(0, 0))
	require.NoError(t, err)
	assert.Empty(t, persons)
}

func TestCreatePersonRequiresAdmin(t *testing.T) {
	f := newFixture(t)

	for _, principal := range []*domain.Principal{nil, reader} {
		_, err := f.svc.CreatePerson(context.Background(), principal, PersonRequest{})
		assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	}
}

func TestCreatePersonDuplicateUID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreatePerson(ctx, admin, PersonRequest{UID: "fixed", FirstName: "Jan", LastName: "Novak"})
	require.NoError(t, err)

	_, err = f.svc.CreatePerson(ctx, admin, PersonRequest{UID: "fixed", FirstName: "Eva", LastName: "Dvorak"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestCreatePersonAuthority(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	person := f.person(t, "Jan", "Novak")

	created, err := f.svc.CreatePersonAuthority(ctx, admin, person.UID, orcid)
	require.NoError(t, err)
	assert.Equal(t, AuthorityResponse{Name: orcid.Name, Key: orcid.Key}, *created)

	tests := []struct {
		name      string
		principal *domain.Principal
		uid       string
		req       AuthorityRequest
		want      error
	}{
		{"duplicate pair", admin, person.UID, orcid, domain.ErrAlreadyExists},
		{"missing person", admin, "missing", scopus, domain.ErrNotFound},
		{"missing key", admin, person.UID, AuthorityRequest{Name: "scopus"}, domain.ErrInvalidInput},
		{"anonymous", nil, person.UID, scopus, domain.ErrPermissionDenied},
		{"not an admin", reader, person.UID, scopus, domain.ErrPermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreatePersonAuthority(ctx, tt.principal, tt.uid, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	got, err := f.svc.GetPerson(ctx, admin, person.UID)
	require.NoError(t, err)
	assert.Equal(t, []string{"orcid"}, authorityNames(got.Authorities))
}

func TestDenyListedAuthoritiesHiddenFromAnonymous(t *testing.T) {
	f := newFixture(t, "orcid")
	ctx := context.Background()
	person := f.person(t, "Jan", "Novak", orcid, scopus)

	tests := []struct {
		name      string
		principal *domain.Principal
		want      []string
	}{
		{"anonymous", nil, []string{"scopus"}},
		{"not an admin", reader, []string{"scopus"}},
		{"admin", admin, []string{"orcid", "scopus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.GetPerson(ctx, tt.principal, person.UID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, authorityNames(got.Authorities))

			listed, err := f.svc.ListPersonAuthorities(ctx, tt.principal, person.UID, NewPage(0, 0))
			require.NoError(t, err)
			assert.Equal(t, tt.want, authorityNames(listed))

			all, err := f.svc.ListAuthorities(ctx, tt.principal, NewPage(0, 0))
			require.NoError(t, err)
			assert.Equal(t, tt.want, authorityNames(all))

			persons, err := f.svc.ListPersons(ctx, tt.principal, NewPage(0, 0))
			require.NoError(t, err)
			require.Len(t, persons, 1)
			assert.Equal(t, tt.want, authorityNames(persons[0].Authorities))
		})
	}
}

func TestGetPersonAuthorityKey(t *testing.T) {
	f := newFixture(t, "orcid")
	ctx := context.Background()
	person := f.person(t, "Jan", "Novak", scopus)
	withOrcid := f.person(t, "Eva", "Dvorak", orcid)

	tests := []struct {
		name      string
		principal *domain.Principal
		uid       string
		authority string
		wantKey   string
		wantErr   error
	}{
		{"anonymous visible", nil, person.UID, "scopus", scopus.Key, nil},
		{"anonymous deny-listed but absent", nil, person.UID, "orcid", "", domain.ErrAuthorityForbidden},
		{"anonymous deny-listed and present", nil, withOrcid.UID, "orcid", "", domain.ErrAuthorityForbidden},
		{"anonymous deny-listed on missing person", nil, "missing", "orcid", "", domain.ErrAuthorityForbidden},
		{"admin deny-listed and present", admin, withOrcid.UID, "orcid", orcid.Key, nil},
		{"admin absent", admin, person.UID, "orcid", "", domain.ErrNotFound},
		{"missing person", nil, "missing", "scopus", "", domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := f.svc.GetPersonAuthorityKey(ctx, tt.principal, tt.uid, tt.authority)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func TestListPersonsPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		f.person(t, fmt.Sprintf("First%02d", i), "Last")
	}

	last, err := f.svc.ListPersons(ctx, nil, NewPage(10, 20))
	require.NoError(t, err)
	assert.Len(t, last, 5)

	seen := map[string]bool{}
	for _, offset := range []int{0, 10, 20} {
		page, err := f.svc.ListPersons(ctx, nil, NewPage(10, offset))
		require.NoError(t, err)
		for _, uid := range uids(page) {
			assert.False(t, seen[uid], "uid %s returned twice", uid)
			seen[uid] = true
		}
	}
	assert.Len(t, seen, 25)

	beyond, err := f.svc.ListPersons(ctx, nil, NewPage(10, 30))
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestListPersonAuthoritiesSkipsHiddenEntries(t *testing.T) {
	f := newFixture(t, "orcid")
	ctx := context.Background()
	person := f.person(t, "Jan", "Novak",
		orcid,
		AuthorityRequest{Name: "a", Key: "1"},
		AuthorityRequest{Name: "b", Key: "2"},
		AuthorityRequest{Name: "c", Key: "3"},
	)

	first, err := f.svc.ListPersonAuthorities(ctx, nil, person.UID, NewPage(2, 0))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, authorityNames(first))

	second, err := f.svc.ListPersonAuthorities(ctx, nil, person.UID, NewPage(2, 2))
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, authorityNames(second))

	asAdmin, err := f.svc.ListPersonAuthorities(ctx, admin, person.UID, NewPage(2, 0))
	require.NoError(t, err)
	assert.Equal(t, []string{"orcid", "a"}, authorityNames(asAdmin))

	_, err = f.svc.ListPersonAuthorities(ctx, nil, "missing", NewPage(0, 0))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeletePersonCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	person := f.person(t, "Jan", "Novak", orcid, scopus)
	other := f.person(t, "Eva", "Dvorak", AuthorityRequest{Name: "orcid", Key: "other"})

	assert.ErrorIs(t, f.svc.DeletePerson(ctx, nil, person.UID), domain.ErrPermissionDenied)
	require.NoError(t, f.svc.DeletePerson(ctx, admin, person.UID))

	_, err := f.svc.GetPerson(ctx, admin, person.UID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.SearchByAuthority(ctx, admin, orcid)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	all, err := f.svc.ListAuthorities(ctx, admin, NewPage(0, 0))
	require.NoError(t, err)
	assert.Equal(t, []AuthorityResponse{{Name: "orcid", Key: "other"}}, all)

	assert.ErrorIs(t, f.svc.DeletePerson(ctx, admin, person.UID), domain.ErrNotFound)

	_, err = f.svc.GetPerson(ctx, nil, other.UID)
	assert.NoError(t, err)
}

func TestSearchByName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	jan := f.person(t, "Jan", "Novak")
	f.person(t, "Jana", "Novak")
	f.person(t, "Novak", "Jan")

	tests := []struct {
		name    string
		query   string
		want    []string
		wantErr error
	}{
		{"exact", "Novak, Jan", []string{jan.UID}, nil},
		{"surrounding spaces", "  Novak ,Jan  ", []string{jan.UID}, nil},
		{"no match", "Novak, J", nil, nil},
		{"missing comma", "Novak Jan", nil, domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.SearchByName(ctx, nil, tt.query, NewPage(0, 0))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, uids(got))
		})
	}
}

func TestSearchByAuthority(t *testing.T) {
	f := newFixture(t, "orcid")
	ctx := context.Background()
	person := f.person(t, "Jan", "Novak", orcid, scopus)

	found, err := f.svc.SearchByAuthority(ctx, nil, scopus)
	require.NoError(t, err)
	assert.Equal(t, person.UID, found.UID)
	assert.Equal(t, []string{"scopus"}, authorityNames(found.Authorities))

	_, err = f.svc.SearchByAuthority(ctx, nil, orcid)
	assert.ErrorIs(t, err, domain.ErrAuthorityForbidden)

	found, err = f.svc.SearchByAuthority(ctx, admin, orcid)
	require.NoError(t, err)
	assert.Equal(t, person.UID, found.UID)

	_, err = f.svc.SearchByAuthority(ctx, nil, AuthorityRequest{Name: "scopus", Key: "nope"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.SearchByAuthority(ctx, nil, AuthorityRequest{Name: "scopus"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdatePerson(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	person := f.person(t, "Jan", "Novak")
	other := f.person(t, "Eva", "Dvorak")

	tests := []struct {
		name      string
		principal *domain.Principal
		uid       string
		req       PersonRequest
		want      error
	}{
		{"anonymous", nil, person.UID, PersonRequest{FirstName: "A", LastName: "B"}, domain.ErrPermissionDenied},
		{"missing person", admin, "missing", PersonRequest{FirstName: "A", LastName: "B"}, domain.ErrNotFound},
		{"empty names", admin, person.UID, PersonRequest{FirstName: "A"}, domain.ErrInvalidInput},
		{"uid taken", admin, person.UID, PersonRequest{UID: other.UID, FirstName: "A", LastName: "B"}, domain.ErrAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, f.svc.UpdatePerson(ctx, tt.principal, tt.uid, tt.req), tt.want)
		})
	}

	require.NoError(t, f.svc.UpdatePerson(ctx, admin, person.UID, PersonRequest{FirstName: "Johann", LastName: "Novak"}))
	got, err := f.svc.GetPerson(ctx, nil, person.UID)
	require.NoError(t, err)
	assert.Equal(t, "Johann", got.FirstName)

	require.NoError(t, f.svc.UpdatePerson(ctx, admin, person.UID, PersonRequest{UID: "renamed", FirstName: "Johann", LastName: "Novak"}))
	_, err = f.svc.GetPerson(ctx, nil, person.UID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	got, err = f.svc.GetPerson(ctx, nil, "renamed")
	require.NoError(t, err)
	assert.Equal(t, person.Created.String(), got.Created.String())
}

func TestUpdatePersonAuthority(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	person := f.person(t, "Jan", "Novak", orcid, scopus)

	assert.ErrorIs(t, f.svc.UpdatePersonAuthority(ctx, reader, person.UID, "orcid", orcid), domain.ErrPermissionDenied)
	assert.ErrorIs(t, f.svc.UpdatePersonAuthority(ctx, admin, person.UID, "wos", orcid), domain.ErrNotFound)
	assert.ErrorIs(t, f.svc.UpdatePersonAuthority(ctx, admin, person.UID, "orcid", scopus), domain.ErrAlreadyExists)
	assert.ErrorIs(t, f.svc.UpdatePersonAuthority(ctx, admin, person.UID, "orcid", AuthorityRequest{Name: "orcid"}), domain.ErrInvalidInput)

	// keeping the pair is not a conflict with itself
	require.NoError(t, f.svc.UpdatePersonAuthority(ctx, admin, person.UID, "orcid", orcid))

	require.NoError(t, f.svc.UpdatePersonAuthority(ctx, admin, person.UID, "orcid", AuthorityRequest{Name: "orcid", Key: "new"}))
	key, err := f.svc.GetPersonAuthorityKey(ctx, nil, person.UID, "orcid")
	require.NoError(t, err)
	assert.Equal(t, "new", key)
}

func TestDeletePersonAuthority(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	person := f.person(t, "Jan", "Novak", orcid, scopus)

	assert.ErrorIs(t, f.svc.DeletePersonAuthority(ctx, nil, person.UID, "orcid"), domain.ErrPermissionDenied)
	assert.ErrorIs(t, f.svc.DeletePersonAuthority(ctx, admin, person.UID, "wos"), domain.ErrNotFound)
	require.NoError(t, f.svc.DeletePersonAuthority(ctx, admin, person.UID, "orcid"))

	got, err := f.svc.GetPerson(ctx, admin, person.UID)
	require.NoError(t, err)
	assert.Equal(t, []string{"scopus"}, authorityNames(got.Authorities))
}

func TestListPersonItemsWindowsBeforeFiltering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const uid = "person-uid"

	visible := testinfra.SeedItem(t, f.db, domain.Item{Name: "Thesis", InArchive: true, Discoverable: true})
	withdrawn := testinfra.SeedItem(t, f.db, domain.Item{Name: "Withdrawn", InArchive: true, Withdrawn: true, Discoverable: true})
	later := testinfra.SeedItem(t, f.db, domain.Item{Name: "Article", InArchive: true, Discoverable: true})
	testinfra.SeedMetadata(t, f.db, visible, "contributor", "Novak, Jan", uid)
	testinfra.SeedMetadata(t, f.db, visible, "title", "Thesis", "")
	testinfra.SeedMetadata(t, f.db, withdrawn, "contributor", "Novak, Jan", uid)
	testinfra.SeedMetadata(t, f.db, later, "contributor", "Novak, Jan", uid)

	anonymous, err := f.svc.ListPersonItems(ctx, nil, uid, nil, NewPage(2, 0))
	require.NoError(t, err)
	require.Len(t, anonymous, 1)
	assert.Equal(t, visible, anonymous[0].ID)
	assert.Nil(t, anonymous[0].Metadata)

	asAdmin, err := f.svc.ListPersonItems(ctx, admin, uid, nil, NewPage(2, 0))
	require.NoError(t, err)
	assert.Len(t, asAdmin, 2)

	next, err := f.svc.ListPersonItems(ctx, nil, uid, []string{"metadata"}, NewPage(2, 2))
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.Equal(t, later, next[0].ID)
	assert.Len(t, next[0].Metadata, 1)

	none, err := f.svc.ListPersonItems(ctx, nil, "nobody", []string{"all"}, NewPage(0, 0))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStorageFailureIsReported(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Close())

	_, err := f.svc.ListPersons(context.Background(), nil, NewPage(0, 0))
	assert.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.NotContains(t, err.Error(), "sql")
}

func TestPersonResponseJSON(t *testing.T) {
	f := newFixture(t)
	person := f.person(t, "Jan", "Novak", orcid, scopus)

	got, err := f.svc.GetPerson(context.Background(), admin, person.UID)
	require.NoError(t, err)

	data, err := json.Marshal(got)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, domain.Today().Format(domain.DateLayout), raw["created"])

	var back PersonResponse
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, got.UID, back.UID)
	assert.Equal(t, got.FirstName, back.FirstName)
	assert.Equal(t, got.LastName, back.LastName)
	assert.ElementsMatch(t, got.Authorities, back.Authorities)
	assert.Equal(t, got.Created.String(), back.Created.String())
}
