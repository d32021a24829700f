package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ctu-developers/DSpace/internal/domain"
	"github.com/ctu-developers/DSpace/internal/repository"
)

// Validator checks request structs
type Validator interface {
	Validate(i any) error
}

type AuthorityService struct {
	store     repository.Store
	deny      DenyList
	validator Validator
}

func NewAuthorityService(store repository.Store, deny DenyList, validator Validator) *AuthorityService {
	return &AuthorityService{
		store:     store,
		deny:      deny,
		validator: validator,
	}
}

// ListPersons lists persons in insertion order
func (s *AuthorityService) ListPersons(ctx context.Context, principal *domain.Principal, page Page) ([]PersonResponse, error) {
	var result []PersonResponse
	err := withSession(ctx, s.store, "ListPersons", "", principal, func(sess repository.Session) error {
		it, err := sess.Persons().FindAll(ctx)
		if err != nil {
			return err
		}
		persons, err := collect(it, page, nil)
		if err != nil {
			return err
		}
		result, err = s.render(ctx, sess, persons)
		return err
	})
	return result, err
}

// GetPerson retrieves a person by uid
func (s *AuthorityService) GetPerson(ctx context.Context, principal *domain.Principal, uid string) (*PersonResponse, error) {
	var result *PersonResponse
	err := withSession(ctx, s.store, "GetPerson", uid, principal, func(sess repository.Session) error {
		person, err := findPerson(ctx, sess, uid)
		if err != nil {
			return err
		}
		rendered, err := s.render(ctx, sess, []*domain.AuthorityPerson{person})
		if err != nil {
			return err
		}
		result = &rendered[0]
		return nil
	})
	return result, err
}

// ListPersonAuthorities lists the authorities of a person visible to the caller
func (s *AuthorityService) ListPersonAuthorities(ctx context.Context, principal *domain.Principal, uid string, page Page) ([]AuthorityResponse, error) {
	var result []AuthorityResponse
	err := withSession(ctx, s.store, "ListPersonAuthorities", uid, principal, func(sess repository.Session) error {
		person, err := findPerson(ctx, sess, uid)
		if err != nil {
			return err
		}
		authorities, err := sess.Persons().Authorities(ctx, person)
		if err != nil {
			return err
		}
		visible, err := collect(newSliceIterator(authorities), page, s.visibleTo(sess))
		if err != nil {
			return err
		}
		result = make([]AuthorityResponse, 0, len(visible))
		for _, a := range visible {
			result = append(result, newAuthorityResponse(a))
		}
		return nil
	})
	return result, err
}

// GetPersonAuthorityKey returns the key a person holds in the named authority.
// Non-admins asking for a deny-listed authority are refused whether or not
// the person holds one.
func (s *AuthorityService) GetPersonAuthorityKey(ctx context.Context, principal *domain.Principal, uid, name string) (string, error) {
	var key string
	err := withSession(ctx, s.store, "GetPersonAuthorityKey", uid, principal, func(sess repository.Session) error {
		if !IsVisible(name, !sess.IsAdmin(), s.deny) {
			return domain.ErrAuthorityForbidden
		}
		_, authority, err := findPersonAuthority(ctx, sess, uid, name)
		if err != nil {
			return err
		}
		key = authority.Key
		return nil
	})
	return key, err
}

// ListPersonItems lists the items whose metadata references the person uid.
// The window applies to the matching metadata rows, so items hidden from the
// caller shrink the page instead of being backfilled.
func (s *AuthorityService) ListPersonItems(ctx context.Context, principal *domain.Principal, uid string, expand []string, page Page) ([]*domain.Item, error) {
	var result []*domain.Item
	err := withSession(ctx, s.store, "ListPersonItems", uid, principal, func(sess repository.Session) error {
		it, err := sess.Items().FindReferencing(ctx, uid, domain.ResourceTypeItem)
		if err != nil {
			return err
		}
		ids, err := collect(it, page, nil)
		if err != nil {
			return err
		}

		withMetadata := expands(expand, "metadata")
		result = make([]*domain.Item, 0, len(ids))
		for _, id := range ids {
			item, err := sess.Items().FindByID(ctx, id)
			if err != nil {
				return err
			}
			if item == nil || !item.ListedFor(sess.IsAdmin()) {
				continue
			}
			if withMetadata {
				if item.Metadata, err = sess.Items().Metadata(ctx, item.ID); err != nil {
					return err
				}
			}
			result = append(result, item)
		}
		return nil
	})
	return result, err
}

// CreatePerson creates a person, generating a uid when none is given
func (s *AuthorityService) CreatePerson(ctx context.Context, principal *domain.Principal, req PersonRequest) (*PersonResponse, error) {
	var result *PersonResponse
	err := withSession(ctx, s.store, "CreatePerson", req.UID, principal, func(sess repository.Session) error {
		if err := requireAdmin(sess); err != nil {
			return err
		}
		if err := s.validate(req); err != nil {
			return err
		}
		if err := ensureUIDFree(ctx, sess, req.UID); err != nil {
			return err
		}

		person := domain.NewAuthorityPerson(req.UID, req.FirstName, req.LastName)
		if err := sess.Persons().Create(ctx, person); err != nil {
			return err
		}
		resp := newPersonResponse(person, nil, false, s.deny)
		result = &resp
		return nil
	})
	return result, err
}

// CreatePersonAuthority attaches a new authority to a person
func (s *AuthorityService) CreatePersonAuthority(ctx context.Context, principal *domain.Principal, uid string, req AuthorityRequest) (*AuthorityResponse, error) {
	var result *AuthorityResponse
	err := withSession(ctx, s.store, "CreatePersonAuthority", uid, principal, func(sess repository.Session) error {
		if err := requireAdmin(sess); err != nil {
			return err
		}
		if err := s.validate(req); err != nil {
			return err
		}
		person, err := findPerson(ctx, sess, uid)
		if err != nil {
			return err
		}
		if err := ensurePairFree(ctx, sess, req.Name, req.Key, 0); err != nil {
			return err
		}

		authority := &domain.Authority{Name: req.Name, Key: req.Key}
		if err := sess.Persons().AddAuthority(ctx, person, authority); err != nil {
			return err
		}
		resp := newAuthorityResponse(authority)
		result = &resp
		return nil
	})
	return result, err
}

// SearchByAuthority finds the person holding the exact name/key pair
func (s *AuthorityService) SearchByAuthority(ctx context.Context, principal *domain.Principal, req AuthorityRequest) (*PersonResponse, error) {
	var result *PersonResponse
	err := withSession(ctx, s.store, "SearchByAuthority", req.Name, principal, func(sess repository.Session) error {
		if err := s.validate(req); err != nil {
			return err
		}
		if !IsVisible(req.Name, !sess.IsAdmin(), s.deny) {
			return domain.ErrAuthorityForbidden
		}
		person, err := sess.Persons().FindByKey(ctx, req.Name, req.Key)
		if err != nil {
			return err
		}
		if person == nil {
			return fmt.Errorf("%w: no person holds %s %s", domain.ErrNotFound, req.Name, req.Key)
		}
		rendered, err := s.render(ctx, sess, []*domain.AuthorityPerson{person})
		if err != nil {
			return err
		}
		result = &rendered[0]
		return nil
	})
	return result, err
}

// SearchByName finds persons whose names match "Lastname, Firstname" exactly
func (s *AuthorityService) SearchByName(ctx context.Context, principal *domain.Principal, name string, page Page) ([]PersonResponse, error) {
	var result []PersonResponse
	err := withSession(ctx, s.store, "SearchByName", name, principal, func(sess repository.Session) error {
		last, first, ok := SplitName(name)
		if !ok {
			return fmt.Errorf("%w: name must be formatted as \"Lastname, Firstname\"", domain.ErrInvalidInput)
		}
		it, err := sess.Persons().FindByName(ctx, first, last)
		if err != nil {
			return err
		}
		persons, err := collect(it, page, nil)
		if err != nil {
			return err
		}
		result, err = s.render(ctx, sess, persons)
		return err
	})
	return result, err
}

// UpdatePerson replaces uid and names of a person. An empty uid keeps the
// current one.
func (s *AuthorityService) UpdatePerson(ctx context.Context, principal *domain.Principal, uid string, req PersonRequest) error {
	return withSession(ctx, s.store, "UpdatePerson", uid, principal, func(sess repository.Session) error {
		if err := requireAdmin(sess); err != nil {
			return err
		}
		if err := s.validate(req); err != nil {
			return err
		}
		person, err := findPerson(ctx, sess, uid)
		if err != nil {
			return err
		}
		if req.UID != "" && req.UID != person.UID {
			if err := ensureUIDFree(ctx, sess, req.UID); err != nil {
				return err
			}
			person.UID = req.UID
		}
		person.FirstName = req.FirstName
		person.LastName = req.LastName
		return sess.Persons().Update(ctx, person)
	})
}

// UpdatePersonAuthority replaces name and key of a person's named authority
func (s *AuthorityService) UpdatePersonAuthority(ctx context.Context, principal *domain.Principal, uid, name string, req AuthorityRequest) error {
	return withSession(ctx, s.store, "UpdatePersonAuthority", uid, principal, func(sess repository.Session) error {
		if err := requireAdmin(sess); err != nil {
			return err
		}
		if err := s.validate(req); err != nil {
			return err
		}
		_, authority, err := findPersonAuthority(ctx, sess, uid, name)
		if err != nil {
			return err
		}
		if err := ensurePairFree(ctx, sess, req.Name, req.Key, authority.ID); err != nil {
			return err
		}
		authority.Name = req.Name
		authority.Key = req.Key
		return sess.Authorities().Update(ctx, authority)
	})
}

// DeletePerson deletes a person and every authority it holds
func (s *AuthorityService) DeletePerson(ctx context.Context, principal *domain.Principal, uid string) error {
	return withSession(ctx, s.store, "DeletePerson", uid, principal, func(sess repository.Session) error {
		if err := requireAdmin(sess); err != nil {
			return err
		}
		person, err := findPerson(ctx, sess, uid)
		if err != nil {
			return err
		}
		return sess.Persons().Delete(ctx, person)
	})
}

// DeletePersonAuthority deletes a person's named authority
func (s *AuthorityService) DeletePersonAuthority(ctx context.Context, principal *domain.Principal, uid, name string) error {
	return withSession(ctx, s.store, "DeletePersonAuthority", uid, principal, func(sess repository.Session) error {
		if err := requireAdmin(sess); err != nil {
			return err
		}
		_, authority, err := findPersonAuthority(ctx, sess, uid, name)
		if err != nil {
			return err
		}
		return sess.Authorities().Delete(ctx, authority)
	})
}

// ListAuthorities lists every authority row visible to the caller
func (s *AuthorityService) ListAuthorities(ctx context.Context, principal *domain.Principal, page Page) ([]AuthorityResponse, error) {
	var result []AuthorityResponse
	err := withSession(ctx, s.store, "ListAuthorities", "", principal, func(sess repository.Session) error {
		it, err := sess.Authorities().FindAll(ctx)
		if err != nil {
			return err
		}
		visible, err := collect(it, page, s.visibleTo(sess))
		if err != nil {
			return err
		}
		result = make([]AuthorityResponse, 0, len(visible))
		for _, a := range visible {
			result = append(result, newAuthorityResponse(a))
		}
		return nil
	})
	return result, err
}

// SplitName splits "Lastname, Firstname" at the first comma
func SplitName(name string) (last, first string, ok bool) {
	last, first, ok = strings.Cut(name, ",")
	if !ok {
		return "", "", false
	}
	return strings.TrimSpace(last), strings.TrimSpace(first), true
}

func (s *AuthorityService) validate(req any) error {
	if err := s.validator.Validate(req); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, err.Error())
	}
	return nil
}

func (s *AuthorityService) visibleTo(sess repository.Session) func(*domain.Authority) bool {
	anonymous := !sess.IsAdmin()
	return func(a *domain.Authority) bool {
		return IsVisible(a.Name, anonymous, s.deny)
	}
}

// render loads the authorities of persons. The person cursor must already be
// closed, a connection cannot stream two result sets at once.
func (s *AuthorityService) render(ctx context.Context, sess repository.Session, persons []*domain.AuthorityPerson) ([]PersonResponse, error) {
	anonymous := !sess.IsAdmin()
	out := make([]PersonResponse, 0, len(persons))
	for _, p := range persons {
		authorities, err := sess.Persons().Authorities(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, newPersonResponse(p, authorities, anonymous, s.deny))
	}
	return out, nil
}

func requireAdmin(sess repository.Session) error {
	if !sess.IsAdmin() {
		return fmt.Errorf("%w: administrator rights required", domain.ErrPermissionDenied)
	}
	return nil
}

func findPerson(ctx context.Context, sess repository.Session, uid string) (*domain.AuthorityPerson, error) {
	person, err := sess.Persons().FindByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if person == nil {
		return nil, fmt.Errorf("%w: person %s", domain.ErrNotFound, uid)
	}
	return person, nil
}

func findPersonAuthority(ctx context.Context, sess repository.Session, uid, name string) (*domain.AuthorityPerson, *domain.Authority, error) {
	person, err := findPerson(ctx, sess, uid)
	if err != nil {
		return nil, nil, err
	}
	authorities, err := sess.Persons().Authorities(ctx, person)
	if err != nil {
		return nil, nil, err
	}
	authority := domain.FindAuthority(authorities, name)
	if authority == nil {
		return nil, nil, fmt.Errorf("%w: authority %s of person %s", domain.ErrNotFound, name, uid)
	}
	return person, authority, nil
}

func ensureUIDFree(ctx context.Context, sess repository.Session, uid string) error {
	if uid == "" {
		return nil
	}
	existing, err := sess.Persons().FindByUID(ctx, uid)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: person %s", domain.ErrAlreadyExists, uid)
	}
	return nil
}

// ensurePairFree fails when another authority than self already holds the pair
func ensurePairFree(ctx context.Context, sess repository.Session, name, key string, self int64) error {
	existing, err := sess.Authorities().FindByKey(ctx, name, key)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != self {
		return fmt.Errorf("%w: authority %s %s", domain.ErrAlreadyExists, name, key)
	}
	return nil
}

func expands(expand []string, option string) bool {
	for _, e := range expand {
		e = strings.TrimSpace(e)
		if e == option || e == "all" {
			return true
		}
	}
	return false
}
