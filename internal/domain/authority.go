package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Authority is the key a person holds within an external identity scheme
// (e.g. name "orcid", key "0000-0002-1825-0097").
type Authority struct {
	ID       int64  `db:"id"`
	Name     string `db:"key"`
	Key      string `db:"value"`
	PersonID *int64 `db:"person_id"`
}

// Complete reports whether both name and key are set
func (a *Authority) Complete() bool {
	return strings.TrimSpace(a.Name) != "" && strings.TrimSpace(a.Key) != ""
}

// AuthorityPerson is a person registered in the authority module
type AuthorityPerson struct {
	ID        int64     `db:"id"`
	UID       string    `db:"uid"`
	FirstName string    `db:"firstname"`
	LastName  string    `db:"lastname"`
	Created   time.Time `db:"created"`

	// authorities is loaded once per instance, see LoadAuthorities.
	authorities       []*Authority
	authoritiesLoaded bool
}

// NewAuthorityPerson creates an unsaved person
func NewAuthorityPerson(uid, firstName, lastName string) *AuthorityPerson {
	return &AuthorityPerson{
		UID:       uid,
		FirstName: firstName,
		LastName:  lastName,
	}
}

// GenerateUID assigns a new random uid to the person. It does not persist it.
func (p *AuthorityPerson) GenerateUID() {
	p.UID = uuid.NewString()
}

// HasNames reports whether both first and last name are set
func (p *AuthorityPerson) HasNames() bool {
	return strings.TrimSpace(p.FirstName) != "" && strings.TrimSpace(p.LastName) != ""
}

// Name returns the display name in "Last, First" form
func (p *AuthorityPerson) Name() string {
	return p.LastName + ", " + p.FirstName
}

// AuthoritiesLoaded reports whether the authority list has been loaded
func (p *AuthorityPerson) AuthoritiesLoaded() bool {
	return p.authoritiesLoaded
}

// LoadAuthorities returns the memoized authority list, calling load only the
// first time. A failed load leaves the person unloaded.
func (p *AuthorityPerson) LoadAuthorities(load func() ([]*Authority, error)) ([]*Authority, error) {
	if !p.authoritiesLoaded {
		list, err := load()
		if err != nil {
			return nil, err
		}
		p.SetAuthorities(list)
	}
	return append([]*Authority(nil), p.authorities...), nil
}

// SetAuthorities replaces the memoized authority list and marks it loaded
func (p *AuthorityPerson) SetAuthorities(list []*Authority) {
	p.authorities = append([]*Authority(nil), list...)
	p.authoritiesLoaded = true
}

// AppendAuthority adds a to the memoized list unless an authority with the
// same id is already there. It returns false when nothing was added.
func (p *AuthorityPerson) AppendAuthority(a *Authority) bool {
	for _, existing := range p.authorities {
		if existing.ID == a.ID {
			return false
		}
	}
	p.authorities = append(p.authorities, a)
	return true
}

// FindAuthority returns the first authority in list with the given name
func FindAuthority(list []*Authority, name string) *Authority {
	for _, a := range list {
		if a.Name == name {
			return a
		}
	}
	return nil
}
