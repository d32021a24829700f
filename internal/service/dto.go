package service

import (
	"github.com/ctu-developers/DSpace/internal/domain"
)

// AuthorityResponse is the wire form of an authority
type AuthorityResponse struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

// PersonResponse is the wire form of a person
type PersonResponse struct {
	UID         string              `json:"uid"`
	FirstName   string              `json:"firstName"`
	LastName    string              `json:"lastName"`
	Authorities []AuthorityResponse `json:"authorities"`
	Created     domain.Date         `json:"created"`
}

type PersonRequest struct {
	UID       string `json:"uid" validate:"max=256,excludes=/"`
	FirstName string `json:"firstName" validate:"required,notblank,max=256"`
	LastName  string `json:"lastName" validate:"required,notblank,max=256"`
}

type AuthorityRequest struct {
	Name string `json:"name" validate:"required,notblank,max=256"`
	Key  string `json:"key" validate:"required,notblank,max=256"`
}

func newAuthorityResponse(a *domain.Authority) AuthorityResponse {
	return AuthorityResponse{Name: a.Name, Key: a.Key}
}

// newPersonResponse renders p with the authorities visible to the caller
func newPersonResponse(p *domain.AuthorityPerson, authorities []*domain.Authority, anonymous bool, deny DenyList) PersonResponse {
	resp := PersonResponse{
		UID:         p.UID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Authorities: make([]AuthorityResponse, 0, len(authorities)),
		Created:     domain.NewDate(p.Created),
	}
	for _, a := range authorities {
		if IsVisible(a.Name, anonymous, deny) {
			resp.Authorities = append(resp.Authorities, newAuthorityResponse(a))
		}
	}
	return resp
}
