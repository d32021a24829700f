package domain

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the access token claims issued by the upstream auth service
type Claims struct {
	jwt.RegisteredClaims
	UserID    uuid.UUID `json:"uid"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles,omitempty"`
	TokenType string    `json:"type"`
}

// Principal is the caller of a request. A nil Principal is anonymous.
type Principal struct {
	UserID uuid.UUID
	Email  string
}

// Anonymous reports whether p carries no usable identity
func (p *Principal) Anonymous() bool {
	return p == nil || p.Email == ""
}

// String returns the principal email, or "anonymous"
func (p *Principal) String() string {
	if p.Anonymous() {
		return "anonymous"
	}
	return p.Email
}
