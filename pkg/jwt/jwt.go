package jwt

import (
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/ctu-developers/DSpace/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidSigningMethod = errors.New("unexpected signing method")
	ErrInvalidToken         = errors.New("invalid token")
	ErrInvalidTokenType     = errors.New("invalid token type")
)

// AccessTokenType is the "type" claim of access tokens
const AccessTokenType = "access"

// Verifier checks access tokens issued by the upstream auth service.
// It only holds the public key and never issues tokens.
type Verifier struct {
	publicKey *rsa.PublicKey
	issuer    string
}

// NewVerifier parses the PEM encoded RSA public key. An empty issuer
// disables the issuer check.
func NewVerifier(publicKeyPEM []byte, issuer string) (*Verifier, error) {
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	return &Verifier{
		publicKey: publicKey,
		issuer:    issuer,
	}, nil
}

// Verify validates signature, expiry, issuer and token type
func (v *Verifier) Verify(tokenString string) (*domain.Claims, error) {
	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &domain.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, ErrInvalidSigningMethod
		}
		return v.publicKey, nil
	}, opts...)

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*domain.Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != AccessTokenType {
		return nil, ErrInvalidTokenType
	}

	return claims, nil
}
