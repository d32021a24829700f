package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/ctu-developers/DSpace/internal/domain"
	"github.com/ctu-developers/DSpace/internal/logging"
	"github.com/gofiber/fiber/v2"
)

// PrincipalKey is the fiber.Locals key of the caller principal
const PrincipalKey = "principal"

type TokenVerifier interface {
	Verify(token string) (*domain.Claims, error)
}

type RevocationChecker interface {
	IsRevoked(ctx context.Context, token, userID string, issuedAt time.Time) (bool, error)
}

// Identify resolves the caller from an optional bearer token. Requests
// without a usable token continue as anonymous. revocations may be nil.
func Identify(verifier TokenVerifier, revocations RevocationChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return c.Next()
		}

		log := logging.Ctx(c.UserContext())

		claims, err := verifier.Verify(token)
		if err != nil {
			log.Debug().Err(err).Msg("Ignoring invalid bearer token")
			return c.Next()
		}

		if revocations != nil {
			var issuedAt time.Time
			if claims.IssuedAt != nil {
				issuedAt = claims.IssuedAt.Time
			}
			revoked, err := revocations.IsRevoked(c.UserContext(), token, claims.UserID.String(), issuedAt)
			if err != nil {
				log.Warn().Err(err).Msg("Failed to verify token status, continuing as anonymous")
				return c.Next()
			}
			if revoked {
				log.Debug().Str("user_id", claims.UserID.String()).Msg("Ignoring revoked bearer token")
				return c.Next()
			}
		}

		c.Locals(PrincipalKey, &domain.Principal{UserID: claims.UserID, Email: claims.Email})
		return c.Next()
	}
}

// PrincipalFrom returns the caller set by Identify, or nil for anonymous
func PrincipalFrom(c *fiber.Ctx) *domain.Principal {
	principal, _ := c.Locals(PrincipalKey).(*domain.Principal)
	return principal
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
