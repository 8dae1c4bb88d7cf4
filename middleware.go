package accounts

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// PrincipalContextKey is where the bearer middleware stores validated
// claims on the request.
const PrincipalContextKey = "accounts.principal"

// AuthorizationHeader is the header carrying the bearer token.
const AuthorizationHeader = "Authorization"

const bearerScheme = "Bearer"

// RequireAuth returns a request guard that validates `Authorization:
// Bearer` tokens through the given validator and exposes the principal to
// downstream handlers. Requests without a valid token are rejected before
// the handler runs.
func RequireAuth(tokens TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, ok := extractBearerToken(c.Get(AuthorizationHeader))
		if !ok {
			return writeError(c, ErrInvalidToken)
		}

		claims, err := tokens.Validate(raw)
		if err != nil {
			return writeError(c, ErrInvalidToken)
		}

		c.Locals(PrincipalContextKey, claims)
		return c.Next()
	}
}

// RequireAuthority wraps RequireAuth semantics with an authority check:
// the validated principal must carry the named authority.
func RequireAuthority(tokens TokenService, authority string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, ok := extractBearerToken(c.Get(AuthorizationHeader))
		if !ok {
			return writeError(c, ErrInvalidToken)
		}

		claims, err := tokens.Validate(raw)
		if err != nil {
			return writeError(c, ErrInvalidToken)
		}

		if !claims.HasAuthority(authority) {
			return c.Status(fiber.StatusForbidden).JSON(errorBody{
				Message: "insufficient authorities",
				Code:    "FORBIDDEN",
			})
		}

		c.Locals(PrincipalContextKey, claims)
		return c.Next()
	}
}

// PrincipalFromContext returns the claims stored by RequireAuth.
func PrincipalFromContext(c *fiber.Ctx) (AuthClaims, bool) {
	claims, ok := c.Locals(PrincipalContextKey).(AuthClaims)
	return claims, ok
}

func extractBearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], bearerScheme) {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
