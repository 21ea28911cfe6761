package middleware

import (
	"github.com/gofiber/fiber/v3"

	"github.com/umojalearning/umoja-backend/pkg/idtoken"
)

// AuthRequired validates the identity provider's Bearer token.
// On success, stores *idtoken.Claims in c.Locals(idtoken.CtxKeyClaims).
func AuthRequired(verifier *idtoken.Verifier) fiber.Handler {
	return func(c fiber.Ctx) error {
		raw, ok := idtoken.BearerToken(c.Get("Authorization"))
		if !ok {
			return fiber.ErrUnauthorized
		}

		claims, err := verifier.Verify(raw)
		if err != nil {
			return fiber.ErrUnauthorized
		}

		c.Locals(idtoken.CtxKeyClaims, claims)
		return c.Next()
	}
}
