package idtoken

import (
	"strings"

	"github.com/gofiber/fiber/v3"
)

const CtxKeyClaims = "auth.claims"

// ClaimsFromFiber retrieves verified claims stored by the auth middleware.
func ClaimsFromFiber(c fiber.Ctx) (*Claims, bool) {
	v := c.Locals(CtxKeyClaims)
	if v == nil {
		return nil, false
	}
	cl, ok := v.(*Claims)
	return cl, ok
}

// BearerToken extracts the raw token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
