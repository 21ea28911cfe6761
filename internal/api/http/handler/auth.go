package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/umojalearning/umoja-backend/internal/model"
	"github.com/umojalearning/umoja-backend/internal/service/user"
	"github.com/umojalearning/umoja-backend/pkg/idtoken"
)

type AuthHandler struct {
	users user.Service
}

func NewAuthHandler(users user.Service) *AuthHandler {
	return &AuthHandler{users: users}
}

// POST /api/auth/sync-user
func (h *AuthHandler) SyncUser(c fiber.Ctx) error {
	claims, hasClaims := idtoken.ClaimsFromFiber(c)
	if !hasClaims {
		return unauthorized(c)
	}

	var body struct {
		UserType string `json:"userType"`
	}
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	role := model.Role(body.UserType)
	if !role.Valid() {
		return badRequest(c, "Invalid user type")
	}

	u, err := h.users.Sync(c.Context(), claims.ExternalID, claims.Email, role)
	if err != nil {
		if errors.Is(err, user.ErrInvalidRole) {
			return badRequest(c, "Invalid user type")
		}
		return internalError(c)
	}

	redirectURL := "/guardian-dashboard"
	if u.Role == model.RoleChild {
		redirectURL = "/child-dashboard"
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"user":        u,
		"redirectUrl": redirectURL,
	})
}
