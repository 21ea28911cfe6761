package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/umojalearning/umoja-backend/internal/model"
	"github.com/umojalearning/umoja-backend/internal/service/user"
	"github.com/umojalearning/umoja-backend/pkg/idtoken"
)

type DashboardHandler struct {
	users user.Service
}

func NewDashboardHandler(users user.Service) *DashboardHandler {
	return &DashboardHandler{users: users}
}

// GET /api/dashboard
func (h *DashboardHandler) Get(c fiber.Ctx) error {
	claims, hasClaims := idtoken.ClaimsFromFiber(c)
	if !hasClaims {
		return unauthorized(c)
	}

	u, err := h.users.ByExternalID(c.Context(), claims.ExternalID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return notFound(c, "User not found")
		}
		return internalError(c)
	}

	d, err := h.users.Dashboard(c.Context(), u)
	if err != nil {
		if errors.Is(err, user.ErrInvalidRole) {
			return badRequest(c, "Invalid user role")
		}
		return internalError(c)
	}

	switch d.Role {
	case model.RoleGuardian:
		children := d.Children
		if children == nil {
			children = []user.LinkedChild{}
		}
		return c.JSON(fiber.Map{
			"guardian": d.Guardian,
			"children": children,
			"userRole": "guardian",
		})
	default:
		return c.JSON(fiber.Map{
			"child":    d.Child,
			"userRole": "child",
		})
	}
}
