package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/umojalearning/umoja-backend/internal/service/profile"
	"github.com/umojalearning/umoja-backend/internal/service/user"
	"github.com/umojalearning/umoja-backend/pkg/idtoken"
)

type ProfileHandler struct {
	profiles profile.Service
	users    user.Service
}

func NewProfileHandler(profiles profile.Service, users user.Service) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, users: users}
}

func mapProfileError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		return notFound(c, "User not found")
	case errors.Is(err, profile.ErrProfileNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, profile.ErrInvalidDate):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

// GET /api/profile/child
func (h *ProfileHandler) GetChildProfile(c fiber.Ctx) error {
	claims, hasClaims := idtoken.ClaimsFromFiber(c)
	if !hasClaims {
		return unauthorized(c)
	}

	u, err := h.users.ByExternalID(c.Context(), claims.ExternalID)
	if err != nil {
		return mapProfileError(c, err)
	}

	p, err := h.profiles.ChildProfile(c.Context(), u.ID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			// Absence before onboarding is not an error.
			return ok(c, fiber.Map{"profile": nil})
		}
		return mapProfileError(c, err)
	}
	return ok(c, fiber.Map{"profile": p})
}

// PUT /api/profile/child
func (h *ProfileHandler) SaveChildProfile(c fiber.Ctx) error {
	claims, hasClaims := idtoken.ClaimsFromFiber(c)
	if !hasClaims {
		return unauthorized(c)
	}

	u, err := h.users.ByExternalID(c.Context(), claims.ExternalID)
	if err != nil {
		return mapProfileError(c, err)
	}

	var req profile.SaveChildProfileRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.FirstName == "" || req.LastName == "" || req.DateOfBirth == "" {
		return badRequest(c, "first_name, last_name, and date_of_birth are required")
	}

	p, err := h.profiles.SaveChildProfile(c.Context(), u.ID, req)
	if err != nil {
		return mapProfileError(c, err)
	}
	return ok(c, fiber.Map{"profile": p})
}

// GET /api/profile/child/emergency-contacts
func (h *ProfileHandler) GetEmergencyContacts(c fiber.Ctx) error {
	claims, hasClaims := idtoken.ClaimsFromFiber(c)
	if !hasClaims {
		return unauthorized(c)
	}

	u, err := h.users.ByExternalID(c.Context(), claims.ExternalID)
	if err != nil {
		return mapProfileError(c, err)
	}
	p, err := h.profiles.ChildProfile(c.Context(), u.ID)
	if err != nil {
		return mapProfileError(c, err)
	}

	contacts, err := h.profiles.EmergencyContacts(c.Context(), p.ID)
	if err != nil {
		return mapProfileError(c, err)
	}
	return ok(c, fiber.Map{"contacts": contacts})
}

// PUT /api/profile/child/emergency-contacts
func (h *ProfileHandler) SaveEmergencyContacts(c fiber.Ctx) error {
	claims, hasClaims := idtoken.ClaimsFromFiber(c)
	if !hasClaims {
		return unauthorized(c)
	}

	u, err := h.users.ByExternalID(c.Context(), claims.ExternalID)
	if err != nil {
		return mapProfileError(c, err)
	}
	p, err := h.profiles.ChildProfile(c.Context(), u.ID)
	if err != nil {
		return mapProfileError(c, err)
	}

	var body struct {
		Contacts []profile.EmergencyContactInput `json:"contacts"`
	}
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	contacts, err := h.profiles.SaveEmergencyContacts(c.Context(), p.ID, body.Contacts)
	if err != nil {
		return mapProfileError(c, err)
	}
	return ok(c, fiber.Map{"contacts": contacts})
}
