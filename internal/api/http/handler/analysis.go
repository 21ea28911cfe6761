package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/umojalearning/umoja-backend/internal/service/analysis"
	"github.com/umojalearning/umoja-backend/internal/service/user"
	"github.com/umojalearning/umoja-backend/pkg/idtoken"
)

type AnalysisHandler struct {
	analyses analysis.Service
	users    user.Service
}

func NewAnalysisHandler(analyses analysis.Service, users user.Service) *AnalysisHandler {
	return &AnalysisHandler{analyses: analyses, users: users}
}

// POST /api/assessment/analyze
func (h *AnalysisHandler) Analyze(c fiber.Ctx) error {
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

	result, err := h.analyses.GetOrCreate(c.Context(), u.ID)
	switch {
	case err == nil:
	case errors.Is(err, analysis.ErrNoResponses):
		return notFound(c, "No assessment responses found for this user.")
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "An internal error occurred.",
		})
	}

	return c.JSON(fiber.Map{"analysis": result})
}
