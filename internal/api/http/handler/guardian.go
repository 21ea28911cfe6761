package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"

	"github.com/umojalearning/umoja-backend/internal/service/guardian"
	"github.com/umojalearning/umoja-backend/internal/service/user"
	"github.com/umojalearning/umoja-backend/pkg/idtoken"
)

type GuardianHandler struct {
	guardians guardian.Service
	users     user.Service
}

func NewGuardianHandler(guardians guardian.Service, users user.Service) *GuardianHandler {
	return &GuardianHandler{guardians: guardians, users: users}
}

// verifyFailure is the 200-with-success:false shape used when the search
// outcome is a normal miss rather than a fault.
func verifyFailure(c fiber.Ctx, message string) error {
	return c.JSON(fiber.Map{"success": false, "message": message})
}

// POST /api/guardian/verify-child
func (h *GuardianHandler) VerifyChild(c fiber.Ctx) error {
	claims, hasClaims := idtoken.ClaimsFromFiber(c)
	if !hasClaims {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "You must be logged in to link a child.",
			"error":   "Unauthorized",
		})
	}

	var body struct {
		FirstName        string `json:"firstName"`
		LastName         string `json:"lastName"`
		DateOfBirth      string `json:"dateOfBirth"`
		SchoolName       string `json:"schoolName"`
		Grade            string `json:"grade"`
		RelationshipType string `json:"relationshipType"`
	}
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.FirstName == "" || body.LastName == "" || body.DateOfBirth == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "First name, last name, and date of birth are required",
			"error":   "Missing required fields",
		})
	}

	guardianUser, err := h.users.ByExternalID(c.Context(), claims.ExternalID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Guardian account not found. Please ensure you have signed up as a guardian.",
				"error":   "Guardian not found",
			})
		}
		return internalError(c)
	}

	criteria := guardian.FindChildCriteria{
		FirstName:   body.FirstName,
		LastName:    body.LastName,
		DateOfBirth: body.DateOfBirth,
		SchoolName:  body.SchoolName,
		Grade:       body.Grade,
	}

	result, err := h.guardians.LinkChild(c.Context(), guardianUser.ID, criteria, body.RelationshipType)
	switch {
	case err == nil:
	case errors.Is(err, guardian.ErrChildNotFound):
		return verifyFailure(c, "No child found with the provided details. Please check the information and try again.")
	case errors.Is(err, guardian.ErrAmbiguousMatch):
		return verifyFailure(c, "Multiple children found with these details. Please provide more specific information like school name or grade.")
	case errors.Is(err, guardian.ErrAlreadyLinked):
		return verifyFailure(c, "You are already linked to this child.")
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to link child to guardian. Please try again.",
			"error":   "Internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"message":      fmt.Sprintf("Successfully linked to %s %s", result.Child.FirstName, result.Child.LastName),
		"child":        result.Child,
		"relationship": result.Relationship,
	})
}

// GET /api/guardian/verify-child
func (h *GuardianHandler) SearchChild(c fiber.Ctx) error {
	if _, hasClaims := idtoken.ClaimsFromFiber(c); !hasClaims {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "You must be logged in to search for children.",
			"error":   "Unauthorized",
		})
	}

	criteria := guardian.FindChildCriteria{
		FirstName:   c.Query("firstName"),
		LastName:    c.Query("lastName"),
		DateOfBirth: c.Query("dateOfBirth"),
	}

	matches, err := h.guardians.FindChild(c.Context(), criteria)
	if err != nil {
		if errors.Is(err, guardian.ErrMissingCriteria) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "First name, last name, and date of birth are required",
				"error":   "Missing required fields",
			})
		}
		return internalError(c)
	}

	return c.JSON(fiber.Map{
		"children": matches,
		"found":    len(matches) > 0,
	})
}
