package handler

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/umojalearning/umoja-backend/internal/model"
	"github.com/umojalearning/umoja-backend/internal/service/assessment"
	"github.com/umojalearning/umoja-backend/internal/service/catalog"
	"github.com/umojalearning/umoja-backend/internal/service/profile"
	"github.com/umojalearning/umoja-backend/internal/service/user"
	"github.com/umojalearning/umoja-backend/pkg/ageband"
	"github.com/umojalearning/umoja-backend/pkg/idtoken"
)

type AssessmentHandler struct {
	assessments assessment.Service
	catalog     catalog.Service
	profiles    profile.Service
	users       user.Service
}

func NewAssessmentHandler(assessments assessment.Service, cat catalog.Service, profiles profile.Service, users user.Service) *AssessmentHandler {
	return &AssessmentHandler{assessments: assessments, catalog: cat, profiles: profiles, users: users}
}

func (h *AssessmentHandler) currentUser(c fiber.Ctx) (*model.User, error) {
	claims, hasClaims := idtoken.ClaimsFromFiber(c)
	if !hasClaims {
		return nil, fiber.ErrUnauthorized
	}
	return h.users.ByExternalID(c.Context(), claims.ExternalID)
}

func mapAssessmentError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, fiber.ErrUnauthorized):
		return unauthorized(c)
	case errors.Is(err, user.ErrUserNotFound):
		return notFound(c, "User not found")
	case errors.Is(err, assessment.ErrSessionNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, assessment.ErrQuestionNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, assessment.ErrBucketNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, catalog.ErrBucketNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, catalog.ErrInvalidBand):
		return badRequest(c, err.Error())
	case errors.Is(err, assessment.ErrDuplicateResponse):
		return conflict(c, err.Error())
	case errors.Is(err, assessment.ErrValueMismatch):
		return badRequest(c, err.Error())
	case errors.Is(err, assessment.ErrSessionOwnership):
		return forbidden(c)
	default:
		return internalError(c)
	}
}

// bandFor resolves the band from the query, falling back to the child's
// date of birth when the query leaves it out.
func (h *AssessmentHandler) bandFor(c fiber.Ctx, u *model.User) (ageband.Band, error) {
	if q := c.Query("band"); q != "" {
		return ageband.Band(q), nil
	}

	p, err := h.profiles.ChildProfile(c.Context(), u.ID)
	if err != nil {
		return "", err
	}
	dob, err := time.Parse("2006-01-02", p.DateOfBirth)
	if err != nil {
		return "", err
	}
	return ageband.BandFor(dob, time.Now()), nil
}

// GET /api/assessment/buckets
func (h *AssessmentHandler) ListBuckets(c fiber.Ctx) error {
	u, err := h.currentUser(c)
	if err != nil {
		return mapAssessmentError(c, err)
	}

	band, err := h.bandFor(c, u)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return badRequest(c, "band is required when no child profile exists")
		}
		return mapAssessmentError(c, err)
	}

	buckets, err := h.catalog.Buckets(c.Context(), band)
	if err != nil {
		return mapAssessmentError(c, err)
	}
	return ok(c, fiber.Map{"band": band, "buckets": buckets})
}

// GET /api/assessment/buckets/:id/questions
func (h *AssessmentHandler) ListQuestions(c fiber.Ctx) error {
	if _, err := h.currentUser(c); err != nil {
		return mapAssessmentError(c, err)
	}

	bucketID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid bucket id")
	}

	questions, err := h.catalog.Questions(c.Context(), bucketID)
	if err != nil {
		return mapAssessmentError(c, err)
	}
	return ok(c, fiber.Map{"questions": questions})
}

// POST /api/assessment/sessions
func (h *AssessmentHandler) StartSession(c fiber.Ctx) error {
	u, err := h.currentUser(c)
	if err != nil {
		return mapAssessmentError(c, err)
	}

	var body struct {
		BucketID       string `json:"bucket_id"`
		TotalQuestions int    `json:"total_questions"`
	}
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	bucketID, err := uuid.Parse(body.BucketID)
	if err != nil {
		return badRequest(c, "invalid bucket_id")
	}

	session, err := h.assessments.StartSession(c.Context(), u.ID, bucketID, body.TotalQuestions)
	if err != nil {
		return mapAssessmentError(c, err)
	}
	return created(c, fiber.Map{"session": session})
}

// GET /api/assessment/sessions
func (h *AssessmentHandler) ListSessions(c fiber.Ctx) error {
	u, err := h.currentUser(c)
	if err != nil {
		return mapAssessmentError(c, err)
	}

	sessions, err := h.assessments.ListSessions(c.Context(), u.ID)
	if err != nil {
		return mapAssessmentError(c, err)
	}
	return ok(c, fiber.Map{"sessions": sessions})
}

// GET /api/assessment/sessions/:id/responses
func (h *AssessmentHandler) ListResponses(c fiber.Ctx) error {
	u, err := h.currentUser(c)
	if err != nil {
		return mapAssessmentError(c, err)
	}

	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid session id")
	}

	session, err := h.assessments.SessionByID(c.Context(), sessionID)
	if err != nil {
		return mapAssessmentError(c, err)
	}
	if session.UserID != u.ID {
		return forbidden(c)
	}

	responses, err := h.assessments.SessionResponses(c.Context(), sessionID)
	if err != nil {
		return mapAssessmentError(c, err)
	}
	return ok(c, fiber.Map{"responses": responses})
}

// POST /api/assessment/sessions/:id/responses
func (h *AssessmentHandler) RecordResponse(c fiber.Ctx) error {
	u, err := h.currentUser(c)
	if err != nil {
		return mapAssessmentError(c, err)
	}

	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid session id")
	}

	var body struct {
		QuestionID string          `json:"question_id"`
		Kind       string          `json:"kind"`
		Text       string          `json:"text"`
		Numeric    int             `json:"numeric"`
		Structured json.RawMessage `json:"structured"`
	}
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	questionID, err := uuid.Parse(body.QuestionID)
	if err != nil {
		return badRequest(c, "invalid question_id")
	}

	value := assessment.ResponseValue{
		Kind:       assessment.ResponseKind(body.Kind),
		Text:       body.Text,
		Numeric:    body.Numeric,
		Structured: body.Structured,
	}

	response, err := h.assessments.RecordResponse(c.Context(), sessionID, questionID, u.ID, value)
	if err != nil {
		return mapAssessmentError(c, err)
	}
	return created(c, fiber.Map{"response": response})
}

// PUT /api/assessment/sessions/:id/progress
func (h *AssessmentHandler) AdvanceProgress(c fiber.Ctx) error {
	if _, err := h.currentUser(c); err != nil {
		return mapAssessmentError(c, err)
	}

	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid session id")
	}

	answered, err := h.assessments.AdvanceProgress(c.Context(), sessionID)
	if err != nil {
		return mapAssessmentError(c, err)
	}
	return ok(c, fiber.Map{"answered_questions": answered})
}

// POST /api/assessment/sessions/:id/complete
func (h *AssessmentHandler) CompleteSession(c fiber.Ctx) error {
	if _, err := h.currentUser(c); err != nil {
		return mapAssessmentError(c, err)
	}

	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid session id")
	}

	if err := h.assessments.CompleteSession(c.Context(), sessionID); err != nil {
		return mapAssessmentError(c, err)
	}
	return ok(c, fiber.Map{"completed": true})
}

// GET /api/assessment/progress
func (h *AssessmentHandler) Progress(c fiber.Ctx) error {
	u, err := h.currentUser(c)
	if err != nil {
		return mapAssessmentError(c, err)
	}

	band, err := h.bandFor(c, u)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return badRequest(c, "band is required when no child profile exists")
		}
		return mapAssessmentError(c, err)
	}

	progress, err := h.assessments.Progress(c.Context(), u.ID, band)
	if err != nil {
		return mapAssessmentError(c, err)
	}
	summary, err := h.assessments.CompletionStatus(c.Context(), u.ID, band)
	if err != nil {
		return mapAssessmentError(c, err)
	}
	return ok(c, fiber.Map{"band": band, "buckets": progress, "summary": summary})
}
