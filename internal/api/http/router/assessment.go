package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/umojalearning/umoja-backend/internal/api/http/handler"
)

func (r *Router) registerAssessmentRoutes(
	api fiber.Router,
	ah *handler.AssessmentHandler,
	anh *handler.AnalysisHandler,
	authRequired fiber.Handler,
) {
	group := api.Group("/assessment", authRequired)

	group.Get("/buckets", ah.ListBuckets)
	group.Get("/buckets/:id/questions", ah.ListQuestions)

	group.Post("/sessions", ah.StartSession)
	group.Get("/sessions", ah.ListSessions)
	group.Get("/sessions/:id/responses", ah.ListResponses)
	group.Post("/sessions/:id/responses", ah.RecordResponse)
	group.Put("/sessions/:id/progress", ah.AdvanceProgress)
	group.Post("/sessions/:id/complete", ah.CompleteSession)

	group.Get("/progress", ah.Progress)
	group.Post("/analyze", anh.Analyze)
}
