package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/umojalearning/umoja-backend/internal/api/http/handler"
)

func (r *Router) registerGuardianRoutes(
	api fiber.Router,
	h *handler.GuardianHandler,
	authRequired fiber.Handler,
) {
	group := api.Group("/guardian", authRequired)
	group.Post("/verify-child", h.VerifyChild)
	group.Get("/verify-child", h.SearchChild)
}
