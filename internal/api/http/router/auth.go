package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/umojalearning/umoja-backend/internal/api/http/handler"
)

func (r *Router) registerAuthRoutes(
	api fiber.Router,
	ah *handler.AuthHandler,
	dh *handler.DashboardHandler,
	authRequired fiber.Handler,
) {
	api.Post("/auth/sync-user", authRequired, ah.SyncUser)
	api.Get("/dashboard", authRequired, dh.Get)
}
