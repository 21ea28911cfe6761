package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/umojalearning/umoja-backend/internal/api/http/handler"
)

func (r *Router) registerProfileRoutes(
	api fiber.Router,
	h *handler.ProfileHandler,
	authRequired fiber.Handler,
) {
	group := api.Group("/profile", authRequired)
	group.Get("/child", h.GetChildProfile)
	group.Put("/child", h.SaveChildProfile)
	group.Get("/child/emergency-contacts", h.GetEmergencyContacts)
	group.Put("/child/emergency-contacts", h.SaveEmergencyContacts)
}
