package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/congo_wallet/internal/account"
)

// RegisterAccountRoutes wires public account endpoints.
func RegisterAccountRoutes(r fiber.Router, h *account.Handler) {
	r.Post("/accounts", h.Register)
}
