package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/congo_wallet/internal/payments"
)

// RegisterWalletRoutes wires the caller's wallet endpoints. guards run in
// front of the money-movement routes only.
func RegisterWalletRoutes(r fiber.Router, h *payments.Handler, guards ...fiber.Handler) {
	w := r.Group("/wallet")
	w.Get("/", h.Wallet)
	w.Get("/history", h.History)
	w.Post("/add-money", guarded(guards, h.AddMoney)...)
	w.Post("/transfers/:receiverId", guarded(guards, h.Transfer)...)
}

func guarded(guards []fiber.Handler, h fiber.Handler) []fiber.Handler {
	chain := make([]fiber.Handler, 0, len(guards)+1)
	chain = append(chain, guards...)
	return append(chain, h)
}
