package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/congo_wallet/internal/admin"
)

// RegisterAdminRoutes wires administrative endpoints. Role checks happen in
// the admin service.
func RegisterAdminRoutes(r fiber.Router, h *admin.Handler) {
	r.Patch("/admin/wallets/:accountId/status", h.SetWalletStatus)
}
