package admin

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/congo_wallet/internal/auth"
)

// Handler exposes administrative wallet endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds an admin HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type statusRequest struct {
	Status string `json:"status"`
}

// SetWalletStatus changes the status of the wallet owned by :accountId.
func (h *Handler) SetWalletStatus(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	w, err := h.service.SetWalletStatus(c.UserContext(), p.Role, c.Params("accountId"), req.Status)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "wallet status updated",
		"wallet": fiber.Map{
			"id":         w.ID,
			"account_id": w.AccountID,
			"balance":    w.Balance,
			"status":     w.Status,
			"updated_at": w.UpdatedAt,
		},
	})
}
