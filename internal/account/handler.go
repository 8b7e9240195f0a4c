package account

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes account registration.
type Handler struct {
	service *Service
}

// NewHandler builds an account HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type registerRequest struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// Register opens a USER or AGENT account with an empty, active wallet.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	role, ok := ParseRole(req.Role)
	if !ok {
		return fiber.NewError(http.StatusBadRequest, "unknown role")
	}
	acct, w, err := h.service.Register(c.UserContext(), RegisterInput{ID: req.ID, Role: role})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"account": fiber.Map{
			"id":         acct.ID,
			"role":       acct.Role,
			"wallet_id":  acct.WalletID,
			"created_at": acct.CreatedAt,
		},
		"wallet": fiber.Map{
			"id":      w.ID,
			"balance": w.Balance,
			"status":  w.Status,
		},
	})
}
