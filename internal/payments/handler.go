package payments

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/congo_wallet/internal/auth"
	"github.com/congo-pay/congo_wallet/internal/ledger"
)

// Handler exposes money-movement and history endpoints for the caller's wallet.
type Handler struct {
	service *Service
	history *ledger.HistoryService
}

// NewHandler constructs a payment handler.
func NewHandler(service *Service, history *ledger.HistoryService) *Handler {
	return &Handler{service: service, history: history}
}

type addMoneyRequest struct {
	Amount int64 `json:"amount"`
}

type transferRequest struct {
	Amount int64  `json:"amount"`
	Type   string `json:"type"`
}

type transferResponse struct {
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	SenderRole string `json:"sender_role"`
	Amount     int64  `json:"amount"`
	Message    string `json:"message"`
}

type transactionResponse struct {
	ID          string            `json:"id"`
	WalletID    string            `json:"wallet_id"`
	AccountID   string            `json:"account_id"`
	AccountRole string            `json:"account_role"`
	Amount      int64             `json:"amount"`
	Type        string            `json:"type"`
	Status      string            `json:"status"`
	Transfer    *transferResponse `json:"transfer,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

func toResponse(tx ledger.Transaction) transactionResponse {
	res := transactionResponse{
		ID:          tx.ID,
		WalletID:    tx.WalletID,
		AccountID:   tx.AccountID,
		AccountRole: tx.AccountRole.String(),
		Amount:      tx.Amount,
		Type:        string(tx.Type),
		Status:      string(tx.Status),
		CreatedAt:   tx.CreatedAt,
	}
	if t := tx.Transfer; t != nil {
		res.Transfer = &transferResponse{
			SenderID:   t.SenderID,
			ReceiverID: t.ReceiverID,
			SenderRole: t.SenderRole.String(),
			Amount:     t.Amount,
			Message:    t.Message,
		}
	}
	return res
}

// AddMoney credits the caller's wallet.
func (h *Handler) AddMoney(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req addMoneyRequest
	if err := c.BodyParser(&req); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	tx, err := h.service.AddMoney(c.UserContext(), p, req.Amount)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success":     true,
		"message":     "money added",
		"transaction": toResponse(tx),
	})
}

// Transfer sends money from the caller's wallet to the account in :receiverId.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	input := TransferInput{ReceiverID: c.Params("receiverId"), Amount: req.Amount}
	if req.Type != "" {
		typ, ok := ledger.ParseType(req.Type)
		if !ok {
			return fmt.Errorf("%w: unknown transaction type %q", ErrInvalidInput, req.Type)
		}
		input.Type = typ
	}

	tx, err := h.service.Transfer(c.UserContext(), p, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success":     true,
		"message":     tx.Transfer.Message,
		"transaction": toResponse(tx),
	})
}

// History lists the caller's wallet transactions, oldest first.
func (h *Handler) History(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	history, err := h.history.History(c.UserContext(), p)
	if err != nil {
		return err
	}
	items := make([]transactionResponse, 0, len(history.Items))
	for _, tx := range history.Items {
		items = append(items, toResponse(tx))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"items": items,
		"total": history.Total,
	})
}

// Wallet returns the caller's account and wallet.
func (h *Handler) Wallet(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	acct, w, err := h.history.Wallet(c.UserContext(), p)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"account": fiber.Map{
			"id":         acct.ID,
			"role":       acct.Role,
			"created_at": acct.CreatedAt,
		},
		"wallet": fiber.Map{
			"id":                acct.WalletID,
			"balance":           w.Balance,
			"status":            w.Status,
			"transaction_count": len(w.TransactionIDs),
			"updated_at":        w.UpdatedAt,
		},
	})
}
