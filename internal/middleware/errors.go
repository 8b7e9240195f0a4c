package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/congo_wallet/internal/account"
	"github.com/congo-pay/congo_wallet/internal/ledger"
	"github.com/congo-pay/congo_wallet/internal/payments"
	"github.com/congo-pay/congo_wallet/internal/policy"
	"github.com/congo-pay/congo_wallet/internal/wallet"
)

// StatusFor maps an error to the HTTP status the API reports for it.
func StatusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, payments.ErrInvalidInput),
		errors.Is(err, wallet.ErrInvalidStatus),
		errors.Is(err, wallet.ErrBalanceOverflow),
		errors.Is(err, account.ErrRoleNotRegistrable),
		errors.Is(err, account.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, account.ErrNotFound),
		errors.Is(err, wallet.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, policy.ErrPermissionDenied),
		errors.Is(err, wallet.ErrInactive):
		return http.StatusForbidden
	case errors.Is(err, wallet.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrConflict),
		errors.Is(err, ledger.ErrDuplicateTransaction),
		errors.Is(err, account.ErrExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler renders errors as {"success": false, "message": ...}.
// Internal errors are logged and their detail is not returned.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := StatusFor(err)
		message := err.Error()
		if status == http.StatusInternalServerError {
			if logger != nil {
				logger.Error("unhandled error", slog.String("path", c.Path()), slog.Any("error", err))
			}
			message = http.StatusText(status)
		}
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"message": message,
		})
	}
}
