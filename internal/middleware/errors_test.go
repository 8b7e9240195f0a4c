package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/congo-pay/congo_wallet/internal/account"
	"github.com/congo-pay/congo_wallet/internal/ledger"
	"github.com/congo-pay/congo_wallet/internal/payments"
	"github.com/congo-pay/congo_wallet/internal/policy"
	"github.com/congo-pay/congo_wallet/internal/wallet"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{payments.ErrInvalidAmount, http.StatusBadRequest},
		{fmt.Errorf("x: %w", wallet.ErrInvalidStatus), http.StatusBadRequest},
		{account.ErrRoleNotRegistrable, http.StatusBadRequest},
		{fmt.Errorf("receiver: %w", account.ErrNotFound), http.StatusNotFound},
		{wallet.ErrNotFound, http.StatusNotFound},
		{&policy.Denial{Reason: "user cannot cash_out to agent"}, http.StatusForbidden},
		{&wallet.InactiveError{Side: wallet.SideSender, Status: wallet.StatusBlocked}, http.StatusForbidden},
		{fmt.Errorf("receiver: %w", wallet.ErrBalanceOverflow), http.StatusBadRequest},
		{wallet.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: lock timeout", ledger.ErrConflict), http.StatusConflict},
		{account.ErrExists, http.StatusConflict},
		{fiber.NewError(http.StatusUnauthorized, "nope"), http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusFor(tc.err), tc.err.Error())
	}
}
