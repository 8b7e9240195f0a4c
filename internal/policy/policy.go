// Package policy decides which money movements and administrative actions a
// role may perform. Decisions are pure functions of their inputs.
package policy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/congo-pay/congo_wallet/internal/account"
	"github.com/congo-pay/congo_wallet/internal/ledger"
)

// ErrPermissionDenied matches every *Denial.
var ErrPermissionDenied = errors.New("permission denied")

// Denial carries the reason a request was refused.
type Denial struct {
	Reason string
}

func (d *Denial) Error() string { return "permission denied: " + d.Reason }

// Is lets errors.Is(err, ErrPermissionDenied) match.
func (d *Denial) Is(target error) bool { return target == ErrPermissionDenied }

func deny(format string, args ...any) error {
	return &Denial{Reason: fmt.Sprintf(format, args...)}
}

// Request is the input to CanTransfer.
type Request struct {
	SenderRole   account.Role
	ReceiverRole account.Role
	Type         ledger.Type
	// SelfDirected is true when sender and receiver are the same account.
	SelfDirected bool
}

// CanTransfer returns nil when the movement is allowed and a *Denial otherwise.
//
//	ADD_MONEY              only self-directed
//	SEND_MONEY, CASH_OUT   never self-directed; USER -> AGENT refused
func CanTransfer(req Request) error {
	if !req.SenderRole.Valid() {
		return deny("unknown sender role %q", req.SenderRole)
	}

	switch req.Type {
	case ledger.TypeAddMoney:
		if !req.SelfDirected {
			return deny("add money can only fund the caller's own wallet")
		}
		return nil
	case ledger.TypeSendMoney, ledger.TypeCashOut:
	default:
		return deny("unsupported transaction type %q", req.Type)
	}

	if req.SelfDirected {
		return deny("cannot %s to own account", strings.ToLower(string(req.Type)))
	}
	if !req.ReceiverRole.Valid() {
		return deny("unknown receiver role %q", req.ReceiverRole)
	}
	if req.SenderRole == account.RoleUser && req.ReceiverRole == account.RoleAgent {
		return deny("user cannot %s to agent", strings.ToLower(string(req.Type)))
	}
	return nil
}

// CanManageWallets allows administrators to change wallet status.
func CanManageWallets(role account.Role) error {
	if !role.IsAdministrator() {
		return deny("role %q cannot manage wallets", role)
	}
	return nil
}
