package ledger

import (
	"strings"
	"time"

	"github.com/congo-pay/congo_wallet/internal/account"
)

// Type classifies a balance-affecting event.
type Type string

const (
	TypeAddMoney  Type = "ADD_MONEY"
	TypeSendMoney Type = "SEND_MONEY"
	TypeCashOut   Type = "CASH_OUT"
)

// ParseType accepts a transaction type name in any case.
func ParseType(s string) (Type, bool) {
	switch t := Type(strings.ToUpper(strings.TrimSpace(s))); t {
	case TypeAddMoney, TypeSendMoney, TypeCashOut:
		return t, true
	}
	return "", false
}

// Status is the recorded outcome of a transaction.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusSend      Status = "SEND"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
	StatusRefunded  Status = "REFUNDED"
)

// TransferDetail describes the counterparties of a SEND_MONEY or CASH_OUT.
type TransferDetail struct {
	SenderID   string
	ReceiverID string
	SenderRole account.Role
	Amount     int64
	Message    string
}

// Transaction is one immutable ledger record.
type Transaction struct {
	ID          string
	WalletID    string
	AccountID   string
	AccountRole account.Role
	Amount      int64
	Type        Type
	Status      Status
	Transfer    *TransferDetail
	CreatedAt   time.Time
}
