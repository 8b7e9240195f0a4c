package wallet

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Status is the operational state of a wallet.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusSuspended Status = "SUSPENDED"
	StatusBlocked   Status = "BLOCKED"
)

var (
	// ErrNotFound is returned when a wallet id has no stored wallet.
	ErrNotFound = errors.New("wallet not found")
	// ErrInvalidStatus is returned for a status outside ACTIVE, SUSPENDED, BLOCKED.
	ErrInvalidStatus = errors.New("invalid wallet status")
	// ErrInactive matches every *InactiveError.
	ErrInactive = errors.New("wallet is not active")
	// ErrInsufficientFunds is returned when a debit would take the balance below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrNonPositiveAmount is returned by Credit and Debit for amounts <= 0.
	ErrNonPositiveAmount = errors.New("amount must be positive")
	// ErrBalanceOverflow is returned when a credit would exceed the largest
	// representable balance.
	ErrBalanceOverflow = errors.New("balance would overflow")
)

// ParseStatus accepts exactly the enumerated statuses, in any case.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusActive, StatusSuspended, StatusBlocked:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Side names the participant whose wallet failed a check.
type Side string

const (
	SideOwn      Side = "own"
	SideSender   Side = "sender"
	SideReceiver Side = "receiver"
)

// InactiveError reports which wallet blocked an operation and why.
type InactiveError struct {
	Side   Side
	Status Status
}

func (e *InactiveError) Error() string {
	return fmt.Sprintf("%s wallet is %s", e.Side, strings.ToLower(string(e.Status)))
}

// Is lets errors.Is(err, ErrInactive) match.
func (e *InactiveError) Is(target error) bool { return target == ErrInactive }

// Wallet is the balance-holding record owned by exactly one account.
type Wallet struct {
	ID             string
	AccountID      string
	Balance        int64
	Status         Status
	TransactionIDs []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// New returns an empty, active wallet.
func New(id, accountID string, now time.Time) Wallet {
	return Wallet{
		ID:        id,
		AccountID: accountID,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a copy that shares no memory with w.
func (w Wallet) Clone() Wallet {
	if w.TransactionIDs != nil {
		w.TransactionIDs = append([]string(nil), w.TransactionIDs...)
	}
	return w
}

// RequireActive fails with *InactiveError unless the wallet is ACTIVE.
func (w Wallet) RequireActive(side Side) error {
	if w.Status != StatusActive {
		return &InactiveError{Side: side, Status: w.Status}
	}
	return nil
}

// Credit increases the balance.
func (w *Wallet) Credit(amount int64) error {
	if amount <= 0 {
		return ErrNonPositiveAmount
	}
	if amount > math.MaxInt64-w.Balance {
		return ErrBalanceOverflow
	}
	w.Balance += amount
	return nil
}

// Debit decreases the balance, refusing to go below zero.
func (w *Wallet) Debit(amount int64) error {
	if amount <= 0 {
		return ErrNonPositiveAmount
	}
	if w.Balance < amount {
		return ErrInsufficientFunds
	}
	w.Balance -= amount
	return nil
}

// Record appends a transaction id to the wallet's history.
func (w *Wallet) Record(transactionID string) {
	w.TransactionIDs = append(w.TransactionIDs, transactionID)
}
