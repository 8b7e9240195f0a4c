package ledger

import (
	"context"
	"errors"

	"github.com/congo-pay/congo_wallet/internal/wallet"
)

var (
	// ErrConflict is returned when an atomic scope cannot acquire its locks
	// in time or the backend reports a concurrent modification. Nothing
	// written inside the scope is kept.
	ErrConflict = errors.New("concurrent modification")

	// ErrDuplicateTransaction indicates a transaction id was appended twice.
	ErrDuplicateTransaction = errors.New("duplicate transaction")

	// ErrTransactionNotFound is returned when a referenced transaction is missing.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// Scope is an open atomic unit over a fixed set of locked wallets.
type Scope interface {
	wallet.Scope
	Append(ctx context.Context, tx Transaction) error
}

// Store persists wallets and transactions.
//
// Atomically locks walletIDs in ascending order, runs fn, and commits every
// write fn staged if and only if fn returns nil. Any error, panic or
// cancelled context rolls the scope back.
type Store interface {
	wallet.Loader
	Atomically(ctx context.Context, walletIDs []string, fn func(ctx context.Context, scope Scope) error) error
	Transactions(ctx context.Context, ids []string) ([]Transaction, error)
}
