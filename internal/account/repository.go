package account

import (
	"context"
	"errors"

	"github.com/congo-pay/congo_wallet/internal/wallet"
)

var (
	// ErrNotFound is returned when no live account matches a lookup.
	ErrNotFound = errors.New("account not found")
	// ErrExists is returned when registering an id that is already taken.
	ErrExists = errors.New("account already exists")
)

// Repository persists accounts. Implementations keep users and agents in
// separate collections and create an account together with its wallet.
type Repository interface {
	Find(ctx context.Context, kind Kind, id string) (Account, error)
	Create(ctx context.Context, acct Account, w wallet.Wallet) error
}
