package wallet

import (
	"context"
	"fmt"
	"time"
)

// Loader reads committed wallets.
type Loader interface {
	Load(ctx context.Context, id string) (Wallet, error)
}

// Scope is the wallet view of an open atomic unit. Get reads the current
// persisted state of a wallet locked by the scope; Put stages a write that
// becomes visible only when the scope commits.
type Scope interface {
	Get(ctx context.Context, id string) (Wallet, error)
	Put(ctx context.Context, w Wallet) error
}

// AtomicUpdate applies mutate to the locked wallet id as a single
// read-modify-write inside scope. The mutator works on a copy; nothing is
// staged if it fails or leaves a negative balance.
func AtomicUpdate(ctx context.Context, scope Scope, id string, mutate func(*Wallet) error) (Wallet, error) {
	current, err := scope.Get(ctx, id)
	if err != nil {
		return Wallet{}, err
	}

	next := current.Clone()
	if err := mutate(&next); err != nil {
		return Wallet{}, err
	}
	if next.ID != current.ID || next.AccountID != current.AccountID {
		return Wallet{}, fmt.Errorf("wallet %s: identity changed during update", id)
	}
	if next.Balance < 0 {
		return Wallet{}, ErrInsufficientFunds
	}
	next.UpdatedAt = time.Now().UTC()

	if err := scope.Put(ctx, next); err != nil {
		return Wallet{}, err
	}
	return next, nil
}
