// Package admin holds administrative operations on wallets.
package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/congo-pay/congo_wallet/internal/account"
	"github.com/congo-pay/congo_wallet/internal/ledger"
	"github.com/congo-pay/congo_wallet/internal/notification"
	"github.com/congo-pay/congo_wallet/internal/policy"
	"github.com/congo-pay/congo_wallet/internal/wallet"
)

// Directory finds the account behind a target id.
type Directory interface {
	Locate(ctx context.Context, id string) (account.Account, error)
}

// Service changes wallet status. It never touches balances or the ledger.
type Service struct {
	accounts Directory
	store    ledger.Store
	notifier notification.Notifier
	timeout  time.Duration
}

// NewService builds the wallet-status controller. notifier may be nil.
func NewService(accounts Directory, store ledger.Store, notifier notification.Notifier, timeout time.Duration) *Service {
	return &Service{accounts: accounts, store: store, notifier: notifier, timeout: timeout}
}

// SetWalletStatus assigns status to the wallet of targetAccountID. Any
// status may follow any other, including itself.
func (s *Service) SetWalletStatus(ctx context.Context, actorRole account.Role, targetAccountID, status string) (wallet.Wallet, error) {
	next, err := wallet.ParseStatus(status)
	if err != nil {
		return wallet.Wallet{}, err
	}
	if err := policy.CanManageWallets(actorRole); err != nil {
		return wallet.Wallet{}, err
	}

	target, err := s.accounts.Locate(ctx, targetAccountID)
	if err != nil {
		return wallet.Wallet{}, err
	}

	scopeCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		scopeCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var updated wallet.Wallet
	err = s.store.Atomically(scopeCtx, []string{target.WalletID}, func(ctx context.Context, scope ledger.Scope) error {
		w, err := wallet.AtomicUpdate(ctx, scope, target.WalletID, func(w *wallet.Wallet) error {
			w.Status = next
			return nil
		})
		updated = w
		return err
	})
	if err != nil {
		return wallet.Wallet{}, err
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindWalletStatus,
			Destination: target.ID,
			Body:        fmt.Sprintf("Your wallet is now %s", strings.ToLower(string(next))),
			OccurredAt:  updated.UpdatedAt,
		})
	}
	return updated, nil
}
