package ledger

import (
	"context"

	"github.com/congo-pay/congo_wallet/internal/account"
	"github.com/congo-pay/congo_wallet/internal/wallet"
)

// Directory resolves principals to accounts.
type Directory interface {
	Resolve(ctx context.Context, id string, role account.Role) (account.Account, error)
}

// History is a wallet's transactions in insertion order.
type History struct {
	Items []Transaction
	Total int
}

// HistoryService reads transaction history.
type HistoryService struct {
	accounts Directory
	store    Store
}

// NewHistoryService builds a history reader.
func NewHistoryService(accounts Directory, store Store) *HistoryService {
	return &HistoryService{accounts: accounts, store: store}
}

// History returns the principal's wallet history. The wallet must be active.
func (s *HistoryService) History(ctx context.Context, p account.Principal) (History, error) {
	acct, err := s.accounts.Resolve(ctx, p.ID, p.Role)
	if err != nil {
		return History{}, err
	}
	w, err := s.store.Load(ctx, acct.WalletID)
	if err != nil {
		return History{}, err
	}
	if err := w.RequireActive(wallet.SideOwn); err != nil {
		return History{}, err
	}

	items, err := s.store.Transactions(ctx, w.TransactionIDs)
	if err != nil {
		return History{}, err
	}
	return History{Items: items, Total: len(items)}, nil
}

// Wallet returns the principal's wallet in any status.
func (s *HistoryService) Wallet(ctx context.Context, p account.Principal) (account.Account, wallet.Wallet, error) {
	acct, err := s.accounts.Resolve(ctx, p.ID, p.Role)
	if err != nil {
		return account.Account{}, wallet.Wallet{}, err
	}
	w, err := s.store.Load(ctx, acct.WalletID)
	if err != nil {
		return account.Account{}, wallet.Wallet{}, err
	}
	return acct, w, nil
}
