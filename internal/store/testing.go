package store

import (
	"fmt"

	"github.com/congo-pay/congo_wallet/internal/wallet"
)

// SeedBalance sets a wallet balance directly, bypassing the ledger. Test helper.
func (m *Memory) SeedBalance(walletID string, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[walletID]
	if !ok {
		return fmt.Errorf("seed %s: %w", walletID, wallet.ErrNotFound)
	}
	w.Balance = amount
	m.wallets[walletID] = w
	return nil
}

// SeedStatus sets a wallet status directly. Test helper.
func (m *Memory) SeedStatus(walletID string, status wallet.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[walletID]
	if !ok {
		return fmt.Errorf("seed %s: %w", walletID, wallet.ErrNotFound)
	}
	w.Status = status
	m.wallets[walletID] = w
	return nil
}
