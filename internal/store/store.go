// Package store holds the persistence backends for accounts, wallets and
// the transaction ledger. Both backends implement account.Repository and
// ledger.Store over shared state so that an account is created with its
// wallet, and a balance change with its transaction, as one unit.
package store

import (
	"fmt"
	"sort"

	"github.com/congo-pay/congo_wallet/internal/account"
	"github.com/congo-pay/congo_wallet/internal/ledger"
)

var (
	_ account.Repository = (*Memory)(nil)
	_ ledger.Store       = (*Memory)(nil)
	_ account.Repository = (*Postgres)(nil)
	_ ledger.Store       = (*Postgres)(nil)
)

// lockOrder returns the distinct ids in ascending order. Every scope takes
// its locks in this order so two scopes never wait on each other in a cycle.
func lockOrder(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// appendOnly checks that next extends prev without rewriting it.
func appendOnly(walletID string, prev, next []string) error {
	if len(next) < len(prev) {
		return fmt.Errorf("wallet %s: transaction history is append-only", walletID)
	}
	for i := range prev {
		if prev[i] != next[i] {
			return fmt.Errorf("wallet %s: transaction history is append-only", walletID)
		}
	}
	return nil
}
