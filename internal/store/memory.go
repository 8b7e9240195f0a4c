package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/congo-pay/congo_wallet/internal/account"
	"github.com/congo-pay/congo_wallet/internal/ledger"
	"github.com/congo-pay/congo_wallet/internal/wallet"
)

// Memory is a concurrency-safe in-memory backend used in development and tests.
//
// Each wallet has its own exclusive lock, held for the life of a scope.
// Writes made inside a scope are staged and applied under mu in one step at
// commit, so readers see either all of a scope's writes or none of them.
type Memory struct {
	mu           sync.RWMutex
	users        map[string]account.Account
	agents       map[string]account.Account
	wallets      map[string]wallet.Wallet
	transactions map[string]ledger.Transaction

	locksMu sync.Mutex
	locks   map[string]chan struct{}
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:        make(map[string]account.Account),
		agents:       make(map[string]account.Account),
		wallets:      make(map[string]wallet.Wallet),
		transactions: make(map[string]ledger.Transaction),
		locks:        make(map[string]chan struct{}),
	}
}

func (m *Memory) collection(kind account.Kind) (map[string]account.Account, error) {
	switch kind {
	case account.KindUser:
		return m.users, nil
	case account.KindAgent:
		return m.agents, nil
	default:
		return nil, fmt.Errorf("unknown account kind %s", kind)
	}
}

// Find returns the account with id from the collection for kind.
func (m *Memory) Find(_ context.Context, kind account.Kind, id string) (account.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	accounts, err := m.collection(kind)
	if err != nil {
		return account.Account{}, err
	}
	acct, ok := accounts[id]
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	return acct, nil
}

// Create stores an account and its wallet together.
func (m *Memory) Create(_ context.Context, acct account.Account, w wallet.Wallet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	accounts, err := m.collection(acct.Kind())
	if err != nil {
		return err
	}
	if _, exists := accounts[acct.ID]; exists {
		return account.ErrExists
	}
	if _, exists := m.wallets[w.ID]; exists {
		return fmt.Errorf("wallet %s: %w", w.ID, account.ErrExists)
	}
	if acct.WalletID != w.ID || w.AccountID != acct.ID {
		return errors.New("account and wallet do not reference each other")
	}
	accounts[acct.ID] = acct
	m.wallets[w.ID] = w.Clone()
	return nil
}

// Load returns the committed state of a wallet.
func (m *Memory) Load(_ context.Context, id string) (wallet.Wallet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.wallets[id]
	if !ok {
		return wallet.Wallet{}, wallet.ErrNotFound
	}
	return w.Clone(), nil
}

// Transactions returns the transactions for ids, in the order given.
func (m *Memory) Transactions(_ context.Context, ids []string) ([]ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ledger.Transaction, 0, len(ids))
	for _, id := range ids {
		tx, ok := m.transactions[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ledger.ErrTransactionNotFound, id)
		}
		out = append(out, tx)
	}
	return out, nil
}

func (m *Memory) lockFor(id string) chan struct{} {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()
	ch, ok := m.locks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		m.locks[id] = ch
	}
	return ch
}

// Atomically implements ledger.Store.
func (m *Memory) Atomically(ctx context.Context, walletIDs []string, fn func(ctx context.Context, scope ledger.Scope) error) error {
	ids := lockOrder(walletIDs)

	held := make([]chan struct{}, 0, len(ids))
	defer func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i]
		}
	}()
	for _, id := range ids {
		ch := m.lockFor(id)
		select {
		case ch <- struct{}{}:
			held = append(held, ch)
		case <-ctx.Done():
			return fmt.Errorf("%w: lock wallet %s: %v", ledger.ErrConflict, id, ctx.Err())
		}
	}

	scope := &memoryScope{
		store:  m,
		locked: make(map[string]struct{}, len(ids)),
		staged: make(map[string]wallet.Wallet, len(ids)),
	}
	for _, id := range ids {
		scope.locked[id] = struct{}{}
	}

	if err := fn(ctx, scope); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ledger.ErrConflict, err)
	}
	return m.commit(scope)
}

func (m *Memory) commit(s *memoryScope) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tx := range s.appended {
		if _, exists := m.transactions[tx.ID]; exists {
			return fmt.Errorf("%w: %s", ledger.ErrDuplicateTransaction, tx.ID)
		}
	}
	for _, tx := range s.appended {
		m.transactions[tx.ID] = tx
	}
	for id, w := range s.staged {
		m.wallets[id] = w
	}
	return nil
}

type memoryScope struct {
	store    *Memory
	locked   map[string]struct{}
	staged   map[string]wallet.Wallet
	appended []ledger.Transaction
}

func (s *memoryScope) checkLocked(id string) error {
	if _, ok := s.locked[id]; !ok {
		return fmt.Errorf("wallet %s is not locked by this scope", id)
	}
	return nil
}

func (s *memoryScope) Get(ctx context.Context, id string) (wallet.Wallet, error) {
	if err := s.checkLocked(id); err != nil {
		return wallet.Wallet{}, err
	}
	if w, ok := s.staged[id]; ok {
		return w.Clone(), nil
	}
	return s.store.Load(ctx, id)
}

func (s *memoryScope) Put(ctx context.Context, w wallet.Wallet) error {
	if err := s.checkLocked(w.ID); err != nil {
		return err
	}
	prev, err := s.Get(ctx, w.ID)
	if err != nil {
		return err
	}
	if err := appendOnly(w.ID, prev.TransactionIDs, w.TransactionIDs); err != nil {
		return err
	}
	if w.Balance < 0 {
		return wallet.ErrInsufficientFunds
	}
	s.staged[w.ID] = w.Clone()
	return nil
}

func (s *memoryScope) Append(_ context.Context, tx ledger.Transaction) error {
	for _, staged := range s.appended {
		if staged.ID == tx.ID {
			return fmt.Errorf("%w: %s", ledger.ErrDuplicateTransaction, tx.ID)
		}
	}
	s.store.mu.RLock()
	_, exists := s.store.transactions[tx.ID]
	s.store.mu.RUnlock()
	if exists {
		return fmt.Errorf("%w: %s", ledger.ErrDuplicateTransaction, tx.ID)
	}
	if tx.Transfer != nil {
		detail := *tx.Transfer
		tx.Transfer = &detail
	}
	s.appended = append(s.appended, tx)
	return nil
}
