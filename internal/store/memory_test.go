package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/congo-pay/congo_wallet/internal/account"
	"github.com/congo-pay/congo_wallet/internal/ledger"
	"github.com/congo-pay/congo_wallet/internal/wallet"
)

func seedAccount(t *testing.T, m *Memory, role account.Role, balance int64) account.Account {
	t.Helper()
	now := time.Now().UTC()
	acct := account.Account{ID: uuid.NewString(), Role: role, WalletID: uuid.NewString(), Active: true, CreatedAt: now}
	if err := m.Create(context.Background(), acct, wallet.New(acct.WalletID, acct.ID, now)); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if balance > 0 {
		if err := m.SeedBalance(acct.WalletID, balance); err != nil {
			t.Fatalf("seed balance: %v", err)
		}
	}
	return acct
}

func credit(id string, amount int64, txID string) func(ctx context.Context, scope ledger.Scope) error {
	return func(ctx context.Context, scope ledger.Scope) error {
		if err := scope.Append(ctx, ledger.Transaction{ID: txID, WalletID: id, Amount: amount, Type: ledger.TypeAddMoney, Status: ledger.StatusCompleted}); err != nil {
			return err
		}
		_, err := wallet.AtomicUpdate(ctx, scope, id, func(w *wallet.Wallet) error {
			w.Record(txID)
			return w.Credit(amount)
		})
		return err
	}
}

func TestMemoryCommitsScope(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	a := seedAccount(t, m, account.RoleUser, 0)

	if err := m.Atomically(ctx, []string{a.WalletID}, credit(a.WalletID, 40, "tx-1")); err != nil {
		t.Fatalf("atomically: %v", err)
	}

	w, err := m.Load(ctx, a.WalletID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if w.Balance != 40 || len(w.TransactionIDs) != 1 || w.TransactionIDs[0] != "tx-1" {
		t.Fatalf("unexpected wallet after commit: %+v", w)
	}
	txs, err := m.Transactions(ctx, w.TransactionIDs)
	if err != nil || len(txs) != 1 || txs[0].Amount != 40 {
		t.Fatalf("unexpected transactions: %+v, %v", txs, err)
	}
}

func TestMemoryRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	a := seedAccount(t, m, account.RoleUser, 10)
	boom := errors.New("boom")

	err := m.Atomically(ctx, []string{a.WalletID}, func(ctx context.Context, scope ledger.Scope) error {
		if err := credit(a.WalletID, 5, "tx-rolled-back")(ctx, scope); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	w, _ := m.Load(ctx, a.WalletID)
	if w.Balance != 10 || len(w.TransactionIDs) != 0 {
		t.Fatalf("rolled back scope leaked writes: %+v", w)
	}
	if _, err := m.Transactions(ctx, []string{"tx-rolled-back"}); !errors.Is(err, ledger.ErrTransactionNotFound) {
		t.Fatalf("rolled back transaction should not exist, got %v", err)
	}
}

func TestMemoryLockTimeoutIsConflict(t *testing.T) {
	m := NewMemory()
	a := seedAccount(t, m, account.RoleUser, 0)

	holding := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- m.Atomically(context.Background(), []string{a.WalletID}, func(context.Context, ledger.Scope) error {
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := m.Atomically(ctx, []string{a.WalletID}, func(context.Context, ledger.Scope) error {
		t.Error("scope must not run without its lock")
		return nil
	})
	if !errors.Is(err, ledger.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("holder: %v", err)
	}
}

func TestMemoryScopeRejectsUnlockedWallet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	a := seedAccount(t, m, account.RoleUser, 0)
	b := seedAccount(t, m, account.RoleAgent, 0)

	err := m.Atomically(ctx, []string{a.WalletID}, func(ctx context.Context, scope ledger.Scope) error {
		_, err := scope.Get(ctx, b.WalletID)
		return err
	})
	if err == nil {
		t.Fatalf("expected error reading a wallet outside the scope")
	}
}

func TestMemoryHistoryIsAppendOnly(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	a := seedAccount(t, m, account.RoleUser, 0)
	if err := m.Atomically(ctx, []string{a.WalletID}, credit(a.WalletID, 1, "tx-1")); err != nil {
		t.Fatalf("seed history: %v", err)
	}

	err := m.Atomically(ctx, []string{a.WalletID}, func(ctx context.Context, scope ledger.Scope) error {
		_, err := wallet.AtomicUpdate(ctx, scope, a.WalletID, func(w *wallet.Wallet) error {
			w.TransactionIDs = nil
			return nil
		})
		return err
	})
	if err == nil {
		t.Fatalf("expected rewriting history to fail")
	}
}

func TestMemoryDuplicateTransaction(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	a := seedAccount(t, m, account.RoleUser, 0)
	if err := m.Atomically(ctx, []string{a.WalletID}, credit(a.WalletID, 1, "tx-1")); err != nil {
		t.Fatalf("first: %v", err)
	}
	err := m.Atomically(ctx, []string{a.WalletID}, credit(a.WalletID, 1, "tx-1"))
	if !errors.Is(err, ledger.ErrDuplicateTransaction) {
		t.Fatalf("expected ErrDuplicateTransaction, got %v", err)
	}
}

func TestMemoryConcurrentScopesSerialise(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	a := seedAccount(t, m, account.RoleUser, 0)
	b := seedAccount(t, m, account.RoleAgent, 0)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		ids := []string{a.WalletID, b.WalletID}
		if i%2 == 1 {
			ids = []string{b.WalletID, a.WalletID}
		}
		go func(ids []string) {
			defer wg.Done()
			err := m.Atomically(ctx, ids, func(ctx context.Context, scope ledger.Scope) error {
				for _, id := range ids {
					if _, err := wallet.AtomicUpdate(ctx, scope, id, func(w *wallet.Wallet) error {
						return w.Credit(1)
					}); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				t.Errorf("atomically: %v", err)
			}
		}(ids)
	}
	wg.Wait()

	for _, id := range []string{a.WalletID, b.WalletID} {
		w, _ := m.Load(ctx, id)
		if w.Balance != n {
			t.Fatalf("wallet %s: expected %d, got %d", id, n, w.Balance)
		}
	}
}

func TestMemoryCreateRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	a := seedAccount(t, m, account.RoleUser, 0)

	now := time.Now().UTC()
	dup := account.Account{ID: a.ID, Role: account.RoleUser, WalletID: uuid.NewString(), CreatedAt: now}
	if err := m.Create(ctx, dup, wallet.New(dup.WalletID, dup.ID, now)); !errors.Is(err, account.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
}

func TestLockOrder(t *testing.T) {
	got := lockOrder([]string{"c", "a", "c", "b", "a"})
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("lockOrder = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("lockOrder = %v, want %v", got, want)
		}
	}
}
