package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/congo-pay/congo_wallet/internal/account"
	"github.com/congo-pay/congo_wallet/internal/ledger"
	"github.com/congo-pay/congo_wallet/internal/wallet"
)

//go:embed schema.sql
var schema string

// Migrate creates the tables the Postgres backend needs.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Postgres persists accounts, wallets and transactions in PostgreSQL.
// Scopes lock wallet rows with SELECT ... FOR UPDATE in id order.
type Postgres struct {
	db          *pgxpool.Pool
	lockTimeout time.Duration
}

// NewPostgres builds a Postgres-backed store. A positive lockTimeout bounds
// how long a scope waits for row locks before failing with ledger.ErrConflict.
func NewPostgres(db *pgxpool.Pool, lockTimeout time.Duration) *Postgres {
	return &Postgres{db: db, lockTimeout: lockTimeout}
}

func table(kind account.Kind) (string, error) {
	switch kind {
	case account.KindUser:
		return "users", nil
	case account.KindAgent:
		return "agents", nil
	default:
		return "", fmt.Errorf("unknown account kind %s", kind)
	}
}

// Find returns the account with id from the table for kind.
func (p *Postgres) Find(ctx context.Context, kind account.Kind, id string) (account.Account, error) {
	tbl, err := table(kind)
	if err != nil {
		return account.Account{}, err
	}
	accountID, err := uuid.Parse(id)
	if err != nil {
		return account.Account{}, account.ErrNotFound
	}

	row := p.db.QueryRow(ctx, `SELECT id, role, wallet_id, is_active, is_deleted, created_at
        FROM `+tbl+` WHERE id = $1`, accountID)
	var (
		idVal     uuid.UUID
		walletID  uuid.UUID
		role      string
		createdAt time.Time
		acct      account.Account
	)
	if err := row.Scan(&idVal, &role, &walletID, &acct.Active, &acct.Deleted, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.Account{}, account.ErrNotFound
		}
		return account.Account{}, err
	}
	acct.ID = idVal.String()
	acct.Role = account.Role(role)
	acct.WalletID = walletID.String()
	acct.CreatedAt = createdAt.UTC()
	return acct, nil
}

// Create inserts the wallet and the account in one transaction.
func (p *Postgres) Create(ctx context.Context, acct account.Account, w wallet.Wallet) error {
	tbl, err := table(acct.Kind())
	if err != nil {
		return err
	}
	accountID, err := uuid.Parse(acct.ID)
	if err != nil {
		return err
	}
	walletID, err := uuid.Parse(w.ID)
	if err != nil {
		return err
	}

	tx, err := p.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if _, err := tx.Exec(ctx, `INSERT INTO wallets (id, account_id, balance, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)`, walletID, accountID, w.Balance, string(w.Status), w.CreatedAt.UTC(), w.UpdatedAt.UTC()); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("wallet %s: %w", w.ID, account.ErrExists)
		}
		return err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO `+tbl+` (id, role, wallet_id, is_active, is_deleted, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`, accountID, string(acct.Role), walletID, acct.Active, acct.Deleted, acct.CreatedAt.UTC()); err != nil {
		if isUniqueViolation(err) {
			return account.ErrExists
		}
		return err
	}
	return tx.Commit(ctx)
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// A single statement so balance and history come from one snapshot.
const walletQuery = `
        SELECT w.id::text, w.account_id::text, w.balance, w.status, w.created_at, w.updated_at,
               COALESCE(array_agg(wt.transaction_id::text ORDER BY wt.position)
                        FILTER (WHERE wt.transaction_id IS NOT NULL), '{}')
        FROM wallets w
        LEFT JOIN wallet_transactions wt ON wt.wallet_id = w.id
        WHERE w.id = $1
        GROUP BY w.id`

func loadWallet(ctx context.Context, q querier, id string) (wallet.Wallet, error) {
	walletID, err := uuid.Parse(id)
	if err != nil {
		return wallet.Wallet{}, wallet.ErrNotFound
	}
	var (
		w      wallet.Wallet
		status string
	)
	if err := q.QueryRow(ctx, walletQuery, walletID).Scan(&w.ID, &w.AccountID, &w.Balance, &status, &w.CreatedAt, &w.UpdatedAt, &w.TransactionIDs); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return wallet.Wallet{}, wallet.ErrNotFound
		}
		return wallet.Wallet{}, err
	}
	w.Status = wallet.Status(status)
	w.CreatedAt = w.CreatedAt.UTC()
	w.UpdatedAt = w.UpdatedAt.UTC()
	if len(w.TransactionIDs) == 0 {
		w.TransactionIDs = nil
	}
	return w, nil
}

// Load returns the committed state of a wallet.
func (p *Postgres) Load(ctx context.Context, id string) (wallet.Wallet, error) {
	return loadWallet(ctx, p.db, id)
}

// Transactions returns the transactions for ids, in the order given.
func (p *Postgres) Transactions(ctx context.Context, ids []string) ([]ledger.Transaction, error) {
	if len(ids) == 0 {
		return []ledger.Transaction{}, nil
	}
	rows, err := p.db.Query(ctx, `SELECT id::text, wallet_id::text, account_id::text, account_role, amount, type, status,
            sender_id::text, receiver_id::text, sender_role, transfer_amount, message, created_at
        FROM transactions WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]ledger.Transaction, len(ids))
	for rows.Next() {
		var (
			tx                   ledger.Transaction
			role, typ, status    string
			senderID, receiverID *string
			senderRole, message  *string
			transferAmount       *int64
		)
		if err := rows.Scan(&tx.ID, &tx.WalletID, &tx.AccountID, &role, &tx.Amount, &typ, &status,
			&senderID, &receiverID, &senderRole, &transferAmount, &message, &tx.CreatedAt); err != nil {
			return nil, err
		}
		tx.AccountRole = account.Role(role)
		tx.Type = ledger.Type(typ)
		tx.Status = ledger.Status(status)
		tx.CreatedAt = tx.CreatedAt.UTC()
		if senderID != nil {
			tx.Transfer = &ledger.TransferDetail{SenderID: *senderID}
			if receiverID != nil {
				tx.Transfer.ReceiverID = *receiverID
			}
			if senderRole != nil {
				tx.Transfer.SenderRole = account.Role(*senderRole)
			}
			if transferAmount != nil {
				tx.Transfer.Amount = *transferAmount
			}
			if message != nil {
				tx.Transfer.Message = *message
			}
		}
		byID[tx.ID] = tx
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]ledger.Transaction, 0, len(ids))
	for _, id := range ids {
		tx, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ledger.ErrTransactionNotFound, id)
		}
		out = append(out, tx)
	}
	return out, nil
}

// Atomically implements ledger.Store.
func (p *Postgres) Atomically(ctx context.Context, walletIDs []string, fn func(ctx context.Context, scope ledger.Scope) error) error {
	requested := make([]string, 0, len(walletIDs))
	for _, id := range walletIDs {
		canon, ok := canonical(id)
		if !ok {
			return wallet.ErrNotFound
		}
		requested = append(requested, canon)
	}
	ids := lockOrder(requested)

	tx, err := p.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return classify(err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if p.lockTimeout > 0 {
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", p.lockTimeout.Milliseconds())); err != nil {
			return classify(err)
		}
	}

	rows, err := tx.Query(ctx, `SELECT id::text FROM wallets WHERE id = ANY($1::uuid[]) ORDER BY id FOR UPDATE`, ids)
	if err != nil {
		return classify(err)
	}
	locked := make(map[string]struct{}, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return classify(err)
		}
		locked[id] = struct{}{}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return classify(err)
	}

	scope := &postgresScope{tx: tx, requested: make(map[string]struct{}, len(ids)), locked: locked}
	for _, id := range ids {
		scope.requested[id] = struct{}{}
	}
	if err := fn(ctx, scope); err != nil {
		return classify(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return classify(err)
	}
	return nil
}

// classify maps lock and serialization failures to ledger.ErrConflict, a
// violated balance check to wallet.ErrInsufficientFunds and a bigint
// overflow to wallet.ErrBalanceOverflow.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ledger.ErrConflict, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return fmt.Errorf("%w: %s", ledger.ErrConflict, pgErr.Message)
		case "22003":
			return wallet.ErrBalanceOverflow
		case "23514":
			return wallet.ErrInsufficientFunds
		case "23505":
			if pgErr.TableName == "transactions" {
				return fmt.Errorf("%w: %s", ledger.ErrDuplicateTransaction, pgErr.Detail)
			}
		}
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func canonical(id string) (string, bool) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

type postgresScope struct {
	tx pgx.Tx
	// requested holds every id the scope asked to lock; locked holds the
	// ones that exist.
	requested map[string]struct{}
	locked    map[string]struct{}
}

func (s *postgresScope) Get(ctx context.Context, id string) (wallet.Wallet, error) {
	canon, ok := canonical(id)
	if !ok {
		return wallet.Wallet{}, wallet.ErrNotFound
	}
	if _, ok := s.requested[canon]; !ok {
		return wallet.Wallet{}, fmt.Errorf("wallet %s is not locked by this scope", id)
	}
	if _, ok := s.locked[canon]; !ok {
		return wallet.Wallet{}, wallet.ErrNotFound
	}
	return loadWallet(ctx, s.tx, canon)
}

func (s *postgresScope) Put(ctx context.Context, w wallet.Wallet) error {
	prev, err := s.Get(ctx, w.ID)
	if err != nil {
		return err
	}
	if err := appendOnly(w.ID, prev.TransactionIDs, w.TransactionIDs); err != nil {
		return err
	}

	if _, err := s.tx.Exec(ctx, `UPDATE wallets SET balance = $2, status = $3, updated_at = $4 WHERE id = $1::uuid`,
		w.ID, w.Balance, string(w.Status), w.UpdatedAt.UTC()); err != nil {
		return err
	}
	for _, txID := range w.TransactionIDs[len(prev.TransactionIDs):] {
		if _, err := s.tx.Exec(ctx, `INSERT INTO wallet_transactions (wallet_id, transaction_id) VALUES ($1::uuid, $2::uuid)`, w.ID, txID); err != nil {
			return err
		}
	}
	return nil
}

func (s *postgresScope) Append(ctx context.Context, t ledger.Transaction) error {
	var (
		senderID, receiverID, senderRole, message *string
		transferAmount                            *int64
	)
	if d := t.Transfer; d != nil {
		role := string(d.SenderRole)
		senderID, receiverID, senderRole, message = &d.SenderID, &d.ReceiverID, &role, &d.Message
		transferAmount = &d.Amount
	}
	_, err := s.tx.Exec(ctx, `INSERT INTO transactions (id, wallet_id, account_id, account_role, amount, type, status,
            sender_id, receiver_id, sender_role, transfer_amount, message, created_at)
        VALUES ($1::uuid, $2::uuid, $3::uuid, $4, $5, $6, $7, $8::uuid, $9::uuid, $10, $11, $12, $13)`,
		t.ID, t.WalletID, t.AccountID, string(t.AccountRole), t.Amount, string(t.Type), string(t.Status),
		senderID, receiverID, senderRole, transferAmount, message, t.CreatedAt.UTC())
	return err
}
