package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/congo-pay/congo_wallet/internal/account"
	"github.com/congo-pay/congo_wallet/internal/ledger"
	"github.com/congo-pay/congo_wallet/internal/notification"
	"github.com/congo-pay/congo_wallet/internal/policy"
	"github.com/congo-pay/congo_wallet/internal/wallet"
)

var (
	// ErrInvalidInput covers missing or malformed amounts, types and targets.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidAmount is returned for amounts <= 0. It matches ErrInvalidInput.
	ErrInvalidAmount = fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
)

// Directory resolves principals and receivers to accounts.
type Directory interface {
	Resolve(ctx context.Context, id string, role account.Role) (account.Account, error)
	Locate(ctx context.Context, id string) (account.Account, error)
}

// Service is the transfer engine: every money movement runs here inside a
// single ledger scope.
type Service struct {
	accounts Directory
	store    ledger.Store
	notifier notification.Notifier
	timeout  time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithScopeTimeout bounds how long a scope may wait for locks and commit.
// Exceeding it fails the operation with ledger.ErrConflict.
func WithScopeTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// NewService constructs the transfer engine. notifier may be nil.
func NewService(accounts Directory, store ledger.Store, notifier notification.Notifier, opts ...Option) *Service {
	s := &Service{accounts: accounts, store: store, notifier: notifier}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) atomically(ctx context.Context, walletIDs []string, fn func(ctx context.Context, scope ledger.Scope) error) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.store.Atomically(ctx, walletIDs, fn)
}

// AddMoney credits the principal's own wallet.
func (s *Service) AddMoney(ctx context.Context, p account.Principal, amount int64) (ledger.Transaction, error) {
	if amount <= 0 {
		return ledger.Transaction{}, ErrInvalidAmount
	}

	acct, err := s.accounts.Resolve(ctx, p.ID, p.Role)
	if err != nil {
		return ledger.Transaction{}, err
	}
	w, err := s.store.Load(ctx, acct.WalletID)
	if err != nil {
		return ledger.Transaction{}, err
	}
	if err := policy.CanTransfer(policy.Request{
		SenderRole:   acct.Role,
		ReceiverRole: acct.Role,
		Type:         ledger.TypeAddMoney,
		SelfDirected: true,
	}); err != nil {
		return ledger.Transaction{}, err
	}
	if err := w.RequireActive(wallet.SideOwn); err != nil {
		return ledger.Transaction{}, err
	}

	tx := ledger.Transaction{
		ID:          uuid.NewString(),
		WalletID:    w.ID,
		AccountID:   acct.ID,
		AccountRole: acct.Role,
		Amount:      amount,
		Type:        ledger.TypeAddMoney,
		Status:      ledger.StatusCompleted,
		CreatedAt:   time.Now().UTC(),
	}

	err = s.atomically(ctx, []string{w.ID}, func(ctx context.Context, scope ledger.Scope) error {
		if err := scope.Append(ctx, tx); err != nil {
			return err
		}
		_, err := wallet.AtomicUpdate(ctx, scope, w.ID, func(w *wallet.Wallet) error {
			if err := w.RequireActive(wallet.SideOwn); err != nil {
				return err
			}
			if err := w.Credit(amount); err != nil {
				return err
			}
			w.Record(tx.ID)
			return nil
		})
		return err
	})
	if err != nil {
		return ledger.Transaction{}, err
	}

	s.notify(ctx, notification.Message{
		Kind:          notification.KindMoneyAdded,
		Destination:   acct.ID,
		Body:          fmt.Sprintf("%d added to your wallet", amount),
		TransactionID: tx.ID,
		Amount:        amount,
		OccurredAt:    tx.CreatedAt,
	})
	return tx, nil
}

// TransferInput captures a SEND_MONEY or CASH_OUT request.
type TransferInput struct {
	ReceiverID string
	Amount     int64
	Type       ledger.Type
}

func (in TransferInput) validate() error {
	if strings.TrimSpace(in.ReceiverID) == "" {
		return fmt.Errorf("%w: receiver id is required", ErrInvalidInput)
	}
	if in.Amount <= 0 {
		return ErrInvalidAmount
	}
	switch in.Type {
	case ledger.TypeSendMoney, ledger.TypeCashOut:
		return nil
	case "":
		return fmt.Errorf("%w: transaction type is required", ErrInvalidInput)
	case ledger.TypeAddMoney:
		return fmt.Errorf("%w: %s is not a transfer", ErrInvalidInput, in.Type)
	default:
		return fmt.Errorf("%w: unknown transaction type %q", ErrInvalidInput, in.Type)
	}
}

// Transfer moves amount from the principal's wallet to the receiver's.
//
// Preconditions are checked on a snapshot first so obviously failing
// requests take no locks. Status and balance are checked again on the
// locked wallets, sender before receiver, before anything is written.
func (s *Service) Transfer(ctx context.Context, p account.Principal, input TransferInput) (ledger.Transaction, error) {
	if err := input.validate(); err != nil {
		return ledger.Transaction{}, err
	}

	sender, err := s.accounts.Resolve(ctx, p.ID, p.Role)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("sender: %w", err)
	}
	senderWallet, err := s.store.Load(ctx, sender.WalletID)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("sender: %w", err)
	}
	receiver, err := s.accounts.Locate(ctx, input.ReceiverID)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("receiver: %w", err)
	}
	receiverWallet, err := s.store.Load(ctx, receiver.WalletID)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("receiver: %w", err)
	}

	if err := policy.CanTransfer(policy.Request{
		SenderRole:   sender.Role,
		ReceiverRole: receiver.Role,
		Type:         input.Type,
		SelfDirected: sender.WalletID == receiver.WalletID,
	}); err != nil {
		return ledger.Transaction{}, err
	}

	if err := senderWallet.RequireActive(wallet.SideSender); err != nil {
		return ledger.Transaction{}, err
	}
	if err := receiverWallet.RequireActive(wallet.SideReceiver); err != nil {
		return ledger.Transaction{}, err
	}

	status := ledger.StatusSend
	if input.Type == ledger.TypeCashOut {
		status = ledger.StatusCompleted
	}
	tx := ledger.Transaction{
		ID:          uuid.NewString(),
		WalletID:    sender.WalletID,
		AccountID:   sender.ID,
		AccountRole: sender.Role,
		Amount:      input.Amount,
		Type:        input.Type,
		Status:      status,
		Transfer: &ledger.TransferDetail{
			SenderID:   sender.ID,
			ReceiverID: receiver.ID,
			SenderRole: sender.Role,
			Amount:     input.Amount,
			Message:    transferMessage(sender.Role, receiver.Role, input.Type, input.Amount),
		},
		CreatedAt: time.Now().UTC(),
	}

	err = s.atomically(ctx, []string{sender.WalletID, receiver.WalletID}, func(ctx context.Context, scope ledger.Scope) error {
		from, err := scope.Get(ctx, sender.WalletID)
		if err != nil {
			return fmt.Errorf("sender: %w", err)
		}
		to, err := scope.Get(ctx, receiver.WalletID)
		if err != nil {
			return fmt.Errorf("receiver: %w", err)
		}
		if err := from.RequireActive(wallet.SideSender); err != nil {
			return err
		}
		if err := to.RequireActive(wallet.SideReceiver); err != nil {
			return err
		}
		if from.Balance < input.Amount {
			return wallet.ErrInsufficientFunds
		}

		if err := scope.Append(ctx, tx); err != nil {
			return err
		}
		if _, err := wallet.AtomicUpdate(ctx, scope, sender.WalletID, func(w *wallet.Wallet) error {
			if err := w.Debit(input.Amount); err != nil {
				return err
			}
			w.Record(tx.ID)
			return nil
		}); err != nil {
			return err
		}
		_, err = wallet.AtomicUpdate(ctx, scope, receiver.WalletID, func(w *wallet.Wallet) error {
			return w.Credit(input.Amount)
		})
		return err
	})
	if err != nil {
		return ledger.Transaction{}, err
	}

	kind := notification.KindMoneySent
	if input.Type == ledger.TypeCashOut {
		kind = notification.KindCashOut
	}
	s.notify(ctx, notification.Message{
		Kind:          kind,
		Destination:   receiver.ID,
		Body:          fmt.Sprintf("You received %d from %s %s", input.Amount, strings.ToLower(string(sender.Role)), sender.ID),
		TransactionID: tx.ID,
		Amount:        input.Amount,
		OccurredAt:    tx.CreatedAt,
	})
	return tx, nil
}

func (s *Service) notify(ctx context.Context, msg notification.Message) {
	if s.notifier == nil {
		return
	}
	_ = s.notifier.Send(ctx, msg)
}

func transferMessage(sender, receiver account.Role, typ ledger.Type, amount int64) string {
	who := strings.ToLower(string(sender))
	article := "A"
	if strings.ContainsRune("aeio", rune(who[0])) {
		article = "An"
	}
	return fmt.Sprintf("%s %s successfully %s %d money to %s",
		article, who, strings.ToLower(string(typ)), amount, strings.ToLower(string(receiver)))
}
