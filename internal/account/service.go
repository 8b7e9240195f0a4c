package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/congo-pay/congo_wallet/internal/wallet"
)

var (
	// ErrRoleNotRegistrable is returned when self-registration is attempted for
	// an administrative role.
	ErrRoleNotRegistrable = errors.New("role cannot be registered")
	// ErrInvalidID is returned for account ids that are not UUIDs.
	ErrInvalidID = errors.New("account id must be a uuid")
)

// Service is the account directory. It resolves principals to accounts and
// registers new accounts with their wallets.
type Service struct {
	repo Repository
}

// NewService builds an account directory over repo.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Resolve looks an account up in the collection its role belongs to.
func (s *Service) Resolve(ctx context.Context, id string, role Role) (Account, error) {
	kind := role.Kind()
	if kind == KindUnknown || id == "" {
		return Account{}, ErrNotFound
	}
	acct, err := s.repo.Find(ctx, kind, id)
	if err != nil {
		return Account{}, err
	}
	if acct.Deleted {
		return Account{}, ErrNotFound
	}
	return acct, nil
}

// Locate finds an account by id alone, trying users before agents.
func (s *Service) Locate(ctx context.Context, id string) (Account, error) {
	if id == "" {
		return Account{}, ErrNotFound
	}
	for _, kind := range []Kind{KindUser, KindAgent} {
		acct, err := s.repo.Find(ctx, kind, id)
		switch {
		case err == nil && !acct.Deleted:
			return acct, nil
		case err == nil, errors.Is(err, ErrNotFound):
			continue
		default:
			return Account{}, err
		}
	}
	return Account{}, ErrNotFound
}

// RegisterInput captures data required to open an account. ID is the
// subject the identity provider assigned; a new one is generated when empty.
type RegisterInput struct {
	ID   string
	Role Role
}

// Register creates an account and its empty, active wallet as one unit.
func (s *Service) Register(ctx context.Context, input RegisterInput) (Account, wallet.Wallet, error) {
	if input.Role != RoleUser && input.Role != RoleAgent {
		return Account{}, wallet.Wallet{}, fmt.Errorf("%w: %q", ErrRoleNotRegistrable, input.Role)
	}

	id := input.ID
	if id == "" {
		id = uuid.NewString()
	} else if _, err := uuid.Parse(id); err != nil {
		return Account{}, wallet.Wallet{}, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	if _, err := s.Locate(ctx, id); err == nil {
		return Account{}, wallet.Wallet{}, ErrExists
	} else if !errors.Is(err, ErrNotFound) {
		return Account{}, wallet.Wallet{}, err
	}

	now := time.Now().UTC()
	acct := Account{
		ID:        id,
		Role:      input.Role,
		WalletID:  uuid.NewString(),
		Active:    true,
		CreatedAt: now,
	}
	w := wallet.New(acct.WalletID, acct.ID, now)

	if err := s.repo.Create(ctx, acct, w); err != nil {
		return Account{}, wallet.Wallet{}, err
	}
	return acct, w, nil
}
