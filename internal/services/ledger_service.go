package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vendora/backend/internal/audit"
	"github.com/vendora/backend/internal/models"
	"go.uber.org/zap"
)

// LedgerService owns buyer balances. Every mutation is a versioned read-modify-write
// on a single account, so concurrent deposits, resets and debits on the same account
// serialize through the store's compare-and-swap.
type LedgerService struct {
	accounts      AccountRepository
	denominations *Denominations
	retry         conflictRetrier
	audit         *audit.Logger
	logger        *zap.Logger
}

func NewLedgerService(accounts AccountRepository, denominations *Denominations, maxRetries int, auditLogger *audit.Logger, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		accounts:      accounts,
		denominations: denominations,
		retry:         newConflictRetrier(maxRetries),
		audit:         auditLogger,
		logger:        logger.Named("ledger"),
	}
}

// RegisterAccount creates a zero-balance account for ownerID.
func (s *LedgerService) RegisterAccount(ctx context.Context, ownerID string) (*models.Account, error) {
	now := time.Now().UTC()
	account := &models.Account{
		OwnerID:   ownerID,
		Balance:   0,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, models.ErrDuplicateRecord) {
			return nil, fmt.Errorf("%w: %s", ErrAccountExists, ownerID)
		}
		return nil, fmt.Errorf("create account %s: %w", ownerID, err)
	}

	s.logger.Debug("account registered", zap.String("owner", ownerID))
	return account, nil
}

func (s *LedgerService) GetAccount(ctx context.Context, ownerID string) (*models.Account, error) {
	account, err := s.accounts.GetAccount(ctx, ownerID)
	if err != nil {
		return nil, accountError(ownerID, err)
	}
	return account, nil
}

// Deposit adds one coin to the balance. Amounts that are not a single denomination
// fail with ErrInvalidAmount and leave the balance untouched.
func (s *LedgerService) Deposit(ctx context.Context, ownerID string, amount int64) (*models.Account, error) {
	if !s.denominations.IsValidDeposit(amount) {
		return nil, fmt.Errorf("%w: %d, the deposit amount should be among the values %s",
			ErrInvalidAmount, amount, s.denominations)
	}

	account, err := s.mutate(ctx, ownerID, func(a *models.Account) error {
		a.Balance += amount
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.LogDeposit(ownerID, amount, account.Balance)
	return account, nil
}

// ResetDeposit sets the balance to zero.
func (s *LedgerService) ResetDeposit(ctx context.Context, ownerID string) (*models.Account, error) {
	var previous int64
	account, err := s.mutate(ctx, ownerID, func(a *models.Account) error {
		previous = a.Balance
		a.Balance = 0
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.LogReset(ownerID, previous)
	return account, nil
}

// Debit consumes the whole balance to pay price and returns the balance held just
// before. The caller pays out priorBalance - price as change.
func (s *LedgerService) Debit(ctx context.Context, ownerID string, price int64) (int64, error) {
	var prior int64
	_, err := s.mutate(ctx, ownerID, func(a *models.Account) error {
		if a.Balance < price {
			return fmt.Errorf("%w: balance %d, price %d", ErrInsufficientFunds, a.Balance, price)
		}
		prior = a.Balance
		a.Balance = 0
		return nil
	})
	if err != nil {
		return 0, err
	}
	return prior, nil
}

// Credit returns money to an account after a debit whose purchase could not complete.
func (s *LedgerService) Credit(ctx context.Context, ownerID string, amount int64) (*models.Account, error) {
	if amount < 0 {
		panic(fmt.Sprintf("ledger: negative credit %d for %s", amount, ownerID))
	}
	return s.mutate(ctx, ownerID, func(a *models.Account) error {
		a.Balance += amount
		return nil
	})
}

func (s *LedgerService) mutate(ctx context.Context, ownerID string, apply func(*models.Account) error) (*models.Account, error) {
	var updated *models.Account

	err := s.retry.do(ctx, func() error {
		account, err := s.accounts.GetAccount(ctx, ownerID)
		if err != nil {
			return err
		}
		if err := apply(account); err != nil {
			return err
		}
		if account.Balance < 0 {
			panic(fmt.Sprintf("ledger: balance of %s would become %d", ownerID, account.Balance))
		}

		account.UpdatedAt = time.Now().UTC()
		if err := s.accounts.SaveAccount(ctx, account); err != nil {
			if errors.Is(err, models.ErrVersionConflict) {
				s.logger.Debug("account version conflict, retrying", zap.String("owner", ownerID))
			}
			return err
		}
		updated = account
		return nil
	})
	if err != nil {
		return nil, accountError(ownerID, err)
	}
	return updated, nil
}

func accountError(ownerID string, err error) error {
	if errors.Is(err, models.ErrRecordNotFound) {
		return fmt.Errorf("account %s: %w", ownerID, ErrNotFound)
	}
	return err
}
