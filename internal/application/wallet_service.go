package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/coinquest/coinquest-api/internal/domain/entity"
	"github.com/coinquest/coinquest-api/internal/domain/repository"
)

// ErrInvalidAmount rejects zero and negative amounts on wallet operations.
var ErrInvalidAmount = errors.New("amount must be a positive number")

// WalletState is the wallet plus its recent ledger, as returned to clients.
type WalletState struct {
	Wallet       *entity.Wallet             `json:"wallet"`
	Transactions []entity.WalletTransaction `json:"transactions"`
}

// WalletService reads wallet state and routes balance changes through the
// ledger. It never mutates balances directly.
type WalletService struct {
	Wallets repository.WalletRepository
	Ledger  repository.LedgerRepository
	Logger  *logrus.Logger
}

func NewWalletService(wallets repository.WalletRepository, ledger repository.LedgerRepository, logger *logrus.Logger) *WalletService {
	return &WalletService{Wallets: wallets, Ledger: ledger, Logger: logger}
}

// Get returns the wallet with its recent transactions, creating the wallet
// with starting balances when the user has none yet.
func (s *WalletService) Get(ctx context.Context, userID string) (*WalletState, error) {
	w, err := s.Wallets.GetByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		if err = s.Wallets.EnsureExists(ctx, userID); err != nil {
			return nil, err
		}
		w, err = s.Wallets.GetByUserID(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	txs, err := s.Wallets.ListTransactions(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	return &WalletState{Wallet: w, Transactions: txs}, nil
}

// Earn credits earned lucre for a named activity.
func (s *WalletService) Earn(ctx context.Context, userID string, amount int, description string) (*GrantResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	u, w, tx, err := s.Ledger.Grant(ctx, userID, 0, amount, description)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &GrantResult{User: u, Wallet: w, Transaction: tx}, nil
}

// AddDiscretionary credits the spendable balance.
func (s *WalletService) AddDiscretionary(ctx context.Context, userID string, amount int, description string) (*entity.Wallet, *entity.WalletTransaction, error) {
	if amount <= 0 {
		return nil, nil, ErrInvalidAmount
	}
	w, tx, err := s.Ledger.CreditDiscretionary(ctx, userID, amount, description)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}
	return w, tx, nil
}

// DeductDiscretionary debits the spendable balance; overdrawing fails with
// repository.ErrInsufficientBalance and leaves the wallet untouched.
func (s *WalletService) DeductDiscretionary(ctx context.Context, userID string, amount int, description string) (*entity.Wallet, *entity.WalletTransaction, error) {
	if amount <= 0 {
		return nil, nil, ErrInvalidAmount
	}
	w, tx, err := s.Ledger.DebitDiscretionary(ctx, userID, amount, description)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}
	return w, tx, nil
}

// Payout sweeps the accumulated lucre balance into the active balance.
func (s *WalletService) Payout(ctx context.Context, userID string) (*entity.Wallet, *entity.WalletTransaction, error) {
	w, tx, err := s.Ledger.Payout(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}
	s.Logger.WithFields(logrus.Fields{"user_id": userID}).Info("payout executed")
	return w, tx, nil
}

// UpdateExpenses replaces the budgeted expense breakdown.
func (s *WalletService) UpdateExpenses(ctx context.Context, userID string, e entity.Expenses) (*entity.Wallet, error) {
	w, err := s.Wallets.UpdateExpenses(ctx, userID, e)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return w, nil
}
