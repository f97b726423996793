package repository

import (
	"context"

	"github.com/coinquest/coinquest-api/internal/domain/entity"
)

// WalletRepository covers reads and non-ledger writes on wallets.
// All balance changes go through LedgerRepository instead.
type WalletRepository interface {
	GetByUserID(ctx context.Context, userID string) (*entity.Wallet, error)
	// EnsureExists creates the wallet with starting balances if absent;
	// a second call is a no-op (companion records exist exactly once).
	EnsureExists(ctx context.Context, userID string) error
	ListTransactions(ctx context.Context, userID string, limit int) ([]entity.WalletTransaction, error)
	UpdateExpenses(ctx context.Context, userID string, e entity.Expenses) (*entity.Wallet, error)
}
