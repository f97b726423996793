package repository

import (
	"context"
	"errors"

	"github.com/coinquest/coinquest-api/internal/domain/entity"
)

// ErrInsufficientBalance is returned when a debit would take a balance
// negative; the debit is rejected before any mutation.
var ErrInsufficientBalance = errors.New("insufficient balance")

// LedgerRepository applies balance changes. Each method runs inside a
// single database transaction so the account, wallet and transaction rows
// can never drift apart on a partial failure.
type LedgerRepository interface {
	// Grant adds xpDelta to the account (recomputing level) and, when
	// lucreDelta is non-zero, credits the lucre balance plus total-earned
	// and appends a ledger row. The returned transaction is nil when
	// lucreDelta is zero.
	Grant(ctx context.Context, userID string, xpDelta, lucreDelta int, reason string) (*entity.User, *entity.Wallet, *entity.WalletTransaction, error)

	// CreditDiscretionary adds to the spendable balance.
	CreditDiscretionary(ctx context.Context, userID string, amount int, reason string) (*entity.Wallet, *entity.WalletTransaction, error)

	// DebitDiscretionary subtracts from the spendable balance, failing with
	// ErrInsufficientBalance when the result would be negative.
	DebitDiscretionary(ctx context.Context, userID string, amount int, reason string) (*entity.Wallet, *entity.WalletTransaction, error)

	// Payout moves the accumulated lucre balance into the active balance
	// and stamps the payout time.
	Payout(ctx context.Context, userID string) (*entity.Wallet, *entity.WalletTransaction, error)
}
