package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/coinquest/coinquest-api/internal/domain/entity"
	"github.com/coinquest/coinquest-api/internal/domain/repository"
)

type WalletRepository struct {
	db DB
}

func NewWalletRepository(db DB) *WalletRepository {
	return &WalletRepository{db: db}
}

const walletColumns = `user_id, lucre_balance, active_balance, discretionary_balance,
	total_earned, last_payout_at, expense_tax, expense_rent, expense_food,
	expense_utilities, expense_other, created_at, updated_at`

func scanWallet(row pgx.Row, w *entity.Wallet) error {
	return row.Scan(&w.UserID, &w.LucreBalance, &w.ActiveBalance, &w.DiscretionaryBalance,
		&w.TotalEarned, &w.LastPayoutAt, &w.Expenses.Tax, &w.Expenses.Rent, &w.Expenses.Food,
		&w.Expenses.Utilities, &w.Expenses.Other, &w.CreatedAt, &w.UpdatedAt)
}

func (r *WalletRepository) GetByUserID(ctx context.Context, userID string) (*entity.Wallet, error) {
	w := &entity.Wallet{}
	row := r.db.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1`, userID)
	if err := scanWallet(row, w); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return w, nil
}

// EnsureExists inserts the starting wallet; ON CONFLICT keeps retries and
// concurrent verifications from creating a second one.
func (r *WalletRepository) EnsureExists(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO wallets (user_id, active_balance, discretionary_balance, total_earned)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, entity.InitialActiveBalance, entity.InitialDiscretionaryBalance,
		entity.InitialActiveBalance)
	return err
}

func (r *WalletRepository) ListTransactions(ctx context.Context, userID string, limit int) ([]entity.WalletTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, type, description, amount, balance_after, created_at
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.WalletTransaction, 0, limit)
	for rows.Next() {
		var t entity.WalletTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.Description, &t.Amount, &t.BalanceAfter, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *WalletRepository) UpdateExpenses(ctx context.Context, userID string, e entity.Expenses) (*entity.Wallet, error) {
	w := &entity.Wallet{}
	row := r.db.QueryRow(ctx, `
		UPDATE wallets
		SET expense_tax = $2, expense_rent = $3, expense_food = $4,
			expense_utilities = $5, expense_other = $6, updated_at = now()
		WHERE user_id = $1
		RETURNING `+walletColumns+`
	`, userID, e.Tax, e.Rent, e.Food, e.Utilities, e.Other)
	if err := scanWallet(row, w); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return w, nil
}

var _ repository.WalletRepository = (*WalletRepository)(nil)
