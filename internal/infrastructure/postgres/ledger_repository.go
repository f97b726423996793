package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/coinquest/coinquest-api/internal/domain/entity"
	"github.com/coinquest/coinquest-api/internal/domain/repository"
)

// LedgerRepository applies every balance change inside one database
// transaction: the XP mutation, the wallet mutation and the appended
// ledger row commit together or not at all.
type LedgerRepository struct {
	db DB
}

func NewLedgerRepository(db DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Grant(ctx context.Context, userID string, xpDelta, lucreDelta int, reason string) (*entity.User, *entity.Wallet, *entity.WalletTransaction, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	u := &entity.User{}
	row := tx.QueryRow(ctx, `
		UPDATE users SET xp = xp + $2, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns+`
	`, userID, xpDelta)
	if err := scanUser(row, u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, nil, repository.ErrNotFound
		}
		return nil, nil, nil, err
	}

	// Level is derived from the new XP total on every grant.
	if lvl := entity.LevelForXP(u.XP); lvl != u.Level {
		if _, err := tx.Exec(ctx, `UPDATE users SET level = $2 WHERE id = $1`, userID, lvl); err != nil {
			return nil, nil, nil, err
		}
		u.Level = lvl
	}

	w := &entity.Wallet{}
	var t *entity.WalletTransaction
	if lucreDelta != 0 {
		row = tx.QueryRow(ctx, `
			UPDATE wallets
			SET lucre_balance = lucre_balance + $2, total_earned = total_earned + $2, updated_at = now()
			WHERE user_id = $1
			RETURNING `+walletColumns+`
		`, userID, lucreDelta)
		if err := scanWallet(row, w); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, nil, nil, repository.ErrNotFound
			}
			return nil, nil, nil, err
		}
		t, err = appendTransaction(ctx, tx, userID, entity.TransactionCredit, reason, lucreDelta, w.LucreBalance)
		if err != nil {
			return nil, nil, nil, err
		}
	} else {
		row = tx.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1`, userID)
		if err := scanWallet(row, w); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, nil, nil, repository.ErrNotFound
			}
			return nil, nil, nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, nil, err
	}
	return u, w, t, nil
}

func (r *LedgerRepository) CreditDiscretionary(ctx context.Context, userID string, amount int, reason string) (*entity.Wallet, *entity.WalletTransaction, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	w := &entity.Wallet{}
	row := tx.QueryRow(ctx, `
		UPDATE wallets
		SET discretionary_balance = discretionary_balance + $2, updated_at = now()
		WHERE user_id = $1
		RETURNING `+walletColumns+`
	`, userID, amount)
	if err := scanWallet(row, w); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, repository.ErrNotFound
		}
		return nil, nil, err
	}
	t, err := appendTransaction(ctx, tx, userID, entity.TransactionCredit, reason, amount, w.DiscretionaryBalance)
	if err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return w, t, nil
}

func (r *LedgerRepository) DebitDiscretionary(ctx context.Context, userID string, amount int, reason string) (*entity.Wallet, *entity.WalletTransaction, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	w := &entity.Wallet{}
	// The balance predicate makes overdraw a no-op rather than a negative
	// balance; zero rows then distinguishes "missing" from "insufficient".
	row := tx.QueryRow(ctx, `
		UPDATE wallets
		SET discretionary_balance = discretionary_balance - $2, updated_at = now()
		WHERE user_id = $1 AND discretionary_balance >= $2
		RETURNING `+walletColumns+`
	`, userID, amount)
	if err := scanWallet(row, w); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, err
		}
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM wallets WHERE user_id = $1)`, userID).Scan(&exists); err != nil {
			return nil, nil, err
		}
		if exists {
			return nil, nil, repository.ErrInsufficientBalance
		}
		return nil, nil, repository.ErrNotFound
	}
	t, err := appendTransaction(ctx, tx, userID, entity.TransactionDebit, reason, -amount, w.DiscretionaryBalance)
	if err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return w, t, nil
}

func (r *LedgerRepository) Payout(ctx context.Context, userID string) (*entity.Wallet, *entity.WalletTransaction, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	w := &entity.Wallet{}
	var moved int
	row := tx.QueryRow(ctx, `
		WITH cur AS (
			SELECT lucre_balance FROM wallets WHERE user_id = $1 FOR UPDATE
		)
		UPDATE wallets w
		SET active_balance = w.active_balance + cur.lucre_balance,
			lucre_balance = 0,
			last_payout_at = now(),
			updated_at = now()
		FROM cur
		WHERE w.user_id = $1
		RETURNING cur.lucre_balance, `+prefixedWalletColumns("w")+`
	`, userID)
	if err := row.Scan(&moved, &w.UserID, &w.LucreBalance, &w.ActiveBalance, &w.DiscretionaryBalance,
		&w.TotalEarned, &w.LastPayoutAt, &w.Expenses.Tax, &w.Expenses.Rent, &w.Expenses.Food,
		&w.Expenses.Utilities, &w.Expenses.Other, &w.CreatedAt, &w.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, repository.ErrNotFound
		}
		return nil, nil, err
	}

	var t *entity.WalletTransaction
	if moved != 0 {
		t, err = appendTransaction(ctx, tx, userID, entity.TransactionCredit, "Weekly salary payout", moved, w.ActiveBalance)
		if err != nil {
			return nil, nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return w, t, nil
}

func appendTransaction(ctx context.Context, tx pgx.Tx, userID, kind, reason string, amount, balanceAfter int) (*entity.WalletTransaction, error) {
	t := &entity.WalletTransaction{
		UserID:       userID,
		Type:         kind,
		Description:  reason,
		Amount:       amount,
		BalanceAfter: balanceAfter,
	}
	row := tx.QueryRow(ctx, `
		INSERT INTO wallet_transactions (user_id, type, description, amount, balance_after)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, userID, kind, reason, amount, balanceAfter)
	if err := row.Scan(&t.ID, &t.CreatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

func prefixedWalletColumns(alias string) string {
	return alias + `.user_id, ` + alias + `.lucre_balance, ` + alias + `.active_balance, ` +
		alias + `.discretionary_balance, ` + alias + `.total_earned, ` + alias + `.last_payout_at, ` +
		alias + `.expense_tax, ` + alias + `.expense_rent, ` + alias + `.expense_food, ` +
		alias + `.expense_utilities, ` + alias + `.expense_other, ` + alias + `.created_at, ` + alias + `.updated_at`
}

var _ repository.LedgerRepository = (*LedgerRepository)(nil)
