package entity

import "time"

// Transaction kinds.
const (
	TransactionCredit = "credit"
	TransactionDebit  = "debit"
)

// WalletTransaction is an append-only ledger record. BalanceAfter is the
// balance that resulted from applying Amount; rows are never mutated.
type WalletTransaction struct {
	ID           string    `json:"_id"`
	UserID       string    `json:"-"`
	Type         string    `json:"type"`
	Description  string    `json:"description"`
	Amount       int       `json:"amount"`
	BalanceAfter int       `json:"balanceAfter"`
	CreatedAt    time.Time `json:"createdAt"`
}
