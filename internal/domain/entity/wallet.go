package entity

import "time"

// Expenses is the weekly budget allocation a user has chosen.
type Expenses struct {
	Tax       int `json:"tax"`
	Rent      int `json:"rent"`
	Food      int `json:"food"`
	Utilities int `json:"utilities"`
	Other     int `json:"other"`
}

// Wallet is the per-user currency aggregate. Lucre earned from learning
// accumulates in LucreBalance until the weekly payout moves it into
// ActiveBalance; DiscretionaryBalance is spendable and may never go
// negative through a debit.
type Wallet struct {
	UserID               string     `json:"-"`
	LucreBalance         int        `json:"lucreBalance"`
	ActiveBalance        int        `json:"activeBalance"`
	DiscretionaryBalance int        `json:"discretionaryBalance"`
	TotalEarned          int        `json:"totalEarned"`
	LastPayoutAt         *time.Time `json:"lastPayout,omitempty"`
	Expenses             Expenses   `json:"expenses"`
	CreatedAt            time.Time  `json:"-"`
	UpdatedAt            time.Time  `json:"-"`
}

// Starting balances for a freshly materialized account.
const (
	InitialActiveBalance        = 500
	InitialDiscretionaryBalance = 500
)
