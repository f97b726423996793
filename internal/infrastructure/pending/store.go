// Package pending holds signup data that has not yet become a durable
// account, keyed by normalized email. At most one live entry exists per
// email; entries disappear on verification, expiry, or sweep.
package pending

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrNotFound is returned when no live entry exists for an email.
var ErrNotFound = errors.New("no pending registration")

// CooldownError reports that a code was reissued too recently.
type CooldownError struct {
	Wait time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("code was issued recently, retry in %ds", e.WaitSeconds())
}

// WaitSeconds is the remaining wait rounded up to whole seconds.
func (e *CooldownError) WaitSeconds() int {
	return int(math.Ceil(e.Wait.Seconds()))
}

// Registration is the not-yet-persisted account data. Password stays in
// plaintext here and is bcrypt-hashed only when the account materializes.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      *int   `json:"age,omitempty"`
	Grade    string `json:"grade,omitempty"`
	School   string `json:"school,omitempty"`

	CodeHash  string    `json:"codeHash"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Live reports whether the entry has not yet expired.
func (r *Registration) Live(now time.Time) bool {
	return now.Before(r.ExpiresAt)
}

// Store is the holding area contract. Implementations must make Put an
// atomic insert-if-absent and Consume an atomic remove-and-return; a
// read-then-write sequence is not acceptable for either.
type Store interface {
	// Put inserts the registration unless a live entry already exists.
	// created=false with a nil error means the existing entry was left
	// untouched; callers treat that as success and must not send a code.
	Put(ctx context.Context, email string, reg Registration, ttl time.Duration) (created bool, err error)

	// Get returns the live entry or ErrNotFound.
	Get(ctx context.Context, email string) (*Registration, error)

	// ReplaceCode swaps in a new code hash and resets the expiry. It fails
	// with *CooldownError while the store's cooldown window since the last
	// issuance has not elapsed, and ErrNotFound when no live entry exists.
	ReplaceCode(ctx context.Context, email, codeHash string, ttl time.Duration) (*Registration, error)

	// Consume atomically removes and returns the entry, or ErrNotFound.
	Consume(ctx context.Context, email string) (*Registration, error)
}
