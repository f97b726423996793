package repository

import (
	"context"
	"errors"
	"time"

	"github.com/coinquest/coinquest-api/internal/domain/entity"
)

// ErrNotFound is returned by repositories when a row does not exist.
var ErrNotFound = errors.New("not found")

// UserRepository defines user-related database operations.
//
// GetByEmail and GetByResetToken return the row including password hash and
// challenge/reset fields; GetByID returns the row without them.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	UpdateProfile(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// SetLoginChallenge stores a code hash and expiry only when no live
	// challenge exists; it reports false without writing when one does.
	// The conditional write is a single statement, not a read-then-write.
	SetLoginChallenge(ctx context.Context, id, codeHash string, expiresAt time.Time) (bool, error)
	// ReplaceLoginChallenge overwrites any existing challenge (resend path).
	ReplaceLoginChallenge(ctx context.Context, id, codeHash string, expiresAt time.Time) error
	// ConsumeLoginChallenge atomically clears the challenge iff the stored
	// hash matches and has not expired; false means stale or already used.
	ConsumeLoginChallenge(ctx context.Context, id, codeHash string, now time.Time) (bool, error)
	// ClearLoginChallenge unconditionally removes the challenge (delivery
	// failure rollback).
	ClearLoginChallenge(ctx context.Context, id string) error

	UpdateStreak(ctx context.Context, id string, current, longest int, lastLoginAt time.Time) error

	SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, id string) error
	// GetByResetToken resolves an unexpired reset token hash; ErrNotFound
	// covers both unknown and expired tokens.
	GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*entity.User, error)
}
