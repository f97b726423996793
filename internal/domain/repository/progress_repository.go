package repository

import (
	"context"

	"github.com/coinquest/coinquest-api/internal/domain/entity"
)

// ProgressRepository persists the per-user learning aggregate.
type ProgressRepository interface {
	GetByUserID(ctx context.Context, userID string) (*entity.Progress, error)
	// EnsureExists creates an empty aggregate if absent; idempotent.
	EnsureExists(ctx context.Context, userID string) error
	Update(ctx context.Context, p *entity.Progress) error
}
