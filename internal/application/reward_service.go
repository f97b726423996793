package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/coinquest/coinquest-api/internal/domain/entity"
	"github.com/coinquest/coinquest-api/internal/domain/repository"
)

// GrantResult is the post-grant state returned to callers so the client
// can render the new totals without a follow-up read.
type GrantResult struct {
	User        *entity.User              `json:"user"`
	Wallet      *entity.Wallet            `json:"wallet"`
	Transaction *entity.WalletTransaction `json:"transaction,omitempty"`
}

// RewardService is the single entry point for earning XP and lucre. All
// reward writes funnel through the ledger so they commit atomically.
type RewardService struct {
	Ledger repository.LedgerRepository
	Logger *logrus.Logger
}

func NewRewardService(ledger repository.LedgerRepository, logger *logrus.Logger) *RewardService {
	return &RewardService{Ledger: ledger, Logger: logger}
}

// Grant awards xpDelta and lucreDelta for reason. Zero deltas are allowed
// and leave the corresponding side untouched.
func (s *RewardService) Grant(ctx context.Context, userID string, xpDelta, lucreDelta int, reason string) (*GrantResult, error) {
	u, w, tx, err := s.Ledger.Grant(ctx, userID, xpDelta, lucreDelta, reason)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{
		"user_id": userID,
		"xp":      xpDelta,
		"lucre":   lucreDelta,
		"reason":  reason,
	}).Info("reward granted")
	return &GrantResult{User: u, Wallet: w, Transaction: tx}, nil
}
