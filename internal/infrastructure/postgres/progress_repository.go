package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/coinquest/coinquest-api/internal/domain/entity"
	"github.com/coinquest/coinquest-api/internal/domain/repository"
)

type ProgressRepository struct {
	db DB
}

func NewProgressRepository(db DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

func (r *ProgressRepository) GetByUserID(ctx context.Context, userID string) (*entity.Progress, error) {
	p := &entity.Progress{}
	var quizScores []byte
	row := r.db.QueryRow(ctx, `
		SELECT user_id, current_module, completed_modules, completed_lessons, quiz_scores, created_at, updated_at
		FROM progress
		WHERE user_id = $1
	`, userID)
	if err := row.Scan(&p.UserID, &p.CurrentModule, &p.CompletedModules, &p.CompletedLessons,
		&quizScores, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if len(quizScores) > 0 {
		if err := json.Unmarshal(quizScores, &p.QuizScores); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (r *ProgressRepository) EnsureExists(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO progress (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	return err
}

func (r *ProgressRepository) Update(ctx context.Context, p *entity.Progress) error {
	p.UpdatedAt = time.Now()
	quizScores, err := json.Marshal(p.QuizScores)
	if err != nil {
		return err
	}
	res, err := r.db.Exec(ctx, `
		UPDATE progress
		SET current_module = $2, completed_modules = $3, completed_lessons = $4,
			quiz_scores = $5, updated_at = $6
		WHERE user_id = $1
	`, p.UserID, p.CurrentModule, p.CompletedModules, p.CompletedLessons, quizScores, p.UpdatedAt)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.ProgressRepository = (*ProgressRepository)(nil)
