package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/coinquest/coinquest-api/internal/domain/entity"
	"github.com/coinquest/coinquest-api/internal/domain/repository"
)

type ContentRepository struct {
	db DB
}

func NewContentRepository(db DB) *ContentRepository {
	return &ContentRepository{db: db}
}

func (r *ContentRepository) ListModules(ctx context.Context) ([]entity.CourseModule, error) {
	rows, err := r.db.Query(ctx, `
		SELECT module_id, title, description, sort_order, is_active
		FROM modules
		WHERE is_active
		ORDER BY sort_order
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.CourseModule
	for rows.Next() {
		var m entity.CourseModule
		if err := rows.Scan(&m.ModuleID, &m.Title, &m.Description, &m.Order, &m.IsActive); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *ContentRepository) CountModules(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM modules WHERE is_active`).Scan(&n)
	return n, err
}

func (r *ContentRepository) GetLesson(ctx context.Context, moduleID int, lessonID string) (*entity.Lesson, error) {
	l := &entity.Lesson{}
	var slides []byte
	row := r.db.QueryRow(ctx, `
		SELECT id, module_id, lesson_id, title, slides, xp_reward, lucre_reward, is_active
		FROM lessons
		WHERE module_id = $1 AND lesson_id = $2 AND is_active
	`, moduleID, lessonID)
	if err := row.Scan(&l.ID, &l.ModuleID, &l.LessonID, &l.Title, &slides,
		&l.XPReward, &l.LucreReward, &l.IsActive); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(slides, &l.Slides); err != nil {
		return nil, err
	}
	return l, nil
}

func (r *ContentRepository) GetQuiz(ctx context.Context, moduleID int) (*entity.Quiz, error) {
	q := &entity.Quiz{}
	var questions []byte
	row := r.db.QueryRow(ctx, `
		SELECT id, module_id, questions, is_active
		FROM quizzes
		WHERE module_id = $1 AND is_active
	`, moduleID)
	if err := row.Scan(&q.ID, &q.ModuleID, &questions, &q.IsActive); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(questions, &q.Questions); err != nil {
		return nil, err
	}
	return q, nil
}

var _ repository.ContentRepository = (*ContentRepository)(nil)
