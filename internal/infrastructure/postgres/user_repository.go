package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/coinquest/coinquest-api/internal/domain/entity"
	"github.com/coinquest/coinquest-api/internal/domain/repository"
)

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, email, age, grade, school, knowledge_level,
	level, xp, current_streak, longest_streak, last_login_at, created_at, updated_at`

func scanUser(row pgx.Row, u *entity.User) error {
	return row.Scan(&u.ID, &u.Name, &u.Email, &u.Age, &u.Grade, &u.School, &u.KnowledgeLevel,
		&u.Level, &u.XP, &u.CurrentStreak, &u.LongestStreak, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, age, grade, school)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, knowledge_level, level, xp, current_streak, longest_streak,
			last_login_at, created_at, updated_at
	`, u.Name, u.Email, u.Password, u.Age, u.Grade, u.School)

	return row.Scan(&u.ID, &u.KnowledgeLevel, &u.Level, &u.XP, &u.CurrentStreak,
		&u.LongestStreak, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u := &entity.User{}
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err := scanUser(row, u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	u := &entity.User{}
	row := r.db.QueryRow(ctx, `
		SELECT `+userColumns+`, password_hash, login_code_hash, login_code_expires_at
		FROM users
		WHERE email = $1
	`, email)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Age, &u.Grade, &u.School, &u.KnowledgeLevel,
		&u.Level, &u.XP, &u.CurrentStreak, &u.LongestStreak, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt,
		&u.Password, &u.LoginCodeHash, &u.LoginCodeExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()
	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET name = $2, age = $3, grade = $4, school = $5, knowledge_level = $6, updated_at = $7
		WHERE id = $1
	`, u.ID, u.Name, u.Age, u.Grade, u.School, u.KnowledgeLevel, u.UpdatedAt)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.db.Exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1
	`, id, passwordHash)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetLoginChallenge is the conditional single-statement write: zero rows
// affected means a live challenge already exists and no code was stored.
func (r *UserRepository) SetLoginChallenge(ctx context.Context, id, codeHash string, expiresAt time.Time) (bool, error) {
	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET login_code_hash = $2, login_code_expires_at = $3, updated_at = now()
		WHERE id = $1
		  AND (login_code_hash = '' OR login_code_expires_at IS NULL OR login_code_expires_at <= now())
	`, id, codeHash, expiresAt)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func (r *UserRepository) ReplaceLoginChallenge(ctx context.Context, id, codeHash string, expiresAt time.Time) error {
	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET login_code_hash = $2, login_code_expires_at = $3, updated_at = now()
		WHERE id = $1
	`, id, codeHash, expiresAt)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ConsumeLoginChallenge clears the challenge only when the submitted hash
// matches an unexpired one, so two racing verifications cannot both win.
func (r *UserRepository) ConsumeLoginChallenge(ctx context.Context, id, codeHash string, now time.Time) (bool, error) {
	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET login_code_hash = '', login_code_expires_at = NULL, updated_at = now()
		WHERE id = $1 AND login_code_hash = $2 AND login_code_hash <> '' AND login_code_expires_at > $3
	`, id, codeHash, now)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func (r *UserRepository) ClearLoginChallenge(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET login_code_hash = '', login_code_expires_at = NULL, updated_at = now()
		WHERE id = $1
	`, id)
	return err
}

func (r *UserRepository) UpdateStreak(ctx context.Context, id string, current, longest int, lastLoginAt time.Time) error {
	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET current_streak = $2, longest_streak = $3, last_login_at = $4, updated_at = now()
		WHERE id = $1
	`, id, current, longest, lastLoginAt)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET reset_token_hash = $2, reset_token_expires_at = $3, updated_at = now()
		WHERE id = $1
	`, id, tokenHash, expiresAt)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) ClearResetToken(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET reset_token_hash = '', reset_token_expires_at = NULL, updated_at = now()
		WHERE id = $1
	`, id)
	return err
}

func (r *UserRepository) GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*entity.User, error) {
	u := &entity.User{}
	row := r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE reset_token_hash = $1 AND reset_token_hash <> '' AND reset_token_expires_at > $2
	`, tokenHash, now)
	if err := scanUser(row, u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
