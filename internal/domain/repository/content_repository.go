package repository

import (
	"context"

	"github.com/coinquest/coinquest-api/internal/domain/entity"
)

// ContentRepository reads learning content. Authoring and seeding are
// handled elsewhere; the API only ever reads active rows.
type ContentRepository interface {
	ListModules(ctx context.Context) ([]entity.CourseModule, error)
	CountModules(ctx context.Context) (int, error)
	GetLesson(ctx context.Context, moduleID int, lessonID string) (*entity.Lesson, error)
	GetQuiz(ctx context.Context, moduleID int) (*entity.Quiz, error)
}
