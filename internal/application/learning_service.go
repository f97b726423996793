package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/coinquest/coinquest-api/internal/domain/entity"
	"github.com/coinquest/coinquest-api/internal/domain/repository"
)

var (
	// ErrContentNotFound: the requested module, lesson or quiz is unknown
	// or inactive.
	ErrContentNotFound = errors.New("content not found")

	// ErrAnswerCount: a quiz submission with the wrong number of answers.
	ErrAnswerCount = errors.New("answers must match the number of questions")
)

// PassPercentage is the quiz score threshold that completes a module.
const PassPercentage = 70

// LearningService serves content and advances per-user progress. Progress
// writes and the paired reward grant happen on every completion event.
type LearningService struct {
	Content  repository.ContentRepository
	Progress repository.ProgressRepository
	Rewards  *RewardService
	Logger   *logrus.Logger

	now func() time.Time
}

func NewLearningService(content repository.ContentRepository, progress repository.ProgressRepository, rewards *RewardService, logger *logrus.Logger) *LearningService {
	return &LearningService{
		Content:  content,
		Progress: progress,
		Rewards:  rewards,
		Logger:   logger,
		now:      time.Now,
	}
}

// ListModules returns the active course modules in order.
func (s *LearningService) ListModules(ctx context.Context) ([]entity.CourseModule, error) {
	return s.Content.ListModules(ctx)
}

// GetLesson returns one lesson with its slide deck.
func (s *LearningService) GetLesson(ctx context.Context, moduleID int, lessonID string) (*entity.Lesson, error) {
	l, err := s.Content.GetLesson(ctx, moduleID, lessonID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}
	return l, nil
}

// GetQuiz returns the module quiz.
func (s *LearningService) GetQuiz(ctx context.Context, moduleID int) (*entity.Quiz, error) {
	q, err := s.Content.GetQuiz(ctx, moduleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}
	return q, nil
}

// GetProgress returns the caller's learning aggregate, creating an empty
// one when absent.
func (s *LearningService) GetProgress(ctx context.Context, userID string) (*entity.Progress, error) {
	p, err := s.Progress.GetByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		if err = s.Progress.EnsureExists(ctx, userID); err != nil {
			return nil, err
		}
		p, err = s.Progress.GetByUserID(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CompleteLessonResult pairs the advanced progress with the reward.
type CompleteLessonResult struct {
	Progress *entity.Progress `json:"progress"`
	Reward   *GrantResult     `json:"reward"`
}

// CompleteLesson records the lesson as done and grants its reward. The
// grant fires even on a repeat completion; the progress record only ever
// holds the lesson key once.
func (s *LearningService) CompleteLesson(ctx context.Context, userID string, moduleID int, lessonID string) (*CompleteLessonResult, error) {
	lesson, err := s.Content.GetLesson(ctx, moduleID, lessonID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}

	p, err := s.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	key := lesson.Key()
	if !p.HasCompletedLesson(key) {
		p.CompletedLessons = append(p.CompletedLessons, key)
	}
	if moduleID > p.CurrentModule {
		p.CurrentModule = moduleID
	}
	if err := s.Progress.Update(ctx, p); err != nil {
		return nil, err
	}

	reward, err := s.Rewards.Grant(ctx, userID, lesson.XPReward, lesson.LucreReward, fmt.Sprintf("Completed Lesson %s", key))
	if err != nil {
		return nil, err
	}
	return &CompleteLessonResult{Progress: p, Reward: reward}, nil
}

// SubmitQuizResult is the graded outcome of a quiz submission.
type SubmitQuizResult struct {
	Score           int              `json:"score"`
	Total           int              `json:"total"`
	Percentage      int              `json:"percentage"`
	Passed          bool             `json:"passed"`
	ModuleCompleted bool             `json:"moduleCompleted"`
	Progress        *entity.Progress `json:"progress"`
	Reward          *GrantResult     `json:"reward"`
}

// SubmitQuiz grades a submission, records the score, and on a passing
// result marks the module complete and unlocks the next one. Retaking a
// quiz replaces the recorded score for that quiz.
func (s *LearningService) SubmitQuiz(ctx context.Context, userID string, moduleID int, answers []int, timeSpent int) (*SubmitQuizResult, error) {
	quiz, err := s.Content.GetQuiz(ctx, moduleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}
	if len(answers) != len(quiz.Questions) {
		return nil, ErrAnswerCount
	}

	score := 0
	for i, q := range quiz.Questions {
		if answers[i] == q.CorrectAnswer {
			score++
		}
	}
	total := len(quiz.Questions)
	percentage := 0
	if total > 0 {
		percentage = score * 100 / total
	}
	passed := percentage >= PassPercentage

	p, err := s.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	quizID := fmt.Sprintf("quiz-%d", moduleID)
	entry := entity.QuizScore{
		QuizID:    quizID,
		Score:     score,
		Total:     total,
		TimeSpent: timeSpent,
		Date:      s.now(),
	}
	replaced := false
	for i := range p.QuizScores {
		if p.QuizScores[i].QuizID == quizID {
			p.QuizScores[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		p.QuizScores = append(p.QuizScores, entry)
	}

	moduleCompleted := false
	if passed {
		if !p.HasCompletedModule(moduleID) {
			p.CompletedModules = append(p.CompletedModules, moduleID)
			moduleCompleted = true
		}
		count, err := s.Content.CountModules(ctx)
		if err != nil {
			return nil, err
		}
		next := moduleID + 1
		if next > count {
			next = count
		}
		if next > p.CurrentModule {
			p.CurrentModule = next
		}
	}
	if err := s.Progress.Update(ctx, p); err != nil {
		return nil, err
	}

	reward, err := s.Rewards.Grant(ctx, userID, score*10, percentage, fmt.Sprintf("Quiz %s: %d/%d", quizID, score, total))
	if err != nil {
		return nil, err
	}
	return &SubmitQuizResult{
		Score:           score,
		Total:           total,
		Percentage:      percentage,
		Passed:          passed,
		ModuleCompleted: moduleCompleted,
		Progress:        p,
		Reward:          reward,
	}, nil
}
