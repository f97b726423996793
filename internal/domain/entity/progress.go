package entity

import "time"

// QuizScore is the recorded outcome of one quiz attempt. Retakes replace
// the entry for the same quiz rather than appending.
type QuizScore struct {
	QuizID    string    `json:"quizId"`
	Score     int       `json:"score"`
	Total     int       `json:"total"`
	TimeSpent int       `json:"timeSpent"`
	Date      time.Time `json:"date"`
}

// Progress is the per-user learning aggregate consumed by the learning
// endpoints and advanced alongside reward grants.
type Progress struct {
	UserID           string      `json:"-"`
	CurrentModule    int         `json:"currentModule"`
	CompletedModules []int       `json:"completedModules"`
	CompletedLessons []string    `json:"completedLessons"`
	QuizScores       []QuizScore `json:"quizScores"`
	CreatedAt        time.Time   `json:"-"`
	UpdatedAt        time.Time   `json:"-"`
}

// HasCompletedLesson reports whether the lesson key is already recorded.
func (p *Progress) HasCompletedLesson(key string) bool {
	for _, k := range p.CompletedLessons {
		if k == key {
			return true
		}
	}
	return false
}

// HasCompletedModule reports whether the module id is already recorded.
func (p *Progress) HasCompletedModule(id int) bool {
	for _, m := range p.CompletedModules {
		if m == id {
			return true
		}
	}
	return false
}
