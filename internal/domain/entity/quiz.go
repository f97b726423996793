package entity

// QuizQuestion is one multiple-choice question; CorrectAnswer indexes Options.
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// Quiz is the per-module assessment. Scoring ≥70% marks the module complete.
type Quiz struct {
	ID        string         `json:"-"`
	ModuleID  int            `json:"moduleId"`
	Questions []QuizQuestion `json:"questions"`
	IsActive  bool           `json:"-"`
}
