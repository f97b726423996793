package entity

// CourseModule is a read-only grouping of lessons plus one quiz.
type CourseModule struct {
	ModuleID    int    `json:"moduleId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Order       int    `json:"order"`
	IsActive    bool   `json:"-"`
}
