package entity

import "fmt"

// SlideType is the closed set of slide variants a lesson may contain.
type SlideType string

const (
	SlideIntro      SlideType = "intro"
	SlideContent    SlideType = "content"
	SlideStory      SlideType = "story"
	SlideQuestion   SlideType = "question"
	SlideCompletion SlideType = "completion"
)

// QuestionSlide holds the fields only question slides carry.
type QuestionSlide struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
}

// Slide is one screen of lesson content, tagged by Type. Question is set
// iff Type is SlideQuestion.
type Slide struct {
	Type     SlideType      `json:"type"`
	Title    string         `json:"title,omitempty"`
	Body     string         `json:"body,omitempty"`
	Image    string         `json:"image,omitempty"`
	Question *QuestionSlide `json:"question,omitempty"`
}

// Validate enforces the closed variant set and the question invariant.
func (s Slide) Validate() error {
	switch s.Type {
	case SlideIntro, SlideContent, SlideStory, SlideCompletion:
		if s.Question != nil {
			return fmt.Errorf("slide type %q must not carry a question", s.Type)
		}
		return nil
	case SlideQuestion:
		if s.Question == nil {
			return fmt.Errorf("question slide is missing its question")
		}
		return nil
	default:
		return fmt.Errorf("unknown slide type %q", s.Type)
	}
}

// Lesson is read-only learning content; completing it triggers a reward
// grant of XPReward and LucreReward.
type Lesson struct {
	ID          string  `json:"-"`
	ModuleID    int     `json:"moduleId"`
	LessonID    string  `json:"lessonId"`
	Title       string  `json:"title"`
	Slides      []Slide `json:"slides"`
	XPReward    int     `json:"xpReward"`
	LucreReward int     `json:"lucreReward"`
	IsActive    bool    `json:"-"`
}

// Key returns the "module.lesson" identifier recorded in Progress.
func (l *Lesson) Key() string {
	return fmt.Sprintf("%d.%s", l.ModuleID, l.LessonID)
}
