package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlideValidate(t *testing.T) {
	q := &QuestionSlide{Question: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: 1}

	assert.NoError(t, Slide{Type: SlideIntro, Title: "Welcome"}.Validate())
	assert.NoError(t, Slide{Type: SlideContent, Body: "text"}.Validate())
	assert.NoError(t, Slide{Type: SlideStory, Body: "once upon"}.Validate())
	assert.NoError(t, Slide{Type: SlideCompletion}.Validate())
	assert.NoError(t, Slide{Type: SlideQuestion, Question: q}.Validate())

	assert.Error(t, Slide{Type: SlideQuestion}.Validate(), "question slide needs a question")
	assert.Error(t, Slide{Type: SlideContent, Question: q}.Validate(), "content slide must not carry a question")
	assert.Error(t, Slide{Type: "video"}.Validate(), "unknown type rejected")
}

func TestLessonKey(t *testing.T) {
	l := &Lesson{ModuleID: 2, LessonID: "3"}
	assert.Equal(t, "2.3", l.Key())
}
