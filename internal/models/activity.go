package models

import (
	"time"

	"gorm.io/datatypes"
)

// Activity types match the submission content types they produce.
const (
	ActivityTypeSpeaking = "speaking"
	ActivityTypeWriting  = "writing"
	ActivityTypeQuiz     = "quiz"
)

// Question types supported by quiz activities.
const (
	QuestionTypeMultipleChoice = "multiple-choice"
	QuestionTypeTrueFalse      = "true-false"
	QuestionTypeShortAnswer    = "short-answer"
)

// ActivityQuestion is one quiz question embedded in an activity.
type ActivityQuestion struct {
	QuestionText  string   `json:"question_text"`
	QuestionType  string   `json:"question_type"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer"`
	Points        float64  `json:"points"`
	Explanation   string   `json:"explanation,omitempty"`
}

// PointsOrDefault returns the question's point value, defaulting to one.
func (q ActivityQuestion) PointsOrDefault() float64 {
	if q.Points <= 0 {
		return 1
	}
	return q.Points
}

// Activity is the task a student responds to: a speaking or writing prompt,
// or a quiz with embedded questions.
type Activity struct {
	ID           uint                                    `gorm:"primaryKey" json:"id"`
	Title        string                                  `gorm:"size:255;not null" json:"title"`
	ActivityType string                                  `gorm:"size:32;not null" json:"activity_type"`
	Prompt       string                                  `gorm:"type:text" json:"prompt"`
	Questions    datatypes.JSONSlice[ActivityQuestion]   `json:"questions"`
	RubricID     *uint                                   `json:"rubric_id"`
	Rubric       *Rubric                                 `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"rubric,omitempty"`
	CreatedAt    time.Time                               `json:"created_at"`
	UpdatedAt    time.Time                               `json:"updated_at"`
}
