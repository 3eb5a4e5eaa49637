package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Submission lifecycle states.
const (
	SubmissionStatusPending    = "pending"
	SubmissionStatusEvaluating = "evaluating"
	SubmissionStatusCompleted  = "completed"
	SubmissionStatusFailed     = "failed"
)

// Content types a submission may carry.
const (
	ContentTypeSpeaking = "speaking"
	ContentTypeWriting  = "writing"
	ContentTypeQuiz     = "quiz"
)

// SubmissionAnswer is one quiz answer, ordered to match the activity's questions.
type SubmissionAnswer struct {
	Answer string `json:"answer"`
}

// Submission is a student's response to an activity. The pipeline reads it
// and requests status transitions; it never mutates the content.
type Submission struct {
	ID          uint                                  `gorm:"primaryKey" json:"id"`
	StudentID   uint                                  `gorm:"not null;index" json:"student_id"`
	ActivityID  uint                                  `gorm:"not null" json:"activity_id"`
	ContentType string                                `gorm:"size:32;not null" json:"content_type"`
	Text        string                                `gorm:"type:text" json:"text"`
	Transcript  string                                `gorm:"type:text" json:"transcript"`
	DurationSec int                                   `gorm:"default:0" json:"duration_sec"`
	Answers     datatypes.JSONSlice[SubmissionAnswer] `json:"answers"`
	Level       string                                `gorm:"size:8" json:"level"`
	Status      string                                `gorm:"size:32;not null;default:pending;index" json:"status"`
	SubmittedAt time.Time                             `json:"submitted_at"`
	CreatedAt   time.Time                             `json:"created_at"`
	UpdatedAt   time.Time                             `json:"updated_at"`
	Student     Student                               `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
	Activity    Activity                              `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"activity"`
}

// EvaluableContent returns the text the pipeline should assess: the essay for
// writing, the transcript for speaking.
func (s Submission) EvaluableContent() string {
	if s.ContentType == ContentTypeSpeaking {
		return strings.TrimSpace(s.Transcript)
	}
	return strings.TrimSpace(s.Text)
}

// WordCount counts whitespace-separated tokens in the evaluable content.
func (s Submission) WordCount() int {
	return len(strings.Fields(s.EvaluableContent()))
}

// IsTerminal reports whether the submission has finished its pipeline run.
func (s Submission) IsTerminal() bool {
	return s.Status == SubmissionStatusCompleted || s.Status == SubmissionStatusFailed
}
