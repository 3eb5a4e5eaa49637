package models

import "time"

// Notification types emitted by the pipeline.
const (
	NotificationTypeEvaluationCompleted = "evaluation_completed"
	NotificationTypeFeedbackReady       = "feedback_ready"
)

// Notification records a pipeline event addressed to a student. Delivery is
// best-effort; the record is the durable part.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StudentID uint      `gorm:"not null;index" json:"student_id"`
	Type      string    `gorm:"size:48;not null" json:"type"`
	Message   string    `gorm:"type:text" json:"message"`
	Read      bool      `gorm:"default:false" json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
