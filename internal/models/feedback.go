package models

import (
	"time"

	"gorm.io/datatypes"
)

// Feedback tones.
const (
	ToneEncouraging  = "encouraging"
	ToneConstructive = "constructive"
	ToneNeutral      = "neutral"
)

// Feedback is the narrative guidance derived from an evaluation and its
// mistakes (1:1 with the evaluation). Strengths and improvements survive
// summarization as provenance.
type Feedback struct {
	ID              uint                        `gorm:"primaryKey" json:"id"`
	EvaluationID    uint                        `gorm:"not null;uniqueIndex" json:"evaluation_id"`
	FeedbackText    string                      `gorm:"type:text" json:"feedback_text"`
	Strengths       datatypes.JSONSlice[string] `json:"strengths"`
	Improvements    datatypes.JSONSlice[string] `json:"improvements"`
	Recommendations datatypes.JSONSlice[string] `json:"recommendations"`
	NextSteps       string                      `gorm:"type:text" json:"next_steps"`
	Tone            string                      `gorm:"size:16" json:"tone"`
	IsSummarized    bool                        `gorm:"default:false" json:"is_summarized"`
	AIGenerated     bool                        `gorm:"default:false" json:"ai_generated"`
	GeneratedAt     time.Time                   `json:"generated_at"`
	CreatedAt       time.Time                   `json:"created_at"`
	Evaluation      Evaluation                  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
