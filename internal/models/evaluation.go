package models

import (
	"time"

	"gorm.io/datatypes"
)

// Providers that can author an evaluation.
const (
	AIProviderPrimary  = "primary-model"
	AIProviderFallback = "fallback-heuristic"
)

// Evaluation is the scored outcome of one submission (1:1). TeacherReviewed
// and TeacherNotes form a reviewer side-channel the pipeline must never
// overwrite.
type Evaluation struct {
	ID                 uint              `gorm:"primaryKey" json:"id"`
	SubmissionID       uint              `gorm:"not null;uniqueIndex" json:"submission_id"`
	OverallScore       float64           `gorm:"not null" json:"overall_score"`
	GrammarScore       float64           `json:"grammar_score"`
	VocabularyScore    float64           `json:"vocabulary_score"`
	StructureScore     float64           `json:"structure_score"`
	ClarityScore       float64           `json:"clarity_score"`
	PronunciationScore float64           `json:"pronunciation_score"`
	LogicScore         float64           `json:"logic_score"`
	ScoreBreakdown     datatypes.JSONMap `json:"score_breakdown"`
	AIConfidence       float64           `json:"ai_confidence"`
	AIProvider         string            `gorm:"size:32" json:"ai_provider"`
	AIModel            string            `gorm:"size:64" json:"ai_model"`
	Reasoning          string            `gorm:"type:text" json:"reasoning"`
	StudentLevel       string            `gorm:"size:8" json:"student_level"`
	TeacherReviewed    bool              `gorm:"default:false" json:"teacher_reviewed"`
	TeacherNotes       string            `gorm:"type:text" json:"teacher_notes"`
	EvaluatedAt        time.Time         `json:"evaluated_at"`
	CreatedAt          time.Time         `json:"created_at"`
	Submission         Submission        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"submission"`
}

// FromFallback reports whether the evaluation came from the deterministic path.
func (e Evaluation) FromFallback() bool {
	return e.AIProvider == AIProviderFallback
}
