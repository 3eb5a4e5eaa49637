package models

import "time"

// Error types a mistake can be classified as.
const (
	ErrorTypeGrammar       = "grammar"
	ErrorTypeVocabulary    = "vocabulary"
	ErrorTypeSpelling      = "spelling"
	ErrorTypePunctuation   = "punctuation"
	ErrorTypeLogic         = "logic"
	ErrorTypePronunciation = "pronunciation"
)

// Severity levels for a mistake.
const (
	SeverityCritical = "critical"
	SeverityMajor    = "major"
	SeverityMinor    = "minor"
)

// Mistake is a single localized error found in a submission. Mistakes are
// created in bulk by the detector and never mutated afterward.
type Mistake struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	EvaluationID    uint       `gorm:"not null;index" json:"evaluation_id"`
	ErrorType       string     `gorm:"size:32;not null" json:"error_type"`
	Severity        string     `gorm:"size:16;not null" json:"severity"`
	OriginalText    string     `gorm:"type:text" json:"original_text"`
	CorrectedText   string     `gorm:"type:text" json:"corrected_text"`
	Description     string     `gorm:"type:text" json:"description"`
	Suggestion      string     `gorm:"type:text" json:"suggestion"`
	PositionStart   int        `gorm:"default:0" json:"position_start"`
	PositionEnd     int        `gorm:"default:0" json:"position_end"`
	IsPossibleError bool       `gorm:"default:false" json:"is_possible_error"`
	CreatedAt       time.Time  `json:"created_at"`
	Evaluation      Evaluation `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// NormalizeErrorType maps arbitrary input onto a known error type,
// defaulting to grammar.
func NormalizeErrorType(raw string) string {
	switch raw {
	case ErrorTypeGrammar, ErrorTypeVocabulary, ErrorTypeSpelling, ErrorTypePunctuation, ErrorTypeLogic, ErrorTypePronunciation:
		return raw
	default:
		return ErrorTypeGrammar
	}
}

// NormalizeSeverity maps arbitrary input onto a known severity,
// defaulting to minor.
func NormalizeSeverity(raw string) string {
	switch raw {
	case SeverityCritical, SeverityMajor, SeverityMinor:
		return raw
	default:
		return SeverityMinor
	}
}
