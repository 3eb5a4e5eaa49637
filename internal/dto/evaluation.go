package dto

import (
	"time"

	"github.com/noah-isme/lingua-go-api/internal/models"
	"github.com/noah-isme/lingua-go-api/internal/service"
)

// BatchEvaluateRequest bounds one batch pipeline run.
type BatchEvaluateRequest struct {
	Limit int `json:"limit" validate:"omitempty,min=1,max=100"`
}

// EvaluationResponse is the API shape of one evaluation record.
type EvaluationResponse struct {
	ID                 uint                   `json:"id"`
	SubmissionID       uint                   `json:"submission_id"`
	OverallScore       float64                `json:"overall_score"`
	GrammarScore       float64                `json:"grammar_score,omitempty"`
	VocabularyScore    float64                `json:"vocabulary_score,omitempty"`
	StructureScore     float64                `json:"structure_score,omitempty"`
	ClarityScore       float64                `json:"clarity_score,omitempty"`
	PronunciationScore float64                `json:"pronunciation_score,omitempty"`
	LogicScore         float64                `json:"logic_score,omitempty"`
	ScoreBreakdown     map[string]interface{} `json:"score_breakdown,omitempty"`
	AIConfidence       float64                `json:"ai_confidence"`
	AIProvider         string                 `json:"ai_provider"`
	AIModel            string                 `json:"ai_model"`
	Reasoning          string                 `json:"reasoning,omitempty"`
	StudentLevel       string                 `json:"student_level"`
	EvaluatedAt        time.Time              `json:"evaluated_at"`
}

// NewEvaluationResponse converts an evaluation model into its API shape.
func NewEvaluationResponse(evaluation models.Evaluation) EvaluationResponse {
	return EvaluationResponse{
		ID:                 evaluation.ID,
		SubmissionID:       evaluation.SubmissionID,
		OverallScore:       evaluation.OverallScore,
		GrammarScore:       evaluation.GrammarScore,
		VocabularyScore:    evaluation.VocabularyScore,
		StructureScore:     evaluation.StructureScore,
		ClarityScore:       evaluation.ClarityScore,
		PronunciationScore: evaluation.PronunciationScore,
		LogicScore:         evaluation.LogicScore,
		ScoreBreakdown:     evaluation.ScoreBreakdown,
		AIConfidence:       evaluation.AIConfidence,
		AIProvider:         evaluation.AIProvider,
		AIModel:            evaluation.AIModel,
		Reasoning:          evaluation.Reasoning,
		StudentLevel:       evaluation.StudentLevel,
		EvaluatedAt:        evaluation.EvaluatedAt,
	}
}

// MistakeResponse is the API shape of one detected mistake.
type MistakeResponse struct {
	ID              uint   `json:"id"`
	ErrorType       string `json:"error_type"`
	Severity        string `json:"severity"`
	OriginalText    string `json:"original_text"`
	CorrectedText   string `json:"corrected_text"`
	Description     string `json:"description,omitempty"`
	Suggestion      string `json:"suggestion,omitempty"`
	PositionStart   int    `json:"position_start"`
	PositionEnd     int    `json:"position_end"`
	IsPossibleError bool   `json:"is_possible_error"`
}

// NewMistakeResponse converts a mistake model into its API shape.
func NewMistakeResponse(mistake models.Mistake) MistakeResponse {
	return MistakeResponse{
		ID:              mistake.ID,
		ErrorType:       mistake.ErrorType,
		Severity:        mistake.Severity,
		OriginalText:    mistake.OriginalText,
		CorrectedText:   mistake.CorrectedText,
		Description:     mistake.Description,
		Suggestion:      mistake.Suggestion,
		PositionStart:   mistake.PositionStart,
		PositionEnd:     mistake.PositionEnd,
		IsPossibleError: mistake.IsPossibleError,
	}
}

// FeedbackResponse is the API shape of the narrative feedback.
type FeedbackResponse struct {
	ID              uint      `json:"id"`
	EvaluationID    uint      `json:"evaluation_id"`
	FeedbackText    string    `json:"feedback_text"`
	Strengths       []string  `json:"strengths"`
	Improvements    []string  `json:"improvements"`
	Recommendations []string  `json:"recommendations"`
	NextSteps       string    `json:"next_steps,omitempty"`
	Tone            string    `json:"tone"`
	IsSummarized    bool      `json:"is_summarized"`
	AIGenerated     bool      `json:"ai_generated"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// NewFeedbackResponse converts a feedback model into its API shape.
func NewFeedbackResponse(feedback models.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:              feedback.ID,
		EvaluationID:    feedback.EvaluationID,
		FeedbackText:    feedback.FeedbackText,
		Strengths:       feedback.Strengths,
		Improvements:    feedback.Improvements,
		Recommendations: feedback.Recommendations,
		NextSteps:       feedback.NextSteps,
		Tone:            feedback.Tone,
		IsSummarized:    feedback.IsSummarized,
		AIGenerated:     feedback.AIGenerated,
		GeneratedAt:     feedback.GeneratedAt,
	}
}

// EvaluationResultResponse bundles the full pipeline output for one submission.
type EvaluationResultResponse struct {
	Evaluation EvaluationResponse `json:"evaluation"`
	Mistakes   []MistakeResponse  `json:"mistakes"`
	Feedback   *FeedbackResponse  `json:"feedback,omitempty"`
}

// NewEvaluationResultResponse converts a pipeline result into its API shape.
func NewEvaluationResultResponse(result service.EvaluationResult) EvaluationResultResponse {
	mistakes := make([]MistakeResponse, 0, len(result.Mistakes))
	for _, mistake := range result.Mistakes {
		mistakes = append(mistakes, NewMistakeResponse(mistake))
	}

	response := EvaluationResultResponse{
		Evaluation: NewEvaluationResponse(result.Evaluation),
		Mistakes:   mistakes,
	}
	if result.Feedback.ID != 0 {
		feedback := NewFeedbackResponse(result.Feedback)
		response.Feedback = &feedback
	}
	return response
}

// BatchItemResponse reports one submission's outcome within a batch run.
type BatchItemResponse struct {
	SubmissionID uint   `json:"submission_id"`
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
}

// NewBatchResponse converts batch outcomes into their API shape.
func NewBatchResponse(items []service.BatchItem) []BatchItemResponse {
	responses := make([]BatchItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, BatchItemResponse{
			SubmissionID: item.SubmissionID,
			Status:       item.Status,
			Error:        item.Error,
		})
	}
	return responses
}
