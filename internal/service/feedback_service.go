package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/lingua-go-api/internal/models"
	"github.com/noah-isme/lingua-go-api/internal/observability"
	"github.com/noah-isme/lingua-go-api/internal/repository"
	"github.com/noah-isme/lingua-go-api/pkg/ai"
)

// ErrFeedbackNotFound indicates no feedback exists for the requested id.
var ErrFeedbackNotFound = errors.New("feedback not found")

// FeedbackService turns an evaluation and its mistakes into narrative
// guidance, and can condense that guidance into a short summary on demand.
type FeedbackService interface {
	Synthesize(ctx context.Context, evaluation models.Evaluation, mistakes []models.Mistake, submission models.Submission) (models.Feedback, error)
	Summarize(ctx context.Context, feedbackID uint) (models.Feedback, error)
	GetByEvaluationID(ctx context.Context, evaluationID uint) (models.Feedback, error)
}

type feedbackService struct {
	feedbacks     repository.FeedbackRepository
	gateway       ai.Gateway
	notifications NotificationService
	logger        zerolog.Logger
	tracer        trace.Tracer
}

// NewFeedbackService constructs a feedback service. The notification service
// is optional; without it, no feedback-ready events are emitted.
func NewFeedbackService(feedbacks repository.FeedbackRepository, gateway ai.Gateway, notifications NotificationService, logger zerolog.Logger) FeedbackService {
	return &feedbackService{
		feedbacks:     feedbacks,
		gateway:       gateway,
		notifications: notifications,
		logger:        logger.With().Str("component", "feedback_service").Logger(),
		tracer:        otel.Tracer("github.com/noah-isme/lingua-go-api/internal/service/feedback"),
	}
}

func (s *feedbackService) Synthesize(ctx context.Context, evaluation models.Evaluation, mistakes []models.Mistake, submission models.Submission) (models.Feedback, error) {
	ctx, span := s.tracer.Start(ctx, "pipeline.synthesize_feedback", trace.WithAttributes(
		attribute.Int("evaluation_id", int(evaluation.ID)),
	))
	defer span.End()

	result, aiGenerated := s.narrative(ctx, evaluation, mistakes, submission)

	feedback := models.Feedback{
		EvaluationID:    evaluation.ID,
		FeedbackText:    result.FeedbackText,
		Strengths:       datatypes.NewJSONSlice(result.Strengths),
		Improvements:    datatypes.NewJSONSlice(result.Improvements),
		Recommendations: datatypes.NewJSONSlice(result.Recommendations),
		NextSteps:       result.NextSteps,
		Tone:            normalizeTone(result.Tone),
		AIGenerated:     aiGenerated,
		// Quiz feedback is already result-table sized, so Summarize
		// leaves it untouched.
		IsSummarized: submission.ContentType == models.ContentTypeQuiz,
		GeneratedAt:  time.Now().UTC(),
	}

	if err := s.feedbacks.Create(ctx, &feedback); err != nil {
		span.RecordError(err)
		return models.Feedback{}, fmt.Errorf("persist feedback: %w", err)
	}

	if s.notifications != nil {
		message := fmt.Sprintf("Your feedback for submission #%d is ready", submission.ID)
		if err := s.notifications.Notify(ctx, submission.StudentID, models.NotificationTypeFeedbackReady, message); err != nil {
			s.logger.Warn().Err(err).Uint("student_id", submission.StudentID).Msg("feedback-ready notification failed")
		}
	}

	return feedback, nil
}

// narrative asks the gateway for feedback and falls back to a deterministic
// template when the round trip fails or returns degraded defaults.
func (s *feedbackService) narrative(ctx context.Context, evaluation models.Evaluation, mistakes []models.Mistake, submission models.Submission) (ai.FeedbackResult, bool) {
	if s.gateway == nil {
		return fallbackFeedback(evaluation, mistakes), false
	}

	result, err := s.gateway.SynthesizeFeedback(ctx, ai.FeedbackRequest{
		OverallScore:    evaluation.OverallScore,
		GrammarScore:    evaluation.GrammarScore,
		VocabularyScore: evaluation.VocabularyScore,
		StructureScore:  evaluation.StructureScore,
		MistakeSummary:  mistakeSummary(mistakes),
		ContentType:     submission.ContentType,
		Level:           submissionLevel(submission),
	})
	if err != nil || result.Degraded {
		if err != nil {
			s.logger.Warn().Err(err).Uint("evaluation_id", evaluation.ID).Msg("feedback synthesis degraded to template fallback")
		}
		observability.StageFallbacks().WithLabelValues("feedback").Inc()
		return fallbackFeedback(evaluation, mistakes), false
	}
	return result, true
}

func (s *feedbackService) Summarize(ctx context.Context, feedbackID uint) (models.Feedback, error) {
	ctx, span := s.tracer.Start(ctx, "pipeline.summarize_feedback", trace.WithAttributes(
		attribute.Int("feedback_id", int(feedbackID)),
	))
	defer span.End()

	feedback, err := s.feedbacks.GetByID(ctx, feedbackID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Feedback{}, ErrFeedbackNotFound
		}
		return models.Feedback{}, err
	}
	if feedback.IsSummarized {
		return feedback, nil
	}

	summary := s.summaryText(ctx, feedback)

	feedback.FeedbackText = summary
	feedback.IsSummarized = true
	if err := s.feedbacks.Update(ctx, &feedback); err != nil {
		span.RecordError(err)
		return models.Feedback{}, fmt.Errorf("persist summary: %w", err)
	}
	return feedback, nil
}

func (s *feedbackService) GetByEvaluationID(ctx context.Context, evaluationID uint) (models.Feedback, error) {
	feedback, err := s.feedbacks.GetByEvaluationID(ctx, evaluationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Feedback{}, ErrFeedbackNotFound
		}
		return models.Feedback{}, err
	}
	return feedback, nil
}

func (s *feedbackService) summaryText(ctx context.Context, feedback models.Feedback) string {
	if s.gateway != nil {
		summary, err := s.gateway.Summarize(ctx, feedback.FeedbackText)
		if err == nil && summary != "" {
			return summary
		}
		if err != nil {
			s.logger.Warn().Err(err).Uint("feedback_id", feedback.ID).Msg("summary degraded to truncation fallback")
		}
	}
	return truncateSentences(feedback.FeedbackText, 2)
}

// truncateSentences keeps the first n sentences of a text.
func truncateSentences(text string, n int) string {
	count := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			count++
			if count == n {
				return text[:i+1]
			}
		}
	}
	return text
}

func normalizeTone(raw string) string {
	switch raw {
	case models.ToneEncouraging, models.ToneConstructive, models.ToneNeutral:
		return raw
	default:
		return models.ToneEncouraging
	}
}

// mistakeSummary renders the detected mistakes as prompt-sized lines.
func mistakeSummary(mistakes []models.Mistake) []string {
	summary := make([]string, 0, len(mistakes))
	for _, mistake := range mistakes {
		line := fmt.Sprintf("%s (%s): %q", mistake.ErrorType, mistake.Severity, mistake.OriginalText)
		if mistake.CorrectedText != "" {
			line += fmt.Sprintf(" -> %q", mistake.CorrectedText)
		}
		summary = append(summary, line)
	}
	return summary
}

// fallbackFeedback builds deterministic feedback from the component scores
// and the detected mistake counts.
func fallbackFeedback(evaluation models.Evaluation, mistakes []models.Mistake) ai.FeedbackResult {
	var strengths, improvements, recommendations []string

	scored := []struct {
		name  string
		score float64
	}{
		{"grammar", evaluation.GrammarScore},
		{"vocabulary", evaluation.VocabularyScore},
		{"structure", evaluation.StructureScore},
	}
	for _, item := range scored {
		if item.score == 0 {
			continue
		}
		if item.score >= 80 {
			strengths = append(strengths, fmt.Sprintf("Strong %s (%.0f/100)", item.name, item.score))
		} else if item.score < 70 {
			improvements = append(improvements, fmt.Sprintf("Work on %s (%.0f/100)", item.name, item.score))
		}
	}

	grammarErrors := 0
	spellingErrors := 0
	for _, mistake := range mistakes {
		switch mistake.ErrorType {
		case models.ErrorTypeGrammar:
			grammarErrors++
		case models.ErrorTypeSpelling:
			spellingErrors++
		}
	}
	if grammarErrors > 5 {
		improvements = append(improvements, fmt.Sprintf("Grammar: %d errors detected", grammarErrors))
		recommendations = append(recommendations, "Review grammar fundamentals, especially verb tenses and agreement")
	}
	if spellingErrors > 3 {
		improvements = append(improvements, fmt.Sprintf("Spelling: %d errors found", spellingErrors))
		recommendations = append(recommendations, "Use spell-check and practice common spelling patterns")
	}

	if len(strengths) == 0 {
		strengths = append(strengths, "You completed the activity and submitted your work")
	}
	if len(improvements) == 0 && len(mistakes) > 0 {
		improvements = append(improvements, fmt.Sprintf("Review the %d highlighted mistakes", len(mistakes)))
	}
	if len(recommendations) == 0 {
		recommendations = []string{"Practice a little every day", "Review your corrected mistakes"}
	}

	var opening string
	switch {
	case evaluation.OverallScore >= 90:
		opening = "Outstanding work!"
	case evaluation.OverallScore >= 80:
		opening = "Excellent effort!"
	case evaluation.OverallScore >= 70:
		opening = "Good work overall."
	case evaluation.OverallScore >= 60:
		opening = "Fair performance with room for growth."
	default:
		opening = "Thank you for your submission."
	}
	text := fmt.Sprintf("%s Your overall score is %.0f/100. Keep practicing and you will continue to improve!", opening, evaluation.OverallScore)

	tone := models.ToneConstructive
	if evaluation.OverallScore >= 80 {
		tone = models.ToneEncouraging
	}

	return ai.FeedbackResult{
		FeedbackText:    text,
		Strengths:       strengths,
		Improvements:    improvements,
		Recommendations: recommendations,
		NextSteps:       "Complete another activity at your level to reinforce what you practiced.",
		Tone:            tone,
	}
}
