package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/lingua-go-api/internal/models"
	"github.com/noah-isme/lingua-go-api/internal/observability"
	"github.com/noah-isme/lingua-go-api/internal/repository"
)

// Sentinel errors surfaced by the orchestrator.
var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrAlreadyEvaluated   = errors.New("submission already evaluated")
	ErrEvaluationRunning  = errors.New("submission is being evaluated")
	ErrEvaluationNotFound = errors.New("evaluation not found")
)

// EvaluationResult bundles everything one pipeline run produced.
type EvaluationResult struct {
	Evaluation models.Evaluation `json:"evaluation"`
	Mistakes   []models.Mistake  `json:"mistakes"`
	Feedback   models.Feedback   `json:"feedback"`
}

// BatchItem reports the outcome of one submission within a batch run.
type BatchItem struct {
	SubmissionID uint   `json:"submission_id"`
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
}

// EvaluationService drives a submission through the full pipeline:
// scoring, mistake detection, and feedback synthesis, with the submission
// status tracking progress. Stages run strictly in sequence; a stage failure
// marks the submission failed and later stages never run.
type EvaluationService interface {
	Evaluate(ctx context.Context, submissionID uint) (EvaluationResult, error)
	Retry(ctx context.Context, submissionID uint) (EvaluationResult, error)
	RunBatch(ctx context.Context, limit int) ([]BatchItem, error)
	GetResult(ctx context.Context, submissionID uint) (EvaluationResult, error)
}

type evaluationService struct {
	submissions   repository.SubmissionRepository
	evaluations   repository.EvaluationRepository
	mistakeList   repository.MistakeRepository
	scoring       ScoringService
	mistakes      MistakeService
	feedback      FeedbackService
	notifications NotificationService
	logger        zerolog.Logger
	tracer        trace.Tracer
}

// NewEvaluationService constructs the pipeline orchestrator.
func NewEvaluationService(
	submissions repository.SubmissionRepository,
	evaluations repository.EvaluationRepository,
	mistakeList repository.MistakeRepository,
	scoring ScoringService,
	mistakes MistakeService,
	feedback FeedbackService,
	notifications NotificationService,
	logger zerolog.Logger,
) EvaluationService {
	return &evaluationService{
		submissions:   submissions,
		evaluations:   evaluations,
		mistakeList:   mistakeList,
		scoring:       scoring,
		mistakes:      mistakes,
		feedback:      feedback,
		notifications: notifications,
		logger:        logger.With().Str("component", "evaluation_service").Logger(),
		tracer:        otel.Tracer("github.com/noah-isme/lingua-go-api/internal/service/evaluation"),
	}
}

func (s *evaluationService) Evaluate(ctx context.Context, submissionID uint) (EvaluationResult, error) {
	ctx, span := s.tracer.Start(ctx, "pipeline.evaluate", trace.WithAttributes(
		attribute.Int("submission_id", int(submissionID)),
	))
	defer span.End()

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EvaluationResult{}, ErrSubmissionNotFound
		}
		return EvaluationResult{}, fmt.Errorf("load submission: %w", err)
	}

	switch submission.Status {
	case models.SubmissionStatusCompleted:
		return EvaluationResult{}, ErrAlreadyEvaluated
	case models.SubmissionStatusEvaluating:
		return EvaluationResult{}, ErrEvaluationRunning
	}

	start := time.Now()
	result, err := s.run(ctx, submission)
	outcome := "completed"
	if err != nil {
		outcome = "failed"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	observability.Evaluations().WithLabelValues(submission.ContentType, outcome).Inc()
	observability.EvaluationDuration().WithLabelValues(submission.ContentType).Observe(time.Since(start).Seconds())

	return result, err
}

// run executes the three stages in order, tracking the status transitions.
func (s *evaluationService) run(ctx context.Context, submission models.Submission) (EvaluationResult, error) {
	if err := s.submissions.UpdateStatus(ctx, submission.ID, models.SubmissionStatusEvaluating); err != nil {
		return EvaluationResult{}, fmt.Errorf("mark evaluating: %w", err)
	}

	evaluation, err := s.scoring.Score(ctx, submission)
	if err != nil {
		return EvaluationResult{}, s.fail(ctx, submission.ID, "scoring", err)
	}

	mistakes, err := s.mistakes.DetectMistakes(ctx, evaluation, submission)
	if err != nil {
		return EvaluationResult{}, s.fail(ctx, submission.ID, "mistake detection", err)
	}

	feedback, err := s.feedback.Synthesize(ctx, evaluation, mistakes, submission)
	if err != nil {
		return EvaluationResult{}, s.fail(ctx, submission.ID, "feedback synthesis", err)
	}

	if err := s.submissions.UpdateStatus(ctx, submission.ID, models.SubmissionStatusCompleted); err != nil {
		return EvaluationResult{}, fmt.Errorf("mark completed: %w", err)
	}

	if s.notifications != nil {
		message := fmt.Sprintf("Your submission #%d has been evaluated: %.0f/100", submission.ID, evaluation.OverallScore)
		if err := s.notifications.Notify(ctx, submission.StudentID, models.NotificationTypeEvaluationCompleted, message); err != nil {
			s.logger.Warn().Err(err).Uint("student_id", submission.StudentID).Msg("evaluation-completed notification failed")
		}
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Float64("overall_score", evaluation.OverallScore).
		Str("provider", evaluation.AIProvider).
		Int("mistakes", len(mistakes)).
		Msg("submission evaluated")

	return EvaluationResult{Evaluation: evaluation, Mistakes: mistakes, Feedback: feedback}, nil
}

// fail records the failed status and wraps the stage error. A status update
// failure is logged but the stage error stays the primary one.
func (s *evaluationService) fail(ctx context.Context, submissionID uint, stage string, stageErr error) error {
	if err := s.submissions.UpdateStatus(ctx, submissionID, models.SubmissionStatusFailed); err != nil {
		s.logger.Error().Err(err).Uint("submission_id", submissionID).Msg("failed to mark submission failed")
	}
	s.logger.Error().Err(stageErr).Uint("submission_id", submissionID).Str("stage", stage).Msg("pipeline stage failed")
	return fmt.Errorf("%s: %w", stage, stageErr)
}

// Retry purges artifacts from a prior attempt and re-runs the pipeline. Only
// failed submissions can be retried.
func (s *evaluationService) Retry(ctx context.Context, submissionID uint) (EvaluationResult, error) {
	ctx, span := s.tracer.Start(ctx, "pipeline.retry", trace.WithAttributes(
		attribute.Int("submission_id", int(submissionID)),
	))
	defer span.End()

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EvaluationResult{}, ErrSubmissionNotFound
		}
		return EvaluationResult{}, fmt.Errorf("load submission: %w", err)
	}
	if submission.Status != models.SubmissionStatusFailed {
		return EvaluationResult{}, fmt.Errorf("%w: only failed submissions can be retried (status %q)", ErrAlreadyEvaluated, submission.Status)
	}

	if err := s.evaluations.PurgeBySubmissionID(ctx, submissionID); err != nil {
		span.RecordError(err)
		return EvaluationResult{}, fmt.Errorf("purge prior attempt: %w", err)
	}
	if err := s.submissions.UpdateStatus(ctx, submissionID, models.SubmissionStatusPending); err != nil {
		return EvaluationResult{}, fmt.Errorf("reset status: %w", err)
	}

	return s.Evaluate(ctx, submissionID)
}

// RunBatch evaluates pending submissions oldest-first. One submission's
// failure never aborts the rest of the batch.
func (s *evaluationService) RunBatch(ctx context.Context, limit int) ([]BatchItem, error) {
	ctx, span := s.tracer.Start(ctx, "pipeline.batch")
	defer span.End()

	pending, err := s.submissions.ListPending(ctx, limit)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list pending: %w", err)
	}

	items := make([]BatchItem, 0, len(pending))
	for _, submission := range pending {
		if ctx.Err() != nil {
			return items, ctx.Err()
		}

		item := BatchItem{SubmissionID: submission.ID, Status: models.SubmissionStatusCompleted}
		if _, err := s.Evaluate(ctx, submission.ID); err != nil {
			item.Status = models.SubmissionStatusFailed
			item.Error = err.Error()
		}
		items = append(items, item)
	}

	span.SetAttributes(attribute.Int("batch_size", len(items)))
	return items, nil
}

// GetResult loads the persisted pipeline output for a completed submission.
func (s *evaluationService) GetResult(ctx context.Context, submissionID uint) (EvaluationResult, error) {
	evaluation, err := s.evaluations.GetBySubmissionID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EvaluationResult{}, ErrEvaluationNotFound
		}
		return EvaluationResult{}, err
	}

	mistakes, err := s.mistakeList.ListByEvaluationID(ctx, evaluation.ID)
	if err != nil {
		return EvaluationResult{}, err
	}

	result := EvaluationResult{Evaluation: evaluation, Mistakes: mistakes}
	feedback, err := s.feedback.GetByEvaluationID(ctx, evaluation.ID)
	if err == nil {
		result.Feedback = feedback
	} else if !errors.Is(err, ErrFeedbackNotFound) {
		return EvaluationResult{}, err
	}
	return result, nil
}
