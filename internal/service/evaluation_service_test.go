package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/lingua-go-api/internal/models"
	"github.com/noah-isme/lingua-go-api/internal/repository"
	"github.com/noah-isme/lingua-go-api/pkg/ai"
)

func newPipeline(db *gorm.DB, gateway ai.Gateway) EvaluationService {
	submissions := repository.NewSubmissionRepository(db)
	evaluations := repository.NewEvaluationRepository(db)
	mistakeRepo := repository.NewMistakeRepository(db)
	notifications := NewNotificationService(repository.NewNotificationRepository(db), nil, testLogger())

	scoring := NewScoringService(evaluations, gateway, testLogger(), ScoringConfig{ModelName: "test-model", Rand: rand.New(rand.NewSource(1))})
	mistakes := NewMistakeService(mistakeRepo, submissions, evaluations, gateway, nil, testLogger(), MistakeConfig{})
	feedback := NewFeedbackService(repository.NewFeedbackRepository(db), gateway, notifications, testLogger())

	return NewEvaluationService(submissions, evaluations, mistakeRepo, scoring, mistakes, feedback, notifications, testLogger())
}

func happyGateway() *stubGateway {
	return &stubGateway{
		scoreFn: func(ai.ScoreRequest) (ai.ScoreResult, error) {
			return ai.ScoreResult{OverallScore: 82, GrammarScore: 80, VocabularyScore: 84, StructureScore: 81, ClarityScore: 85, Confidence: 0.9}, nil
		},
		detectFn: func(ai.ErrorDetectionRequest) ([]ai.DetectedError, error) {
			return []ai.DetectedError{{Type: "grammar", Severity: "minor", OriginalText: "a apple", CorrectedText: "an apple", Position: 6}}, nil
		},
		feedbackFn: func(ai.FeedbackRequest) (ai.FeedbackResult, error) {
			return ai.FeedbackResult{FeedbackText: "Well done.", Tone: models.ToneEncouraging}, nil
		},
	}
}

func TestEvaluationServiceHappyPath(t *testing.T) {
	db := setupServiceDB(t)
	svc := newPipeline(db, happyGateway())
	submission := seedWritingSubmission(t, db, "I ate a apple for breakfast.")

	result, err := svc.Evaluate(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Equal(t, 82.0, result.Evaluation.OverallScore)
	require.Equal(t, models.AIProviderPrimary, result.Evaluation.AIProvider)
	require.Len(t, result.Mistakes, 1)
	require.Equal(t, "Well done.", result.Feedback.FeedbackText)

	var reloaded models.Submission
	require.NoError(t, db.First(&reloaded, submission.ID).Error)
	require.Equal(t, models.SubmissionStatusCompleted, reloaded.Status)

	var notifications []models.Notification
	require.NoError(t, db.Where("student_id = ?", submission.StudentID).Order("id").Find(&notifications).Error)
	require.Len(t, notifications, 2)
	require.Equal(t, models.NotificationTypeFeedbackReady, notifications[0].Type)
	require.Equal(t, models.NotificationTypeEvaluationCompleted, notifications[1].Type)
}

func TestEvaluationServiceMarksFailedOnStageError(t *testing.T) {
	db := setupServiceDB(t)
	gateway := happyGateway()
	gateway.detectFn = func(ai.ErrorDetectionRequest) ([]ai.DetectedError, error) {
		return nil, errors.New("backend exploded")
	}
	svc := newPipeline(db, gateway)
	submission := seedWritingSubmission(t, db, "I ate a apple for breakfast.")

	// Detection errors degrade to the pattern fallback, so break persistence
	// instead: mistake rows fail once the mistakes table is gone.
	require.NoError(t, db.Migrator().DropTable(&models.Mistake{}))

	_, err := svc.Evaluate(context.Background(), submission.ID)
	require.Error(t, err)
	require.Contains(t, err.Error(), "mistake detection")

	var reloaded models.Submission
	require.NoError(t, db.First(&reloaded, submission.ID).Error)
	require.Equal(t, models.SubmissionStatusFailed, reloaded.Status)
}

func TestEvaluationServiceRejectsCompleted(t *testing.T) {
	db := setupServiceDB(t)
	svc := newPipeline(db, happyGateway())
	submission := seedWritingSubmission(t, db, "Some essay.")
	require.NoError(t, db.Model(&models.Submission{}).Where("id = ?", submission.ID).Update("status", models.SubmissionStatusCompleted).Error)

	_, err := svc.Evaluate(context.Background(), submission.ID)
	require.ErrorIs(t, err, ErrAlreadyEvaluated)
}

func TestEvaluationServiceUnknownSubmission(t *testing.T) {
	db := setupServiceDB(t)
	svc := newPipeline(db, happyGateway())

	_, err := svc.Evaluate(context.Background(), 12345)
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestEvaluationServiceRetryPurgesPriorAttempt(t *testing.T) {
	db := setupServiceDB(t)
	svc := newPipeline(db, happyGateway())

	submission := seedWritingSubmission(t, db, "I ate a apple for breakfast.")
	require.NoError(t, db.Model(&models.Submission{}).Where("id = ?", submission.ID).Update("status", models.SubmissionStatusFailed).Error)

	stale := models.Evaluation{SubmissionID: submission.ID, OverallScore: 10, AIProvider: models.AIProviderFallback}
	require.NoError(t, db.Create(&stale).Error)
	require.NoError(t, db.Create(&models.Mistake{EvaluationID: stale.ID, ErrorType: models.ErrorTypeGrammar, Severity: models.SeverityMinor}).Error)

	result, err := svc.Retry(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Equal(t, 82.0, result.Evaluation.OverallScore)
	require.NotEqual(t, stale.ID, result.Evaluation.ID)

	var count int64
	require.NoError(t, db.Model(&models.Evaluation{}).Where("submission_id = ?", submission.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestEvaluationServiceRetryRequiresFailedStatus(t *testing.T) {
	db := setupServiceDB(t)
	svc := newPipeline(db, happyGateway())
	submission := seedWritingSubmission(t, db, "Pending essay.")

	_, err := svc.Retry(context.Background(), submission.ID)
	require.Error(t, err)
}

func TestEvaluationServiceRunBatch(t *testing.T) {
	db := setupServiceDB(t)
	svc := newPipeline(db, happyGateway())

	first := seedWritingSubmission(t, db, "First essay about my holidays.")
	second := seedWritingSubmission(t, db, "Second essay about my hobbies.")

	items, err := svc.RunBatch(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, first.ID, items[0].SubmissionID)
	require.Equal(t, second.ID, items[1].SubmissionID)
	for _, item := range items {
		require.Equal(t, models.SubmissionStatusCompleted, item.Status)
		require.Empty(t, item.Error)
	}
}

func TestEvaluationServiceGetResult(t *testing.T) {
	db := setupServiceDB(t)
	svc := newPipeline(db, happyGateway())
	submission := seedWritingSubmission(t, db, "I ate a apple for breakfast.")

	_, err := svc.Evaluate(context.Background(), submission.ID)
	require.NoError(t, err)

	result, err := svc.GetResult(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Equal(t, 82.0, result.Evaluation.OverallScore)
	require.Len(t, result.Mistakes, 1)
	require.Equal(t, "Well done.", result.Feedback.FeedbackText)

	_, err = svc.GetResult(context.Background(), 9999)
	require.ErrorIs(t, err, ErrEvaluationNotFound)
}
