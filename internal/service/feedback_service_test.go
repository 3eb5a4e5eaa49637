package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/lingua-go-api/internal/models"
	"github.com/noah-isme/lingua-go-api/internal/repository"
	"github.com/noah-isme/lingua-go-api/pkg/ai"
)

func newFeedbackService(db *gorm.DB, gateway ai.Gateway, notifications NotificationService) FeedbackService {
	return NewFeedbackService(repository.NewFeedbackRepository(db), gateway, notifications, testLogger())
}

func TestFeedbackServiceSynthesizePrimary(t *testing.T) {
	db := setupServiceDB(t)
	gateway := &stubGateway{
		feedbackFn: func(req ai.FeedbackRequest) (ai.FeedbackResult, error) {
			require.Equal(t, 82.0, req.OverallScore)
			require.Len(t, req.MistakeSummary, 1)
			return ai.FeedbackResult{
				FeedbackText:    "Great progress! Your narrative flows well.",
				Strengths:       []string{"Clear structure"},
				Improvements:    []string{"Article usage"},
				Recommendations: []string{"Read short stories"},
				NextSteps:       "Try a B2 writing prompt next.",
				Tone:            models.ToneEncouraging,
			}, nil
		},
	}
	notifications := NewNotificationService(repository.NewNotificationRepository(db), nil, testLogger())
	svc := newFeedbackService(db, gateway, notifications)

	submission := seedWritingSubmission(t, db, "I ate a apple.")
	evaluation := seedEvaluation(t, db, submission)
	evaluation.OverallScore = 82
	mistakes := []models.Mistake{{EvaluationID: evaluation.ID, ErrorType: models.ErrorTypeGrammar, Severity: models.SeverityMinor, OriginalText: "a apple", CorrectedText: "an apple"}}

	feedback, err := svc.Synthesize(context.Background(), evaluation, mistakes, submission)
	require.NoError(t, err)
	require.True(t, feedback.AIGenerated)
	require.Equal(t, "Great progress! Your narrative flows well.", feedback.FeedbackText)
	require.Equal(t, []string{"Clear structure"}, []string(feedback.Strengths))
	require.False(t, feedback.IsSummarized)

	var notification models.Notification
	require.NoError(t, db.Where("student_id = ?", submission.StudentID).First(&notification).Error)
	require.Equal(t, models.NotificationTypeFeedbackReady, notification.Type)
}

func TestFeedbackServiceFallbackOnError(t *testing.T) {
	db := setupServiceDB(t)
	svc := newFeedbackService(db, &stubGateway{}, nil)

	submission := seedWritingSubmission(t, db, "My essay text.")
	evaluation := seedEvaluation(t, db, submission)
	evaluation.OverallScore = 85
	evaluation.GrammarScore = 88
	evaluation.VocabularyScore = 65

	feedback, err := svc.Synthesize(context.Background(), evaluation, nil, submission)
	require.NoError(t, err)
	require.False(t, feedback.AIGenerated)
	require.Equal(t, models.ToneEncouraging, feedback.Tone)
	require.Contains(t, feedback.FeedbackText, "Excellent effort!")
	require.Contains(t, feedback.FeedbackText, "85/100")
	require.Contains(t, []string(feedback.Strengths), "Strong grammar (88/100)")
	require.Contains(t, []string(feedback.Improvements), "Work on vocabulary (65/100)")
}

func TestFeedbackServiceFallbackConstructiveTone(t *testing.T) {
	evaluation := models.Evaluation{OverallScore: 50, GrammarScore: 55, VocabularyScore: 58}

	result := fallbackFeedback(evaluation, nil)
	require.Equal(t, models.ToneConstructive, result.Tone)
	require.Contains(t, result.FeedbackText, "Thank you for your submission.")
	require.Contains(t, result.FeedbackText, "50/100")
}

func TestFeedbackServiceFallbackOpeningBands(t *testing.T) {
	cases := []struct {
		score   float64
		opening string
		tone    string
	}{
		{95, "Outstanding work!", models.ToneEncouraging},
		{82, "Excellent effort!", models.ToneEncouraging},
		{74, "Good work overall.", models.ToneConstructive},
		{63, "Fair performance with room for growth.", models.ToneConstructive},
		{41, "Thank you for your submission.", models.ToneConstructive},
	}
	for _, tc := range cases {
		result := fallbackFeedback(models.Evaluation{OverallScore: tc.score}, nil)
		require.Contains(t, result.FeedbackText, tc.opening)
		require.Equal(t, tc.tone, result.Tone)
	}
}

func TestFeedbackServiceFallbackMistakeCountThresholds(t *testing.T) {
	mistakes := make([]models.Mistake, 0, 10)
	for i := 0; i < 6; i++ {
		mistakes = append(mistakes, models.Mistake{ErrorType: models.ErrorTypeGrammar})
	}
	for i := 0; i < 4; i++ {
		mistakes = append(mistakes, models.Mistake{ErrorType: models.ErrorTypeSpelling})
	}

	result := fallbackFeedback(models.Evaluation{OverallScore: 65, GrammarScore: 75, VocabularyScore: 75}, mistakes)
	require.Contains(t, result.Improvements, "Grammar: 6 errors detected")
	require.Contains(t, result.Improvements, "Spelling: 4 errors found")
	require.Contains(t, result.Recommendations, "Review grammar fundamentals, especially verb tenses and agreement")
	require.Contains(t, result.Recommendations, "Use spell-check and practice common spelling patterns")
}

func TestFeedbackServiceQuizMarkedSummarized(t *testing.T) {
	db := setupServiceDB(t)
	calls := 0
	gateway := &stubGateway{
		feedbackFn: func(req ai.FeedbackRequest) (ai.FeedbackResult, error) {
			return ai.FeedbackResult{FeedbackText: "Great quiz! 2 of 2 correct.", Tone: models.ToneEncouraging}, nil
		},
		summarizeFn: func(text string) (string, error) {
			calls++
			return "Summary.", nil
		},
	}
	svc := newFeedbackService(db, gateway, nil)

	submission := seedQuizSubmission(t, db,
		[]models.ActivityQuestion{{QuestionText: "Q", QuestionType: models.QuestionTypeTrueFalse, CorrectAnswer: "true"}},
		[]models.SubmissionAnswer{{Answer: "true"}},
	)
	evaluation := seedEvaluation(t, db, submission)

	feedback, err := svc.Synthesize(context.Background(), evaluation, nil, submission)
	require.NoError(t, err)
	require.True(t, feedback.IsSummarized)

	// Already short quiz feedback is never condensed a second time.
	again, err := svc.Summarize(context.Background(), feedback.ID)
	require.NoError(t, err)
	require.Equal(t, "Great quiz! 2 of 2 correct.", again.FeedbackText)
	require.Equal(t, 0, calls)
}

func TestFeedbackServiceSummarizeIdempotent(t *testing.T) {
	db := setupServiceDB(t)
	calls := 0
	gateway := &stubGateway{
		summarizeFn: func(text string) (string, error) {
			calls++
			return "Short summary.", nil
		},
	}
	svc := newFeedbackService(db, gateway, nil)

	submission := seedWritingSubmission(t, db, "Essay.")
	evaluation := seedEvaluation(t, db, submission)
	feedback := models.Feedback{EvaluationID: evaluation.ID, FeedbackText: "First sentence. Second sentence. Third sentence."}
	require.NoError(t, db.Create(&feedback).Error)

	summarized, err := svc.Summarize(context.Background(), feedback.ID)
	require.NoError(t, err)
	require.True(t, summarized.IsSummarized)
	require.Equal(t, "Short summary.", summarized.FeedbackText)
	require.Equal(t, 1, calls)

	again, err := svc.Summarize(context.Background(), feedback.ID)
	require.NoError(t, err)
	require.Equal(t, "Short summary.", again.FeedbackText)
	require.Equal(t, 1, calls)
}

func TestFeedbackServiceSummarizeTruncationFallback(t *testing.T) {
	db := setupServiceDB(t)
	svc := newFeedbackService(db, &stubGateway{}, nil)

	submission := seedWritingSubmission(t, db, "Essay.")
	evaluation := seedEvaluation(t, db, submission)
	feedback := models.Feedback{EvaluationID: evaluation.ID, FeedbackText: "First sentence. Second sentence. Third sentence."}
	require.NoError(t, db.Create(&feedback).Error)

	summarized, err := svc.Summarize(context.Background(), feedback.ID)
	require.NoError(t, err)
	require.Equal(t, "First sentence. Second sentence.", summarized.FeedbackText)
}

func TestFeedbackServiceSummarizeMissing(t *testing.T) {
	db := setupServiceDB(t)
	svc := newFeedbackService(db, &stubGateway{}, nil)

	_, err := svc.Summarize(context.Background(), 404)
	require.ErrorIs(t, err, ErrFeedbackNotFound)
}

func TestNotificationServicePublishesToRedis(t *testing.T) {
	db := setupServiceDB(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := NewNotificationService(repository.NewNotificationRepository(db), client, testLogger())

	require.NoError(t, svc.Notify(context.Background(), 7, models.NotificationTypeEvaluationCompleted, "Your submission #1 has been evaluated: 80/100"))

	listed, err := svc.ListByStudent(context.Background(), 7, 10, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, models.NotificationTypeEvaluationCompleted, listed[0].Type)
	require.False(t, listed[0].Read)
}
