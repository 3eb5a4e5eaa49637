package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/lingua-go-api/internal/models"
	"github.com/noah-isme/lingua-go-api/internal/repository"
	"github.com/noah-isme/lingua-go-api/pkg/ai"
)

func newMistakeService(db *gorm.DB, gateway ai.Gateway, cache *redis.Client) MistakeService {
	return NewMistakeService(
		repository.NewMistakeRepository(db),
		repository.NewSubmissionRepository(db),
		repository.NewEvaluationRepository(db),
		gateway,
		cache,
		testLogger(),
		MistakeConfig{ChallengeWindow: 10, ChallengeCacheTTL: time.Minute},
	)
}

func seedEvaluation(t *testing.T, db *gorm.DB, submission models.Submission) models.Evaluation {
	t.Helper()
	evaluation := models.Evaluation{SubmissionID: submission.ID, OverallScore: 75, AIProvider: models.AIProviderPrimary}
	require.NoError(t, db.Create(&evaluation).Error)
	return evaluation
}

func seedSpeakingSubmission(t *testing.T, db *gorm.DB, transcript string, durationSec int) models.Submission {
	t.Helper()
	student := models.Student{Name: "Tomas Svoboda", Email: "tomas-" + time.Now().Format("150405.000000") + "@example.com", Level: "B1"}
	require.NoError(t, db.Create(&student).Error)

	activity := models.Activity{Title: "Describe Your City", ActivityType: models.ActivityTypeSpeaking, Prompt: "Talk about where you live."}
	require.NoError(t, db.Create(&activity).Error)

	submission := models.Submission{
		StudentID:   student.ID,
		ActivityID:  activity.ID,
		ContentType: models.ContentTypeSpeaking,
		Transcript:  transcript,
		DurationSec: durationSec,
		Status:      models.SubmissionStatusPending,
		SubmittedAt: time.Now(),
		Student:     student,
		Activity:    activity,
	}
	require.NoError(t, db.Create(&submission).Error)
	return submission
}

func TestMistakeServiceFallbackArticleRule(t *testing.T) {
	db := setupServiceDB(t)
	svc := newMistakeService(db, &stubGateway{}, nil)

	submission := seedWritingSubmission(t, db, "I ate a apple for breakfast.")
	evaluation := seedEvaluation(t, db, submission)

	mistakes, err := svc.DetectMistakes(context.Background(), evaluation, submission)
	require.NoError(t, err)
	require.Len(t, mistakes, 1)
	require.Equal(t, models.ErrorTypeGrammar, mistakes[0].ErrorType)
	require.Equal(t, "a apple", mistakes[0].OriginalText)
	require.Equal(t, "an apple", mistakes[0].CorrectedText)
	require.False(t, mistakes[0].IsPossibleError)
	require.Equal(t, 6, mistakes[0].PositionStart)

	var persisted []models.Mistake
	require.NoError(t, db.Where("evaluation_id = ?", evaluation.ID).Find(&persisted).Error)
	require.Len(t, persisted, 1)
}

func TestMistakeServiceFallbackAgreementAndApostrophe(t *testing.T) {
	mistakes := fallbackDetectErrors("He are happy but he dont say it.")
	require.Len(t, mistakes, 2)
	require.Equal(t, "He are", mistakes[0].OriginalText)
	require.Equal(t, "He is", mistakes[0].CorrectedText)
	require.Equal(t, models.SeverityMajor, mistakes[0].Severity)
	require.Equal(t, "dont", mistakes[1].OriginalText)
	require.Equal(t, "don't", mistakes[1].CorrectedText)
	require.Equal(t, models.ErrorTypeSpelling, mistakes[1].Type)
}

func TestMistakeServiceFallbackMisspellings(t *testing.T) {
	mistakes := fallbackDetectErrors("I will recieve thier letter definately.")
	require.Len(t, mistakes, 3)
	require.Equal(t, "recieve", mistakes[0].OriginalText)
	require.Equal(t, "receive", mistakes[0].CorrectedText)
	require.Equal(t, models.ErrorTypeSpelling, mistakes[0].Type)
	require.Equal(t, models.SeverityMajor, mistakes[0].Severity)
	require.Equal(t, "their", mistakes[1].CorrectedText)
	require.Equal(t, "definitely", mistakes[2].CorrectedText)
}

func TestMistakeServiceQuizWrongAnswers(t *testing.T) {
	db := setupServiceDB(t)
	svc := newMistakeService(db, &stubGateway{}, nil)

	submission := seedQuizSubmission(t, db,
		[]models.ActivityQuestion{
			{QuestionText: "Which article goes before 'apple'?", QuestionType: models.QuestionTypeMultipleChoice, CorrectAnswer: "an"},
			{QuestionText: "Is 'went' the past tense of 'go'?", QuestionType: models.QuestionTypeTrueFalse, CorrectAnswer: "True"},
		},
		[]models.SubmissionAnswer{{Answer: "a"}, {Answer: "true"}},
	)
	evaluation := seedEvaluation(t, db, submission)

	mistakes, err := svc.DetectMistakes(context.Background(), evaluation, submission)
	require.NoError(t, err)
	require.Len(t, mistakes, 1)
	require.Equal(t, models.ErrorTypeLogic, mistakes[0].ErrorType)
	require.Equal(t, models.SeverityMajor, mistakes[0].Severity)
	require.Equal(t, "a", mistakes[0].OriginalText)
	require.Equal(t, "an", mistakes[0].CorrectedText)
	require.Contains(t, mistakes[0].Description, "Which article goes before 'apple'?")
	require.Equal(t, "The correct answer is: an", mistakes[0].Suggestion)
	require.False(t, mistakes[0].IsPossibleError)

	var persisted []models.Mistake
	require.NoError(t, db.Where("evaluation_id = ?", evaluation.ID).Find(&persisted).Error)
	require.Len(t, persisted, 1)
}

func TestMistakeServiceSpeakingGenericNotes(t *testing.T) {
	db := setupServiceDB(t)
	svc := newMistakeService(db, &stubGateway{}, nil)

	submission := seedSpeakingSubmission(t, db, "", 30)
	evaluation := models.Evaluation{SubmissionID: submission.ID, OverallScore: 55, PronunciationScore: 55}
	require.NoError(t, db.Create(&evaluation).Error)

	mistakes, err := svc.DetectMistakes(context.Background(), evaluation, submission)
	require.NoError(t, err)
	require.Len(t, mistakes, 2)
	require.Equal(t, models.ErrorTypePronunciation, mistakes[0].ErrorType)
	require.Equal(t, "Pronunciation clarity needs improvement", mistakes[0].Description)
	require.True(t, mistakes[0].IsPossibleError)
	require.Equal(t, "Response too short for comprehensive evaluation", mistakes[1].Description)
	require.Equal(t, models.SeverityMinor, mistakes[1].Severity)
	require.False(t, mistakes[1].IsPossibleError)
}

func TestMistakeServiceSpeakingPhonemeFallback(t *testing.T) {
	db := setupServiceDB(t)
	svc := newMistakeService(db, &stubGateway{}, nil)

	submission := seedSpeakingSubmission(t, db, "The point is that this is the best way.", 120)
	evaluation := models.Evaluation{SubmissionID: submission.ID, OverallScore: 68, PronunciationScore: 70}
	require.NoError(t, db.Create(&evaluation).Error)

	mistakes, err := svc.DetectMistakes(context.Background(), evaluation, submission)
	require.NoError(t, err)
	require.Len(t, mistakes, 1)
	require.Equal(t, models.ErrorTypePronunciation, mistakes[0].ErrorType)
	require.Equal(t, "Possible issue with TH sound pronunciation", mistakes[0].Description)
	require.True(t, mistakes[0].IsPossibleError)
}

func TestMistakeServiceSpeakingPhonemeNeedsWeakScore(t *testing.T) {
	found := phonemeRiskMistakes("The point is that this is the best way.", 82)
	require.Empty(t, found)
}

func TestMistakeServiceNormalizesDetections(t *testing.T) {
	db := setupServiceDB(t)
	gateway := &stubGateway{
		detectFn: func(req ai.ErrorDetectionRequest) ([]ai.DetectedError, error) {
			return []ai.DetectedError{
				{Type: "weird", Severity: "catastrophic", OriginalText: "go", CorrectedText: "went", Position: 500},
			}, nil
		},
	}
	svc := newMistakeService(db, gateway, nil)

	submission := seedWritingSubmission(t, db, "Yesterday I go to school.")
	evaluation := seedEvaluation(t, db, submission)

	mistakes, err := svc.DetectMistakes(context.Background(), evaluation, submission)
	require.NoError(t, err)
	require.Len(t, mistakes, 1)
	require.Equal(t, models.ErrorTypeGrammar, mistakes[0].ErrorType)
	require.Equal(t, models.SeverityMinor, mistakes[0].Severity)
	require.Equal(t, 0, mistakes[0].PositionStart)
	require.False(t, mistakes[0].IsPossibleError)
}

func TestMistakeServiceChallengesCached(t *testing.T) {
	db := setupServiceDB(t)
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	calls := 0
	gateway := &stubGateway{
		challengesFn: func(samples []ai.SubmissionSample) ([]ai.Challenge, error) {
			calls++
			require.NotEmpty(t, samples)
			return []ai.Challenge{{Type: "grammar", Pattern: "article misuse", Frequency: "recurring", Severity: "medium", Recommendation: "Practice articles"}}, nil
		},
	}
	svc := newMistakeService(db, gateway, cache)

	submission := seedWritingSubmission(t, db, "I ate a apple and a orange.")

	first, err := svc.DetectRecurringChallenges(context.Background(), submission.StudentID)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Equal(t, 1, calls)

	second, err := svc.DetectRecurringChallenges(context.Background(), submission.StudentID)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, calls)
}

func TestMistakeServiceChallengesFrequencyFallback(t *testing.T) {
	db := setupServiceDB(t)
	svc := newMistakeService(db, &stubGateway{}, nil)

	submission := seedWritingSubmission(t, db, "I ate a apple for breakfast.")
	evaluation := seedEvaluation(t, db, submission)

	mistakes := make([]models.Mistake, 0, 9)
	for i := 0; i < 6; i++ {
		mistakes = append(mistakes, models.Mistake{EvaluationID: evaluation.ID, ErrorType: models.ErrorTypeGrammar, Severity: models.SeverityMinor})
	}
	for i := 0; i < 3; i++ {
		mistakes = append(mistakes, models.Mistake{EvaluationID: evaluation.ID, ErrorType: models.ErrorTypeSpelling, Severity: models.SeverityMinor})
	}
	require.NoError(t, db.Create(&mistakes).Error)

	// Window of 10 puts the flag threshold at 3 and the high bar at 6.
	challenges, err := svc.DetectRecurringChallenges(context.Background(), submission.StudentID)
	require.NoError(t, err)
	require.Len(t, challenges, 2)
	require.Equal(t, models.ErrorTypeGrammar, challenges[0].Type)
	require.Equal(t, "high", challenges[0].Severity)
	require.Equal(t, "60%", challenges[0].Frequency)
	require.Equal(t, models.ErrorTypeSpelling, challenges[1].Type)
	require.Equal(t, "medium", challenges[1].Severity)
	require.Equal(t, "30%", challenges[1].Frequency)
	require.Equal(t, "Use spell-check tools and memorize common patterns", challenges[1].Recommendation)
}

func TestMistakeServiceChallengesBelowThreshold(t *testing.T) {
	db := setupServiceDB(t)
	svc := newMistakeService(db, &stubGateway{}, nil)

	submission := seedWritingSubmission(t, db, "I ate a apple for breakfast.")
	evaluation := seedEvaluation(t, db, submission)
	mistakes := []models.Mistake{
		{EvaluationID: evaluation.ID, ErrorType: models.ErrorTypeGrammar, Severity: models.SeverityMinor},
		{EvaluationID: evaluation.ID, ErrorType: models.ErrorTypeGrammar, Severity: models.SeverityMinor},
	}
	require.NoError(t, db.Create(&mistakes).Error)

	challenges, err := svc.DetectRecurringChallenges(context.Background(), submission.StudentID)
	require.NoError(t, err)
	require.Empty(t, challenges)
}

func TestMistakeServiceChallengesNoHistory(t *testing.T) {
	db := setupServiceDB(t)
	svc := newMistakeService(db, &stubGateway{}, nil)

	challenges, err := svc.DetectRecurringChallenges(context.Background(), 999)
	require.NoError(t, err)
	require.Empty(t, challenges)
}
