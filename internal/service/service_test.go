package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/lingua-go-api/internal/models"
	"github.com/noah-isme/lingua-go-api/pkg/ai"
)

var errStubUnavailable = errors.New("stub gateway unavailable")

// stubGateway lets each test wire only the operations it cares about; every
// unwired operation fails like an unreachable backend.
type stubGateway struct {
	scoreFn       func(ai.ScoreRequest) (ai.ScoreResult, error)
	detectFn      func(ai.ErrorDetectionRequest) ([]ai.DetectedError, error)
	challengesFn  func([]ai.SubmissionSample) ([]ai.Challenge, error)
	feedbackFn    func(ai.FeedbackRequest) (ai.FeedbackResult, error)
	shortAnswerFn func(ai.ShortAnswerRequest) (ai.ShortAnswerResult, error)
	questionsFn   func(ai.QuestionRequest) ([]ai.GeneratedQuestion, error)
	promptFn      func(ai.PromptRequest) (ai.GeneratedPrompt, error)
	summarizeFn   func(string) (string, error)
}

func (g *stubGateway) Score(_ context.Context, req ai.ScoreRequest) (ai.ScoreResult, error) {
	if g.scoreFn == nil {
		return ai.ScoreResult{}, errStubUnavailable
	}
	return g.scoreFn(req)
}

func (g *stubGateway) DetectErrors(_ context.Context, req ai.ErrorDetectionRequest) ([]ai.DetectedError, error) {
	if g.detectFn == nil {
		return nil, errStubUnavailable
	}
	return g.detectFn(req)
}

func (g *stubGateway) DetectRecurringChallenges(_ context.Context, samples []ai.SubmissionSample) ([]ai.Challenge, error) {
	if g.challengesFn == nil {
		return nil, errStubUnavailable
	}
	return g.challengesFn(samples)
}

func (g *stubGateway) SynthesizeFeedback(_ context.Context, req ai.FeedbackRequest) (ai.FeedbackResult, error) {
	if g.feedbackFn == nil {
		return ai.FeedbackResult{}, errStubUnavailable
	}
	return g.feedbackFn(req)
}

func (g *stubGateway) ScoreShortAnswer(_ context.Context, req ai.ShortAnswerRequest) (ai.ShortAnswerResult, error) {
	if g.shortAnswerFn == nil {
		return ai.ShortAnswerResult{}, errStubUnavailable
	}
	return g.shortAnswerFn(req)
}

func (g *stubGateway) GenerateQuestions(_ context.Context, req ai.QuestionRequest) ([]ai.GeneratedQuestion, error) {
	if g.questionsFn == nil {
		return nil, errStubUnavailable
	}
	return g.questionsFn(req)
}

func (g *stubGateway) GeneratePrompt(_ context.Context, req ai.PromptRequest) (ai.GeneratedPrompt, error) {
	if g.promptFn == nil {
		return ai.GeneratedPrompt{}, errStubUnavailable
	}
	return g.promptFn(req)
}

func (g *stubGateway) Summarize(_ context.Context, text string) (string, error) {
	if g.summarizeFn == nil {
		return "", errStubUnavailable
	}
	return g.summarizeFn(text)
}

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Student{},
		&models.Rubric{},
		&models.Activity{},
		&models.Submission{},
		&models.Evaluation{},
		&models.Mistake{},
		&models.Feedback{},
		&models.Notification{},
	))
	return db
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func seedWritingSubmission(t *testing.T, db *gorm.DB, text string) models.Submission {
	t.Helper()
	student := models.Student{Name: "Maria Lopez", Email: "maria-" + time.Now().Format("150405.000000") + "@example.com", Level: "B1"}
	require.NoError(t, db.Create(&student).Error)

	activity := models.Activity{Title: "My Weekend", ActivityType: models.ActivityTypeWriting, Prompt: "Write about your weekend."}
	require.NoError(t, db.Create(&activity).Error)

	submission := models.Submission{
		StudentID:   student.ID,
		ActivityID:  activity.ID,
		ContentType: models.ContentTypeWriting,
		Text:        text,
		Status:      models.SubmissionStatusPending,
		SubmittedAt: time.Now(),
		Student:     student,
		Activity:    activity,
	}
	require.NoError(t, db.Create(&submission).Error)
	return submission
}
