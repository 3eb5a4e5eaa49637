package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lingua-go-api/pkg/ai"
)

func TestAuthoringServiceGenerateQuestionsClampsCount(t *testing.T) {
	var seen int
	gateway := &stubGateway{
		questionsFn: func(req ai.QuestionRequest) ([]ai.GeneratedQuestion, error) {
			seen = req.QuestionCount
			return []ai.GeneratedQuestion{{QuestionText: "What is 'an' used for?", QuestionType: "multiple-choice", CorrectAnswer: "vowel sounds", Points: 1}}, nil
		},
	}
	svc := NewAuthoringService(gateway, testLogger())

	_, err := svc.GenerateQuestions(context.Background(), "quiz", "b1", "articles", 0)
	require.NoError(t, err)
	require.Equal(t, 5, seen)

	_, err = svc.GenerateQuestions(context.Background(), "quiz", "b1", "articles", 50)
	require.NoError(t, err)
	require.Equal(t, 20, seen)
}

func TestAuthoringServiceUnavailable(t *testing.T) {
	svc := NewAuthoringService(&stubGateway{}, testLogger())

	_, err := svc.GenerateQuestions(context.Background(), "quiz", "B1", "travel", 5)
	require.ErrorIs(t, err, ErrAuthoringUnavailable)

	_, err = svc.GeneratePrompt(context.Background(), "writing", "B2", "travel")
	require.ErrorIs(t, err, ErrAuthoringUnavailable)
}

func TestAuthoringServicePrompt(t *testing.T) {
	gateway := &stubGateway{
		promptFn: func(req ai.PromptRequest) (ai.GeneratedPrompt, error) {
			require.Equal(t, ai.LevelB2, req.Level)
			return ai.GeneratedPrompt{Prompt: "Describe a memorable journey.", TimeLimit: "20 minutes"}, nil
		},
	}
	svc := NewAuthoringService(gateway, testLogger())

	prompt, err := svc.GeneratePrompt(context.Background(), "writing", "b2", "travel")
	require.NoError(t, err)
	require.Equal(t, "Describe a memorable journey.", prompt.Prompt)
}
