package ai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseScoreResponseStripsFencesAndClamps(t *testing.T) {
	response := "```json\n{\"overallScore\": 140, \"grammarScore\": -5, \"vocabularyScore\": 82, \"structureScore\": 75, \"clarityScore\": 70, \"confidence\": 1.4, \"reasoning\": \"solid work\"}\n```"

	result := parseScoreResponse(response)
	require.False(t, result.Degraded)
	require.Equal(t, float64(100), result.OverallScore)
	require.Equal(t, float64(0), result.GrammarScore)
	require.Equal(t, float64(82), result.VocabularyScore)
	require.Equal(t, float64(1), result.Confidence)
	require.Equal(t, "solid work", result.Reasoning)
}

func TestParseScoreResponseDefaultsPronunciationToClarity(t *testing.T) {
	result := parseScoreResponse(`{"overallScore": 80, "clarityScore": 77}`)
	require.Equal(t, float64(77), result.PronunciationScore)
}

func TestParseScoreResponseDegradesOnGarbage(t *testing.T) {
	result := parseScoreResponse("the model had a bad day")
	require.True(t, result.Degraded)
	require.Equal(t, float64(70), result.OverallScore)
	require.Equal(t, float64(70), result.GrammarScore)
	require.InDelta(t, 0.7, result.Confidence, 0.001)
}

func TestParseScoreResponseRepairsSloppyJSON(t *testing.T) {
	// trailing comma and single quotes need the repair pass
	result := parseScoreResponse(`{'overallScore': 88, 'grammarScore': 90,}`)
	require.False(t, result.Degraded)
	require.Equal(t, float64(88), result.OverallScore)
	require.Equal(t, float64(90), result.GrammarScore)
}

func TestParseErrorsResponseFillsDefaults(t *testing.T) {
	response := `{"errors": [{"originalText": "he are", "correctedText": "he is"}, {"type": "spelling", "severity": "major", "position": 12}]}`

	detected := parseErrorsResponse(response)
	require.Len(t, detected, 2)
	require.Equal(t, "grammar", detected[0].Type)
	require.Equal(t, "minor", detected[0].Severity)
	require.Equal(t, "spelling", detected[1].Type)
	require.Equal(t, 12, detected[1].Position)
}

func TestParseErrorsResponseEmptyOnGarbage(t *testing.T) {
	require.Empty(t, parseErrorsResponse("sorry, I cannot help with that"))
	require.Empty(t, parseErrorsResponse(`{"errors": []}`))
}

func TestParseChallengesResponseDefaults(t *testing.T) {
	challenges := parseChallengesResponse(`{"challenges": [{"pattern": "past tense misuse"}]}`)
	require.Len(t, challenges, 1)
	require.Equal(t, "general", challenges[0].Type)
	require.Equal(t, "unknown", challenges[0].Frequency)
	require.Equal(t, "medium", challenges[0].Severity)
}

func TestParseFeedbackResponseFallsBackToCannedRecord(t *testing.T) {
	result := parseFeedbackResponse("{}")
	require.True(t, result.Degraded)
	require.NotEmpty(t, result.FeedbackText)
	require.Equal(t, "encouraging", result.Tone)
	require.NotEmpty(t, result.Recommendations)
}

func TestParseShortAnswerResponseSnapsToLadder(t *testing.T) {
	result, err := parseShortAnswerResponse(`{"score": 0.8, "reasoning": "close"}`)
	require.NoError(t, err)
	require.Equal(t, 0.75, result.Score)

	result, err = parseShortAnswerResponse(`{"score": 2.5}`)
	require.NoError(t, err)
	require.Equal(t, 1.0, result.Score)

	_, err = parseShortAnswerResponse("no json here")
	require.Error(t, err)
}

func TestParseQuestionsResponseDefaults(t *testing.T) {
	response := `{"questions": [{"questionText": "Pick one", "options": ["a", "b", "c", "d"]}, {"questionText": ""}]}`

	questions := parseQuestionsResponse(response)
	require.Len(t, questions, 1)
	require.Equal(t, "multiple-choice", questions[0].QuestionType)
	require.Equal(t, 1, questions[0].Points)
	require.Equal(t, "a", questions[0].CorrectAnswer)
}

func TestParsePromptResponseDefaultsByActivity(t *testing.T) {
	speaking := parsePromptResponse("not decodable", ContentTypeSpeaking)
	require.Contains(t, speaking.ExpectedLength, "minutes")

	writing := parsePromptResponse("not decodable", ContentTypeWriting)
	require.Contains(t, writing.ExpectedLength, "words")
}
