package ai

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// stripFormatting removes the markdown fences and surrounding noise models
// like to wrap JSON payloads in.
func stripFormatting(response string) string {
	cleaned := strings.TrimSpace(response)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

// decodeObject unmarshals a model response into target, repairing sloppy JSON
// (trailing commas, single quotes, truncated braces) before giving up.
func decodeObject(response string, target interface{}) error {
	cleaned := stripFormatting(response)
	if err := json.Unmarshal([]byte(cleaned), target); err == nil {
		return nil
	}

	repaired, err := jsonrepair.JSONRepair(cleaned)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(repaired), target)
}

func clampScore(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}

func clampUnit(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}

// defaultScoreResult is the documented neutral fallback for undecodable
// scoring responses: every component at 70 with reduced confidence.
func defaultScoreResult() ScoreResult {
	return ScoreResult{
		OverallScore:       70,
		GrammarScore:       70,
		VocabularyScore:    70,
		StructureScore:     70,
		ClarityScore:       70,
		PronunciationScore: 70,
		Confidence:         0.7,
		Reasoning:          "Auto-generated evaluation",
		Degraded:           true,
	}
}

func parseScoreResponse(response string) ScoreResult {
	var payload struct {
		OverallScore       *float64 `json:"overallScore"`
		GrammarScore       float64  `json:"grammarScore"`
		VocabularyScore    float64  `json:"vocabularyScore"`
		StructureScore     float64  `json:"structureScore"`
		ClarityScore       float64  `json:"clarityScore"`
		PronunciationScore float64  `json:"pronunciationScore"`
		Confidence         float64  `json:"confidence"`
		Reasoning          string   `json:"reasoning"`
	}

	if err := decodeObject(response, &payload); err != nil || payload.OverallScore == nil {
		return defaultScoreResult()
	}

	confidence := payload.Confidence
	if confidence == 0 {
		confidence = 0.85
	}
	pronunciation := payload.PronunciationScore
	if pronunciation == 0 {
		pronunciation = payload.ClarityScore
	}

	return ScoreResult{
		OverallScore:       clampScore(*payload.OverallScore),
		GrammarScore:       clampScore(payload.GrammarScore),
		VocabularyScore:    clampScore(payload.VocabularyScore),
		StructureScore:     clampScore(payload.StructureScore),
		ClarityScore:       clampScore(payload.ClarityScore),
		PronunciationScore: clampScore(pronunciation),
		Confidence:         clampUnit(confidence),
		Reasoning:          payload.Reasoning,
	}
}

// parseErrorsResponse decodes the error list; an undecodable response yields
// an empty list because an empty result is a valid outcome, not a failure.
func parseErrorsResponse(response string) []DetectedError {
	var payload struct {
		Errors []DetectedError `json:"errors"`
	}

	if err := decodeObject(response, &payload); err != nil {
		return []DetectedError{}
	}

	detected := make([]DetectedError, 0, len(payload.Errors))
	for i, item := range payload.Errors {
		if item.Type == "" {
			item.Type = "grammar"
		}
		if item.Severity == "" {
			item.Severity = "minor"
		}
		if item.Position == 0 {
			item.Position = i
		}
		detected = append(detected, item)
	}
	return detected
}

func parseChallengesResponse(response string) []Challenge {
	var payload struct {
		Challenges []Challenge `json:"challenges"`
	}

	if err := decodeObject(response, &payload); err != nil {
		return []Challenge{}
	}

	challenges := make([]Challenge, 0, len(payload.Challenges))
	for _, item := range payload.Challenges {
		if item.Type == "" {
			item.Type = "general"
		}
		if item.Frequency == "" {
			item.Frequency = "unknown"
		}
		if item.Severity == "" {
			item.Severity = "medium"
		}
		challenges = append(challenges, item)
	}
	return challenges
}

// defaultFeedbackResult is the canned encouraging record substituted when a
// feedback response cannot be decoded.
func defaultFeedbackResult() FeedbackResult {
	return FeedbackResult{
		FeedbackText:    "Good effort! Continue practicing to improve your skills.",
		Strengths:       []string{"Shows understanding of the topic"},
		Improvements:    []string{"Continue practicing regularly"},
		Recommendations: []string{"Review grammar rules", "Expand vocabulary", "Practice writing daily"},
		NextSteps:       "Focus on consistent practice and review your common mistakes.",
		Tone:            "encouraging",
		Degraded:        true,
	}
}

func parseFeedbackResponse(response string) FeedbackResult {
	var payload FeedbackResult
	if err := decodeObject(response, &payload); err != nil || payload.FeedbackText == "" {
		return defaultFeedbackResult()
	}

	if payload.Tone == "" {
		payload.Tone = "encouraging"
	}
	return payload
}

// creditLadder are the only grades a short-answer judgment may produce.
var creditLadder = []float64{0, 0.25, 0.5, 0.75, 1.0}

func parseShortAnswerResponse(response string) (ShortAnswerResult, error) {
	var payload ShortAnswerResult
	if err := decodeObject(response, &payload); err != nil {
		return ShortAnswerResult{}, err
	}

	payload.Score = snapToLadder(clampUnit(payload.Score))
	return payload, nil
}

// snapToLadder rounds a unit score onto the nearest ladder rung.
func snapToLadder(score float64) float64 {
	best := creditLadder[0]
	bestDistance := score
	if bestDistance < 0 {
		bestDistance = -bestDistance
	}
	for _, rung := range creditLadder[1:] {
		distance := score - rung
		if distance < 0 {
			distance = -distance
		}
		if distance < bestDistance {
			best = rung
			bestDistance = distance
		}
	}
	return best
}

func parseQuestionsResponse(response string) []GeneratedQuestion {
	var payload struct {
		Questions []GeneratedQuestion `json:"questions"`
	}

	if err := decodeObject(response, &payload); err != nil {
		return []GeneratedQuestion{}
	}

	questions := make([]GeneratedQuestion, 0, len(payload.Questions))
	for _, q := range payload.Questions {
		if q.QuestionText == "" {
			continue
		}
		if q.QuestionType == "" {
			q.QuestionType = "multiple-choice"
		}
		if q.Points <= 0 {
			q.Points = 1
		}
		if q.CorrectAnswer == "" && len(q.Options) > 0 {
			q.CorrectAnswer = q.Options[0]
		}
		questions = append(questions, q)
	}
	return questions
}

func defaultGeneratedPrompt(activityType string) GeneratedPrompt {
	expectedLength := "150-250 words"
	if activityType == ContentTypeSpeaking {
		expectedLength = "1-2 minutes of speaking"
	}
	return GeneratedPrompt{
		Prompt:         "Write about your experiences and opinions on this topic.",
		Instructions:   "Express your ideas clearly and use appropriate vocabulary.",
		GuideQuestions: []string{"What is your main opinion?", "Why do you think this?", "Can you give an example?"},
		ExpectedLength: expectedLength,
		Tips:           []string{"Plan before you write", "Check your grammar"},
	}
}

func parsePromptResponse(response string, activityType string) GeneratedPrompt {
	var payload GeneratedPrompt
	if err := decodeObject(response, &payload); err != nil || payload.Prompt == "" {
		return defaultGeneratedPrompt(activityType)
	}
	return payload
}
