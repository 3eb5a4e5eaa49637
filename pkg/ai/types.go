package ai

import "context"

// Content types the gateway knows how to build prompts for.
const (
	ContentTypeSpeaking = "speaking"
	ContentTypeWriting  = "writing"
	ContentTypeQuiz     = "quiz"
)

// RubricCriterion is a single weighted criterion embedded verbatim into scoring prompts.
type RubricCriterion struct {
	Name        string  `json:"name"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description"`
}

// ScoreRequest carries a submission to be scored against its declared CEFR level.
type ScoreRequest struct {
	Content     string
	ContentType string
	Level       Level
	Rubric      []RubricCriterion
}

// ScoreResult is the structured outcome of one scoring round trip.
// Degraded is set when the upstream response could not be decoded and the
// neutral defaults were substituted; callers decide whether a degraded result
// is still usable or should trigger their own fallback.
type ScoreResult struct {
	OverallScore       float64                `json:"overallScore"`
	GrammarScore       float64                `json:"grammarScore"`
	VocabularyScore    float64                `json:"vocabularyScore"`
	StructureScore     float64                `json:"structureScore"`
	ClarityScore       float64                `json:"clarityScore"`
	PronunciationScore float64                `json:"pronunciationScore"`
	Confidence         float64                `json:"confidence"`
	Reasoning          string                 `json:"reasoning"`
	Degraded           bool                   `json:"-"`
	Raw                map[string]interface{} `json:"-"`
}

// ErrorDetectionRequest asks for level-scoped error extraction from a submission.
type ErrorDetectionRequest struct {
	Content     string
	ContentType string
	Level       Level
}

// DetectedError is one localized error reported by the model.
type DetectedError struct {
	Type          string `json:"type"`
	Severity      string `json:"severity"`
	OriginalText  string `json:"originalText"`
	CorrectedText string `json:"correctedText"`
	Description   string `json:"description"`
	Suggestion    string `json:"suggestion"`
	Position      int    `json:"position"`
}

// SubmissionSample is one element of a student's recent history handed to
// cross-submission challenge analysis.
type SubmissionSample struct {
	Content     string
	ContentType string
}

// Challenge is a recurring difficulty found across a student's submissions.
type Challenge struct {
	Type           string `json:"type"`
	Pattern        string `json:"pattern"`
	Frequency      string `json:"frequency"`
	Severity       string `json:"severity"`
	Recommendation string `json:"recommendation"`
}

// FeedbackRequest asks for narrative feedback combining scores and mistakes.
type FeedbackRequest struct {
	OverallScore    float64
	GrammarScore    float64
	VocabularyScore float64
	StructureScore  float64
	MistakeSummary  []string
	ContentType     string
	Level           Level
}

// FeedbackResult holds the structured feedback narrative.
type FeedbackResult struct {
	FeedbackText    string   `json:"feedbackText"`
	Strengths       []string `json:"strengths"`
	Improvements    []string `json:"improvements"`
	Recommendations []string `json:"recommendations"`
	NextSteps       string   `json:"nextSteps"`
	Tone            string   `json:"tone"`
	Degraded        bool     `json:"-"`
}

// ShortAnswerRequest asks for a semantic-equivalence judgment on a quiz answer.
type ShortAnswerRequest struct {
	QuestionText   string
	ExpectedAnswer string
	StudentAnswer  string
}

// ShortAnswerResult grades a short answer on the fixed credit ladder
// {0, 0.25, 0.5, 0.75, 1.0}.
type ShortAnswerResult struct {
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

// QuestionRequest asks for authored quiz questions at a given level.
type QuestionRequest struct {
	ActivityType  string
	Level         Level
	Topic         string
	QuestionCount int
}

// GeneratedQuestion is one authored quiz question.
type GeneratedQuestion struct {
	QuestionText  string   `json:"questionText"`
	QuestionType  string   `json:"questionType"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Points        int      `json:"points"`
	Explanation   string   `json:"explanation"`
}

// PromptRequest asks for an authored speaking/writing activity prompt.
type PromptRequest struct {
	ActivityType string
	Level        Level
	Topic        string
}

// GeneratedPrompt is an authored activity prompt with scaffolding for the student.
type GeneratedPrompt struct {
	Prompt          string   `json:"prompt"`
	Instructions    string   `json:"instructions"`
	GuideQuestions  []string `json:"guideQuestions"`
	VocabularyHints []string `json:"vocabularyHints"`
	TimeLimit       string   `json:"timeLimit"`
	ExpectedLength  string   `json:"expectedLength"`
	Tips            []string `json:"tips"`
}

// Gateway abstracts the external generative model behind typed, single
// round-trip operations. Every implementation must honor the parse-or-default
// contract: a malformed upstream response becomes a documented default value,
// never a crash surfaced to the caller.
type Gateway interface {
	Score(ctx context.Context, req ScoreRequest) (ScoreResult, error)
	DetectErrors(ctx context.Context, req ErrorDetectionRequest) ([]DetectedError, error)
	DetectRecurringChallenges(ctx context.Context, samples []SubmissionSample) ([]Challenge, error)
	SynthesizeFeedback(ctx context.Context, req FeedbackRequest) (FeedbackResult, error)
	ScoreShortAnswer(ctx context.Context, req ShortAnswerRequest) (ShortAnswerResult, error)
	GenerateQuestions(ctx context.Context, req QuestionRequest) ([]GeneratedQuestion, error)
	GeneratePrompt(ctx context.Context, req PromptRequest) (GeneratedPrompt, error)
	Summarize(ctx context.Context, feedbackText string) (string, error)
}
