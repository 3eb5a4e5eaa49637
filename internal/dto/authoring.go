package dto

import "github.com/noah-isme/lingua-go-api/pkg/ai"

// GenerateQuestionsRequest asks for authored quiz questions.
type GenerateQuestionsRequest struct {
	ActivityType string `json:"activity_type" validate:"required,oneof=speaking writing quiz"`
	Level        string `json:"level" validate:"omitempty,oneof=A1 A2 B1 B2 C1 C2 a1 a2 b1 b2 c1 c2"`
	Topic        string `json:"topic" validate:"required,min=2,max=200"`
	Count        int    `json:"count" validate:"omitempty,min=1,max=20"`
}

// GeneratePromptRequest asks for an authored speaking/writing prompt.
type GeneratePromptRequest struct {
	ActivityType string `json:"activity_type" validate:"required,oneof=speaking writing"`
	Level        string `json:"level" validate:"omitempty,oneof=A1 A2 B1 B2 C1 C2 a1 a2 b1 b2 c1 c2"`
	Topic        string `json:"topic" validate:"required,min=2,max=200"`
}

// GeneratedQuestionResponse is the API shape of one authored question.
type GeneratedQuestionResponse struct {
	QuestionText  string   `json:"question_text"`
	QuestionType  string   `json:"question_type"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer"`
	Points        int      `json:"points"`
	Explanation   string   `json:"explanation,omitempty"`
}

// NewGeneratedQuestionsResponse converts authored questions into their API shape.
func NewGeneratedQuestionsResponse(questions []ai.GeneratedQuestion) []GeneratedQuestionResponse {
	responses := make([]GeneratedQuestionResponse, 0, len(questions))
	for _, question := range questions {
		responses = append(responses, GeneratedQuestionResponse{
			QuestionText:  question.QuestionText,
			QuestionType:  question.QuestionType,
			Options:       question.Options,
			CorrectAnswer: question.CorrectAnswer,
			Points:        question.Points,
			Explanation:   question.Explanation,
		})
	}
	return responses
}

// GeneratedPromptResponse is the API shape of one authored activity prompt.
type GeneratedPromptResponse struct {
	Prompt          string   `json:"prompt"`
	Instructions    string   `json:"instructions,omitempty"`
	GuideQuestions  []string `json:"guide_questions,omitempty"`
	VocabularyHints []string `json:"vocabulary_hints,omitempty"`
	TimeLimit       string   `json:"time_limit,omitempty"`
	ExpectedLength  string   `json:"expected_length,omitempty"`
	Tips            []string `json:"tips,omitempty"`
}

// NewGeneratedPromptResponse converts an authored prompt into its API shape.
func NewGeneratedPromptResponse(prompt ai.GeneratedPrompt) GeneratedPromptResponse {
	return GeneratedPromptResponse{
		Prompt:          prompt.Prompt,
		Instructions:    prompt.Instructions,
		GuideQuestions:  prompt.GuideQuestions,
		VocabularyHints: prompt.VocabularyHints,
		TimeLimit:       prompt.TimeLimit,
		ExpectedLength:  prompt.ExpectedLength,
		Tips:            prompt.Tips,
	}
}
