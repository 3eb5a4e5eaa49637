package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	gatewayDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lingua",
		Subsystem: "ai",
		Name:      "request_duration_seconds",
		Help:      "Duration of AI gateway requests",
	}, []string{"model", "operation"})

	gatewayFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lingua",
		Subsystem: "ai",
		Name:      "request_failures_total",
		Help:      "Number of AI gateway request failures",
	}, []string{"model", "operation"})
)

// OpenAIConfig defines configuration options for the OpenAI-backed gateway.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIGateway implements Gateway against the OpenAI chat completion API.
// Every operation is a single round trip; there is no streaming and no
// multi-turn state.
type OpenAIGateway struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIGateway builds a new gateway using the provided configuration.
func NewOpenAIGateway(cfg OpenAIConfig) (*OpenAIGateway, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	tracer := otel.Tracer("github.com/noah-isme/lingua-go-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIGateway{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// complete performs one chat completion round trip and returns the trimmed
// message content. Transport and empty-response failures surface as errors;
// decoding is left to the callers so each operation keeps its own
// parse-or-default contract.
func (g *OpenAIGateway) complete(parent context.Context, operation, system, user string, jsonMode bool) (string, error) {
	ctx, span := g.tracer.Start(parent, "openai."+operation, trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
	))
	defer span.End()

	request := openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: system,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: user,
			},
		},
	}
	if jsonMode {
		request.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, request)
	gatewayDuration.WithLabelValues(g.cfg.Model, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		gatewayFailures.WithLabelValues(g.cfg.Model, operation).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("openai %s: %w", operation, err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		gatewayFailures.WithLabelValues(g.cfg.Model, operation).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Score evaluates a submission against its CEFR band. An undecodable response
// degrades to the neutral default rather than failing.
func (g *OpenAIGateway) Score(ctx context.Context, req ScoreRequest) (ScoreResult, error) {
	content, err := g.complete(ctx, "score", scoringSystemPrompt(), buildScorePrompt(req), true)
	if err != nil {
		return ScoreResult{}, err
	}

	result := parseScoreResponse(content)
	if result.Degraded {
		g.logger.Warn().Str("content_type", req.ContentType).Msg("scoring response not decodable, returning neutral defaults")
	}
	return result, nil
}

// DetectErrors extracts level-scoped errors. An undecodable response yields an
// empty list; empty is a valid result.
func (g *OpenAIGateway) DetectErrors(ctx context.Context, req ErrorDetectionRequest) ([]DetectedError, error) {
	content, err := g.complete(ctx, "detect_errors", scoringSystemPrompt(), buildErrorDetectionPrompt(req), true)
	if err != nil {
		return nil, err
	}
	return parseErrorsResponse(content), nil
}

// DetectRecurringChallenges analyzes a student's recent submissions for
// recurring difficulties. Same parse-or-empty contract as DetectErrors.
func (g *OpenAIGateway) DetectRecurringChallenges(ctx context.Context, samples []SubmissionSample) ([]Challenge, error) {
	content, err := g.complete(ctx, "detect_challenges", scoringSystemPrompt(), buildChallengesPrompt(samples), true)
	if err != nil {
		return nil, err
	}
	return parseChallengesResponse(content), nil
}

// SynthesizeFeedback turns scores and mistakes into narrative feedback,
// substituting a canned encouraging record when the response is undecodable.
func (g *OpenAIGateway) SynthesizeFeedback(ctx context.Context, req FeedbackRequest) (FeedbackResult, error) {
	content, err := g.complete(ctx, "synthesize_feedback", scoringSystemPrompt(), buildFeedbackPrompt(req), true)
	if err != nil {
		return FeedbackResult{}, err
	}
	return parseFeedbackResponse(content), nil
}

// ScoreShortAnswer asks for a semantic-equivalence judgment on a quiz short
// answer. Unlike the other operations, a parse failure is returned as an
// error so the caller can fall back to edit-distance similarity.
func (g *OpenAIGateway) ScoreShortAnswer(ctx context.Context, req ShortAnswerRequest) (ShortAnswerResult, error) {
	content, err := g.complete(ctx, "score_short_answer", scoringSystemPrompt(), buildShortAnswerPrompt(req), true)
	if err != nil {
		return ShortAnswerResult{}, err
	}

	result, err := parseShortAnswerResponse(content)
	if err != nil {
		gatewayFailures.WithLabelValues(g.cfg.Model, "score_short_answer").Inc()
		return ShortAnswerResult{}, fmt.Errorf("parse short answer judgment: %w", err)
	}
	return result, nil
}

// GenerateQuestions authors quiz questions for a level and topic.
func (g *OpenAIGateway) GenerateQuestions(ctx context.Context, req QuestionRequest) ([]GeneratedQuestion, error) {
	if req.QuestionCount <= 0 {
		req.QuestionCount = 5
	}

	content, err := g.complete(ctx, "generate_questions", scoringSystemPrompt(), buildQuestionsPrompt(req), true)
	if err != nil {
		return nil, err
	}
	return parseQuestionsResponse(content), nil
}

// GeneratePrompt authors a speaking/writing activity prompt.
func (g *OpenAIGateway) GeneratePrompt(ctx context.Context, req PromptRequest) (GeneratedPrompt, error) {
	content, err := g.complete(ctx, "generate_prompt", scoringSystemPrompt(), buildActivityPromptPrompt(req), true)
	if err != nil {
		return GeneratedPrompt{}, err
	}
	return parsePromptResponse(content, req.ActivityType), nil
}

// Summarize condenses feedback text into 2-3 sentences of plain text.
func (g *OpenAIGateway) Summarize(ctx context.Context, feedbackText string) (string, error) {
	content, err := g.complete(ctx, "summarize", "You are a concise writing assistant.", buildSummarizePrompt(feedbackText), false)
	if err != nil {
		return "", err
	}

	summary := stripFormatting(content)
	if summary == "" {
		return "", fmt.Errorf("empty summary returned")
	}
	return summary, nil
}
