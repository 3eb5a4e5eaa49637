package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/lingua-go-api/pkg/ai"
)

// ErrAuthoringUnavailable indicates the generative backend could not produce
// usable content. Authoring has no deterministic fallback: a teacher reviews
// the output, so degraded boilerplate is worse than an error.
var ErrAuthoringUnavailable = errors.New("content authoring unavailable")

// AuthoringService generates level-appropriate activity content: quiz
// questions and speaking/writing prompts.
type AuthoringService interface {
	GenerateQuestions(ctx context.Context, activityType, level, topic string, count int) ([]ai.GeneratedQuestion, error)
	GeneratePrompt(ctx context.Context, activityType, level, topic string) (ai.GeneratedPrompt, error)
}

type authoringService struct {
	gateway ai.Gateway
	logger  zerolog.Logger
	tracer  trace.Tracer
}

// NewAuthoringService constructs an authoring service.
func NewAuthoringService(gateway ai.Gateway, logger zerolog.Logger) AuthoringService {
	return &authoringService{
		gateway: gateway,
		logger:  logger.With().Str("component", "authoring_service").Logger(),
		tracer:  otel.Tracer("github.com/noah-isme/lingua-go-api/internal/service/authoring"),
	}
}

func (s *authoringService) GenerateQuestions(ctx context.Context, activityType, level, topic string, count int) ([]ai.GeneratedQuestion, error) {
	ctx, span := s.tracer.Start(ctx, "authoring.generate_questions", trace.WithAttributes(
		attribute.String("activity_type", activityType),
		attribute.Int("count", count),
	))
	defer span.End()

	if count <= 0 {
		count = 5
	}
	if count > 20 {
		count = 20
	}

	questions, err := s.gateway.GenerateQuestions(ctx, ai.QuestionRequest{
		ActivityType:  strings.TrimSpace(activityType),
		Level:         ai.NormalizeLevel(level),
		Topic:         strings.TrimSpace(topic),
		QuestionCount: count,
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %v", ErrAuthoringUnavailable, err)
	}
	if len(questions) == 0 {
		return nil, ErrAuthoringUnavailable
	}
	return questions, nil
}

func (s *authoringService) GeneratePrompt(ctx context.Context, activityType, level, topic string) (ai.GeneratedPrompt, error) {
	ctx, span := s.tracer.Start(ctx, "authoring.generate_prompt", trace.WithAttributes(
		attribute.String("activity_type", activityType),
	))
	defer span.End()

	prompt, err := s.gateway.GeneratePrompt(ctx, ai.PromptRequest{
		ActivityType: strings.TrimSpace(activityType),
		Level:        ai.NormalizeLevel(level),
		Topic:        strings.TrimSpace(topic),
	})
	if err != nil {
		span.RecordError(err)
		return ai.GeneratedPrompt{}, fmt.Errorf("%w: %v", ErrAuthoringUnavailable, err)
	}
	return prompt, nil
}
