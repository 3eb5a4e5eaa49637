package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/noah-isme/lingua-go-api/internal/models"
	"github.com/noah-isme/lingua-go-api/internal/observability"
	"github.com/noah-isme/lingua-go-api/internal/repository"
	"github.com/noah-isme/lingua-go-api/pkg/ai"
)

// ErrUnknownContentType indicates the submission declares a content type the
// pipeline does not recognize. This is a configuration error: fatal, never
// retried with a fallback.
var ErrUnknownContentType = errors.New("unknown content type")

// ErrNoQuizQuestions indicates a quiz submission whose activity carries no
// questions, so no score can be computed.
var ErrNoQuizQuestions = errors.New("quiz activity has no questions")

// ScoringService produces one evaluation record per submission. Speaking and
// writing go through the AI gateway with a deterministic heuristic fallback;
// quizzes are graded deterministically with an optional AI assist for short
// answers.
type ScoringService interface {
	Score(ctx context.Context, submission models.Submission) (models.Evaluation, error)
}

// ScoringConfig describes scoring knobs.
type ScoringConfig struct {
	ModelName string
	// Rand drives the simulated variance in the speaking fallback. Tests
	// inject a seeded source; production uses a time-seeded default.
	Rand *rand.Rand
}

type scoringService struct {
	evaluations repository.EvaluationRepository
	gateway     ai.Gateway
	logger      zerolog.Logger
	tracer      trace.Tracer
	cfg         ScoringConfig
	rngMu       sync.Mutex
	rng         *rand.Rand
}

// NewScoringService constructs a scoring service.
func NewScoringService(evaluations repository.EvaluationRepository, gateway ai.Gateway, logger zerolog.Logger, cfg ScoringConfig) ScoringService {
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.ModelName == "" {
		cfg.ModelName = "gpt-4o-mini"
	}

	return &scoringService{
		evaluations: evaluations,
		gateway:     gateway,
		logger:      logger.With().Str("component", "scoring_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/lingua-go-api/internal/service/scoring"),
		cfg:         cfg,
		rng:         rng,
	}
}

func (s *scoringService) Score(ctx context.Context, submission models.Submission) (models.Evaluation, error) {
	ctx, span := s.tracer.Start(ctx, "pipeline.score", trace.WithAttributes(
		attribute.String("content_type", submission.ContentType),
	))
	defer span.End()

	level := submissionLevel(submission)

	var evaluation models.Evaluation
	var err error

	switch submission.ContentType {
	case models.ContentTypeSpeaking:
		evaluation = s.scoreSpeaking(ctx, submission, level)
	case models.ContentTypeWriting:
		evaluation = s.scoreWriting(ctx, submission, level)
	case models.ContentTypeQuiz:
		evaluation, err = s.scoreQuiz(ctx, submission, level)
		if err != nil {
			span.RecordError(err)
			return models.Evaluation{}, err
		}
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownContentType, submission.ContentType)
		span.RecordError(err)
		return models.Evaluation{}, err
	}

	evaluation.SubmissionID = submission.ID
	evaluation.StudentLevel = string(level)
	evaluation.EvaluatedAt = time.Now().UTC()
	clampEvaluation(&evaluation)

	if err := s.evaluations.Create(ctx, &evaluation); err != nil {
		span.RecordError(err)
		return models.Evaluation{}, fmt.Errorf("persist evaluation: %w", err)
	}

	if evaluation.FromFallback() {
		observability.StageFallbacks().WithLabelValues("scoring").Inc()
	}

	return evaluation, nil
}

func (s *scoringService) scoreSpeaking(ctx context.Context, submission models.Submission, level ai.Level) models.Evaluation {
	content := submission.EvaluableContent()
	if content == "" {
		content = fmt.Sprintf("Audio submission (duration: %d seconds)", submission.DurationSec)
	}

	result, err := s.gatewayScore(ctx, content, ai.ContentTypeSpeaking, submission, level)
	if err != nil {
		s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("speaking scoring degraded to heuristic fallback")
		return s.fallbackSpeaking(submission)
	}

	return models.Evaluation{
		OverallScore:       result.OverallScore,
		PronunciationScore: result.PronunciationScore,
		VocabularyScore:    result.VocabularyScore,
		GrammarScore:       result.GrammarScore,
		StructureScore:     result.StructureScore,
		ClarityScore:       result.ClarityScore,
		AIConfidence:       result.Confidence,
		AIProvider:         models.AIProviderPrimary,
		AIModel:            s.cfg.ModelName,
		Reasoning:          result.Reasoning,
		ScoreBreakdown: datatypes.JSONMap{
			"fluency": result.StructureScore,
			"clarity": result.ClarityScore,
			"pace":    math.Round((result.StructureScore + result.ClarityScore) / 2),
		},
	}
}

func (s *scoringService) scoreWriting(ctx context.Context, submission models.Submission, level ai.Level) models.Evaluation {
	result, err := s.gatewayScore(ctx, submission.EvaluableContent(), ai.ContentTypeWriting, submission, level)
	if err != nil {
		s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("writing scoring degraded to heuristic fallback")
		return s.fallbackWriting(submission)
	}

	return models.Evaluation{
		OverallScore:    result.OverallScore,
		GrammarScore:    result.GrammarScore,
		VocabularyScore: result.VocabularyScore,
		StructureScore:  result.StructureScore,
		ClarityScore:    result.ClarityScore,
		AIConfidence:    result.Confidence,
		AIProvider:      models.AIProviderPrimary,
		AIModel:         s.cfg.ModelName,
		Reasoning:       result.Reasoning,
		ScoreBreakdown: datatypes.JSONMap{
			"structure":  result.StructureScore,
			"coherence":  result.ClarityScore,
			"mechanics":  result.GrammarScore,
			"creativity": math.Round((result.VocabularyScore + result.StructureScore) / 2),
		},
	}
}

// gatewayScore performs the primary AI scoring round trip. A degraded result
// (the gateway's own parse-failure defaults) is treated the same as a
// transport failure so the caller's deterministic fallback takes over.
func (s *scoringService) gatewayScore(ctx context.Context, content, contentType string, submission models.Submission, level ai.Level) (ai.ScoreResult, error) {
	if s.gateway == nil {
		return ai.ScoreResult{}, errors.New("ai gateway not configured")
	}

	result, err := s.gateway.Score(ctx, ai.ScoreRequest{
		Content:     content,
		ContentType: contentType,
		Level:       level,
		Rubric:      rubricCriteria(submission),
	})
	if err != nil {
		return ai.ScoreResult{}, err
	}
	if result.Degraded {
		return ai.ScoreResult{}, errors.New("gateway returned degraded defaults")
	}
	return result, nil
}

func (s *scoringService) fallbackSpeaking(submission models.Submission) models.Evaluation {
	transcript := submission.EvaluableContent()

	durationScore := durationPronunciationScore(submission.DurationSec)
	pronunciation := math.Round(durationScore * (0.8 + s.randomFloat()*0.2))

	var vocabulary, grammar float64
	if transcript != "" {
		vocabulary = vocabularyHeuristicScore(transcript)
		grammar = grammarHeuristicScore(transcript)
	} else {
		vocabulary = math.Round(60 + s.randomFloat()*35)
		grammar = math.Round(65 + s.randomFloat()*30)
	}

	overall := math.Round(pronunciation*0.4 + vocabulary*0.3 + grammar*0.3)

	return models.Evaluation{
		OverallScore:       overall,
		PronunciationScore: pronunciation,
		VocabularyScore:    vocabulary,
		GrammarScore:       grammar,
		AIConfidence:       0.6,
		AIProvider:         models.AIProviderFallback,
		AIModel:            "rule-based",
		ScoreBreakdown: datatypes.JSONMap{
			"fluency": math.Round(70 + s.randomFloat()*25),
			"clarity": pronunciation,
			"pace":    math.Round(65 + s.randomFloat()*30),
		},
	}
}

func (s *scoringService) fallbackWriting(submission models.Submission) models.Evaluation {
	text := submission.EvaluableContent()

	grammar := grammarHeuristicScore(text)
	vocabulary := vocabularyHeuristicScore(text)
	structure := structureHeuristicScore(text)
	overall := math.Round(grammar*0.4 + vocabulary*0.35 + structure*0.25)

	return models.Evaluation{
		OverallScore:    overall,
		GrammarScore:    grammar,
		VocabularyScore: vocabulary,
		StructureScore:  structure,
		AIConfidence:    0.6,
		AIProvider:      models.AIProviderFallback,
		AIModel:         "rule-based",
		ScoreBreakdown: datatypes.JSONMap{
			"structure":  structure,
			"coherence":  math.Round(70 + s.randomFloat()*25),
			"mechanics":  grammar,
			"creativity": math.Round(65 + s.randomFloat()*30),
		},
	}
}

func (s *scoringService) scoreQuiz(ctx context.Context, submission models.Submission, level ai.Level) (models.Evaluation, error) {
	questions := submission.Activity.Questions
	if len(questions) == 0 {
		return models.Evaluation{}, ErrNoQuizQuestions
	}

	answers := submission.Answers
	correctCount := 0
	partialCount := 0
	totalPoints := 0.0
	earnedPoints := 0.0
	usedAI := false

	for index, answer := range answers {
		if index >= len(questions) {
			break
		}
		question := questions[index]
		totalPoints += question.PointsOrDefault()

		var score float64
		if question.QuestionType == models.QuestionTypeShortAnswer {
			aiScore, err := s.shortAnswerScore(ctx, answer.Answer, question)
			if err != nil {
				s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("short answer judgment degraded to similarity fallback")
				score = s.deterministicAnswerScore(answer.Answer, question)
			} else {
				score = aiScore
				usedAI = true
			}
		} else {
			score = s.deterministicAnswerScore(answer.Answer, question)
		}

		switch {
		case score == 1:
			correctCount++
			earnedPoints += question.PointsOrDefault()
		case score > 0:
			partialCount++
			earnedPoints += score * question.PointsOrDefault()
		}
	}

	if totalPoints == 0 {
		return models.Evaluation{}, ErrNoQuizQuestions
	}

	logicScore := math.Round(earnedPoints / totalPoints * 100)

	provider := models.AIProviderFallback
	modelName := "rule-based"
	if usedAI {
		provider = models.AIProviderPrimary
		modelName = s.cfg.ModelName
	}

	return models.Evaluation{
		OverallScore: logicScore,
		LogicScore:   logicScore,
		AIConfidence: 0.95,
		AIProvider:   provider,
		AIModel:      modelName,
		ScoreBreakdown: datatypes.JSONMap{
			"correctAnswers": correctCount,
			"partialCredit":  partialCount,
			"totalQuestions": len(questions),
			"accuracy":       math.Round(float64(correctCount) / float64(len(questions)) * 100),
		},
	}, nil
}

// shortAnswerScore asks the gateway for a semantic-equivalence judgment.
func (s *scoringService) shortAnswerScore(ctx context.Context, studentAnswer string, question models.ActivityQuestion) (float64, error) {
	if s.gateway == nil {
		return 0, errors.New("ai gateway not configured")
	}

	result, err := s.gateway.ScoreShortAnswer(ctx, ai.ShortAnswerRequest{
		QuestionText:   question.QuestionText,
		ExpectedAnswer: question.CorrectAnswer,
		StudentAnswer:  studentAnswer,
	})
	if err != nil {
		return 0, err
	}
	return result.Score, nil
}

// deterministicAnswerScore grades objective questions by case-insensitive
// exact match and short answers by normalized edit-distance similarity.
func (s *scoringService) deterministicAnswerScore(studentAnswer string, question models.ActivityQuestion) float64 {
	given := strings.ToLower(strings.TrimSpace(studentAnswer))
	expected := strings.ToLower(strings.TrimSpace(question.CorrectAnswer))

	switch question.QuestionType {
	case models.QuestionTypeMultipleChoice, models.QuestionTypeTrueFalse:
		if given == expected {
			return 1
		}
		return 0
	case models.QuestionTypeShortAnswer:
		return gradeBySimilarity(stringSimilarity(given, expected))
	default:
		return 0
	}
}

func (s *scoringService) randomFloat() float64 {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Float64()
}

// submissionLevel resolves the CEFR band for a submission: the declared level
// first, then the student's profile level, then the default.
func submissionLevel(submission models.Submission) ai.Level {
	if strings.TrimSpace(submission.Level) != "" {
		return ai.NormalizeLevel(submission.Level)
	}
	return ai.NormalizeLevel(submission.Student.Level)
}

// rubricCriteria converts the activity's rubric for prompt embedding.
// Malformed or absent rubric data is tolerated and treated as absent.
func rubricCriteria(submission models.Submission) []ai.RubricCriterion {
	rubric := submission.Activity.Rubric
	if rubric == nil || len(rubric.Criteria) == 0 {
		return nil
	}

	criteria := make([]ai.RubricCriterion, 0, len(rubric.Criteria))
	for _, criterion := range rubric.Criteria {
		if criterion.Name == "" {
			continue
		}
		criteria = append(criteria, ai.RubricCriterion{
			Name:        criterion.Name,
			Weight:      criterion.Weight,
			Description: criterion.Description,
		})
	}
	return criteria
}

// clampEvaluation enforces the score ranges regardless of where the numbers
// came from. No silent score corruption.
func clampEvaluation(evaluation *models.Evaluation) {
	clamp := func(v float64) float64 {
		if v < 0 {
			return 0
		}
		if v > 100 {
			return 100
		}
		return v
	}

	evaluation.OverallScore = clamp(evaluation.OverallScore)
	evaluation.GrammarScore = clamp(evaluation.GrammarScore)
	evaluation.VocabularyScore = clamp(evaluation.VocabularyScore)
	evaluation.StructureScore = clamp(evaluation.StructureScore)
	evaluation.ClarityScore = clamp(evaluation.ClarityScore)
	evaluation.PronunciationScore = clamp(evaluation.PronunciationScore)
	evaluation.LogicScore = clamp(evaluation.LogicScore)

	if evaluation.AIConfidence < 0 {
		evaluation.AIConfidence = 0
	}
	if evaluation.AIConfidence > 1 {
		evaluation.AIConfidence = 1
	}
}
