package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/lingua-go-api/internal/models"
	"github.com/noah-isme/lingua-go-api/internal/observability"
	"github.com/noah-isme/lingua-go-api/internal/repository"
	"github.com/noah-isme/lingua-go-api/pkg/ai"
)

// MistakeService extracts localized mistakes from an evaluated submission and
// analyses recurring challenges across a student's recent history.
type MistakeService interface {
	DetectMistakes(ctx context.Context, evaluation models.Evaluation, submission models.Submission) ([]models.Mistake, error)
	DetectRecurringChallenges(ctx context.Context, studentID uint) ([]ai.Challenge, error)
}

// MistakeConfig describes detector knobs.
type MistakeConfig struct {
	// ChallengeWindow is how many recent submissions feed the recurring
	// challenge analysis.
	ChallengeWindow int
	// ChallengeCacheTTL bounds how long a cached analysis stays fresh.
	ChallengeCacheTTL time.Duration
}

type mistakeService struct {
	mistakes    repository.MistakeRepository
	submissions repository.SubmissionRepository
	evaluations repository.EvaluationRepository
	gateway     ai.Gateway
	cache       *redis.Client
	logger      zerolog.Logger
	tracer      trace.Tracer
	cfg         MistakeConfig
}

// NewMistakeService constructs a mistake detection service. The redis client
// is optional; without it, challenge analyses are recomputed on every call.
func NewMistakeService(mistakes repository.MistakeRepository, submissions repository.SubmissionRepository, evaluations repository.EvaluationRepository, gateway ai.Gateway, cache *redis.Client, logger zerolog.Logger, cfg MistakeConfig) MistakeService {
	if cfg.ChallengeWindow <= 0 {
		cfg.ChallengeWindow = 10
	}
	if cfg.ChallengeCacheTTL <= 0 {
		cfg.ChallengeCacheTTL = time.Hour
	}

	return &mistakeService{
		mistakes:    mistakes,
		submissions: submissions,
		evaluations: evaluations,
		gateway:     gateway,
		cache:       cache,
		logger:      logger.With().Str("component", "mistake_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/lingua-go-api/internal/service/mistake"),
		cfg:         cfg,
	}
}

// detection pairs a raw finding with its confidence class. Deterministic
// rule matches are confident; heuristic guesses stay flagged as possible.
type detection struct {
	ai.DetectedError
	possible bool
}

func (s *mistakeService) DetectMistakes(ctx context.Context, evaluation models.Evaluation, submission models.Submission) ([]models.Mistake, error) {
	ctx, span := s.tracer.Start(ctx, "pipeline.detect_mistakes", trace.WithAttributes(
		attribute.Int("evaluation_id", int(evaluation.ID)),
	))
	defer span.End()

	content := submission.EvaluableContent()

	var found []detection
	switch submission.ContentType {
	case models.ContentTypeQuiz:
		found = quizMistakes(submission)
	case models.ContentTypeSpeaking:
		found = s.speakingMistakes(ctx, evaluation, submission, content)
	default:
		if content == "" {
			return nil, nil
		}
		found = s.writingMistakes(ctx, submission, content)
	}

	mistakes := make([]models.Mistake, 0, len(found))
	for _, item := range found {
		start := item.Position
		if start < 0 || start > len(content) {
			start = 0
		}
		end := start + len(item.OriginalText)
		if end > len(content) {
			end = len(content)
		}

		mistakes = append(mistakes, models.Mistake{
			EvaluationID:    evaluation.ID,
			ErrorType:       models.NormalizeErrorType(item.Type),
			Severity:        models.NormalizeSeverity(item.Severity),
			OriginalText:    item.OriginalText,
			CorrectedText:   item.CorrectedText,
			Description:     item.Description,
			Suggestion:      item.Suggestion,
			PositionStart:   start,
			PositionEnd:     end,
			IsPossibleError: item.possible,
		})
	}

	if err := s.mistakes.CreateBatch(ctx, mistakes); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("persist mistakes: %w", err)
	}
	return mistakes, nil
}

// quizMistakes grades answers against the activity's questions. Every answer
// that misses the expected one (case-insensitive, trimmed) becomes a confident
// logic mistake; no model round trip is involved.
func quizMistakes(submission models.Submission) []detection {
	questions := submission.Activity.Questions

	var found []detection
	for i, answer := range submission.Answers {
		if i >= len(questions) {
			break
		}
		question := questions[i]
		given := strings.ToLower(strings.TrimSpace(answer.Answer))
		expected := strings.ToLower(strings.TrimSpace(question.CorrectAnswer))
		if given == expected {
			continue
		}

		found = append(found, detection{DetectedError: ai.DetectedError{
			Type:          models.ErrorTypeLogic,
			Severity:      models.SeverityMajor,
			OriginalText:  answer.Answer,
			CorrectedText: question.CorrectAnswer,
			Description:   fmt.Sprintf("Incorrect answer to question %d: %q", i+1, question.QuestionText),
			Suggestion:    "The correct answer is: " + question.CorrectAnswer,
		}})
	}
	return found
}

func (s *mistakeService) speakingMistakes(ctx context.Context, evaluation models.Evaluation, submission models.Submission, transcript string) []detection {
	if transcript == "" {
		return genericSpeakingNotes(evaluation, submission)
	}

	items, err := s.gatewayDetect(ctx, transcript, submission)
	if err != nil {
		s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("speaking mistake detection degraded to phoneme fallback")
		observability.StageFallbacks().WithLabelValues("mistakes").Inc()
		return phonemeRiskMistakes(transcript, evaluation.PronunciationScore)
	}
	return confidentDetections(items)
}

func (s *mistakeService) writingMistakes(ctx context.Context, submission models.Submission, content string) []detection {
	items, err := s.gatewayDetect(ctx, content, submission)
	if err != nil {
		s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("writing mistake detection degraded to pattern fallback")
		observability.StageFallbacks().WithLabelValues("mistakes").Inc()
		items = fallbackDetectErrors(content)
	}
	return confidentDetections(items)
}

func confidentDetections(items []ai.DetectedError) []detection {
	found := make([]detection, 0, len(items))
	for _, item := range items {
		found = append(found, detection{DetectedError: item})
	}
	return found
}

// genericSpeakingNotes derives score-level observations when no transcript
// exists to inspect.
func genericSpeakingNotes(evaluation models.Evaluation, submission models.Submission) []detection {
	var notes []detection

	if evaluation.PronunciationScore < 70 {
		notes = append(notes, detection{
			DetectedError: ai.DetectedError{
				Type:        models.ErrorTypePronunciation,
				Severity:    models.SeverityMajor,
				Description: "Pronunciation clarity needs improvement",
				Suggestion:  "Focus on clear articulation of consonants and vowels",
			},
			possible: true,
		})
	}
	if submission.DurationSec < 60 {
		notes = append(notes, detection{DetectedError: ai.DetectedError{
			Type:        models.ErrorTypePronunciation,
			Severity:    models.SeverityMinor,
			Description: "Response too short for comprehensive evaluation",
			Suggestion:  "Aim for at least 1-2 minutes of speaking time",
		}})
	}
	return notes
}

// phonemeRiskPatterns flag sound clusters that commonly trip learners. A
// cluster only counts when it appears often and the pronunciation score is
// already weak, so matches are always possible errors, never certain ones.
var phonemeRiskPatterns = []struct {
	pattern    *regexp.Regexp
	sound      string
	suggestion string
	severity   string
}{
	{
		pattern:    regexp.MustCompile(`(?i)\b(th|the|that|this)\b`),
		sound:      "TH sound pronunciation",
		suggestion: "Practice 'th' sound - tongue between teeth",
		severity:   models.SeverityMajor,
	},
	{
		pattern:    regexp.MustCompile(`(?i)\b(r|right|read|run)\b`),
		sound:      "R sound clarity",
		suggestion: "Ensure clear 'r' sound without 'l' substitution",
		severity:   models.SeverityMinor,
	},
	{
		pattern:    regexp.MustCompile(`(?i)\b(v|very|have|voice)\b`),
		sound:      "V sound pronunciation",
		suggestion: "Distinguish 'v' from 'w' - teeth touch lower lip",
		severity:   models.SeverityMinor,
	},
}

func phonemeRiskMistakes(transcript string, pronunciationScore float64) []detection {
	if pronunciationScore >= 75 {
		return nil
	}

	var found []detection
	for _, risk := range phonemeRiskPatterns {
		matches := risk.pattern.FindAllString(transcript, -1)
		if len(matches) <= 3 {
			continue
		}
		found = append(found, detection{
			DetectedError: ai.DetectedError{
				Type:        models.ErrorTypePronunciation,
				Severity:    risk.severity,
				Description: "Possible issue with " + risk.sound,
				Suggestion:  risk.suggestion,
			},
			possible: true,
		})
	}
	return found
}

func (s *mistakeService) gatewayDetect(ctx context.Context, content string, submission models.Submission) ([]ai.DetectedError, error) {
	if s.gateway == nil {
		return nil, errors.New("ai gateway not configured")
	}
	return s.gateway.DetectErrors(ctx, ai.ErrorDetectionRequest{
		Content:     content,
		ContentType: submission.ContentType,
		Level:       submissionLevel(submission),
	})
}

func (s *mistakeService) DetectRecurringChallenges(ctx context.Context, studentID uint) ([]ai.Challenge, error) {
	ctx, span := s.tracer.Start(ctx, "pipeline.detect_challenges", trace.WithAttributes(
		attribute.Int("student_id", int(studentID)),
	))
	defer span.End()

	cacheKey := fmt.Sprintf("challenges:student:%d", studentID)
	if cached, ok := s.cachedChallenges(ctx, cacheKey); ok {
		return cached, nil
	}

	recent, err := s.submissions.ListRecentByStudent(ctx, studentID, s.cfg.ChallengeWindow)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("load recent submissions: %w", err)
	}

	samples := make([]ai.SubmissionSample, 0, len(recent))
	for _, submission := range recent {
		content := submission.EvaluableContent()
		if strings.TrimSpace(content) == "" {
			continue
		}
		samples = append(samples, ai.SubmissionSample{
			Content:     content,
			ContentType: submission.ContentType,
		})
	}
	if len(samples) == 0 {
		return nil, nil
	}

	challenges, err := s.gatewayChallenges(ctx, samples)
	if err != nil {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("challenge analysis degraded to frequency fallback")
		observability.StageFallbacks().WithLabelValues("challenges").Inc()
		challenges, err = s.fallbackChallenges(ctx, recent)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("challenge frequency fallback: %w", err)
		}
	}

	s.storeChallenges(ctx, cacheKey, challenges)
	return challenges, nil
}

func (s *mistakeService) gatewayChallenges(ctx context.Context, samples []ai.SubmissionSample) ([]ai.Challenge, error) {
	if s.gateway == nil {
		return nil, errors.New("ai gateway not configured")
	}
	return s.gateway.DetectRecurringChallenges(ctx, samples)
}

func (s *mistakeService) cachedChallenges(ctx context.Context, key string) ([]ai.Challenge, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Str("key", key).Msg("challenge cache read failed")
		}
		return nil, false
	}

	var challenges []ai.Challenge
	if err := json.Unmarshal([]byte(raw), &challenges); err != nil {
		return nil, false
	}
	return challenges, true
}

func (s *mistakeService) storeChallenges(ctx context.Context, key string, challenges []ai.Challenge) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(challenges)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cfg.ChallengeCacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("challenge cache write failed")
	}
}

// fallbackChallenges counts persisted mistake types across the student's
// recent evaluations. A type is flagged once it shows up in at least 30% of
// the window; at 60% it is a high-severity challenge.
func (s *mistakeService) fallbackChallenges(ctx context.Context, recent []models.Submission) ([]ai.Challenge, error) {
	submissionIDs := make([]uint, 0, len(recent))
	for _, submission := range recent {
		submissionIDs = append(submissionIDs, submission.ID)
	}

	evaluations, err := s.evaluations.ListBySubmissionIDs(ctx, submissionIDs)
	if err != nil {
		return nil, err
	}
	evaluationIDs := make([]uint, 0, len(evaluations))
	for _, evaluation := range evaluations {
		evaluationIDs = append(evaluationIDs, evaluation.ID)
	}

	mistakes, err := s.mistakes.ListByEvaluationIDs(ctx, evaluationIDs)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, mistake := range mistakes {
		counts[mistake.ErrorType]++
	}

	type entry struct {
		errorType string
		count     int
	}
	threshold := float64(s.cfg.ChallengeWindow) * 0.3
	entries := make([]entry, 0, len(counts))
	for errorType, count := range counts {
		if float64(count) < threshold {
			continue
		}
		entries = append(entries, entry{errorType, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].errorType < entries[j].errorType
	})

	challenges := make([]ai.Challenge, 0, len(entries))
	for _, item := range entries {
		severity := "medium"
		if float64(item.count) >= threshold*2 {
			severity = "high"
		}
		percentage := int(math.Round(float64(item.count) / float64(s.cfg.ChallengeWindow) * 100))
		challenges = append(challenges, ai.Challenge{
			Type:           item.errorType,
			Pattern:        fmt.Sprintf("Recurring %s mistakes", item.errorType),
			Frequency:      fmt.Sprintf("%d%%", percentage),
			Severity:       severity,
			Recommendation: challengeRecommendation(item.errorType),
		})
	}
	return challenges, nil
}

func challengeRecommendation(errorType string) string {
	switch errorType {
	case models.ErrorTypeGrammar:
		return "Review grammar rules and practice with exercises"
	case models.ErrorTypeVocabulary:
		return "Expand vocabulary through reading and word lists"
	case models.ErrorTypePronunciation:
		return "Practice pronunciation with audio resources"
	case models.ErrorTypeSpelling:
		return "Use spell-check tools and memorize common patterns"
	case models.ErrorTypePunctuation:
		return "Study punctuation rules and apply consistently"
	case models.ErrorTypeLogic:
		return "Improve analytical thinking and problem-solving skills"
	default:
		return "Continue practicing and reviewing fundamentals"
	}
}

// fallbackRule is one deterministic detection pattern with its correction template.
type fallbackRule struct {
	pattern     *regexp.Regexp
	replacement string
	errorType   string
	severity    string
	description string
	suggestion  string
}

var fallbackRules = []fallbackRule{
	{
		pattern:     regexp.MustCompile(`(?i)\ba (?:[aeiou]\w*)\b`),
		replacement: "",
		errorType:   models.ErrorTypeGrammar,
		severity:    models.SeverityMinor,
		description: "Use 'an' before words starting with a vowel sound",
		suggestion:  "Replace 'a' with 'an' before vowel sounds",
	},
	{
		pattern:     regexp.MustCompile(`(?i)\ban (?:[^aeiou\s]\w*)\b`),
		replacement: "",
		errorType:   models.ErrorTypeGrammar,
		severity:    models.SeverityMinor,
		description: "Use 'a' before words starting with a consonant sound",
		suggestion:  "Replace 'an' with 'a' before consonant sounds",
	},
	{
		pattern:     regexp.MustCompile(`(?i)\b(he|she|it) (?:am|are)\b`),
		replacement: "$1 is",
		errorType:   models.ErrorTypeGrammar,
		severity:    models.SeverityMajor,
		description: "Subject-verb agreement: singular subjects take 'is'",
		suggestion:  "Use 'is' with he, she, and it",
	},
	{
		pattern:     regexp.MustCompile(`\bI is\b`),
		replacement: "I am",
		errorType:   models.ErrorTypeGrammar,
		severity:    models.SeverityMajor,
		description: "Subject-verb agreement: 'I' takes 'am'",
		suggestion:  "Use 'am' with 'I'",
	},
	{
		pattern:     regexp.MustCompile(`(?i)\b(you|we|they) is\b`),
		replacement: "$1 are",
		errorType:   models.ErrorTypeGrammar,
		severity:    models.SeverityMajor,
		description: "Subject-verb agreement: plural subjects take 'are'",
		suggestion:  "Use 'are' with you, we, and they",
	},
	{
		pattern:     regexp.MustCompile(`(?i)\b(dont|doesnt|didnt|cant|wont|isnt|arent)\b`),
		replacement: "",
		errorType:   models.ErrorTypeSpelling,
		severity:    models.SeverityMinor,
		description: "Contractions need an apostrophe",
		suggestion:  "Add the missing apostrophe",
	},
	{
		pattern:     regexp.MustCompile(` {2,}`),
		replacement: " ",
		errorType:   models.ErrorTypePunctuation,
		severity:    models.SeverityMinor,
		description: "Extra whitespace between words",
		suggestion:  "Use a single space between words",
	},
	misspellingRule(`(?i)\brecieve\b`, "receive"),
	misspellingRule(`(?i)\boccured\b`, "occurred"),
	misspellingRule(`(?i)\bseperate\b`, "separate"),
	misspellingRule(`(?i)\bdefinately\b`, "definitely"),
	misspellingRule(`(?i)\bthier\b`, "their"),
}

func misspellingRule(pattern, correct string) fallbackRule {
	return fallbackRule{
		pattern:     regexp.MustCompile(pattern),
		replacement: correct,
		errorType:   models.ErrorTypeSpelling,
		severity:    models.SeverityMajor,
		description: "Spelling error",
		suggestion:  fmt.Sprintf("Correct spelling: %q", correct),
	}
}

var apostropheFixes = map[string]string{
	"dont":   "don't",
	"doesnt": "doesn't",
	"didnt":  "didn't",
	"cant":   "can't",
	"wont":   "won't",
	"isnt":   "isn't",
	"arent":  "aren't",
}

// fallbackDetectErrors runs the deterministic pattern rules over the content.
func fallbackDetectErrors(content string) []ai.DetectedError {
	var detected []ai.DetectedError

	for _, rule := range fallbackRules {
		for _, loc := range rule.pattern.FindAllStringIndex(content, -1) {
			original := content[loc[0]:loc[1]]
			corrected := fallbackCorrection(rule, original)
			if corrected == original {
				continue
			}
			detected = append(detected, ai.DetectedError{
				Type:          rule.errorType,
				Severity:      rule.severity,
				OriginalText:  original,
				CorrectedText: corrected,
				Description:   rule.description,
				Suggestion:    rule.suggestion,
				Position:      loc[0],
			})
		}
	}

	sort.SliceStable(detected, func(i, j int) bool {
		return detected[i].Position < detected[j].Position
	})
	return detected
}

func fallbackCorrection(rule fallbackRule, original string) string {
	if rule.replacement != "" {
		return rule.pattern.ReplaceAllString(original, rule.replacement)
	}

	lower := strings.ToLower(original)
	if fixed, ok := apostropheFixes[lower]; ok {
		if original[0] >= 'A' && original[0] <= 'Z' {
			return strings.ToUpper(fixed[:1]) + fixed[1:]
		}
		return fixed
	}

	// Article rules swap the determiner and keep the noun.
	fields := strings.SplitN(original, " ", 2)
	if len(fields) != 2 {
		return original
	}
	switch strings.ToLower(fields[0]) {
	case "a":
		return fields[0] + "n " + fields[1]
	case "an":
		return fields[0][:1] + " " + fields[1]
	default:
		return original
	}
}
