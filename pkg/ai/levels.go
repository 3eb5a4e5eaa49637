package ai

import "strings"

// Level is a CEFR proficiency band, A1 (beginner) through C2 (near-native).
type Level string

// The six CEFR bands in ascending order.
const (
	LevelA1 Level = "A1"
	LevelA2 Level = "A2"
	LevelB1 Level = "B1"
	LevelB2 Level = "B2"
	LevelC1 Level = "C1"
	LevelC2 Level = "C2"
)

// DefaultLevel is assumed when a submission carries no usable level.
const DefaultLevel = LevelB1

// Levels lists the bands in ascending order.
var Levels = []Level{LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2}

// NormalizeLevel maps arbitrary input onto a known band, defaulting to B1.
func NormalizeLevel(raw string) Level {
	candidate := Level(strings.ToUpper(strings.TrimSpace(raw)))
	for _, level := range Levels {
		if level == candidate {
			return level
		}
	}
	return DefaultLevel
}

// levelExpectation states what grammar, vocabulary and structure a band is
// expected to control. The text is embedded verbatim into scoring prompts.
type levelExpectation struct {
	Grammar      string
	Vocabulary   string
	Structure    string
	Expectations string
}

var levelExpectations = map[Level]levelExpectation{
	LevelA1: {
		Grammar:      "Basic sentence structures, present simple tense, simple subject-verb agreement",
		Vocabulary:   "Very basic vocabulary (300-500 words), familiar everyday expressions",
		Structure:    "Single short sentences, basic connectors (and, but)",
		Expectations: "Can use basic phrases and simple sentences about personal details and immediate needs",
	},
	LevelA2: {
		Grammar:      "Present/past simple, basic questions, simple negatives",
		Vocabulary:   "Elementary vocabulary (1000-1500 words), common everyday topics",
		Structure:    "Simple linked sentences, basic time expressions",
		Expectations: "Can communicate in simple tasks, describe background, immediate environment",
	},
	LevelB1: {
		Grammar:      "Various tenses (present perfect, continuous), conditionals, passive voice basics",
		Vocabulary:   "Intermediate vocabulary (2500-3000 words), opinions and abstract topics",
		Structure:    "Connected paragraphs, clear main points, reasons and explanations",
		Expectations: "Can produce connected text, describe experiences, give reasons for opinions",
	},
	LevelB2: {
		Grammar:      "Complex sentences, all tenses, reported speech, modal verbs nuances",
		Vocabulary:   "Upper-intermediate vocabulary (4000-5000 words), abstract and specialized topics",
		Structure:    "Well-organized arguments, clear logical flow, cohesive devices",
		Expectations: "Can produce clear, detailed text on complex subjects, explain viewpoints",
	},
	LevelC1: {
		Grammar:      "Sophisticated structures, nuanced tense usage, complex clauses",
		Vocabulary:   "Advanced vocabulary (6000-8000 words), idiomatic expressions, formal register",
		Structure:    "Well-structured extended discourse, flexible use of organizational patterns",
		Expectations: "Can produce clear, well-structured text on complex subjects with controlled use of patterns",
	},
	LevelC2: {
		Grammar:      "Native-like accuracy and appropriateness, subtle distinctions",
		Vocabulary:   "Near-native vocabulary, subtle connotations, specialized terminology",
		Structure:    "Sophisticated argumentation, seamless cohesion, stylistic flexibility",
		Expectations: "Can produce clear, smoothly flowing text in an appropriate style with logical structure",
	},
}

// levelErrorFocus scopes error detection to what matters at each band.
var levelErrorFocus = map[Level]string{
	LevelA1: "Focus on basic errors: subject-verb agreement, basic word order, very common vocabulary mistakes",
	LevelA2: "Focus on elementary errors: simple tense usage, basic prepositions, common spelling mistakes",
	LevelB1: "Focus on intermediate errors: tense consistency, article usage, connectors, vocabulary precision",
	LevelB2: "Focus on upper-intermediate errors: complex grammar, collocation errors, register appropriateness",
	LevelC1: "Focus on advanced errors: nuanced grammar, idiomatic usage, style consistency, subtle vocabulary choices",
	LevelC2: "Focus on near-native errors: stylistic issues, subtle register shifts, sophisticated vocabulary choices",
}

// levelFeedbackGuidance adjusts feedback tone and vocabulary to the band.
var levelFeedbackGuidance = map[Level]string{
	LevelA1: "Use very simple language. Focus on basic achievements. Keep recommendations simple and achievable.",
	LevelA2: "Use simple, clear language. Celebrate progress in everyday communication. Give practical tips.",
	LevelB1: "Use clear language with some complexity. Acknowledge growing independence. Suggest intermediate resources.",
	LevelB2: "Be more detailed in feedback. Discuss nuances. Recommend advanced practice techniques.",
	LevelC1: "Provide sophisticated feedback. Discuss subtle improvements. Suggest professional/academic resources.",
	LevelC2: "Give expert-level feedback. Focus on refinement and style. Recommend mastery-level resources.",
}

// levelDescription is a one-line characterization used by authoring prompts.
var levelDescription = map[Level]string{
	LevelA1: "absolute beginner with very basic vocabulary (300-500 words), present simple tense only",
	LevelA2: "elementary level with simple sentence structures, present and past simple",
	LevelB1: "intermediate with everyday vocabulary, various tenses, can express opinions",
	LevelB2: "upper-intermediate with complex sentences, abstract topics, clear argumentation",
	LevelC1: "advanced with sophisticated vocabulary, nuanced opinions, idiomatic expressions",
	LevelC2: "proficient with native-like expressions, subtle meanings, academic register",
}

func (l Level) expectation() levelExpectation {
	if e, ok := levelExpectations[l]; ok {
		return e
	}
	return levelExpectations[DefaultLevel]
}

func (l Level) errorFocus() string {
	if f, ok := levelErrorFocus[l]; ok {
		return f
	}
	return levelErrorFocus[DefaultLevel]
}

func (l Level) feedbackGuidance() string {
	if g, ok := levelFeedbackGuidance[l]; ok {
		return g
	}
	return levelFeedbackGuidance[DefaultLevel]
}

func (l Level) description() string {
	if d, ok := levelDescription[l]; ok {
		return d
	}
	return levelDescription[DefaultLevel]
}
