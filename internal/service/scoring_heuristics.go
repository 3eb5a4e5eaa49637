package service

import (
	"math"
	"regexp"
	"strings"
)

// grammarRule pairs an error pattern with the weight its matches contribute
// to the deduction.
type grammarRule struct {
	pattern *regexp.Regexp
	weight  int
}

// grammarRules is the fixed weighted rule set shared by the grammar scoring
// heuristic and the fallback mistake detector.
var grammarRules = []grammarRule{
	{regexp.MustCompile(`(?i)\b(he|she|it)\s+(am|are)\b`), 3},
	{regexp.MustCompile(`(?i)\b(I|you|we|they)\s+is\b`), 3},
	{regexp.MustCompile(`(?i)\ba\s+[aeiou]`), 2},
	{regexp.MustCompile(`(?i)\ban\s+[^aeiou\s]`), 2},
	{regexp.MustCompile(`(?i)\bthere\s+is\s+\w+\s+(are|were)\b`), 2},
	{regexp.MustCompile(`(?i)\b(don't|doesn't|didn't)\s+\w+ed\b`), 3},
	{regexp.MustCompile(`\s{2,}`), 1},
	{regexp.MustCompile(`[a-z]\.[A-Z]`), 2},
}

var wordPattern = regexp.MustCompile(`\b\w+\b`)

// grammarHeuristicScore deducts min(40, errorWeight*2) from 100 and floors
// the result at 60.
func grammarHeuristicScore(text string) float64 {
	errorWeight := 0
	for _, rule := range grammarRules {
		matches := rule.pattern.FindAllString(text, -1)
		errorWeight += len(matches) * rule.weight
	}

	deduction := math.Min(40, float64(errorWeight*2))
	return math.Max(60, 100-deduction)
}

// vocabularyHeuristicScore scores lexical diversity and the share of long
// words: 60 + diversity*50 + advancedRatio*100, capped at 95.
func vocabularyHeuristicScore(text string) float64 {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	if len(words) == 0 {
		return 60
	}

	unique := make(map[string]struct{}, len(words))
	advanced := 0
	for _, word := range words {
		unique[word] = struct{}{}
		if len(word) > 7 {
			advanced++
		}
	}

	diversity := float64(len(unique)) / float64(len(words))
	advancedRatio := float64(advanced) / float64(len(words))

	score := 60 + diversity*50 + advancedRatio*100
	return math.Round(math.Min(95, score))
}

// structureHeuristicScore rewards word count, paragraphing and average
// sentence length bands, capped at 95. Writing only.
func structureHeuristicScore(text string) float64 {
	wordCount := len(wordPattern.FindAllString(text, -1))

	paragraphCount := 0
	for _, paragraph := range regexp.MustCompile(`\n\n+`).Split(text, -1) {
		if strings.TrimSpace(paragraph) != "" {
			paragraphCount++
		}
	}

	sentenceCount := 0
	for _, sentence := range regexp.MustCompile(`[.!?]+`).Split(text, -1) {
		if strings.TrimSpace(sentence) != "" {
			sentenceCount++
		}
	}

	score := 60.0

	switch {
	case wordCount >= 100 && wordCount <= 500:
		score += 15
	case wordCount >= 50 && wordCount < 100:
		score += 10
	}

	switch {
	case paragraphCount >= 2 && paragraphCount <= 5:
		score += 15
	case paragraphCount >= 1:
		score += 8
	}

	if sentenceCount > 0 {
		average := float64(wordCount) / float64(sentenceCount)
		if average >= 10 && average <= 25 {
			score += 10
		}
	}

	return math.Round(math.Min(95, score))
}

// durationPronunciationScore derives a pseudo-pronunciation score from the
// response duration: min(100, duration/120*50+30).
func durationPronunciationScore(durationSec int) float64 {
	return math.Min(100, float64(durationSec)/120*50+30)
}
