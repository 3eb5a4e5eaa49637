package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevenshteinDistance(t *testing.T) {
	require.Equal(t, 3, levenshteinDistance("kitten", "sitting"))
	require.Equal(t, 0, levenshteinDistance("hello", "hello"))
	require.Equal(t, 5, levenshteinDistance("", "hello"))
	require.Equal(t, 1, levenshteinDistance("cat", "cart"))
}

func TestStringSimilarity(t *testing.T) {
	require.Equal(t, 1.0, stringSimilarity("identical", "identical"))
	require.Equal(t, 1.0, stringSimilarity("", ""))
	require.Equal(t, 0.0, stringSimilarity("", "abc"))
	require.InDelta(t, 0.6, stringSimilarity("paris", "parma"), 0.0001)
}

func TestGradeBySimilarity(t *testing.T) {
	require.Equal(t, 1.0, gradeBySimilarity(0.95))
	require.Equal(t, 0.75, gradeBySimilarity(0.8))
	require.Equal(t, 0.5, gradeBySimilarity(0.6))
	require.Equal(t, 0.0, gradeBySimilarity(0.4))
}

func TestGrammarHeuristicScore(t *testing.T) {
	// One subject-verb agreement hit deducts twice its weight.
	require.Equal(t, 94.0, grammarHeuristicScore("he are my friend"))
	require.Equal(t, 100.0, grammarHeuristicScore("She is my friend."))
	// The deduction is capped so pathological text still floors at 60.
	require.GreaterOrEqual(t, grammarHeuristicScore("he are she are it are they is we is I is a apple an dog"), 60.0)
}

func TestVocabularyHeuristicScoreRange(t *testing.T) {
	require.Equal(t, 60.0, vocabularyHeuristicScore(""))

	repetitive := vocabularyHeuristicScore("the the the the the the the the")
	varied := vocabularyHeuristicScore("magnificent architecture fascinated curious travellers exploring distant countries")
	require.Greater(t, varied, repetitive)
	require.LessOrEqual(t, varied, 95.0)
}

func TestStructureHeuristicScoreBands(t *testing.T) {
	short := structureHeuristicScore("Too short.")
	require.Less(t, short, 70.0)

	var sb []byte
	for i := 0; i < 12; i++ {
		sb = append(sb, "This is a sentence with exactly ten words in it. "...)
	}
	body := string(sb)
	structured := structureHeuristicScore(body + "\n\n" + body)
	require.Greater(t, structured, short)
	require.LessOrEqual(t, structured, 95.0)
}
