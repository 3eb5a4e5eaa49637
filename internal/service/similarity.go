package service

// levenshteinDistance computes the classical edit distance between two
// strings with unit insert, delete and substitute costs.
func levenshteinDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	previous := make([]int, len(ra)+1)
	current := make([]int, len(ra)+1)
	for j := 0; j <= len(ra); j++ {
		previous[j] = j
	}

	for i := 1; i <= len(rb); i++ {
		current[0] = i
		for j := 1; j <= len(ra); j++ {
			if rb[i-1] == ra[j-1] {
				current[j] = previous[j-1]
				continue
			}
			substitute := previous[j-1]
			insert := current[j-1]
			remove := previous[j]
			best := substitute
			if insert < best {
				best = insert
			}
			if remove < best {
				best = remove
			}
			current[j] = best + 1
		}
		previous, current = current, previous
	}

	return previous[len(ra)]
}

// stringSimilarity returns the normalized edit-distance similarity between
// two strings: (maxLen - distance) / maxLen. Two empty strings are identical
// by convention.
func stringSimilarity(a, b string) float64 {
	longer, shorter := a, b
	if len([]rune(b)) > len([]rune(a)) {
		longer, shorter = b, a
	}

	longerLen := len([]rune(longer))
	if longerLen == 0 {
		return 1.0
	}

	distance := levenshteinDistance(longer, shorter)
	return float64(longerLen-distance) / float64(longerLen)
}

// gradeBySimilarity maps a similarity onto the short-answer credit bands.
func gradeBySimilarity(similarity float64) float64 {
	switch {
	case similarity >= 0.9:
		return 1
	case similarity >= 0.7:
		return 0.75
	case similarity >= 0.5:
		return 0.5
	default:
		return 0
	}
}
