package intent

import (
	"regexp"
	"strings"
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// normalize lowercases, folds diacritics and splits into word tokens.
// Matching over normalized tokens keeps vocabulary lookups auditable
// compared to raw substring containment.
func normalize(s string) []string {
	return wordPattern.FindAllString(foldDiacritics(strings.ToLower(s)), -1)
}

// foldDiacritics maps accented letters to their ASCII base. The table
// covers the characters that occur in the dataset's country names
// (e.g. Türkiye, Côte d'Ivoire) rather than full Unicode folding.
func foldDiacritics(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case 'à', 'á', 'â', 'ã', 'ä', 'å':
			return 'a'
		case 'ç':
			return 'c'
		case 'è', 'é', 'ê', 'ë':
			return 'e'
		case 'ì', 'í', 'î', 'ï', 'ı':
			return 'i'
		case 'ñ':
			return 'n'
		case 'ò', 'ó', 'ô', 'õ', 'ö':
			return 'o'
		case 'ù', 'ú', 'û', 'ü':
			return 'u'
		case 'ý':
			return 'y'
		case 'ğ':
			return 'g'
		case 'ş', 'ß':
			return 's'
		}
		return r
	}, s)
}

// editDistance computes Levenshtein distance, used for the bounded fuzzy
// fallback when no exact vocabulary match fires.
func editDistance(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
