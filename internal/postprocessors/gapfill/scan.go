package gapfill

import (
	"strings"
	"unicode"
)

// Match is a dictionary hit in passage text. Start and End are character
// offsets relative to the passage.
type Match struct {
	// Key is the lower-cased dictionary key that matched.
	Key string

	Start int
	End   int
}

// token is a half-open character range of a word.
type token struct {
	start, end int
}

// isWord reports whether r is a word character.
func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// tokenize splits text at every non-word character. Consecutive
// separators yield empty tokens so token positions map back to text.
func tokenize(runes []rune) []token {
	tokens := make([]token, 0, len(runes)/4+1)
	start := 0
	for i, r := range runes {
		if !isWord(r) {
			tokens = append(tokens, token{start, i})
			start = i + 1
		}
	}
	return append(tokens, token{start, len(runes)})
}

// Scan performs forward maximum matching: at each token position it tries
// windows of up to window tokens, longest first, and on a hit emits the
// match and resumes after it.
func Scan(text string, window int, lookup func(key string) bool) []Match {
	if text == "" || window <= 0 {
		return nil
	}

	runes := []rune(text)
	folded := make([]rune, len(runes))
	for i, r := range runes {
		if isWord(r) {
			folded[i] = unicode.ToLower(r)
		} else {
			folded[i] = ' '
		}
	}

	tokens := tokenize(runes)
	var matches []Match
	for i := 0; i < len(tokens); {
		end := min(i+window, len(tokens))
		next := i + 1
		for j := end; j > i; j-- {
			start, stop := tokens[i].start, tokens[j-1].end
			if stop <= start {
				continue
			}
			key := string(folded[start:stop])
			if strings.TrimSpace(key) == "" || !lookup(key) {
				continue
			}
			matches = append(matches, Match{Key: key, Start: start, End: stop})
			next = j
			break
		}
		i = next
	}
	return matches
}
