package gapfill

import (
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/pubminer/internal/core/domain"
)

var (
	// unexpectedChars matches characters outside letters, digits,
	// whitespace and '-', or a mention made only of digits and symbols.
	unexpectedChars = regexp.MustCompile(`[^a-zA-Z\d\s-]+|^[\d\W]+$`)

	// lowerPair matches two consecutive lower-case letters.
	lowerPair = regexp.MustCompile(`[a-z]{2,}`)
)

const (
	shortMentionLen = 4
	shortGeneKeyLen = 10
)

// Suppressed reports whether a dictionary hit is a likely false positive.
func Suppressed(mention, key string, entry domain.DictionaryEntry) bool {
	if utf8.RuneCountInString(mention) <= shortMentionLen && isLower(mention) {
		return true
	}
	if unexpectedChars.MatchString(mention) {
		return true
	}
	if entry.Type == domain.EntityGene &&
		utf8.RuneCountInString(key) <= shortGeneKeyLen &&
		lowerPair.MatchString(mention) {
		return true
	}
	return false
}

// isLower reports whether s has at least one cased character and no
// upper-case ones.
func isLower(s string) bool {
	cased := false
	for _, r := range s {
		switch {
		case unicode.IsUpper(r), unicode.IsTitle(r):
			return false
		case unicode.IsLower(r):
			cased = true
		}
	}
	return cased
}
