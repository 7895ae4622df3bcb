package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

var numericWord = regexp.MustCompile(`^[-0-9.]+$`)

// IsNumericWord reports whether word consists only of digits, dots and hyphens.
func IsNumericWord(word string) bool {
	return numericWord.MatchString(word)
}

var englishStopWords = map[string]bool{"the": true, "a": true, "an": true}

// IsStopWord reports whether word carries little lexical weight in language
// ("en" or "ja"). Any word containing an ASCII digit is a stop word.
func IsStopWord(language, word string) bool {
	if strings.ContainsAny(word, "0123456789") {
		return true
	}
	switch language {
	case "en":
		return englishStopWords[word]
	case "ja":
		return allRunes(word, func(r rune) bool {
			return unicode.Is(unicode.Hiragana, r) || r == 'ー'
		}) || allRunes(word, func(r rune) bool {
			return r == '年' || r == '月' || r == '日'
		}) || strings.IndexFunc(word, func(r rune) bool {
			return unicode.Is(unicode.Latin, r)
		}) >= 0
	}
	return false
}

// allRunes is true for the empty string, matching a "^[...]*$" pattern.
func allRunes(s string, fn func(rune) bool) bool {
	for _, r := range s {
		if !fn(r) {
			return false
		}
	}
	return true
}
