package search

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/poiesic/lexidict/core"
)

// scanPredicate reports whether a ranked key matches the query.
type scanPredicate func(key, q string) bool

func predicateFor(mode core.SearchMode) scanPredicate {
	switch mode {
	case core.SearchPrefix:
		return strings.HasPrefix
	case core.SearchSuffix:
		return strings.HasSuffix
	case core.SearchContain:
		return strings.Contains
	case core.SearchWord:
		return containsWord
	}
	return nil
}

// containsWord reports whether q occurs in key as a token delimited by the
// key boundaries, whitespace or a hyphen.
func containsWord(key, q string) bool {
	if q == "" {
		return false
	}
	for offset := 0; offset <= len(key)-len(q); {
		i := strings.Index(key[offset:], q)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(q)
		if isWordBoundary(key, start, true) && isWordBoundary(key, end, false) {
			return true
		}
		_, size := utf8.DecodeRuneInString(key[start:])
		offset = start + size
	}
	return false
}

// isWordBoundary checks the rune before (before=true) or at pos.
func isWordBoundary(s string, pos int, before bool) bool {
	var r rune
	if before {
		if pos == 0 {
			return true
		}
		r, _ = utf8.DecodeLastRuneInString(s[:pos])
	} else {
		if pos >= len(s) {
			return true
		}
		r, _ = utf8.DecodeRuneInString(s[pos:])
	}
	return r == '-' || unicode.IsSpace(r)
}
