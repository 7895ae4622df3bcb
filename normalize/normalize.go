// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package normalize canonicalizes query and dictionary-key strings.
//
// Normalize is the single function every index key and every query passes
// through before a lookup. It is deterministic and idempotent:
//
//	Normalize(Normalize(s)) == Normalize(s)
//
// DetectScript classifies a string as Latin or CJK so callers can pick a
// default index. It never rejects input.
package normalize

import (
	"strings"
	"unicode"

	"github.com/poiesic/lexidict/core"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize returns the canonical lookup key for text.
//
// Steps: NFKC compatibility and width folding, lowercasing, trimming of
// leading and trailing punctuation, collapsing internal whitespace runs to a
// single space.
func Normalize(text string) string {
	s := foldCase(text)
	s = strings.TrimFunc(s, isTrimmable)
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(s), " ")
}

// foldCase applies NFKC and lowercasing until the string is stable.
// The two do not commute for a handful of code points.
func foldCase(s string) string {
	s = norm.NFKC.String(s)
	for i := 0; i < 3; i++ {
		next := norm.NFKC.String(strings.ToLower(s))
		if next == s {
			break
		}
		s = next
	}
	return s
}

func isTrimmable(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r)
}

// DetectScript returns core.ScriptCJK if any rune of text is Hiragana,
// Katakana or a Han ideograph, and core.ScriptLatin otherwise.
func DetectScript(text string) core.Script {
	for _, r := range text {
		if IsCJKRune(r) {
			return core.ScriptCJK
		}
	}
	return core.ScriptLatin
}

// IsCJKRune reports whether r is Hiragana, Katakana (including the prolonged
// sound mark) or a Han ideograph.
func IsCJKRune(r rune) bool {
	return unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Han, r) ||
		r == 'ー' || r == 'ｰ'
}

// RemoveDiacritics strips combining marks, e.g. "café" becomes "cafe".
func RemoveDiacritics(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}

// SplitWords splits text into normalized word tokens. A word is a run of
// letters, digits and marks, optionally joined by apostrophes or hyphens.
func SplitWords(text string) []string {
	var words []string
	for _, f := range strings.FieldsFunc(text, func(r rune) bool {
		return !isWordRune(r) && r != '\'' && r != '-'
	}) {
		if w := Normalize(strings.Trim(f, "'-")); w != "" {
			words = append(words, w)
		}
	}
	return words
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}
