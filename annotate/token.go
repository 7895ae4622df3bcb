package annotate

import (
	"log/slog"
	"strings"
	"sync"
	"unicode"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
	"github.com/poiesic/lexidict/core"
	"github.com/poiesic/lexidict/normalize"
)

// Token is a word or the separator text between words.
type Token struct {
	Text string
	Word bool
	// Base is the dictionary form of a conjugated Japanese word, if it differs.
	Base string
}

// Split tokenizes a paragraph. Text containing Japanese is split with
// kagome; anything else with the Latin splitter. Concatenating the token
// texts always yields the input.
func Split(text string) []Token {
	if normalize.DetectScript(text) == core.ScriptCJK {
		if t := kagomeTokenizer(); t != nil {
			return splitJapanese(t, text)
		}
	}
	return splitLatin(text)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

func isJoiner(r rune) bool {
	return r == '\'' || r == '’' || r == '-'
}

// splitLatin keeps apostrophes and hyphens inside words ("don't",
// "mind-set") and treats every other non-word run as a separator.
func splitLatin(text string) []Token {
	var tokens []Token
	runes := []rune(text)
	for i := 0; i < len(runes); {
		start := i
		if isWordRune(runes[i]) {
			for i < len(runes) && (isWordRune(runes[i]) ||
				(isJoiner(runes[i]) && i+1 < len(runes) && isWordRune(runes[i+1]))) {
				i++
			}
			tokens = append(tokens, Token{Text: string(runes[start:i]), Word: true})
			continue
		}
		for i < len(runes) && !isWordRune(runes[i]) {
			i++
		}
		tokens = append(tokens, Token{Text: string(runes[start:i])})
	}
	return tokens
}

var (
	kagomeOnce sync.Once
	kagome     *tokenizer.Tokenizer
)

// kagomeTokenizer builds the shared tokenizer on first use. Loading the
// IPA dictionary is slow, and the tokenizer is safe for concurrent use.
func kagomeTokenizer() *tokenizer.Tokenizer {
	kagomeOnce.Do(func() {
		t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
		if err != nil {
			slog.Error("failed to load kagome tokenizer", "err", err)
			return
		}
		kagome = t
	})
	return kagome
}

// splitJapanese tokenizes with kagome. Text kagome drops, such as
// whitespace, is restored as separators.
func splitJapanese(t *tokenizer.Tokenizer, text string) []Token {
	var tokens []Token
	cursor := 0
	for _, kt := range t.Tokenize(text) {
		if kt.Surface == "" {
			continue
		}
		idx := strings.Index(text[cursor:], kt.Surface)
		if idx < 0 {
			continue
		}
		if idx > 0 {
			tokens = append(tokens, Token{Text: text[cursor : cursor+idx]})
		}
		cursor += idx + len(kt.Surface)

		if !strings.ContainsFunc(kt.Surface, isWordRune) {
			tokens = append(tokens, Token{Text: kt.Surface})
			continue
		}
		tok := Token{Text: kt.Surface, Word: true}
		if base, ok := kt.BaseForm(); ok && base != "*" && base != kt.Surface {
			tok.Base = base
		}
		tokens = append(tokens, tok)
	}
	if cursor < len(text) {
		tokens = append(tokens, Token{Text: text[cursor:]})
	}
	return mergeSeparators(tokens)
}

// mergeSeparators joins adjacent separator tokens.
func mergeSeparators(tokens []Token) []Token {
	out := tokens[:0]
	for _, t := range tokens {
		if n := len(out); n > 0 && !t.Word && !out[n-1].Word {
			out[n-1].Text += t.Text
			continue
		}
		out = append(out, t)
	}
	return out
}

func isSpace(text string) bool {
	return text != "" && strings.TrimFunc(text, unicode.IsSpace) == ""
}
