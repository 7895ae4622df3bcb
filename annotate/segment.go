package annotate

import (
	"context"
	"strings"

	"github.com/poiesic/lexidict/core"
	"github.com/poiesic/lexidict/normalize"
	"github.com/poiesic/lexidict/search"
)

// annotateParagraph runs the greedy longest-match scan over one paragraph.
func (a *Annotator) annotateParagraph(ctx context.Context, text string) ([]Span, error) {
	tokens := Split(text)
	lang := "en"
	if normalize.DetectScript(text) == core.ScriptCJK {
		lang = "ja"
	}

	var spans []Span
	plain := func(s string) {
		if n := len(spans); n > 0 && spans[n-1].Match == nil {
			spans[n-1].Text += s
			return
		}
		spans = append(spans, Span{Text: s})
	}

	for i := 0; i < len(tokens); {
		if !tokens[i].Word {
			plain(tokens[i].Text)
			i++
			continue
		}

		ends := a.windowEnds(tokens, i)
		matched := false
		for n := len(ends); n >= 1; n-- {
			last := ends[n-1]
			var surface strings.Builder
			for _, t := range tokens[i : last+1] {
				surface.WriteString(t.Text)
			}

			m, err := a.lookup(ctx, surface.String(), n == 1, tokens[i], lang)
			if err != nil {
				return nil, err
			}
			if m != nil {
				spans = append(spans, Span{Text: surface.String(), Match: m})
				i = last + 1
				matched = true
				break
			}
		}
		if !matched {
			plain(tokens[i].Text)
			i++
		}
	}
	return spans, nil
}

// windowEnds returns the token index of the last word of each window
// starting at start, shortest first. Windows extend over whitespace only.
func (a *Annotator) windowEnds(tokens []Token, start int) []int {
	ends := []int{start}
	for j := start + 1; len(ends) < a.maxPhrase && j < len(tokens); j++ {
		if tokens[j].Word {
			ends = append(ends, j)
			continue
		}
		if !isSpace(tokens[j].Text) {
			break
		}
	}
	return ends
}

// lookup resolves a window. Single words fall back to the inflection
// index and then to their base form.
func (a *Annotator) lookup(ctx context.Context, surface string, single bool, first Token, lang string) (*Match, error) {
	key := normalize.Normalize(surface)
	if key == "" {
		return nil, nil
	}
	if single && a.skipStops && (normalize.IsNumericWord(key) || normalize.IsStopWord(lang, key)) {
		return nil, nil
	}

	res, err := a.searcher.Search(ctx, search.Query{Text: key, Search: core.SearchExact})
	if err != nil || len(res.Hits) > 0 || !single {
		return a.gloss(res, err)
	}

	if normalize.DetectScript(key) == core.ScriptLatin {
		res, err = a.searcher.Search(ctx, search.Query{Text: key, Index: core.IndexInflection})
		if err != nil || len(res.Hits) > 0 {
			return a.gloss(res, err)
		}
	}

	if first.Base != "" {
		res, err = a.searcher.Search(ctx, search.Query{Text: first.Base, Search: core.SearchExact})
		return a.gloss(res, err)
	}
	return nil, nil
}

// gloss builds the match for the first hit of res. Reverse hits carry the
// English headwords as ruby; everything else carries translations.
func (a *Annotator) gloss(res *search.Result, err error) (*Match, error) {
	if err != nil || res == nil || len(res.Hits) == 0 {
		return nil, err
	}

	first := res.Hits[0]
	best := core.BestEntry(first.Entries)
	if best == nil {
		return nil, nil
	}

	var ruby []string
	if res.Index == core.IndexReverse {
		for _, h := range res.Hits {
			if e := core.BestEntry(h.Entries); e != nil {
				ruby = append(ruby, e.Word)
			}
			if len(ruby) == a.rubyCount {
				break
			}
		}
	} else {
		for _, t := range best.Translations {
			if t = strings.TrimSpace(t); t != "" {
				ruby = append(ruby, t)
			}
			if len(ruby) == a.rubyCount {
				break
			}
		}
	}

	return &Match{
		Key:   first.Key,
		Entry: *best,
		Ruby:  strings.Join(ruby, ", "),
		Popup: newPopup(best),
	}, nil
}
