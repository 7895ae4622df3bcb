package annotate

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/poiesic/lexidict/core"
	"github.com/poiesic/lexidict/document"
	"github.com/poiesic/lexidict/search"
	"github.com/poiesic/lexidict/storage"
	"github.com/poiesic/lexidict/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFixture() badger.Fixture {
	return badger.Fixture{
		Entries: []core.Entry{
			{Word: "the", Probability: 0.05, Translations: []string{"その"}},
			{Word: "in", Probability: 0.02, Translations: []string{"中に"}},
			{
				Word:          "mind",
				Pronunciation: "maɪnd",
				Probability:   0.001,
				Translations:  []string{" 心 ", "精神", "知性", "気"},
				Senses: []core.Sense{
					{Label: core.LabelWordNet, POS: core.POSNoun, Text: "that which thinks [-] the seat of reason"},
				},
			},
			{Word: "in mind", Probability: 0.00009, Translations: []string{"心に留めて"}},
			{Word: "Japan", Probability: 0.002, Translations: []string{"日本"}},
			{Word: "japan", Probability: 0.00001, Translations: []string{"漆器"}},
			{Word: "run", Probability: 0.0006, Translations: []string{"走る"}},
			{Word: "go", Probability: 0.0009, Translations: []string{"行く"}},
		},
		Reverse: map[string][]string{
			"日本": {"japan"},
			"行く": {"go"},
		},
		Inflections: map[string][]string{
			"ran": {"run"},
		},
	}
}

func newTestAnnotator(t *testing.T, opts ...Option) *Annotator {
	t.Helper()
	store, err := badger.NewFixtureStore(context.Background(), testFixture())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	m, err := search.NewMatcher(store)
	require.NoError(t, err)
	a, err := NewAnnotator(m, opts...)
	require.NoError(t, err)
	t.Cleanup(a.Release)
	return a
}

func matched(spans []Span) []string {
	var keys []string
	for _, s := range spans {
		if s.Match != nil {
			keys = append(keys, s.Text+"="+s.Match.Key)
		}
	}
	return keys
}

func TestNewAnnotator(t *testing.T) {
	_, err := NewAnnotator(nil)
	assert.ErrorIs(t, err, ErrSearcherRequired)

	stub := &stubSearcher{}
	_, err = NewAnnotator(stub, WithMaxPhrase(0))
	assert.ErrorIs(t, err, ErrInvalidPhraseLength)

	_, err = NewAnnotator(stub, WithRubyCount(0))
	assert.ErrorIs(t, err, ErrInvalidRubyCount)

	a, err := NewAnnotator(stub, WithPoolSize(0), WithLogger(nil))
	require.NoError(t, err)
	assert.Equal(t, 1, a.PoolSize())
	a.Release()

	a, err = NewAnnotator(stub)
	require.NoError(t, err)
	assert.Equal(t, runtime.NumCPU(), a.PoolSize())
	a.Release()

	a, err = NewAnnotator(stub, WithPoolSize(3))
	require.NoError(t, err)
	assert.Equal(t, 3, a.PoolSize())
	a.Release()
}

func TestAnnotateText_GreedyLongestMatch(t *testing.T) {
	a := newTestAnnotator(t)

	spans, err := a.AnnotateText(context.Background(), "keep it in mind")
	require.NoError(t, err)
	require.Len(t, spans, 2)
	assert.Equal(t, Span{Text: "keep it "}, spans[0])
	require.NotNil(t, spans[1].Match)
	assert.Equal(t, "in mind", spans[1].Text)
	assert.Equal(t, "in mind", spans[1].Match.Key)
	assert.Equal(t, "心に留めて", spans[1].Match.Ruby)
}

func TestAnnotateText(t *testing.T) {
	a := newTestAnnotator(t)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"windows stop at punctuation", "in, mind", []string{"in=in", "mind=mind"}},
		{"inflection fallback", "He ran home.", []string{"ran=run"}},
		{"case folded", "JAPAN and Mind", []string{"JAPAN=japan", "Mind=mind"}},
		{"nothing known", "xyzzy plugh", nil},
		{"phrase across line break", "in\tmind", []string{"in\tmind=in mind"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans, err := a.AnnotateText(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, matched(spans))

			var rebuilt string
			for _, s := range spans {
				rebuilt += s.Text
			}
			assert.Equal(t, tt.text, rebuilt, "spans must cover the input")
		})
	}
}

func TestAnnotateText_Gloss(t *testing.T) {
	a := newTestAnnotator(t)
	ctx := context.Background()

	spans, err := a.AnnotateText(ctx, "mind")
	require.NoError(t, err)
	require.Len(t, spans, 1)
	m := spans[0].Match
	require.NotNil(t, m)
	assert.Equal(t, "心, 精神, 知性", m.Ruby)
	assert.Equal(t, "mind", m.Popup.Word)
	assert.Equal(t, "maɪnd", m.Popup.Pronunciation)
	require.Len(t, m.Popup.Senses, 1)
	assert.Equal(t, []core.Section{
		{Level: 0, Text: "that which thinks"},
		{Level: 1, Text: "the seat of reason"},
	}, m.Popup.Senses[0].Sections)

	spans, err = a.AnnotateText(ctx, "japan")
	require.NoError(t, err)
	require.NotNil(t, spans[0].Match)
	assert.Equal(t, "Japan", spans[0].Match.Entry.Word, "most probable entry wins")
	assert.Equal(t, "日本", spans[0].Match.Ruby)
}

func TestAnnotateText_RubyCount(t *testing.T) {
	a := newTestAnnotator(t, WithRubyCount(1))

	spans, err := a.AnnotateText(context.Background(), "mind")
	require.NoError(t, err)
	assert.Equal(t, "心", spans[0].Match.Ruby)
}

func TestAnnotateText_MaxPhrase(t *testing.T) {
	a := newTestAnnotator(t, WithMaxPhrase(1))

	spans, err := a.AnnotateText(context.Background(), "in mind")
	require.NoError(t, err)
	assert.Equal(t, []string{"in=in", "mind=mind"}, matched(spans))
}

func TestAnnotateText_SkipStopWords(t *testing.T) {
	a := newTestAnnotator(t, WithSkipStopWords(true))

	spans, err := a.AnnotateText(context.Background(), "the mind in 2024")
	require.NoError(t, err)
	assert.Equal(t, []string{"mind=mind", "in=in"}, matched(spans))

	plain := newTestAnnotator(t)
	spans, err = plain.AnnotateText(context.Background(), "the mind")
	require.NoError(t, err)
	assert.Equal(t, []string{"the=the", "mind=mind"}, matched(spans))
}

func TestAnnotateText_Japanese(t *testing.T) {
	a := newTestAnnotator(t)

	spans, err := a.AnnotateText(context.Background(), "日本に行った。")
	require.NoError(t, err)
	keys := matched(spans)
	require.NotEmpty(t, keys)
	assert.Equal(t, "日本=japan", keys[0])
	assert.Equal(t, "Japan", spans[0].Match.Ruby)
	assert.Contains(t, keys, "行っ=go", "conjugated verbs fall back to the base form")
}

func TestAnnotate_PageIndependence(t *testing.T) {
	a := newTestAnnotator(t)
	ctx := context.Background()

	doc := document.ParseString(`==== [META] ====
[title]: Notes
==== [PAGE] ====
[head1]: First
Keep it in mind.
==== [PAGE] ====
He ran to Japan.
`)
	require.Len(t, doc.Pages, 2)

	out, err := a.Annotate(ctx, doc)
	require.NoError(t, err)
	require.Len(t, out.Pages, 2)
	assert.Equal(t, "Notes", out.Title)

	alone, err := a.AnnotatePage(ctx, 0, doc.Pages[0])
	require.NoError(t, err)
	assert.Equal(t, out.Pages[0], alone)

	single, err := a.Annotate(ctx, &document.Document{Pages: doc.Pages[:1]})
	require.NoError(t, err)
	assert.Equal(t, out.Pages[0], single.Pages[0])

	assert.Equal(t, []Span{{Text: "First"}}, out.Pages[0].Blocks[0].Spans)
	assert.Equal(t, []string{"in mind=in mind"}, matched(out.Pages[0].Blocks[1].Spans))
	assert.Equal(t, []string{"ran=run", "Japan=japan"}, matched(out.Pages[1].Blocks[0].Spans))
}

func TestAnnotate_TOC(t *testing.T) {
	a := newTestAnnotator(t)

	doc := document.ParseString("==== [PAGE] ====\n[head1]: One\n[head2]: One A\ntext\n==== [PAGE] ====\nmore text\n")
	out, err := a.Annotate(context.Background(), doc)
	require.NoError(t, err)

	require.Len(t, out.TOC, 2)
	assert.Equal(t, out.Pages[0].ID, out.TOC[0].ID)
	assert.Equal(t, "One", out.TOC[0].Title)
	assert.Equal(t, []TOCHeading{{Level: 1, Text: "One"}, {Level: 2, Text: "One A"}}, out.TOC[0].Headings)
	assert.Equal(t, "Page 2", out.TOC[1].Title)
	assert.NotEqual(t, out.TOC[0].ID, out.TOC[1].ID)
	assert.Equal(t, PageID(1, doc.Pages[1]), out.TOC[1].ID)

	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, out))
	assert.Contains(t, buf.String(), "## One\n")
}

func TestAnnotate_StoreFailure(t *testing.T) {
	boom := errors.Join(storage.ErrStoreUnavailable, errors.New("disk gone"))
	a, err := NewAnnotator(&stubSearcher{err: boom})
	require.NoError(t, err)
	defer a.Release()

	_, err = a.Annotate(context.Background(), document.ParseString("a\n==== [PAGE] ====\nb"))
	assert.ErrorIs(t, err, storage.ErrStoreUnavailable)
}

func TestRenderText(t *testing.T) {
	a := newTestAnnotator(t)
	out, err := a.Annotate(context.Background(), document.ParseString("keep it in mind"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, out))
	assert.Contains(t, buf.String(), "keep it in mind{心に留めて}\n")
}

type stubSearcher struct {
	err error
}

func (s *stubSearcher) Search(ctx context.Context, q search.Query) (*search.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &search.Result{Query: q.Text, Tier: -1}, nil
}
