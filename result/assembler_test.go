package result

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/poiesic/lexidict/core"
	"github.com/poiesic/lexidict/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runEntry() core.Entry {
	return core.Entry{
		Word:          "run",
		Key:           "run",
		Pronunciation: "rʌn",
		Inflections:   core.Inflections{VerbPast: "ran", VerbPresentParticiple: "running"},
		Probability:   0.0006,
		Translations:  []string{"走る", "運営する"},
		Related:       []string{"runner"},
		Senses: []core.Sense{
			{Label: core.LabelWordNet, POS: core.POSVerb, Text: "move fast [-] of people [--] sprinting"},
			{Label: core.LabelWordNet, POS: core.POSNoun, Text: "an act of running"},
			{Label: core.LabelWiktionaryEN, POS: core.POSVerb, Text: "to manage"},
		},
	}
}

func hitsFor(words ...string) []search.Hit {
	hits := make([]search.Hit, len(words))
	for i, w := range words {
		hits[i] = search.Hit{Key: w, Source: w, Entries: []core.Entry{{Word: w, Key: w, Translations: []string{w + "訳"}}}, Rank: i}
	}
	return hits
}

func TestNewAssembler(t *testing.T) {
	_, err := NewAssembler(WithThresholds(10, 5))
	assert.ErrorIs(t, err, ErrInvalidThresholds)

	_, err = NewAssembler(WithThresholds(-1, 5))
	assert.ErrorIs(t, err, ErrInvalidThresholds)

	a, err := NewAssembler(WithThresholds(2, 4))
	require.NoError(t, err)
	assert.Equal(t, core.ViewFull, a.SelectView(2))
	assert.Equal(t, core.ViewSimple, a.SelectView(3))
	assert.Equal(t, core.ViewList, a.SelectView(5))
}

func TestSelectView_Defaults(t *testing.T) {
	a, err := NewAssembler()
	require.NoError(t, err)

	tests := []struct {
		count int
		want  core.ViewMode
	}{
		{0, core.ViewFull},
		{5, core.ViewFull},
		{6, core.ViewSimple},
		{30, core.ViewSimple},
		{31, core.ViewList},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, a.SelectView(tt.count), "count %d", tt.count)
	}
}

func TestMerge(t *testing.T) {
	first := hitsFor("mind", "thought")
	second := hitsFor("thought", "brain", "mind")
	merged := Merge(first, second)

	keys := make([]string, len(merged))
	for i, h := range merged {
		keys[i] = h.Key
	}
	assert.Equal(t, []string{"mind", "thought", "brain"}, keys)
	assert.Equal(t, 1, merged[1].Rank, "first occurrence wins")
}

func TestAssemble_PreservesEntryOrder(t *testing.T) {
	a, err := NewAssembler()
	require.NoError(t, err)

	res := &search.Result{
		Query:  "japan",
		Index:  core.IndexNormal,
		Search: core.SearchExact,
		Tier:   -1,
		Limit:  10,
		Hits: []search.Hit{{
			Key:    "japan",
			Source: "japan",
			Entries: []core.Entry{
				{Word: "Japan", Key: "japan", Probability: 0.001},
				{Word: "japan", Key: "japan", Probability: 0.5},
			},
		}},
	}

	out, err := a.Assemble(res, core.ViewAuto)
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	assert.Equal(t, "Japan", out.Items[0].Word)
	assert.Equal(t, "japan", out.Items[1].Word)
	assert.Equal(t, "full", out.View)
	assert.Nil(t, out.Tier)
	assert.Empty(t, out.Items[0].Source)
}

func TestAssemble_Cap(t *testing.T) {
	a, err := NewAssembler()
	require.NoError(t, err)

	words := make([]string, 40)
	for i := range words {
		words[i] = fmt.Sprintf("w%02d", i)
	}
	res := &search.Result{Query: "w", Tier: -1, Limit: 12, Hits: hitsFor(words...)}

	out, err := a.Assemble(res, core.ViewAuto)
	require.NoError(t, err)
	assert.Len(t, out.Items, 12)
	assert.Equal(t, "simple", out.View)
	assert.Equal(t, "w00", out.Items[0].Word)
	assert.Equal(t, "w11", out.Items[11].Word)

	res.Limit = 0
	out, err = a.Assemble(res, core.ViewAuto)
	require.NoError(t, err)
	assert.Len(t, out.Items, 40)
	assert.Equal(t, "list", out.View)
}

func TestAssemble_Views(t *testing.T) {
	a, err := NewAssembler()
	require.NoError(t, err)
	res := &search.Result{
		Query: "ran",
		Index: core.IndexInflection,
		Tier:  -1,
		Hits:  []search.Hit{{Key: "run", Source: "ran", Entries: []core.Entry{runEntry()}}},
	}

	t.Run("full", func(t *testing.T) {
		out, err := a.Assemble(res, core.ViewFull)
		require.NoError(t, err)
		item := out.Items[0]
		assert.Equal(t, "ran", item.Source)
		require.Len(t, item.Senses, 3)
		assert.Equal(t, []core.Section{
			{Level: 0, Text: "move fast"},
			{Level: 1, Text: "of people"},
			{Level: 2, Text: "sprinting"},
		}, item.Senses[0].Sections)
		assert.Equal(t, []string{"running", "ran"}, item.Inflections)
		assert.Equal(t, []string{"runner"}, item.Related)
	})

	t.Run("simple keeps first sense per part of speech", func(t *testing.T) {
		out, err := a.Assemble(res, core.ViewSimple)
		require.NoError(t, err)
		senses := out.Items[0].Senses
		require.Len(t, senses, 2)
		assert.Equal(t, "verb", senses[0].POS)
		assert.Equal(t, "wn", senses[0].Label)
		assert.Equal(t, "noun", senses[1].POS)
		assert.Len(t, senses[0].Sections, 1)
		assert.Empty(t, out.Items[0].Related)
	})

	t.Run("list keeps translations only", func(t *testing.T) {
		out, err := a.Assemble(res, core.ViewList)
		require.NoError(t, err)
		item := out.Items[0]
		assert.Equal(t, []string{"走る", "運営する"}, item.Translations)
		assert.Empty(t, item.Senses)
		assert.Empty(t, item.Pronunciation)
	})

	t.Run("invalid view", func(t *testing.T) {
		_, err := a.Assemble(res, core.ViewMode(9))
		assert.ErrorIs(t, err, core.ErrInvalidMode)
	})
}

func TestAssemble_GradeTier(t *testing.T) {
	a, err := NewAssembler()
	require.NoError(t, err)

	out, err := a.Assemble(&search.Result{Query: "2", Index: core.IndexGrade, Tier: 2, Limit: 500}, core.ViewList)
	require.NoError(t, err)
	require.NotNil(t, out.Tier)
	assert.Equal(t, 2, *out.Tier)
	assert.NotNil(t, out.Items)
}

func TestRenderJSON(t *testing.T) {
	a, err := NewAssembler()
	require.NoError(t, err)
	out, err := a.Assemble(&search.Result{Query: "run", Tier: -1, Hits: []search.Hit{{Key: "run", Source: "run", Entries: []core.Entry{runEntry()}}}}, core.ViewFull)
	require.NoError(t, err)

	compact, err := RenderJSON(out, false)
	require.NoError(t, err)
	assert.NotContains(t, string(compact), "\n")

	indented, err := RenderJSON(out, true)
	require.NoError(t, err)
	assert.Contains(t, string(indented), "\n  ")

	var decoded Result
	require.NoError(t, json.Unmarshal(indented, &decoded))
	assert.Equal(t, out.Items[0].Word, decoded.Items[0].Word)
	assert.Equal(t, out.Items[0].Senses, decoded.Items[0].Senses)
}

func TestRenderText(t *testing.T) {
	a, err := NewAssembler()
	require.NoError(t, err)
	res := &search.Result{Query: "ran", Tier: -1, Hits: []search.Hit{{Key: "run", Source: "ran", Entries: []core.Entry{runEntry()}}}}

	full, err := a.Assemble(res, core.ViewFull)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, full))
	text := buf.String()
	assert.True(t, strings.HasPrefix(text, "run /rʌn/ <- ran\n  走る, 運営する\n"), text)
	assert.Contains(t, text, "  [wn] verb: move fast\n")
	assert.Contains(t, text, "      - of people\n")
	assert.Contains(t, text, "        - sprinting\n")
	assert.Contains(t, text, "  see also: runner\n")

	list, err := a.Assemble(res, core.ViewList)
	require.NoError(t, err)
	buf.Reset()
	require.NoError(t, RenderText(&buf, list))
	assert.Equal(t, "run <- ran: 走る, 運営する\n", buf.String())

	buf.Reset()
	require.NoError(t, RenderText(&buf, &Result{Query: "zz"}))
	assert.Equal(t, "no results for \"zz\"\n", buf.String())
}
