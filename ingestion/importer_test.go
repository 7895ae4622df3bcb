package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/poiesic/lexidict/core"
	"github.com/poiesic/lexidict/storage"
	"github.com/poiesic/lexidict/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDump = `{"word": "mind", "probability": 0.0004, "translation": ["心", "精神"], "senses": [{"label": "wn", "pos": "noun", "text": "that which thinks"}], "unknown": 1}
{"word": "run", "probability": "0.0009", "translation": ["走る"], "inflections": {"verb_past": "ran", "verb_singular": "runs", "verb_present_participle": "running"}}
not json at all
{"word": "Japan", "probability": 0.0002, "translation": ["日本"]}

{"word": "japan", "probability": 0.00001, "translation": ["漆器"], "senses": [{"label": "wn", "pos": "noun", "text": "lacquerware"}]}
{"word": "heart", "probability": 0.0003, "translation": ["心"]}
{"word": "bad", "senses": [{"label": "zz", "pos": "noun", "text": "unknown label"}]}
{"word": "", "probability": 0.1}
`

func newTestImporter(t *testing.T, opts ...Option) (*Importer, *badger.Store) {
	t.Helper()
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	im, err := NewImporter(store, append([]Option{WithPoolSize(2), WithBatchSize(2)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(im.Release)
	return im, store
}

func rankedKeys(t *testing.T, store storage.Store, family storage.Family) []string {
	t.Helper()
	var keys []string
	err := store.ScanRankedKeys(context.Background(), family, 0, func(rank int, key string) bool {
		keys = append(keys, key)
		return true
	})
	require.NoError(t, err)
	return keys
}

func TestNewImporter(t *testing.T) {
	_, err := NewImporter(nil)
	assert.ErrorIs(t, err, ErrWriterRequired)

	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	_, err = NewImporter(store, WithBatchSize(0))
	assert.ErrorIs(t, err, ErrInvalidBatchSize)

	im, err := NewImporter(store, WithPoolSize(0), WithLogger(nil))
	require.NoError(t, err)
	im.Release()
}

func TestDecodeEntry(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr bool
		check   func(t *testing.T, e core.Entry)
	}{
		{
			name: "full record",
			line: `{"word": " Run ", "pronunciation": "rʌn", "probability": 0.5, "translation": ["走る"], "related": ["runner"], "parent": ["move"], "child": ["sprint"], "cooccurrence": ["fast"], "inflections": {"verb_past": "ran"}, "senses": [{"label": "we", "pos": "verb", "text": "move fast", "synonym": ["dash"]}]}`,
			check: func(t *testing.T, e core.Entry) {
				assert.Equal(t, " Run ", e.Word)
				assert.Equal(t, "run", e.Key)
				assert.Equal(t, "ran", e.Inflections.VerbPast)
				assert.Equal(t, []string{"dash"}, e.Senses[0].Synonyms)
				assert.Equal(t, []string{"move"}, e.Parents)
				assert.Equal(t, []string{"sprint"}, e.Children)
				assert.InDelta(t, 0.5, e.Probability, 1e-9)
			},
		},
		{
			name: "probability as string",
			line: `{"word": "a", "probability": "0.25"}`,
			check: func(t *testing.T, e core.Entry) {
				assert.InDelta(t, 0.25, e.Probability, 1e-9)
			},
		},
		{name: "malformed json", line: `{"word":`, wantErr: true},
		{name: "empty word", line: `{"word": ""}`, wantErr: true},
		{name: "probability out of range", line: `{"word": "a", "probability": 2}`, wantErr: true},
		{name: "unknown pos", line: `{"word": "a", "senses": [{"label": "wn", "pos": "verbish"}]}`, wantErr: true},
		{name: "bad probability string", line: `{"word": "a", "probability": "high"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := DecodeEntry([]byte(tt.line))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLine)
				return
			}
			require.NoError(t, err)
			tt.check(t, e)
		})
	}
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	im, store := newTestImporter(t)

	stats, err := im.Import(ctx, strings.NewReader(sampleDump))
	require.NoError(t, err)
	assert.Equal(t, 9, stats.Lines)
	assert.Equal(t, 5, stats.Entries)
	assert.Equal(t, 3, stats.Skipped)
	assert.Equal(t, 4, stats.ForwardKeys)

	t.Run("entries sharing a key keep input order", func(t *testing.T) {
		entries, err := store.GetForward(ctx, "japan")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "Japan", entries[0].Word)
		assert.Equal(t, "japan", entries[1].Word)
	})

	t.Run("forward rank by best probability", func(t *testing.T) {
		assert.Equal(t, []string{"run", "mind", "heart", "japan"}, rankedKeys(t, store, storage.Forward))
	})

	t.Run("reverse index follows forward rank", func(t *testing.T) {
		targets, err := store.GetReverse(ctx, "心")
		require.NoError(t, err)
		assert.Equal(t, []string{"mind", "heart"}, targets)

		targets, err = store.GetReverse(ctx, "漆器")
		require.NoError(t, err)
		assert.Equal(t, []string{"japan"}, targets)

		assert.Equal(t, []string{"走る", "心", "精神", "日本", "漆器"}, rankedKeys(t, store, storage.Reverse))
	})

	t.Run("inflection index", func(t *testing.T) {
		for _, form := range []string{"ran", "runs", "running"} {
			lemmas, err := store.GetInflection(ctx, form)
			require.NoError(t, err)
			assert.Equal(t, []string{"run"}, lemmas, form)
		}
	})
}

func TestImportReplacesRankedLists(t *testing.T) {
	ctx := context.Background()
	im, store := newTestImporter(t)

	_, err := im.Import(ctx, strings.NewReader(sampleDump))
	require.NoError(t, err)

	_, err = im.Import(ctx, strings.NewReader(`{"word": "solo", "probability": 0.1}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"solo"}, rankedKeys(t, store, storage.Forward))
	count, err := store.RankedKeyCount(ctx, storage.Reverse)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestImportCanceled(t *testing.T) {
	im, _ := newTestImporter(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := im.Import(ctx, strings.NewReader(sampleDump))
	assert.ErrorIs(t, err, context.Canceled)
}

// failingWriter rejects every forward write.
type failingWriter struct {
	storage.Writer
}

func (failingWriter) PutForward(ctx context.Context, key string, entries []core.Entry) error {
	return errors.New("disk full")
}

func TestImportWriteFailure(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	im, err := NewImporter(failingWriter{Writer: store}, WithLogger(slog.Default()))
	require.NoError(t, err)
	defer im.Release()

	_, err = im.Import(context.Background(), strings.NewReader(`{"word": "a"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestImportCooccurrence(t *testing.T) {
	ctx := context.Background()
	im, store := newTestImporter(t)

	input := "mind\t120\tbody 300\tsoul 200\n" +
		"broken line\n" +
		"\tno word\n" +
		"heart\t80\tblood 100\n" +
		" Japan \t90\tTokyo 120\n"

	n, err := im.ImportCooccurrence(ctx, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	record, err := store.GetCooccurrence(ctx, "japan")
	require.NoError(t, err)
	assert.Equal(t, "90\tTokyo 120", record)

	record, err = store.GetCooccurrence(ctx, "mind")
	require.NoError(t, err)
	assert.Equal(t, "120\tbody 300\tsoul 200", record)

	record, err = store.GetCooccurrence(ctx, "broken line")
	require.NoError(t, err)
	assert.Empty(t, record)
}
