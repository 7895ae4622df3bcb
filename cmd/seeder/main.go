package main

import (
	"bufio"
	"context"
	"flag"
	"iter"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/lexidict/ingestion"
	"github.com/poiesic/lexidict/storage/badger"
)

var entries = []string{
	`{"word": "the", "probability": 0.05, "translation": ["その"]}`,
	`{"word": "in", "probability": 0.02, "translation": ["中に", "で"]}`,
	`{"word": "time", "pronunciation": "taɪm", "probability": 0.0016, "translation": ["時間", "時", "回"], "senses": [{"label": "wn", "pos": "noun", "text": "the continuum of experience in which events pass", "hyponym": ["future", "past"]}], "child": ["hour"]}`,
	`{"word": "run", "pronunciation": "rʌn", "probability": 0.0009, "translation": ["走る", "運営する"], "senses": [{"label": "wn", "pos": "verb", "text": "move fast by using one's feet", "synonym": ["sprint"]}], "inflections": {"verb_past": "ran", "verb_singular": "runs", "verb_present_participle": "running", "verb_past_participle": "run"}}`,
	`{"word": "heart", "pronunciation": "hɑːt", "probability": 0.0008, "translation": ["心臓", "心", "中心"], "senses": [{"label": "wn", "pos": "noun", "text": "the hollow muscular organ that pumps blood"}], "related": ["mind"]}`,
	`{"word": "mind", "pronunciation": "maɪnd", "probability": 0.0007, "translation": ["心", "精神", "頭"], "senses": [{"label": "wn", "pos": "noun", "text": "that which is responsible for thought and feeling"}, {"label": "wn", "pos": "verb", "text": "be offended or bothered by"}], "parent": ["thought"], "related": ["brain", "heart"], "inflections": {"noun_plural": "minds"}}`,
	`{"word": "city", "probability": 0.0006, "translation": ["都市", "市"], "inflections": {"noun_plural": "cities"}}`,
	`{"word": "river", "probability": 0.0004, "translation": ["川", "河"], "inflections": {"noun_plural": "rivers"}}`,
	`{"word": "thought", "probability": 0.0004, "translation": ["考え", "思考"], "senses": [{"label": "wn", "pos": "noun", "text": "the organized beliefs of a period or group"}]}`,
	`{"word": "brain", "probability": 0.0003, "translation": ["脳", "頭脳"], "inflections": {"noun_plural": "brains"}}`,
	`{"word": "moon", "probability": 0.0003, "translation": ["月"]}`,
	`{"word": "in mind", "probability": 0.0002, "translation": ["心に留めて"]}`,
	`{"word": "lighthouse", "probability": 0.00002, "translation": ["灯台"]}`,
	`{"word": "stalactite", "probability": 0.000001, "translation": ["鍾乳石"]}`,
}

var cooccurrences = []string{
	"mind\t1000\tbrain 800\tthought 600\theart 300",
	"brain\t1200\tmind 700\tthought 650",
	"thought\t900\tmind 750\tbrain 500",
	"heart\t700\tmind 400\tblood 380",
	"river\t800\tmoon 120\tcity 200",
}

var (
	seedFileName = flag.String("src", "", "JSON-lines dictionary dump")
	coocFileName = flag.String("cooc", "", "file of cooccurrence records")
	dbPath       = flag.String("db", "./lexidict.db", "store directory")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

// linesFromSlice returns an iterator over a slice of strings.
func linesFromSlice(lines []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}
}

// source picks the lines of filename, or fallback when no file is given.
func source(filename string, fallback []string) (iter.Seq[string], error) {
	if filename != "" {
		return linesFromFile(filename)
	}
	return linesFromSlice(fallback), nil
}

// joinLines collects a line iterator into newline-terminated text.
func joinLines(lines iter.Seq[string]) *strings.Reader {
	var sb strings.Builder
	for line := range lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return strings.NewReader(sb.String())
}

func main() {
	store, err := badger.Open(*dbPath, badger.ReadWrite)
	if err != nil {
		panic(err)
	}
	defer store.Close()

	importer, err := ingestion.NewImporter(store)
	if err != nil {
		panic(err)
	}
	defer importer.Release()

	ctx := context.Background()

	dump, err := source(*seedFileName, entries)
	if err != nil {
		panic(err)
	}
	if _, err := importer.Import(ctx, joinLines(dump)); err != nil {
		panic(err)
	}

	records, err := source(*coocFileName, cooccurrences)
	if err != nil {
		panic(err)
	}
	if _, err := importer.ImportCooccurrence(ctx, joinLines(records)); err != nil {
		panic(err)
	}
}
