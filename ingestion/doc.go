// Package ingestion builds a dictionary store from a JSON-lines dump.
//
// Each input line is one headword:
//
//	{"word": "run", "probability": 0.0006, "translation": ["走る"],
//	 "inflections": {"verb_past": "ran"}, "senses": [{"label": "wn",
//	 "pos": "verb", "text": "move fast"}], "related": ["runner"]}
//
// Unknown fields are ignored. Lines are decoded concurrently on a worker
// pool and regrouped in input order, so entries sharing a normalized key
// keep the order of the dump. The Importer derives every index the lookup
// engine reads: forward records, the reverse index from translations, the
// inflection index from inflection slots, and both ranked key lists.
package ingestion
