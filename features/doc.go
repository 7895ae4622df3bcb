// Package features extracts weighted feature vectors for every headword
// in a dictionary store.
//
// Headwords are visited in grade pages. The features of an entry start
// from its own translations and are enriched with the features of its
// parents, children and related words, each scaled by how common the
// related word is relative to the entry. Scores are normalized so the
// strongest feature is 1.0.
package features
