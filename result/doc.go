// Package result turns matcher hits into rendered dictionary results.
//
// The Assembler merges hits by forward key, keeping the first occurrence and
// the stored order of entries within each key, caps the result and picks a
// view. Views trim what is shown, never what is matched:
//
//   - full: every sense with its complete text
//   - simple: the first sense of each part of speech
//   - list: translations only
//
// The auto view picks full, simple or list from the number of entries.
package result
