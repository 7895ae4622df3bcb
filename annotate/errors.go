package annotate

import "errors"

var (
	// ErrSearcherRequired is returned when a searcher is not provided.
	ErrSearcherRequired = errors.New("searcher required")

	// ErrInvalidPhraseLength is returned when the maximum phrase length is not positive.
	ErrInvalidPhraseLength = errors.New("max phrase length must be greater than 0")

	// ErrInvalidRubyCount is returned when the ruby translation count is not positive.
	ErrInvalidRubyCount = errors.New("ruby translation count must be greater than 0")
)
