package ingestion

import "errors"

var (
	// ErrWriterRequired is returned when a store writer is not provided.
	ErrWriterRequired = errors.New("store writer required")

	// ErrInvalidBatchSize is returned when the decode batch size is not positive.
	ErrInvalidBatchSize = errors.New("batch size must be greater than 0")

	// ErrInvalidLine is returned for an input line that cannot be decoded.
	ErrInvalidLine = errors.New("invalid input line")
)
