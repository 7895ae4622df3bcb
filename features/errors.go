package features

import "errors"

var (
	// ErrStoreRequired is returned when a store is not provided.
	ErrStoreRequired = errors.New("store required")

	// ErrInvalidMaxFeatures is returned when the feature cap is not positive.
	ErrInvalidMaxFeatures = errors.New("max features must be greater than 0")
)
