package domain

import "errors"

var (
	// ErrFoodNotFound is returned when no database entry matches a food query
	ErrFoodNotFound = errors.New("food not found in database")

	// ErrFoodAmbiguous is returned when a partial food query matches more than one entry
	ErrFoodAmbiguous = errors.New("food query matches multiple entries")

	// ErrInvalidServingSize is returned when a matched entry has a non-positive serving size
	ErrInvalidServingSize = errors.New("food entry has invalid serving size")

	// ErrBlockNotFound is returned when a block ID is absent from the document store
	ErrBlockNotFound = errors.New("block not found in document store")

	// ErrStoreFailure is returned when the document store cannot be read or written
	ErrStoreFailure = errors.New("document store operation failed")

	// ErrCacheMiss is returned when a parsed block is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")
)
