package dataset

import "errors"

var (
	// ErrFileNotFound reports that the configured CSV file does not exist.
	ErrFileNotFound = errors.New("data file not found")

	// ErrMalformedData reports a CSV that does not match the expected
	// schema. The message names the offending line or column.
	ErrMalformedData = errors.New("malformed data")
)
