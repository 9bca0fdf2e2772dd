package docstore

import "errors"

// Sentinel kinds for document store errors.
var (
	ErrNotFound        = errors.New("document not found")
	ErrClosed          = errors.New("store closed")
	ErrInvalidDocument = errors.New("invalid document")
	ErrInvalidFilter   = errors.New("invalid filter")
)
