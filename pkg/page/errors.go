package page

import "errors"

var (
	// ErrUnparseableDocument indicates that the page HTML could not be parsed.
	ErrUnparseableDocument = errors.New("unparseable document")
	// ErrInvalidLocation indicates that the page URL could not be parsed.
	ErrInvalidLocation = errors.New("invalid page location")
)
