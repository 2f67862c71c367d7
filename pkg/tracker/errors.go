// Package tracker coordinates extraction, history and tracking options per session.
package tracker

import "errors"

var (
	// ErrTrackingDisabled indicates that tracking is switched off in options.
	ErrTrackingDisabled = errors.New("tracking is disabled")
	// ErrNoProduct indicates that no price was detected on the page. This is
	// an expected outcome for non-product pages, surfaced as an explicit
	// "no product detected" state, never as a server failure.
	ErrNoProduct = errors.New("no product detected")
	// ErrFetchFailed indicates that the page could not be fetched after retries.
	ErrFetchFailed = errors.New("page fetch failed")
	// ErrUnknownOption indicates an unrecognized toggle option name.
	ErrUnknownOption = errors.New("unknown tracking option")
)
