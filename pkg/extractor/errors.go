package extractor

import "errors"

var (
	// ErrNoCandidate indicates that a stage (or the whole pipeline) found no
	// usable price. This is a normal outcome, not a failure.
	ErrNoCandidate = errors.New("no price candidate found")
	// ErrAmountNotParseable indicates that a text did not match the amount pattern.
	ErrAmountNotParseable = errors.New("amount not parseable")
	// ErrAmountOutOfRange indicates that a parsed amount is outside the accepted band.
	ErrAmountOutOfRange = errors.New("amount out of range")
	// ErrNoTitle indicates that every title source was empty after trimming.
	ErrNoTitle = errors.New("no product title found")
)
