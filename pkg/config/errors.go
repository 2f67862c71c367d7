package config

import "errors"

var (
	// ErrInvalidStorageType indicates that the storage type is unknown.
	ErrInvalidStorageType = errors.New("invalid storage type")
	// ErrStoragePathRequired indicates that a database path is required for sqlite.
	ErrStoragePathRequired = errors.New("storage path must be specified for sqlite")
	// ErrInvalidAmountRange indicates that min_amount/max_amount are inconsistent.
	ErrInvalidAmountRange = errors.New("min_amount must be positive and below max_amount")
	// ErrInvalidRetries indicates that fetch retries cannot be negative.
	ErrInvalidRetries = errors.New("fetch retries cannot be negative")
	// ErrSiteRuleHostRequired indicates that a site rule is missing a host pattern.
	ErrSiteRuleHostRequired = errors.New("site rule must specify a host pattern")
	// ErrSiteRuleSelectorsRequired indicates that a site rule has no selectors.
	ErrSiteRuleSelectorsRequired = errors.New("site rule must specify at least one selector")
	// ErrInvalidLogLevel indicates that the log level is unknown.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidLogFormat indicates that the log format is unknown.
	ErrInvalidLogFormat = errors.New("invalid log format")
)
