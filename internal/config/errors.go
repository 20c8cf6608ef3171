package config

import "errors"

// Configuration validation errors.
// These are returned by Options.Validate and describe exactly which knob
// is out of range.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate. This allows callers to use
// errors.Is for programmatic handling while keeping human-readable
// messages in one place.
var (
	// ErrInvalidChunkSize is returned when the concurrency chunk size is not
	// positive. A chunk size of zero would dispatch no visits at all.
	ErrInvalidChunkSize = errors.New("invalid chunk size: must be positive")

	// ErrInvalidMaxDepth is returned when the maximum crawl depth is not
	// positive. Depth 1 is the minimum: it covers the start page itself.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be positive")

	// ErrInvalidMaxURLs is returned when the URL budget is not positive.
	ErrInvalidMaxURLs = errors.New("invalid max URLs: must be positive")

	// ErrInvalidMaxWait is returned when the per-visit budget is not
	// positive. A zero budget would fail every navigation immediately.
	ErrInvalidMaxWait = errors.New("invalid max wait: must be positive")

	// ErrInvalidDelay is returned when the stagger delay is negative.
	// Use 0 for no stagger between chunk members.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidHTMLWindow is returned when either HTML window bound is
	// negative. Use 0 to disable windowing.
	ErrInvalidHTMLWindow = errors.New("invalid html window: bounds must be non-negative")

	// ErrInvalidRate is returned when the visit rate is negative.
	// Use 0 to disable pacing.
	ErrInvalidRate = errors.New("invalid rate: must be non-negative")
)
