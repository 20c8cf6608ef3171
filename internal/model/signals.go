package model

import "encoding/json"

// Link is an anchor extracted from a rendered page.
type Link struct {
	// Href is the absolute URL the anchor points at.
	Href string `json:"href"`

	// Rel is the anchor's rel attribute. Links with rel="nofollow" are
	// excluded from the crawl frontier.
	Rel string `json:"rel,omitempty"`
}

// Cookie is the subset of browser cookie fields used for fingerprinting.
type Cookie struct {
	// Name is the cookie name.
	Name string `json:"name"`

	// Value is the cookie value.
	Value string `json:"value"`

	// Domain is the cookie's domain attribute.
	Domain string `json:"domain"`

	// Path is the cookie's path attribute.
	Path string `json:"path"`
}

// SignalBundle contains everything one page visit extracted. A worker
// process serializes exactly one of these as its terminal data message;
// the orchestrator feeds it to the matcher and merges its texts into the
// crawl-wide PageTexts.
//
// Design decision: We keep the bundle flat and JSON-tagged rather than
// nesting per-extractor structs because:
// 1. It crosses the worker process boundary as a single message
// 2. The matcher consumes most fields together anyway
// 3. Absent signals are zero values, not separate presence flags
type SignalBundle struct {
	// URL is the URL the visit was asked for.
	URL string `json:"url"`

	// FinalURL is where the browser ended up after redirects.
	FinalURL string `json:"final_url"`

	// Status is the HTTP status of the first non-redirect response for
	// the navigated document.
	Status int `json:"status"`

	// Headers are the response headers of that same response, keyed by
	// lowercased header name.
	Headers map[string][]string `json:"headers,omitempty"`

	// ContentType is the Content-Type header value for convenience.
	ContentType string `json:"content_type,omitempty"`

	// Cookies are all cookies visible to the page after settle.
	Cookies []Cookie `json:"cookies,omitempty"`

	// HTML is the serialized document, windowed by the orchestrator
	// before matching.
	HTML string `json:"html,omitempty"`

	// Links are same-document anchors plus form-derived links.
	Links []Link `json:"links,omitempty"`

	// Scripts are the src attributes of external script tags.
	Scripts []string `json:"scripts,omitempty"`

	// JSSnapshot is the raw JSON snapshot of global JS state taken in
	// the page. Deserialized and pattern-matched by the analyzer.
	JSSnapshot json.RawMessage `json:"js,omitempty"`

	// Screenshot is a PNG of the viewport when a screenshot was
	// requested for this visit (the crawl's first visit only).
	Screenshot []byte `json:"screenshot,omitempty"`

	// Texts are the structured text fields this page yielded.
	Texts PageTexts `json:"texts"`
}
