package model

import "time"

// URLStatus records the outcome of visiting one URL.
type URLStatus struct {
	// Status is the HTTP status code, or 0 when the visit failed before
	// a response arrived.
	Status int `json:"status"`

	// Error is the visit failure, empty on success. One of the page
	// error kinds (RESPONSE_NOT_OK, NO_RESPONSE, NO_HTML_DOCUMENT,
	// UNKNOWN_ERROR) or a redirect notice.
	Error string `json:"error,omitempty"`
}

// DetectedApp is one technology the matcher identified on the site.
type DetectedApp struct {
	// Name is the technology name.
	Name string `json:"name"`

	// Confidence is 0-100.
	Confidence int `json:"confidence"`

	// Version is the detected version, empty when unknown.
	Version string `json:"version,omitempty"`

	// Icon is the technology's icon file name.
	Icon string `json:"icon,omitempty"`

	// Website is the technology vendor's site.
	Website string `json:"website,omitempty"`

	// CPE is the Common Platform Enumeration identifier when known.
	CPE string `json:"cpe,omitempty"`

	// Categories are the human-readable category names.
	Categories []string `json:"categories,omitempty"`
}

// NotDetected carries page signals that matched no fingerprint. The
// matcher reports one of these per page; the orchestrator folds them
// into crawl-wide sets for diagnostics.
type NotDetected struct {
	// Scripts are external script URLs no fingerprint claimed.
	Scripts []string `json:"scripts,omitempty"`

	// Headers are "name: value" response header pairs.
	Headers []string `json:"headers,omitempty"`

	// Cookies are cookie names.
	Cookies []string `json:"cookies,omitempty"`

	// Metas are "name: content" meta tag pairs.
	Metas []string `json:"metas,omitempty"`
}

// Redirect describes a crawl that ended because the seed page redirected
// off-site. The caller may decide to re-run the crawl against the new
// domain.
type Redirect struct {
	// URL is the full destination the seed redirected to.
	URL string `json:"url"`

	// Domain is the destination's registrable domain.
	Domain string `json:"domain"`
}

// CrawlResult is the complete outcome of one Analyze run. Analyze never
// returns an error: every failure mode is expressed here, so callers
// have a single shape to report regardless of how the crawl went.
type CrawlResult struct {
	// Target is the seed URL the crawl started from.
	Target string `json:"target"`

	// URLs maps every attempted URL to its visit outcome.
	URLs map[string]URLStatus `json:"urls"`

	// Applications are the technologies detected across all pages.
	Applications []DetectedApp `json:"applications"`

	// Meta is the crawl-wide structured text, first-write-wins.
	Meta PageTexts `json:"meta"`

	// OtherTechnologies are the signals no fingerprint matched,
	// deduplicated and sorted across all visited pages.
	OtherTechnologies NotDetected `json:"other_technologies"`

	// Redirect is set when the seed page redirected to another
	// registrable domain and the crawl stopped there.
	Redirect *Redirect `json:"redirect,omitempty"`

	// Screenshot is the PNG taken on the first visit, when requested.
	Screenshot []byte `json:"-"`

	// StartedAt and FinishedAt bound the crawl wall-clock time.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// NewCrawlResult returns a result with the URL map initialized.
func NewCrawlResult(target string) *CrawlResult {
	return &CrawlResult{
		Target:    target,
		URLs:      make(map[string]URLStatus),
		StartedAt: time.Now(),
	}
}

// Duration returns the crawl wall-clock duration, zero until finished.
func (r *CrawlResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
