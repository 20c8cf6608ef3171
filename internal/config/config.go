package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are chosen to match the behavior of typical technology
// fingerprinting runs: shallow, fast, and polite to the target site.
const (
	// DefaultChunkSize is the number of page visits dispatched concurrently
	// within one crawl depth. Each visit owns a full Chromium process, so
	// this is effectively a browser-process concurrency cap. Five headless
	// sessions fit comfortably on a small host.
	DefaultChunkSize = 5

	// DefaultDelay is the stagger applied between same-chunk visits
	// (delay * index-in-chunk). It only applies to recursive crawls;
	// single-page runs have nothing to stagger.
	DefaultDelay = 500 * time.Millisecond

	// DefaultHTMLMaxCols and DefaultHTMLMaxRows bound the HTML handed to the
	// fingerprint matcher. Pages are windowed to the first and last
	// DefaultHTMLMaxRows/2 rows of DefaultHTMLMaxCols characters each, which
	// keeps pattern matching fast on multi-megabyte documents while
	// preserving the head and footer where most fingerprints live.
	DefaultHTMLMaxCols = 2000
	DefaultHTMLMaxRows = 3000

	// DefaultMaxDepth limits recursive crawls to the start page plus two
	// levels of links. Technology fingerprints rarely change deeper in
	// a site, so going further mostly burns browser sessions.
	DefaultMaxDepth = 3

	// DefaultMaxURLs is the total page-visit budget for one crawl.
	DefaultMaxURLs = 10

	// DefaultMaxWait is the hard wall-clock budget for a single page visit,
	// covering navigation and settling. Rendering is allowed to time out
	// softly (partial content is still useful); this bound exists so a hung
	// page cannot stall the crawl.
	DefaultMaxWait = 25 * time.Second

	// DefaultContentWait bounds reading the rendered document's HTML after
	// navigation. Exceeding it is an unrecoverable visit failure because
	// without HTML there is nothing to fingerprint.
	DefaultContentWait = 10 * time.Second

	// DefaultExtractWait bounds each optional sub-extraction (form-derived
	// links, text bundle) so a slow evaluation degrades to a missing field
	// instead of stalling the visit.
	DefaultExtractWait = 3 * time.Second

	// DefaultScreenshotSettle is how long the page is left to settle before
	// the screenshot is taken; DefaultScreenshotWait caps the capture itself.
	DefaultScreenshotSettle = 3 * time.Second
	DefaultScreenshotWait   = 5 * time.Second

	// DefaultUserAgent identifies techspider in HTTP requests. Sites often
	// vary markup by User-Agent, so a current desktop UA gives the most
	// representative signals.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

	// DefaultBlocklistURL is the filter list compiled for screenshot-mode
	// request blocking. The cached copy lives under XDGCacheDir.
	DefaultBlocklistURL = "https://raw.githubusercontent.com/iAlex97/block-the-eu-cookie-shit-list/development/filterlist_v2.txt"

	// AppName is the application name used for XDG directory paths.
	AppName = "techspider"
)

// Options holds all configuration for one crawl invocation.
// It is populated from CLI flags (and optionally a config file), validated
// once via Validate, and never mutated afterwards; the driver and every
// worker process receive the same immutable snapshot.
//
// Design decision: We use a single flat struct instead of nested structs
// because the option count is manageable and the struct is serialized
// wholesale to worker processes, where nesting would only add noise.
// The json tags are the worker-process wire format.
type Options struct {
	// Username and Password are HTTP basic-auth credentials presented by the
	// browser session when the target challenges it. Empty means anonymous.
	Username string `json:"username"`
	Password string `json:"password"`

	// Proxy is a proxy URL handed to Chromium via --proxy-server.
	// Empty means direct connection.
	Proxy string `json:"proxy"`

	// ChunkSize is the number of concurrent page visits per crawl depth.
	ChunkSize int `json:"chunkSize"`

	// Debug enables verbose slog output, including forwarded worker logs.
	Debug bool `json:"debug"`

	// Delay is the per-index stagger between visits in one chunk.
	// Forced to zero when Recursive is false.
	Delay time.Duration `json:"delay"`

	// HTMLMaxCols and HTMLMaxRows window the HTML passed to the matcher.
	// Zero disables windowing for that axis.
	HTMLMaxCols int `json:"htmlMaxCols"`
	HTMLMaxRows int `json:"htmlMaxRows"`

	// MaxDepth is the maximum crawl recursion depth. The start page is
	// depth 1, so MaxDepth 1 visits only the start page even in recursive
	// mode.
	MaxDepth int `json:"maxDepth"`

	// MaxURLs is the total number of URLs one crawl may register.
	MaxURLs int `json:"maxUrls"`

	// MaxWait is the hard per-visit wall clock budget.
	MaxWait time.Duration `json:"maxWait"`

	// Recursive enables following discovered links. When false the crawl
	// visits exactly the start URL.
	Recursive bool `json:"recursive"`

	// RatePerSecond optionally paces visit starts across the whole crawl,
	// on top of the per-chunk stagger. Zero disables pacing.
	RatePerSecond float64 `json:"ratePerSecond"`

	// UserAgent overrides the browser User-Agent. Empty keeps
	// DefaultUserAgent.
	UserAgent string `json:"userAgent"`

	// ChromiumArgs are extra command-line switches for the launched
	// Chromium (e.g. "--lang=en-US").
	ChromiumArgs []string `json:"chromiumArgs,omitempty"`

	// ChromePath points at a Chromium binary. Empty lets chromedp find one.
	ChromePath string `json:"chromePath,omitempty"`

	// BlocklistURL is the content-filter list used in screenshot mode to
	// suppress ads and cookie banners. Empty keeps DefaultBlocklistURL.
	BlocklistURL string `json:"blocklistUrl,omitempty"`
}

// NewOptions creates Options with default values.
//
// Design decision: We use a constructor instead of relying on zero values
// because nearly every default is non-zero, and the constructor doubles as
// documentation of what the defaults are.
func NewOptions() *Options {
	return &Options{
		ChunkSize:    DefaultChunkSize,
		Delay:        DefaultDelay,
		HTMLMaxCols:  DefaultHTMLMaxCols,
		HTMLMaxRows:  DefaultHTMLMaxRows,
		MaxDepth:     DefaultMaxDepth,
		MaxURLs:      DefaultMaxURLs,
		MaxWait:      DefaultMaxWait,
		UserAgent:    DefaultUserAgent,
		BlocklistURL: DefaultBlocklistURL,
	}
}

// Coerce normalizes option values the way the CLI surface promises:
// non-recursive crawls never stagger, and zeroed knobs fall back to their
// defaults. Call it once, before Validate.
func (o *Options) Coerce() {
	if !o.Recursive {
		o.Delay = 0
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.MaxURLs <= 0 {
		o.MaxURLs = DefaultMaxURLs
	}
	if o.MaxWait <= 0 {
		o.MaxWait = DefaultMaxWait
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.BlocklistURL == "" {
		o.BlocklistURL = DefaultBlocklistURL
	}
}

// Validate checks the configuration and returns the first problem found.
// It is called once after CLI parsing, before any page visit begins;
// construction-time configuration errors are the only errors a crawl
// surfaces as Go errors rather than result entries.
func (o *Options) Validate() error {
	if o.ChunkSize <= 0 {
		return ErrInvalidChunkSize
	}
	if o.MaxDepth <= 0 {
		return ErrInvalidMaxDepth
	}
	if o.MaxURLs <= 0 {
		return ErrInvalidMaxURLs
	}
	if o.MaxWait <= 0 {
		return ErrInvalidMaxWait
	}
	if o.Delay < 0 {
		return ErrInvalidDelay
	}
	if o.HTMLMaxCols < 0 || o.HTMLMaxRows < 0 {
		return ErrInvalidHTMLWindow
	}
	if o.RatePerSecond < 0 {
		return ErrInvalidRate
	}
	return nil
}

// XDGDataDir returns the XDG data directory for techspider.
// On Linux: ~/.local/share/techspider
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for techspider.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for techspider.
// The screenshot-mode blocklist cache lives here.
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}
