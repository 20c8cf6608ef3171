package analyzer

import (
	"context"

	"github.com/techspider/techspider/internal/model"
)

// Signals is the per-page evidence handed to the matcher. HTML arrives
// already windowed; JS holds the evaluated pattern values, not the raw
// snapshot.
type Signals struct {
	// HTML is the windowed document markup.
	HTML string

	// Scripts are external script URLs.
	Scripts []string

	// Headers are response headers, keys lowercased.
	Headers map[string][]string

	// Cookies are the page's cookies.
	Cookies []model.Cookie

	// JS maps technology -> property chain -> pattern index -> value,
	// produced by EvaluateJSPatterns.
	JS map[string]map[string]map[int]any

	// Language is the detected content language as a BCP-47 tag, empty
	// when detection was unavailable or inconclusive.
	Language string
}

// Matcher fingerprints technologies from page signals. Implementations
// report detections through the Reporter they were constructed with,
// accumulating evidence across the pages of one crawl.
type Matcher interface {
	// JSPatterns returns the global-JS property chains the matcher
	// wants evaluated in the page, keyed by technology name.
	JSPatterns() map[string]map[string][]string

	// Analyze feeds one page's signals into the engine. It is called
	// once per successfully visited page.
	Analyze(ctx context.Context, pageURL string, signals *Signals) error
}

// Reporter receives detection callbacks from the matcher. The crawl
// orchestrator implements it to fold detections into the crawl result.
type Reporter interface {
	// DisplayApps delivers the technologies detected so far together
	// with engine metadata (language, matcher version and similar).
	DisplayApps(detected map[string]model.DetectedApp, meta map[string]string)

	// DisplayNotDetected delivers the page signals that matched no
	// fingerprint, for the unmatched-signal diagnostics of the result.
	DisplayNotDetected(unmatched model.NotDetected)
}

// LanguageDetector guesses the content language of page text. Detect
// returns a BCP-47 tag and whether the guess is reliable enough to
// record.
type LanguageDetector interface {
	Detect(text string) (string, bool)
}
