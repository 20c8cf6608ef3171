package crawler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/techspider/techspider/internal/analyzer"
	"github.com/techspider/techspider/internal/browser"
	"github.com/techspider/techspider/internal/config"
	"github.com/techspider/techspider/internal/htmlproc"
	"github.com/techspider/techspider/internal/model"
)

// Visitor runs one isolated page visit. Implemented by the worker
// Dispatcher; tests substitute scripted visitors.
type Visitor interface {
	Visit(ctx context.Context, pageURL string, flags browser.VisitFlags) (*model.SignalBundle, error)
}

// Driver orchestrates one crawl: it owns the frontier, fans visits out
// in chunks, feeds signals to the matcher, and folds everything into a
// single CrawlResult. Analyze never returns an error; every failure
// mode is a field of the result.
type Driver struct {
	opts    *config.Options
	target  string
	origin  *model.CrawlURL
	logger  *slog.Logger
	visitor Visitor

	matcher    analyzer.Matcher
	langDetect analyzer.LanguageDetector
	limiter    *rate.Limiter
	screenshot bool

	registry *Registry

	mu               sync.Mutex
	result           *model.CrawlResult
	apps             map[string]model.DetectedApp
	meta             map[string]string
	notDetected      notDetectedSets
	screenshotTaken  bool
	recoveredTimeout bool
}

// notDetectedSets deduplicates unmatched signals across all pages of one
// crawl. Guarded by the Driver mutex.
type notDetectedSets struct {
	scripts map[string]struct{}
	headers map[string]struct{}
	cookies map[string]struct{}
	metas   map[string]struct{}
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) { d.logger = logger }
}

// WithMatcher attaches the fingerprint engine.
func WithMatcher(m analyzer.Matcher) Option {
	return func(d *Driver) { d.matcher = m }
}

// WithLanguageDetector attaches a content-language detector.
func WithLanguageDetector(ld analyzer.LanguageDetector) Option {
	return func(d *Driver) { d.langDetect = ld }
}

// WithScreenshot captures a screenshot on the crawl's first visit.
func WithScreenshot() Option {
	return func(d *Driver) { d.screenshot = true }
}

// NewDriver creates a Driver for one target URL.
func NewDriver(target string, opts *config.Options, visitor Visitor, driverOpts ...Option) (*Driver, error) {
	origin, err := model.NewCrawlURL(target)
	if err != nil {
		return nil, err
	}

	d := &Driver{
		opts:     opts,
		target:   target,
		origin:   origin,
		visitor:  visitor,
		registry: NewRegistry(opts.MaxURLs),
		apps:     make(map[string]model.DetectedApp),
		meta:     make(map[string]string),
		notDetected: notDetectedSets{
			scripts: make(map[string]struct{}),
			headers: make(map[string]struct{}),
			cookies: make(map[string]struct{}),
			metas:   make(map[string]struct{}),
		},
	}
	for _, opt := range driverOpts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if opts.RatePerSecond > 0 {
		d.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1)
	}
	return d, nil
}

// Analyze runs the crawl to completion and returns the assembled
// result.
func (d *Driver) Analyze(ctx context.Context) *model.CrawlResult {
	d.result = model.NewCrawlResult(d.target)

	d.crawl(ctx, d.origin, 0, 1)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.result.URLs = d.registry.Snapshot()
	d.result.Applications = d.sortedApps()
	d.result.OtherTechnologies = d.notDetected.collect()
	d.result.FinishedAt = time.Now()
	return d.result
}

// crawl visits one URL and, in recursive mode, descends into the links
// it yielded. index staggers visits within a chunk; depth bounds the
// recursion.
func (d *Driver) crawl(ctx context.Context, pageURL *model.CrawlURL, index, depth int) {
	links, err := d.fetch(ctx, pageURL, index, depth)
	if err != nil {
		var redirectErr *browser.InvalidRedirectError
		if errors.As(err, &redirectErr) {
			d.handleRedirect(pageURL, redirectErr)
		} else {
			pageErr := classifyVisitError(err)
			d.registry.SetError(pageURL.String(), pageErr.Kind)
			d.logger.Error("page visit failed", "url", pageURL.String(), "error", pageErr)
		}
	}

	if len(links) > 0 && d.opts.Recursive && depth < d.opts.MaxDepth {
		if len(links) > d.opts.MaxURLs {
			links = links[:d.opts.MaxURLs]
		}
		d.chunk(ctx, links, depth+1)
	}
}

// handleRedirect records a cross-site redirect. For the seed page this
// is the crawl's outcome, carried as redirect metadata rather than a
// per-URL error: the caller can restart against the new domain. For
// deeper pages it is just a failed URL.
func (d *Driver) handleRedirect(pageURL *model.CrawlURL, redirectErr *browser.InvalidRedirectError) {
	if pageURL.Canonical() != d.origin.Canonical() {
		d.registry.SetError(pageURL.String(), KindResponseNotOK)
		d.logger.Warn("page redirected off-site", "url", pageURL.String(), "to", redirectErr.Redirect)
		return
	}

	domain := redirectErr.Redirect
	if u, err := model.NewCrawlURL(redirectErr.Redirect); err == nil {
		domain = u.RegistrableDomain()
	}

	d.mu.Lock()
	d.result.Redirect = &model.Redirect{URL: redirectErr.Redirect, Domain: domain}
	d.mu.Unlock()

	d.logger.Warn("seed redirected off-site, crawl stopped",
		"url", pageURL.String(), "to", redirectErr.Redirect)
}

// fetch gates one URL through the registry, paces it, and visits it
// with one simple-mode retry. A retried crawl stays in simple mode for
// the rest of its life: a site that timed out once under network-idle
// waiting will keep doing it.
func (d *Driver) fetch(ctx context.Context, pageURL *model.CrawlURL, index, depth int) ([]*model.CrawlURL, error) {
	if !d.registry.Register(pageURL.String()) {
		return nil, nil
	}

	d.logger.Debug("fetch",
		"url", pageURL.String(),
		"depth", depth,
		"delay", (d.opts.Delay * time.Duration(index)).String(),
	)

	if delay := d.opts.Delay * time.Duration(index); delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	links, err := d.visit(ctx, pageURL, false)
	if err == nil {
		return links, nil
	}

	var redirectErr *browser.InvalidRedirectError
	if errors.As(err, &redirectErr) {
		return nil, err
	}

	d.logger.Warn("retrying page visit", "url", pageURL.String(), "error", err)

	links, retryErr := d.visit(ctx, pageURL, true)
	if retryErr != nil {
		if errors.As(retryErr, &redirectErr) {
			return nil, retryErr
		}
		d.logger.Error("retry failed", "url", pageURL.String(), "error", retryErr)
		return nil, &PageError{Kind: KindResponseNotOK, cause: retryErr}
	}

	d.mu.Lock()
	d.recoveredTimeout = true
	d.mu.Unlock()
	return links, nil
}

// visit dispatches one page visit to the worker, records its outcome,
// runs the matcher over the extracted signals, and returns the filtered
// links for recursion.
func (d *Driver) visit(ctx context.Context, pageURL *model.CrawlURL, retry bool) ([]*model.CrawlURL, error) {
	first := pageURL.Canonical() == d.origin.Canonical()

	d.mu.Lock()
	simple := retry || d.recoveredTimeout
	takeScreenshot := d.screenshot && !d.screenshotTaken
	if takeScreenshot {
		// claimed at request time: a failed capture is not re-attempted
		// on later pages
		d.screenshotTaken = true
	}
	d.mu.Unlock()

	bundle, err := d.visitor.Visit(ctx, pageURL.String(), browser.VisitFlags{
		Screenshot: takeScreenshot,
		Simple:     simple,
		First:      first,
	})
	if err != nil {
		return nil, err
	}

	d.registry.SetStatus(pageURL.String(), bundle.Status)
	if bundle.Status == 0 {
		return nil, &PageError{Kind: KindNoResponse}
	}

	locale := d.detectLanguage(bundle)
	d.absorb(bundle, takeScreenshot, locale)

	if err := d.match(ctx, pageURL, bundle, locale); err != nil {
		d.logger.Error("matcher failed", "url", pageURL.String(), "error", err)
	}

	return d.filterLinks(bundle.Links), nil
}

// detectLanguage guesses the page's content language from its stripped
// text. Returns "" when no detector is wired or the guess is shaky.
func (d *Driver) detectLanguage(bundle *model.SignalBundle) string {
	if d.langDetect == nil {
		return ""
	}
	locale, ok := d.langDetect.Detect(htmlproc.StripTags(bundle.HTML))
	if !ok {
		return ""
	}
	return locale
}

// absorb merges a page's texts, language and screenshot into the
// crawl-wide result. Every field is first-write-wins.
func (d *Driver) absorb(bundle *model.SignalBundle, tookScreenshot bool, locale string) {
	texts := bundle.Texts
	if texts.Locale == "" {
		texts.Locale = locale
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.result.Meta.MergeAbsent(texts)
	if tookScreenshot && len(bundle.Screenshot) > 0 {
		d.result.Screenshot = bundle.Screenshot
	}
}

// match prepares the matcher's view of the page and runs it.
func (d *Driver) match(ctx context.Context, pageURL *model.CrawlURL, bundle *model.SignalBundle, locale string) error {
	if d.matcher == nil {
		return nil
	}

	signals := &analyzer.Signals{
		HTML:     htmlproc.Window(bundle.HTML, d.opts.HTMLMaxCols, d.opts.HTMLMaxRows),
		Scripts:  bundle.Scripts,
		Headers:  bundle.Headers,
		Cookies:  bundle.Cookies,
		Language: locale,
	}

	if len(bundle.JSSnapshot) > 0 {
		var snapshot map[string]any
		if err := json.Unmarshal(bundle.JSSnapshot, &snapshot); err != nil {
			d.logger.Debug("js snapshot unusable", "url", pageURL.String(), "error", err)
		} else {
			signals.JS = analyzer.EvaluateJSPatterns(snapshot, d.matcher.JSPatterns())
		}
	}

	return d.matcher.Analyze(ctx, pageURL.String(), signals)
}

// chunk dispatches links in groups of ChunkSize. Within a chunk every
// link gets its own goroutine; the chunk size itself is the concurrency
// bound, and the next chunk starts only when the previous one fully
// settled.
func (d *Driver) chunk(ctx context.Context, links []*model.CrawlURL, depth int) {
	for len(links) > 0 {
		n := min(d.opts.ChunkSize, len(links))
		batch := links[:n]
		links = links[n:]

		g, gctx := errgroup.WithContext(ctx)
		for i, link := range batch {
			g.Go(func() error {
				d.crawl(gctx, link, i, depth)
				return nil
			})
		}
		_ = g.Wait() //nolint:errcheck // workers never return errors
	}
}

// DisplayApps implements analyzer.Reporter: detections accumulate by
// name, first detection of a name wins.
func (d *Driver) DisplayApps(detected map[string]model.DetectedApp, meta map[string]string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key, value := range meta {
		d.meta[key] = value
	}
	for name, app := range detected {
		if _, ok := d.apps[name]; !ok {
			d.apps[name] = app
		}
	}
}

// DisplayNotDetected implements analyzer.Reporter: unmatched signals
// accumulate into crawl-wide sets.
func (d *Driver) DisplayNotDetected(unmatched model.NotDetected) {
	d.mu.Lock()
	defer d.mu.Unlock()

	addAll(d.notDetected.scripts, unmatched.Scripts)
	addAll(d.notDetected.headers, unmatched.Headers)
	addAll(d.notDetected.cookies, unmatched.Cookies)
	addAll(d.notDetected.metas, unmatched.Metas)
}

func addAll(set map[string]struct{}, items []string) {
	for _, item := range items {
		set[item] = struct{}{}
	}
}

func (s *notDetectedSets) collect() model.NotDetected {
	return model.NotDetected{
		Scripts: sortedKeys(s.scripts),
		Headers: sortedKeys(s.headers),
		Cookies: sortedKeys(s.cookies),
		Metas:   sortedKeys(s.metas),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Meta returns the engine metadata gathered during the crawl.
func (d *Driver) Meta() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make(map[string]string, len(d.meta))
	for key, value := range d.meta {
		out[key] = value
	}
	return out
}

// Origin returns the crawl's seed URL.
func (d *Driver) Origin() *model.CrawlURL { return d.origin }

func (d *Driver) sortedApps() []model.DetectedApp {
	apps := make([]model.DetectedApp, 0, len(d.apps))
	for _, app := range d.apps {
		apps = append(apps, app)
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].Name < apps[j].Name })
	return apps
}
