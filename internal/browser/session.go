// Package browser drives a headless Chromium session for a single page
// visit and extracts the fingerprinting signals from the rendered page.
// One Session launches one browser per Visit; the worker process exists
// precisely so that a wedged or crashed browser takes out only its own
// process, never the orchestrator.
package browser

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/techspider/techspider/internal/blocklist"
	"github.com/techspider/techspider/internal/config"
	"github.com/techspider/techspider/internal/htmlproc"
	"github.com/techspider/techspider/internal/model"
	"github.com/techspider/techspider/internal/urlutil"
)

// VisitFlags selects per-visit behavior.
type VisitFlags struct {
	// Screenshot captures a viewport image and switches interception to
	// the filter-list delegate so banners do not pollute the image.
	Screenshot bool

	// Simple waits only for domcontentloaded instead of network idle.
	// Used for the retry after a first attempt failed.
	Simple bool

	// First marks the crawl's first page, which alone contributes the
	// raw JSON-LD block.
	First bool
}

// Session visits pages with headless Chromium.
type Session struct {
	opts      *config.Options
	logger    *slog.Logger
	blocklist *blocklist.List
}

// NewSession creates a Session. The filter list may be nil, in which
// case screenshot visits block nothing.
func NewSession(opts *config.Options, logger *slog.Logger, list *blocklist.List) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{opts: opts, logger: logger, blocklist: list}
}

// Visit runs the full page-visit state machine: launch, configure,
// navigate, validate redirects, extract, close. The browser is always
// torn down, and a close failure is only logged. A cross-site redirect
// returns *InvalidRedirectError with whatever the caller needs to
// restart against the new domain.
func (s *Session) Visit(ctx context.Context, pageURL string, flags VisitFlags) (*model.SignalBundle, error) {
	target, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, s.allocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	st := newVisitState()
	defer st.markDone()

	// the first Run launches the browser
	if err := chromedp.Run(browserCtx, s.configureActions(flags)...); err != nil {
		return nil, wrapBrowserError(ctx, err)
	}

	s.listen(browserCtx, st, pageURL, flags)

	if err := s.navigate(browserCtx, pageURL, flags.Simple); err != nil {
		return nil, wrapBrowserError(ctx, err)
	}

	finalURL, err := s.validateRedirect(browserCtx, target, st, flags.Simple)
	if err != nil {
		return nil, err
	}

	bundle := &model.SignalBundle{URL: pageURL, FinalURL: finalURL}
	if err := s.extract(browserCtx, bundle, flags); err != nil {
		return nil, wrapBrowserError(ctx, err)
	}

	bundle.Status, bundle.Headers, bundle.ContentType = st.response()
	return bundle, nil
}

// allocatorOptions builds the Chromium launch configuration.
func (s *Session) allocatorOptions() []chromedp.ExecAllocatorOption {
	execOpts := []chromedp.ExecAllocatorOption{
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("ignore-certificate-errors", true),
	}
	if s.opts.ChromePath != "" {
		execOpts = append(execOpts, chromedp.ExecPath(s.opts.ChromePath))
	}
	if s.opts.Proxy != "" {
		execOpts = append(execOpts, chromedp.ProxyServer(s.opts.Proxy))
	}
	if ua := s.opts.UserAgent; ua != "" {
		execOpts = append(execOpts, chromedp.UserAgent(ua))
	}
	for _, arg := range s.opts.ChromiumArgs {
		name, value, _ := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if name == "" {
			continue
		}
		if value == "" {
			execOpts = append(execOpts, chromedp.Flag(name, true))
		} else {
			execOpts = append(execOpts, chromedp.Flag(name, value))
		}
	}
	return execOpts
}

// configureActions prepares the page before navigation: network events
// on, request interception on (with auth challenges routed to us when
// credentials are configured), and in screenshot mode a desktop
// viewport.
func (s *Session) configureActions(flags VisitFlags) []chromedp.Action {
	actions := []chromedp.Action{
		network.Enable(),
		fetch.Enable().
			WithPatterns([]*fetch.RequestPattern{
				{URLPattern: "*", RequestStage: fetch.RequestStageRequest},
			}).
			WithHandleAuthRequests(s.hasCredentials()),
	}
	if flags.Screenshot {
		actions = append(actions, chromedp.EmulateViewport(1920, 1080))
	}
	return actions
}

// navigate drives the page to the target and waits for it to settle,
// racing against the visit budget. A navigation timeout is swallowed:
// partially loaded pages still carry signals worth extracting. Anything
// else (refused connection, DNS failure) fails the visit.
func (s *Session) navigate(browserCtx context.Context, pageURL string, simple bool) error {
	navCtx, cancel := context.WithTimeout(browserCtx, s.opts.MaxWait)
	defer cancel()

	err := chromedp.Run(navCtx,
		chromedp.Navigate(pageURL),
		s.waitSettled(simple),
	)
	if navigationFatal(err) {
		return err
	}
	if err != nil {
		s.logger.Debug("navigation timeout ignored", "url", pageURL)
	}
	return nil
}

// navigationFatal reports whether a navigation error fails the visit.
func navigationFatal(err error) bool {
	return err != nil && !errors.Is(err, context.DeadlineExceeded)
}

// waitSettled waits for the document to settle. Simple mode is content
// with the DOM being parsed; full mode insists on the load completing
// and then grants scripts a short grace period.
func (s *Session) waitSettled(simple bool) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			var readyState string
			if err := chromedp.Evaluate(`document.readyState`, &readyState).Do(ctx); err != nil {
				return err
			}
			if simple && readyState != "loading" {
				return nil
			}
			if readyState == "complete" {
				if !simple {
					return chromedp.Sleep(500 * time.Millisecond).Do(ctx)
				}
				return nil
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})
}

// validateRedirect resolves where the browser ended up. When a redirect
// was observed but the location still reads as the original URL, the
// navigation is still in flight and gets one more settle wait. A final
// location on another registrable domain fails the visit.
func (s *Session) validateRedirect(browserCtx context.Context, target *url.URL, st *visitState, simple bool) (string, error) {
	var finalURL string
	if err := chromedp.Run(browserCtx, chromedp.Location(&finalURL)); err != nil {
		return "", wrapBrowserError(browserCtx, err)
	}

	if !st.redirected() {
		return finalURL, nil
	}

	if finalURL == target.String() {
		waitCtx, cancel := context.WithTimeout(browserCtx, s.opts.MaxWait)
		err := chromedp.Run(waitCtx,
			s.waitSettled(simple),
			chromedp.Location(&finalURL),
		)
		cancel()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return "", wrapBrowserError(browserCtx, err)
		}
	}

	final, err := url.Parse(finalURL)
	if err != nil || final.Hostname() == "" {
		return finalURL, nil
	}

	if urlutil.SameSite(target, final) {
		s.logger.Debug("redirected within site", "from", target.String(), "to", finalURL)
		return finalURL, nil
	}
	return "", &InvalidRedirectError{Original: target.String(), Redirect: finalURL}
}

// extract pulls every signal out of the rendered page. Individual
// extractors degrade independently: a failed snapshot or screenshot is
// logged and leaves its field empty rather than failing the visit, but
// a page without retrievable HTML fails it.
func (s *Session) extract(browserCtx context.Context, bundle *model.SignalBundle, flags VisitFlags) error {
	htmlCtx, cancel := context.WithTimeout(browserCtx, config.DefaultContentWait)
	err := chromedp.Run(htmlCtx, chromedp.OuterHTML("html", &bundle.HTML, chromedp.ByQuery))
	cancel()
	if err != nil {
		return err
	}
	if strings.TrimSpace(bundle.HTML) == "" {
		return ErrNoDocument
	}

	if err := chromedp.Run(browserCtx, chromedp.Evaluate(jsLinksSource, &bundle.Links)); err != nil {
		s.logger.Debug("link extraction failed", "error", err)
	}

	var formLinks []model.Link
	formCtx, cancelForm := context.WithTimeout(browserCtx, config.DefaultExtractWait)
	if err := chromedp.Run(formCtx, chromedp.Evaluate(jsFormLinksSource, &formLinks)); err == nil {
		bundle.Links = append(bundle.Links, formLinks...)
	}
	cancelForm()

	if err := chromedp.Run(browserCtx, chromedp.Evaluate(jsScriptsSource, &bundle.Scripts)); err != nil {
		s.logger.Debug("script extraction failed", "error", err)
	}

	bundle.JSSnapshot = s.snapshotJS(browserCtx)

	if err := chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		cookies, err := network.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		for _, c := range cookies {
			bundle.Cookies = append(bundle.Cookies, model.Cookie{
				Name:   c.Name,
				Value:  c.Value,
				Domain: c.Domain,
				Path:   c.Path,
			})
		}
		return nil
	})); err != nil {
		s.logger.Debug("cookie extraction failed", "error", err)
	}

	if flags.Screenshot {
		bundle.Screenshot = s.screenshot(browserCtx)
	}

	bundle.Texts = htmlproc.ExtractTexts(bundle.HTML, flags.First)
	return nil
}

// snapshotJS serializes the page's global state, falling back to the
// flat serializer when the recursive walk yields nothing.
func (s *Session) snapshotJS(browserCtx context.Context) json.RawMessage {
	for _, source := range []string{jsSnapshotSource, jsSnapshotFallbackSource} {
		var raw string
		if err := chromedp.Run(browserCtx, chromedp.Evaluate(source, &raw)); err != nil {
			s.logger.Debug("js snapshot failed", "error", err)
			continue
		}
		if raw != "" && raw != "null" {
			return json.RawMessage(raw)
		}
	}
	return nil
}

// screenshot waits for the page to settle visually, then captures the
// viewport under a hard cap. Failures leave the field empty.
func (s *Session) screenshot(browserCtx context.Context) []byte {
	ssCtx, cancel := context.WithTimeout(browserCtx, config.DefaultScreenshotSettle+config.DefaultScreenshotWait)
	defer cancel()

	var buf []byte
	err := chromedp.Run(ssCtx,
		chromedp.Sleep(config.DefaultScreenshotSettle),
		chromedp.CaptureScreenshot(&buf),
	)
	if err != nil {
		s.logger.Debug("screenshot failed", "error", err)
		return nil
	}
	return buf
}

// hasCredentials reports whether the visit carries basic-auth
// credentials to present on an auth challenge.
func (s *Session) hasCredentials() bool {
	return s.opts.Username != "" || s.opts.Password != ""
}

// authChallengeResponse answers a server or proxy auth challenge with
// the configured credentials.
func (s *Session) authChallengeResponse() *fetch.AuthChallengeResponse {
	if !s.hasCredentials() {
		return &fetch.AuthChallengeResponse{
			Response: fetch.AuthChallengeResponseResponseDefault,
		}
	}
	return &fetch.AuthChallengeResponse{
		Response: fetch.AuthChallengeResponseResponseProvideCredentials,
		Username: s.opts.Username,
		Password: s.opts.Password,
	}
}

// wrapBrowserError distinguishes a dead browser from an ordinary
// failure: when the chromedp context is gone but the caller's context
// is not, the browser process itself went away.
func wrapBrowserError(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) && ctx.Err() == nil {
		return ErrBrowserDisconnected
	}
	return err
}
