package browser

import (
	"context"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// visitState tracks what the network has delivered so far. It is shared
// between the event listener goroutine and the visit flow, so every
// access goes through the mutex.
type visitState struct {
	mu sync.Mutex

	// responseReceived flips once a non-redirect response for the
	// document arrived. From then on, further main-frame navigations
	// away from the target are aborted.
	responseReceived bool

	// responseRedirected flips when any 3xx response was observed.
	responseRedirected bool

	// done flips when extraction finished; every request after that is
	// aborted so teardown is not kept alive by stragglers.
	done bool

	// status, headers and contentType come from the first response
	// observed. First response wins; later responses never overwrite.
	status      int
	headers     map[string][]string
	contentType string
}

func newVisitState() *visitState {
	return &visitState{headers: make(map[string][]string)}
}

// observeResponse records status/header data from a response, keeping
// the first one, and classifies it as final or redirect.
func (st *visitState) observeResponse(status int64, headers network.Headers) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.status == 0 {
		st.status = int(status)
		for key, value := range headers {
			lower := strings.ToLower(key)
			if text, ok := value.(string); ok {
				// CDP folds repeated headers into one newline-joined value
				st.headers[lower] = strings.Split(text, "\n")
			}
		}
		if ct := st.headers["content-type"]; len(ct) > 0 {
			st.contentType = ct[0]
		}
	}

	if status < 300 || status > 399 {
		st.responseReceived = true
	} else {
		st.responseRedirected = true
	}
}

func (st *visitState) markDone() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.done = true
}

func (st *visitState) redirected() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.responseRedirected
}

func (st *visitState) response() (int, map[string][]string, string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.status, st.headers, st.contentType
}

// listen installs the CDP event handlers for one visit: response
// observation, request interception, and dialog dismissal. Handlers
// that issue CDP commands run in their own goroutine with the target's
// executor, the chromedp-required pattern for acting from a listener.
func (s *Session) listen(ctx context.Context, st *visitState, pageURL string, flags VisitFlags) {
	c := chromedp.FromContext(ctx)
	execCtx := cdp.WithExecutor(ctx, c.Target)

	chromedp.ListenTarget(ctx, func(ev any) {
		switch ev := ev.(type) {
		case *network.EventResponseReceived:
			if ev.Type == network.ResourceTypeDocument {
				st.observeResponse(ev.Response.Status, ev.Response.Headers)
			}

		case *network.EventRequestWillBeSent:
			// redirect hops surface here, not as responses
			if ev.RedirectResponse != nil && ev.Type == network.ResourceTypeDocument {
				st.observeResponse(ev.RedirectResponse.Status, ev.RedirectResponse.Headers)
			}

		case *fetch.EventRequestPaused:
			go s.resolvePaused(execCtx, ev, st, pageURL, flags)

		case *fetch.EventAuthRequired:
			go s.resolveAuth(execCtx, ev)

		case *page.EventJavascriptDialogOpening:
			go s.dismissDialog(execCtx, ev)
		}
	})
}

// resolvePaused continues or aborts one intercepted request.
func (s *Session) resolvePaused(execCtx context.Context, ev *fetch.EventRequestPaused, st *visitState, pageURL string, flags VisitFlags) {
	allow, reason := s.decide(ev, st, pageURL, flags)

	var err error
	if allow {
		err = fetch.ContinueRequest(ev.RequestID).Do(execCtx)
	} else {
		err = fetch.FailRequest(ev.RequestID, reason).Do(execCtx)
	}
	if err != nil && execCtx.Err() == nil {
		s.logger.Debug("request interception failed", "url", ev.Request.URL, "error", err)
	}
}

// resolveAuth answers an auth challenge with the configured
// credentials. Only delivered when WithHandleAuthRequests was enabled.
func (s *Session) resolveAuth(execCtx context.Context, ev *fetch.EventAuthRequired) {
	err := fetch.ContinueWithAuth(ev.RequestID, s.authChallengeResponse()).Do(execCtx)
	if err != nil && execCtx.Err() == nil {
		s.logger.Debug("auth challenge response failed", "url", ev.Request.URL, "error", err)
	}
}

// decide applies the interception policy. After teardown everything is
// aborted; after the final response, main-frame navigations away from
// the target are aborted; otherwise screenshot visits consult the
// filter list while plain visits allow only documents and scripts.
func (s *Session) decide(ev *fetch.EventRequestPaused, st *visitState, pageURL string, flags VisitFlags) (bool, network.ErrorReason) {
	st.mu.Lock()
	done := st.done
	received := st.responseReceived
	st.mu.Unlock()

	if done {
		return false, network.ErrorReasonAborted
	}

	if received && ev.ResourceType == network.ResourceTypeDocument && ev.Request.URL != pageURL {
		s.logger.Debug("aborting navigation away from target", "url", ev.Request.URL)
		return false, network.ErrorReasonAborted
	}

	if flags.Screenshot {
		if s.blocklist != nil && s.blocklist.Blocked(ev.Request.URL) {
			return false, network.ErrorReasonBlockedByClient
		}
		return true, network.ErrorReasonFailed
	}

	switch ev.ResourceType {
	case network.ResourceTypeDocument, network.ResourceTypeScript:
		return true, network.ErrorReasonFailed
	default:
		return false, network.ErrorReasonBlockedByClient
	}
}

// dismissDialog auto-dismisses JS dialogs so a modal never stalls the
// visit. Prompts are accepted with an empty answer, everything else is
// declined.
func (s *Session) dismissDialog(execCtx context.Context, ev *page.EventJavascriptDialogOpening) {
	s.logger.Debug("dismissing dialog", "type", string(ev.Type))

	var err error
	if ev.Type == page.DialogTypePrompt {
		err = page.HandleJavaScriptDialog(true).WithPromptText("").Do(execCtx)
	} else {
		err = page.HandleJavaScriptDialog(false).Do(execCtx)
	}
	if err != nil && execCtx.Err() == nil {
		s.logger.Debug("dialog dismissal failed", "error", err)
	}
}
