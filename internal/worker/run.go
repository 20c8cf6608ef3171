package worker

import (
	"context"
	"errors"
	"io"

	"github.com/techspider/techspider/internal/blocklist"
	"github.com/techspider/techspider/internal/browser"
	"github.com/techspider/techspider/internal/config"
	"github.com/techspider/techspider/internal/log"
)

// Run is the child-process side: one page visit, results on out, then
// exit. Every log line the visit produces travels through the emitter
// so the parent can interleave it with its own logging.
func Run(ctx context.Context, out io.Writer, pageURL string, flags browser.VisitFlags, opts *config.Options) error {
	emitter := NewEmitter(out)
	logger := log.NewSecureLogger(emitter.LogWriter(), opts.Debug)

	var list *blocklist.List
	if flags.Screenshot {
		listURL := opts.BlocklistURL
		if listURL == "" {
			listURL = config.DefaultBlocklistURL
		}
		loaded, err := blocklist.NewFetcher(config.XDGCacheDir(), logger).Load(ctx, listURL)
		if err != nil {
			// a missing filter list degrades the screenshot, not the visit
			logger.Warn("filter list unavailable", "error", err)
		} else {
			list = loaded
		}
	}

	session := browser.NewSession(opts, logger, list)

	bundle, err := session.Visit(ctx, pageURL, flags)
	if err != nil {
		var redirectErr *browser.InvalidRedirectError
		if errors.As(err, &redirectErr) {
			emitter.Error(KindRedirect, err.Error(), redirectErr.Original, redirectErr.Redirect)
		} else {
			emitter.Error(KindGeneric, err.Error(), "", "")
		}
		return err
	}

	if len(bundle.Screenshot) > 0 {
		emitter.Screenshot(bundle.Screenshot)
		bundle.Screenshot = nil
	}

	emitter.Data(bundle)
	return nil
}
