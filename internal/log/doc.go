// Package log provides secure logging functionality for techspider.
//
// The crawler handles material that must never leak into plain-text
// logs: session cookies harvested from visited pages, basic-auth
// credentials from site configuration, and authorization headers
// observed on responses. This package wraps log/slog with a sanitizing
// handler that masks such values before they reach any sink.
//
// Key features:
//   - Automatic sanitization of sensitive keys (cookie, authorization, password, etc.)
//   - Pattern-based detection of sensitive values (JWT, bearer tokens, basic auth)
//   - Drop-in slog.Handler, composable with text or JSON output
//
// Example usage:
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Info("visiting page",
//	    slog.String("url", pageURL),
//	    slog.String("cookie", cookieValue), // Automatically sanitized
//	)
package log
