package browser

import (
	"errors"
	"fmt"
)

// Browser session errors.
var (
	// ErrBrowserDisconnected is returned when the browser process died
	// before the visit completed.
	ErrBrowserDisconnected = errors.New("browser disconnected")
	// ErrNoDocument is returned when the page yielded no HTML document.
	ErrNoDocument = errors.New("no html document")
)

// InvalidRedirectError is returned when the page redirected to a
// different registrable domain. For the crawl's seed page, this outcome
// ends the crawl with a redirect result instead of a failure.
type InvalidRedirectError struct {
	// Original is the URL the visit was asked for.
	Original string
	// Redirect is where the browser ended up.
	Redirect string
}

// Error implements the error interface.
func (e *InvalidRedirectError) Error() string {
	return fmt.Sprintf("invalid redirect from %s to %s", e.Original, e.Redirect)
}
