package crawler

import (
	"errors"
	"fmt"

	"github.com/techspider/techspider/internal/browser"
	"github.com/techspider/techspider/internal/worker"
)

// Page error kinds recorded against a URL in the crawl result.
const (
	// KindResponseNotOK means the visit itself failed, including after
	// the simple-mode retry.
	KindResponseNotOK = "RESPONSE_NOT_OK"
	// KindNoResponse means the browser finished without ever receiving
	// a response for the document.
	KindNoResponse = "NO_RESPONSE"
	// KindNoHTMLDocument means the page produced no HTML document.
	KindNoHTMLDocument = "NO_HTML_DOCUMENT"
	// KindUnknown covers everything unclassified.
	KindUnknown = "UNKNOWN_ERROR"
)

// errorMessages maps kinds to their human-readable form used in logs.
var errorMessages = map[string]string{
	KindResponseNotOK:  "Response was not ok",
	KindNoResponse:     "No response from server",
	KindNoHTMLDocument: "No HTML document",
	KindUnknown:        "Unknown error",
}

// PageError is a classified visit failure.
type PageError struct {
	// Kind is one of the Kind constants.
	Kind string
	// cause is the underlying error, kept for unwrapping.
	cause error
}

// Error implements the error interface.
func (e *PageError) Error() string {
	msg := errorMessages[e.Kind]
	if msg == "" {
		msg = errorMessages[KindUnknown]
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *PageError) Unwrap() error { return e.cause }

// classifyVisitError folds a visit failure into the page error
// taxonomy. Redirect errors are never classified here: the caller
// handles them before classification.
func classifyVisitError(err error) *PageError {
	var pageErr *PageError
	if errors.As(err, &pageErr) {
		return pageErr
	}

	switch {
	case errors.Is(err, browser.ErrNoDocument):
		return &PageError{Kind: KindNoHTMLDocument, cause: err}
	case errors.Is(err, worker.ErrNoData):
		return &PageError{Kind: KindResponseNotOK, cause: err}
	default:
		return &PageError{Kind: KindUnknown, cause: err}
	}
}
