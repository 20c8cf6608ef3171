// Package worker isolates page visits in a child process. A wedged
// renderer or crashed Chromium then costs one URL, not the crawl: the
// orchestrator observes the exit, classifies it, and moves on.
//
// The two sides speak line-delimited JSON over the child's stdout.
// Every line is one Message; the child's last word is either a data
// message carrying the extracted signals or an error message naming
// why there are none.
package worker

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/techspider/techspider/internal/model"
)

// Message types.
const (
	// TypeLog forwards a child log line to the parent's logger.
	TypeLog = "log"
	// TypeScreenshot carries the captured viewport PNG, sent separately
	// so the data message stays small enough to scan comfortably.
	TypeScreenshot = "ss"
	// TypeData carries the extracted signal bundle. Terminal.
	TypeData = "data"
	// TypeError reports why no data is coming. Terminal.
	TypeError = "error"
)

// Error kinds carried by TypeError messages.
const (
	// KindRedirect means the page redirected to a foreign registrable
	// domain. The parent turns this into an InvalidRedirectError.
	KindRedirect = "redirect"
	// KindGeneric covers every other visit failure.
	KindGeneric = "generic"
)

// Message is one protocol frame.
type Message struct {
	// Type is one of the Type constants.
	Type string `json:"type"`

	// Message is the log line or error text.
	Message string `json:"message,omitempty"`

	// Kind qualifies error messages.
	Kind string `json:"kind,omitempty"`

	// OriginalURL and RedirectURL are set on redirect errors.
	OriginalURL string `json:"original_url,omitempty"`
	RedirectURL string `json:"redirect_url,omitempty"`

	// Screenshot is the PNG bytes of a TypeScreenshot frame.
	Screenshot []byte `json:"screenshot,omitempty"`

	// Data is the signal bundle of a TypeData frame.
	Data *model.SignalBundle `json:"data,omitempty"`
}

// Emitter serializes messages onto the child's stdout. Writes are
// serialized by a mutex because the session logger and the visit flow
// emit concurrently.
type Emitter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewEmitter creates an Emitter writing to w.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{enc: json.NewEncoder(w)}
}

// Emit writes one frame. Encoding errors are swallowed: when stdout is
// gone the parent already gave up on this worker.
func (e *Emitter) Emit(m Message) {
	e.mu.Lock()
	defer e.mu.Unlock()
	_ = e.enc.Encode(m) //nolint:errcheck // see above
}

// Log emits a log frame.
func (e *Emitter) Log(text string) {
	e.Emit(Message{Type: TypeLog, Message: text})
}

// Screenshot emits the captured viewport.
func (e *Emitter) Screenshot(png []byte) {
	e.Emit(Message{Type: TypeScreenshot, Screenshot: png})
}

// Data emits the terminal data frame.
func (e *Emitter) Data(bundle *model.SignalBundle) {
	e.Emit(Message{Type: TypeData, Data: bundle})
}

// Error emits the terminal error frame.
func (e *Emitter) Error(kind, text, originalURL, redirectURL string) {
	e.Emit(Message{
		Type:        TypeError,
		Kind:        kind,
		Message:     text,
		OriginalURL: originalURL,
		RedirectURL: redirectURL,
	})
}

// LogWriter adapts the emitter into an io.Writer so an slog handler can
// write through it. Each Write becomes one log frame.
func (e *Emitter) LogWriter() io.Writer {
	return logWriter{e}
}

type logWriter struct{ e *Emitter }

func (w logWriter) Write(p []byte) (int, error) {
	w.e.Log(string(p))
	return len(p), nil
}
