package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/techspider/techspider/internal/browser"
	"github.com/techspider/techspider/internal/config"
	"github.com/techspider/techspider/internal/model"
)

// Command is the hidden subcommand the parent re-executes itself with.
const Command = "render-worker"

// Worker argument flag names, shared with the command that parses them.
const (
	FlagURL        = "url"
	FlagScreenshot = "screenshot"
	FlagSimple     = "simple"
	FlagFirst      = "first"
	FlagOptions    = "options"
)

// Dispatcher errors.
var (
	// ErrNoData is returned when the worker exited cleanly without
	// producing a data or error message.
	ErrNoData = errors.New("worker exited without data")
)

// maxFrameSize bounds one protocol line. Signal bundles carry full page
// HTML; screenshots are sent base64-encoded in their own frame.
const maxFrameSize = 64 << 20

// Runner executes the worker process and streams its decoded frames.
// It returns the process exit code. Injectable so Dispatcher tests can
// script worker behavior without spawning processes.
type Runner func(ctx context.Context, args []string, onFrame func(Message)) (int, error)

// Dispatcher spawns one worker process per page visit and reassembles
// the visit result from the worker's frames.
type Dispatcher struct {
	opts   *config.Options
	logger *slog.Logger
	runner Runner
}

// NewDispatcher creates a Dispatcher that re-executes the current
// binary as its worker.
func NewDispatcher(opts *config.Options, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{opts: opts, logger: logger}
	d.runner = d.execRunner
	return d
}

// WithRunner overrides process execution.
func (d *Dispatcher) WithRunner(r Runner) *Dispatcher {
	d.runner = r
	return d
}

// BuildArgs encodes a visit request as worker argv.
func BuildArgs(pageURL string, flags browser.VisitFlags, opts *config.Options) ([]string, error) {
	encoded, err := json.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode worker options: %w", err)
	}

	args := []string{
		Command,
		"--" + FlagURL, pageURL,
		"--" + FlagOptions, string(encoded),
	}
	if flags.Screenshot {
		args = append(args, "--"+FlagScreenshot)
	}
	if flags.Simple {
		args = append(args, "--"+FlagSimple)
	}
	if flags.First {
		args = append(args, "--"+FlagFirst)
	}
	return args, nil
}

// Visit runs one page visit in a worker process and returns its signal
// bundle. The exit is classified: an error frame beats the exit code, a
// clean exit without data is still a failure, and a crash without any
// frame reports the exit code.
func (d *Dispatcher) Visit(ctx context.Context, pageURL string, flags browser.VisitFlags) (*model.SignalBundle, error) {
	args, err := BuildArgs(pageURL, flags, d.opts)
	if err != nil {
		return nil, err
	}

	var (
		bundle     *model.SignalBundle
		screenshot []byte
		visitErr   error
	)

	exitCode, runErr := d.runner(ctx, args, func(m Message) {
		switch m.Type {
		case TypeLog:
			d.logger.Debug("worker: " + strings.TrimSpace(m.Message))
		case TypeScreenshot:
			screenshot = m.Screenshot
		case TypeData:
			bundle = m.Data
		case TypeError:
			if m.Kind == KindRedirect {
				visitErr = &browser.InvalidRedirectError{
					Original: m.OriginalURL,
					Redirect: m.RedirectURL,
				}
			} else {
				visitErr = fmt.Errorf("worker visit failed: %s", m.Message)
			}
		}
	})

	if visitErr != nil {
		return nil, visitErr
	}
	if bundle == nil {
		switch {
		case runErr != nil:
			return nil, fmt.Errorf("worker execution failed: %w", runErr)
		case exitCode != 0:
			return nil, fmt.Errorf("worker crashed with exit code %d", exitCode)
		default:
			return nil, ErrNoData
		}
	}

	if screenshot != nil {
		bundle.Screenshot = screenshot
	}
	return bundle, nil
}

// execRunner launches the current binary as the worker and decodes its
// stdout frames. Stderr lines pass straight to the parent logger:
// anything there escaped the protocol (Chromium noise, panics).
func (d *Dispatcher) execRunner(ctx context.Context, args []string, onFrame func(Message)) (int, error) {
	exe, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("failed to locate own binary: %w", err)
	}

	cmd := exec.CommandContext(ctx, exe, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return 0, err
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start worker: %w", err)
	}

	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				d.logger.Debug("worker stderr: " + line)
			}
		}
	}()

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 1<<20), maxFrameSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var m Message
		if err := json.Unmarshal(line, &m); err != nil {
			d.logger.Debug("worker emitted non-protocol output", "line", string(line))
			continue
		}
		onFrame(m)
	}
	if err := scanner.Err(); err != nil {
		d.logger.Warn("worker output truncated", "error", err)
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 0, err
	}
	return 0, nil
}
