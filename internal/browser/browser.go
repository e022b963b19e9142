// Package browser provides the automation capability the page objects are
// built on: one Session per browser tab, created from a Launcher that owns
// the browser process.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrElementNotFound is returned when a selector matches nothing.
	ErrElementNotFound = errors.New("element not found")
	// ErrNavigation is returned when a URL cannot be loaded.
	ErrNavigation = errors.New("navigation failed")
	// ErrUnknownEngine is returned by Launch for an unsupported engine name.
	ErrUnknownEngine = errors.New("unknown browser engine")
)

// Engine names accepted by Launch.
const (
	EnginePlaywright = "playwright"
	EngineRod        = "rod"
)

// Session is a live browser tab. Every call blocks until the engine reports
// the action as applied.
type Session interface {
	Navigate(url string) error
	Title() (string, error)
	// TextContent returns the text of the first element matching selector.
	// ok is false when no element matches at call time.
	TextContent(selector string) (text string, ok bool, err error)
	Fill(selector, value string) error
	SelectOption(selector, value string) error
	Check(selector string) error
	Click(selector string) error
	Screenshot(path string) error
	Close() error
}

// Launcher owns a browser process and hands out isolated sessions.
type Launcher interface {
	NewSession() (Session, error)
	Close() error
}

// Options configures Launch.
type Options struct {
	Engine      string
	Headless    bool
	SlowMo      time.Duration
	Timeout     time.Duration // zero keeps the engine default
	SkipInstall bool
	VideoDir    string // playwright only; empty disables recording
	Viewport    Viewport
}

// Viewport is the page size of new sessions.
type Viewport struct {
	Width  int
	Height int
}

// DefaultOptions mirrors what the suite uses when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Engine:   EnginePlaywright,
		Headless: true,
		Viewport: Viewport{Width: 1280, Height: 720},
	}
}

// Launch starts the browser engine named in opts.
func Launch(ctx context.Context, opts Options, logger *zap.Logger) (Launcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Viewport.Width == 0 || opts.Viewport.Height == 0 {
		opts.Viewport = DefaultOptions().Viewport
	}
	engine := strings.ToLower(strings.TrimSpace(opts.Engine))
	logger = logger.With(zap.String("engine", engine))
	switch engine {
	case "", EnginePlaywright:
		return launchPlaywright(opts, logger)
	case EngineRod:
		return launchRod(ctx, opts, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, opts.Engine)
	}
}

func elementNotFound(selector string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrElementNotFound, selector, err)
}

func navigationFailed(url string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrNavigation, url, err)
}
