package browser

import (
	"fmt"
	"os"
	"sync"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

type playwrightLauncher struct {
	opts    Options
	logger  *zap.Logger
	pw      *playwright.Playwright
	browser playwright.Browser

	closeOnce sync.Once
}

func launchPlaywright(opts Options, logger *zap.Logger) (*playwrightLauncher, error) {
	if !opts.SkipInstall && os.Getenv("PLAYWRIGHT_PREINSTALLED") != "1" {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return nil, fmt.Errorf("could not install playwright browsers: %w", err)
		}
	}
	pw, err := playwright.Run()
	if err != nil {
		// Driver version drift: install explicitly and retry once.
		_ = playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}})
		pw, err = playwright.Run()
		if err != nil {
			return nil, fmt.Errorf("could not start playwright: %w", err)
		}
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	}
	if opts.SlowMo > 0 {
		launchOpts.SlowMo = playwright.Float(float64(opts.SlowMo.Milliseconds()))
	}
	b, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("could not launch browser: %w", err)
	}
	logger.Debug("browser launched", zap.Bool("headless", opts.Headless))

	return &playwrightLauncher{
		opts:    opts,
		logger:  logger,
		pw:      pw,
		browser: b,
	}, nil
}

// NewSession opens a fresh BrowserContext so cookies and storage never leak
// between test cases.
func (l *playwrightLauncher) NewSession() (Session, error) {
	ctxOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  l.opts.Viewport.Width,
			Height: l.opts.Viewport.Height,
		},
	}
	if l.opts.VideoDir != "" {
		ctxOpts.RecordVideo = &playwright.RecordVideo{Dir: l.opts.VideoDir}
	}
	bctx, err := l.browser.NewContext(ctxOpts)
	if err != nil {
		return nil, fmt.Errorf("could not create context: %w", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("could not create page: %w", err)
	}
	if l.opts.Timeout > 0 {
		page.SetDefaultTimeout(float64(l.opts.Timeout.Milliseconds()))
	}
	return &playwrightSession{ctx: bctx, page: page, logger: l.logger}, nil
}

func (l *playwrightLauncher) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if cerr := l.browser.Close(); cerr != nil {
			err = fmt.Errorf("close browser: %w", cerr)
		}
		if serr := l.pw.Stop(); serr != nil && err == nil {
			err = fmt.Errorf("stop playwright: %w", serr)
		}
	})
	return err
}

type playwrightSession struct {
	ctx    playwright.BrowserContext
	page   playwright.Page
	logger *zap.Logger
}

func (s *playwrightSession) Navigate(url string) error {
	s.logger.Debug("navigate", zap.String("url", url))
	resp, err := s.page.Goto(url)
	if err != nil {
		return navigationFailed(url, err)
	}
	if resp != nil && !resp.Ok() {
		return navigationFailed(url, fmt.Errorf("status %d", resp.Status()))
	}
	return nil
}

func (s *playwrightSession) Title() (string, error) {
	return s.page.Title()
}

func (s *playwrightSession) TextContent(selector string) (string, bool, error) {
	// A submission may have started a navigation; read the settled document.
	if err := s.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateDomcontentloaded,
	}); err != nil {
		return "", false, err
	}
	loc := s.page.Locator(selector).First()
	n, err := loc.Count()
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", selector, err)
	}
	if n == 0 {
		return "", false, nil
	}
	text, err := loc.TextContent()
	if err != nil {
		return "", false, s.actionErr(selector, err)
	}
	return text, true, nil
}

func (s *playwrightSession) Fill(selector, value string) error {
	s.logger.Debug("fill", zap.String("selector", selector))
	if err := s.page.Locator(selector).Fill(value); err != nil {
		return s.actionErr(selector, err)
	}
	return nil
}

func (s *playwrightSession) SelectOption(selector, value string) error {
	s.logger.Debug("select", zap.String("selector", selector), zap.String("value", value))
	// Values matches an option by exact value or exact label.
	if _, err := s.page.Locator(selector).SelectOption(playwright.SelectOptionValues{Values: &[]string{value}}); err != nil {
		return s.actionErr(selector, err)
	}
	return nil
}

func (s *playwrightSession) Check(selector string) error {
	s.logger.Debug("check", zap.String("selector", selector))
	if err := s.page.Locator(selector).Check(); err != nil {
		return s.actionErr(selector, err)
	}
	return nil
}

func (s *playwrightSession) Click(selector string) error {
	s.logger.Debug("click", zap.String("selector", selector))
	if err := s.page.Locator(selector).Click(); err != nil {
		return s.actionErr(selector, err)
	}
	return nil
}

func (s *playwrightSession) Screenshot(path string) error {
	_, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		Path: playwright.String(path),
	})
	return err
}

func (s *playwrightSession) Close() error {
	if err := s.page.Close(); err != nil {
		_ = s.ctx.Close()
		return err
	}
	return s.ctx.Close()
}

// actionErr classifies a failed action: a selector that matches nothing is
// ErrElementNotFound, anything else (disabled, detached, strict mode) is
// passed through with the selector attached.
func (s *playwrightSession) actionErr(selector string, err error) error {
	if n, cerr := s.page.Locator(selector).Count(); cerr == nil && n == 0 {
		return elementNotFound(selector, err)
	}
	return fmt.Errorf("%s: %w", selector, err)
}
