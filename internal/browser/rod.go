package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// rod has no implicit wait limit, so sessions get one unless configured.
const rodDefaultTimeout = 30 * time.Second

type rodLauncher struct {
	opts     Options
	logger   *zap.Logger
	launch   *launcher.Launcher
	browser  *rod.Browser
	timeout  time.Duration
	closeErr error

	closeOnce sync.Once
}

func launchRod(ctx context.Context, opts Options, logger *zap.Logger) (*rodLauncher, error) {
	l := launcher.New().Headless(opts.Headless)
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if opts.SlowMo > 0 {
		b = b.SlowMotion(opts.SlowMo)
	}
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	logger.Debug("browser launched", zap.String("control_url", controlURL))

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = rodDefaultTimeout
	}
	return &rodLauncher{
		opts:    opts,
		logger:  logger,
		launch:  l,
		browser: b,
		timeout: timeout,
	}, nil
}

// NewSession opens a page in a fresh incognito context.
func (l *rodLauncher) NewSession() (Session, error) {
	incognito, err := l.browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("could not create incognito context: %w", err)
	}
	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = incognito.Close()
		return nil, fmt.Errorf("could not create page: %w", err)
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             l.opts.Viewport.Width,
		Height:            l.opts.Viewport.Height,
		DeviceScaleFactor: 1,
	}); err != nil {
		_ = page.Close()
		_ = incognito.Close()
		return nil, fmt.Errorf("could not set viewport: %w", err)
	}
	return &rodSession{
		incognito: incognito,
		page:      page,
		timeout:   l.timeout,
		logger:    l.logger,
	}, nil
}

func (l *rodLauncher) Close() error {
	l.closeOnce.Do(func() {
		if err := l.browser.Close(); err != nil {
			l.closeErr = fmt.Errorf("close browser: %w", err)
		}
		l.launch.Cleanup()
	})
	return l.closeErr
}

type rodSession struct {
	incognito *rod.Browser
	page      *rod.Page
	timeout   time.Duration
	logger    *zap.Logger
}

func (s *rodSession) bounded() *rod.Page {
	return s.page.Timeout(s.timeout)
}

func (s *rodSession) element(selector string) (*rod.Element, error) {
	el, err := s.bounded().Element(selector)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, elementNotFound(selector, err)
		}
		return nil, fmt.Errorf("%s: %w", selector, err)
	}
	return el, nil
}

func (s *rodSession) Navigate(url string) error {
	s.logger.Debug("navigate", zap.String("url", url))
	p := s.bounded()
	if err := p.Navigate(url); err != nil {
		return navigationFailed(url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return navigationFailed(url, err)
	}
	return nil
}

func (s *rodSession) Title() (string, error) {
	info, err := s.page.Info()
	if err != nil {
		return "", err
	}
	return info.Title, nil
}

func (s *rodSession) TextContent(selector string) (string, bool, error) {
	p := s.bounded()
	if err := p.WaitLoad(); err != nil {
		return "", false, err
	}
	has, el, err := p.Has(selector)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", selector, err)
	}
	if !has {
		return "", false, nil
	}
	text, err := el.Text()
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", selector, err)
	}
	return text, true, nil
}

func (s *rodSession) Fill(selector, value string) error {
	s.logger.Debug("fill", zap.String("selector", selector))
	el, err := s.element(selector)
	if err != nil {
		return err
	}
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("%s: %w", selector, err)
	}
	if err := el.Input(value); err != nil {
		return fmt.Errorf("%s: %w", selector, err)
	}
	return nil
}

func (s *rodSession) SelectOption(selector, value string) error {
	s.logger.Debug("select", zap.String("selector", selector), zap.String("value", value))
	el, err := s.element(selector)
	if err != nil {
		return err
	}
	byValue, byLabel := optionMatchers(value)
	if err := el.Select([]string{byValue}, true, rod.SelectorTypeCSSSector); err == nil {
		return nil
	}
	if err := el.Select([]string{byLabel}, true, rod.SelectorTypeRegex); err != nil {
		return fmt.Errorf("%s: no option with value or label %q: %w", selector, value, err)
	}
	return nil
}

// optionMatchers returns a CSS selector matching an option whose value is
// exactly value, and a regex matching an option whose label is exactly value.
func optionMatchers(value string) (byValue, byLabel string) {
	quoted := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value)
	return `option[value="` + quoted + `"]`, `^\s*` + regexp.QuoteMeta(value) + `\s*$`
}

func (s *rodSession) Check(selector string) error {
	s.logger.Debug("check", zap.String("selector", selector))
	el, err := s.element(selector)
	if err != nil {
		return err
	}
	checked, err := el.Property("checked")
	if err != nil {
		return fmt.Errorf("%s: %w", selector, err)
	}
	if checked.Bool() {
		return nil
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("%s: %w", selector, err)
	}
	checked, err = el.Property("checked")
	if err != nil {
		return fmt.Errorf("%s: %w", selector, err)
	}
	if !checked.Bool() {
		return fmt.Errorf("%s: click did not check the element", selector)
	}
	return nil
}

func (s *rodSession) Click(selector string) error {
	s.logger.Debug("click", zap.String("selector", selector))
	el, err := s.element(selector)
	if err != nil {
		return err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("%s: %w", selector, err)
	}
	return nil
}

func (s *rodSession) Screenshot(path string) error {
	data, err := s.page.Screenshot(false, nil)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *rodSession) Close() error {
	perr := s.page.Close()
	ierr := s.incognito.Close()
	if perr != nil {
		return perr
	}
	return ierr
}
