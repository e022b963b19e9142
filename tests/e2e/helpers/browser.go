package helpers

import (
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/regform/regform/internal/browser"
	"github.com/regform/regform/internal/config"
	"github.com/regform/regform/internal/fixture"
	"github.com/regform/regform/internal/logging"
	"github.com/regform/regform/internal/pages"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// BrowserHelper owns the browser for one test function and hands every
// test case its own session.
type BrowserHelper struct {
	Launcher browser.Launcher
	Config   *config.Config
	Form     pages.FormConfig
	Logger   *zap.Logger

	fixture *httptest.Server
	t       *testing.T
}

// NewBrowserHelper loads the suite configuration.
func NewBrowserHelper(t *testing.T) *BrowserHelper {
	t.Helper()
	cfg, err := config.Load(os.Getenv("REGFORM_CONFIG"))
	require.NoError(t, err, "Failed to load configuration")

	logger := logging.Nop()
	if testing.Verbose() {
		if l, err := logging.New(cfg.Log.Level, cfg.Log.Format); err == nil {
			logger = l
		}
	}
	return &BrowserHelper{
		Config: cfg,
		Form:   cfg.FormConfig(),
		Logger: logger,
		t:      t,
	}
}

// Setup starts the local replica when configured, or when the live form is
// unreachable and REGFORM_FIXTURE_FALLBACK is not "false", then launches the
// browser.
func (b *BrowserHelper) Setup() error {
	useFixture := b.Config.UseFixture
	if !useFixture && os.Getenv("REGFORM_FIXTURE_FALLBACK") != "false" && !Reachable(b.Form.URL) {
		b.t.Logf("%s is unreachable, using the local replica", b.Form.URL)
		useFixture = true
	}
	if useFixture {
		srv, err := fixture.NewServer(fixture.LiveQuirks(), b.Logger.Named("fixture"))
		if err != nil {
			return fmt.Errorf("could not build fixture: %w", err)
		}
		b.fixture = httptest.NewServer(srv.Handler())
		b.Form = b.Form.WithURL(b.fixture.URL + fixture.FormPath)
	}

	opts := b.Config.BrowserOptions()
	launcher, err := browser.Launch(context.Background(), opts, b.Logger)
	if err != nil {
		return fmt.Errorf("could not launch %s: %w", opts.Engine, err)
	}
	b.Launcher = launcher
	return nil
}

// SetupOrSkip is Setup for suites that cannot run without a browser.
func (b *BrowserHelper) SetupOrSkip() {
	b.t.Helper()
	if os.Getenv("SKIP_BROWSER") == "true" {
		b.t.Skip("Skipping browser test")
	}
	if err := b.Setup(); err != nil {
		b.TearDown()
		b.t.Skipf("Could not start browser: %v (browsers may not be installed)", err)
	}
}

// TearDown closes the browser and the replica.
func (b *BrowserHelper) TearDown() {
	if b.Launcher != nil {
		if err := b.Launcher.Close(); err != nil {
			b.t.Logf("close browser: %v", err)
		}
	}
	if b.fixture != nil {
		b.fixture.Close()
	}
	_ = b.Logger.Sync()
}

// OpenForm gives t a fresh session with the form loaded. The session is
// closed when t ends, after a screenshot if t failed.
func (b *BrowserHelper) OpenForm(t *testing.T) *pages.RegistrationFormPage {
	t.Helper()
	session, err := b.Launcher.NewSession()
	require.NoError(t, err, "Failed to open session")
	t.Cleanup(func() {
		if t.Failed() && b.Config.Screenshots {
			b.screenshot(t, session)
		}
		if err := session.Close(); err != nil {
			t.Logf("close session: %v", err)
		}
	})

	form := pages.NewRegistrationFormPage(session, b.Form)
	require.NoError(t, form.NavigateToForm(), "Failed to navigate to the form")
	return form
}

// SkipOpenDefect skips a test whose assertion describes behaviour the form
// does not have yet, unless open defects were requested.
func (b *BrowserHelper) SkipOpenDefect(t *testing.T, bug int, summary string) {
	t.Helper()
	if !b.Config.IncludeOpenDefects {
		t.Skipf("bug #%d is open: %s (set REGFORM_INCLUDE_OPEN_DEFECTS=true to run)", bug, summary)
	}
}

func (b *BrowserHelper) screenshot(t *testing.T, session browser.Session) {
	dir := b.Config.ScreenshotsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Logf("screenshot dir: %v", err)
		return
	}
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	path := filepath.Join(dir, fmt.Sprintf("%s_%d.png", name, time.Now().Unix()))
	if err := session.Screenshot(path); err != nil {
		t.Logf("screenshot: %v", err)
		return
	}
	t.Logf("Screenshot saved to %s", path)
}
