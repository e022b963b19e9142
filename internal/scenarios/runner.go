package scenarios

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/regform/regform/internal/browser"
	"github.com/regform/regform/internal/pages"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Status is the outcome class of a scenario run.
type Status string

const (
	StatusPass        Status = "pass"
	StatusFail        Status = "fail"
	StatusKnownDefect Status = "known-defect"
	StatusError       Status = "error"
	StatusSkipped     Status = "skipped"
)

// Result is one executed scenario.
type Result struct {
	Name       string   `json:"name" yaml:"name"`
	Group      string   `json:"group" yaml:"group"`
	Status     Status   `json:"status" yaml:"status"`
	Defect     *Defect  `json:"defect,omitempty" yaml:"defect,omitempty"`
	Message    string   `json:"message,omitempty" yaml:"message,omitempty"`
	Error      string   `json:"error,omitempty" yaml:"error,omitempty"`
	Note       string   `json:"note,omitempty" yaml:"note,omitempty"`
	Screenshot string   `json:"screenshot,omitempty" yaml:"screenshot,omitempty"`
	DurationMS int64    `json:"duration_ms" yaml:"duration_ms"`
	Outcome    *Outcome `json:"-" yaml:"-"`
}

// Runner executes scenarios, each against its own session.
type Runner struct {
	launcher      browser.Launcher
	form          pages.FormConfig
	logger        *zap.Logger
	metrics       *Metrics
	parallel      int
	screenshotDir string
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithMetrics records every result in m.
func WithMetrics(m *Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithParallel bounds how many scenarios run at once.
func WithParallel(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.parallel = n
		}
	}
}

// WithScreenshots saves a screenshot of every failed scenario into dir.
func WithScreenshots(dir string) Option {
	return func(r *Runner) { r.screenshotDir = dir }
}

// NewRunner builds a runner that opens sessions from launcher and points the
// form page at form.
func NewRunner(launcher browser.Launcher, form pages.FormConfig, opts ...Option) *Runner {
	r := &Runner{
		launcher: launcher,
		form:     form,
		logger:   zap.NewNop(),
		parallel: 1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes all scenarios and returns the report. Results keep the order
// of the input. Scenarios not started before ctx is done are skipped.
func (r *Runner) Run(ctx context.Context, all []Scenario) *Report {
	results := make([]Result, len(all))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallel)
	for i, sc := range all {
		g.Go(func() error {
			if gctx.Err() != nil {
				results[i] = Result{Name: sc.Name, Group: sc.Group, Status: StatusSkipped, Defect: sc.Defect, Error: gctx.Err().Error()}
			} else {
				results[i] = r.runOne(sc)
			}
			if r.metrics != nil {
				r.metrics.Observe(results[i])
			}
			return nil
		})
	}
	_ = g.Wait()
	return NewReport(r.form.URL, results)
}

func (r *Runner) runOne(sc Scenario) Result {
	start := time.Now()
	log := r.logger.With(zap.String("scenario", sc.Name), zap.String("group", sc.Group))
	res := Result{Name: sc.Name, Group: sc.Group, Defect: sc.Defect}

	outcome, session, err := r.execute(sc)
	if session != nil {
		if err != nil && r.screenshotDir != "" {
			res.Screenshot = r.screenshot(session, sc, log)
		}
		if cerr := session.Close(); cerr != nil {
			log.Warn("close session", zap.Error(cerr))
		}
	}
	res.DurationMS = time.Since(start).Milliseconds()
	if outcome != nil {
		res.Outcome = outcome
		res.Message = outcome.Message
	}
	classify(&res, sc, err)

	fields := []zap.Field{zap.String("status", string(res.Status)), zap.Int64("duration_ms", res.DurationMS)}
	switch res.Status {
	case StatusPass, StatusKnownDefect:
		log.Info("scenario finished", fields...)
	default:
		log.Warn("scenario finished", append(fields, zap.String("error", res.Error))...)
	}
	return res
}

func (r *Runner) execute(sc Scenario) (*Outcome, browser.Session, error) {
	session, err := r.launcher.NewSession()
	if err != nil {
		return nil, nil, fmt.Errorf("new session: %w", err)
	}
	page := pages.NewRegistrationFormPage(session, r.form)
	if err := page.NavigateToForm(); err != nil {
		return nil, session, err
	}
	o, err := sc.Execute(page)
	return &o, session, err
}

func classify(res *Result, sc Scenario, err error) {
	var assertErr *AssertionError
	switch {
	case err == nil && sc.OpenDefect():
		res.Status = StatusPass
		res.Note = fmt.Sprintf("defect #%d no longer reproduces", sc.Defect.Number)
	case err == nil:
		res.Status = StatusPass
	case sc.ShowsOpenDefect(err):
		res.Status = StatusKnownDefect
		res.Error = err.Error()
	case errors.As(err, &assertErr):
		res.Status = StatusFail
		res.Error = err.Error()
	default:
		res.Status = StatusError
		res.Error = err.Error()
	}
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

func (r *Runner) screenshot(session browser.Session, sc Scenario, log *zap.Logger) string {
	if err := os.MkdirAll(r.screenshotDir, 0o755); err != nil {
		log.Warn("create screenshot dir", zap.Error(err))
		return ""
	}
	name := fmt.Sprintf("%s_%s_%d.png",
		unsafeFileChars.ReplaceAllString(sc.Group, "_"),
		unsafeFileChars.ReplaceAllString(sc.Name, "_"),
		time.Now().Unix())
	path := filepath.Join(r.screenshotDir, name)
	if err := session.Screenshot(path); err != nil {
		log.Warn("screenshot", zap.Error(err))
		return ""
	}
	return path
}
