package main

import (
	"context"
	"fmt"
	"net"
	"os"

	"github.com/regform/regform/internal/browser"
	"github.com/regform/regform/internal/fixture"
	"github.com/regform/regform/internal/scenarios"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	runEngine      string
	runFixture     bool
	runGroups      []string
	runReport      string
	runMetricsFile string
	runParallel    int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the registration form scenarios and print a report",
	Long: `Runs every scenario (or the selected groups) against the form, each in
its own browser session. Scenarios pinned to an open defect are reported as
"known defect" and do not fail the run.

Examples:
  regform run
  regform run --group "Password" --group "Email" --report results/report.json
  regform run --fixture --engine rod --parallel 4`,
	RunE: runScenarios,
}

func init() {
	runCmd.Flags().StringVar(&runEngine, "engine", "", "browser engine: playwright or rod (overrides config)")
	runCmd.Flags().BoolVar(&runFixture, "fixture", false, "run against a local replica of the form")
	runCmd.Flags().StringSliceVar(&runGroups, "group", nil, "only run these scenario groups")
	runCmd.Flags().StringVar(&runReport, "report", "", "write the report to this .json or .yaml file")
	runCmd.Flags().StringVar(&runMetricsFile, "metrics-file", "", "write Prometheus textfile metrics here")
	runCmd.Flags().IntVar(&runParallel, "parallel", 0, "scenarios to run at once (overrides config)")
}

func runScenarios(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if runEngine != "" {
		cfg.Engine = runEngine
	}
	if runParallel > 0 {
		cfg.Parallel = runParallel
	}
	if runFixture {
		cfg.UseFixture = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	selected := scenarios.Filter(scenarios.Catalog(), runGroups...)
	if len(selected) == 0 {
		return fmt.Errorf("no scenarios match groups %v (have %v)", runGroups, scenarios.Groups(scenarios.Catalog()))
	}

	form := cfg.FormConfig()
	if cfg.UseFixture {
		url, stop, err := startFixture(ctx)
		if err != nil {
			return err
		}
		defer stop()
		form = form.WithURL(url)
	}

	launcher, err := browser.Launch(ctx, cfg.BrowserOptions(), logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := launcher.Close(); err != nil {
			logger.Warn("close browser", zap.Error(err))
		}
	}()

	opts := []scenarios.Option{
		scenarios.WithLogger(logger),
		scenarios.WithParallel(cfg.Parallel),
	}
	if cfg.Screenshots {
		opts = append(opts, scenarios.WithScreenshots(cfg.ScreenshotsDir()))
	}
	var metrics *scenarios.Metrics
	if runMetricsFile != "" {
		metrics = scenarios.NewMetrics()
		opts = append(opts, scenarios.WithMetrics(metrics))
	}

	logger.Info("running scenarios",
		zap.Int("count", len(selected)),
		zap.String("form_url", form.URL),
		zap.String("engine", cfg.Engine))
	report := scenarios.NewRunner(launcher, form, opts...).Run(ctx, selected)
	report.Print(os.Stdout)

	if runReport != "" {
		if err := report.Save(runReport); err != nil {
			return fmt.Errorf("save report: %w", err)
		}
		logger.Info("report saved", zap.String("path", runReport))
	}
	if metrics != nil {
		if err := metrics.WriteTextfile(runMetricsFile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	if !report.OK() {
		return errScenariosFailed
	}
	return nil
}

// startFixture serves the replica on a free loopback port.
func startFixture(ctx context.Context) (string, func(), error) {
	srv, err := fixture.NewServer(fixture.LiveQuirks(), logger.Named("fixture"))
	if err != nil {
		return "", nil, err
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("listen: %w", err)
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Serve(ctx, ln); err != nil {
			logger.Error("fixture server", zap.Error(err))
		}
	}()
	stop := func() {
		cancel()
		<-done
	}
	return "http://" + ln.Addr().String() + fixture.FormPath, stop, nil
}
