package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/regform/regform/internal/browser"
	"github.com/regform/regform/internal/pages"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. REGFORM_ENGINE.
const EnvPrefix = "REGFORM"

// Config represents the suite configuration
type Config struct {
	FormURL            string        `mapstructure:"form_url"`
	Engine             string        `mapstructure:"engine"`
	Headless           bool          `mapstructure:"headless"`
	SlowMo             time.Duration `mapstructure:"slow_mo"`
	Timeout            time.Duration `mapstructure:"timeout"`
	Screenshots        bool          `mapstructure:"screenshots"`
	Videos             bool          `mapstructure:"videos"`
	ResultsDir         string        `mapstructure:"results_dir"`
	Parallel           int           `mapstructure:"parallel"`
	IncludeOpenDefects bool          `mapstructure:"include_open_defects"`
	UseFixture         bool          `mapstructure:"use_fixture"`
	SkipInstall        bool          `mapstructure:"skip_install"`
	Log                LogConfig     `mapstructure:"log"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("form_url", pages.FormURL)
	v.SetDefault("engine", browser.EnginePlaywright)
	v.SetDefault("headless", true)
	v.SetDefault("slow_mo", 0)
	v.SetDefault("timeout", 0)
	v.SetDefault("screenshots", true)
	v.SetDefault("videos", false)
	v.SetDefault("results_dir", "./test-results")
	v.SetDefault("parallel", 1)
	v.SetDefault("include_open_defects", false)
	v.SetDefault("use_fixture", false)
	v.SetDefault("skip_install", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load reads defaults, then regform.yaml from configPath (or the working
// directory and ./config when empty), then a .env file, then REGFORM_*
// environment variables. A missing config file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if strings.HasSuffix(configPath, ".yaml") || strings.HasSuffix(configPath, ".yml") {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("regform")
		v.SetConfigType("yaml")
		if configPath != "" {
			v.AddConfigPath(configPath)
		}
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad loads configuration and panics on error
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}
	return cfg
}

// loadDotEnv exports KEY=VALUE pairs from path. Variables already present in
// the environment win.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	env := viper.New()
	env.SetConfigFile(path)
	env.SetConfigType("env")
	if err := env.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	for _, key := range env.AllKeys() {
		name := strings.ToUpper(key)
		if _, set := os.LookupEnv(name); set {
			continue
		}
		if err := os.Setenv(name, env.GetString(key)); err != nil {
			return fmt.Errorf("export %s: %w", name, err)
		}
	}
	return nil
}

// Validate checks values that would otherwise fail late in a run.
func (c *Config) Validate() error {
	if !c.UseFixture && c.FormURL == "" {
		return fmt.Errorf("form_url is required")
	}
	switch strings.ToLower(c.Engine) {
	case browser.EnginePlaywright, browser.EngineRod:
	default:
		return fmt.Errorf("engine %q: %w", c.Engine, browser.ErrUnknownEngine)
	}
	if c.Parallel < 1 {
		return fmt.Errorf("parallel must be at least 1, got %d", c.Parallel)
	}
	if c.SlowMo < 0 || c.Timeout < 0 {
		return fmt.Errorf("slow_mo and timeout must not be negative")
	}
	return nil
}

// BrowserOptions converts the configuration for browser.Launch.
func (c *Config) BrowserOptions() browser.Options {
	opts := browser.DefaultOptions()
	opts.Engine = strings.ToLower(c.Engine)
	opts.Headless = c.Headless
	opts.SlowMo = c.SlowMo
	opts.Timeout = c.Timeout
	opts.SkipInstall = c.SkipInstall
	if c.Videos {
		opts.VideoDir = c.VideosDir()
	}
	return opts
}

// ScreenshotsDir is where failure screenshots are written.
func (c *Config) ScreenshotsDir() string {
	return strings.TrimSuffix(c.ResultsDir, "/") + "/screenshots"
}

// VideosDir is where session recordings are written.
func (c *Config) VideosDir() string {
	return strings.TrimSuffix(c.ResultsDir, "/") + "/videos"
}

// FormConfig returns the page configuration for the configured URL.
func (c *Config) FormConfig() pages.FormConfig {
	return pages.DefaultFormConfig().WithURL(c.FormURL)
}
