package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"swagflow/internal/application/port/output"
	"swagflow/internal/domain/entity"

	"github.com/spf13/viper"
)

const EnvPrefix = "SWAGFLOW"

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is read once per run and passed by value into constructors.
type Config struct {
	BaseURL          string `mapstructure:"base_url" yaml:"base_url"`
	Headless         bool   `mapstructure:"headless" yaml:"headless"`
	ImplicitWaitMs   int    `mapstructure:"implicit_wait_ms" yaml:"implicit_wait_ms"`
	DefaultTimeoutMs int    `mapstructure:"default_timeout_ms" yaml:"default_timeout_ms"`
	PollIntervalMs   int    `mapstructure:"poll_interval_ms" yaml:"poll_interval_ms"`
	LogLevel         string `mapstructure:"log_level" yaml:"log_level"`
	LogFile          string `mapstructure:"log_file" yaml:"log_file"`

	Driver           string `mapstructure:"driver" yaml:"driver"`
	StartupTimeoutMs int    `mapstructure:"startup_timeout_ms" yaml:"startup_timeout_ms"`
	DismissTimeoutMs int    `mapstructure:"dismiss_timeout_ms" yaml:"dismiss_timeout_ms"`
	RetryAttempts    int    `mapstructure:"retry_attempts" yaml:"retry_attempts"`
	RetryBackoffMs   int    `mapstructure:"retry_backoff_ms" yaml:"retry_backoff_ms"`

	ArtifactsDir string `mapstructure:"artifacts_dir" yaml:"artifacts_dir"`
	Parallel     int    `mapstructure:"parallel" yaml:"parallel"`

	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
}

var drivers = []string{"rod", "playwright", "chromedp"}

var logLevels = []string{"debug", "info", "warn", "error"}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("base_url", "https://www.saucedemo.com/")
	v.SetDefault("headless", false)
	v.SetDefault("implicit_wait_ms", 5000)
	v.SetDefault("default_timeout_ms", 10000)
	v.SetDefault("poll_interval_ms", 100)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")

	v.SetDefault("driver", "rod")
	v.SetDefault("startup_timeout_ms", 30000)
	v.SetDefault("dismiss_timeout_ms", 500)
	v.SetDefault("retry_attempts", 3)
	v.SetDefault("retry_backoff_ms", 500)

	v.SetDefault("artifacts_dir", "artifacts")
	v.SetDefault("parallel", 1)

	v.SetDefault("username", "standard_user")
	v.SetDefault("password", "secret_sauce")
}

// Load builds a Config from defaults, an optional YAML file and the
// environment. SWAGFLOW_* variables win; HEADLESS, LOG_LEVEL and BASE_URL are
// accepted as unprefixed aliases. When file is empty SWAGFLOW_CONFIG is
// consulted.
func Load(env output.ConfigPort, file string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if file == "" && env != nil {
		file = env.Get(EnvPrefix + "_CONFIG")
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, alias := range []string{"headless", "log_level", "base_url"} {
		if err := v.BindEnv(alias, EnvPrefix+"_"+strings.ToUpper(alias), strings.ToUpper(alias)); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", alias, err)
		}
	}

	return NewConfigFromViper(v)
}

func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.Driver = strings.ToLower(strings.TrimSpace(cfg.Driver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("base_url must be an absolute http(s) URL, got %q", c.BaseURL))
	}
	if c.ImplicitWaitMs <= 0 {
		errs = append(errs, errors.New("implicit_wait_ms must be positive"))
	}
	if c.DefaultTimeoutMs <= 0 {
		errs = append(errs, errors.New("default_timeout_ms must be positive"))
	}
	if c.PollIntervalMs <= 0 {
		errs = append(errs, errors.New("poll_interval_ms must be positive"))
	} else if c.PollIntervalMs > c.ImplicitWaitMs || c.PollIntervalMs > c.DefaultTimeoutMs {
		errs = append(errs, errors.New("poll_interval_ms must not exceed implicit_wait_ms or default_timeout_ms"))
	}
	if !contains(logLevels, c.LogLevel) {
		errs = append(errs, fmt.Errorf("log_level must be one of %v, got %q", logLevels, c.LogLevel))
	}
	if !contains(drivers, c.Driver) {
		errs = append(errs, fmt.Errorf("driver must be one of %v, got %q", drivers, c.Driver))
	}
	if c.StartupTimeoutMs <= 0 {
		errs = append(errs, errors.New("startup_timeout_ms must be positive"))
	}
	if c.DismissTimeoutMs <= 0 {
		errs = append(errs, errors.New("dismiss_timeout_ms must be positive"))
	}
	if c.RetryAttempts < 1 {
		errs = append(errs, errors.New("retry_attempts must be >= 1"))
	}
	if c.RetryBackoffMs < 0 {
		errs = append(errs, errors.New("retry_backoff_ms must not be negative"))
	}
	if c.Parallel < 1 {
		errs = append(errs, errors.New("parallel must be >= 1"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func (c *Config) Deadline() entity.Deadline {
	return entity.DeadlineFromMillis(c.DefaultTimeoutMs, c.PollIntervalMs)
}

// ImplicitDeadline bounds negative checks such as "is the item in the cart".
func (c *Config) ImplicitDeadline() entity.Deadline {
	return entity.DeadlineFromMillis(c.ImplicitWaitMs, c.PollIntervalMs)
}

func (c *Config) RetryPolicy() entity.RetryPolicy {
	return entity.RetryPolicy{
		MaxAttempts: c.RetryAttempts,
		Backoff:     time.Duration(c.RetryBackoffMs) * time.Millisecond,
	}
}

func (c *Config) DismissTimeout() time.Duration {
	return time.Duration(c.DismissTimeoutMs) * time.Millisecond
}

func (c *Config) StartupTimeout() time.Duration {
	return time.Duration(c.StartupTimeoutMs) * time.Millisecond
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
