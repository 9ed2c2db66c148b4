package di

import (
	"context"
	"errors"
	"fmt"
	"io"

	"swagflow/internal/application/port/output"
	"swagflow/internal/domain/entity"
	"swagflow/internal/infrastructure/browser/chromedp"
	"swagflow/internal/infrastructure/browser/domclean"
	"swagflow/internal/infrastructure/browser/playwright"
	"swagflow/internal/infrastructure/browser/rod"
	"swagflow/internal/infrastructure/config"
	"swagflow/internal/infrastructure/env"
	"swagflow/internal/infrastructure/logger"
	"swagflow/internal/infrastructure/report"
	"swagflow/internal/usecase/pageflow"
	"swagflow/internal/usecase/scenario"
)

var ErrUnknownDriver = errors.New("unknown browser driver")

type Container struct {
	Config   *config.Config
	Env      *env.EnvService
	Logger   output.LoggerPort
	Reporter *report.Reporter
	Console  *report.Console
	Pages    pageflow.Options
}

type Options struct {
	// EnvDir holds the .env files; "" means the working directory.
	EnvDir     string
	ConfigFile string
	// Override adjusts the loaded config, e.g. from CLI flags. The result
	// is validated again.
	Override func(*config.Config)
	// Output receives the colored progress; nil disables it.
	Output io.Writer
}

func NewContainer(opts Options) (*Container, error) {
	envDir := opts.EnvDir
	if envDir == "" {
		envDir = "."
	}
	envService, err := env.NewEnvService(envDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg, err := config.Load(envService, opts.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.Override != nil {
		opts.Override(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.File = cfg.LogFile
	log, err := logger.NewLoggerAdapter(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	c := &Container{
		Config: cfg,
		Env:    envService,
		Logger: log,
		Reporter: report.New(report.Options{
			Dir:   cfg.ArtifactsDir,
			Clean: domclean.DefaultConfig(),
		}, log),
		Pages: PageOptions(cfg),
	}
	if opts.Output != nil {
		c.Console = report.NewConsole(opts.Output)
	}

	log.Info("container ready",
		"driver", cfg.Driver,
		"base_url", cfg.BaseURL,
		"headless", cfg.Headless,
		"run_id", c.Reporter.RunID())
	return c, nil
}

// UseBaseURL points the page objects at another store, e.g. the local demo
// store once it is listening.
func (c *Container) UseBaseURL(baseURL string) {
	c.Config.BaseURL = baseURL
	c.Pages.BaseURL = baseURL
}

// NewRunner wires a scenario runner from the current settings.
func (c *Container) NewRunner() *scenario.Runner {
	opts := []scenario.Option{
		scenario.WithParallel(c.Config.Parallel),
		scenario.WithCredentials(scenario.Credentials{Username: c.Config.Username, Password: c.Config.Password}),
	}
	if c.Console != nil {
		opts = append(opts, scenario.WithObserver(c.Console))
	}
	return scenario.NewRunner(c.NewBrowser, c.Reporter, c.Logger, c.Pages, opts...)
}

func PageOptions(cfg *config.Config) pageflow.Options {
	opts := pageflow.DefaultOptions(cfg.BaseURL)
	opts.Deadline = cfg.Deadline()
	opts.ImplicitWait = cfg.ImplicitDeadline()
	opts.Retry = cfg.RetryPolicy()
	opts.DismissTimeout = cfg.DismissTimeout()
	opts.Rules = entity.DefaultDismissalRules()
	return opts
}

// NewBrowser launches a session on the configured driver. It is the
// runner's browser factory.
func (c *Container) NewBrowser(ctx context.Context) (output.BrowserPort, error) {
	cfg := c.Config
	var browser output.BrowserPort
	switch cfg.Driver {
	case "rod":
		browserCfg := rod.DefaultConfig()
		browserCfg.Headless = cfg.Headless
		browserCfg.StartupTimeout = cfg.StartupTimeout()
		b, err := rod.NewBrowserAdapter(ctx, browserCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to start rod browser: %w", err)
		}
		browser = b
	case "playwright":
		browserCfg := playwright.DefaultConfig()
		browserCfg.Headless = cfg.Headless
		browserCfg.StartupTimeout = cfg.StartupTimeout()
		b, err := playwright.NewBrowserAdapter(ctx, browserCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to start playwright browser: %w", err)
		}
		browser = b
	case "chromedp":
		browserCfg := chromedp.DefaultConfig()
		browserCfg.Headless = cfg.Headless
		browserCfg.StartupTimeout = cfg.StartupTimeout()
		b, err := chromedp.NewBrowserAdapter(ctx, browserCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to start chromedp browser: %w", err)
		}
		browser = b
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
	c.Logger.Debug("browser session started", "driver", cfg.Driver)
	return browser, nil
}

func (c *Container) Close() {
	if c.Logger != nil {
		c.Logger.Close()
	}
}
