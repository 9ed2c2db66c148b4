//go:build integration

package integration

import (
	"context"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"swagflow/internal/application/port/output"
	"swagflow/internal/domain/entity"
	"swagflow/internal/infrastructure/browser/chromedp"
	"swagflow/internal/infrastructure/browser/playwright"
	"swagflow/internal/infrastructure/browser/rod"
	"swagflow/internal/infrastructure/demostore"
	"swagflow/internal/infrastructure/logger"
	"swagflow/internal/usecase/pageflow"
	"swagflow/internal/usecase/scenario"

	"github.com/stretchr/testify/require"
)

var factories = map[string]scenario.BrowserFactory{
	"rod": func(ctx context.Context) (output.BrowserPort, error) {
		cfg := rod.DefaultConfig()
		cfg.Headless = true
		return rod.NewBrowserAdapter(ctx, cfg)
	},
	"chromedp": func(ctx context.Context) (output.BrowserPort, error) {
		return chromedp.NewBrowserAdapter(ctx, chromedp.DefaultConfig())
	},
	"playwright": func(ctx context.Context) (output.BrowserPort, error) {
		return playwright.NewBrowserAdapter(ctx, playwright.DefaultConfig())
	},
}

// drivers lists the engines to exercise, from SWAGFLOW_IT_DRIVERS
// (comma separated, default "rod").
func drivers() []string {
	raw := os.Getenv("SWAGFLOW_IT_DRIVERS")
	if raw == "" {
		return []string{"rod"}
	}
	var out []string
	for _, d := range strings.Split(raw, ",") {
		if d = strings.TrimSpace(d); d != "" {
			out = append(out, d)
		}
	}
	return out
}

func startStore(t *testing.T, opts demostore.Options) string {
	t.Helper()
	store, err := demostore.New(opts, logger.NewNop())
	require.NoError(t, err)
	server := httptest.NewServer(store.Handler())
	t.Cleanup(server.Close)
	return server.URL + "/"
}

func pageOptions(baseURL string) pageflow.Options {
	opts := pageflow.DefaultOptions(baseURL)
	opts.ImplicitWait = entity.NewDeadline(2*time.Second, entity.DefaultPollInterval)
	return opts
}

func openBrowser(t *testing.T, driver string) output.BrowserPort {
	t.Helper()
	factory, ok := factories[driver]
	require.True(t, ok, "unknown driver %q", driver)

	browser, err := factory(context.Background())
	require.NoError(t, err)
	t.Cleanup(browser.Close)
	return browser
}
