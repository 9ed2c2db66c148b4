//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"swagflow/internal/domain/entity"
	"swagflow/internal/domain/swaglabs"
	"swagflow/internal/infrastructure/demostore"
	"swagflow/internal/infrastructure/logger"
	"swagflow/internal/infrastructure/report"
	"swagflow/internal/usecase/pageflow"
	"swagflow/internal/usecase/scenario"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogAgainstDemoStore(t *testing.T) {
	for _, driver := range drivers() {
		t.Run(driver, func(t *testing.T) {
			baseURL := startStore(t, demostore.Options{})
			reporter := report.New(report.Options{Dir: t.TempDir()}, logger.NewNop())
			runner := scenario.NewRunner(factories[driver], reporter, logger.NewNop(), pageOptions(baseURL),
				scenario.WithParallel(2))

			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
			defer cancel()
			summary, err := runner.Run(ctx, scenario.Catalog())

			require.NoError(t, err)
			assert.Equal(t, 4, summary.Total)
			for _, o := range summary.Outcomes {
				assert.True(t, o.Passed, "%s: %s", o.Name, o.Error)
				assert.FileExists(t, o.ScreenshotPath)
			}
		})
	}
}

func TestLogin_WaitsForDelayedInventory(t *testing.T) {
	for _, driver := range drivers() {
		t.Run(driver, func(t *testing.T) {
			baseURL := startStore(t, demostore.Options{RenderDelay: 1500 * time.Millisecond})
			browser := openBrowser(t, driver)
			opts := pageOptions(baseURL)
			login := pageflow.NewLoginPage(browser, logger.NewNop(), opts)
			inventory := pageflow.NewInventoryPage(browser, logger.NewNop(), opts)
			ctx := context.Background()

			require.NoError(t, login.Open(ctx))
			flow, err := login.Login(ctx, swaglabs.StandardUser, swaglabs.Password)

			require.NoError(t, err)
			assert.Equal(t, entity.FlowConfirmed, flow.State)
			assert.GreaterOrEqual(t, flow.Elapsed, time.Second)
			assert.True(t, inventory.IsAtInventoryPage(ctx))
		})
	}
}

func TestLogin_LockedOutUser(t *testing.T) {
	for _, driver := range drivers() {
		t.Run(driver, func(t *testing.T) {
			baseURL := startStore(t, demostore.Options{})
			browser := openBrowser(t, driver)
			login := pageflow.NewLoginPage(browser, logger.NewNop(), pageOptions(baseURL))
			ctx := context.Background()

			require.NoError(t, login.Open(ctx))
			flow, err := login.Login(ctx, swaglabs.LockedOutUser, swaglabs.Password)

			var flowErr *entity.FlowError
			require.ErrorAs(t, err, &flowErr)
			assert.Equal(t, entity.FlowFailed, flow.State)
			assert.Equal(t, "Epic sadface: Sorry, this user has been locked out.", flow.Message)
		})
	}
}

func TestLogin_AcceptsAlertAfterLogin(t *testing.T) {
	for _, driver := range drivers() {
		t.Run(driver, func(t *testing.T) {
			baseURL := startStore(t, demostore.Options{AlertOnLogin: true})
			browser := openBrowser(t, driver)
			opts := pageOptions(baseURL)
			login := pageflow.NewLoginPage(browser, logger.NewNop(), opts)
			inventory := pageflow.NewInventoryPage(browser, logger.NewNop(), opts)
			ctx := context.Background()

			require.NoError(t, login.Open(ctx))
			_, err := login.Login(ctx, swaglabs.StandardUser, swaglabs.Password)
			require.NoError(t, err)

			login.AcceptAlertIfPresent(ctx, 2*time.Second)
			present, err := browser.AlertPresent(ctx)
			require.NoError(t, err)
			assert.False(t, present)

			flow, err := inventory.AddItemToCart(ctx, swaglabs.Onesie)
			require.NoError(t, err)
			assert.Equal(t, swaglabs.Onesie, flow.Result.Value)
		})
	}
}

func TestSessionExpiredRedirectsToLogin(t *testing.T) {
	for _, driver := range drivers() {
		t.Run(driver, func(t *testing.T) {
			baseURL := startStore(t, demostore.Options{})
			browser := openBrowser(t, driver)
			login := pageflow.NewLoginPage(browser, logger.NewNop(), pageOptions(baseURL))
			ctx := context.Background()

			require.NoError(t, browser.Navigate(ctx, baseURL+swaglabs.InventoryPath))

			assert.Contains(t, login.ErrorMessage(ctx), "when you are logged in")
		})
	}
}
