package chromedp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"swagflow/internal/domain/entity"

	"github.com/chromedp/cdproto"
	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteProfile(t *testing.T) {
	dir, err := writeProfile()
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	prefs, err := os.ReadFile(filepath.Join(dir, "Default", "Preferences"))
	require.NoError(t, err)
	assert.JSONEq(t, passwordManagerPrefs, string(prefs))
}

func TestAllocatorOptions(t *testing.T) {
	base := len(chromedp.DefaultExecAllocatorOptions)

	headless := allocatorOptions(DefaultConfig(), "/tmp/profile")
	headed := allocatorOptions(BrowserConfig{WindowWidth: 800, WindowHeight: 600}, "/tmp/profile")
	custom := allocatorOptions(BrowserConfig{Headless: true, ExecPath: "/usr/bin/chromium"}, "/tmp/profile")

	assert.Greater(t, len(headless), base)
	assert.Greater(t, len(headed), base)
	assert.Len(t, custom, len(headless)+1)
	assert.Len(t, chromedp.DefaultExecAllocatorOptions, base, "defaults are not mutated")
}

func TestLocateExpression(t *testing.T) {
	assert.Equal(t, `document.querySelector("[id=\"user-name\"]")`, locateExpression(entity.ByID("user-name")))
	assert.Equal(t, `document.querySelector("a.shopping_cart_link")`, locateExpression(entity.ByCSS("a.shopping_cart_link")))
	assert.Contains(t, locateExpression(entity.ByXPath("//div[@class='cart_item']")),
		`document.evaluate("//div[@class='cart_item']", document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null)`)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"object gone", &cdproto.Error{Code: -32000, Message: "Could not find object with given id"}, entity.ErrStaleElement},
		{"navigated", fmt.Errorf("call: %w", &cdproto.Error{Code: -32000, Message: "Execution context was destroyed."}), entity.ErrStaleElement},
		{"channel closed", chromedp.ErrChannelClosed, entity.ErrSessionClosed},
		{"no target", chromedp.ErrInvalidTarget, entity.ErrSessionClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err)
		})
	}

	other := errors.New("boom")
	assert.Same(t, other, classifyError(other))

	stale := fmt.Errorf("%w: detached", entity.ErrStaleElement)
	assert.Same(t, stale, classifyError(stale))
}

func TestBrowserAdapter_Closed(t *testing.T) {
	tabCtx, cancel := context.WithCancel(context.Background())
	b := &BrowserAdapter{tabCtx: tabCtx, cancelTab: cancel}
	b.Close()
	ctx := context.Background()

	assert.Equal(t, "", b.CurrentURL())
	assert.ErrorIs(t, b.Navigate(ctx, "https://www.saucedemo.com/"), entity.ErrSessionClosed)

	_, err := b.Locate(ctx, entity.ByID("user-name"))
	assert.ErrorIs(t, err, entity.ErrSessionClosed)
	_, err = b.AlertPresent(ctx)
	assert.ErrorIs(t, err, entity.ErrSessionClosed)
	assert.ErrorIs(t, b.AcceptAlert(ctx), entity.ErrSessionClosed)
	_, err = b.IsVisible(ctx, &elementHandle{loc: entity.ByID("x"), id: "1"})
	assert.ErrorIs(t, err, entity.ErrSessionClosed)
}
