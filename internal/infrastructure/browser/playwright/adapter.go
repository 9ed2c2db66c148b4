// Package playwright drives Chromium through playwright-go.
package playwright

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"swagflow/internal/application/port/output"
	"swagflow/internal/domain/entity"
	"swagflow/internal/infrastructure/browser/screenshot"

	"github.com/playwright-community/playwright-go"
)

var _ output.BrowserPort = (*BrowserAdapter)(nil)

const (
	defaultStartupTimeout = 30 * time.Second
	defaultActionTimeout  = 10 * time.Second
)

type BrowserConfig struct {
	Headless       bool
	StartupTimeout time.Duration
	Install        bool
	WindowWidth    int
	WindowHeight   int
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:       true,
		StartupTimeout: defaultStartupTimeout,
		WindowWidth:    1400,
		WindowHeight:   900,
	}
}

// launchArgs mirrors the Chromium switches used by the rod driver so both
// engines see the same page chrome.
func launchArgs(cfg BrowserConfig) []string {
	args := []string{
		"--disable-gpu",
		"--no-sandbox",
		"--disable-dev-shm-usage",
		"--disable-infobars",
		"--disable-extensions",
		"--disable-popup-blocking",
		"--disable-notifications",
		"--disable-save-password-bubble",
		"--disable-password-manager-reauthentication",
		"--disable-features=PasswordManagerUI",
	}
	if cfg.Headless {
		return append(args, fmt.Sprintf("--window-size=%d,%d", cfg.WindowWidth, cfg.WindowHeight))
	}
	return append(args, "--start-maximized")
}

type BrowserAdapter struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page

	mu     sync.Mutex
	dialog playwright.Dialog
	closed bool
}

func NewBrowserAdapter(ctx context.Context, cfg BrowserConfig) (*BrowserAdapter, error) {
	if cfg.StartupTimeout <= 0 {
		cfg.StartupTimeout = defaultStartupTimeout
	}
	if cfg.Install {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return nil, fmt.Errorf("failed to install playwright browsers: %w", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright driver: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		Args:     launchArgs(cfg),
		Timeout:  playwright.Float(float64(cfg.StartupTimeout.Milliseconds())),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch browser within %v: %w", cfg.StartupTimeout, err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: cfg.WindowWidth, Height: cfg.WindowHeight},
	})
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	b := &BrowserAdapter{pw: pw, browser: browser, page: page}
	// A registered listener keeps dialogs open until AcceptAlert handles them.
	page.OnDialog(func(d playwright.Dialog) {
		b.mu.Lock()
		b.dialog = d
		b.mu.Unlock()
	})
	return b, nil
}

func (b *BrowserAdapter) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// timeoutMs converts the remaining ctx budget into a playwright timeout.
func timeoutMs(ctx context.Context) *float64 {
	d := defaultActionTimeout
	if deadline, ok := ctx.Deadline(); ok {
		d = time.Until(deadline)
		if d < time.Millisecond {
			d = time.Millisecond
		}
	}
	return playwright.Float(float64(d.Milliseconds()))
}

func (b *BrowserAdapter) Navigate(ctx context.Context, rawURL string) error {
	if err := entity.ValidateURL(rawURL); err != nil {
		return err
	}
	if b.isClosed() {
		return entity.ErrSessionClosed
	}

	b.mu.Lock()
	b.dialog = nil
	b.mu.Unlock()

	if _, err := b.page.Goto(rawURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   timeoutMs(ctx),
	}); err != nil {
		return fmt.Errorf("navigation failed: %w", b.classify(err))
	}
	return nil
}

func selectorFor(loc entity.Locator) string {
	if css, ok := loc.CSS(); ok {
		return css
	}
	return "xpath=" + loc.Value
}

type elementHandle struct {
	loc entity.Locator
	el  playwright.ElementHandle
}

func (h *elementHandle) Locator() entity.Locator {
	return h.loc
}

func (b *BrowserAdapter) Locate(ctx context.Context, loc entity.Locator) (entity.ElementHandle, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	if b.isClosed() {
		return nil, entity.ErrSessionClosed
	}

	el, err := b.page.QuerySelector(selectorFor(loc))
	if err != nil {
		return nil, fmt.Errorf("locate %s: %w", loc, b.classify(err))
	}
	if el == nil {
		return nil, fmt.Errorf("%w: %s", entity.ErrElementNotFound, loc)
	}
	return &elementHandle{loc: loc, el: el}, nil
}

func (b *BrowserAdapter) element(h entity.ElementHandle) (playwright.ElementHandle, error) {
	if b.isClosed() {
		return nil, entity.ErrSessionClosed
	}
	eh, ok := h.(*elementHandle)
	if !ok || eh.el == nil {
		return nil, fmt.Errorf("%w: foreign element handle %T", entity.ErrStaleElement, h)
	}
	return eh.el, nil
}

func (b *BrowserAdapter) IsVisible(ctx context.Context, h entity.ElementHandle) (bool, error) {
	el, err := b.element(h)
	if err != nil {
		return false, err
	}
	visible, err := el.IsVisible()
	if err != nil {
		return false, fmt.Errorf("visibility of %s: %w", h.Locator(), b.classify(err))
	}
	return visible, nil
}

func (b *BrowserAdapter) IsEnabled(ctx context.Context, h entity.ElementHandle) (bool, error) {
	el, err := b.element(h)
	if err != nil {
		return false, err
	}
	enabled, err := el.IsEnabled()
	if err != nil {
		return false, fmt.Errorf("enabled state of %s: %w", h.Locator(), b.classify(err))
	}
	return enabled, nil
}

const readTextJS = `el => (el.tagName === "INPUT" || el.tagName === "TEXTAREA") ? el.value : el.innerText`

// typeInto appends text to the field's current value with Fill.
func typeInto(el playwright.ElementHandle, text string, timeout *float64) error {
	current, err := el.Evaluate(readTextJS)
	if err != nil {
		return err
	}
	value, _ := current.(string)
	return el.Fill(value+text, playwright.ElementHandleFillOptions{Timeout: timeout})
}

func (b *BrowserAdapter) Act(ctx context.Context, h entity.ElementHandle, action entity.Action) (string, error) {
	el, err := b.element(h)
	if err != nil {
		return "", err
	}

	switch action.Kind {
	case entity.ActionClick:
		err = el.Click(playwright.ElementHandleClickOptions{Timeout: timeoutMs(ctx)})
	case entity.ActionType:
		err = typeInto(el, action.Text, timeoutMs(ctx))
	case entity.ActionClear:
		err = el.Fill("", playwright.ElementHandleFillOptions{Timeout: timeoutMs(ctx)})
	case entity.ActionReadText:
		v, evalErr := el.Evaluate(readTextJS)
		if evalErr != nil {
			return "", fmt.Errorf("read text of %s: %w", h.Locator(), b.classify(evalErr))
		}
		text, _ := v.(string)
		return strings.TrimSpace(text), nil
	default:
		return "", fmt.Errorf("unsupported action %s", action)
	}
	if err != nil {
		return "", fmt.Errorf("%s on %s: %w", action, h.Locator(), b.classify(err))
	}
	return "", nil
}

func (b *BrowserAdapter) CurrentTitle(ctx context.Context) (string, error) {
	if b.isClosed() {
		return "", entity.ErrSessionClosed
	}
	title, err := b.page.Title()
	if err != nil {
		return "", fmt.Errorf("page title: %w", b.classify(err))
	}
	return title, nil
}

func (b *BrowserAdapter) AlertPresent(ctx context.Context) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false, entity.ErrSessionClosed
	}
	return b.dialog != nil, nil
}

func (b *BrowserAdapter) AcceptAlert(ctx context.Context) error {
	b.mu.Lock()
	d, closed := b.dialog, b.closed
	b.dialog = nil
	b.mu.Unlock()

	if closed {
		return entity.ErrSessionClosed
	}
	if d == nil {
		return entity.ErrNoAlert
	}
	if err := d.Accept(); err != nil {
		return fmt.Errorf("accept dialog: %w", b.classify(err))
	}
	return nil
}

func (b *BrowserAdapter) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	if b.isClosed() {
		return nil, entity.ErrSessionClosed
	}
	raw, err := b.page.Screenshot(playwright.PageScreenshotOptions{
		Type:     playwright.ScreenshotTypeJpeg,
		Quality:  playwright.Int(80),
		FullPage: playwright.Bool(true),
		Timeout:  timeoutMs(ctx),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", b.classify(err))
	}

	return screenshot.Encode(raw)
}

func (b *BrowserAdapter) PageHTML(ctx context.Context) (string, error) {
	if b.isClosed() {
		return "", entity.ErrSessionClosed
	}
	html, err := b.page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", b.classify(err))
	}
	return html, nil
}

func (b *BrowserAdapter) CurrentURL() string {
	if b.isClosed() {
		return ""
	}
	return b.page.URL()
}

func (b *BrowserAdapter) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.dialog = nil
	b.mu.Unlock()

	if b.browser != nil {
		_ = b.browser.Close()
	}
	if b.pw != nil {
		_ = b.pw.Stop()
	}
}

func (b *BrowserAdapter) classify(err error) error {
	if b.isClosed() {
		return fmt.Errorf("%w: %w", entity.ErrSessionClosed, err)
	}
	return classifyError(err)
}

func classifyError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case errors.Is(err, playwright.ErrTargetClosed):
		return fmt.Errorf("%w: %w", entity.ErrSessionClosed, err)
	case strings.Contains(msg, "not attached to the DOM"),
		strings.Contains(msg, "Execution context was destroyed"),
		strings.Contains(msg, "Cannot find context with specified id"):
		return fmt.Errorf("%w: %w", entity.ErrStaleElement, err)
	}
	return err
}
