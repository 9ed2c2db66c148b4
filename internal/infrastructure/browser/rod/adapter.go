package rod

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"swagflow/internal/application/port/output"
	"swagflow/internal/domain/entity"
	"swagflow/internal/infrastructure/browser/screenshot"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/cdp"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

var _ output.BrowserPort = (*BrowserAdapter)(nil)

const defaultStartupTimeout = 30 * time.Second

// Chrome profile preferences that keep the password manager from offering to
// save credentials after login.
const passwordManagerPrefs = `{"credentials_enable_service":false,"profile":{"password_manager_enabled":false}}`

type BrowserAdapter struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page

	stopEvents context.CancelFunc
	dialogOpen atomic.Bool
	closed     atomic.Bool
	closeOnce  sync.Once
}

type BrowserConfig struct {
	Headless       bool
	SlowMotion     time.Duration
	StartupTimeout time.Duration
	NoSandbox      bool
	DevTools       bool
	Trace          bool
	Bin            string
	WindowWidth    int
	WindowHeight   int
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:       false,
		StartupTimeout: defaultStartupTimeout,
		NoSandbox:      true,
		WindowWidth:    1400,
		WindowHeight:   900,
	}
}

func newLauncher(cfg BrowserConfig) *launcher.Launcher {
	l := launcher.New().
		HeadlessNew(cfg.Headless).
		Devtools(cfg.DevTools).
		NoSandbox(cfg.NoSandbox).
		Preferences(passwordManagerPrefs).
		Set("disable-gpu").
		Set("disable-infobars").
		Set("disable-extensions").
		Set("disable-notifications").
		Set("disable-save-password-bubble").
		Set("disable-password-manager-reauthentication").
		Append("disable-features", "PasswordManagerUI")

	if cfg.Headless {
		l = l.Set("window-size", fmt.Sprintf("%d,%d", cfg.WindowWidth, cfg.WindowHeight))
	} else {
		l = l.Set("start-maximized")
	}
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}
	return l
}

// NewBrowserAdapter launches a browser and opens a blank page. Launching is
// bounded by cfg.StartupTimeout.
func NewBrowserAdapter(ctx context.Context, cfg BrowserConfig) (*BrowserAdapter, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.StartupTimeout <= 0 {
		cfg.StartupTimeout = defaultStartupTimeout
	}

	startCtx, cancel := context.WithTimeout(ctx, cfg.StartupTimeout)
	defer cancel()

	l := newLauncher(cfg).Context(startCtx)
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser within %v: %w", cfg.StartupTimeout, err)
	}

	browser := rod.New().
		ControlURL(controlURL).
		Trace(cfg.Trace).
		SlowMotion(cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	b := &BrowserAdapter{
		browser:  browser,
		launcher: l,
		page:     page,
	}
	b.watchDialogs()
	return b, nil
}

// watchDialogs tracks whether a JavaScript dialog is currently showing. CDP has
// no query for it, only open/close events.
func (b *BrowserAdapter) watchDialogs() {
	eventsCtx, cancel := context.WithCancel(context.Background())
	b.stopEvents = cancel

	wait := b.page.Context(eventsCtx).EachEvent(
		func(e *proto.PageJavascriptDialogOpening) {
			b.dialogOpen.Store(true)
		},
		func(e *proto.PageJavascriptDialogClosed) {
			b.dialogOpen.Store(false)
		},
		func(e *proto.PageFrameNavigated) {
			if e.Frame.ParentID == "" {
				b.dialogOpen.Store(false)
			}
		},
	)
	go wait()
}

func (b *BrowserAdapter) pageFor(ctx context.Context) (*rod.Page, error) {
	if b.closed.Load() {
		return nil, entity.ErrSessionClosed
	}
	return b.page.Context(ctx), nil
}

func (b *BrowserAdapter) Navigate(ctx context.Context, rawURL string) error {
	if err := entity.ValidateURL(rawURL); err != nil {
		return err
	}
	page, err := b.pageFor(ctx)
	if err != nil {
		return err
	}

	if err := page.Navigate(rawURL); err != nil {
		return fmt.Errorf("navigation failed: %w", b.classify(err))
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait load %s: %w", rawURL, b.classify(err))
	}
	return nil
}

type elementHandle struct {
	loc entity.Locator
	el  *rod.Element
}

func (h *elementHandle) Locator() entity.Locator {
	return h.loc
}

// Locate returns the first element matching loc without waiting for it.
func (b *BrowserAdapter) Locate(ctx context.Context, loc entity.Locator) (entity.ElementHandle, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	page, err := b.pageFor(ctx)
	if err != nil {
		return nil, err
	}

	var (
		found bool
		el    *rod.Element
	)
	if css, ok := loc.CSS(); ok {
		found, el, err = page.Has(css)
	} else {
		found, el, err = page.HasX(loc.Value)
	}
	if err != nil {
		return nil, fmt.Errorf("locate %s: %w", loc, b.classify(err))
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", entity.ErrElementNotFound, loc)
	}
	return &elementHandle{loc: loc, el: el}, nil
}

func (b *BrowserAdapter) element(ctx context.Context, h entity.ElementHandle) (*rod.Element, error) {
	if b.closed.Load() {
		return nil, entity.ErrSessionClosed
	}
	eh, ok := h.(*elementHandle)
	if !ok || eh.el == nil {
		return nil, fmt.Errorf("%w: foreign element handle %T", entity.ErrStaleElement, h)
	}
	return eh.el.Context(ctx), nil
}

func (b *BrowserAdapter) IsVisible(ctx context.Context, h entity.ElementHandle) (bool, error) {
	el, err := b.element(ctx, h)
	if err != nil {
		return false, err
	}
	visible, err := el.Visible()
	if err != nil {
		return false, fmt.Errorf("visibility of %s: %w", h.Locator(), b.classify(err))
	}
	return visible, nil
}

func (b *BrowserAdapter) IsEnabled(ctx context.Context, h entity.ElementHandle) (bool, error) {
	el, err := b.element(ctx, h)
	if err != nil {
		return false, err
	}
	disabled, err := el.Disabled()
	if err != nil {
		return false, fmt.Errorf("enabled state of %s: %w", h.Locator(), b.classify(err))
	}
	return !disabled, nil
}

// readTextJS returns the value of form fields and the rendered text of
// anything else.
const readTextJS = `() => (this.tagName === "INPUT" || this.tagName === "TEXTAREA") ? this.value : this.innerText`

func (b *BrowserAdapter) Act(ctx context.Context, h entity.ElementHandle, action entity.Action) (string, error) {
	el, err := b.element(ctx, h)
	if err != nil {
		return "", err
	}

	switch action.Kind {
	case entity.ActionClick:
		err = el.Click(proto.InputMouseButtonLeft, 1)
	case entity.ActionType:
		err = el.Input(action.Text)
	case entity.ActionClear:
		if err = el.SelectAllText(); err == nil {
			err = el.Input("")
		}
	case entity.ActionReadText:
		obj, evalErr := el.Eval(readTextJS)
		if evalErr != nil {
			return "", fmt.Errorf("read text of %s: %w", h.Locator(), b.classify(evalErr))
		}
		return strings.TrimSpace(obj.Value.Str()), nil
	default:
		return "", fmt.Errorf("unsupported action %s", action)
	}
	if err != nil {
		return "", fmt.Errorf("%s on %s: %w", action, h.Locator(), b.classify(err))
	}
	return "", nil
}

func (b *BrowserAdapter) CurrentTitle(ctx context.Context) (string, error) {
	page, err := b.pageFor(ctx)
	if err != nil {
		return "", err
	}
	info, err := page.Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", b.classify(err))
	}
	return info.Title, nil
}

func (b *BrowserAdapter) AlertPresent(ctx context.Context) (bool, error) {
	if b.closed.Load() {
		return false, entity.ErrSessionClosed
	}
	return b.dialogOpen.Load(), nil
}

func (b *BrowserAdapter) AcceptAlert(ctx context.Context) error {
	page, err := b.pageFor(ctx)
	if err != nil {
		return err
	}
	if !b.dialogOpen.Load() {
		return entity.ErrNoAlert
	}

	if err := (proto.PageHandleJavaScriptDialog{Accept: true}).Call(page); err != nil {
		var cdpErr *cdp.Error
		if errors.As(err, &cdpErr) && strings.Contains(cdpErr.Message, "No dialog") {
			b.dialogOpen.Store(false)
			return entity.ErrNoAlert
		}
		return fmt.Errorf("accept dialog: %w", b.classify(err))
	}
	b.dialogOpen.Store(false)
	return nil
}

func (b *BrowserAdapter) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	page, err := b.pageFor(ctx)
	if err != nil {
		return nil, err
	}

	imgBytes, err := page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(80),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", b.classify(err))
	}

	return screenshot.Encode(imgBytes)
}

func (b *BrowserAdapter) PageHTML(ctx context.Context) (string, error) {
	page, err := b.pageFor(ctx)
	if err != nil {
		return "", err
	}
	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", b.classify(err))
	}
	return html, nil
}

func (b *BrowserAdapter) CurrentURL() string {
	if b.closed.Load() {
		return ""
	}
	info, err := b.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (b *BrowserAdapter) IsReady() bool {
	return !b.closed.Load() && b.browser != nil && b.page != nil
}

func (b *BrowserAdapter) Close() {
	b.closeOnce.Do(func() {
		b.closed.Store(true)
		if b.stopEvents != nil {
			b.stopEvents()
		}
		if b.browser != nil {
			_ = b.browser.Close()
		}
		if b.launcher != nil {
			b.launcher.Kill()
			b.launcher.Cleanup()
		}
	})
}

// classify maps driver errors onto the entity sentinels while keeping the
// original error in the chain.
func (b *BrowserAdapter) classify(err error) error {
	if err == nil {
		return nil
	}
	if b.closed.Load() {
		return fmt.Errorf("%w: %w", entity.ErrSessionClosed, err)
	}
	return classifyError(err)
}

func classifyError(err error) error {
	var (
		notFound  *rod.ElementNotFoundError
		noPage    *rod.PageNotFoundError
		objectErr *rod.ObjectNotFoundError
	)
	switch {
	case errors.As(err, &notFound):
		return fmt.Errorf("%w: %w", entity.ErrElementNotFound, err)
	case errors.As(err, &objectErr),
		errors.Is(err, cdp.ErrObjNotFound),
		errors.Is(err, cdp.ErrCtxNotFound),
		errors.Is(err, cdp.ErrCtxDestroyed),
		errors.Is(err, cdp.ErrNodeNotFoundAtPos):
		return fmt.Errorf("%w: %w", entity.ErrStaleElement, err)
	case errors.Is(err, cdp.ErrSessionNotFound),
		errors.Is(err, cdp.ErrNotAttachedToActivePage),
		errors.As(err, &noPage):
		return fmt.Errorf("%w: %w", entity.ErrSessionClosed, err)
	}
	return err
}
