// Package chromedp drives Chrome over the DevTools protocol with chromedp.
// Element handles are remote object ids, so a handle survives DOM mutations
// but not navigations.
package chromedp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"swagflow/internal/application/port/output"
	"swagflow/internal/domain/entity"
	"swagflow/internal/infrastructure/browser/screenshot"

	"github.com/chromedp/cdproto"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

var _ output.BrowserPort = (*BrowserAdapter)(nil)

const (
	defaultStartupTimeout = 30 * time.Second
	defaultActionTimeout  = 10 * time.Second
)

const passwordManagerPrefs = `{"credentials_enable_service":false,"profile":{"password_manager_enabled":false}}`

type BrowserConfig struct {
	Headless       bool
	StartupTimeout time.Duration
	ExecPath       string
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

type BrowserAdapter struct {
	tabCtx      context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	profileDir  string

	dialogOpen atomic.Bool
	closed     atomic.Bool
	closeOnce  sync.Once
}

func allocatorOptions(cfg BrowserConfig, profileDir string) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.UserDataDir(profileDir),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("disable-save-password-bubble", true),
		chromedp.Flag("disable-password-manager-reauthentication", true),
		chromedp.Flag("disable-features", "site-per-process,Translate,BlinkGenPropertyTrees,PasswordManagerUI"),
	)
	if cfg.Headless {
		opts = append(opts,
			chromedp.Flag("headless", "new"),
			chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
		)
	} else {
		opts = append(opts,
			chromedp.Flag("headless", false),
			chromedp.Flag("start-maximized", true),
		)
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	return opts
}

// writeProfile seeds a throwaway profile whose preferences turn off the
// password manager. Chrome has no command line switch for these.
func writeProfile() (string, error) {
	dir, err := os.MkdirTemp("", "swagflow-chromedp-")
	if err != nil {
		return "", fmt.Errorf("create profile dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "Default"), 0o755); err != nil {
		return "", fmt.Errorf("create profile dir: %w", err)
	}
	prefs := filepath.Join(dir, "Default", "Preferences")
	if err := os.WriteFile(prefs, []byte(passwordManagerPrefs), 0o644); err != nil {
		return "", fmt.Errorf("write preferences: %w", err)
	}
	return dir, nil
}

// NewBrowserAdapter starts Chrome and opens a tab. The first Run on a chromedp
// context allocates the browser and must not carry a deadline, so the startup
// bound is enforced from outside.
func NewBrowserAdapter(ctx context.Context, cfg BrowserConfig) (*BrowserAdapter, error) {
	if cfg.StartupTimeout <= 0 {
		cfg.StartupTimeout = defaultStartupTimeout
	}

	profileDir, err := writeProfile()
	if err != nil {
		return nil, err
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocatorOptions(cfg, profileDir)...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	b := &BrowserAdapter{
		tabCtx:      tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		profileDir:  profileDir,
	}

	started := make(chan error, 1)
	go func() { started <- chromedp.Run(tabCtx) }()

	timer := time.NewTimer(cfg.StartupTimeout)
	defer timer.Stop()

	select {
	case err := <-started:
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
	case <-timer.C:
		b.Close()
		return nil, fmt.Errorf("failed to launch browser within %v", cfg.StartupTimeout)
	case <-ctx.Done():
		b.Close()
		return nil, ctx.Err()
	}

	chromedp.ListenTarget(tabCtx, func(ev any) {
		switch ev.(type) {
		case *page.EventJavascriptDialogOpening:
			b.dialogOpen.Store(true)
		case *page.EventJavascriptDialogClosed:
			b.dialogOpen.Store(false)
		}
	})
	return b, nil
}

// run executes actions on the tab, bounded by ctx's deadline and cancellation.
func (b *BrowserAdapter) run(ctx context.Context, actions ...chromedp.Action) error {
	if b.closed.Load() {
		return entity.ErrSessionClosed
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultActionTimeout)
	}
	runCtx, cancel := context.WithDeadline(b.tabCtx, deadline)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return b.classify(err)
	}
	return nil
}

func (b *BrowserAdapter) Navigate(ctx context.Context, rawURL string) error {
	if err := entity.ValidateURL(rawURL); err != nil {
		return err
	}
	b.dialogOpen.Store(false)
	if err := b.run(ctx, chromedp.Navigate(rawURL)); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

type elementHandle struct {
	loc entity.Locator
	id  runtime.RemoteObjectID
}

func (h *elementHandle) Locator() entity.Locator {
	return h.loc
}

func locateExpression(loc entity.Locator) string {
	if css, ok := loc.CSS(); ok {
		return fmt.Sprintf("document.querySelector(%q)", css)
	}
	return fmt.Sprintf("document.evaluate(%q, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue", loc.Value)
}

func (b *BrowserAdapter) Locate(ctx context.Context, loc entity.Locator) (entity.ElementHandle, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}

	var obj *runtime.RemoteObject
	if err := b.run(ctx, chromedp.Evaluate(locateExpression(loc), &obj)); err != nil {
		return nil, fmt.Errorf("locate %s: %w", loc, err)
	}
	if obj == nil || obj.ObjectID == "" {
		return nil, fmt.Errorf("%w: %s", entity.ErrElementNotFound, loc)
	}
	return &elementHandle{loc: loc, id: obj.ObjectID}, nil
}

func (b *BrowserAdapter) handle(h entity.ElementHandle) (*elementHandle, error) {
	eh, ok := h.(*elementHandle)
	if !ok || eh.id == "" {
		return nil, fmt.Errorf("%w: foreign element handle %T", entity.ErrStaleElement, h)
	}
	return eh, nil
}

// call invokes fn with this bound to the element. Detached elements report
// ErrStaleElement before fn runs.
func call(eh *elementHandle, fn string, res any) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		onElement := func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
			return p.WithObjectID(eh.id)
		}
		var connected bool
		if err := chromedp.CallFunctionOn(`function() { return this.isConnected; }`, &connected, onElement).Do(ctx); err != nil {
			return err
		}
		if !connected {
			return fmt.Errorf("%w: %s detached", entity.ErrStaleElement, eh.loc)
		}
		if fn == "" {
			return nil
		}
		return chromedp.CallFunctionOn(fn, res, onElement).Do(ctx)
	})
}

const visibleJS = `function() {
	const style = window.getComputedStyle(this);
	if (style.visibility === "hidden" || style.display === "none") return false;
	const rect = this.getBoundingClientRect();
	return rect.width > 0 && rect.height > 0;
}`

func (b *BrowserAdapter) IsVisible(ctx context.Context, h entity.ElementHandle) (bool, error) {
	eh, err := b.handle(h)
	if err != nil {
		return false, err
	}
	var visible bool
	if err := b.run(ctx, call(eh, visibleJS, &visible)); err != nil {
		return false, fmt.Errorf("visibility of %s: %w", h.Locator(), err)
	}
	return visible, nil
}

func (b *BrowserAdapter) IsEnabled(ctx context.Context, h entity.ElementHandle) (bool, error) {
	eh, err := b.handle(h)
	if err != nil {
		return false, err
	}
	var disabled bool
	if err := b.run(ctx, call(eh, `function() { return !!this.disabled; }`, &disabled)); err != nil {
		return false, fmt.Errorf("enabled state of %s: %w", h.Locator(), err)
	}
	return !disabled, nil
}

const (
	readTextJS = `function() {
	return (this.tagName === "INPUT" || this.tagName === "TEXTAREA") ? this.value : this.innerText;
}`
	// The prototype setter bypasses framework value trackers so the input
	// event is not swallowed.
	clearJS = `function() {
	const proto = this.tagName === "TEXTAREA" ? HTMLTextAreaElement.prototype : HTMLInputElement.prototype;
	Object.getOwnPropertyDescriptor(proto, "value").set.call(this, "");
	this.dispatchEvent(new Event("input", { bubbles: true }));
	this.dispatchEvent(new Event("change", { bubbles: true }));
}`
	focusJS = `function() { this.focus(); }`
)

// clickCenter dispatches a real mouse click at the centre of the element's
// first content quad.
func clickCenter(eh *elementHandle) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := dom.ScrollIntoViewIfNeeded().WithObjectID(eh.id).Do(ctx); err != nil {
			return err
		}
		quads, err := dom.GetContentQuads().WithObjectID(eh.id).Do(ctx)
		if err != nil {
			return err
		}
		if len(quads) == 0 || len(quads[0]) < 2 || len(quads[0])%2 != 0 {
			return chromedp.ErrInvalidDimensions
		}

		q := quads[0]
		var x, y float64
		for i := 0; i < len(q); i += 2 {
			x += q[i]
			y += q[i+1]
		}
		n := float64(len(q) / 2)
		return chromedp.MouseClickXY(x/n, y/n).Do(ctx)
	})
}

func (b *BrowserAdapter) Act(ctx context.Context, h entity.ElementHandle, action entity.Action) (string, error) {
	eh, err := b.handle(h)
	if err != nil {
		return "", err
	}

	var text string
	switch action.Kind {
	case entity.ActionClick:
		err = b.run(ctx, call(eh, "", nil), clickCenter(eh))
	case entity.ActionType:
		err = b.run(ctx, call(eh, focusJS, nil), chromedp.KeyEvent(action.Text))
	case entity.ActionClear:
		err = b.run(ctx, call(eh, clearJS, nil))
	case entity.ActionReadText:
		err = b.run(ctx, call(eh, readTextJS, &text))
	default:
		return "", fmt.Errorf("unsupported action %s", action)
	}
	if err != nil {
		return "", fmt.Errorf("%s on %s: %w", action, h.Locator(), err)
	}
	return strings.TrimSpace(text), nil
}

func (b *BrowserAdapter) CurrentTitle(ctx context.Context) (string, error) {
	var title string
	if err := b.run(ctx, chromedp.Title(&title)); err != nil {
		return "", fmt.Errorf("page title: %w", err)
	}
	return title, nil
}

func (b *BrowserAdapter) AlertPresent(ctx context.Context) (bool, error) {
	if b.closed.Load() {
		return false, entity.ErrSessionClosed
	}
	return b.dialogOpen.Load(), nil
}

func (b *BrowserAdapter) AcceptAlert(ctx context.Context) error {
	if b.closed.Load() {
		return entity.ErrSessionClosed
	}
	if !b.dialogOpen.Load() {
		return entity.ErrNoAlert
	}
	if err := b.run(ctx, page.HandleJavaScriptDialog(true)); err != nil {
		var cdpErr *cdproto.Error
		if errors.As(err, &cdpErr) && strings.Contains(cdpErr.Message, "No dialog") {
			b.dialogOpen.Store(false)
			return entity.ErrNoAlert
		}
		return fmt.Errorf("accept dialog: %w", err)
	}
	b.dialogOpen.Store(false)
	return nil
}

func (b *BrowserAdapter) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	var raw []byte
	if err := b.run(ctx, chromedp.FullScreenshot(&raw, 80)); err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return screenshot.Encode(raw)
}

func (b *BrowserAdapter) PageHTML(ctx context.Context) (string, error) {
	var html string
	if err := b.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}
	return html, nil
}

func (b *BrowserAdapter) CurrentURL() string {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var u string
	if err := b.run(ctx, chromedp.Location(&u)); err != nil {
		return ""
	}
	return u
}

func (b *BrowserAdapter) Close() {
	b.closeOnce.Do(func() {
		b.closed.Store(true)
		if b.cancelTab != nil {
			b.cancelTab()
		}
		if b.cancelAlloc != nil {
			b.cancelAlloc()
		}
		if b.profileDir != "" {
			_ = os.RemoveAll(b.profileDir)
		}
	})
}

var staleMessages = []string{
	"Could not find object with given id",
	"Cannot find context with specified id",
	"Execution context was destroyed",
	"No node with given id found",
	"Node is detached from document",
}

func (b *BrowserAdapter) classify(err error) error {
	if b.closed.Load() || b.tabCtx.Err() != nil {
		return fmt.Errorf("%w: %w", entity.ErrSessionClosed, err)
	}
	return classifyError(err)
}

func classifyError(err error) error {
	if err == nil || errors.Is(err, entity.ErrStaleElement) {
		return err
	}
	var cdpErr *cdproto.Error
	if errors.As(err, &cdpErr) {
		for _, msg := range staleMessages {
			if strings.Contains(cdpErr.Message, msg) {
				return fmt.Errorf("%w: %w", entity.ErrStaleElement, err)
			}
		}
	}
	if errors.Is(err, chromedp.ErrChannelClosed) || errors.Is(err, chromedp.ErrInvalidTarget) {
		return fmt.Errorf("%w: %w", entity.ErrSessionClosed, err)
	}
	return err
}
