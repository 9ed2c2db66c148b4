// Package browsertest provides a scripted in-memory browser for exercising
// the interaction layer without a real engine.
package browsertest

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"sync"
	"time"

	"swagflow/internal/application/port/output"
	"swagflow/internal/domain/entity"
)

var _ output.BrowserPort = (*Browser)(nil)

// Element is a fake DOM node. Fields may be changed by OnClick callbacks while
// the browser lock is held, so callbacks must use the *Browser they receive.
type Element struct {
	Text     string
	Value    string
	Hidden   bool
	Disabled bool
	OnClick  func(b *Browser)
}

type handle struct {
	loc entity.Locator
	el  *Element
}

func (h *handle) Locator() entity.Locator {
	return h.loc
}

type Browser struct {
	mu sync.Mutex

	elements map[entity.Locator]*Element
	appearAt map[entity.Locator]time.Time
	routes   map[string]func(b *Browser)

	title  string
	url    string
	alert  bool
	closed bool

	staleActs  map[entity.Locator]int
	actErrs    map[entity.Locator]error
	locateErr  error
	panicOnAct bool

	calls []string
}

func NewBrowser() *Browser {
	return &Browser{
		elements:  make(map[entity.Locator]*Element),
		appearAt:  make(map[entity.Locator]time.Time),
		routes:    make(map[string]func(b *Browser)),
		staleActs: make(map[entity.Locator]int),
		actErrs:   make(map[entity.Locator]error),
	}
}

// Put adds or replaces the element matched by loc. Replacing makes handles
// to the previous element stale.
func (b *Browser) Put(loc entity.Locator, el *Element) *Element {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.put(loc, el)
	return el
}

// PutAfter makes the element locatable only once delay has elapsed.
func (b *Browser) PutAfter(loc entity.Locator, el *Element, delay time.Duration) *Element {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.put(loc, el)
	b.appearAt[loc] = time.Now().Add(delay)
	return el
}

func (b *Browser) put(loc entity.Locator, el *Element) {
	b.elements[loc] = el
	delete(b.appearAt, loc)
}

func (b *Browser) Remove(loc entity.Locator) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.remove(loc)
}

func (b *Browser) remove(loc entity.Locator) {
	delete(b.elements, loc)
	delete(b.appearAt, loc)
}

// Get returns the element currently registered for loc, visible or not.
func (b *Browser) Get(loc entity.Locator) *Element {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.elements[loc]
}

// Reset clears the document, as a full page load would.
func (b *Browser) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reset()
}

func (b *Browser) reset() {
	b.elements = make(map[entity.Locator]*Element)
	b.appearAt = make(map[entity.Locator]time.Time)
}

// Route registers the page builder run when Navigate targets url.
func (b *Browser) Route(url string, build func(b *Browser)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[url] = build
}

func (b *Browser) SetTitle(title string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.title = title
}

func (b *Browser) SetAlert(open bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.alert = open
}

// FailActStale makes the next n dispatches on loc report a stale element.
func (b *Browser) FailActStale(loc entity.Locator, n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.staleActs[loc] = n
}

func (b *Browser) FailAct(loc entity.Locator, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.actErrs[loc] = err
}

// FailLocate makes every Locate return err until cleared with nil.
func (b *Browser) FailLocate(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.locateErr = err
}

func (b *Browser) PanicOnAct(enable bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.panicOnAct = enable
}

// Calls returns the recorded driver calls, e.g. "act click id=login-button".
func (b *Browser) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.calls))
	copy(out, b.calls)
	return out
}

// CountCalls counts recorded calls with the given prefix.
func (b *Browser) CountCalls(prefix string) int {
	n := 0
	for _, c := range b.Calls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (b *Browser) record(format string, args ...any) {
	b.calls = append(b.calls, fmt.Sprintf(format, args...))
}

func (b *Browser) Navigate(ctx context.Context, url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("navigate %s", url)
	if b.closed {
		return entity.ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	b.url = url
	b.alert = false
	b.reset()
	if build, ok := b.routes[url]; ok {
		build(b)
	}
	return nil
}

// Goto switches to a registered route while the lock is held. It is meant
// for OnClick callbacks.
func (b *Browser) Goto(url string) {
	b.url = url
	b.reset()
	if build, ok := b.routes[url]; ok {
		build(b)
	}
}

// PutLocked and RemoveLocked are for OnClick callbacks, which run with the
// browser lock held.
func (b *Browser) PutLocked(loc entity.Locator, el *Element) *Element {
	b.put(loc, el)
	return el
}

func (b *Browser) PutAfterLocked(loc entity.Locator, el *Element, delay time.Duration) *Element {
	b.put(loc, el)
	b.appearAt[loc] = time.Now().Add(delay)
	return el
}

func (b *Browser) RemoveLocked(loc entity.Locator) {
	b.remove(loc)
}

func (b *Browser) GetLocked(loc entity.Locator) *Element {
	return b.elements[loc]
}

func (b *Browser) SetTitleLocked(title string) {
	b.title = title
}

func (b *Browser) SetAlertLocked(open bool) {
	b.alert = open
}

func (b *Browser) Locate(ctx context.Context, loc entity.Locator) (entity.ElementHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("locate %s", loc)
	if b.closed {
		return nil, entity.ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b.locateErr != nil {
		return nil, b.locateErr
	}
	el, ok := b.elements[loc]
	if !ok {
		return nil, fmt.Errorf("%s: %w", loc, entity.ErrElementNotFound)
	}
	if at, delayed := b.appearAt[loc]; delayed && time.Now().Before(at) {
		return nil, fmt.Errorf("%s: %w", loc, entity.ErrElementNotFound)
	}
	return &handle{loc: loc, el: el}, nil
}

func (b *Browser) resolve(h entity.ElementHandle) (*handle, error) {
	if b.closed {
		return nil, entity.ErrSessionClosed
	}
	hd, ok := h.(*handle)
	if !ok || hd == nil {
		return nil, fmt.Errorf("foreign element handle %T", h)
	}
	if b.elements[hd.loc] != hd.el {
		return nil, fmt.Errorf("%s: %w", hd.loc, entity.ErrStaleElement)
	}
	return hd, nil
}

func (b *Browser) IsVisible(ctx context.Context, h entity.ElementHandle) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	hd, err := b.resolve(h)
	if err != nil {
		return false, err
	}
	b.record("visible %s", hd.loc)
	return !hd.el.Hidden, nil
}

func (b *Browser) IsEnabled(ctx context.Context, h entity.ElementHandle) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	hd, err := b.resolve(h)
	if err != nil {
		return false, err
	}
	b.record("enabled %s", hd.loc)
	return !hd.el.Disabled, nil
}

func (b *Browser) Act(ctx context.Context, h entity.ElementHandle, action entity.Action) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	hd, err := b.resolve(h)
	if err != nil {
		return "", err
	}
	b.record("act %s %s", action.Kind, hd.loc)

	if b.panicOnAct {
		panic("browsertest: act panic")
	}
	if n := b.staleActs[hd.loc]; n > 0 {
		b.staleActs[hd.loc] = n - 1
		// a re-render replaces the node
		replacement := *hd.el
		b.elements[hd.loc] = &replacement
		return "", fmt.Errorf("%s: %w", hd.loc, entity.ErrStaleElement)
	}
	if err := b.actErrs[hd.loc]; err != nil {
		return "", err
	}

	switch action.Kind {
	case entity.ActionClick:
		if hd.el.OnClick != nil {
			hd.el.OnClick(b)
		}
		return "", nil
	case entity.ActionType:
		hd.el.Value += action.Text
		return "", nil
	case entity.ActionClear:
		hd.el.Value = ""
		return "", nil
	case entity.ActionReadText:
		return hd.el.Text, nil
	default:
		return "", fmt.Errorf("unsupported action %s", action)
	}
}

func (b *Browser) CurrentTitle(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return "", entity.ErrSessionClosed
	}
	return b.title, nil
}

func (b *Browser) AlertPresent(ctx context.Context) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false, entity.ErrSessionClosed
	}
	return b.alert, nil
}

func (b *Browser) AcceptAlert(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("accept-alert")
	if b.closed {
		return entity.ErrSessionClosed
	}
	if !b.alert {
		return entity.ErrNoAlert
	}
	b.alert = false
	return nil
}

func (b *Browser) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, entity.ErrSessionClosed
	}
	return &entity.Screenshot{Data: []byte("browsertest:" + b.url), Format: "jpeg", Width: 1, Height: 1}, nil
}

// PageHTML renders the fake document as a flat list of its elements.
func (b *Browser) PageHTML(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return "", entity.ErrSessionClosed
	}

	keys := make([]string, 0, len(b.elements))
	byKey := make(map[string]*Element, len(b.elements))
	for loc, el := range b.elements {
		keys = append(keys, loc.String())
		byKey[loc.String()] = el
	}
	sort.Strings(keys)

	var sb strings.Builder
	fmt.Fprintf(&sb, "<html><head><title>%s</title><script>var x=1;</script></head><body>", html.EscapeString(b.title))
	for _, k := range keys {
		el := byKey[k]
		fmt.Fprintf(&sb, `<div data-locator="%s" hidden="%t">%s</div>`, html.EscapeString(k), el.Hidden, html.EscapeString(el.Text))
	}
	sb.WriteString("</body></html>")
	return sb.String(), nil
}

func (b *Browser) CurrentURL() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.url
}

func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}
