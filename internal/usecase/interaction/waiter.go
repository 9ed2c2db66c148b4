package interaction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"swagflow/internal/application/port/output"
	"swagflow/internal/domain/entity"

	"k8s.io/apimachinery/pkg/util/wait"
)

// Waiter polls a WaitCondition against the browser until it holds or the
// deadline elapses. Probes only read browser state.
type Waiter struct {
	browser output.BrowserPort
	log     output.LoggerPort
}

func NewWaiter(browser output.BrowserPort, log output.LoggerPort) *Waiter {
	return &Waiter{browser: browser, log: log}
}

// Await returns Success (with the element for element conditions), Timeout
// once deadline.Timeout has elapsed, or TransientError as soon as the session
// faults or ctx is cancelled.
func (w *Waiter) Await(ctx context.Context, cond entity.WaitCondition, deadline entity.Deadline) entity.Result {
	start := time.Now()

	if err := deadline.Validate(); err != nil {
		return w.finish(entity.Transient(err), cond, start)
	}

	var (
		matched entity.Result
		fault   error
		polls   int
	)

	err := wait.PollUntilContextTimeout(ctx, deadline.PollInterval, deadline.Timeout, true, func(pollCtx context.Context) (bool, error) {
		polls++
		res, err := w.probe(pollCtx, cond)
		if err != nil {
			if recoverable(pollCtx, err) {
				return false, nil
			}
			fault = err
			return false, err
		}
		if res.OK() {
			matched = res
			return true, nil
		}
		return false, nil
	})

	switch {
	case err == nil:
		w.log.Debug("condition satisfied", "condition", cond.String(), "polls", polls, "elapsed", time.Since(start))
		return w.finish(matched, cond, start)
	case fault != nil:
		w.log.Warn("session fault while waiting", "condition", cond.String(), "error", fault)
		return w.finish(entity.Transient(fault), cond, start)
	case ctx.Err() != nil:
		w.log.Debug("wait cancelled", "condition", cond.String(), "error", ctx.Err())
		return w.finish(entity.Transient(ctx.Err()), cond, start)
	default:
		w.log.Debug("wait timed out", "condition", cond.String(), "polls", polls, "timeout", deadline.Timeout)
		return w.finish(entity.TimedOut(cond), cond, start)
	}
}

func (w *Waiter) finish(res entity.Result, cond entity.WaitCondition, start time.Time) entity.Result {
	res.Condition = cond
	if res.Locator.IsZero() {
		res.Locator = cond.Locator
	}
	res.Elapsed = time.Since(start)
	return res
}

// probe evaluates cond once. A non-OK result means "not yet"; errors are
// classified by the caller.
func (w *Waiter) probe(ctx context.Context, cond entity.WaitCondition) (entity.Result, error) {
	switch cond.Kind {
	case entity.ConditionElementPresent:
		el, err := w.browser.Locate(ctx, cond.Locator)
		if err != nil {
			return entity.Result{}, err
		}
		return w.matched(el, cond.Locator), nil

	case entity.ConditionElementVisible:
		el, err := w.browser.Locate(ctx, cond.Locator)
		if err != nil {
			return entity.Result{}, err
		}
		visible, err := w.browser.IsVisible(ctx, el)
		if err != nil || !visible {
			return entity.NotFound(cond.Locator), err
		}
		return w.matched(el, cond.Locator), nil

	case entity.ConditionElementEnabled:
		el, err := w.browser.Locate(ctx, cond.Locator)
		if err != nil {
			return entity.Result{}, err
		}
		enabled, err := w.browser.IsEnabled(ctx, el)
		if err != nil || !enabled {
			return entity.NotFound(cond.Locator), err
		}
		return w.matched(el, cond.Locator), nil

	case entity.ConditionElementAbsent:
		el, err := w.browser.Locate(ctx, cond.Locator)
		if errors.Is(err, entity.ErrElementNotFound) {
			return w.matched(nil, cond.Locator), nil
		}
		if err != nil {
			return entity.Result{}, err
		}
		visible, err := w.browser.IsVisible(ctx, el)
		if errors.Is(err, entity.ErrStaleElement) || errors.Is(err, entity.ErrElementNotFound) || (err == nil && !visible) {
			return w.matched(nil, cond.Locator), nil
		}
		if err != nil {
			return entity.Result{}, err
		}
		return entity.NotFound(cond.Locator), nil

	case entity.ConditionTitleContains:
		title, err := w.browser.CurrentTitle(ctx)
		if err != nil {
			return entity.Result{}, err
		}
		if strings.Contains(title, cond.Text) {
			res := entity.Succeeded(nil)
			res.Value = title
			return res, nil
		}
		return entity.Result{Kind: entity.ResultNotFound}, nil

	case entity.ConditionAlertPresent:
		present, err := w.browser.AlertPresent(ctx)
		if err != nil {
			return entity.Result{}, err
		}
		if present {
			return entity.Succeeded(nil), nil
		}
		return entity.Result{Kind: entity.ResultNotFound}, nil

	case entity.ConditionAnyOf:
		for _, member := range cond.Any {
			res, err := w.probe(ctx, member)
			if err != nil {
				if recoverable(ctx, err) {
					continue
				}
				return entity.Result{}, err
			}
			if res.OK() {
				return res, nil
			}
		}
		return entity.Result{Kind: entity.ResultNotFound}, nil

	default:
		return entity.Result{}, fmt.Errorf("unknown wait condition %s", cond.Kind)
	}
}

func (w *Waiter) matched(el entity.ElementHandle, loc entity.Locator) entity.Result {
	res := entity.Succeeded(el)
	res.Locator = loc
	return res
}

// recoverable reports whether err just means "not there yet": a missing or
// stale element, a missing alert, or a probe cut short by the poll deadline
// while the caller's context is still live.
func recoverable(ctx context.Context, err error) bool {
	switch {
	case errors.Is(err, entity.ErrSessionClosed):
		return false
	case errors.Is(err, entity.ErrElementNotFound),
		errors.Is(err, entity.ErrStaleElement),
		errors.Is(err, entity.ErrNoAlert):
		return true
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil:
		return true
	}
	return false
}
