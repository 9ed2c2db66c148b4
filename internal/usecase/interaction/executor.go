package interaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"swagflow/internal/application/port/output"
	"swagflow/internal/domain/entity"
)

type Executor struct {
	browser output.BrowserPort
	waiter  *Waiter
	log     output.LoggerPort
}

func NewExecutor(browser output.BrowserPort, waiter *Waiter, log output.LoggerPort) *Executor {
	return &Executor{browser: browser, waiter: waiter, log: log}
}

type performOptions struct {
	post         entity.WaitCondition
	postDeadline *entity.Deadline
}

type PerformOption func(*performOptions)

// WithPostCondition makes Perform wait for cond after dispatching the action.
// Success then means the effect was observed, not only that the action ran.
func WithPostCondition(cond entity.WaitCondition) PerformOption {
	return func(o *performOptions) {
		o.post = cond
	}
}

// WithPostDeadline overrides the deadline used for the post-condition.
func WithPostDeadline(d entity.Deadline) PerformOption {
	return func(o *performOptions) {
		o.postDeadline = &d
	}
}

// Perform resolves loc, checks the action's preconditions, dispatches the
// action and optionally confirms its effect. The preconditions share one
// deadline; the post-condition gets its own.
func (e *Executor) Perform(ctx context.Context, loc entity.Locator, action entity.Action, deadline entity.Deadline, opts ...PerformOption) entity.Result {
	start := time.Now()
	o := performOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	log := e.log.WithFields(map[string]any{
		"locator": loc.String(),
		"action":  action.String(),
	})

	if err := loc.Validate(); err != nil {
		return e.finish(entity.Transient(err), loc, start)
	}

	res := e.resolve(ctx, loc, action, deadline)
	if !res.OK() {
		log.Debug("element not ready", "result", res.Kind.String(), "elapsed", res.Elapsed)
		return e.finish(res, loc, start)
	}
	el := res.Element

	value, err := e.browser.Act(ctx, el, action)
	if errors.Is(err, entity.ErrStaleElement) {
		log.Debug("stale element on dispatch, re-resolving")
		res = e.resolve(ctx, loc, action, deadline)
		if !res.OK() {
			return e.finish(res, loc, start)
		}
		el = res.Element
		value, err = e.browser.Act(ctx, el, action)
	}
	if err != nil {
		log.Warn("action dispatch failed", "error", err)
		return e.finish(entity.Transient(fmt.Errorf("dispatch %s on %s: %w", action, loc, err)), loc, start)
	}

	if !o.post.IsZero() {
		postDeadline := deadline
		if o.postDeadline != nil {
			postDeadline = *o.postDeadline
		}
		confirm := e.waiter.Await(ctx, o.post, postDeadline)
		if !confirm.OK() {
			if confirm.Kind == entity.ResultTimeout {
				confirm.Unconfirmed = true
			}
			log.Warn("post-condition not met", "post_condition", o.post.String(), "result", confirm.Kind.String())
			confirm.Value = value
			return e.finishWithCondition(confirm, loc, start)
		}
	}

	out := entity.Succeeded(el)
	out.Value = value
	log.Debug("action performed", "elapsed", time.Since(start))
	return e.finish(out, loc, start)
}

// resolve waits for presence, then visibility for mutating actions, then
// enablement for clicks, all within one deadline.
func (e *Executor) resolve(ctx context.Context, loc entity.Locator, action entity.Action, deadline entity.Deadline) entity.Result {
	phases := []entity.WaitCondition{entity.ElementPresent(loc)}
	if action.Mutating() {
		phases = append(phases, entity.ElementVisible(loc))
	}
	if action.Kind == entity.ActionClick {
		phases = append(phases, entity.ElementEnabled(loc))
	}

	start := time.Now()
	var res entity.Result
	for _, cond := range phases {
		remaining := deadline.Timeout - time.Since(start)
		if remaining <= 0 {
			res = entity.TimedOut(cond)
			res.Elapsed = time.Since(start)
			return res
		}
		res = e.waiter.Await(ctx, cond, deadline.WithTimeout(remaining))
		if !res.OK() {
			return res
		}
	}
	return res
}

func (e *Executor) finish(res entity.Result, loc entity.Locator, start time.Time) entity.Result {
	res.Locator = loc
	res.Elapsed = time.Since(start)
	return res
}

// finishWithCondition keeps the post-condition's own locator so failures name
// what was being confirmed.
func (e *Executor) finishWithCondition(res entity.Result, loc entity.Locator, start time.Time) entity.Result {
	if res.Locator.IsZero() {
		res.Locator = loc
	}
	res.Elapsed = time.Since(start)
	return res
}
