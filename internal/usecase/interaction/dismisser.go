package interaction

import (
	"context"
	"time"

	"swagflow/internal/application/port/output"
	"swagflow/internal/domain/entity"
)

const DefaultDismissTimeout = 500 * time.Millisecond

// Dismisser closes unsolicited UI (alerts, password-manager prompts) on a
// best-effort basis. It never fails the caller.
type Dismisser struct {
	browser output.BrowserPort
	waiter  *Waiter
	log     output.LoggerPort
	poll    time.Duration
}

// NewDismisser polls detectors every poll; zero means
// entity.DefaultPollInterval.
func NewDismisser(browser output.BrowserPort, waiter *Waiter, log output.LoggerPort, poll time.Duration) *Dismisser {
	if poll <= 0 {
		poll = entity.DefaultPollInterval
	}
	return &Dismisser{browser: browser, waiter: waiter, log: log, poll: poll}
}

// DismissIfPresent tries rules in order and reports whether one of them
// dismissed something. Each detector gets at most timeout to fire.
func (d *Dismisser) DismissIfPresent(ctx context.Context, rules []entity.DismissalRule, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = DefaultDismissTimeout
	}
	poll := d.poll
	if poll > timeout {
		poll = timeout
	}
	deadline := entity.NewDeadline(timeout, poll)

	for _, rule := range rules {
		if ctx.Err() != nil {
			return false
		}
		if d.tryRule(ctx, rule, deadline) {
			d.log.Info("interstitial dismissed", "rule", rule.Name)
			return true
		}
	}
	return false
}

func (d *Dismisser) tryRule(ctx context.Context, rule entity.DismissalRule, deadline entity.Deadline) (dismissed bool) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Debug("dismissal rule panicked", "rule", rule.Name, "panic", r)
			dismissed = false
		}
	}()

	detected := d.waiter.Await(ctx, rule.Detector, deadline)
	if !detected.OK() {
		if detected.Kind == entity.ResultTransientError {
			d.log.Debug("dismissal detector failed", "rule", rule.Name, "error", detected.Cause)
		}
		return false
	}

	if rule.AcceptsAlert() {
		if err := d.browser.AcceptAlert(ctx); err != nil {
			d.log.Debug("accept alert failed", "rule", rule.Name, "error", err)
			return false
		}
		return true
	}

	for _, candidate := range rule.Candidates {
		el, err := d.browser.Locate(ctx, candidate)
		if err != nil {
			continue
		}
		visible, err := d.browser.IsVisible(ctx, el)
		if err != nil || !visible {
			continue
		}
		if _, err := d.browser.Act(ctx, el, entity.Click()); err != nil {
			d.log.Debug("dismiss click failed", "rule", rule.Name, "candidate", candidate.String(), "error", err)
			continue
		}
		return true
	}
	return false
}
