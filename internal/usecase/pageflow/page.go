package pageflow

import (
	"context"
	"time"

	"swagflow/internal/application/port/output"
	"swagflow/internal/domain/entity"
	"swagflow/internal/usecase/interaction"
)

// Options carries the per-run settings every page object needs.
type Options struct {
	BaseURL string
	// Deadline bounds actions and positive waits.
	Deadline entity.Deadline
	// ImplicitWait bounds negative checks such as IsItemInCart.
	ImplicitWait   entity.Deadline
	Retry          entity.RetryPolicy
	DismissTimeout time.Duration
	Rules          []entity.DismissalRule
}

func DefaultOptions(baseURL string) Options {
	return Options{
		BaseURL:        baseURL,
		Deadline:       entity.NewDeadline(10*time.Second, entity.DefaultPollInterval),
		ImplicitWait:   entity.NewDeadline(5*time.Second, entity.DefaultPollInterval),
		Retry:          entity.DefaultRetryPolicy(),
		DismissTimeout: interaction.DefaultDismissTimeout,
		Rules:          entity.DefaultDismissalRules(),
	}
}

// page is the shared base of the page objects. A page owns the browser
// session for the lifetime of its flows and is not safe for concurrent use.
type page struct {
	browser   output.BrowserPort
	log       output.LoggerPort
	waiter    *interaction.Waiter
	executor  *interaction.Executor
	dismisser *interaction.Dismisser
	opts      Options
}

func newPage(browser output.BrowserPort, log output.LoggerPort, opts Options) page {
	waiter := interaction.NewWaiter(browser, log)
	return page{
		browser:   browser,
		log:       log,
		waiter:    waiter,
		executor:  interaction.NewExecutor(browser, waiter, log),
		dismisser: interaction.NewDismisser(browser, waiter, log, opts.Deadline.PollInterval),
		opts:      opts,
	}
}

func (p *page) perform(ctx context.Context, loc entity.Locator, action entity.Action, opts ...interaction.PerformOption) entity.Result {
	return p.executor.Perform(ctx, loc, action, p.opts.Deadline, opts...)
}

// check waits for cond with the implicit-wait deadline and reports whether
// it held.
func (p *page) check(ctx context.Context, cond entity.WaitCondition) bool {
	return p.waiter.Await(ctx, cond, p.opts.ImplicitWait).OK()
}

// fill clears the input at loc and types text into it.
func (p *page) fill(ctx context.Context, loc entity.Locator, text string) entity.Result {
	if res := p.perform(ctx, loc, entity.Clear()); !res.OK() {
		return res
	}
	return p.perform(ctx, loc, entity.Type(text))
}

// DismissInterstitials runs the configured dismissal rules once.
func (p *page) DismissInterstitials(ctx context.Context) bool {
	return p.dismisser.DismissIfPresent(ctx, p.opts.Rules, p.opts.DismissTimeout)
}

func (p *page) begin(name string, fields ...any) (*entity.Flow, output.LoggerPort) {
	flow := entity.NewFlow(name)
	_ = flow.Start()
	log := p.log.WithField("flow", name)
	log.Info("flow started", fields...)
	return flow, log
}

func (p *page) settle(flow *entity.Flow, log output.LoggerPort, res entity.Result, failMsg string) (*entity.Flow, error) {
	if !res.OK() {
		err := flow.Fail(res, failMsg)
		log.Warn("flow failed", "error", err, "elapsed", flow.Elapsed)
		return flow, err
	}
	if err := flow.Confirm(res); err != nil {
		return flow, err
	}
	log.Info("flow confirmed", "elapsed", flow.Elapsed)
	return flow, nil
}
