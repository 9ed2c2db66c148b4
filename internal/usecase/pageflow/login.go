package pageflow

import (
	"context"
	"fmt"
	"time"

	"swagflow/internal/application/port/output"
	"swagflow/internal/domain/entity"
	"swagflow/internal/domain/swaglabs"
	"swagflow/internal/usecase/interaction"
)

type LoginPage struct {
	page
}

func NewLoginPage(browser output.BrowserPort, log output.LoggerPort, opts Options) *LoginPage {
	return &LoginPage{page: newPage(browser, log.WithField("page", "login"), opts)}
}

func (p *LoginPage) Open(ctx context.Context) error {
	p.log.Info("opening login page", "url", p.opts.BaseURL)
	if err := p.browser.Navigate(ctx, p.opts.BaseURL); err != nil {
		return fmt.Errorf("open login page: %w", err)
	}
	return nil
}

// Login fills the form and submits it. The flow is confirmed once the
// inventory renders; an error banner fails it with the banner text as
// message.
func (p *LoginPage) Login(ctx context.Context, username, password string) (*entity.Flow, error) {
	flow, log := p.begin("login", "username", username)

	if res := p.fill(ctx, swaglabs.UsernameInput(), username); !res.OK() {
		return p.settle(flow, log, res, "username input not ready")
	}
	if res := p.fill(ctx, swaglabs.PasswordInput(), password); !res.OK() {
		return p.settle(flow, log, res, "password input not ready")
	}

	outcome := entity.AnyOf(
		entity.ElementPresent(swaglabs.InventoryContainer()),
		entity.ElementPresent(swaglabs.ErrorBanner()),
	)
	res := p.perform(ctx, swaglabs.LoginButton(), entity.Click(), interaction.WithPostCondition(outcome))

	p.DismissInterstitials(ctx)

	if !res.OK() {
		return p.settle(flow, log, res, "login submitted but no outcome observed")
	}
	poll := p.opts.Deadline.PollInterval
	if p.waiter.Await(ctx, entity.ElementPresent(swaglabs.InventoryContainer()), entity.NewDeadline(poll, poll)).OK() {
		return p.settle(flow, log, res, "")
	}

	rejected := entity.NotFound(swaglabs.InventoryContainer())
	rejected.Condition = outcome
	rejected.Elapsed = res.Elapsed
	return p.settle(flow, log, rejected, p.ErrorMessage(ctx))
}

// ErrorMessage reads the login error banner, retrying briefly. It returns ""
// when no banner shows up.
func (p *LoginPage) ErrorMessage(ctx context.Context) string {
	res := interaction.WithRetry(ctx, func(ctx context.Context) entity.Result {
		return p.executor.Perform(ctx, swaglabs.ErrorBanner(), entity.ReadText(), p.opts.ImplicitWait)
	}, p.opts.Retry)

	if !res.OK() {
		p.log.Debug("no login error message", "result", res.Kind.String(), "attempts", res.Attempts)
		return ""
	}
	return res.Value
}

func (p *LoginPage) WaitForTitleContains(ctx context.Context, text string) entity.Result {
	return p.waiter.Await(ctx, entity.TitleContains(text), p.opts.Deadline)
}

// AcceptAlertIfPresent accepts a JS alert if one opens within timeout.
func (p *LoginPage) AcceptAlertIfPresent(ctx context.Context, timeout time.Duration) bool {
	var alertRules []entity.DismissalRule
	for _, rule := range p.opts.Rules {
		if rule.AcceptsAlert() {
			alertRules = append(alertRules, rule)
		}
	}
	return p.dismisser.DismissIfPresent(ctx, alertRules, timeout)
}
