// Package scenario runs named Swag Labs scenarios, each on its own browser
// session, and records their outcomes and artifacts.
package scenario

import (
	"context"
	"fmt"
	"time"

	"swagflow/internal/application/port/output"
	"swagflow/internal/domain/entity"
	"swagflow/internal/usecase/pageflow"

	"golang.org/x/sync/errgroup"
)

const artifactTimeout = 15 * time.Second

// BrowserFactory opens a fresh browser session. The runner closes it.
type BrowserFactory func(ctx context.Context) (output.BrowserPort, error)

// Observer is told about scenario progress, e.g. to print it.
type Observer interface {
	ScenarioStarted(name string)
	ScenarioFinished(outcome entity.ScenarioOutcome)
}

type Runner struct {
	newBrowser BrowserFactory
	report     output.ReportPort
	log        output.LoggerPort
	opts       pageflow.Options
	creds      Credentials
	parallel   int
	observer   Observer
}

type Option func(*Runner)

func WithParallel(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.parallel = n
		}
	}
}

func WithCredentials(c Credentials) Option {
	return func(r *Runner) {
		r.creds = c
	}
}

func WithObserver(o Observer) Option {
	return func(r *Runner) {
		r.observer = o
	}
}

func NewRunner(newBrowser BrowserFactory, report output.ReportPort, log output.LoggerPort, opts pageflow.Options, options ...Option) *Runner {
	r := &Runner{
		newBrowser: newBrowser,
		report:     report,
		log:        log.WithField("component", "scenario_runner"),
		opts:       opts,
		creds:      DefaultCredentials(),
		parallel:   1,
	}
	for _, o := range options {
		o(r)
	}
	return r
}

// Run executes scenarios with at most the configured number in flight.
// A failing scenario does not stop the others; the returned error is only
// set when ctx ends before every scenario ran.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) (entity.RunSummary, error) {
	r.log.Info("starting run", "scenarios", len(scenarios), "parallel", r.parallel)

	var g errgroup.Group
	g.SetLimit(r.parallel)

	for _, sc := range scenarios {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			outcome := r.runOne(ctx, sc)
			r.report.Record(outcome)
			if r.observer != nil {
				r.observer.ScenarioFinished(outcome)
			}
			return nil
		})
	}
	_ = g.Wait()

	summary := r.report.Summary()
	r.log.Info("run finished", "total", summary.Total, "passed", summary.Passed, "failed", summary.Failed)
	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("run interrupted: %w", err)
	}
	return summary, nil
}

func (r *Runner) runOne(ctx context.Context, sc Scenario) (outcome entity.ScenarioOutcome) {
	log := r.log.WithField("scenario", sc.Name)
	if r.observer != nil {
		r.observer.ScenarioStarted(sc.Name)
	}
	outcome.Name = sc.Name
	start := time.Now()
	defer func() {
		outcome.Duration = time.Since(start)
	}()

	browser, err := r.newBrowser(ctx)
	if err != nil {
		outcome.Error = fmt.Sprintf("start browser: %v", err)
		log.Error("failed to start browser", "error", err)
		return outcome
	}
	defer browser.Close()

	session := &Session{
		Login:     pageflow.NewLoginPage(browser, log, r.opts),
		Inventory: pageflow.NewInventoryPage(browser, log, r.opts),
		Creds:     r.creds,
	}

	err = r.execute(ctx, sc, session)
	outcome.Flows = session.Flows()
	outcome.Passed = err == nil

	state := entity.FlowConfirmed
	if err != nil {
		state = entity.FlowFailed
		outcome.Error = err.Error()
		log.Warn("scenario failed", "error", err)
	} else {
		log.Info("scenario passed")
	}

	r.captureArtifacts(ctx, browser, &outcome, state, log)
	return outcome
}

// execute turns a panicking scenario body into a failed outcome.
func (r *Runner) execute(ctx context.Context, sc Scenario, s *Session) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("scenario panicked: %v", p)
		}
	}()
	return sc.Run(ctx, s)
}

// captureArtifacts runs on a detached context so an interrupted run still
// leaves its evidence behind.
func (r *Runner) captureArtifacts(ctx context.Context, browser output.BrowserPort, outcome *entity.ScenarioOutcome, state entity.FlowState, log output.LoggerPort) {
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), artifactTimeout)
	defer cancel()

	shot, err := browser.Screenshot(actx)
	if err != nil {
		log.Warn("screenshot failed", "error", err)
	} else if path, err := r.report.SaveScreenshot(outcome.Name, state, shot); err != nil {
		log.Warn("saving screenshot failed", "error", err)
	} else {
		outcome.ScreenshotPath = path
	}

	if outcome.Passed {
		return
	}
	html, err := browser.PageHTML(actx)
	if err != nil {
		log.Warn("page HTML unavailable", "error", err)
		return
	}
	path, err := r.report.SaveDOM(outcome.Name, html)
	if err != nil {
		log.Warn("saving DOM snapshot failed", "error", err)
		return
	}
	outcome.DOMPath = path
}
