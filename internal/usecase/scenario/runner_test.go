package scenario

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"swagflow/internal/application/port/output"
	"swagflow/internal/domain/entity"
	"swagflow/internal/domain/swaglabs"
	"swagflow/internal/infrastructure/browser/browsertest"
	"swagflow/internal/infrastructure/logger"
	"swagflow/internal/infrastructure/report"
	"swagflow/internal/usecase/pageflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const baseURL = "http://store.test/"

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testOptions() pageflow.Options {
	opts := pageflow.DefaultOptions(baseURL)
	opts.Deadline = entity.NewDeadline(500*time.Millisecond, 10*time.Millisecond)
	opts.ImplicitWait = entity.NewDeadline(100*time.Millisecond, 10*time.Millisecond)
	opts.Retry = entity.RetryPolicy{MaxAttempts: 2, Backoff: 10 * time.Millisecond}
	opts.DismissTimeout = 20 * time.Millisecond
	return opts
}

// storeFactory hands out a fresh fake store per session and keeps the
// browsers for inspection.
type storeFactory struct {
	opts    browsertest.StoreOptions
	prepare func(b *browsertest.Browser)

	mu       sync.Mutex
	browsers []*browsertest.Browser
}

func (f *storeFactory) open(ctx context.Context) (output.BrowserPort, error) {
	b := browsertest.NewBrowser()
	browsertest.InstallSwagLabs(b, baseURL, f.opts)
	if f.prepare != nil {
		f.prepare(b)
	}
	f.mu.Lock()
	f.browsers = append(f.browsers, b)
	f.mu.Unlock()
	return b, nil
}

func newReporter(t *testing.T) *report.Reporter {
	return report.New(report.Options{Dir: t.TempDir()}, logger.NewNop())
}

func TestCatalog(t *testing.T) {
	var names []string
	for _, sc := range Catalog() {
		names = append(names, sc.Name)
		assert.NotEmpty(t, sc.Description)
		assert.NotNil(t, sc.Run)
	}
	assert.Equal(t, []string{"login-valid", "login-invalid", "add-remove", "add-open-cart"}, names)
}

func TestSelect(t *testing.T) {
	all := Catalog()

	got, err := Select(all, nil)
	require.NoError(t, err)
	assert.Len(t, got, len(all))

	got, err = Select(all, []string{"add-open-cart", " login-valid "})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "login-valid", got[0].Name)
	assert.Equal(t, "add-open-cart", got[1].Name)

	_, err = Select(all, []string{"login-valid", "zzz", "checkout"})
	assert.ErrorIs(t, err, ErrUnknownScenario)
	assert.ErrorContains(t, err, "checkout, zzz")
}

func TestRunner_CatalogPasses(t *testing.T) {
	factory := &storeFactory{}
	reporter := newReporter(t)
	runner := NewRunner(factory.open, reporter, logger.NewNop(), testOptions())

	summary, err := runner.Run(context.Background(), Catalog())

	require.NoError(t, err)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 4, summary.Passed, "%+v", summary.Outcomes)
	assert.Zero(t, summary.Failed)

	for _, o := range summary.Outcomes {
		assert.True(t, o.Passed, o.Name)
		assert.NotEmpty(t, o.ScreenshotPath, o.Name)
		assert.FileExists(t, o.ScreenshotPath)
		assert.Empty(t, o.DOMPath, o.Name)
		assert.Positive(t, o.Duration)
	}
	for _, b := range factory.browsers {
		_, err := b.CurrentTitle(context.Background())
		assert.ErrorIs(t, err, entity.ErrSessionClosed, "every session is closed")
	}
}

func TestRunner_RecordsFlows(t *testing.T) {
	factory := &storeFactory{}
	runner := NewRunner(factory.open, newReporter(t), logger.NewNop(), testOptions())

	scenarios, err := Select(Catalog(), []string{"add-remove", "login-invalid"})
	require.NoError(t, err)
	summary, err := runner.Run(context.Background(), scenarios)
	require.NoError(t, err)

	byName := map[string]entity.ScenarioOutcome{}
	for _, o := range summary.Outcomes {
		byName[o.Name] = o
	}

	invalid := byName["login-invalid"]
	assert.True(t, invalid.Passed)
	require.Len(t, invalid.Flows, 1)
	assert.Equal(t, "failed", invalid.Flows[0].State)
	assert.Contains(t, invalid.Flows[0].Message, swaglabs.ErrorPrefix)

	addRemove := byName["add-remove"]
	assert.True(t, addRemove.Passed)
	var states []string
	for _, f := range addRemove.Flows {
		states = append(states, f.Name+":"+f.State)
	}
	assert.Equal(t, []string{"login:confirmed", "add-to-cart:confirmed", "remove-from-cart:confirmed"}, states)
}

func TestRunner_FailureSavesDOM(t *testing.T) {
	boom := errors.New("boom")
	factory := &storeFactory{prepare: func(b *browsertest.Browser) {
		b.FailAct(swaglabs.AddButton(swaglabs.Backpack), boom)
	}}

	rep := &MockReport{}
	rep.On("SaveScreenshot", "add-open-cart", entity.FlowFailed, mock.Anything).Return("/tmp/add-open-cart__failed.jpg", nil).Once()
	rep.On("SaveDOM", "add-open-cart", mock.MatchedBy(func(html string) bool { return html != "" })).Return("/tmp/add-open-cart.html", nil).Once()
	rep.On("Record", mock.MatchedBy(func(o entity.ScenarioOutcome) bool {
		return o.Name == "add-open-cart" && !o.Passed &&
			o.ScreenshotPath == "/tmp/add-open-cart__failed.jpg" &&
			o.DOMPath == "/tmp/add-open-cart.html" &&
			len(o.Flows) == 2 && o.Flows[1].State == "failed"
	})).Once()
	rep.On("Summary").Return(entity.RunSummary{Total: 1, Failed: 1})

	runner := NewRunner(factory.open, rep, logger.NewNop(), testOptions())
	scenarios, err := Select(Catalog(), []string{"add-open-cart"})
	require.NoError(t, err)

	summary, err := runner.Run(context.Background(), scenarios)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	rep.AssertExpectations(t)
}

func TestRunner_BrowserStartFailure(t *testing.T) {
	rep := &MockReport{}
	rep.On("Record", mock.MatchedBy(func(o entity.ScenarioOutcome) bool {
		return !o.Passed && o.Error == "start browser: no chrome" && o.ScreenshotPath == ""
	})).Once()
	rep.On("Summary").Return(entity.RunSummary{Total: 1, Failed: 1})

	failing := func(ctx context.Context) (output.BrowserPort, error) {
		return nil, errors.New("no chrome")
	}
	runner := NewRunner(failing, rep, logger.NewNop(), testOptions())

	_, err := runner.Run(context.Background(), Catalog()[:1])

	require.NoError(t, err)
	rep.AssertExpectations(t)
	rep.AssertNotCalled(t, "SaveScreenshot", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunner_PanickingScenarioFails(t *testing.T) {
	factory := &storeFactory{}
	reporter := newReporter(t)
	runner := NewRunner(factory.open, reporter, logger.NewNop(), testOptions())

	panicky := Scenario{Name: "panicky", Run: func(ctx context.Context, s *Session) error {
		panic("kaboom")
	}}
	summary, err := runner.Run(context.Background(), []Scenario{panicky})

	require.NoError(t, err)
	require.Len(t, summary.Outcomes, 1)
	o := summary.Outcomes[0]
	assert.False(t, o.Passed)
	assert.Contains(t, o.Error, "kaboom")
	assert.FileExists(t, o.DOMPath)
	_, err = os.Stat(o.ScreenshotPath)
	assert.NoError(t, err)
}

func TestRunner_ParallelLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	gate := func(ctx context.Context, s *Session) error {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		return nil
	}

	var scenarios []Scenario
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		scenarios = append(scenarios, Scenario{Name: name, Run: gate})
	}

	factory := &storeFactory{}
	runner := NewRunner(factory.open, newReporter(t), logger.NewNop(), testOptions(), WithParallel(2))
	summary, err := runner.Run(context.Background(), scenarios)

	require.NoError(t, err)
	assert.Equal(t, 6, summary.Passed)
	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Equal(t, int32(2), peak.Load())
}

func TestRunner_Credentials(t *testing.T) {
	factory := &storeFactory{}
	runner := NewRunner(factory.open, newReporter(t), logger.NewNop(), testOptions(),
		WithCredentials(Credentials{Username: swaglabs.LockedOutUser, Password: swaglabs.Password}))

	summary, err := runner.Run(context.Background(), Catalog()[:1])

	require.NoError(t, err)
	require.Len(t, summary.Outcomes, 1)
	assert.False(t, summary.Outcomes[0].Passed)
	assert.Contains(t, summary.Outcomes[0].Error, "locked out")
}

func TestRunner_Observer(t *testing.T) {
	obs := &recordingObserver{}
	obs.On("ScenarioStarted", "login-valid").Once()
	obs.On("ScenarioFinished", "login-valid", true).Once()

	factory := &storeFactory{}
	runner := NewRunner(factory.open, newReporter(t), logger.NewNop(), testOptions(), WithObserver(obs))
	_, err := runner.Run(context.Background(), Catalog()[:1])

	require.NoError(t, err)
	obs.AssertExpectations(t)
}

func TestRunner_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	factory := &storeFactory{}
	runner := NewRunner(factory.open, newReporter(t), logger.NewNop(), testOptions())
	summary, err := runner.Run(ctx, Catalog())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, summary.Total)
	assert.Empty(t, factory.browsers)
}
