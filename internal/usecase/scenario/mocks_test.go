package scenario

import (
	"swagflow/internal/domain/entity"

	"github.com/stretchr/testify/mock"
)

// MockReport mocks output.ReportPort.
type MockReport struct {
	mock.Mock
}

func (m *MockReport) Record(outcome entity.ScenarioOutcome) {
	m.Called(outcome)
}

func (m *MockReport) SaveScreenshot(scenario string, state entity.FlowState, shot *entity.Screenshot) (string, error) {
	args := m.Called(scenario, state, shot)
	return args.String(0), args.Error(1)
}

func (m *MockReport) SaveDOM(scenario string, html string) (string, error) {
	args := m.Called(scenario, html)
	return args.String(0), args.Error(1)
}

func (m *MockReport) Summary() entity.RunSummary {
	args := m.Called()
	return args.Get(0).(entity.RunSummary)
}

// recordingObserver keeps the order of progress callbacks.
type recordingObserver struct {
	mock.Mock
}

func (o *recordingObserver) ScenarioStarted(name string) {
	o.Called(name)
}

func (o *recordingObserver) ScenarioFinished(outcome entity.ScenarioOutcome) {
	o.Called(outcome.Name, outcome.Passed)
}
