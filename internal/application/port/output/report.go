package output

import "swagflow/internal/domain/entity"

// ReportPort collects scenario outcomes and persists their artifacts.
type ReportPort interface {
	Record(outcome entity.ScenarioOutcome)
	SaveScreenshot(scenario string, state entity.FlowState, shot *entity.Screenshot) (string, error)
	SaveDOM(scenario string, html string) (string, error)
	Summary() entity.RunSummary
}
