package entity

import "time"

type ScenarioOutcome struct {
	Name           string        `json:"name"`
	Passed         bool          `json:"passed"`
	Error          string        `json:"error,omitempty"`
	Flows          []FlowRecord  `json:"flows,omitempty"`
	Duration       time.Duration `json:"duration_ns"`
	ScreenshotPath string        `json:"screenshot,omitempty"`
	DOMPath        string        `json:"dom,omitempty"`
}

// FlowRecord is the serializable view of a finished Flow.
type FlowRecord struct {
	Name    string        `json:"name"`
	State   string        `json:"state"`
	Message string        `json:"message,omitempty"`
	Result  string        `json:"result"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

func (f *Flow) Record() FlowRecord {
	return FlowRecord{
		Name:    f.Name,
		State:   f.State.String(),
		Message: f.Message,
		Result:  f.Result.String(),
		Elapsed: f.Elapsed,
	}
}

type RunSummary struct {
	RunID    string            `json:"run_id"`
	Started  time.Time         `json:"started"`
	Total    int               `json:"total"`
	Passed   int               `json:"passed"`
	Failed   int               `json:"failed"`
	Outcomes []ScenarioOutcome `json:"outcomes"`
}
