// Package report persists scenario artifacts and the run summary.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"swagflow/internal/application/port/output"
	"swagflow/internal/domain/entity"
	"swagflow/internal/infrastructure/browser/domclean"

	"github.com/google/uuid"
)

var _ output.ReportPort = (*Reporter)(nil)

const (
	screenshotDir = "screenshots"
	domDir        = "dom"
)

type Options struct {
	Dir   string
	Clean domclean.Config
	Now   func() time.Time
}

// Reporter is safe for concurrent use by parallel scenarios.
type Reporter struct {
	dir   string
	clean domclean.Config
	now   func() time.Time
	log   output.LoggerPort

	mu      sync.Mutex
	summary entity.RunSummary
}

func New(opts Options, log output.LoggerPort) *Reporter {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Dir == "" {
		opts.Dir = "artifacts"
	}
	return &Reporter{
		dir:   opts.Dir,
		clean: opts.Clean,
		now:   opts.Now,
		log:   log,
		summary: entity.RunSummary{
			RunID:   uuid.NewString(),
			Started: opts.Now(),
		},
	}
}

func (r *Reporter) RunID() string {
	return r.summary.RunID
}

func (r *Reporter) Record(outcome entity.ScenarioOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.summary.Total++
	if outcome.Passed {
		r.summary.Passed++
	} else {
		r.summary.Failed++
	}
	r.summary.Outcomes = append(r.summary.Outcomes, outcome)
}

func (r *Reporter) Summary() entity.RunSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.summary
	s.Outcomes = append([]entity.ScenarioOutcome(nil), r.summary.Outcomes...)
	return s
}

// SaveScreenshot writes dir/screenshots/<scenario>__<state>.jpg.
func (r *Reporter) SaveScreenshot(scenario string, state entity.FlowState, shot *entity.Screenshot) (string, error) {
	if shot == nil || len(shot.Data) == 0 {
		return "", fmt.Errorf("empty screenshot for %s", scenario)
	}
	ext := shot.Format
	if ext == "" || ext == "jpeg" {
		ext = "jpg"
	}
	name := fmt.Sprintf("%s__%s.%s", Sanitize(scenario), state, ext)
	path, err := r.write(screenshotDir, name, shot.Data)
	if err != nil {
		return "", err
	}
	r.log.Info("Screenshot saved", "scenario", scenario, "path", path)
	return path, nil
}

// SaveDOM stores a cleaned snapshot of the page. A snapshot that cannot be
// parsed is stored raw.
func (r *Reporter) SaveDOM(scenario string, html string) (string, error) {
	cleaned, err := domclean.Clean(html, r.clean)
	if err != nil {
		r.log.Warn("Storing raw DOM snapshot", "scenario", scenario, "error", err)
		cleaned = html
	}
	name := AddTimestamp(Sanitize(scenario), r.now()) + ".html"
	path, err := r.write(domDir, name, []byte(cleaned))
	if err != nil {
		return "", err
	}
	r.log.Info("DOM snapshot saved", "scenario", scenario, "path", path)
	return path, nil
}

// WriteJSON writes the run summary to dir/report_<timestamp>.json.
func (r *Reporter) WriteJSON() (string, error) {
	data, err := json.MarshalIndent(r.Summary(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	return r.write("", AddTimestamp("report", r.now())+".json", data)
}

func (r *Reporter) write(sub, name string, data []byte) (string, error) {
	dir := filepath.Join(r.dir, sub)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Sanitize turns a scenario name into a file name component.
func Sanitize(name string) string {
	s := strings.Trim(unsafeChars.ReplaceAllString(strings.TrimSpace(name), "_"), "_.")
	if s == "" {
		return "unnamed"
	}
	return s
}

// AddTimestamp suffixes input with an ISO-8601 UTC timestamp whose colons and
// dots are replaced so the result is a valid file name.
func AddTimestamp(input string, t time.Time) string {
	ts := t.UTC().Format("2006-01-02T15:04:05.000Z")
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)
	return input + "_" + ts
}
