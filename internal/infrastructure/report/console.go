package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"swagflow/internal/domain/entity"

	"github.com/fatih/color"
)

// Console prints scenario progress and the final summary for humans.
type Console struct {
	w io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) ScenarioStarted(name string) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Fprintf(c.w, "\n━━━ %s ━━━\n", name)
}

func (c *Console) ScenarioFinished(o entity.ScenarioOutcome) {
	for _, f := range o.Flows {
		c.showFlow(f)
	}

	if !o.Passed {
		red := color.New(color.FgRed)
		red.Fprintf(c.w, "✗ %s failed in %v\n", o.Name, o.Duration.Round(time.Millisecond))

		dim := color.New(color.Faint)
		dim.Fprintf(c.w, "   %s\n", truncate(o.Error, 300))
		if o.ScreenshotPath != "" {
			dim.Fprintf(c.w, "   screenshot: %s\n", o.ScreenshotPath)
		}
		if o.DOMPath != "" {
			dim.Fprintf(c.w, "   dom: %s\n", o.DOMPath)
		}
		return
	}

	green := color.New(color.FgGreen)
	green.Fprintf(c.w, "✓ %s passed in %v\n", o.Name, o.Duration.Round(time.Millisecond))
}

func (c *Console) showFlow(f entity.FlowRecord) {
	dim := color.New(color.Faint)
	if f.State == entity.FlowConfirmed.String() {
		dim.Fprintf(c.w, "   • %s %s\n", f.Name, f.State)
		return
	}

	yellow := color.New(color.FgYellow)
	yellow.Fprintf(c.w, "   • %s %s", f.Name, f.State)
	if f.Message != "" {
		yellow.Fprintf(c.w, ": %s", truncate(f.Message, 120))
	}
	fmt.Fprintln(c.w)
}

func (c *Console) PrintSummary(s entity.RunSummary) {
	bold := color.New(color.Bold)
	bold.Fprintln(c.w, "\n=== Test summary ===")
	fmt.Fprintf(c.w, "Run:    %s\n", s.RunID)
	fmt.Fprintf(c.w, "Total:  %d\n", s.Total)
	color.New(color.FgGreen).Fprintf(c.w, "Passed: %d\n", s.Passed)

	failed := color.New(color.FgGreen)
	if s.Failed > 0 {
		failed = color.New(color.FgRed, color.Bold)
	}
	failed.Fprintf(c.w, "Failed: %d\n", s.Failed)

	for _, o := range s.Outcomes {
		if !o.Passed {
			fmt.Fprintf(c.w, "  - %s: %s\n", o.Name, truncate(firstLine(o.Error), 160))
		}
	}
	bold.Fprintln(c.w, "====================")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
