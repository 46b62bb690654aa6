package output

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jbweber/sower/internal/provision"
)

// TableFormatter formats provisioning data as human-readable tables.
type TableFormatter struct {
	// NoHeaders omits the header row.
	NoHeaders bool
}

// FormatReport formats a run report as a table, one row per step, followed
// by a summary line.
func (f *TableFormatter) FormatReport(report *provision.Report) (string, error) {
	if report == nil {
		return "", fmt.Errorf("report cannot be nil")
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	if !f.NoHeaders {
		_, _ = fmt.Fprintln(w, "STEP\tSTATUS\tDURATION\tERROR")
	}

	for _, step := range report.Steps {
		errText := "-"
		if step.Error != "" {
			errText = step.Error
		}

		duration := "-"
		if step.Status != provision.StatusSkipped {
			duration = step.Duration.Round(time.Millisecond).String()
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			step.Name, step.Status, duration, errText)
	}

	_ = w.Flush()

	outcome := "FAILED"
	if report.Completed {
		outcome = "completed"
	}
	fmt.Fprintf(&buf, "\nRun %s %s in %s\n",
		report.RunID, outcome,
		report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))

	return buf.String(), nil
}

// FormatSteps formats the step list as a table.
func (f *TableFormatter) FormatSteps(steps []provision.Step) (string, error) {
	if len(steps) == 0 {
		return "No steps configured\n", nil
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	if !f.NoHeaders {
		_, _ = fmt.Fprintln(w, "#\tSTEP\tON FAILURE\tCOMMAND")
	}

	for i, step := range steps {
		onFailure := "abort"
		if step.Tolerated() {
			onFailure = "continue"
		}

		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			i+1, step.Name(), onFailure, strings.Join(step.Script(), " && "))
	}

	_ = w.Flush()
	return buf.String(), nil
}
