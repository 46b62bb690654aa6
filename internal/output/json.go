package output

import (
	"encoding/json"
	"fmt"

	"github.com/jbweber/sower/internal/provision"
)

// JSONFormatter formats provisioning data as JSON.
type JSONFormatter struct{}

// FormatReport formats a run report as indented JSON.
func (f *JSONFormatter) FormatReport(report *provision.Report) (string, error) {
	if report == nil {
		return "", fmt.Errorf("report cannot be nil")
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report to JSON: %w", err)
	}

	return string(data) + "\n", nil
}

// FormatSteps formats the step list as a JSON array.
func (f *JSONFormatter) FormatSteps(steps []provision.Step) (string, error) {
	if len(steps) == 0 {
		return "[]\n", nil
	}

	data, err := json.MarshalIndent(stepViews(steps), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal steps to JSON: %w", err)
	}

	return string(data) + "\n", nil
}
