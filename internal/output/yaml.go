package output

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/sower/internal/provision"
)

// YAMLFormatter formats provisioning data as YAML.
type YAMLFormatter struct{}

// FormatReport formats a run report as YAML.
func (f *YAMLFormatter) FormatReport(report *provision.Report) (string, error) {
	if report == nil {
		return "", fmt.Errorf("report cannot be nil")
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report to YAML: %w", err)
	}

	return string(data), nil
}

// FormatSteps formats the step list as YAML.
func (f *YAMLFormatter) FormatSteps(steps []provision.Step) (string, error) {
	if len(steps) == 0 {
		return "", nil
	}

	data, err := yaml.Marshal(stepViews(steps))
	if err != nil {
		return "", fmt.Errorf("failed to marshal steps to YAML: %w", err)
	}

	return string(data), nil
}
