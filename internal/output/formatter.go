// Package output provides formatters for displaying provisioning runs
// in various formats (table, YAML, JSON).
package output

import (
	"fmt"

	"github.com/jbweber/sower/internal/provision"
)

// Format represents an output format type.
type Format string

const (
	// FormatTable is a human-readable table format.
	FormatTable Format = "table"
	// FormatYAML is a YAML format for declarative consumption.
	FormatYAML Format = "yaml"
	// FormatJSON is a JSON format for machine consumption.
	FormatJSON Format = "json"
)

// Formatter formats provisioning data for output.
type Formatter interface {
	// FormatReport formats the outcome of one provisioning run.
	FormatReport(report *provision.Report) (string, error)

	// FormatSteps formats the ordered step list of a configuration.
	FormatSteps(steps []provision.Step) (string, error)
}

// Options contains options for formatting output.
type Options struct {
	// Format specifies the output format.
	Format Format
	// NoHeaders omits headers in table format.
	NoHeaders bool
}

// stepView is the serializable projection of a Step for JSON/YAML output.
type stepView struct {
	Name      string   `json:"name" yaml:"name"`
	Tolerated bool     `json:"tolerated" yaml:"tolerated"`
	Script    []string `json:"script" yaml:"script"`
}

func stepViews(steps []provision.Step) []stepView {
	views := make([]stepView, len(steps))
	for i, step := range steps {
		views[i] = stepView{
			Name:      step.Name(),
			Tolerated: step.Tolerated(),
			Script:    step.Script(),
		}
	}
	return views
}

// NewFormatter creates a new Formatter based on the specified format.
func NewFormatter(opts Options) (Formatter, error) {
	switch opts.Format {
	case FormatTable:
		return &TableFormatter{NoHeaders: opts.NoHeaders}, nil
	case FormatYAML:
		return &YAMLFormatter{}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: table, yaml, json)", opts.Format)
	}
}

// ValidateFormat checks if a format string is valid.
func ValidateFormat(format string) error {
	switch Format(format) {
	case FormatTable, FormatYAML, FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid formats: table, yaml, json)", format)
	}
}
