package output

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/sower/internal/config"
	"github.com/jbweber/sower/internal/provision"
)

func testReport() *provision.Report {
	started := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return &provision.Report{
		RunID:      "11111111-2222-3333-4444-555555555555",
		StartedAt:  started,
		FinishedAt: started.Add(90 * time.Second),
		Completed:  false,
		Steps: []provision.StepResult{
			{Name: "install-git", Status: provision.StatusOK, Duration: 12 * time.Second},
			{Name: "ensurepip", Status: provision.StatusTolerated, Error: "exit status 1", Duration: time.Second},
			{Name: "clone-repository", Status: provision.StatusFailed, Error: "network unreachable", Duration: 30 * time.Second},
			{Name: "chown-tree", Status: provision.StatusSkipped},
		},
	}
}

func testSteps() []provision.Step {
	return provision.Steps(&config.DefaultConfig().Provision)
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format  Format
		wantErr bool
	}{
		{FormatTable, false},
		{FormatJSON, false},
		{FormatYAML, false},
		{Format("xml"), true},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			_, err := NewFormatter(Options{Format: tt.format})
			if (err != nil) != tt.wantErr {
				t.Errorf("NewFormatter(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	for _, valid := range []string{"table", "json", "yaml"} {
		if err := ValidateFormat(valid); err != nil {
			t.Errorf("ValidateFormat(%q) = %v", valid, err)
		}
	}
	if err := ValidateFormat("csv"); err == nil {
		t.Error("ValidateFormat(csv) should fail")
	}
}

func TestTableFormatter(t *testing.T) {
	f := &TableFormatter{}

	t.Run("report", func(t *testing.T) {
		got, err := f.FormatReport(testReport())
		if err != nil {
			t.Fatalf("FormatReport failed: %v", err)
		}

		for _, want := range []string{"STEP", "install-git", "tolerated", "network unreachable", "skipped", "FAILED"} {
			if !strings.Contains(got, want) {
				t.Errorf("table output missing %q:\n%s", want, got)
			}
		}
	})

	t.Run("report without headers", func(t *testing.T) {
		nh := &TableFormatter{NoHeaders: true}
		got, err := nh.FormatReport(testReport())
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(got, "STATUS") {
			t.Errorf("headers should be omitted:\n%s", got)
		}
	})

	t.Run("completed summary", func(t *testing.T) {
		report := testReport()
		report.Completed = true
		got, err := f.FormatReport(report)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(got, "completed in 1m30s") {
			t.Errorf("unexpected summary line:\n%s", got)
		}
	})

	t.Run("steps", func(t *testing.T) {
		got, err := f.FormatSteps(testSteps())
		if err != nil {
			t.Fatalf("FormatSteps failed: %v", err)
		}
		for _, want := range []string{"install-git", "ensurepip", "continue", "abort", "dnf install -y git"} {
			if !strings.Contains(got, want) {
				t.Errorf("steps table missing %q:\n%s", want, got)
			}
		}
	})

	t.Run("empty steps", func(t *testing.T) {
		got, err := f.FormatSteps(nil)
		if err != nil {
			t.Fatal(err)
		}
		if got != "No steps configured\n" {
			t.Errorf("unexpected output for empty steps: %q", got)
		}
	})

	t.Run("nil report", func(t *testing.T) {
		if _, err := f.FormatReport(nil); err == nil {
			t.Fatal("expected error for nil report")
		}
	})
}

func TestJSONFormatter(t *testing.T) {
	f := &JSONFormatter{}

	t.Run("report round-trips", func(t *testing.T) {
		got, err := f.FormatReport(testReport())
		if err != nil {
			t.Fatalf("FormatReport failed: %v", err)
		}

		var decoded provision.Report
		if err := json.Unmarshal([]byte(got), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.RunID != "11111111-2222-3333-4444-555555555555" {
			t.Errorf("unexpected run ID: %q", decoded.RunID)
		}
		if len(decoded.Steps) != 4 {
			t.Errorf("expected 4 steps, got %d", len(decoded.Steps))
		}
	})

	t.Run("steps", func(t *testing.T) {
		got, err := f.FormatSteps(testSteps())
		if err != nil {
			t.Fatal(err)
		}

		var views []stepView
		if err := json.Unmarshal([]byte(got), &views); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if len(views) == 0 || views[0].Name != "install-git" {
			t.Errorf("unexpected steps: %+v", views)
		}
	})
}

func TestYAMLFormatter(t *testing.T) {
	f := &YAMLFormatter{}

	t.Run("report round-trips", func(t *testing.T) {
		got, err := f.FormatReport(testReport())
		if err != nil {
			t.Fatalf("FormatReport failed: %v", err)
		}

		var decoded provision.Report
		if err := yaml.Unmarshal([]byte(got), &decoded); err != nil {
			t.Fatalf("output is not valid YAML: %v", err)
		}
		if decoded.Steps[2].Error != "network unreachable" {
			t.Errorf("unexpected decoded report: %+v", decoded)
		}
	})

	t.Run("steps", func(t *testing.T) {
		got, err := f.FormatSteps(testSteps())
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(got, "name: install-git") {
			t.Errorf("unexpected YAML:\n%s", got)
		}
	})
}
