package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jbweber/sower/internal/config"
	"github.com/jbweber/sower/internal/output"
	"github.com/jbweber/sower/internal/provision"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sower",
	Short: "Sower - boot-time instance provisioning tool",
	Long: `Sower provisions a freshly booted instance: it installs packages,
bootstraps pip, installs the application library, clones the application
repository, and hands ownership to the non-privileged account.

It can run the procedure natively, or render it as NoCloud seed data
(user-data, meta-data, ISO) for instances that boot from cloud-init.`,
	Version: fmt.Sprintf("%s (commit: %s)", version, commit),
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(stepsCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(vmCmd)
}

// loadConfig reads the optional config file argument, falling back to the
// built-in defaults when no file is given.
func loadConfig(args []string) (*config.Config, error) {
	if len(args) == 0 {
		return config.DefaultConfig(), nil
	}
	return config.LoadFromFile(args[0])
}

var (
	runOutputFormat string
)

func init() {
	runCmd.Flags().StringVarP(&runOutputFormat, "output", "o", "table", "report format: table, yaml, json")
}

var runCmd = &cobra.Command{
	Use:   "run [config.yaml]",
	Short: "Run the provisioning procedure on this host",
	Long: `Run the provisioning procedure on this host, step by step.

Each step's output goes to stdout and is appended to the log file.
Steps run in order and the run aborts on the first fatal failure; the
report printed afterwards records the outcome of every step.

With no arguments the built-in defaults are used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := output.ValidateFormat(runOutputFormat); err != nil {
			return err
		}

		cfg, err := loadConfig(args)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		runner := provision.NewRunner(&cfg.Provision)
		report, runErr := runner.Run(context.Background())

		// A report exists whenever the log file could be opened; print it
		// even for a failed run so the failing step is visible.
		if report != nil {
			formatter, fmtErr := output.NewFormatter(output.Options{Format: output.Format(runOutputFormat)})
			if fmtErr != nil {
				return fmtErr
			}
			text, fmtErr := formatter.FormatReport(report)
			if fmtErr != nil {
				return fmt.Errorf("failed to format report: %w", fmtErr)
			}
			fmt.Print(text)
		}

		if runErr != nil {
			return fmt.Errorf("provisioning failed: %w", runErr)
		}
		return nil
	},
}

var (
	stepsOutputFormat string
	stepsNoHeaders    bool
)

func init() {
	stepsCmd.Flags().StringVarP(&stepsOutputFormat, "output", "o", "table", "output format: table, yaml, json")
	stepsCmd.Flags().BoolVar(&stepsNoHeaders, "no-headers", false, "omit headers in table output")
}

var stepsCmd = &cobra.Command{
	Use:   "steps [config.yaml]",
	Short: "Show the provisioning steps without running them",
	Long: `Show the ordered provisioning steps a configuration produces,
including the shell command each step renders to and whether a failure
aborts the run or is tolerated.

With no arguments the built-in defaults are used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := output.ValidateFormat(stepsOutputFormat); err != nil {
			return err
		}

		cfg, err := loadConfig(args)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		formatter, err := output.NewFormatter(output.Options{
			Format:    output.Format(stepsOutputFormat),
			NoHeaders: stepsNoHeaders,
		})
		if err != nil {
			return err
		}

		text, err := formatter.FormatSteps(provision.Steps(&cfg.Provision))
		if err != nil {
			return fmt.Errorf("failed to format steps: %w", err)
		}

		fmt.Print(text)
		return nil
	},
}
