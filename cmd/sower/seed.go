package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jbweber/sower/internal/cloudinit"
)

// Seed generation commands
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate NoCloud seed data",
	Long: `Generate NoCloud seed data carrying the provisioning procedure.

The user-data renders the same step sequence the run command executes,
so an instance booted with the seed attached performs the identical
procedure via cloud-init.`,
}

func init() {
	seedCmd.AddCommand(seedUserDataCmd)
	seedCmd.AddCommand(seedMetaDataCmd)
	seedCmd.AddCommand(seedISOCmd)
}

var seedUserDataCmd = &cobra.Command{
	Use:   "user-data [config.yaml]",
	Short: "Print the user-data payload",
	Long: `Print the cloud-init user-data payload to stdout.

Without a seed section in the configuration, this is a shell script in
the form the original deployment used. With a seed section, it is a
#cloud-config document whose runcmd carries the same steps.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(args)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		userData, err := cloudinit.GenerateUserData(cfg)
		if err != nil {
			return fmt.Errorf("failed to generate user-data: %w", err)
		}

		fmt.Print(userData)
		return nil
	},
}

var seedMetaDataCmd = &cobra.Command{
	Use:   "meta-data [config.yaml]",
	Short: "Print the meta-data payload",
	Long: `Print the cloud-init meta-data payload to stdout.

Each invocation generates a fresh instance-id, so attaching regenerated
seed data to an existing instance re-triggers cloud-init.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(args)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		metaData, err := cloudinit.GenerateMetaData(cfg)
		if err != nil {
			return fmt.Errorf("failed to generate meta-data: %w", err)
		}

		fmt.Print(metaData)
		return nil
	},
}

var seedISOCmd = &cobra.Command{
	Use:   "iso <output.iso> [config.yaml]",
	Short: "Write a NoCloud seed ISO",
	Long: `Write a NoCloud seed ISO (volume label CIDATA) containing the
user-data and meta-data payloads.

Attach the ISO as a CD-ROM to have cloud-init's NoCloud datasource pick
it up on boot.

Example:
  sower seed iso seed.iso
  sower seed iso seed.iso sower.yaml`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		outputPath := args[0]

		cfg, err := loadConfig(args[1:])
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		isoData, err := cloudinit.GenerateISO(cfg)
		if err != nil {
			return fmt.Errorf("failed to generate seed ISO: %w", err)
		}

		if err := os.WriteFile(outputPath, isoData, 0644); err != nil {
			return fmt.Errorf("failed to write seed ISO: %w", err)
		}

		fmt.Printf("✓ Seed ISO written to %s (%d bytes)\n", outputPath, len(isoData))
		return nil
	},
}
