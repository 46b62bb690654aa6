package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jbweber/sower/internal/cloudinit"
	"github.com/jbweber/sower/internal/virt"
)

// Scratch VM commands
var vmCmd = &cobra.Command{
	Use:   "vm",
	Short: "Manage scratch VMs for exercising seed data",
	Long: `Manage scratch libvirt VMs used to exercise generated seed data.

A scratch VM boots a qcow2 overlay of a base cloud image with the seed
ISO attached, so the full provisioning procedure can be watched end to
end on the serial console before it is trusted on a real instance.`,
}

func init() {
	vmCmd.AddCommand(vmCreateCmd)
	vmCmd.AddCommand(vmDestroyCmd)
	vmCmd.AddCommand(vmTestConnCmd)
}

var (
	vmVCPUs     int
	vmMemoryGiB int
	vmDiskGB    int
	vmWorkBase  string
)

func init() {
	vmCreateCmd.Flags().IntVar(&vmVCPUs, "vcpus", 0, "number of virtual CPUs (default 2)")
	vmCreateCmd.Flags().IntVar(&vmMemoryGiB, "memory", 0, "memory in GiB (default 2)")
	vmCreateCmd.Flags().IntVar(&vmDiskGB, "disk", 0, "boot disk size in GB (default 10)")
	vmCreateCmd.Flags().StringVar(&vmWorkBase, "work-dir", "", "base directory for VM storage")
	vmDestroyCmd.Flags().StringVar(&vmWorkBase, "work-dir", "", "base directory for VM storage")
}

var vmCreateCmd = &cobra.Command{
	Use:   "create <name> <base-image> [config.yaml]",
	Short: "Create and start a scratch VM with seed data attached",
	Long: `Create and start a scratch VM from a base cloud image.

The boot disk is a qcow2 overlay backed by the base image, and the seed
ISO generated from the configuration is attached as a CD-ROM. The base
image itself is never written to.

Example:
  sower vm create scratch1 /var/lib/images/al2023.qcow2
  sower vm create scratch1 /var/lib/images/al2023.qcow2 sower.yaml`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		baseImage := args[1]

		cfg, err := loadConfig(args[2:])
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		seedISO, err := cloudinit.GenerateISO(cfg)
		if err != nil {
			return fmt.Errorf("failed to generate seed ISO: %w", err)
		}

		fmt.Printf("Creating scratch VM %s from %s...\n", name, baseImage)

		client, err := virt.Connect("", 5*time.Second)
		if err != nil {
			return fmt.Errorf("failed to connect to libvirt: %w", err)
		}
		defer func() {
			if closeErr := client.Close(); closeErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close libvirt connection: %v\n", closeErr)
			}
		}()

		mgr := virt.NewManager(client.Libvirt(), vmWorkBase)
		spec := &virt.ScratchSpec{
			Name:       name,
			BaseImage:  baseImage,
			VCPUs:      vmVCPUs,
			MemoryGiB:  vmMemoryGiB,
			DiskSizeGB: vmDiskGB,
		}

		if err := mgr.Create(context.Background(), spec, seedISO); err != nil {
			return fmt.Errorf("failed to create scratch VM: %w", err)
		}

		fmt.Printf("✓ Scratch VM %s created and started\n", name)
		fmt.Printf("  watch it with: virsh console %s\n", name)
		return nil
	},
}

var vmDestroyCmd = &cobra.Command{
	Use:   "destroy <name>",
	Short: "Destroy a scratch VM",
	Long: `Destroy a scratch VM by name.

This will:
- Stop the VM if running
- Undefine the domain
- Delete the overlay disk, seed ISO, and work directory

The base image the VM was created from is left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		fmt.Printf("Destroying scratch VM %s...\n", name)

		client, err := virt.Connect("", 5*time.Second)
		if err != nil {
			return fmt.Errorf("failed to connect to libvirt: %w", err)
		}
		defer func() {
			if closeErr := client.Close(); closeErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close libvirt connection: %v\n", closeErr)
			}
		}()

		mgr := virt.NewManager(client.Libvirt(), vmWorkBase)
		if err := mgr.Destroy(context.Background(), name); err != nil {
			return fmt.Errorf("failed to destroy scratch VM: %w", err)
		}

		fmt.Printf("✓ Scratch VM %s destroyed\n", name)
		return nil
	},
}

var vmTestConnCmd = &cobra.Command{
	Use:   "test-conn",
	Short: "Test libvirt connection",
	Long:  `Test connectivity to the libvirt daemon and display version information.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Testing libvirt connection...")

		client, err := virt.Connect("", 5*time.Second)
		if err != nil {
			return fmt.Errorf("failed to connect to libvirt: %w", err)
		}
		defer func() {
			if closeErr := client.Close(); closeErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close libvirt connection: %v\n", closeErr)
			}
		}()

		fmt.Println("✓ Connected to libvirt daemon")

		if err := client.Ping(); err != nil {
			return fmt.Errorf("connection test failed: %w", err)
		}

		lvVersion, err := client.Libvirt().ConnectGetLibVersion()
		if err != nil {
			return fmt.Errorf("failed to get libvirt version: %w", err)
		}

		// libvirt returns version as an integer like 8006000 for 8.6.0
		major := lvVersion / 1000000
		minor := (lvVersion % 1000000) / 1000
		patch := lvVersion % 1000

		fmt.Printf("✓ Libvirt version: %d.%d.%d\n", major, minor, patch)

		hostname, err := client.Libvirt().ConnectGetHostname()
		if err != nil {
			return fmt.Errorf("failed to get hostname: %w", err)
		}

		fmt.Printf("✓ Hypervisor hostname: %s\n", hostname)

		uri, err := client.Libvirt().ConnectGetUri()
		if err != nil {
			return fmt.Errorf("failed to get connection URI: %w", err)
		}

		fmt.Printf("✓ Connection URI: %s\n", uri)

		fmt.Println("\nConnection test successful!")
		return nil
	},
}
