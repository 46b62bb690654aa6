package virt

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/jbweber/sower/internal/naming"
)

const (
	// DefaultWorkBase is the default base directory for scratch-VM storage.
	DefaultWorkBase = "/var/lib/sower/vms"

	dirPermissions  = 0755
	filePermissions = 0644
)

// DiskManager handles scratch-VM storage: one work directory per VM
// containing the overlay boot disk and the seed ISO.
//
// Disks are created with qemu-img rather than libvirt storage pools; a
// throwaway VM does not need pool bookkeeping.
type DiskManager struct {
	workBase string
}

// NewDiskManager creates a DiskManager rooted at workBase.
// An empty workBase uses DefaultWorkBase.
func NewDiskManager(workBase string) *DiskManager {
	if workBase == "" {
		workBase = DefaultWorkBase
	}
	return &DiskManager{workBase: workBase}
}

// WorkDir returns the work directory path for a VM.
func (m *DiskManager) WorkDir(vmName string) string {
	return filepath.Join(m.workBase, vmName)
}

// CreateWorkDir creates the VM's work directory.
func (m *DiskManager) CreateWorkDir(vmName string) (string, error) {
	dir := m.WorkDir(vmName)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return "", fmt.Errorf("failed to create work directory %s: %w", dir, err)
	}
	return dir, nil
}

// CreateBootDisk creates a qcow2 overlay backed by the base image. The base
// image is never written to, so many scratch VMs can share one.
func (m *DiskManager) CreateBootDisk(ctx context.Context, vmName, baseImage string, sizeGB int) (string, error) {
	if _, err := os.Stat(baseImage); err != nil {
		return "", fmt.Errorf("base image %s: %w", baseImage, err)
	}

	diskPath := filepath.Join(m.WorkDir(vmName), naming.BootDiskName(vmName))

	cmd := exec.CommandContext(ctx,
		"qemu-img", "create",
		"-f", "qcow2",
		"-b", baseImage,
		"-F", "qcow2",
		diskPath,
		fmt.Sprintf("%dG", sizeGB),
	)

	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("failed to create boot disk %s: %w\nOutput: %s", diskPath, err, string(output))
	}

	return diskPath, nil
}

// WriteSeedISO writes the seed ISO into the work directory.
func (m *DiskManager) WriteSeedISO(vmName string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("ISO data cannot be empty")
	}

	isoPath := filepath.Join(m.WorkDir(vmName), naming.SeedISOName(vmName))

	if err := os.WriteFile(isoPath, data, filePermissions); err != nil {
		return "", fmt.Errorf("failed to write seed ISO %s: %w", isoPath, err)
	}

	return isoPath, nil
}

// DeleteWorkDir removes the VM's work directory and all its contents.
// Deleting a directory that does not exist is not an error.
func (m *DiskManager) DeleteWorkDir(vmName string) error {
	dir := m.WorkDir(vmName)

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to delete work directory %s: %w", dir, err)
	}

	return nil
}
