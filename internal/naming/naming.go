// Package naming provides naming conventions for scratch-VM resources:
// deterministic MAC addresses and the on-disk file names under a VM's
// work directory.
package naming

import (
	"fmt"
	"hash/fnv"
	"regexp"
)

// vmNamePattern matches libvirt-safe domain names.
var vmNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidateVMName checks that a scratch-VM name is usable as a libvirt
// domain name and as a directory name.
func ValidateVMName(name string) error {
	if name == "" {
		return fmt.Errorf("vm name is required")
	}
	if !vmNamePattern.MatchString(name) {
		return fmt.Errorf("vm name must start with an alphanumeric and contain only lowercase alphanumerics, hyphens, or underscores, got %q", name)
	}
	return nil
}

// MACFromName calculates a deterministic MAC address from a VM name.
// Uses the local assignment prefix be:ef: with a 32-bit FNV-1a hash of the
// name, so recreating a VM with the same name keeps its DHCP lease.
//
// Example: "sower-test" → be:ef:5e:0e:f2:7a
func MACFromName(name string) (string, error) {
	if err := ValidateVMName(name); err != nil {
		return "", err
	}

	h := fnv.New32a()
	// fnv's Write never fails
	_, _ = h.Write([]byte(name))
	sum := h.Sum(nil)

	return fmt.Sprintf("be:ef:%02x:%02x:%02x:%02x", sum[0], sum[1], sum[2], sum[3]), nil
}

// BootDiskName returns the boot disk file name for a scratch VM.
// Format: {vmName}_boot.qcow2
func BootDiskName(vmName string) string {
	return fmt.Sprintf("%s_boot.qcow2", vmName)
}

// SeedISOName returns the seed ISO file name for a scratch VM.
// Format: {vmName}_seed.iso
func SeedISOName(vmName string) string {
	return fmt.Sprintf("%s_seed.iso", vmName)
}
