// Package virt manages scratch VMs for exercising a seed ISO locally.
//
// A scratch VM is a throwaway libvirt domain booted from an overlay of a
// base cloud image with the seed ISO attached as a CIDATA cdrom. Cloud-init
// inside the guest picks up the NoCloud datasource and runs the
// provisioning procedure, which is the closest local approximation of a
// real instance boot.
//
// Each scratch VM owns a work directory under the storage base holding its
// overlay disk and seed ISO. Destroy removes the domain and the directory.
//
// Consumer-Side Interfaces:
//
// The Manager depends on small locally-defined interfaces (domainClient,
// seedStorage) rather than concrete libvirt/filesystem types, so tests can
// substitute mocks. *libvirt.Libvirt and *DiskManager satisfy them
// directly.
package virt
