package virt

import (
	"context"

	"github.com/digitalocean/go-libvirt"
)

// domainClient defines the libvirt operations needed for scratch-VM
// management.
//
// In production, this is satisfied by *libvirt.Libvirt directly.
// In tests, this is satisfied by mock implementations.
type domainClient interface {
	// DomainLookupByName looks up a domain by name
	DomainLookupByName(name string) (libvirt.Domain, error)

	// DomainDefineXML defines a domain from XML
	DomainDefineXML(xml string) (libvirt.Domain, error)

	// DomainCreate starts a domain
	DomainCreate(dom libvirt.Domain) error

	// DomainDestroy force-stops a domain
	DomainDestroy(dom libvirt.Domain) error

	// DomainUndefine undefines a domain
	DomainUndefine(dom libvirt.Domain) error
}

// seedStorage defines the disk operations needed for scratch-VM management.
//
// In production, this is satisfied by *DiskManager.
// In tests, this is satisfied by mock implementations.
type seedStorage interface {
	// CreateWorkDir creates the VM's work directory
	CreateWorkDir(vmName string) (string, error)

	// CreateBootDisk creates an overlay boot disk backed by the base image,
	// returning its path
	CreateBootDisk(ctx context.Context, vmName, baseImage string, sizeGB int) (string, error)

	// WriteSeedISO writes the seed ISO into the work directory, returning
	// its path
	WriteSeedISO(vmName string, data []byte) (string, error)

	// DeleteWorkDir removes the VM's work directory and everything in it
	DeleteWorkDir(vmName string) error
}
