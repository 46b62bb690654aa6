package virt

import (
	"context"
	"fmt"
	"log"

	"github.com/digitalocean/go-libvirt"

	"github.com/jbweber/sower/internal/naming"
)

// ScratchSpec describes a scratch VM.
type ScratchSpec struct {
	// Name is the libvirt domain name, also used for the work directory.
	Name string

	// BaseImage is the path to the base qcow2 cloud image.
	BaseImage string

	// VCPUs defaults to 2.
	VCPUs int

	// MemoryGiB defaults to 2.
	MemoryGiB int

	// DiskSizeGB is the overlay disk size, default 10.
	DiskSizeGB int
}

// applyDefaults fills zero-valued resource fields.
func (s *ScratchSpec) applyDefaults() {
	if s.VCPUs == 0 {
		s.VCPUs = 2
	}
	if s.MemoryGiB == 0 {
		s.MemoryGiB = 2
	}
	if s.DiskSizeGB == 0 {
		s.DiskSizeGB = 10
	}
}

// Validate checks the spec for errors.
func (s *ScratchSpec) Validate() error {
	if err := naming.ValidateVMName(s.Name); err != nil {
		return err
	}
	if s.BaseImage == "" {
		return fmt.Errorf("base image is required")
	}
	if s.VCPUs < 0 || s.MemoryGiB < 0 || s.DiskSizeGB < 0 {
		return fmt.Errorf("resource sizes cannot be negative")
	}
	return nil
}

// Manager provides scratch-VM lifecycle operations.
type Manager struct {
	lv    domainClient
	store seedStorage
}

// NewManager creates a Manager using a connected libvirt client and a disk
// manager rooted at workBase (empty for the default).
func NewManager(lv *libvirt.Libvirt, workBase string) *Manager {
	return &Manager{
		lv:    lv,
		store: NewDiskManager(workBase),
	}
}

// Create builds and starts a scratch VM with the given seed ISO attached.
//
// On any failure, partially created resources (work directory, defined
// domain) are cleaned up best-effort.
func (m *Manager) Create(ctx context.Context, spec *ScratchSpec, seedISO []byte) error {
	if spec == nil {
		return fmt.Errorf("scratch VM spec cannot be nil")
	}
	spec.applyDefaults()
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("invalid scratch VM spec: %w", err)
	}

	// Refuse to clobber an existing domain. Lookup failing means the name
	// is free, which is what we want.
	if _, err := m.lv.DomainLookupByName(spec.Name); err == nil {
		return fmt.Errorf("VM '%s' already exists", spec.Name)
	}

	var (
		storageCreated bool
		domainDefined  bool
		dom            libvirt.Domain
	)

	var createErr error
	defer func() {
		if createErr == nil {
			return
		}
		if domainDefined {
			if err := m.lv.DomainUndefine(dom); err != nil {
				log.Printf("Warning: failed to undefine domain during cleanup: %v", err)
			}
		}
		if storageCreated {
			if err := m.store.DeleteWorkDir(spec.Name); err != nil {
				log.Printf("Warning: failed to delete work directory during cleanup: %v", err)
			}
		}
	}()

	log.Printf("Creating work directory for '%s'...", spec.Name)
	if _, createErr = m.store.CreateWorkDir(spec.Name); createErr != nil {
		return createErr
	}
	storageCreated = true

	log.Printf("Creating overlay boot disk (%dGB) from %s...", spec.DiskSizeGB, spec.BaseImage)
	diskPath, createErr := m.store.CreateBootDisk(ctx, spec.Name, spec.BaseImage, spec.DiskSizeGB)
	if createErr != nil {
		return createErr
	}

	log.Printf("Writing seed ISO...")
	isoPath, createErr := m.store.WriteSeedISO(spec.Name, seedISO)
	if createErr != nil {
		return createErr
	}

	mac, createErr := naming.MACFromName(spec.Name)
	if createErr != nil {
		return createErr
	}

	xml, createErr := GenerateDomainXML(spec, diskPath, isoPath, mac)
	if createErr != nil {
		return createErr
	}

	log.Printf("Defining domain '%s'...", spec.Name)
	dom, createErr = m.lv.DomainDefineXML(xml)
	if createErr != nil {
		createErr = fmt.Errorf("failed to define domain: %w", createErr)
		return createErr
	}
	domainDefined = true

	log.Printf("Starting domain '%s'...", spec.Name)
	if createErr = m.lv.DomainCreate(dom); createErr != nil {
		createErr = fmt.Errorf("failed to start domain: %w", createErr)
		return createErr
	}

	return nil
}

// Destroy stops and removes a scratch VM and its work directory.
//
// A VM that is already stopped is fine; a domain that does not exist at all
// is an error so typos surface instead of silently "succeeding".
func (m *Manager) Destroy(ctx context.Context, name string) error {
	if err := naming.ValidateVMName(name); err != nil {
		return err
	}

	dom, err := m.lv.DomainLookupByName(name)
	if err != nil {
		return fmt.Errorf("VM '%s' not found: %w", name, err)
	}

	// DomainDestroy fails when the domain is not running; that is not a
	// problem for teardown.
	if err := m.lv.DomainDestroy(dom); err != nil {
		log.Printf("domain '%s' was not running: %v", name, err)
	}

	if err := m.lv.DomainUndefine(dom); err != nil {
		return fmt.Errorf("failed to undefine domain '%s': %w", name, err)
	}

	if err := m.store.DeleteWorkDir(name); err != nil {
		return err
	}

	return nil
}
