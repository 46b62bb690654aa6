package virt

import (
	"context"
	"fmt"
	"sync"

	"github.com/digitalocean/go-libvirt"
)

// mockDomainClient is a mock implementation of the domainClient interface.
type mockDomainClient struct {
	mu sync.Mutex

	// Configurable behavior
	domainLookupByNameFunc func(name string) (libvirt.Domain, error)
	domainDefineXMLFunc    func(xml string) (libvirt.Domain, error)
	domainCreateFunc       func(dom libvirt.Domain) error
	domainDestroyFunc      func(dom libvirt.Domain) error
	domainUndefineFunc     func(dom libvirt.Domain) error

	// Call tracking
	lookupCalls   []string
	defineCalls   []string
	createCalls   []libvirt.Domain
	destroyCalls  []libvirt.Domain
	undefineCalls []libvirt.Domain
}

func newMockDomainClient() *mockDomainClient {
	m := &mockDomainClient{}

	// Default: domain not found until defined
	m.domainLookupByNameFunc = func(name string) (libvirt.Domain, error) {
		if len(m.defineCalls) > 0 {
			return libvirt.Domain{Name: name}, nil
		}
		return libvirt.Domain{}, fmt.Errorf("domain not found: %s", name)
	}

	return m
}

func (m *mockDomainClient) DomainLookupByName(name string) (libvirt.Domain, error) {
	m.mu.Lock()
	m.lookupCalls = append(m.lookupCalls, name)
	fn := m.domainLookupByNameFunc
	m.mu.Unlock()
	if fn == nil {
		return libvirt.Domain{Name: name}, nil
	}
	return fn(name)
}

func (m *mockDomainClient) DomainDefineXML(xml string) (libvirt.Domain, error) {
	m.mu.Lock()
	m.defineCalls = append(m.defineCalls, xml)
	fn := m.domainDefineXMLFunc
	m.mu.Unlock()
	if fn == nil {
		return libvirt.Domain{Name: "scratch"}, nil
	}
	return fn(xml)
}

func (m *mockDomainClient) DomainCreate(dom libvirt.Domain) error {
	m.mu.Lock()
	m.createCalls = append(m.createCalls, dom)
	fn := m.domainCreateFunc
	m.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(dom)
}

func (m *mockDomainClient) DomainDestroy(dom libvirt.Domain) error {
	m.mu.Lock()
	m.destroyCalls = append(m.destroyCalls, dom)
	fn := m.domainDestroyFunc
	m.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(dom)
}

func (m *mockDomainClient) DomainUndefine(dom libvirt.Domain) error {
	m.mu.Lock()
	m.undefineCalls = append(m.undefineCalls, dom)
	fn := m.domainUndefineFunc
	m.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(dom)
}

// mockSeedStorage is a mock implementation of the seedStorage interface.
type mockSeedStorage struct {
	mu sync.Mutex

	createWorkDirFunc  func(vmName string) (string, error)
	createBootDiskFunc func(ctx context.Context, vmName, baseImage string, sizeGB int) (string, error)
	writeSeedISOFunc   func(vmName string, data []byte) (string, error)
	deleteWorkDirFunc  func(vmName string) error

	createWorkDirCalls []string
	bootDiskCalls      []string
	seedISOCalls       []string
	deleteWorkDirCalls []string
}

func (m *mockSeedStorage) CreateWorkDir(vmName string) (string, error) {
	m.mu.Lock()
	m.createWorkDirCalls = append(m.createWorkDirCalls, vmName)
	fn := m.createWorkDirFunc
	m.mu.Unlock()
	if fn == nil {
		return "/work/" + vmName, nil
	}
	return fn(vmName)
}

func (m *mockSeedStorage) CreateBootDisk(ctx context.Context, vmName, baseImage string, sizeGB int) (string, error) {
	m.mu.Lock()
	m.bootDiskCalls = append(m.bootDiskCalls, vmName)
	fn := m.createBootDiskFunc
	m.mu.Unlock()
	if fn == nil {
		return "/work/" + vmName + "/" + vmName + "_boot.qcow2", nil
	}
	return fn(ctx, vmName, baseImage, sizeGB)
}

func (m *mockSeedStorage) WriteSeedISO(vmName string, data []byte) (string, error) {
	m.mu.Lock()
	m.seedISOCalls = append(m.seedISOCalls, vmName)
	fn := m.writeSeedISOFunc
	m.mu.Unlock()
	if fn == nil {
		return "/work/" + vmName + "/" + vmName + "_seed.iso", nil
	}
	return fn(vmName, data)
}

func (m *mockSeedStorage) DeleteWorkDir(vmName string) error {
	m.mu.Lock()
	m.deleteWorkDirCalls = append(m.deleteWorkDirCalls, vmName)
	fn := m.deleteWorkDirFunc
	m.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(vmName)
}
