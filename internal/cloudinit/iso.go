package cloudinit

import (
	"bytes"
	"fmt"

	"github.com/kdomanski/iso9660"

	"github.com/jbweber/sower/internal/config"
)

// GenerateISO creates a cloud-init NoCloud seed ISO from the configuration.
//
// The generated ISO contains two files in the root directory:
//   - user-data: the provisioning script (or cloud-config, see GenerateUserData)
//   - meta-data: instance metadata (instance-id, local-hostname)
//
// There is no network-config: seed VMs use DHCP on the default libvirt
// network.
//
// The ISO volume label is "CIDATA" as required by the NoCloud datasource.
//
// Returns the ISO image as a byte slice.
func GenerateISO(cfg *config.Config) ([]byte, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	userData, err := GenerateUserData(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to generate user-data: %w", err)
	}

	metaData, err := GenerateMetaData(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to generate meta-data: %w", err)
	}

	writer, err := iso9660.NewWriter()
	if err != nil {
		return nil, fmt.Errorf("failed to create ISO writer: %w", err)
	}
	defer func() {
		// Cleanup removes the writer's temporary staging files. The ISO
		// bytes are already in the buffer by then.
		_ = writer.Cleanup()
	}()

	if err := writer.AddFile(bytes.NewReader([]byte(userData)), "user-data"); err != nil {
		return nil, fmt.Errorf("failed to add user-data: %w", err)
	}

	if err := writer.AddFile(bytes.NewReader([]byte(metaData)), "meta-data"); err != nil {
		return nil, fmt.Errorf("failed to add meta-data: %w", err)
	}

	var buf bytes.Buffer

	// Volume identifier must be the uppercase CIDATA per the NoCloud spec
	if err := writer.WriteTo(&buf, "CIDATA"); err != nil {
		return nil, fmt.Errorf("failed to write ISO image: %w", err)
	}

	return buf.Bytes(), nil
}
