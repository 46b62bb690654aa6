package cloudinit

import (
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/jbweber/sower/internal/config"
)

// MetaData represents the cloud-init meta-data structure.
//
// See https://cloudinit.readthedocs.io/en/latest/reference/datasources/nocloud.html
type MetaData struct {
	InstanceID    string `yaml:"instance-id"`
	LocalHostname string `yaml:"local-hostname"`
}

// defaultHostname is used when no seed section provides one.
const defaultHostname = "sower"

// GenerateMetaData generates the meta-data YAML content.
//
// The instance-id is freshly generated per call. Cloud-init uses it to
// decide whether this is a first boot, so a new seed always triggers a full
// provisioning run even on a reused disk image.
func GenerateMetaData(cfg *config.Config) (string, error) {
	if cfg == nil {
		return "", fmt.Errorf("configuration cannot be nil")
	}

	hostname := defaultHostname
	if cfg.Seed != nil && cfg.Seed.Hostname != "" {
		hostname = cfg.Seed.Hostname
	}

	metaData := MetaData{
		InstanceID:    fmt.Sprintf("sower-%s", uuid.NewString()),
		LocalHostname: hostname,
	}

	yamlBytes, err := yaml.Marshal(&metaData)
	if err != nil {
		return "", fmt.Errorf("failed to marshal meta-data to YAML: %w", err)
	}

	return string(yamlBytes), nil
}
