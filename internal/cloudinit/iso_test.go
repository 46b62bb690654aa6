package cloudinit

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/kdomanski/iso9660"

	"github.com/jbweber/sower/internal/config"
)

func TestGenerateISO(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.Config
		wantErr bool
	}{
		{
			name: "default config",
			cfg:  config.DefaultConfig(),
		},
		{
			name: "config with seed section",
			cfg: func() *config.Config {
				cfg := config.Config{Seed: &config.Seed{FQDN: "box.example.com"}}
				cfg.Normalize()
				return &cfg
			}(),
		},
		{
			name:    "nil config",
			cfg:     nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isoBytes, err := GenerateISO(tt.cfg)

			if tt.wantErr {
				if err == nil {
					t.Error("GenerateISO() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("GenerateISO() unexpected error: %v", err)
			}
			if len(isoBytes) == 0 {
				t.Fatal("GenerateISO() returned empty byte slice")
			}

			verifyISOStructure(t, isoBytes, tt.cfg)
		})
	}
}

// verifyISOStructure reads the generated ISO back and verifies its contents.
func verifyISOStructure(t *testing.T, isoBytes []byte, cfg *config.Config) {
	t.Helper()

	img, err := iso9660.OpenImage(bytes.NewReader(isoBytes))
	if err != nil {
		t.Fatalf("failed to open ISO image: %v", err)
	}

	volumeID, err := img.Label()
	if err != nil {
		t.Fatalf("failed to get volume label: %v", err)
	}
	if volumeID != "CIDATA" {
		t.Errorf("ISO volume identifier = %q, want CIDATA", volumeID)
	}

	rootDir, err := img.RootDir()
	if err != nil {
		t.Fatalf("failed to get root directory: %v", err)
	}
	children, err := rootDir.GetChildren()
	if err != nil {
		t.Fatalf("failed to get children: %v", err)
	}

	found := map[string]string{}
	for _, child := range children {
		reader := child.Reader()
		content, err := io.ReadAll(reader)
		if err != nil {
			t.Fatalf("failed to read %s: %v", child.Name(), err)
		}
		found[child.Name()] = string(content)
	}

	userData, ok := found["user-data"]
	if !ok {
		t.Fatal("ISO missing user-data")
	}
	// user-data in the ISO matches the generator output (modulo ISO sector
	// padding)
	expected, err := GenerateUserData(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimRight(userData, "\x00") != expected {
		t.Error("user-data in ISO does not match generator output")
	}

	metaData, ok := found["meta-data"]
	if !ok {
		t.Fatal("ISO missing meta-data")
	}
	if !strings.Contains(metaData, "instance-id: sower-") {
		t.Errorf("meta-data missing instance-id, got %q", metaData)
	}

	if _, ok := found["network-config"]; ok {
		t.Error("seed ISO should not carry a network-config (DHCP only)")
	}
}
