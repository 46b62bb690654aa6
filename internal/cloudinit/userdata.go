// Package cloudinit renders the provisioning procedure as a cloud-init
// NoCloud payload (user-data, meta-data, seed ISO).
//
// The payload exists for instances that boot without sower installed: the
// user-data carries the same ordered shell commands the native runner
// executes, so both delivery paths leave the machine in the same state.
//
// See https://cloudinit.readthedocs.io/en/latest/reference/datasources/nocloud.html
package cloudinit

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/sower/internal/config"
	"github.com/jbweber/sower/internal/provision"
)

// UserData is the cloud-config form of the user-data payload, used when a
// seed section is configured (SSH keys, hostname). Marshaled to YAML and
// prefixed with the "#cloud-config" header.
//
// See https://cloudinit.readthedocs.io/en/latest/explanation/format.html#cloud-config-data
type UserData struct {
	Hostname          string   `yaml:"hostname,omitempty"`
	FQDN              string   `yaml:"fqdn,omitempty"`
	SSHAuthorizedKeys []string `yaml:"ssh_authorized_keys,omitempty"`
	SSHPasswordAuth   bool     `yaml:"ssh_pwauth"`
	Output            *Output  `yaml:"output,omitempty"`
	RunCmd            []string `yaml:"runcmd"`
}

// Output configures cloud-init output logging.
type Output struct {
	All string `yaml:"all"`
}

// GenerateUserData generates the user-data payload for a configuration.
//
// Without a seed section the payload is a plain shell script: shebang,
// fail-fast shell options, log redirect, then one line per step. With a
// seed section it is a cloud-config document carrying the host identity and
// SSH keys, with the same step lines under runcmd (cloud-init concatenates
// runcmd entries into a single script, so the cd and set lines carry over
// to later entries).
func GenerateUserData(cfg *config.Config) (string, error) {
	if cfg == nil {
		return "", fmt.Errorf("configuration cannot be nil")
	}

	if cfg.Seed == nil {
		return generateScript(&cfg.Provision), nil
	}

	userData := UserData{
		Hostname: cfg.Seed.Hostname,
		FQDN:     cfg.Seed.FQDN,
		Output: &Output{
			All: fmt.Sprintf("| tee -a %s", cfg.Provision.LogPath),
		},
		RunCmd: append([]string{"set -euo pipefail"}, stepLines(&cfg.Provision)...),
	}

	if len(cfg.Seed.SSHKeys) > 0 {
		userData.SSHAuthorizedKeys = cfg.Seed.SSHKeys
	}
	if cfg.Seed.SSHPwAuth != nil {
		userData.SSHPasswordAuth = *cfg.Seed.SSHPwAuth
	}

	yamlBytes, err := yaml.Marshal(&userData)
	if err != nil {
		return "", fmt.Errorf("failed to marshal user-data to YAML: %w", err)
	}

	// #cloud-config header is required by the cloud-init spec
	return "#cloud-config\n" + string(yamlBytes), nil
}

// generateScript renders the bare shell-script form of the user-data.
func generateScript(p *config.Provision) string {
	var b strings.Builder

	b.WriteString("#!/bin/bash\n")
	b.WriteString("set -euo pipefail\n")
	fmt.Fprintf(&b, "exec >> %s 2>&1\n", p.LogPath)

	for _, line := range stepLines(p) {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	return b.String()
}

// stepLines returns the shell rendering of every step, in order, followed
// by the completion message echo.
func stepLines(p *config.Provision) []string {
	var lines []string
	for _, step := range provision.Steps(p) {
		lines = append(lines, step.Script()...)
	}
	lines = append(lines, fmt.Sprintf("echo %q", config.CompletionMessage))
	return lines
}
