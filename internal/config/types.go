// Package config defines the sower provisioning configuration.
//
// All parameters have built-in defaults matching the Amazon Linux 2023
// deployment this tool was written for. A YAML file may override them;
// running with no file at all is the normal case on an instance.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/crypto/ssh"
	"gopkg.in/yaml.v3"
)

// Built-in provisioning defaults. These are the literal values baked into
// the original user-data deployment; config files only need to override
// what differs.
const (
	// DefaultPackageTool is the OS package manager command.
	DefaultPackageTool = "dnf"

	// DefaultPython is the python interpreter used for pip bootstrap.
	DefaultPython = "python3"

	// DefaultLibrary is the Python library installed for the application.
	DefaultLibrary = "yfinance"

	// DefaultOverridePackage is the preinstalled distro package that
	// conflicts with the library's dependencies. pip reinstalls over it
	// rather than trying to resolve the clash.
	DefaultOverridePackage = "urllib3"

	// DefaultHomeDir is the home directory the repository is cloned into.
	DefaultHomeDir = "/home/ec2-user"

	// DefaultOwner is the non-privileged account that ends up owning the
	// cloned tree.
	DefaultOwner = "ec2-user"

	// DefaultRepoURL is the application repository to clone.
	DefaultRepoURL = "https://github.com/jbweber/sp500-cli.git"

	// DefaultLogPath is where combined step output is written.
	DefaultLogPath = "/var/log/user-data.log"
)

// CompletionMessage is printed (and logged) after every step has succeeded.
// External tooling greps the log for this exact string.
const CompletionMessage = "User data script completed successfully"

// Config is the top-level sower configuration.
type Config struct {
	Provision Provision `yaml:"provision"`
	Seed      *Seed     `yaml:"seed,omitempty"`
}

// Provision describes the boot-time provisioning procedure.
type Provision struct {
	// PackageTool is the OS package manager command (default: dnf).
	PackageTool string `yaml:"package_tool,omitempty"`

	// Packages are installed one at a time, in order, before anything else.
	Packages []string `yaml:"packages,omitempty"`

	// Python is the interpreter used for the pip bootstrap (default: python3).
	Python string `yaml:"python,omitempty"`

	// Library is the Python library installed via pip.
	Library string `yaml:"library,omitempty"`

	// OverridePackage is force-reinstalled over by pip (--ignore-installed).
	OverridePackage string `yaml:"override_package,omitempty"`

	// HomeDir is the directory the repository is cloned into.
	HomeDir string `yaml:"home_dir,omitempty"`

	// RepoURL is the git repository to clone.
	RepoURL string `yaml:"repo_url,omitempty"`

	// CloneDir is the directory name of the working copy under HomeDir.
	// Derived from RepoURL when empty.
	CloneDir string `yaml:"clone_dir,omitempty"`

	// Owner is the account that receives recursive ownership of the clone.
	Owner string `yaml:"owner,omitempty"`

	// LogPath is the combined stdout/stderr log file.
	LogPath string `yaml:"log_path,omitempty"`
}

// Seed configures the NoCloud seed payload (user-data/meta-data/ISO) used
// when provisioning is delivered to an instance that does not have sower
// installed yet.
type Seed struct {
	// Hostname for the instance meta-data. Derived from FQDN if unset.
	Hostname string `yaml:"hostname,omitempty"`

	// FQDN is the fully qualified hostname, if any.
	FQDN string `yaml:"fqdn,omitempty"`

	// SSHKeys are authorized keys injected for the default account.
	SSHKeys []string `yaml:"ssh_keys,omitempty"`

	// SSHPwAuth enables SSH password authentication. Pointer to
	// distinguish unset from explicit false.
	SSHPwAuth *bool `yaml:"ssh_pwauth,omitempty"`
}

// DefaultConfig returns the built-in configuration: the exact procedure the
// original user-data script performed, no seed section.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Normalize()
	return cfg
}

// accountPattern matches useradd-compatible account names.
var accountPattern = regexp.MustCompile(`^[a-z_][a-z0-9_-]*\$?$`)

// Normalize fills in defaults and derives computed fields. Called
// automatically by LoadFromFile before validation.
func (c *Config) Normalize() {
	p := &c.Provision

	if p.PackageTool == "" {
		p.PackageTool = DefaultPackageTool
	}
	if len(p.Packages) == 0 {
		p.Packages = []string{"git", "python3"}
	}
	if p.Python == "" {
		p.Python = DefaultPython
	}
	if p.Library == "" {
		p.Library = DefaultLibrary
	}
	if p.OverridePackage == "" {
		p.OverridePackage = DefaultOverridePackage
	}
	if p.HomeDir == "" {
		p.HomeDir = DefaultHomeDir
	}
	if p.RepoURL == "" {
		p.RepoURL = DefaultRepoURL
	}
	if p.Owner == "" {
		p.Owner = DefaultOwner
	}
	if p.LogPath == "" {
		p.LogPath = DefaultLogPath
	}

	for i := range p.Packages {
		p.Packages[i] = strings.TrimSpace(p.Packages[i])
	}
	p.RepoURL = strings.TrimSpace(p.RepoURL)

	// Derive the clone directory name from the repository URL:
	// https://host/owner/sp500-cli.git -> sp500-cli
	if p.CloneDir == "" {
		base := path.Base(p.RepoURL)
		p.CloneDir = strings.TrimSuffix(base, ".git")
	}

	if c.Seed != nil {
		c.Seed.FQDN = strings.ToLower(strings.TrimSpace(c.Seed.FQDN))
		c.Seed.Hostname = strings.ToLower(strings.TrimSpace(c.Seed.Hostname))
		if c.Seed.Hostname == "" && c.Seed.FQDN != "" {
			// Hostname is everything before the first dot
			c.Seed.Hostname = strings.SplitN(c.Seed.FQDN, ".", 2)[0]
		}
	}
}

// Validate checks the configuration for errors. It validates structure only,
// not host state (whether packages exist, the account exists, etc.).
func (c *Config) Validate() error {
	if err := c.Provision.Validate(); err != nil {
		return fmt.Errorf("provision: %w", err)
	}
	if c.Seed != nil {
		if err := c.Seed.Validate(); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	return nil
}

// Validate checks the provisioning section.
func (p *Provision) Validate() error {
	if len(p.Packages) == 0 {
		return fmt.Errorf("at least one package is required")
	}
	for i, pkg := range p.Packages {
		if pkg == "" {
			return fmt.Errorf("packages[%d] is empty", i)
		}
		if strings.ContainsAny(pkg, " \t") {
			return fmt.Errorf("packages[%d] contains whitespace: %q", i, pkg)
		}
	}

	if p.Library == "" {
		return fmt.Errorf("library is required")
	}

	if !filepath.IsAbs(p.HomeDir) {
		return fmt.Errorf("home_dir must be an absolute path, got %q", p.HomeDir)
	}
	if !filepath.IsAbs(p.LogPath) {
		return fmt.Errorf("log_path must be an absolute path, got %q", p.LogPath)
	}

	u, err := url.Parse(p.RepoURL)
	if err != nil {
		return fmt.Errorf("invalid repo_url %q: %w", p.RepoURL, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" && u.Scheme != "ssh" {
		return fmt.Errorf("repo_url must use https, http, or ssh, got %q", p.RepoURL)
	}
	if u.Host == "" {
		return fmt.Errorf("repo_url has no host: %q", p.RepoURL)
	}

	if p.CloneDir == "" || p.CloneDir == "." || p.CloneDir == "/" {
		return fmt.Errorf("could not derive a clone directory from repo_url %q", p.RepoURL)
	}
	if strings.Contains(p.CloneDir, "/") {
		return fmt.Errorf("clone_dir must be a bare directory name, got %q", p.CloneDir)
	}

	if !accountPattern.MatchString(p.Owner) {
		return fmt.Errorf("owner must be a valid account name, got %q", p.Owner)
	}

	return nil
}

// Validate checks the seed section.
func (s *Seed) Validate() error {
	if s.FQDN != "" {
		// RFC 952/1123: labels of alphanumerics and hyphens separated by dots
		fqdnPattern := `^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?(\.[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?)+$`
		matched, err := regexp.MatchString(fqdnPattern, s.FQDN)
		if err != nil {
			return fmt.Errorf("fqdn validation error: %w", err)
		}
		if !matched {
			return fmt.Errorf("fqdn must be a valid hostname with domain (e.g., host.example.com), got %q", s.FQDN)
		}
	}

	for i, key := range s.SSHKeys {
		if _, _, _, _, err := ssh.ParseAuthorizedKey([]byte(key)); err != nil {
			return fmt.Errorf("ssh_keys[%d] is not a valid SSH public key: %w", i, err)
		}
	}

	return nil
}

// CloneDestination returns the absolute path of the cloned working copy.
func (p *Provision) CloneDestination() string {
	return filepath.Join(p.HomeDir, p.CloneDir)
}

// LoadFromFile loads a configuration from a YAML file, normalizes it, and
// validates it.
func LoadFromFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
