package provision

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strconv"

	"github.com/jbweber/sower/internal/config"
)

// Step is one unit of the provisioning procedure.
//
// A step has two renderings: Run executes it natively on the local machine,
// and Script returns the equivalent shell lines for the user-data payload.
// Both must have the same observable effect.
type Step interface {
	// Name returns a short identifier used in progress lines and reports.
	Name() string

	// Tolerated reports whether a failure of this step is swallowed,
	// allowing the procedure to continue.
	Tolerated() bool

	// Script returns the shell lines equivalent to Run.
	Script() []string

	// Run executes the step, writing combined command output to output.
	Run(ctx context.Context, ex Execer, output io.Writer) error
}

// Steps builds the ordered step list for a provisioning configuration.
// The order is fixed: packages, pip bootstrap, pip upgrade, library,
// clone, chown.
func Steps(p *config.Provision) []Step {
	steps := make([]Step, 0, len(p.Packages)+5)

	for _, pkg := range p.Packages {
		steps = append(steps, &packageStep{tool: p.PackageTool, pkg: pkg})
	}

	steps = append(steps,
		&ensurePipStep{python: p.Python},
		&pipUpgradeStep{python: p.Python},
		&libraryStep{library: p.Library, override: p.OverridePackage},
		&cloneStep{homeDir: p.HomeDir, repoURL: p.RepoURL, dest: p.CloneDestination()},
		&chownStep{path: p.CloneDestination(), owner: p.Owner},
	)

	return steps
}

// packageStep installs one OS package. Idempotent: the package manager
// treats an already-installed package as a no-op.
type packageStep struct {
	tool string
	pkg  string
}

func (s *packageStep) Name() string    { return "install-" + s.pkg }
func (s *packageStep) Tolerated() bool { return false }

func (s *packageStep) Script() []string {
	return []string{fmt.Sprintf("%s install -y %s", s.tool, s.pkg)}
}

func (s *packageStep) Run(ctx context.Context, ex Execer, output io.Writer) error {
	return ex.Run(ctx, output, s.tool, "install", "-y", s.pkg)
}

// ensurePipStep bootstraps pip via the stdlib ensurepip module. This is the
// one tolerated step: python3 on most images already bundles pip, and
// ensurepip exits non-zero on some of them.
type ensurePipStep struct {
	python string
}

func (s *ensurePipStep) Name() string    { return "ensurepip" }
func (s *ensurePipStep) Tolerated() bool { return true }

func (s *ensurePipStep) Script() []string {
	return []string{fmt.Sprintf("%s -m ensurepip --upgrade || true", s.python)}
}

func (s *ensurePipStep) Run(ctx context.Context, ex Execer, output io.Writer) error {
	return ex.Run(ctx, output, s.python, "-m", "ensurepip", "--upgrade")
}

// pipUpgradeStep upgrades pip itself. Unlike the bootstrap, this is fatal:
// a pip too old to resolve the library install would fail later anyway.
type pipUpgradeStep struct {
	python string
}

func (s *pipUpgradeStep) Name() string    { return "upgrade-pip" }
func (s *pipUpgradeStep) Tolerated() bool { return false }

func (s *pipUpgradeStep) Script() []string {
	return []string{fmt.Sprintf("%s -m pip install --upgrade pip", s.python)}
}

func (s *pipUpgradeStep) Run(ctx context.Context, ex Execer, output io.Writer) error {
	return ex.Run(ctx, output, s.python, "-m", "pip", "install", "--upgrade", "pip")
}

// libraryStep installs the application's Python library. The distro ships
// an RPM-managed copy of the override package that pip cannot uninstall;
// --ignore-installed makes pip lay its own copy down instead of failing.
type libraryStep struct {
	library  string
	override string
}

func (s *libraryStep) Name() string    { return "install-" + s.library }
func (s *libraryStep) Tolerated() bool { return false }

func (s *libraryStep) Script() []string {
	return []string{fmt.Sprintf("pip3 install %s --ignore-installed %s", s.library, s.override)}
}

func (s *libraryStep) Run(ctx context.Context, ex Execer, output io.Writer) error {
	return ex.Run(ctx, output, "pip3", "install", s.library, "--ignore-installed", s.override)
}

// cloneStep clones the application repository into the home directory.
// Not idempotent: a destination that already exists and is non-empty is a
// fatal error, matching git's own behavior. The pre-check exists so the
// error names the path instead of surfacing as raw git output.
type cloneStep struct {
	homeDir string
	repoURL string
	dest    string
}

func (s *cloneStep) Name() string    { return "clone-repository" }
func (s *cloneStep) Tolerated() bool { return false }

func (s *cloneStep) Script() []string {
	return []string{
		fmt.Sprintf("cd %s", s.homeDir),
		fmt.Sprintf("git clone %s", s.repoURL),
	}
}

func (s *cloneStep) Run(ctx context.Context, ex Execer, output io.Writer) error {
	info, err := os.Stat(s.homeDir)
	if err != nil {
		return fmt.Errorf("home directory %s: %w", s.homeDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("home directory %s is not a directory", s.homeDir)
	}

	if entries, err := os.ReadDir(s.dest); err == nil {
		if len(entries) > 0 {
			return fmt.Errorf("clone destination %s already exists and is not empty", s.dest)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("clone destination %s: %w", s.dest, err)
	}

	return ex.Run(ctx, output, "git", "clone", s.repoURL, s.dest)
}

// chownStep recursively changes ownership of the cloned tree to the target
// account. Uses Lchown so symlinks in the tree get their link ownership
// changed without following them.
type chownStep struct {
	path  string
	owner string

	// lookup overrides user.Lookup in tests.
	lookup func(username string) (*user.User, error)
}

func (s *chownStep) Name() string    { return "chown-tree" }
func (s *chownStep) Tolerated() bool { return false }

func (s *chownStep) Script() []string {
	return []string{fmt.Sprintf("chown -R %s:%s %s", s.owner, s.owner, s.path)}
}

func (s *chownStep) Run(ctx context.Context, ex Execer, output io.Writer) error {
	lookup := s.lookup
	if lookup == nil {
		lookup = user.Lookup
	}

	u, err := lookup(s.owner)
	if err != nil {
		return fmt.Errorf("failed to lookup account %s: %w", s.owner, err)
	}

	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return fmt.Errorf("invalid UID for account %s: %w", s.owner, err)
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return fmt.Errorf("invalid GID for account %s: %w", s.owner, err)
	}

	err = filepath.WalkDir(s.path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := os.Lchown(path, uid, gid); err != nil {
			return fmt.Errorf("failed to set ownership on %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("chown %s: %w", s.path, err)
	}

	fmt.Fprintf(output, "ownership of %s set to %s\n", s.path, s.owner)
	return nil
}
