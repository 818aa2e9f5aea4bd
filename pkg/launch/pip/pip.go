// Package pip drives the interpreter's pip module: presence probing,
// installed-package listing, and manifest installs.
package pip

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/hpb-tools/hpblaunch/pkg/launch/logging"
	"github.com/hpb-tools/hpblaunch/pkg/launch/manifest"
	"github.com/hpb-tools/hpblaunch/pkg/launch/proc"
)

// logger is the package-level logger for pip operations.
var logger = logging.Get("pip")

// Sentinel errors for pip failures.
var (
	// ErrPipMissing means the interpreter has no usable pip module.
	ErrPipMissing = errors.New("pip is not available for the selected interpreter")

	// ErrInstallFailed means `pip install -r` exited non-zero.
	ErrInstallFailed = errors.New("dependency installation failed")
)

// Installer runs pip through a specific interpreter.
type Installer struct {
	// Python is the interpreter executable path.
	Python string

	// ProbeTimeout bounds --version and list probes.
	ProbeTimeout time.Duration

	// InstallTimeout bounds a full `pip install -r` run.
	InstallTimeout time.Duration

	// output and stream are injection points for tests.
	output func(ctx context.Context, name string, args ...string) ([]byte, error)
	stream func(ctx context.Context, onLine func(string), name string, args ...string) error
}

// New creates an Installer for the given interpreter path.
func New(python string, probeTimeout, installTimeout time.Duration) *Installer {
	return &Installer{
		Python:         python,
		ProbeTimeout:   probeTimeout,
		InstallTimeout: installTimeout,
		output:         proc.Output,
		stream:         proc.Stream,
	}
}

// Probe verifies pip responds for this interpreter and returns its
// version banner (e.g. "pip 23.3.1 from ...").
func (i *Installer) Probe(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, i.probeTimeout())
	defer cancel()

	out, err := i.output(ctx, i.Python, "-m", "pip", "--version")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPipMissing, err)
	}

	banner := strings.TrimSpace(string(out))
	logger.Debug("pip probe", "banner", banner)
	return banner, nil
}

// ListInstalled returns the interpreter's installed package set.
func (i *Installer) ListInstalled(ctx context.Context) (manifest.Installed, error) {
	ctx, cancel := context.WithTimeout(ctx, i.probeTimeout())
	defer cancel()

	out, err := i.output(ctx, i.Python,
		"-m", "pip", "list", "--format=json", "--disable-pip-version-check")
	if err != nil {
		return nil, fmt.Errorf("listing installed packages: %w", err)
	}

	inst, err := manifest.ParsePipList(out)
	if err != nil {
		return nil, err
	}

	logger.Debug("installed packages listed", "count", len(inst))
	return inst, nil
}

// Install runs `pip install -r <manifestPath>`, streaming pip's output
// into the log. A non-zero exit wraps ErrInstallFailed.
func (i *Installer) Install(ctx context.Context, manifestPath string) error {
	ctx, cancel := context.WithTimeout(ctx, i.installTimeout())
	defer cancel()

	logger.Info("installing dependencies", "manifest", manifestPath)

	err := i.stream(ctx, func(line string) {
		logger.Debug("pip", "line", line)
	}, i.Python, "-m", "pip", "install", "-r", manifestPath, "--disable-pip-version-check")
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: pip exited with code %d", ErrInstallFailed, exitErr.ExitCode())
		}
		return fmt.Errorf("%w: %v", ErrInstallFailed, err)
	}

	logger.Info("dependencies installed", "manifest", manifestPath)
	return nil
}

func (i *Installer) probeTimeout() time.Duration {
	if i.ProbeTimeout > 0 {
		return i.ProbeTimeout
	}
	return 10 * time.Second
}

func (i *Installer) installTimeout() time.Duration {
	if i.InstallTimeout > 0 {
		return i.InstallTimeout
	}
	return 15 * time.Minute
}
