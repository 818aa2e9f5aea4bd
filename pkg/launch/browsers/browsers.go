// Package browsers provisions the Playwright browser binaries the
// launched application automates.
package browsers

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/hpb-tools/hpblaunch/pkg/launch/logging"
	"github.com/hpb-tools/hpblaunch/pkg/launch/proc"
)

// logger is the package-level logger for browser provisioning.
var logger = logging.Get("browsers")

// Sentinel errors for provisioning failures.
var (
	// ErrDriverMissing means the playwright module is absent from the
	// interpreter, so there is nothing to provision with.
	ErrDriverMissing = errors.New("playwright module not available")

	// ErrProvisionFailed means `playwright install` exited non-zero.
	// The bootstrap pipeline treats this as a warning, not a failure.
	ErrProvisionFailed = errors.New("browser provisioning failed")
)

// Provisioner installs Playwright browsers through an interpreter.
type Provisioner struct {
	// Python is the interpreter executable path.
	Python string

	// Browsers are the browser names passed to `playwright install`
	// (chromium, firefox, webkit).
	Browsers []string

	// Timeout bounds the provisioning run. Browser downloads are large.
	Timeout time.Duration

	// output and stream are injection points for tests.
	output func(ctx context.Context, name string, args ...string) ([]byte, error)
	stream func(ctx context.Context, onLine func(string), name string, args ...string) error
}

// New creates a Provisioner for the given interpreter and browser set.
func New(python string, browsers []string, timeout time.Duration) *Provisioner {
	return &Provisioner{
		Python:   python,
		Browsers: browsers,
		Timeout:  timeout,
		output:   proc.Output,
		stream:   proc.Stream,
	}
}

// Probe verifies the playwright module responds and returns its version
// banner. Used by doctor; Install does not require a prior Probe.
func (p *Provisioner) Probe(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	out, err := p.output(ctx, p.Python, "-m", "playwright", "--version")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDriverMissing, err)
	}

	banner := strings.TrimSpace(string(out))
	logger.Debug("playwright probe", "banner", banner)
	return banner, nil
}

// Install runs `playwright install` for the configured browsers,
// streaming the driver's output into the log. Playwright's installer is
// idempotent; already-provisioned browsers are a fast no-op.
func (p *Provisioner) Install(ctx context.Context) error {
	if len(p.Browsers) == 0 {
		logger.Debug("no browsers configured, skipping provisioning")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	args := append([]string{"-m", "playwright", "install"}, p.Browsers...)
	logger.Info("provisioning browsers", "browsers", strings.Join(p.Browsers, ","))

	err := p.stream(ctx, func(line string) {
		logger.Debug("playwright", "line", line)
	}, p.Python, args...)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: playwright exited with code %d", ErrProvisionFailed, exitErr.ExitCode())
		}
		return fmt.Errorf("%w: %v", ErrProvisionFailed, err)
	}

	logger.Info("browsers provisioned", "browsers", strings.Join(p.Browsers, ","))
	return nil
}

func (p *Provisioner) timeout() time.Duration {
	if p.Timeout > 0 {
		return p.Timeout
	}
	return 30 * time.Minute
}
