// Package interp locates a Python interpreter on the search path and
// verifies it meets the launcher's minimum version.
package interp

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	goversion "github.com/hashicorp/go-version"

	"github.com/hpb-tools/hpblaunch/pkg/launch/logging"
)

// logger is the package-level logger for interpreter discovery.
var logger = logging.Get("interp")

// Sentinel errors for interpreter discovery failures.
var (
	// ErrNotFound means no candidate command resolved on PATH.
	ErrNotFound = errors.New("python interpreter not found on PATH")

	// ErrTooOld means an interpreter was found but is below the minimum version.
	ErrTooOld = errors.New("python interpreter below minimum version")

	// ErrUnparsableVersion means the interpreter's --version output was not understood.
	ErrUnparsableVersion = errors.New("cannot parse interpreter version output")
)

// Info describes a located interpreter.
type Info struct {
	// Command is the candidate name that resolved (e.g., "python3").
	Command string

	// Path is the absolute executable path.
	Path string

	// Version is the parsed interpreter version.
	Version *goversion.Version

	// Raw is the raw --version output, trimmed.
	Raw string
}

// Locator finds an acceptable interpreter among candidate command names.
type Locator struct {
	// Candidates are command names tried in order.
	Candidates []string

	// MinVersion rejects interpreters older than this. Empty disables the gate.
	MinVersion string

	// Timeout bounds each version probe.
	Timeout time.Duration

	// lookPath and probe are injection points for tests.
	lookPath func(string) (string, error)
	probe    func(ctx context.Context, path string) (string, error)
}

// NewLocator creates a Locator for the given candidates and minimum version.
func NewLocator(candidates []string, minVersion string, timeout time.Duration) *Locator {
	return &Locator{
		Candidates: candidates,
		MinVersion: minVersion,
		Timeout:    timeout,
		lookPath:   exec.LookPath,
		probe:      probeVersion,
	}
}

// Locate tries each candidate in order and returns the first interpreter
// that resolves on PATH, answers a version probe, and meets the minimum
// version. Candidates that fail any of those checks are skipped with a
// debug log; ErrNotFound is returned only when every candidate is exhausted
// and none resolved, ErrTooOld when at least one resolved but all were
// below the minimum.
func (l *Locator) Locate(ctx context.Context) (*Info, error) {
	var minVer *goversion.Version
	if l.MinVersion != "" {
		v, err := goversion.NewVersion(l.MinVersion)
		if err != nil {
			return nil, fmt.Errorf("invalid minimum version %q: %w", l.MinVersion, err)
		}
		minVer = v
	}

	sawTooOld := false

	for _, candidate := range l.Candidates {
		path, err := l.lookPath(candidate)
		if err != nil {
			logger.Debug("candidate not on PATH", "candidate", candidate)
			continue
		}

		probeCtx, cancel := context.WithTimeout(ctx, l.timeout())
		raw, err := l.probe(probeCtx, path)
		cancel()
		if err != nil {
			logger.Warn("version probe failed", "candidate", candidate, "path", path, "error", err)
			continue
		}

		ver, err := ParseVersionOutput(raw)
		if err != nil {
			logger.Warn("unparsable version output", "candidate", candidate, "output", raw)
			continue
		}

		if minVer != nil && ver.LessThan(minVer) {
			logger.Warn("interpreter below minimum version",
				"candidate", candidate, "version", ver.String(), "min", minVer.String())
			sawTooOld = true
			continue
		}

		logger.Info("interpreter located",
			"command", candidate, "path", path, "version", ver.String())
		return &Info{
			Command: candidate,
			Path:    path,
			Version: ver,
			Raw:     strings.TrimSpace(raw),
		}, nil
	}

	if sawTooOld {
		return nil, fmt.Errorf("%w: need %s or newer", ErrTooOld, l.MinVersion)
	}
	return nil, fmt.Errorf("%w: tried %s", ErrNotFound, strings.Join(l.Candidates, ", "))
}

func (l *Locator) timeout() time.Duration {
	if l.Timeout > 0 {
		return l.Timeout
	}
	return 10 * time.Second
}

// versionRe matches the version number in "Python 3.11.4" style output.
var versionRe = regexp.MustCompile(`Python\s+(\d+(?:\.\d+)*)`)

// ParseVersionOutput extracts the version from `python --version` output.
func ParseVersionOutput(out string) (*goversion.Version, error) {
	m := versionRe.FindStringSubmatch(out)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnparsableVersion, strings.TrimSpace(out))
	}

	ver, err := goversion.NewVersion(m[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnparsableVersion, m[1])
	}
	return ver, nil
}

// probeVersion runs `<path> --version` and returns its combined output.
// Old interpreters print the version to stderr, so both streams are captured.
func probeVersion(ctx context.Context, path string) (string, error) {
	out, err := exec.CommandContext(ctx, path, "--version").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("running %s --version: %w", path, err)
	}
	return string(out), nil
}
