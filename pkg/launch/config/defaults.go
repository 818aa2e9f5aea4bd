// Package config provides configuration management for the hpblaunch CLI.
package config

// Default configuration values for hpblaunch.
const (
	// DefaultMinPython is the minimum interpreter version the launcher accepts.
	DefaultMinPython = "3.10"

	// DefaultManifest is the dependency manifest path, relative to the project root.
	DefaultManifest = "requirements.txt"

	// DefaultModule is the application entry module passed to `python -m`.
	DefaultModule = "src.main"

	// DefaultAppConfig is the application config path, relative to the project root.
	DefaultAppConfig = "config/config.json"

	// DefaultProbeTimeout bounds interpreter and pip version probes.
	DefaultProbeTimeout = "10s"

	// DefaultInstallTimeout bounds a dependency install run.
	DefaultInstallTimeout = "15m"

	// DefaultBrowserTimeout bounds a browser provisioning run. Browser
	// downloads are large, so this is deliberately generous.
	DefaultBrowserTimeout = "30m"
)

// DefaultCandidates are the interpreter command names tried in order.
// "py" covers the Windows launcher shim.
var DefaultCandidates = []string{"python3", "python", "py"}

// DefaultBrowsers are the Playwright browsers provisioned when the
// configuration does not name any.
var DefaultBrowsers = []string{"chromium"}
