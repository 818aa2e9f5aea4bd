package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/hpb-tools/hpblaunch/pkg/launch/appcfg"
	"github.com/hpb-tools/hpblaunch/pkg/launch/browsers"
	"github.com/hpb-tools/hpblaunch/pkg/launch/config"
	"github.com/hpb-tools/hpblaunch/pkg/launch/interp"
	"github.com/hpb-tools/hpblaunch/pkg/launch/manifest"
	"github.com/hpb-tools/hpblaunch/pkg/launch/pip"
	"github.com/hpb-tools/hpblaunch/pkg/launch/state"
)

// Options configure a pipeline run.
type Options struct {
	// Config is the loaded launcher configuration.
	Config *config.Config

	// Root is the project directory holding the manifest and app code.
	Root string

	// SkipBrowsers bypasses browser provisioning.
	SkipBrowsers bool

	// Refresh forces installation even when the stored bootstrap
	// record says the environment is unchanged.
	Refresh bool

	// DryRun checks the environment but installs and launches nothing.
	DryRun bool

	// InstallOnly prepares the environment without launching the app.
	InstallOnly bool

	// Store persists bootstrap records between runs. May be nil.
	Store *state.Store
}

// Pipeline wires the concrete steps for one launch.
type Pipeline struct {
	opts Options

	// resolved during the run
	python     *interp.Info
	man        *manifest.File
	cached     bool
	browsersOK bool

	// launch is an injection point for tests.
	launch func(ctx context.Context, python, dir, module string) error
}

// New creates a Pipeline for the given options.
func New(opts Options) *Pipeline {
	return &Pipeline{opts: opts, launch: launchApp}
}

// Run executes the full pipeline and returns its result.
func (p *Pipeline) Run(ctx context.Context) *Result {
	return NewRunner(p.steps()).Run(ctx)
}

func (p *Pipeline) steps() []Step {
	cfg := p.opts.Config

	return []Step{
		{
			Name:  "interpreter",
			Fatal: true,
			Run: func(ctx context.Context) (string, error) {
				loc := interp.NewLocator(cfg.Interpreter.Candidates, cfg.Interpreter.MinVersion, cfg.ProbeTimeout())
				info, err := loc.Locate(ctx)
				if err != nil {
					return "", err
				}
				p.python = info
				return fmt.Sprintf("Python %s at %s", info.Version, info.Path), nil
			},
		},
		{
			Name:  "manifest",
			Fatal: true,
			Run: func(ctx context.Context) (string, error) {
				man, err := manifest.Load(filepath.Join(p.opts.Root, cfg.Project.Manifest))
				if err != nil {
					return "", err
				}
				p.man = man
				return fmt.Sprintf("%d requirements", len(man.Requirements)), nil
			},
		},
		{
			Name:  "dependencies",
			Fatal: true,
			Skip:  p.skipInstall,
			Run: func(ctx context.Context) (string, error) {
				installer := pip.New(p.python.Path, cfg.ProbeTimeout(), cfg.InstallTimeout())
				if _, err := installer.Probe(ctx); err != nil {
					return "", err
				}

				// Diff against the installed set first; a listing
				// failure just means we install unconditionally.
				if installed, err := installer.ListInstalled(ctx); err == nil {
					missing := p.man.Missing(installed)
					if len(missing) == 0 {
						return "all requirements present", nil
					}
					logger.Info("requirements missing", "count", len(missing))
				}

				if err := installer.Install(ctx, p.man.Path); err != nil {
					return "", err
				}
				return fmt.Sprintf("installed from %s", cfg.Project.Manifest), nil
			},
		},
		{
			Name: "browsers",
			Skip: p.skipBrowsers,
			Run: func(ctx context.Context) (string, error) {
				prov := browsers.New(p.python.Path, cfg.Browsers, cfg.BrowserTimeout())
				if err := prov.Install(ctx); err != nil {
					return "", err
				}
				p.browsersOK = true
				return fmt.Sprintf("%d browsers ready", len(cfg.Browsers)), nil
			},
		},
		{
			Name: "state",
			Skip: p.skipState,
			Run: func(ctx context.Context) (string, error) {
				// A failed browsers step leaves Browsers empty so the
				// next run retries provisioning.
				var provisioned []string
				if p.browsersOK {
					provisioned = p.expectedBrowsers()
				}
				rec := &state.Record{
					ManifestHash:       p.man.Hash,
					InterpreterVersion: p.python.Version.String(),
					Browsers:           provisioned,
					Timestamp:          time.Now(),
				}
				if err := p.opts.Store.Put(p.opts.Root, rec); err != nil {
					return "", fmt.Errorf("saving bootstrap record: %w", err)
				}
				return "bootstrap record saved", nil
			},
		},
		{
			Name:  "app config",
			Fatal: true,
			Skip:  p.skipAppConfig,
			Run: func(ctx context.Context) (string, error) {
				path := filepath.Join(p.opts.Root, cfg.Project.AppConfig)
				if err := appcfg.Check(path); err != nil {
					return "", err
				}
				return cfg.Project.AppConfig + " ok", nil
			},
		},
		{
			Name:  "launch",
			Fatal: true,
			Skip:  p.skipLaunch,
			Run: func(ctx context.Context) (string, error) {
				logger.Info("launching application",
					"python", p.python.Path, "module", cfg.Project.Module, "dir", p.opts.Root)
				if err := p.launch(ctx, p.python.Path, p.opts.Root, cfg.Project.Module); err != nil {
					return "", err
				}
				return cfg.Project.Module + " exited cleanly", nil
			},
		},
	}
}

// skipInstall consults the bootstrap record: when the manifest hash,
// interpreter version, and browser set are unchanged since the last
// successful run, installation is skipped entirely.
func (p *Pipeline) skipInstall() (bool, string) {
	if p.opts.DryRun {
		return true, "dry run"
	}
	if p.opts.Refresh || p.opts.Store == nil {
		return false, ""
	}

	rec, err := p.opts.Store.Get(p.opts.Root)
	if err != nil {
		return false, ""
	}
	if !rec.Matches(p.man.Hash, p.python.Version.String(), p.expectedBrowsers()) {
		return false, ""
	}

	p.cached = true
	return true, "environment unchanged since " + humanize.Time(rec.Timestamp)
}

func (p *Pipeline) skipBrowsers() (bool, string) {
	if p.opts.DryRun {
		return true, "dry run"
	}
	if p.opts.SkipBrowsers {
		return true, "disabled by flag"
	}
	if p.cached {
		return true, "covered by bootstrap record"
	}
	return false, ""
}

func (p *Pipeline) skipState() (bool, string) {
	if p.opts.DryRun {
		return true, "dry run"
	}
	if p.opts.Store == nil {
		return true, "cache disabled"
	}
	if p.cached {
		return true, "record already current"
	}
	return false, ""
}

func (p *Pipeline) skipAppConfig() (bool, string) {
	if p.opts.Config.Project.AppConfig == "" {
		return true, "not configured"
	}
	return false, ""
}

func (p *Pipeline) skipLaunch() (bool, string) {
	if p.opts.DryRun {
		return true, "dry run"
	}
	if p.opts.InstallOnly {
		return true, "install only"
	}
	return false, ""
}

// expectedBrowsers is the browser set this run needs provisioned.
func (p *Pipeline) expectedBrowsers() []string {
	if p.opts.SkipBrowsers {
		return nil
	}
	return p.opts.Config.Browsers
}

// launchApp hands the terminal to the application. The child inherits
// stdio so interactive prompts and progress reach the user directly.
func launchApp(ctx context.Context, python, dir, module string) error {
	cmd := exec.CommandContext(ctx, python, "-m", module)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("application exited with code %d", exitErr.ExitCode())
		}
		return fmt.Errorf("starting application: %w", err)
	}
	return nil
}
