package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hpb-tools/hpblaunch/pkg/launch/appcfg"
	"github.com/hpb-tools/hpblaunch/pkg/launch/bootstrap"
	"github.com/hpb-tools/hpblaunch/pkg/launch/browsers"
	"github.com/hpb-tools/hpblaunch/pkg/launch/config"
	"github.com/hpb-tools/hpblaunch/pkg/launch/interp"
	"github.com/hpb-tools/hpblaunch/pkg/launch/manifest"
	"github.com/hpb-tools/hpblaunch/pkg/launch/output"
	"github.com/hpb-tools/hpblaunch/pkg/launch/pip"
	"github.com/hpb-tools/hpblaunch/pkg/launch/state"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor [path]",
	Short: "Check the environment without changing it",
	Long: `Doctor runs every launch precondition check read-only: interpreter,
pip, Playwright, the dependency manifest, the application config, and
the bootstrap cache. Nothing is installed or launched.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// errDoctorFailed signals that one or more doctor checks failed.
var errDoctorFailed = errors.New("environment check failed")

// runDoctor executes the read-only environment checks.
func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	root, err := resolveProjectRoot(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	report := &output.Report{Title: "Doctor"}

	// Interpreter; the pip and playwright checks need its path.
	var python *interp.Info
	report.Checks = append(report.Checks, check("interpreter", func() (string, error) {
		loc := interp.NewLocator(cfg.Interpreter.Candidates, cfg.Interpreter.MinVersion, cfg.ProbeTimeout())
		info, err := loc.Locate(ctx)
		if err != nil {
			return "", err
		}
		python = info
		return fmt.Sprintf("Python %s at %s", info.Version, info.Path), nil
	}))

	report.Checks = append(report.Checks, dependentCheck("pip", python, func() (string, error) {
		return pip.New(python.Path, cfg.ProbeTimeout(), cfg.InstallTimeout()).Probe(ctx)
	}))

	report.Checks = append(report.Checks, dependentCheck("playwright", python, func() (string, error) {
		banner, err := browsers.New(python.Path, cfg.Browsers, cfg.BrowserTimeout()).Probe(ctx)
		if err != nil {
			return "", err
		}
		return "driver " + banner, nil
	}))

	var man *manifest.File
	report.Checks = append(report.Checks, check("manifest", func() (string, error) {
		m, err := manifest.Load(filepath.Join(root, cfg.Project.Manifest))
		if err != nil {
			return "", err
		}
		man = m
		return fmt.Sprintf("%d requirements", len(m.Requirements)), nil
	}))

	report.Checks = append(report.Checks, missingCheck(ctx, cfg, python, man))

	report.Checks = append(report.Checks, appConfigCheck(cfg, root))

	report.Checks = append(report.Checks, cacheCheck(cfg, root, man, python))

	report.Duration = time.Since(start)
	printReport(report)

	for _, c := range report.Checks {
		if c.Status == bootstrap.StatusFailed {
			return errDoctorFailed
		}
	}
	return nil
}

// check runs fn and converts its outcome into a report row.
func check(name string, fn func() (string, error)) output.Check {
	start := time.Now()
	detail, err := fn()
	c := output.Check{Name: name, Detail: detail, Duration: time.Since(start)}
	if err != nil {
		c.Status = bootstrap.StatusFailed
		c.Err = err.Error()
	} else {
		c.Status = bootstrap.StatusPassed
	}
	return c
}

// dependentCheck skips when no interpreter was found.
func dependentCheck(name string, python *interp.Info, fn func() (string, error)) output.Check {
	if python == nil {
		return output.Check{Name: name, Status: bootstrap.StatusSkipped, Detail: "no interpreter"}
	}
	return check(name, fn)
}

// missingCheck compares the manifest against the installed package set.
func missingCheck(ctx context.Context, cfg *config.Config, python *interp.Info, man *manifest.File) output.Check {
	if python == nil || man == nil {
		return output.Check{Name: "dependencies", Status: bootstrap.StatusSkipped, Detail: "needs interpreter and manifest"}
	}

	return check("dependencies", func() (string, error) {
		installed, err := pip.New(python.Path, cfg.ProbeTimeout(), cfg.InstallTimeout()).ListInstalled(ctx)
		if err != nil {
			return "", err
		}

		missing := man.Missing(installed)
		if len(missing) == 0 {
			return "all requirements installed", nil
		}

		names := make([]string, 0, len(missing))
		for _, req := range missing {
			names = append(names, req.Raw)
		}
		return "", fmt.Errorf("%d missing: %v", len(missing), names)
	})
}

// appConfigCheck validates the application config file. Mirrors the
// launch pipeline: with no file configured, the check is skipped.
func appConfigCheck(cfg *config.Config, root string) output.Check {
	if cfg.Project.AppConfig == "" {
		return output.Check{Name: "app config", Status: bootstrap.StatusSkipped, Detail: "not configured"}
	}

	return check("app config", func() (string, error) {
		appConfig, err := appcfg.Load(filepath.Join(root, cfg.Project.AppConfig))
		if err != nil {
			return "", err
		}
		if problems := appConfig.Problems(); len(problems) > 0 {
			return "", errors.New(problems[0])
		}
		return cfg.Project.AppConfig + " ok", nil
	})
}

// cacheCheck reports the bootstrap record for the project, if any.
func cacheCheck(cfg *config.Config, root string, man *manifest.File, python *interp.Info) output.Check {
	if !cfg.Cache.Enabled {
		return output.Check{Name: "cache", Status: bootstrap.StatusSkipped, Detail: "disabled"}
	}

	store := openStateStore(cfg)
	if store == nil {
		return output.Check{Name: "cache", Status: bootstrap.StatusSkipped, Detail: "unavailable"}
	}
	defer store.Close()

	rec, err := store.Get(root)
	if errors.Is(err, state.ErrNotFound) {
		return output.Check{Name: "cache", Status: bootstrap.StatusPassed, Detail: "no bootstrap record"}
	}
	if err != nil {
		return output.Check{Name: "cache", Status: bootstrap.StatusFailed, Err: err.Error()}
	}

	detail := "record from " + humanize.Time(rec.Timestamp)
	if man != nil && python != nil && rec.Matches(man.Hash, python.Version.String(), cfg.Browsers) {
		detail += " (current)"
	} else {
		detail += " (stale)"
	}
	return output.Check{Name: "cache", Status: bootstrap.StatusPassed, Detail: detail}
}
