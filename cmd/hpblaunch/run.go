package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hpb-tools/hpblaunch/pkg/launch/bootstrap"
	"github.com/hpb-tools/hpblaunch/pkg/launch/config"
	"github.com/hpb-tools/hpblaunch/pkg/launch/logging"
	"github.com/hpb-tools/hpblaunch/pkg/launch/output"
	"github.com/hpb-tools/hpblaunch/pkg/launch/state"
)

// errLaunchFailed signals a fatal pipeline failure without repeating
// the step error already shown in the report.
var errLaunchFailed = errors.New("launch aborted")

// runLaunch is the root command handler: the full bootstrap-and-launch
// pipeline.
func runLaunch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	root, err := resolveProjectRoot(args)
	if err != nil {
		return err
	}

	if err := initLogging(cfg); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	defer logging.Close()

	skipBrowsers, _ := cmd.Flags().GetBool("skip-browsers")
	refresh, _ := cmd.Flags().GetBool("refresh")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	pauseOnError, _ := cmd.Flags().GetBool("pause-on-error")

	store := openStateStore(cfg)
	if store != nil {
		defer store.Close()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline := bootstrap.New(bootstrap.Options{
		Config:       cfg,
		Root:         root,
		SkipBrowsers: skipBrowsers,
		Refresh:      refresh,
		DryRun:       dryRun,
		Store:        store,
	})

	result := pipeline.Run(ctx)
	printReport(output.FromResult("Launch", result))

	if !result.Ok() {
		if pauseOnError {
			waitForEnter()
		}
		return errLaunchFailed
	}
	return nil
}

// resolveProjectRoot expands and validates the project path argument.
func resolveProjectRoot(args []string) (string, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	expanded, err := config.ExpandPath(root)
	if err != nil {
		return "", fmt.Errorf("failed to expand path: %w", err)
	}

	absPath, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("project path does not exist: %s", absPath)
		}
		return "", fmt.Errorf("cannot access project path: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("project path is not a directory: %s", absPath)
	}

	return absPath, nil
}

// initLogging configures file logging from config, with console
// verbosity driven by the --verbose and --quiet flags.
func initLogging(cfg *config.Config) error {
	maxSize, err := humanize.ParseBytes(cfg.Logging.Rotation.MaxSize)
	if err != nil {
		maxSize = 10 * 1024 * 1024
	}

	consoleLevel := ""
	if getVerbose() {
		consoleLevel = "debug"
	}

	return logging.Init(logging.Config{
		Level: cfg.Logging.Level,
		Path:  cfg.Logging.Path,
		Rotation: logging.RotationConfig{
			MaxSize:    int64(maxSize),
			MaxAge:     cfg.Logging.Rotation.MaxAge,
			MaxBackups: cfg.Logging.Rotation.MaxBackups,
			Daily:      cfg.Logging.Rotation.Daily,
		},
		Components:   cfg.Logging.Components,
		ConsoleLevel: consoleLevel,
	})
}

// openStateStore opens the bootstrap state store when caching is
// enabled. A store that fails to open degrades to no caching.
func openStateStore(cfg *config.Config) *state.Store {
	if !cfg.Cache.Enabled {
		return nil
	}

	path := cfg.Cache.Path
	if path == "" {
		path = config.DefaultCachePath()
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		printVerbose("Cannot create cache directory, caching disabled: %v", err)
		return nil
	}

	store, err := state.OpenStore(path)
	if err != nil {
		printVerbose("Cannot open state store, caching disabled: %v", err)
		return nil
	}
	return store
}

// printReport renders a report with the formatter selected by flags.
func printReport(report *output.Report) {
	if getQuiet() {
		return
	}

	name := "pretty"
	if viper.GetBool("json") {
		name = "json"
	}

	formatter, err := output.Get(name)
	if err != nil {
		printError("%v", err)
		return
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, report); err != nil {
		printError("formatting report: %v", err)
		return
	}
	fmt.Print(buf.String())
}

// waitForEnter blocks until the user presses Enter. Keeps the console
// window open when the launcher was started from a double-click.
func waitForEnter() {
	fmt.Fprint(os.Stderr, "Press Enter to exit...")
	_, _ = bufio.NewReader(os.Stdin).ReadString('\n')
}
