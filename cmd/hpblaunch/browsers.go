package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hpb-tools/hpblaunch/pkg/launch/browsers"
	"github.com/hpb-tools/hpblaunch/pkg/launch/interp"
	"github.com/hpb-tools/hpblaunch/pkg/launch/logging"
)

var browsersCmd = &cobra.Command{
	Use:   "browsers",
	Short: "Provision Playwright browsers",
	Long: `Provision the configured Playwright browsers for the selected
interpreter. Unlike during a launch, a provisioning failure here is
reported as an error.`,
	RunE: runBrowsers,
}

func init() {
	rootCmd.AddCommand(browsersCmd)
}

// runBrowsers provisions browsers outside of a launch.
func runBrowsers(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := initLogging(cfg); err != nil {
		return err
	}
	defer logging.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc := interp.NewLocator(cfg.Interpreter.Candidates, cfg.Interpreter.MinVersion, cfg.ProbeTimeout())
	info, err := loc.Locate(ctx)
	if err != nil {
		return err
	}
	printVerbose("Using Python %s at %s", info.Version, info.Path)

	prov := browsers.New(info.Path, cfg.Browsers, cfg.BrowserTimeout())
	if err := prov.Install(ctx); err != nil {
		return err
	}

	printInfo("Browsers ready: %s", strings.Join(cfg.Browsers, ", "))
	return nil
}
