package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hpb-tools/hpblaunch/pkg/launch/bootstrap"
	"github.com/hpb-tools/hpblaunch/pkg/launch/logging"
	"github.com/hpb-tools/hpblaunch/pkg/launch/output"
)

var installCmd = &cobra.Command{
	Use:   "install [path]",
	Short: "Prepare the environment without launching",
	Long: `Install runs the bootstrap pipeline up to but not including the
application launch: interpreter discovery, dependency installation,
and browser provisioning.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().Bool("skip-browsers", false, "skip Playwright browser provisioning")
	installCmd.Flags().Bool("refresh", false, "reinstall dependencies even when unchanged")
	rootCmd.AddCommand(installCmd)
}

// runInstall executes the pipeline in install-only mode.
func runInstall(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	root, err := resolveProjectRoot(args)
	if err != nil {
		return err
	}

	if err := initLogging(cfg); err != nil {
		return err
	}
	defer logging.Close()

	skipBrowsers, _ := cmd.Flags().GetBool("skip-browsers")
	refresh, _ := cmd.Flags().GetBool("refresh")

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
		InstallOnly:  true,
		Store:        store,
	})

	result := pipeline.Run(ctx)
	printReport(output.FromResult("Install", result))

	if !result.Ok() {
		return errLaunchFailed
	}
	return nil
}
