package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hpb-tools/hpblaunch/pkg/launch/config"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "hpblaunch [path]",
		Short: "Bootstrap and launch the HPB posting application",
		Long: `hpblaunch prepares a Python project and hands it the terminal.

It locates a suitable Python interpreter, installs the project's pip
dependencies, provisions Playwright browsers, and launches the
application module. The launcher exits 0 when the application ran,
and 1 when any preparation step failed.

Examples:
  hpblaunch                      # Launch the project in the current directory
  hpblaunch ~/apps/poster        # Launch a specific project
  hpblaunch --skip-browsers      # Skip browser provisioning
  hpblaunch --refresh            # Reinstall even if nothing changed
  hpblaunch doctor               # Check the environment without launching
  hpblaunch install              # Prepare the environment only`,
		Args:          cobra.MaximumNArgs(1),
		RunE:          runLaunch,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/hpblaunch/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "output JSON format")

	// Launch flags
	rootCmd.Flags().Bool("skip-browsers", false, "skip Playwright browser provisioning")
	rootCmd.Flags().Bool("refresh", false, "reinstall dependencies even when unchanged")
	rootCmd.Flags().BoolP("dry-run", "d", false, "check the environment, install and launch nothing")
	rootCmd.Flags().Bool("pause-on-error", false, "wait for Enter before exiting on failure")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		return err
	}
	return nil
}

// loadConfig loads the launcher configuration, honoring --config.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadFile(cfgFile)
	}
	return config.Load()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
