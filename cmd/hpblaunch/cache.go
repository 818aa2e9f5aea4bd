package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hpb-tools/hpblaunch/pkg/launch/config"
	"github.com/hpb-tools/hpblaunch/pkg/launch/state"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the bootstrap cache",
	Long: `Commands for managing the bootstrap state cache.

The cache remembers what each project's last successful bootstrap
installed, so unchanged environments skip pip and Playwright on the
next launch. Cache data is stored in the XDG cache directory
(typically ~/.cache/hpblaunch/state).`,
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cached bootstrap records",
	Long:  `Lists every project with a bootstrap record and when it was taken.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store := openStateStore(cfg)
		if store == nil {
			fmt.Println("Cache is disabled or unavailable.")
			return nil
		}
		defer store.Close()

		roots, err := store.Roots()
		if err != nil {
			return fmt.Errorf("failed to list cache entries: %w", err)
		}
		if len(roots) == 0 {
			fmt.Println("Cache is empty.")
			return nil
		}

		for _, root := range roots {
			rec, err := store.Get(root)
			if errors.Is(err, state.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", root)
			fmt.Printf("  bootstrapped: %s\n", humanize.Time(rec.Timestamp))
			fmt.Printf("  interpreter:  Python %s\n", rec.InterpreterVersion)
			fmt.Printf("  manifest:     %.12s\n", rec.ManifestHash)
			if len(rec.Browsers) > 0 {
				fmt.Printf("  browsers:     %v\n", rec.Browsers)
			}
		}
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all cached bootstrap records",
	Long:  `Removes every bootstrap record. The next launch will reinstall everything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		path := cfg.Cache.Path
		if path == "" {
			path = config.DefaultCachePath()
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			fmt.Println("Cache is already empty.")
			return nil
		}

		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}

		fmt.Println("Cache cleared.")
		return nil
	},
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show cache location",
	Long:  `Prints the path to the cache directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		path := cfg.Cache.Path
		if path == "" {
			path = config.DefaultCachePath()
		}
		fmt.Println(path)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cachePathCmd)
	rootCmd.AddCommand(cacheCmd)
}
