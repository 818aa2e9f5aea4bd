package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hpb-tools/hpblaunch/pkg/launch/bootstrap"
	"github.com/hpb-tools/hpblaunch/pkg/launch/config"
)

func TestAppConfigCheck(t *testing.T) {
	t.Run("skipped when not configured", func(t *testing.T) {
		cfg := config.Default()
		cfg.Project.AppConfig = ""

		c := appConfigCheck(cfg, t.TempDir())
		if c.Status != bootstrap.StatusSkipped {
			t.Errorf("status = %v, want skipped", c.Status)
		}
		if c.Detail != "not configured" {
			t.Errorf("detail = %q, want %q", c.Detail, "not configured")
		}
	})

	t.Run("passes with a valid config", func(t *testing.T) {
		cfg := config.Default()
		cfg.Project.AppConfig = "config.json"

		root := t.TempDir()
		data := `{
			"hpb_selectors": {"salon_name": ".name", "style_image": ".img"},
			"gbp_selectors": {"post_button": ".post"},
			"settings": {"headless": true}
		}`
		if err := os.WriteFile(filepath.Join(root, "config.json"), []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}

		c := appConfigCheck(cfg, root)
		if c.Status != bootstrap.StatusPassed {
			t.Errorf("status = %v, want passed (err %q)", c.Status, c.Err)
		}
	})

	t.Run("fails when the file is missing", func(t *testing.T) {
		cfg := config.Default()
		cfg.Project.AppConfig = "config.json"

		c := appConfigCheck(cfg, t.TempDir())
		if c.Status != bootstrap.StatusFailed {
			t.Errorf("status = %v, want failed", c.Status)
		}
	})
}
