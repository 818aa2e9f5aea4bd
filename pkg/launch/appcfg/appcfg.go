// Package appcfg validates the launched application's config.json before
// the interpreter is handed control, so a missing or mangled config fails
// fast in the launcher instead of deep inside the application.
package appcfg

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Sentinel errors for application config problems.
var (
	// ErrMissing means the application config file does not exist.
	ErrMissing = errors.New("application config not found")

	// ErrInvalid means the file exists but is not valid JSON.
	ErrInvalid = errors.New("application config is not valid JSON")
)

// requiredHPBSelectors are the selector keys the application's scraper
// refuses to run without.
var requiredHPBSelectors = []string{"salon_name", "style_image"}

// AppConfig mirrors the application's config.json shape.
type AppConfig struct {
	// HPBSelectors are the CSS selectors for the HotPepper Beauty pages.
	HPBSelectors map[string]string `json:"hpb_selectors"`

	// GBPSelectors are the CSS selectors for the Google Business Profile UI.
	GBPSelectors map[string]string `json:"gbp_selectors"`

	// Settings holds general application settings (headless flag, limits, ...).
	Settings map[string]interface{} `json:"settings"`
}

// Load reads and parses the application config at path.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissing, path)
		}
		return nil, fmt.Errorf("reading application config %s: %w", path, err)
	}

	var cfg AppConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}

	return &cfg, nil
}

// Problems returns human-readable issues with the config. An empty slice
// means the config is launchable.
func (c *AppConfig) Problems() []string {
	var problems []string

	if len(c.HPBSelectors) == 0 {
		problems = append(problems, "hpb_selectors section is missing or empty")
	} else {
		for _, key := range requiredHPBSelectors {
			if c.HPBSelectors[key] == "" {
				problems = append(problems, fmt.Sprintf("hpb_selectors.%s is missing", key))
			}
		}
	}

	if len(c.GBPSelectors) == 0 {
		problems = append(problems, "gbp_selectors section is missing or empty")
	}

	if c.Settings == nil {
		problems = append(problems, "settings section is missing")
	}

	return problems
}

// Check loads the config at path and folds any problems into a single
// error. It is the one-call form the bootstrap pipeline uses.
func Check(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}

	if problems := cfg.Problems(); len(problems) > 0 {
		return fmt.Errorf("application config %s: %s", path, problems[0])
	}

	return nil
}
