package appcfg

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const validConfig = `{
  "hpb_selectors": {
    "salon_name": "p.slnName",
    "style_image": "div.mT10 img",
    "max_page_element": "p.pa.bottom0.right0"
  },
  "gbp_selectors": {
    "post_button": "button[jsname='x']"
  },
  "settings": {
    "headless": false,
    "max_posts": 10
  }
}`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		cfg, err := Load(writeConfig(t, validConfig))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.HPBSelectors["salon_name"] != "p.slnName" {
			t.Errorf("salon_name = %q", cfg.HPBSelectors["salon_name"])
		}
		if len(cfg.Problems()) != 0 {
			t.Errorf("Problems() = %v, want none", cfg.Problems())
		}
	})

	t.Run("missing file yields ErrMissing", func(t *testing.T) {
		t.Parallel()
		_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
		if !errors.Is(err, ErrMissing) {
			t.Fatalf("Load() error = %v, want ErrMissing", err)
		}
	})

	t.Run("malformed JSON yields ErrInvalid", func(t *testing.T) {
		t.Parallel()
		_, err := Load(writeConfig(t, "{not json"))
		if !errors.Is(err, ErrInvalid) {
			t.Fatalf("Load() error = %v, want ErrInvalid", err)
		}
	})
}

func TestProblems(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "empty object",
			content: `{}`,
			want:    "hpb_selectors section is missing or empty",
		},
		{
			name: "missing required selector",
			content: `{
				"hpb_selectors": {"salon_name": "p.slnName"},
				"gbp_selectors": {"post_button": "button"},
				"settings": {}
			}`,
			want: "hpb_selectors.style_image is missing",
		},
		{
			name: "missing settings",
			content: `{
				"hpb_selectors": {"salon_name": "a", "style_image": "b"},
				"gbp_selectors": {"post_button": "button"}
			}`,
			want: "settings section is missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := Load(writeConfig(t, tt.content))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}

			problems := cfg.Problems()
			if len(problems) == 0 {
				t.Fatal("Problems() = none, want at least one")
			}
			found := false
			for _, p := range problems {
				if p == tt.want {
					found = true
				}
			}
			if !found {
				t.Errorf("Problems() = %v, want to contain %q", problems, tt.want)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	t.Parallel()

	if err := Check(writeConfig(t, validConfig)); err != nil {
		t.Errorf("Check() error = %v, want nil", err)
	}

	err := Check(writeConfig(t, `{"settings": {}}`))
	if err == nil {
		t.Error("Check() = nil, want error for missing selectors")
	}
}
