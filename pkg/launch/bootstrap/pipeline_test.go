package bootstrap

import (
	"context"
	"errors"
	"testing"
	"time"

	goversion "github.com/hashicorp/go-version"

	"github.com/hpb-tools/hpblaunch/pkg/launch/config"
	"github.com/hpb-tools/hpblaunch/pkg/launch/interp"
	"github.com/hpb-tools/hpblaunch/pkg/launch/manifest"
	"github.com/hpb-tools/hpblaunch/pkg/launch/state"
)

func testPipeline(t *testing.T, opts Options) *Pipeline {
	t.Helper()
	if opts.Config == nil {
		cfg := config.Default()
		opts.Config = cfg
	}
	p := New(opts)
	p.python = &interp.Info{
		Command: "python3",
		Path:    "/usr/bin/python3",
		Version: goversion.Must(goversion.NewVersion("3.11.4")),
	}
	p.man = &manifest.File{Path: "requirements.txt", Hash: "hash-a"}
	return p
}

func openStore(t *testing.T) *state.Store {
	t.Helper()
	store, err := state.OpenStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSkipInstall(t *testing.T) {
	t.Run("no store never skips", func(t *testing.T) {
		p := testPipeline(t, Options{Root: "/p"})
		if skip, _ := p.skipInstall(); skip {
			t.Error("skipInstall() = true without a store")
		}
	})

	t.Run("matching record skips", func(t *testing.T) {
		store := openStore(t)
		p := testPipeline(t, Options{Root: "/p", Store: store})

		rec := &state.Record{
			ManifestHash:       "hash-a",
			InterpreterVersion: "3.11.4",
			Browsers:           p.opts.Config.Browsers,
			Timestamp:          time.Now(),
		}
		if err := store.Put("/p", rec); err != nil {
			t.Fatal(err)
		}

		skip, reason := p.skipInstall()
		if !skip {
			t.Fatal("skipInstall() = false with matching record")
		}
		if reason == "" {
			t.Error("skip reason is empty")
		}
		if !p.cached {
			t.Error("cached flag not set")
		}
	})

	t.Run("changed manifest does not skip", func(t *testing.T) {
		store := openStore(t)
		p := testPipeline(t, Options{Root: "/p", Store: store})

		rec := &state.Record{
			ManifestHash:       "hash-old",
			InterpreterVersion: "3.11.4",
			Browsers:           p.opts.Config.Browsers,
			Timestamp:          time.Now(),
		}
		if err := store.Put("/p", rec); err != nil {
			t.Fatal(err)
		}

		if skip, _ := p.skipInstall(); skip {
			t.Error("skipInstall() = true after manifest change")
		}
	})

	t.Run("refresh forces install", func(t *testing.T) {
		store := openStore(t)
		p := testPipeline(t, Options{Root: "/p", Store: store, Refresh: true})

		rec := &state.Record{
			ManifestHash:       "hash-a",
			InterpreterVersion: "3.11.4",
			Browsers:           p.opts.Config.Browsers,
			Timestamp:          time.Now(),
		}
		if err := store.Put("/p", rec); err != nil {
			t.Fatal(err)
		}

		if skip, _ := p.skipInstall(); skip {
			t.Error("skipInstall() = true with --refresh")
		}
	})

	t.Run("dry run skips", func(t *testing.T) {
		p := testPipeline(t, Options{Root: "/p", DryRun: true})
		skip, reason := p.skipInstall()
		if !skip || reason != "dry run" {
			t.Errorf("skipInstall() = %v, %q", skip, reason)
		}
	})
}

func TestSkipBrowsers(t *testing.T) {
	t.Run("flag disables", func(t *testing.T) {
		p := testPipeline(t, Options{Root: "/p", SkipBrowsers: true})
		if skip, _ := p.skipBrowsers(); !skip {
			t.Error("skipBrowsers() = false with flag set")
		}
	})

	t.Run("cached record covers", func(t *testing.T) {
		p := testPipeline(t, Options{Root: "/p"})
		p.cached = true
		skip, reason := p.skipBrowsers()
		if !skip {
			t.Error("skipBrowsers() = false with current record")
		}
		if reason != "covered by bootstrap record" {
			t.Errorf("reason = %q", reason)
		}
	})

	t.Run("normally runs", func(t *testing.T) {
		p := testPipeline(t, Options{Root: "/p"})
		if skip, _ := p.skipBrowsers(); skip {
			t.Error("skipBrowsers() = true by default")
		}
	})
}

func TestSkipAppConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Project.AppConfig = ""
	p := testPipeline(t, Options{Root: "/p", Config: cfg})

	skip, reason := p.skipAppConfig()
	if !skip || reason != "not configured" {
		t.Errorf("skipAppConfig() = %v, %q", skip, reason)
	}
}

func TestLaunchStep(t *testing.T) {
	t.Run("invokes the application module", func(t *testing.T) {
		p := testPipeline(t, Options{Root: "/p"})
		var gotPython, gotDir, gotModule string
		p.launch = func(_ context.Context, python, dir, module string) error {
			gotPython, gotDir, gotModule = python, dir, module
			return nil
		}

		steps := p.steps()
		last := steps[len(steps)-1]
		if last.Name != "launch" {
			t.Fatalf("last step = %q, want launch", last.Name)
		}

		detail, err := last.Run(context.Background())
		if err != nil {
			t.Fatalf("launch step error = %v", err)
		}
		if gotPython != "/usr/bin/python3" || gotDir != "/p" || gotModule != "src.main" {
			t.Errorf("launch called with %q %q %q", gotPython, gotDir, gotModule)
		}
		if detail != "src.main exited cleanly" {
			t.Errorf("detail = %q", detail)
		}
	})

	t.Run("propagates application failure", func(t *testing.T) {
		p := testPipeline(t, Options{Root: "/p"})
		p.launch = func(context.Context, string, string, string) error {
			return errors.New("application exited with code 2")
		}

		steps := p.steps()
		if _, err := steps[len(steps)-1].Run(context.Background()); err == nil {
			t.Error("launch step error = nil, want failure")
		}
	})
}

func TestExpectedBrowsers(t *testing.T) {
	p := testPipeline(t, Options{Root: "/p", SkipBrowsers: true})
	if got := p.expectedBrowsers(); got != nil {
		t.Errorf("expectedBrowsers() = %v, want nil when skipped", got)
	}

	p = testPipeline(t, Options{Root: "/p"})
	if got := p.expectedBrowsers(); len(got) == 0 {
		t.Error("expectedBrowsers() is empty with default browsers")
	}
}
