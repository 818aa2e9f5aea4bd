package browsers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestProbe(t *testing.T) {
	t.Parallel()

	t.Run("returns banner", func(t *testing.T) {
		t.Parallel()
		p := New("/usr/bin/python3", []string{"chromium"}, time.Second)
		p.output = func(_ context.Context, _ string, _ ...string) ([]byte, error) {
			return []byte("Version 1.40.0\n"), nil
		}

		banner, err := p.Probe(context.Background())
		if err != nil {
			t.Fatalf("Probe() error = %v", err)
		}
		if banner != "Version 1.40.0" {
			t.Errorf("banner = %q", banner)
		}
	})

	t.Run("missing module yields ErrDriverMissing", func(t *testing.T) {
		t.Parallel()
		p := New("/usr/bin/python3", []string{"chromium"}, time.Second)
		p.output = func(_ context.Context, _ string, _ ...string) ([]byte, error) {
			return nil, errors.New("No module named playwright")
		}

		_, err := p.Probe(context.Background())
		if !errors.Is(err, ErrDriverMissing) {
			t.Fatalf("Probe() error = %v, want ErrDriverMissing", err)
		}
	})
}

func TestInstall(t *testing.T) {
	t.Parallel()

	t.Run("passes browser names through", func(t *testing.T) {
		t.Parallel()
		var gotArgs []string
		p := New("/usr/bin/python3", []string{"chromium", "firefox"}, time.Second)
		p.stream = func(_ context.Context, onLine func(string), _ string, args ...string) error {
			gotArgs = args
			onLine("Downloading Chromium...")
			return nil
		}

		if err := p.Install(context.Background()); err != nil {
			t.Fatalf("Install() error = %v", err)
		}

		want := "-m playwright install chromium firefox"
		if got := strings.Join(gotArgs, " "); got != want {
			t.Errorf("args = %q, want %q", got, want)
		}
	})

	t.Run("failure wraps ErrProvisionFailed", func(t *testing.T) {
		t.Parallel()
		p := New("/usr/bin/python3", []string{"chromium"}, time.Second)
		p.stream = func(_ context.Context, _ func(string), _ string, _ ...string) error {
			return errors.New("exit status 1")
		}

		err := p.Install(context.Background())
		if !errors.Is(err, ErrProvisionFailed) {
			t.Fatalf("Install() error = %v, want ErrProvisionFailed", err)
		}
	})

	t.Run("no browsers is a no-op", func(t *testing.T) {
		t.Parallel()
		p := New("/usr/bin/python3", nil, time.Second)
		p.stream = func(_ context.Context, _ func(string), _ string, _ ...string) error {
			t.Error("stream should not be called with no browsers")
			return nil
		}

		if err := p.Install(context.Background()); err != nil {
			t.Fatalf("Install() error = %v", err)
		}
	})
}
