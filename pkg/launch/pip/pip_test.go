package pip

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// fakeInstaller returns an Installer whose process execution is stubbed.
// outputs maps a joined argument string to canned output; missing entries
// report failure.
func fakeInstaller(outputs map[string]string, streamErr error, streamLines []string) *Installer {
	i := New("/usr/bin/python3", time.Second, time.Second)
	i.output = func(_ context.Context, name string, args ...string) ([]byte, error) {
		key := strings.Join(append([]string{name}, args...), " ")
		if out, ok := outputs[key]; ok {
			return []byte(out), nil
		}
		return nil, errors.New("exit status 1")
	}
	i.stream = func(_ context.Context, onLine func(string), _ string, _ ...string) error {
		for _, line := range streamLines {
			onLine(line)
		}
		return streamErr
	}
	return i
}

func TestProbe(t *testing.T) {
	t.Parallel()

	t.Run("returns banner", func(t *testing.T) {
		t.Parallel()
		i := fakeInstaller(map[string]string{
			"/usr/bin/python3 -m pip --version": "pip 23.3.1 from /usr/lib/python3/site-packages/pip (python 3.11)\n",
		}, nil, nil)

		banner, err := i.Probe(context.Background())
		if err != nil {
			t.Fatalf("Probe() error = %v", err)
		}
		if !strings.HasPrefix(banner, "pip 23.3.1") {
			t.Errorf("banner = %q, want pip 23.3.1 prefix", banner)
		}
	})

	t.Run("missing pip yields ErrPipMissing", func(t *testing.T) {
		t.Parallel()
		i := fakeInstaller(nil, nil, nil)

		_, err := i.Probe(context.Background())
		if !errors.Is(err, ErrPipMissing) {
			t.Fatalf("Probe() error = %v, want ErrPipMissing", err)
		}
	})
}

func TestListInstalled(t *testing.T) {
	t.Parallel()

	i := fakeInstaller(map[string]string{
		"/usr/bin/python3 -m pip list --format=json --disable-pip-version-check": `[{"name":"requests","version":"2.31.0"}]`,
	}, nil, nil)

	inst, err := i.ListInstalled(context.Background())
	if err != nil {
		t.Fatalf("ListInstalled() error = %v", err)
	}
	if inst["requests"] != "2.31.0" {
		t.Errorf("requests = %q, want 2.31.0", inst["requests"])
	}
}

func TestInstall(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		i := fakeInstaller(nil, nil, []string{
			"Collecting requests==2.31.0",
			"Successfully installed requests-2.31.0",
		})

		if err := i.Install(context.Background(), "requirements.txt"); err != nil {
			t.Fatalf("Install() error = %v", err)
		}
	})

	t.Run("failure wraps ErrInstallFailed", func(t *testing.T) {
		t.Parallel()
		i := fakeInstaller(nil, errors.New("exit status 1"), nil)

		err := i.Install(context.Background(), "requirements.txt")
		if !errors.Is(err, ErrInstallFailed) {
			t.Fatalf("Install() error = %v, want ErrInstallFailed", err)
		}
	})
}
