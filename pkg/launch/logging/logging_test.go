package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"ERROR", LevelError, false},
		{"bogus", LevelInfo, true},
		{"", LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLevelString(t *testing.T) {
	if LevelDebug.String() != "debug" || LevelError.String() != "error" {
		t.Error("Level.String() returned unexpected values")
	}
	if Level(99).String() != "unknown" {
		t.Errorf("Level(99).String() = %q, want %q", Level(99).String(), "unknown")
	}
}

func TestInitAndGet(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	cfg := Config{
		Level: "debug",
		Path:  logPath,
		Components: map[string]string{
			"pip": "error",
		},
	}

	if err := Init(cfg); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer func() {
		if err := Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	}()

	logger := Get("bootstrap")
	logger.Info("step started", "step", "interpreter")
	logger.Debug("probe output", "raw", "Python 3.11.4")

	// Component-level override: pip logger only records errors
	pipLogger := Get("pip")
	pipLogger.Info("this is filtered out")
	pipLogger.Error("install failed", "code", 1)

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	content := string(data)

	if !strings.Contains(content, "step started") {
		t.Error("log file missing info message")
	}
	if !strings.Contains(content, "probe output") {
		t.Error("log file missing debug message at debug level")
	}
	if strings.Contains(content, "this is filtered out") {
		t.Error("component level override not applied")
	}
	if !strings.Contains(content, "install failed") {
		t.Error("log file missing component error message")
	}
}

func TestInit_InvalidLevel(t *testing.T) {
	err := Init(Config{Level: "nope", Path: filepath.Join(t.TempDir(), "x.log")})
	if err == nil {
		t.Fatal("Init() with invalid level: error = nil, want error")
	}
}

func TestGet_BeforeInitIsSilent(t *testing.T) {
	// Loggers obtained before Init must not panic and must not write anywhere.
	logger := Get("preinit-component")
	logger.Info("goes to io.Discard")
	logger.Error("also discarded")
}

func TestInitRebindsEarlyLoggers(t *testing.T) {
	// Package-level loggers are created before Init runs; they must
	// start writing once Init configures the file writer.
	early := Get("early-component")

	logPath := filepath.Join(t.TempDir(), "rebind.log")
	if err := Init(Config{Level: "info", Path: logPath}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer Close()

	early.Info("bound late")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "bound late") {
		t.Error("logger obtained before Init did not pick up configuration")
	}
}

func TestWith(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "with.log")
	if err := Init(Config{Level: "info", Path: logPath}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer Close()

	logger := Get("bootstrap").With("run_id", "abc123")
	logger.Info("hello")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "abc123") {
		t.Error("With() context not present in output")
	}
}
