package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveProjectRoot(t *testing.T) {
	t.Run("defaults to current directory", func(t *testing.T) {
		got, err := resolveProjectRoot(nil)
		if err != nil {
			t.Fatalf("resolveProjectRoot() error = %v", err)
		}
		wd, _ := os.Getwd()
		if got != wd {
			t.Errorf("root = %q, want %q", got, wd)
		}
	})

	t.Run("resolves given directory", func(t *testing.T) {
		dir := t.TempDir()
		got, err := resolveProjectRoot([]string{dir})
		if err != nil {
			t.Fatalf("resolveProjectRoot() error = %v", err)
		}
		if got != dir {
			t.Errorf("root = %q, want %q", got, dir)
		}
	})

	t.Run("rejects missing path", func(t *testing.T) {
		_, err := resolveProjectRoot([]string{filepath.Join(t.TempDir(), "nope")})
		if err == nil {
			t.Error("resolveProjectRoot() = nil error for missing path")
		}
	})

	t.Run("rejects file path", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "f.txt")
		if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := resolveProjectRoot([]string{file})
		if err == nil {
			t.Error("resolveProjectRoot() = nil error for file path")
		}
	})
}

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{
		"doctor":   false,
		"install":  false,
		"browsers": false,
		"config":   false,
		"cache":    false,
		"version":  false,
	}
	for _, cmd := range rootCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}
