package state

import (
	"testing"
	"time"
)

func TestRecordMatches(t *testing.T) {
	rec := &Record{
		ManifestHash:       "abc123",
		InterpreterVersion: "3.11.4",
		Browsers:           []string{"chromium", "firefox"},
		Timestamp:          time.Now(),
	}

	tests := []struct {
		name     string
		hash     string
		version  string
		browsers []string
		want     bool
	}{
		{"exact match", "abc123", "3.11.4", []string{"chromium", "firefox"}, true},
		{"browser order ignored", "abc123", "3.11.4", []string{"firefox", "chromium"}, true},
		{"manifest changed", "def456", "3.11.4", []string{"chromium", "firefox"}, false},
		{"interpreter changed", "abc123", "3.12.0", []string{"chromium", "firefox"}, false},
		{"browser added", "abc123", "3.11.4", []string{"chromium", "firefox", "webkit"}, false},
		{"browser removed", "abc123", "3.11.4", []string{"chromium"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rec.Matches(tt.hash, tt.version, tt.browsers); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}
