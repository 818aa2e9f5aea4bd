// Package state persists bootstrap results per project so unchanged
// environments can skip the expensive pip and Playwright steps on the
// next launch.
package state

import (
	"errors"
	"sort"
	"time"
)

// ErrNotFound is returned when no record exists for a project.
var ErrNotFound = errors.New("bootstrap record not found")

// Record captures what a successful bootstrap produced. A later run may
// skip installation when the stored record still matches the current
// manifest and interpreter.
type Record struct {
	// ManifestHash is the SHA-256 of the manifest that was installed.
	ManifestHash string `json:"manifest_hash"`

	// InterpreterVersion is the version of the interpreter the install
	// ran under. A new interpreter invalidates the record.
	InterpreterVersion string `json:"interpreter_version"`

	// Browsers lists the browser names provisioned for the project.
	Browsers []string `json:"browsers,omitempty"`

	// Timestamp is when the bootstrap completed.
	Timestamp time.Time `json:"timestamp"`
}

// Matches reports whether the record covers the given manifest hash,
// interpreter version, and browser set.
func (r *Record) Matches(manifestHash, interpreterVersion string, browsers []string) bool {
	if r.ManifestHash != manifestHash || r.InterpreterVersion != interpreterVersion {
		return false
	}
	return sameBrowsers(r.Browsers, browsers)
}

func sameBrowsers(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
