package manifest

import (
	"encoding/json"
	"fmt"

	goversion "github.com/hashicorp/go-version"
)

// Installed maps canonical package names to installed version strings,
// as reported by `pip list --format=json`.
type Installed map[string]string

// pipListEntry mirrors one element of pip's JSON list output.
type pipListEntry struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ParsePipList parses `pip list --format=json` output.
func ParsePipList(data []byte) (Installed, error) {
	var entries []pipListEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing pip list output: %w", err)
	}

	inst := make(Installed, len(entries))
	for _, e := range entries {
		inst[CanonicalName(e.Name)] = e.Version
	}
	return inst, nil
}

// Missing returns the requirements not satisfied by the installed set.
//
// A requirement is unsatisfied when its package is absent, or when it
// carries an exact pin ("==" or "===") that disagrees with the installed
// version. Range specifiers (">=", "~=", ...) count as satisfied by mere
// presence: resolving them properly is pip's job, and `pip install -r`
// runs against the whole manifest anyway whenever this list is non-empty.
func (f *File) Missing(inst Installed) []Requirement {
	var missing []Requirement

	for _, req := range f.Requirements {
		have, ok := inst[req.Canonical]
		if !ok {
			missing = append(missing, req)
			continue
		}

		if req.Operator == "==" || req.Operator == "===" {
			if !versionsEqual(have, req.Version) {
				missing = append(missing, req)
			}
		}
	}

	return missing
}

// versionsEqual compares two version strings, tolerating segment-count
// differences ("2.31" vs "2.31.0"). Unparsable versions fall back to
// string equality.
func versionsEqual(a, b string) bool {
	va, errA := goversion.NewVersion(a)
	vb, errB := goversion.NewVersion(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return va.Equal(vb)
}
