// Package manifest reads a pip requirements manifest and diffs it against
// the interpreter's installed package set.
package manifest

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// ErrMissing is returned when the manifest file does not exist.
var ErrMissing = errors.New("dependency manifest not found")

// Requirement is a single parsed manifest line.
type Requirement struct {
	// Name is the distribution name as written.
	Name string

	// Canonical is the PEP 503 normalized name used for comparisons.
	Canonical string

	// Operator is the first comparison operator of the specifier
	// ("==", ">=", ...), or empty for an unversioned requirement.
	Operator string

	// Version is the version paired with Operator, or empty.
	Version string

	// Raw is the original line with comments and markers stripped.
	Raw string

	// Line is the 1-based line number in the manifest.
	Line int
}

// String returns the requirement as it would appear in a manifest.
func (r Requirement) String() string {
	return r.Raw
}

// File is a loaded dependency manifest.
type File struct {
	// Path is where the manifest was read from.
	Path string

	// Requirements are the parsed package lines, in file order.
	Requirements []Requirement

	// Options are pass-through pip option lines (-r, --index-url, ...).
	// The launcher never interprets them; pip sees the whole file.
	Options []string

	// Hash is the SHA-256 of the raw manifest bytes, hex encoded.
	// The bootstrap state cache keys install skips on it.
	Hash string
}

// Load reads and parses the manifest at path.
// A missing file yields ErrMissing so callers can classify it as the
// fatal "manifest missing" condition.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissing, path)
		}
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	reqs, opts, err := Parse(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	sum := sha256.Sum256(data)

	return &File{
		Path:         path,
		Requirements: reqs,
		Options:      opts,
		Hash:         hex.EncodeToString(sum[:]),
	}, nil
}

// nameRe matches a distribution name with optional extras, anchored at the
// start of a requirement line.
var nameRe = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)(\[[^\]]*\])?`)

// specRe captures the first comparison operator and its version.
var specRe = regexp.MustCompile(`(===|==|~=|!=|>=|<=|>|<)\s*([^,\s]+)`)

// Parse reads requirement lines from r. Comment and blank lines are
// skipped, inline comments and environment markers are stripped, and
// option lines (anything starting with "-") are collected separately.
func Parse(r io.Reader) ([]Requirement, []string, error) {
	var (
		reqs []Requirement
		opts []string
	)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Inline comment: " #" per pip's parsing rules
		if idx := strings.Index(line, " #"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}

		// Environment marker: "; python_version < ..." is for pip, not us
		if idx := strings.Index(line, ";"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}

		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "-") {
			opts = append(opts, line)
			continue
		}

		m := nameRe.FindStringSubmatch(line)
		if m == nil {
			return nil, nil, fmt.Errorf("line %d: unparsable requirement %q", lineNo, line)
		}
		name := m[1]

		req := Requirement{
			Name:      name,
			Canonical: CanonicalName(name),
			Raw:       line,
			Line:      lineNo,
		}

		if sm := specRe.FindStringSubmatch(line); sm != nil {
			req.Operator = sm[1]
			req.Version = sm[2]
		}

		reqs = append(reqs, req)
	}

	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("scanning manifest: %w", err)
	}

	return reqs, opts, nil
}

// CanonicalName folds a distribution name per PEP 503: lowercase, with
// runs of "-", "_", and "." collapsed to a single "-".
func CanonicalName(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	prevSep := false
	for _, c := range strings.ToLower(name) {
		if c == '-' || c == '_' || c == '.' {
			if !prevSep {
				b.WriteByte('-')
			}
			prevSep = true
			continue
		}
		prevSep = false
		b.WriteRune(c)
	}

	return b.String()
}
