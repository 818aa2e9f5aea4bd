// Package output provides formatters for displaying launch and doctor
// reports in various output formats (pretty, plain, json).
//
// The package uses a registry pattern to allow registration of multiple
// formatter implementations that can be selected at runtime.
//
// Basic usage:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, report); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hpb-tools/hpblaunch/pkg/launch/bootstrap"
)

// Check is one row of a report: a named check or step with its outcome.
type Check struct {
	// Name identifies the check (interpreter, dependencies, ...).
	Name string `json:"name"`

	// Status is the outcome: passed, failed, warned, or skipped.
	Status bootstrap.StepStatus `json:"status"`

	// Detail is a human-readable line describing what was found.
	Detail string `json:"detail,omitempty"`

	// Err is the failure message, empty when the check passed.
	Err string `json:"error,omitempty"`

	// Duration is how long the check took.
	Duration time.Duration `json:"duration"`
}

// Report contains the complete output data for formatting.
type Report struct {
	// Title heads the report ("Launch" or "Doctor").
	Title string `json:"title"`

	// RunID identifies the pipeline run the report describes.
	RunID string `json:"run_id,omitempty"`

	// Checks are the per-step outcomes in execution order.
	Checks []Check `json:"checks"`

	// Failed names the check that stopped the run, empty on success.
	Failed string `json:"failed,omitempty"`

	// Duration is the wall time of the whole run.
	Duration time.Duration `json:"duration"`
}

// Ok reports whether the run behind the report succeeded.
func (r *Report) Ok() bool {
	return r.Failed == ""
}

// Warnings returns the messages of all warned checks.
func (r *Report) Warnings() []string {
	var warnings []string
	for _, c := range r.Checks {
		if c.Status == bootstrap.StatusWarned {
			warnings = append(warnings, fmt.Sprintf("%s: %s", c.Name, c.Err))
		}
	}
	return warnings
}

// FromResult converts a pipeline result into a titled report.
func FromResult(title string, res *bootstrap.Result) *Report {
	report := &Report{
		Title:    title,
		RunID:    res.RunID,
		Failed:   res.Failed,
		Duration: res.Duration,
	}
	for _, s := range res.Steps {
		report.Checks = append(report.Checks, Check{
			Name:     s.Name,
			Status:   s.Status,
			Detail:   s.Detail,
			Err:      s.Err,
			Duration: s.Duration,
		})
	}
	return report
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	// It returns an error if formatting fails.
	Format(w *bytes.Buffer, r *Report) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry.
// It will replace any existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
// It returns an error if the formatter is not found.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
