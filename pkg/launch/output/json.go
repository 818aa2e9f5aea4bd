package output

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/hpb-tools/hpblaunch/pkg/launch/bootstrap"
)

// jsonReport represents the full JSON output structure.
type jsonReport struct {
	Title    string      `json:"title"`
	RunID    string      `json:"run_id,omitempty"`
	Ok       bool        `json:"ok"`
	Failed   string      `json:"failed,omitempty"`
	Duration string      `json:"duration"`
	Checks   []jsonCheck `json:"checks"`
	Warnings []string    `json:"warnings,omitempty"`
}

// jsonCheck represents one check in JSON output.
type jsonCheck struct {
	Name     string               `json:"name"`
	Status   bootstrap.StepStatus `json:"status"`
	Detail   string               `json:"detail,omitempty"`
	Error    string               `json:"error,omitempty"`
	Duration string               `json:"duration,omitempty"`
}

// JSONFormatter formats reports as a single indented JSON object.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Report) error {
	out := jsonReport{
		Title:    r.Title,
		RunID:    r.RunID,
		Ok:       r.Ok(),
		Failed:   r.Failed,
		Duration: formatDurationString(r.Duration),
		Warnings: r.Warnings(),
	}
	for _, c := range r.Checks {
		out.Checks = append(out.Checks, jsonCheck{
			Name:     c.Name,
			Status:   c.Status,
			Detail:   c.Detail,
			Error:    c.Err,
			Duration: formatDurationString(c.Duration),
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// formatDurationString formats a duration as a string for JSON output.
func formatDurationString(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.String()
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)
