package output

import (
	"bytes"
	"fmt"

	"github.com/hpb-tools/hpblaunch/pkg/launch/bootstrap"
)

// PlainFormatter formats reports as unstyled text, one check per line.
// Suitable for piping and for terminals without color support.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Report) error {
	fmt.Fprintf(w, "%s\n", r.Title)

	for _, c := range r.Checks {
		line := c.Detail
		if c.Status == bootstrap.StatusFailed || c.Status == bootstrap.StatusWarned {
			line = c.Err
		}
		fmt.Fprintf(w, "%-6s %-14s %s\n", string(c.Status), c.Name, line)
	}

	if r.Ok() {
		fmt.Fprintf(w, "ok (%s)\n", formatDuration(r.Duration))
	} else {
		fmt.Fprintf(w, "failed at %s\n", r.Failed)
	}

	return nil
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
