package output

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/hpb-tools/hpblaunch/pkg/launch/bootstrap"
)

// PrettyFormatter formats reports with colors and styling using lipgloss.
// It produces a visually appealing output suitable for terminal display.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Report) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")

	for _, c := range r.Checks {
		w.WriteString(f.formatCheck(c))
		w.WriteString("\n")
	}

	if !r.Ok() {
		w.WriteString(f.formatFailure(r))
		w.WriteString("\n")
	}

	return nil
}

// formatHeader builds the header box with run metadata.
func (f *PrettyFormatter) formatHeader(r *Report) string {
	var lines []string

	lines = append(lines, TitleStyle.Render(r.Title))

	var infoParts []string
	if r.RunID != "" {
		infoParts = append(infoParts,
			fmt.Sprintf("%s %s", LabelStyle.Render("Run:"), MutedStyle.Render(shortID(r.RunID))))
	}
	if r.Duration > 0 {
		infoParts = append(infoParts,
			fmt.Sprintf("%s %s", LabelStyle.Render("Duration:"), ValueStyle.Render(formatDuration(r.Duration))))
	}
	if len(infoParts) > 0 {
		lines = append(lines, strings.Join(infoParts, "  "))
	}

	return HeaderBox.Render(strings.Join(lines, "\n"))
}

// formatCheck renders one check row with a status glyph.
func (f *PrettyFormatter) formatCheck(c Check) string {
	var glyph, text string
	switch c.Status {
	case bootstrap.StatusPassed:
		glyph = SuccessStyle.Render("ok")
		text = ValueStyle.Render(c.Detail)
	case bootstrap.StatusFailed:
		glyph = ErrorStyle.Render("fail")
		text = ErrorStyle.Render(c.Err)
	case bootstrap.StatusWarned:
		glyph = WarningStyle.Render("warn")
		text = WarningStyle.Render(c.Err)
	case bootstrap.StatusSkipped:
		glyph = MutedStyle.Render("skip")
		text = MutedStyle.Render(c.Detail)
	}

	name := LabelStyle.Render(fmt.Sprintf("%-14s", c.Name))
	return fmt.Sprintf("  %-6s %s %s", glyph, name, text)
}

// formatFailure builds the failure box naming the stopping check.
func (f *PrettyFormatter) formatFailure(r *Report) string {
	msg := fmt.Sprintf("%s step failed", r.Failed)
	for _, c := range r.Checks {
		if c.Name == r.Failed && c.Err != "" {
			msg = fmt.Sprintf("%s: %s", r.Failed, c.Err)
		}
	}
	return ErrorBox.Render(ErrorStyle.Render(msg))
}

// formatDuration renders a duration at sensible precision for display.
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return d.Round(time.Second).String()
	case d >= time.Second:
		return d.Round(100 * time.Millisecond).String()
	default:
		return d.Round(time.Millisecond).String()
	}
}

// shortID truncates a run ID to its first segment for display.
func shortID(id string) string {
	if idx := strings.IndexByte(id, '-'); idx > 0 {
		return id[:idx]
	}
	return id
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
