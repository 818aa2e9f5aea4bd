package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpb-tools/hpblaunch/pkg/launch/bootstrap"
)

func sampleReport() *Report {
	return &Report{
		Title: "Launch",
		RunID: "0b9a2f6e-9df2-4f0b-8f3a-000000000000",
		Checks: []Check{
			{Name: "interpreter", Status: bootstrap.StatusPassed, Detail: "Python 3.11.4 at /usr/bin/python3", Duration: 120 * time.Millisecond},
			{Name: "manifest", Status: bootstrap.StatusPassed, Detail: "6 requirements"},
			{Name: "dependencies", Status: bootstrap.StatusSkipped, Detail: "environment unchanged since 2 hours ago"},
			{Name: "browsers", Status: bootstrap.StatusWarned, Err: "browser provisioning failed: exit 1"},
			{Name: "launch", Status: bootstrap.StatusPassed, Detail: "src.main exited cleanly", Duration: 3 * time.Minute},
		},
		Duration: 3*time.Minute + 200*time.Millisecond,
	}
}

func TestReportOkAndWarnings(t *testing.T) {
	r := sampleReport()
	assert.True(t, r.Ok())

	warnings := r.Warnings()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "browsers")

	r.Failed = "dependencies"
	assert.False(t, r.Ok())
}

func TestFromResult(t *testing.T) {
	res := &bootstrap.Result{
		RunID:  "run-1",
		Failed: "manifest",
		Steps: []bootstrap.StepResult{
			{Name: "interpreter", Status: bootstrap.StatusPassed, Detail: "Python 3.11.4"},
			{Name: "manifest", Status: bootstrap.StatusFailed, Err: "manifest not found"},
		},
		Duration: time.Second,
	}

	r := FromResult("Launch", res)
	assert.Equal(t, "Launch", r.Title)
	assert.Equal(t, "run-1", r.RunID)
	assert.Equal(t, "manifest", r.Failed)
	require.Len(t, r.Checks, 2)
	assert.Equal(t, bootstrap.StatusFailed, r.Checks[1].Status)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register("test", func() Formatter { return &PlainFormatter{} })

	f, err := reg.Get("test")
	require.NoError(t, err)
	assert.NotNil(t, f)

	_, err = reg.Get("nope")
	assert.Error(t, err)

	assert.Equal(t, []string{"test"}, reg.Available())
}

func TestDefaultRegistryHasBuiltins(t *testing.T) {
	for _, name := range []string{"pretty", "plain", "json"} {
		f, err := Get(name)
		require.NoError(t, err, name)
		assert.NotNil(t, f, name)
	}
}

func TestPlainFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := &PlainFormatter{}
	require.NoError(t, f.Format(&buf, sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "Launch")
	assert.Contains(t, out, "interpreter")
	assert.Contains(t, out, "Python 3.11.4")
	assert.Contains(t, out, "warn")
	assert.Contains(t, out, "ok (")
}

func TestPlainFormatterFailure(t *testing.T) {
	r := sampleReport()
	r.Failed = "dependencies"

	var buf bytes.Buffer
	require.NoError(t, (&PlainFormatter{}).Format(&buf, r))
	assert.Contains(t, buf.String(), "failed at dependencies")
}

func TestPrettyFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := &PrettyFormatter{}
	require.NoError(t, f.Format(&buf, sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "Launch")
	assert.Contains(t, out, "interpreter")
	assert.Contains(t, out, "src.main exited cleanly")
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := &JSONFormatter{}
	require.NoError(t, f.Format(&buf, sampleReport()))

	out := buf.String()
	assert.Contains(t, out, `"title": "Launch"`)
	assert.Contains(t, out, `"ok": true`)
	assert.Contains(t, out, `"status": "skipped"`)
	assert.Contains(t, out, `"warnings"`)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1m30s", formatDuration(90*time.Second))
	assert.Equal(t, "1.5s", formatDuration(1500*time.Millisecond))
	assert.Equal(t, "42ms", formatDuration(42*time.Millisecond))
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0b9a2f6e", shortID("0b9a2f6e-9df2-4f0b"))
	assert.Equal(t, "plain", shortID("plain"))
}
